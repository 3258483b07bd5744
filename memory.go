package strida

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// MemcpyKind specifies the direction of memory transfer.
// In STRIDA's unified memory model these are provided for CUDA compatibility
// and are treated identically since all memory is CPU-accessible.
type MemcpyKind int

const (
	MemcpyHostToHost     MemcpyKind = iota // Host to host transfer
	MemcpyHostToDevice                     // Host to device transfer
	MemcpyDeviceToHost                     // Device to host transfer
	MemcpyDeviceToDevice                   // Device to device transfer
	MemcpyDefault                          // Default transfer (infer direction)
)

// MemoryPool manages device memory allocation with efficient reuse.
// It maintains a free list of previously allocated blocks to reduce
// allocation overhead and memory fragmentation.
type MemoryPool struct {
	mu         sync.Mutex
	allocated  map[uintptr]*allocation
	freeList   []*allocation
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	buf  []byte // backing storage, keeps the block alive
	ptr  unsafe.Pointer
	size int
	used bool
}

// NewMemoryPool creates a new memory pool.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		allocated: make(map[uintptr]*allocation),
	}
}

// Malloc allocates device memory of the specified size in bytes.
// The memory is 64-byte aligned so packed half-pair and int8x4 views stay
// word aligned.
func (ctx *Context) Malloc(size int) (DevicePtr, error) {
	return ctx.memory.Allocate(size)
}

// Free releases device memory allocated by Malloc.
// The memory may be retained in the pool for future allocations.
func (ctx *Context) Free(ptr DevicePtr) error {
	return ctx.memory.Free(ptr)
}

// Memcpy copies memory between host and device.
// Supports DevicePtr on either side plus the host slice types the kernels
// operate on.
func (ctx *Context) Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	dstPtr, err := memcpyPointer(dst)
	if err != nil {
		return NewInvalidArgError("Memcpy", errors.Wrap(err, "dst").Error())
	}
	srcPtr, err := memcpyPointer(src)
	if err != nil {
		return NewInvalidArgError("Memcpy", errors.Wrap(err, "src").Error())
	}

	if dstPtr != nil && srcPtr != nil && size > 0 {
		copy(unsafe.Slice((*byte)(dstPtr), size), unsafe.Slice((*byte)(srcPtr), size))
	}
	return nil
}

// memcpyPointer extracts the base pointer of a Memcpy operand.
func memcpyPointer(v interface{}) (unsafe.Pointer, error) {
	switch p := v.(type) {
	case DevicePtr:
		return p.ptr, nil
	case unsafe.Pointer:
		return p, nil
	case []byte:
		if len(p) == 0 {
			return nil, nil
		}
		return unsafe.Pointer(&p[0]), nil
	case []float32:
		if len(p) == 0 {
			return nil, nil
		}
		return unsafe.Pointer(&p[0]), nil
	case []float64:
		if len(p) == 0 {
			return nil, nil
		}
		return unsafe.Pointer(&p[0]), nil
	case []int32:
		if len(p) == 0 {
			return nil, nil
		}
		return unsafe.Pointer(&p[0]), nil
	case []int8:
		if len(p) == 0 {
			return nil, nil
		}
		return unsafe.Pointer(&p[0]), nil
	case []float16.Float16:
		if len(p) == 0 {
			return nil, nil
		}
		return unsafe.Pointer(&p[0]), nil
	default:
		return nil, errors.Errorf("unsupported operand type %T", v)
	}
}

// MemoryPool methods

// Allocate allocates memory from the pool.
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	// Round up to alignment
	const alignment = 64 // Cache line size
	alignedSize := (size + alignment - 1) &^ (alignment - 1)

	// Try to reuse from free list
	for i, alloc := range mp.freeList {
		if alloc.size >= alignedSize {
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			alloc.used = true

			mp.totalAlloc += int64(alloc.size)
			if mp.totalAlloc > mp.peakAlloc {
				mp.peakAlloc = mp.totalAlloc
			}

			return DevicePtr{ptr: alloc.ptr, size: size}, nil
		}
	}

	// Allocate new memory
	buf := make([]byte, alignedSize)
	ptr := unsafe.Pointer(&buf[0])

	alloc := &allocation{
		buf:  buf,
		ptr:  ptr,
		size: alignedSize,
		used: true,
	}

	mp.allocated[uintptr(ptr)] = alloc

	mp.totalAlloc += int64(alignedSize)
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}

	return DevicePtr{ptr: ptr, size: size}, nil
}

// Free returns memory to the pool.
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if ptr.ptr == nil {
		return nil
	}

	alloc, ok := mp.allocated[uintptr(ptr.ptr)]
	if !ok {
		return NewMemoryError("Free", "pointer not found in allocation pool", nil)
	}

	if !alloc.used {
		return ErrDoubleFree
	}

	alloc.used = false
	mp.freeList = append(mp.freeList, alloc)
	mp.totalAlloc -= int64(alloc.size)

	return nil
}

// GetStats returns current and peak allocated bytes.
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// DevicePtr views

// Float32 returns a float32 slice view of the device memory.
func (d DevicePtr) Float32() []float32 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*float32)(d.ptr), d.size/4)
}

// Float64 returns a float64 slice view of the device memory.
func (d DevicePtr) Float64() []float64 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*float64)(d.ptr), d.size/8)
}

// Int32 returns an int32 slice view of the device memory.
// The quantized relu kernel reads its int8 buffer through this view, four
// lanes per word.
func (d DevicePtr) Int32() []int32 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*int32)(d.ptr), d.size/4)
}

// Int8 returns an int8 slice view of the device memory.
func (d DevicePtr) Int8() []int8 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*int8)(d.ptr), d.size)
}

// Half returns a 16-bit float slice view of the device memory.
func (d DevicePtr) Half() []float16.Float16 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*float16.Float16)(d.ptr), d.size/2)
}

// Uint32 returns a uint32 slice view of the device memory. Packed half-pair
// kernels reinterpret adjacent 16-bit elements through this view.
func (d DevicePtr) Uint32() []uint32 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*uint32)(d.ptr), d.size/4)
}

// Byte returns a byte slice view of the entire memory region.
func (d DevicePtr) Byte() []byte {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(d.ptr), d.size)
}

// Offset returns a new DevicePtr offset by the given number of bytes.
// The returned DevicePtr shares the same underlying memory.
func (d DevicePtr) Offset(bytes int) DevicePtr {
	return DevicePtr{
		ptr:    unsafe.Pointer(uintptr(d.ptr) + uintptr(bytes)),
		size:   d.size - bytes,
		offset: d.offset + bytes,
	}
}

// Size returns the size in bytes of the memory region.
func (d DevicePtr) Size() int {
	return d.size
}

// getSystemMemory returns total system memory in bytes.
func getSystemMemory() uint64 {
	// Simplified: report a fixed size rather than probing the OS.
	return 16 * 1024 * 1024 * 1024
}
