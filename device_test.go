package strida

import (
	"math"
	"math/rand"
	"testing"
)

// Test basic memory allocation and deallocation
func TestMemoryAllocation(t *testing.T) {
	sizes := []int{100, 1000, 10000, 1000000}

	for _, size := range sizes {
		ptr, err := Malloc(size * 4)
		if err != nil {
			t.Fatalf("Failed to allocate %d bytes: %v", size*4, err)
		}

		slice := ptr.Float32()
		if len(slice) != size {
			t.Errorf("Expected slice length %d, got %d", size, len(slice))
		}

		// Write and read test
		for i := 0; i < 100 && i < size; i++ {
			slice[i] = float32(i)
		}
		for i := 0; i < 100 && i < size; i++ {
			if slice[i] != float32(i) {
				t.Errorf("Memory corruption at index %d", i)
			}
		}

		if err := Free(ptr); err != nil {
			t.Fatalf("Failed to free memory: %v", err)
		}
	}
}

func TestDoubleFree(t *testing.T) {
	ptr, err := Malloc(64)
	if err != nil {
		t.Fatalf("Malloc failed: %v", err)
	}
	if err := Free(ptr); err != nil {
		t.Fatalf("first Free failed: %v", err)
	}
	if err := Free(ptr); err == nil {
		t.Error("second Free should fail")
	} else if !IsMemoryError(err) {
		t.Errorf("expected a memory error, got %v", err)
	}
}

// Test memory copy operations
func TestMemcpy(t *testing.T) {
	const N = 1000

	hSrc := make([]float32, N)
	hDst := make([]float32, N)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < N; i++ {
		hSrc[i] = rng.Float32()
	}

	dSrc, _ := Malloc(N * 4)
	dDst, _ := Malloc(N * 4)
	defer Free(dSrc)
	defer Free(dDst)

	if err := Memcpy(dSrc, hSrc, N*4, MemcpyHostToDevice); err != nil {
		t.Fatalf("H2D copy failed: %v", err)
	}
	if err := Memcpy(dDst, dSrc, N*4, MemcpyDeviceToDevice); err != nil {
		t.Fatalf("D2D copy failed: %v", err)
	}
	if err := Memcpy(hDst, dDst, N*4, MemcpyDeviceToHost); err != nil {
		t.Fatalf("D2H copy failed: %v", err)
	}

	for i := 0; i < N; i++ {
		if math.Abs(float64(hSrc[i]-hDst[i])) > 1e-6 {
			t.Errorf("Data mismatch at index %d: %f vs %f", i, hSrc[i], hDst[i])
		}
	}
}

func TestMemcpyUnsupportedType(t *testing.T) {
	dDst, _ := Malloc(16)
	defer Free(dDst)

	err := Memcpy(dDst, []string{"nope"}, 16, MemcpyHostToDevice)
	if err == nil {
		t.Fatal("expected error for unsupported source type")
	}
	if !IsInvalidArgError(err) {
		t.Errorf("expected an invalid argument error, got %v", err)
	}
}

// Test basic kernel launch with a grid-stride loop
func TestKernelLaunchGridStride(t *testing.T) {
	const N = 10000

	dData, _ := Malloc(N * 4)
	defer Free(dData)

	data := dData.Float32()
	for i := range data {
		data[i] = float32(i)
	}

	// Launch fewer threads than elements; the kernel must stride.
	grid := Dim3{X: 8, Y: 1, Z: 1}
	block := Dim3{X: 64, Y: 1, Z: 1}

	err := LaunchFunc(func(tid ThreadID, _ ...interface{}) {
		stride := tid.GlobalSize()
		for i := tid.Global(); i < N; i += stride {
			data[i] *= 2
		}
	}, grid, block)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if err := Synchronize(); err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}

	for i := 0; i < N; i++ {
		if data[i] != float32(i)*2 {
			t.Fatalf("index %d: expected %f, got %f", i, float32(i)*2, data[i])
		}
	}
}

// Launches on the same stream must execute in submission order.
func TestStreamOrdering(t *testing.T) {
	const N = 1024

	dData, _ := Malloc(N * 4)
	defer Free(dData)

	data := dData.Float32()
	for i := range data {
		data[i] = 1
	}

	grid := Dim3{X: (N + 255) / 256, Y: 1, Z: 1}
	block := Dim3{X: 256, Y: 1, Z: 1}

	// First double, then add one: order matters.
	LaunchFunc(func(tid ThreadID, _ ...interface{}) {
		if i := tid.Global(); i < N {
			data[i] *= 2
		}
	}, grid, block)
	LaunchFunc(func(tid ThreadID, _ ...interface{}) {
		if i := tid.Global(); i < N {
			data[i] += 1
		}
	}, grid, block)

	if err := Synchronize(); err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}

	for i := 0; i < N; i++ {
		if data[i] != 3 {
			t.Fatalf("index %d: expected 3, got %f (out-of-order execution?)", i, data[i])
		}
	}
}

func TestEmptyGridPreservesOrdering(t *testing.T) {
	if err := LaunchFunc(func(ThreadID, ...interface{}) {
		t.Error("kernel executed for empty grid")
	}, Dim3{}, Dim3{X: 256, Y: 1, Z: 1}); err != nil {
		t.Fatalf("empty grid launch failed: %v", err)
	}
	if err := Synchronize(); err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}
}

func TestDim3Size(t *testing.T) {
	cases := []struct {
		dim  Dim3
		want int
	}{
		{Dim3{X: 1, Y: 1, Z: 1}, 1},
		{Dim3{X: 256, Y: 1, Z: 1}, 256},
		{Dim3{X: 4, Y: 3, Z: 2}, 24},
		{Dim3{}, 0},
	}
	for _, tc := range cases {
		if got := tc.dim.Size(); got != tc.want {
			t.Errorf("Dim3%v.Size(): expected %d, got %d", tc.dim, tc.want, got)
		}
	}
}

func TestThreadIDGlobal(t *testing.T) {
	tid := ThreadID{
		BlockIdx:  Dim3{X: 3},
		ThreadIdx: Dim3{X: 17},
		BlockDim:  Dim3{X: 256, Y: 1, Z: 1},
		GridDim:   Dim3{X: 10, Y: 1, Z: 1},
	}
	if got := tid.Global(); got != 3*256+17 {
		t.Errorf("Global(): expected %d, got %d", 3*256+17, got)
	}
	if got := tid.GlobalSize(); got != 10*256 {
		t.Errorf("GlobalSize(): expected %d, got %d", 10*256, got)
	}
}

func TestDeviceInfo(t *testing.T) {
	dev := GetDevice()
	if dev == nil {
		t.Fatal("GetDevice returned nil")
	}
	if dev.NumCores < 1 {
		t.Errorf("expected at least one core, got %d", dev.NumCores)
	}
	if GetDeviceCount() != 1 {
		t.Errorf("expected exactly one device, got %d", GetDeviceCount())
	}
}
