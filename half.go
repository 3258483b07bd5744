package strida

import (
	"github.com/x448/float16"
)

// Packed 16-bit float pairs. A half2 holds two fp16 values in one 32-bit
// word, low element first, matching the in-memory layout of two adjacent
// elements in a Half buffer. Kernels that reinterpret a Half buffer through
// DevicePtr.Uint32 operate on these words directly.
type half2 uint32

func packHalf2(lo, hi float16.Float16) half2 {
	return half2(uint32(lo.Bits()) | uint32(hi.Bits())<<16)
}

func (h half2) lo() float16.Float16 {
	return float16.Frombits(uint16(h))
}

func (h half2) hi() float16.Float16 {
	return float16.Frombits(uint16(h >> 16))
}

// hgt2 emulates the packed greater-than compare: each lane of the result is
// 1.0 where a > b and 0.0 elsewhere.
func hgt2(a, b half2) half2 {
	one := float16.Fromfloat32(1)
	zero := float16.Fromfloat32(0)
	lo, hi := zero, zero
	if a.lo().Float32() > b.lo().Float32() {
		lo = one
	}
	if a.hi().Float32() > b.hi().Float32() {
		hi = one
	}
	return packHalf2(lo, hi)
}

// hmul2 emulates the packed multiply: lane-wise product in half precision
// with round-to-nearest on store.
func hmul2(a, b half2) half2 {
	lo := float16.Fromfloat32(a.lo().Float32() * b.lo().Float32())
	hi := float16.Fromfloat32(a.hi().Float32() * b.hi().Float32())
	return packHalf2(lo, hi)
}

// half22Float2 unpacks a half2 into two float32 values.
func half22Float2(h half2) (x, y float32) {
	return h.lo().Float32(), h.hi().Float32()
}

// float22Half2 packs two float32 values into a half2 with round-to-nearest.
func float22Half2(x, y float32) half2 {
	return packHalf2(float16.Fromfloat32(x), float16.Fromfloat32(y))
}
