package strida

import (
	"testing"

	"github.com/x448/float16"
)

func TestHalf2PackUnpack(t *testing.T) {
	values := [][2]float32{
		{0, 0},
		{1, -1},
		{0.5, 2},
		{-0.25, 65504}, // max finite fp16
	}

	for _, v := range values {
		h := packHalf2(float16.Fromfloat32(v[0]), float16.Fromfloat32(v[1]))
		lo, hi := half22Float2(h)
		if lo != v[0] || hi != v[1] {
			t.Errorf("pack/unpack(%v): got (%f, %f)", v, lo, hi)
		}
	}
}

func TestHalf2MemoryLayout(t *testing.T) {
	// A half2 word read through Uint32 must see the low element first,
	// matching two adjacent elements of a Half buffer.
	d, _ := Malloc(4)
	defer Free(d)

	halves := d.Half()
	halves[0] = float16.Fromfloat32(1)
	halves[1] = float16.Fromfloat32(2)

	h := half2(d.Uint32()[0])
	if got := h.lo().Float32(); got != 1 {
		t.Errorf("lo: expected 1, got %f", got)
	}
	if got := h.hi().Float32(); got != 2 {
		t.Errorf("hi: expected 2, got %f", got)
	}
}

func TestHgt2(t *testing.T) {
	cases := []struct {
		a, b   [2]float32
		wantLo float32
		wantHi float32
	}{
		{[2]float32{1, -1}, [2]float32{0, 0}, 1, 0},
		{[2]float32{0, 0.001}, [2]float32{0, 0}, 0, 1}, // strict: 0 > 0 is false
		{[2]float32{-0.5, 2}, [2]float32{0, 0}, 0, 1},
	}

	for _, tc := range cases {
		a := float22Half2(tc.a[0], tc.a[1])
		b := float22Half2(tc.b[0], tc.b[1])
		m := hgt2(a, b)
		lo, hi := half22Float2(m)
		if lo != tc.wantLo || hi != tc.wantHi {
			t.Errorf("hgt2(%v, %v): expected (%f, %f), got (%f, %f)",
				tc.a, tc.b, tc.wantLo, tc.wantHi, lo, hi)
		}
	}
}

func TestHmul2(t *testing.T) {
	a := float22Half2(2, -3)
	b := float22Half2(0.5, 2)
	p := hmul2(a, b)
	lo, hi := half22Float2(p)
	if lo != 1 || hi != -6 {
		t.Errorf("hmul2: expected (1, -6), got (%f, %f)", lo, hi)
	}
}

func TestHmul2MaskSelect(t *testing.T) {
	// The packed relu-grad pattern: mask * gradient selects the gradient
	// exactly, since the mask lanes are exactly 1 or 0.
	grad := float22Half2(0.12345, -7.5)
	feat := float22Half2(3, -3)
	back := hmul2(hgt2(feat, 0), grad)
	lo, hi := half22Float2(back)
	if lo != float16.Fromfloat32(0.12345).Float32() {
		t.Errorf("lo: expected gradient passthrough, got %f", lo)
	}
	if hi != 0 {
		t.Errorf("hi: expected zero, got %f", hi)
	}
}
