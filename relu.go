package strida

import (
	"unsafe"

	"github.com/x448/float16"
)

// Float constrains the unpacked element types the generic kernels run over.
// Half buffers have dedicated functors with elevated-precision bodies.
type Float interface {
	~float32 | ~float64
}

// deviceSlice returns the first n elements of d viewed as []T.
func deviceSlice[T Float](d DevicePtr, n int) []T {
	if d.ptr == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(d.ptr), n)
}

// Relu computes output[i] = max(input[i], 0) for all i in [0, n).
// Input and output must hold n elements each; n = 0 is a no-op.
func Relu[T Float](input, output DevicePtr, n int) {
	if n == 0 {
		return
	}
	in := deviceSlice[T](input, n)
	out := deviceSlice[T](output, n)

	cfg := fixedBlockSizeConfig(n, reluThreadPerBlock)
	mustLaunch("Relu", func(tid ThreadID, _ ...interface{}) {
		stride := tid.GlobalSize()
		for i := tid.Global(); i < n; i += stride {
			x := in[i]
			if x > 0 {
				out[i] = x
			} else {
				out[i] = 0
			}
		}
	}, cfg)
}

// ReluHalf computes max(x, 0) over a 16-bit float buffer.
func ReluHalf(input, output DevicePtr, n int) {
	if n == 0 {
		return
	}
	in := input.Half()
	out := output.Half()

	cfg := fixedBlockSizeConfig(n, reluThreadPerBlock)
	mustLaunch("ReluHalf", func(tid ThreadID, _ ...interface{}) {
		stride := tid.GlobalSize()
		zero := float16.Fromfloat32(0)
		for i := tid.Global(); i < n; i += stride {
			if in[i].Float32() > 0 {
				out[i] = in[i]
			} else {
				out[i] = zero
			}
		}
	}, cfg)
}

// ReluGrad computes backprop[i] = feature[i] > 0 ? gradient[i] : 0.
//
// gradient: gradient backpropagated to the Relu op.
// feature: either the inputs that were passed to the Relu, or its outputs
// (using either one yields the same result here).
// backprop: gradient to backpropagate to the Relu inputs.
//
// When the activation is exactly zero the associated gradient value is not
// propagated. This allows the output of the Relu to be used, as well as its
// input.
func ReluGrad[T Float](gradient, feature, backprop DevicePtr, n int) {
	if n == 0 {
		return
	}
	grads := deviceSlice[T](gradient, n)
	feats := deviceSlice[T](feature, n)
	backs := deviceSlice[T](backprop, n)

	cfg := fixedBlockSizeConfig(n, reluThreadPerBlock)
	mustLaunch("ReluGrad", func(tid ThreadID, _ ...interface{}) {
		stride := tid.GlobalSize()
		for i := tid.Global(); i < n; i += stride {
			if feats[i] > 0 {
				backs[i] = grads[i]
			} else {
				backs[i] = 0
			}
		}
	}, cfg)
}

// ReluGradHalf computes ReluGrad over a 16-bit float buffer by processing
// one packed pair, two fp16, at a time. The packed compare-and-multiply path
// is used on hardware with native fp16 support; otherwise each pair is
// unpacked to two float32 values. When n is odd the trailing element is
// handled by a scalar epilogue, run by the thread whose grid-stride loop
// exits exactly at the pair count.
func ReluGradHalf(gradient, feature, backprop DevicePtr, n int) {
	if n == 0 {
		return
	}
	pairCount := n >> 1
	gradWords := gradient.Uint32()
	featWords := feature.Uint32()
	backWords := backprop.Uint32()
	grads := gradient.Half()
	feats := feature.Half()
	backs := backprop.Half()

	cfg := fixedBlockSizeConfig(divUp(n, 2), reluThreadPerBlock)
	mustLaunch("ReluGradHalf", func(tid ThreadID, _ ...interface{}) {
		stride := tid.GlobalSize()
		index := tid.Global()

		for ; index < pairCount; index += stride {
			// The fast branch: one packed pair fetched and processed at a time.
			g := half2(gradWords[index])
			f := half2(featWords[index])

			var b half2
			if useNativeHalf2 {
				// mask = (feature > 0); backprop = mask * gradient
				b = hmul2(hgt2(f, 0), g)
			} else {
				// Fall back: unpack to float2 for processing.
				fx, fy := half22Float2(f)
				gx, gy := half22Float2(g)
				var bx, by float32
				if fx > 0 {
					bx = gx
				}
				if fy > 0 {
					by = gy
				}
				b = float22Half2(bx, by)
			}

			backWords[index] = uint32(b)
		}

		if n&1 == 1 && index == pairCount {
			// Odd element count: process the last element.
			gradF := grads[n-1].Float32()
			featF := feats[n-1].Float32()
			var backF float32
			if featF > 0 {
				backF = gradF
			}
			backs[n-1] = float16.Fromfloat32(backF)
		}
	}, cfg)
}

// ReluInt8x4 computes a quantized relu over int8 elements packed four to an
// int32 word, using a SIMD-within-register max against zero. The element
// count must be a multiple of 4 and the buffers int32-aligned; both are the
// caller's (allocator's) responsibility and are not checked here.
func ReluInt8x4(input, output DevicePtr, n int) {
	if n == 0 {
		return
	}
	vectCount := divUp(n, 4)
	in := input.Int32()
	out := output.Int32()

	cfg := fixedBlockSizeConfig(vectCount, reluThreadPerBlock)
	mustLaunch("ReluInt8x4", func(tid ThreadID, _ ...interface{}) {
		stride := tid.GlobalSize()
		for i := tid.Global(); i < vectCount; i += stride {
			out[i] = maxs4Zero(in[i])
		}
	}, cfg)
}

// maxs4Zero computes a per-lane signed max(lane, 0) over the four int8 lanes
// of a 32-bit word, the vmaxs4(word, 0) operation.
func maxs4Zero(w int32) int32 {
	u := uint32(w)
	var r uint32
	for shift := 0; shift < 32; shift += 8 {
		lane := int8(u >> shift)
		if lane > 0 {
			r |= uint32(uint8(lane)) << shift
		}
	}
	return int32(r)
}
