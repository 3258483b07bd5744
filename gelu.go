package strida

import (
	"math"

	"github.com/x448/float16"
)

// GELU kernels, tanh approximation:
//
//	GELU(x) = 0.5 * x * (1 + tanh(p1*x + p3*x³))
//	p1 = √(2/π), p3 = 0.044715 * p1
//
// The gelu family launches one bounds-checked thread per element at 256
// threads per block; unlike the relu family it does not grid-stride.

// geluFloat32 computes the tanh-form GELU for a single float32.
func geluFloat32(x float32) float32 {
	x3 := x * x * x
	arg := float32(GELUSqrt2OverPi)*x + float32(GELUP3)*x3
	return 0.5 * x * (1 + TanhFloat32(arg))
}

func geluFloat64(x float64) float64 {
	z := GELUSqrt2OverPi*x + GELUP3*x*x*x
	return 0.5 * x * (1 + math.Tanh(z))
}

// geluGradFloat32 computes the GELU derivative times the upstream gradient
// for a single element, entirely in float32.
func geluGradFloat32(g, x float32) float32 {
	x2 := x * x
	z := float32(GELUSqrt2OverPi)*x + float32(GELUP3)*x*x2
	// sech(z) = 2 / (e^z + e^-z)
	cz := 2 / (ExpFloat32(z) + ExpFloat32(-z))
	return g * 0.5 * (1 + TanhFloat32(z) + x*(float32(GELUSqrt2OverPi)+3*float32(GELUP3)*x2)*cz*cz)
}

// geluGradFloat64 is the elevated-precision gradient body. The float32
// functor narrows its result on store.
func geluGradFloat64(g, x float64) float64 {
	z := GELUSqrt2OverPi*x + GELUP3*x*x*x
	cz := 1 / math.Cosh(z)
	return g * 0.5 * (1 + math.Tanh(z) + x*(GELUSqrt2OverPi+3*GELUP3*x*x)*cz*cz)
}

// Gelu computes output[i] = GELU(input[i]) for all i in [0, n).
// n = 0 is a no-op.
func Gelu[T Float](input, output DevicePtr, n int) {
	if n == 0 {
		return
	}
	cfg := uncappedConfig(n, geluThreadPerBlock)

	switch in := any(deviceSlice[T](input, n)).(type) {
	case []float32:
		out := any(deviceSlice[T](output, n)).([]float32)
		mustLaunch("Gelu", func(tid ThreadID, _ ...interface{}) {
			i := tid.Global()
			if i >= n {
				return
			}
			out[i] = geluFloat32(in[i])
		}, cfg)
	case []float64:
		out := any(deviceSlice[T](output, n)).([]float64)
		mustLaunch("Gelu", func(tid ThreadID, _ ...interface{}) {
			i := tid.Global()
			if i >= n {
				return
			}
			out[i] = geluFloat64(in[i])
		}, cfg)
	}
}

// GeluHalf computes GELU over a 16-bit float buffer. Each element is
// computed in float32 and narrowed on store.
func GeluHalf(input, output DevicePtr, n int) {
	if n == 0 {
		return
	}
	in := input.Half()
	out := output.Half()

	cfg := uncappedConfig(n, geluThreadPerBlock)
	mustLaunch("GeluHalf", func(tid ThreadID, _ ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		out[i] = float16.Fromfloat32(geluFloat32(in[i].Float32()))
	}, cfg)
}

// GeluGrad computes the GELU gradient:
//
//	backprop[i] = gradient[i] * 0.5 * (1 + tanh(z) + x*(p1 + 3*p3*x²)*sech²(z))
//
// with z = p1*x + p3*x³ and x = feature[i] (the value passed to Gelu).
// The float32 variant computes in float64 internally and narrows on store.
func GeluGrad[T Float](gradient, feature, backprop DevicePtr, n int) {
	if n == 0 {
		return
	}
	cfg := uncappedConfig(n, geluThreadPerBlock)

	switch grads := any(deviceSlice[T](gradient, n)).(type) {
	case []float32:
		feats := any(deviceSlice[T](feature, n)).([]float32)
		backs := any(deviceSlice[T](backprop, n)).([]float32)
		mustLaunch("GeluGrad", func(tid ThreadID, _ ...interface{}) {
			i := tid.Global()
			if i >= n {
				return
			}
			backs[i] = float32(geluGradFloat64(float64(grads[i]), float64(feats[i])))
		}, cfg)
	case []float64:
		feats := any(deviceSlice[T](feature, n)).([]float64)
		backs := any(deviceSlice[T](backprop, n)).([]float64)
		mustLaunch("GeluGrad", func(tid ThreadID, _ ...interface{}) {
			i := tid.Global()
			if i >= n {
				return
			}
			backs[i] = geluGradFloat64(grads[i], feats[i])
		}, cfg)
	}
}

// GeluGradHalf computes the GELU gradient over 16-bit float buffers,
// entirely in float32, narrowed on store.
func GeluGradHalf(gradient, feature, backprop DevicePtr, n int) {
	if n == 0 {
		return
	}
	grads := gradient.Half()
	feats := feature.Half()
	backs := backprop.Half()

	cfg := uncappedConfig(n, geluThreadPerBlock)
	mustLaunch("GeluGradHalf", func(tid ThreadID, _ ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		backs[i] = float16.Fromfloat32(geluGradFloat32(grads[i].Float32(), feats[i].Float32()))
	}, cfg)
}
