package strida

import (
	"math"

	"github.com/x448/float16"
)

// The remaining members of the relu activation family: Relu6, LeakyRelu,
// Elu, and Selu with their gradients. All run as grid-stride kernels with
// the relu-family launch geometry and share the Relu contract: equal-length
// buffers, n = 0 is a no-op, gradient kernels take the upstream gradient
// and a feature buffer of equal length.

// mapElementwise launches out[i] = f(in[i]) as a grid-stride kernel.
func mapElementwise[T Float](op string, input, output DevicePtr, n int, f func(T) T) {
	if n == 0 {
		return
	}
	in := deviceSlice[T](input, n)
	out := deviceSlice[T](output, n)

	cfg := fixedBlockSizeConfig(n, reluThreadPerBlock)
	mustLaunch(op, func(tid ThreadID, _ ...interface{}) {
		stride := tid.GlobalSize()
		for i := tid.Global(); i < n; i += stride {
			out[i] = f(in[i])
		}
	}, cfg)
}

// mapGradElementwise launches backprop[i] = f(gradient[i], feature[i]).
func mapGradElementwise[T Float](op string, gradient, feature, backprop DevicePtr, n int, f func(g, x T) T) {
	if n == 0 {
		return
	}
	grads := deviceSlice[T](gradient, n)
	feats := deviceSlice[T](feature, n)
	backs := deviceSlice[T](backprop, n)

	cfg := fixedBlockSizeConfig(n, reluThreadPerBlock)
	mustLaunch(op, func(tid ThreadID, _ ...interface{}) {
		stride := tid.GlobalSize()
		for i := tid.Global(); i < n; i += stride {
			backs[i] = f(grads[i], feats[i])
		}
	}, cfg)
}

// mapHalfElementwise launches out[i] = f(in[i]) over 16-bit floats, with the
// body computed in float32 and narrowed on store.
func mapHalfElementwise(op string, input, output DevicePtr, n int, f func(float32) float32) {
	if n == 0 {
		return
	}
	in := input.Half()
	out := output.Half()

	cfg := fixedBlockSizeConfig(n, reluThreadPerBlock)
	mustLaunch(op, func(tid ThreadID, _ ...interface{}) {
		stride := tid.GlobalSize()
		for i := tid.Global(); i < n; i += stride {
			out[i] = float16.Fromfloat32(f(in[i].Float32()))
		}
	}, cfg)
}

// Relu6 computes output[i] = min(max(input[i], 0), 6).
func Relu6[T Float](input, output DevicePtr, n int) {
	mapElementwise[T]("Relu6", input, output, n, func(x T) T {
		if x <= 0 {
			return 0
		}
		if x > 6 {
			return 6
		}
		return x
	})
}

// Relu6Half computes Relu6 over a 16-bit float buffer.
func Relu6Half(input, output DevicePtr, n int) {
	mapHalfElementwise("Relu6Half", input, output, n, func(x float32) float32 {
		if x <= 0 {
			return 0
		}
		if x > 6 {
			return 6
		}
		return x
	})
}

// Relu6Grad propagates the gradient where the feature lies strictly inside
// (0, 6); saturated elements get zero gradient on both ends.
func Relu6Grad[T Float](gradient, feature, backprop DevicePtr, n int) {
	mapGradElementwise[T]("Relu6Grad", gradient, feature, backprop, n, func(g, x T) T {
		if x > 0 && x < 6 {
			return g
		}
		return 0
	})
}

// LeakyRelu computes output[i] = input[i] > 0 ? input[i] : alpha*input[i].
func LeakyRelu[T Float](input, output DevicePtr, n int, alpha float64) {
	a := T(alpha)
	mapElementwise[T]("LeakyRelu", input, output, n, func(x T) T {
		if x > 0 {
			return x
		}
		return a * x
	})
}

// LeakyReluHalf computes LeakyRelu over a 16-bit float buffer.
func LeakyReluHalf(input, output DevicePtr, n int, alpha float64) {
	a := float32(alpha)
	mapHalfElementwise("LeakyReluHalf", input, output, n, func(x float32) float32 {
		if x > 0 {
			return x
		}
		return a * x
	})
}

// LeakyReluGrad computes backprop[i] = gradient[i] scaled by 1 above zero
// and alpha at or below it.
func LeakyReluGrad[T Float](gradient, feature, backprop DevicePtr, n int, alpha float64) {
	a := T(alpha)
	mapGradElementwise[T]("LeakyReluGrad", gradient, feature, backprop, n, func(g, x T) T {
		if x > 0 {
			return g
		}
		return a * g
	})
}

// Elu computes output[i] = input[i] < 0 ? exp(input[i])-1 : input[i].
func Elu[T Float](input, output DevicePtr, n int) {
	mapElementwise[T]("Elu", input, output, n, func(x T) T {
		if x < 0 {
			return T(math.Expm1(float64(x)))
		}
		return x
	})
}

// EluHalf computes Elu over a 16-bit float buffer.
func EluHalf(input, output DevicePtr, n int) {
	mapHalfElementwise("EluHalf", input, output, n, func(x float32) float32 {
		if x < 0 {
			return ExpFloat32(x) - 1
		}
		return x
	})
}

// EluGrad computes the Elu gradient. feature is the Elu OUTPUT, not its
// input: backprop[i] = feature[i] < 0 ? gradient[i]*(feature[i]+1) :
// gradient[i].
func EluGrad[T Float](gradient, feature, backprop DevicePtr, n int) {
	mapGradElementwise[T]("EluGrad", gradient, feature, backprop, n, func(g, x T) T {
		if x < 0 {
			return g * (x + 1)
		}
		return g
	})
}

// Selu computes the scaled exponential linear unit:
//
//	output[i] = input[i] < 0 ? scale*alpha*(exp(input[i])-1) : scale*input[i]
//
// with the self-normalizing constants scale = 1.0507… and alpha = 1.6733….
func Selu[T Float](input, output DevicePtr, n int) {
	mapElementwise[T]("Selu", input, output, n, func(x T) T {
		if x < 0 {
			return T(SeluScale * SeluAlpha * math.Expm1(float64(x)))
		}
		return T(SeluScale) * x
	})
}

// SeluHalf computes Selu over a 16-bit float buffer.
func SeluHalf(input, output DevicePtr, n int) {
	mapHalfElementwise("SeluHalf", input, output, n, func(x float32) float32 {
		if x < 0 {
			return float32(SeluScale*SeluAlpha) * (ExpFloat32(x) - 1)
		}
		return float32(SeluScale) * x
	})
}

// SeluGrad computes the Selu gradient. activation is the Selu OUTPUT:
//
//	backprop[i] = activation[i] < 0 ? gradient[i]*(activation[i]+scale*alpha)
//	                                : gradient[i]*scale
func SeluGrad[T Float](gradient, activation, backprop DevicePtr, n int) {
	mapGradElementwise[T]("SeluGrad", gradient, activation, backprop, n, func(g, x T) T {
		if x < 0 {
			return g * (x + T(SeluScale*SeluAlpha))
		}
		return g * T(SeluScale)
	})
}
