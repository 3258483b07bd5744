package strida

import "math"

// Scalar activation math with proper numerical accuracy. These are the
// per-element bodies the kernels run; each handles the full float32 range
// without overflow or catastrophic cancellation.

// TanhFloat32 computes tanh(x) with good accuracy
// Uses exp formula for best accuracy across all ranges
func TanhFloat32(x float32) float32 {
	// For large |x|, tanh saturates
	if x > DefaultActivationSaturation {
		return 1
	}
	if x < -DefaultActivationSaturation {
		return -1
	}

	if x >= 0 {
		if x < 0.0625 {
			// For very small x, use series expansion to avoid cancellation
			// in the exp formula: tanh(x) ≈ x - x³/3 + 2x⁵/15
			x2 := x * x
			return x * (1 - x2/3 + 2*x2*x2/15)
		}
		// tanh(x) = (e^2x - 1) / (e^2x + 1)
		exp2x := ExpFloat32(2 * x)
		return (exp2x - 1) / (exp2x + 1)
	}
	// tanh(-x) = -tanh(x)
	return -TanhFloat32(-x)
}

// ExpFloat32 computes exp(x) with good accuracy for float32
// Uses range reduction and polynomial approximation
func ExpFloat32(x float32) float32 {
	// Handle special cases
	if x > 88.7 { // exp(88.7) ≈ max float32
		return math.MaxFloat32
	}
	if x < -87.3 { // exp(-87.3) ≈ min positive float32
		return 0
	}

	// Range reduction: exp(x) = 2^k * exp(r) where x = k*ln(2) + r and
	// r lies in [-ln2/2, ln2/2], keeping the polynomial error small.
	const ln2 = MathLn2
	k := int(math.Floor(float64(x)/ln2 + 0.5))
	r := x - float32(k)*float32(ln2)

	// Compute exp(r) using a degree-5 polynomial (Remez approximation)
	r2 := r * r
	r3 := r2 * r
	r4 := r2 * r2
	r5 := r4 * r

	expR := 1.0 + r +
		0.4999999701976776*r2 +
		0.1666666567325592*r3 +
		0.0416666679084301*r4 +
		0.0083333337679505*r5

	// Reconstruct: exp(x) = 2^k * exp(r)
	return float32(math.Ldexp(float64(expR), k))
}

// ErfFloat32 computes the error function with good accuracy
// Uses rational approximation from Abramowitz & Stegun
func ErfFloat32(x float32) float32 {
	// Handle negative values using erf(-x) = -erf(x)
	sign := float32(1)
	if x < 0 {
		sign = -1
		x = -x
	}

	const (
		a1 = ErfA1
		a2 = ErfA2
		a3 = ErfA3
		a4 = ErfA4
		a5 = ErfA5
		p  = ErfP
	)

	// Approximation: erf(x) ≈ 1 - exp(-x²) * polynomial(x)
	t := 1 / (1 + p*x)
	t2 := t * t
	t3 := t2 * t
	t4 := t2 * t2
	t5 := t4 * t

	expNegX2 := ExpFloat32(-x * x)
	polynomial := a1*t + a2*t2 + a3*t3 + a4*t4 + a5*t5

	return sign * (1 - expNegX2*polynomial)
}

// GeluFloat32Accurate computes GELU with high accuracy using the error
// function. This is the erf-form reference; the kernels use the tanh form.
func GeluFloat32Accurate(x float32) float32 {
	// GELU(x) = x * Φ(x) = x * 0.5 * (1 + erf(x/√2))
	const invSqrt2 = MathInvSqrt2
	return x * 0.5 * (1 + ErfFloat32(x*invSqrt2))
}
