package strida

// Mathematical constants and configuration for kernel computations
const (
	// Activation function saturation limits
	DefaultActivationSaturation = 10.0

	// Test tolerance levels for different precision requirements
	TestToleranceStrict  = 1e-6 // For critical accuracy tests
	TestToleranceNormal  = 1e-5 // For standard tests
	TestToleranceRelaxed = 1e-4 // For approximate methods
	TestToleranceHalf    = 1e-2 // For 16-bit float results

	// Mathematical constants with high precision
	MathLn2      = 0.6931471805599453094 // ln(2)
	MathInvSqrt2 = 0.7071067811865475244 // 1/√2

	// GELU tanh-approximation constants from Hendrycks & Gimpel.
	// GELU(x) = 0.5 * x * (1 + tanh(p1*x + p3*x³))
	GELUSqrt2OverPi = 0.7978845608028654                // p1 = √(2/π)
	GELUCoefficient = 0.044715                          // β coefficient
	GELUP3          = GELUCoefficient * GELUSqrt2OverPi // p3 = β·√(2/π)
	// SELU constants from Klambauer et al.
	SeluScale = 1.0507009873554804934
	SeluAlpha = 1.6732632423543772848

	// Default LeakyRelu slope, matching the common framework default.
	LeakyReluDefaultAlpha = 0.2

	// Error function approximation constants (Abramowitz & Stegun)
	// erf(x) ≈ 1 - exp(-x²) * polynomial(x)
	ErfA1 = 0.254829592  // a₁
	ErfA2 = -0.284496736 // a₂
	ErfA3 = 1.421413741  // a₃
	ErfA4 = -1.453152027 // a₄
	ErfA5 = 1.061405429  // a₅
	ErfP  = 0.3275911    // p
)
