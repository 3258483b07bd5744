package strida

import (
	"math"
	"testing"
)

func TestTanhFloat32Accuracy(t *testing.T) {
	testCases := []float32{
		0.0, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 3.0, 5.0, 10.0, 20.0,
		-0.01, -0.1, -0.5, -1.0, -2.0, -3.0, -5.0, -10.0, -20.0,
	}

	for _, x := range testCases {
		result := TanhFloat32(x)
		expected := math.Tanh(float64(x))
		err := math.Abs(float64(result) - expected)

		if err > 1e-5 {
			t.Errorf("TanhFloat32(%f): expected %f, got %f (error: %e)",
				x, expected, result, err)
		}
	}
}

func TestExpFloat32Accuracy(t *testing.T) {
	testCases := []float32{
		0.0, 0.5, 1.0, 2.0, 5.0, 10.0, 20.0, 50.0, 85.0,
		-0.5, -1.0, -2.0, -5.0, -10.0, -20.0, -50.0, -85.0,
	}

	for _, x := range testCases {
		result := ExpFloat32(x)
		expected := math.Exp(float64(x))

		// Relative error, since exp spans many orders of magnitude
		relErr := math.Abs(float64(result)-expected) / expected
		if relErr > 1e-5 {
			t.Errorf("ExpFloat32(%f): expected %e, got %e (rel error: %e)",
				x, expected, result, relErr)
		}
	}
}

func TestExpFloat32Saturation(t *testing.T) {
	if got := ExpFloat32(100); got != math.MaxFloat32 {
		t.Errorf("ExpFloat32(100): expected MaxFloat32, got %e", got)
	}
	if got := ExpFloat32(-100); got != 0 {
		t.Errorf("ExpFloat32(-100): expected 0, got %e", got)
	}
}

func TestErfFloat32Accuracy(t *testing.T) {
	testCases := []float32{0.0, 0.25, 0.5, 1.0, 2.0, 3.0, -0.25, -1.0, -2.0}

	for _, x := range testCases {
		result := ErfFloat32(x)
		expected := math.Erf(float64(x))
		err := math.Abs(float64(result) - expected)

		// The A&S rational approximation is good to ~1.5e-7
		if err > 1e-6 {
			t.Errorf("ErfFloat32(%f): expected %f, got %f (error: %e)",
				x, expected, result, err)
		}
	}
}

// The tanh-form kernel and the erf-form reference must agree closely; the
// two GELU formulations differ by at most ~1e-3 over the working range.
func TestGeluFormsAgree(t *testing.T) {
	for _, x := range []float32{-4, -2, -1, -0.5, 0, 0.5, 1, 2, 4} {
		tanhForm := geluFloat32(x)
		erfForm := GeluFloat32Accurate(x)
		if math.Abs(float64(tanhForm-erfForm)) > 5e-3 {
			t.Errorf("gelu forms diverge at %f: tanh=%f erf=%f", x, tanhForm, erfForm)
		}
	}
}
