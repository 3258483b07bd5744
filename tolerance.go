// Package strida tolerance-based verification for floating-point comparisons
package strida

import (
	"fmt"
	"math"
)

// ToleranceConfig defines tolerance parameters for floating-point comparison
type ToleranceConfig struct {
	// AbsTol is the absolute tolerance for values near zero
	AbsTol float32

	// RelTol is the relative tolerance as a fraction of the larger value
	RelTol float32

	// ULPTol is the maximum allowed difference in ULPs (Units in Last Place)
	ULPTol int

	// CheckNaN determines if NaN values should be considered equal
	CheckNaN bool

	// CheckInf determines if Inf values should be considered equal
	CheckInf bool
}

// DefaultTolerance returns default tolerance configuration
func DefaultTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-7,
		RelTol:   TestToleranceNormal,
		ULPTol:   4,
		CheckNaN: true,
		CheckInf: true,
	}
}

// SingleTolerance returns the tolerance for float32 kernel results verified
// against a float64 closed-form reference.
func SingleTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   2e-5,
		RelTol:   TestToleranceNormal,
		ULPTol:   16,
		CheckNaN: true,
		CheckInf: true,
	}
}

// HalfTolerance returns the tolerance for 16-bit float kernel results.
func HalfTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-3,
		RelTol:   TestToleranceHalf,
		ULPTol:   0,
		CheckNaN: true,
		CheckInf: true,
	}
}

// Float32NearEqual checks if two float32 values are equal within tolerance
func Float32NearEqual(a, b float32, tol ToleranceConfig) bool {
	// Handle special cases
	if tol.CheckNaN && math.IsNaN(float64(a)) && math.IsNaN(float64(b)) {
		return true
	}

	if tol.CheckInf {
		if math.IsInf(float64(a), 1) && math.IsInf(float64(b), 1) {
			return true // Both +Inf
		}
		if math.IsInf(float64(a), -1) && math.IsInf(float64(b), -1) {
			return true // Both -Inf
		}
	}

	// Check if exactly equal (handles ±0)
	if a == b {
		return true
	}

	// Any surviving infinity is a mismatch: opposite-sign infinities would
	// otherwise slip through the relative check as Inf <= Inf.
	if math.IsInf(float64(a), 0) || math.IsInf(float64(b), 0) {
		return false
	}

	// Absolute difference
	diff := math.Abs(float64(a - b))

	// Check absolute tolerance
	if diff <= float64(tol.AbsTol) {
		return true
	}

	// Check relative tolerance
	larger := math.Max(math.Abs(float64(a)), math.Abs(float64(b)))
	if diff <= larger*float64(tol.RelTol) {
		return true
	}

	// Check ULP difference
	if tol.ULPTol > 0 {
		ulpDiff := Float32ULPDiff(a, b)
		if ulpDiff <= tol.ULPTol {
			return true
		}
	}

	return false
}

// Float32ULPDiff computes the difference in ULPs between two float32 values
func Float32ULPDiff(a, b float32) int {
	aBits := math.Float32bits(a)
	bBits := math.Float32bits(b)

	// Check for different signs
	if (aBits^bBits)&0x80000000 != 0 {
		// Different signs, can't use simple subtraction
		return math.MaxInt32
	}

	// Same sign, compute ULP difference
	var diff int
	if aBits > bBits {
		diff = int(aBits - bBits)
	} else {
		diff = int(bBits - aBits)
	}

	return diff
}

// VerificationResult aggregates the mismatch statistics of an array compare
type VerificationResult struct {
	MaxAbsError float32
	MaxRelError float32
	MaxULPError int
	NumErrors   int
	TotalItems  int
	FirstError  int // Index of first error, -1 if none
}

// VerifyFloat32Array compares two float32 arrays and returns detailed results
func VerifyFloat32Array(expected, actual []float32, tol ToleranceConfig) VerificationResult {
	result := VerificationResult{
		TotalItems: len(expected),
		FirstError: -1,
	}

	if len(expected) != len(actual) {
		result.NumErrors = len(expected)
		return result
	}

	for i := range expected {
		if !Float32NearEqual(expected[i], actual[i], tol) {
			result.NumErrors++
			if result.FirstError == -1 {
				result.FirstError = i
			}

			absDiff := float32(math.Abs(float64(expected[i] - actual[i])))
			if absDiff > result.MaxAbsError {
				result.MaxAbsError = absDiff
			}

			// Relative error (avoid division by zero)
			if expected[i] != 0 {
				relDiff := absDiff / float32(math.Abs(float64(expected[i])))
				if relDiff > result.MaxRelError {
					result.MaxRelError = relDiff
				}
			}

			ulpDiff := Float32ULPDiff(expected[i], actual[i])
			if ulpDiff > result.MaxULPError {
				result.MaxULPError = ulpDiff
			}
		}
	}

	return result
}

// String formats the verification result for display
func (r VerificationResult) String() string {
	if r.NumErrors == 0 {
		return "PASS: All values match within tolerance"
	}

	errorRate := float64(r.NumErrors) / float64(r.TotalItems) * 100
	return fmt.Sprintf("FAIL: %d/%d values differ (%.2f%%)\n"+
		"  Max absolute error: %e\n"+
		"  Max relative error: %e\n"+
		"  Max ULP difference: %d\n"+
		"  First error at index: %d",
		r.NumErrors, r.TotalItems, errorRate,
		r.MaxAbsError, r.MaxRelError, r.MaxULPError,
		r.FirstError)
}
