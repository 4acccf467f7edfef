package geom

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// ATOL is the default absolute tolerance used for all geometric comparisons.
const ATOL = 1e-4

// Default is the tolerance used by the package-level helpers.
var Default = Tolerance(ATOL)

// Tolerance is an absolute tolerance. Values within it of an integer snap to
// that integer before rounding, and divisors within it of zero count as zero.
type Tolerance float64

// Value returns the tolerance as a float, substituting ATOL for non-positive values.
func (tol Tolerance) Value() float64 {
	if tol <= 0 || math.IsNaN(float64(tol)) {
		return ATOL
	}
	return float64(tol)
}

// Close reports whether a and b are within the tolerance of each other.
func (tol Tolerance) Close(a, b float64) bool {
	return scalar.EqualWithinAbs(a, b, tol.Value())
}

// Zero reports whether x is within the tolerance of zero.
func (tol Tolerance) Zero(x float64) bool {
	return math.Abs(x) <= tol.Value()
}

// snap returns the nearest integer when x is within tolerance of it.
func (tol Tolerance) snap(x float64) (float64, bool) {
	r := math.Round(x)
	if tol.Close(x, r) {
		return r, true
	}
	return x, false
}

// Floor is a tolerant floor: 2.99999 floors to 3.
func (tol Tolerance) Floor(x float64) int {
	if r, ok := tol.snap(x); ok {
		return int(r)
	}
	return int(math.Floor(x))
}

// Ceil is a tolerant ceiling: 3.00001 ceils to 3.
func (tol Tolerance) Ceil(x float64) int {
	if r, ok := tol.snap(x); ok {
		return int(r)
	}
	return int(math.Ceil(x))
}

// AbsFloor rounds toward zero with tolerance.
func (tol Tolerance) AbsFloor(x float64) int {
	if r, ok := tol.snap(x); ok {
		return int(r)
	}
	return int(math.Trunc(x))
}

// AbsCeil rounds away from zero with tolerance.
func (tol Tolerance) AbsCeil(x float64) int {
	if r, ok := tol.snap(x); ok {
		return int(r)
	}
	if x < 0 {
		return int(math.Floor(x))
	}
	return int(math.Ceil(x))
}

// NanDivide returns a/b, NaN when b is within tolerance of zero, and 0 when b is NaN.
func (tol Tolerance) NanDivide(a, b float64) float64 {
	if math.IsNaN(b) {
		return 0
	}
	if tol.Zero(b) {
		return math.NaN()
	}
	return a / b
}

// InfDivide returns a/b with signed infinities: a divisor within tolerance of
// zero yields ±Inf and an infinite divisor yields ±0. The sign is the product
// of the operand signs, with zero counting as positive.
func (tol Tolerance) InfDivide(a, b float64) float64 {
	sign := 1.0
	if a < 0 {
		sign = -sign
	}
	if b < 0 {
		sign = -sign
	}
	switch {
	case tol.Zero(b):
		return math.Copysign(math.Inf(1), sign)
	case math.IsInf(b, 0):
		return math.Copysign(0, sign)
	}
	return a / b
}

// FloatFloor is Default.Floor.
func FloatFloor(x float64) int { return Default.Floor(x) }

// FloatCeil is Default.Ceil.
func FloatCeil(x float64) int { return Default.Ceil(x) }

// FloatAbsFloor is Default.AbsFloor.
func FloatAbsFloor(x float64) int { return Default.AbsFloor(x) }

// FloatAbsCeil is Default.AbsCeil.
func FloatAbsCeil(x float64) int { return Default.AbsCeil(x) }

// NanDivide is Default.NanDivide.
func NanDivide(a, b float64) float64 { return Default.NanDivide(a, b) }

// InfDivide is Default.InfDivide.
func InfDivide(a, b float64) float64 { return Default.InfDivide(a, b) }

// IsClose is Default.Close.
func IsClose(a, b float64) bool { return Default.Close(a, b) }
