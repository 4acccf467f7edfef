// Package testutil provides shared test utilities and fixtures.
//
// This package centralises the geometric assertions used across the layout
// packages so tolerances are reported the same way everywhere.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertVecNear fails the test if any component of got differs from want by
// more than tol.
func AssertVecNear(t *testing.T, got, want r3.Vec, tol float64) {
	t.Helper()
	if !near(got.X, want.X, tol) || !near(got.Y, want.Y, tol) || !near(got.Z, want.Z, tol) {
		t.Errorf("vector = %+v, want %+v (tol %g)", got, want, tol)
	}
}

// AssertMatrixNear compares two row-major 4x4 matrices element-wise.
func AssertMatrixNear(t *testing.T, got, want [16]float64, tol float64) {
	t.Helper()
	for i := range got {
		if !near(got[i], want[i], tol) {
			t.Errorf("matrix[%d][%d] = %g, want %g (tol %g)\ngot:  %v\nwant: %v",
				i/4, i%4, got[i], want[i], tol, got, want)
			return
		}
	}
}

func near(a, b, tol float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tol
}
