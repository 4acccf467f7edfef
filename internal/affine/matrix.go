package affine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/ledpanel/internal/geom"
)

// Matrix is a 4x4 affine matrix stored row-major: m00,m01,m02,m03, m10,...
type Matrix [16]float64

// Identity is the 4x4 identity matrix.
var Identity = Matrix{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// At returns the element at row i, column j.
func (m Matrix) At(i, j int) float64 {
	return m[i*4+j]
}

// Dense copies m into a gonum matrix.
func (m Matrix) Dense() *mat.Dense {
	data := make([]float64, 16)
	copy(data, m[:])
	return mat.NewDense(4, 4, data)
}

func fromDense(d mat.Matrix) Matrix {
	var m Matrix
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i*4+j] = d.At(i, j)
		}
	}
	return m
}

// Mul returns the product m·n, so n is applied to a point first.
func (m Matrix) Mul(n Matrix) Matrix {
	var out mat.Dense
	out.Mul(m.Dense(), n.Dense())
	return fromDense(&out)
}

// Apply transforms point p (w = 1).
func (m Matrix) Apply(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

// ApplyVector transforms direction v (w = 0), ignoring translation.
func (m Matrix) ApplyVector(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}

// Translation returns the translation column.
func (m Matrix) Translation() r3.Vec {
	return r3.Vec{X: m[3], Y: m[7], Z: m[11]}
}

// WithTranslation returns a copy of m with its translation column replaced.
func (m Matrix) WithTranslation(t r3.Vec) Matrix {
	m[3], m[7], m[11] = t.X, t.Y, t.Z
	return m
}

// Inverse computes the numeric inverse of m.
func (m Matrix) Inverse() (Matrix, error) {
	if !m.IsFinite() {
		return Matrix{}, geom.Errorf(geom.KindSingular, "matrix has non-finite elements")
	}
	var inv mat.Dense
	if err := inv.Inverse(m.Dense()); err != nil {
		return Matrix{}, geom.Errorf(geom.KindSingular, "%v", err)
	}
	return fromDense(&inv), nil
}

// EqualApprox reports whether every element of m and n differs by at most tol.
func (m Matrix) EqualApprox(n Matrix, tol float64) bool {
	for i := range m {
		if !geom.Tolerance(tol).Close(m[i], n[i]) {
			return false
		}
	}
	return true
}

// IsFinite reports whether every element is finite.
func (m Matrix) IsFinite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Rows returns m as nested rows, the layout used by the export document.
func (m Matrix) Rows() [4][4]float64 {
	var rows [4][4]float64
	for i := 0; i < 4; i++ {
		copy(rows[i][:], m[i*4:i*4+4])
	}
	return rows
}

// FromRows builds a Matrix from nested rows.
func FromRows(rows [4][4]float64) Matrix {
	var m Matrix
	for i := 0; i < 4; i++ {
		copy(m[i*4:i*4+4], rows[i][:])
	}
	return m
}

func (m Matrix) String() string {
	return fmt.Sprintf("%.6g", mat.Formatted(m.Dense(), mat.Squeeze()))
}
