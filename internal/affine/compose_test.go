package affine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/ledpanel/internal/geom"
	"github.com/banshee-data/ledpanel/internal/testutil"
)

func TestComponentForward(t *testing.T) {
	t.Parallel()

	p := r3.Vec{X: 1, Y: 2, Z: 3}
	tests := []struct {
		name string
		c    Component
		want r3.Vec
	}{
		{"translate", Translate(r3.Vec{X: 1, Y: -1, Z: 0.5}), r3.Vec{X: 2, Y: 1, Z: 3.5}},
		{"scale", Scale(2), r3.Vec{X: 2, Y: 4, Z: 6}},
		{"scale y", ScaleAxis(0.5, r3.Vec{Y: 3}), r3.Vec{X: 1, Y: 1, Z: 3}},
		{"shear xz", ShearXZ(0.5, 1), r3.Vec{X: 2, Y: 2, Z: 5}},
		{"rotate z", Rotate(math.Pi/2, r3.Vec{Z: 1}), r3.Vec{X: -2, Y: 1, Z: 3}},
		{"rotate x", Rotate(math.Pi, r3.Vec{X: 1}), r3.Vec{X: 1, Y: -2, Z: -3}},
		{"custom", Custom(Identity.WithTranslation(r3.Vec{Z: 1})), r3.Vec{X: 1, Y: 2, Z: 4}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			testutil.AssertVecNear(t, tt.c.Forward().Apply(p), tt.want, 1e-12)

			inv, err := tt.c.Inverse()
			require.NoError(t, err)
			testutil.AssertVecNear(t, inv.Apply(tt.c.Forward().Apply(p)), p, 1e-12)
		})
	}
}

func TestComponentInverseErrors(t *testing.T) {
	t.Parallel()

	_, err := Scale(0).Inverse()
	assert.True(t, errors.Is(err, geom.ErrSingular))

	_, err = Rotate(1, r3.Vec{}).Inverse()
	assert.True(t, errors.Is(err, geom.ErrInvalidConfig))

	var flat Matrix
	_, err = Custom(flat).Inverse()
	assert.True(t, errors.Is(err, geom.ErrSingular))

	_, err = Component{Kind: Kind(42)}.Inverse()
	assert.True(t, errors.Is(err, geom.ErrInvalidConfig))
}

func TestComposeOrder(t *testing.T) {
	t.Parallel()

	// Translate is listed first, so it is applied last.
	tr, err := Compose(Translate(r3.Vec{X: 1}), Scale(2))
	require.NoError(t, err)
	testutil.AssertVecNear(t, tr.Matrix.Apply(r3.Vec{X: 1, Y: 1}), r3.Vec{X: 3, Y: 2}, 1e-12)
	testutil.AssertVecNear(t, tr.Inverse.Apply(r3.Vec{X: 3, Y: 2}), r3.Vec{X: 1, Y: 1}, 1e-12)
}

func TestComposeGridComponents(t *testing.T) {
	t.Parallel()

	// Unit spacing on a sqrt(3) shear axis with no offset.
	g := math.Sqrt(3)
	tr, err := Compose(
		Translate(r3.Vec{}),
		ScaleAxis(geom.GradientRise(g), r3.Vec{Y: 1}),
		ShearXZ(geom.GradientRun(g), 0),
		Scale(1),
	)
	require.NoError(t, err)

	want := Matrix{
		1, 0.5, 0, 0,
		0, math.Sqrt(3) / 2, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	testutil.AssertMatrixNear(t, tr.Matrix, want, 1e-9)
	testutil.AssertMatrixNear(t, tr.Matrix.Mul(tr.Inverse), Identity, 1e-9)
	require.NoError(t, tr.Check())
}

func TestComposeRoundTrip(t *testing.T) {
	t.Parallel()

	components := []Component{
		Rotate(0.3, r3.Vec{X: 1, Y: 2, Z: 3}),
		Translate(r3.Vec{X: -4, Y: 5, Z: 0.25}),
		ScaleAxis(3, r3.Vec{X: 1, Y: 1}),
		ShearXZ(-0.7, 0.2),
		Scale(0.05),
		Custom(Matrix{2, 0, 0, 1, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}),
	}
	tr, err := Compose(components...)
	require.NoError(t, err)
	testutil.AssertMatrixNear(t, tr.Matrix.Mul(tr.Inverse), Identity, 1e-9)
	testutil.AssertMatrixNear(t, tr.Inverse.Mul(tr.Matrix), Identity, 1e-9)

	p := r3.Vec{X: 0.1, Y: 7, Z: -2}
	testutil.AssertVecNear(t, tr.Inverse.Apply(tr.Matrix.Apply(p)), p, 1e-9)
}

func TestComposeEmpty(t *testing.T) {
	t.Parallel()
	tr, err := Compose()
	require.NoError(t, err)
	assert.Equal(t, IdentityTransform, tr)
}

func TestTransformCheckMismatch(t *testing.T) {
	t.Parallel()

	bad := Transform{Matrix: Scale(2).Forward(), Inverse: Identity}
	assert.True(t, errors.Is(bad.Check(), geom.ErrInverseMismatch))

	nan := Transform{Matrix: Identity.WithTranslation(r3.Vec{X: math.NaN()}), Inverse: Identity}
	assert.True(t, errors.Is(nan.Check(), geom.ErrInverseMismatch))
}

func TestTransformMul(t *testing.T) {
	t.Parallel()

	a, err := Compose(Translate(r3.Vec{Z: 1}))
	require.NoError(t, err)
	b, err := Compose(Rotate(math.Pi/2, r3.Vec{Z: 1}))
	require.NoError(t, err)

	ab := a.Mul(b)
	testutil.AssertVecNear(t, ab.Matrix.Apply(r3.Vec{X: 1}), r3.Vec{Y: 1, Z: 1}, 1e-12)
	testutil.AssertMatrixNear(t, ab.Matrix.Mul(ab.Inverse), Identity, 1e-12)

	inv := ab.Inverted()
	assert.Equal(t, ab.Inverse, inv.Matrix)
	assert.Equal(t, ab.Matrix, inv.Inverse)
}

func TestMatrixHelpers(t *testing.T) {
	t.Parallel()

	m := Matrix{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 0, 0, 0, 1}
	assert.Equal(t, 7.0, m.At(1, 2))
	assert.Equal(t, r3.Vec{X: 4, Y: 8, Z: 12}, m.Translation())
	assert.Equal(t, r3.Vec{X: 1, Y: 5, Z: 9}, m.ApplyVector(r3.Vec{X: 1}))
	assert.Equal(t, m, FromRows(m.Rows()))
	assert.Equal(t, [4]float64{5, 6, 7, 8}, m.Rows()[1])
	assert.True(t, m.IsFinite())
	assert.NotEmpty(t, m.String())

	inv, err := NewTransform(Identity.WithTranslation(r3.Vec{X: 2}))
	require.NoError(t, err)
	assert.InDelta(t, -2.0, inv.Inverse.Translation().X, 1e-12)
}
