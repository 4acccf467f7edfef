package affine

import (
	"github.com/banshee-data/ledpanel/internal/geom"
	"github.com/banshee-data/ledpanel/internal/monitoring"
)

// Transform is a forward matrix together with its inverse.
type Transform struct {
	Matrix  Matrix
	Inverse Matrix
}

// IdentityTransform maps every point to itself.
var IdentityTransform = Transform{Matrix: Identity, Inverse: Identity}

// Compose multiplies the components left to right, so the last component is
// applied to a point first. The inverse is the product of each component's
// inverse in reverse order. The pair is checked against the identity.
func Compose(components ...Component) (Transform, error) {
	forward := Identity
	inverse := Identity
	for i, c := range components {
		inv, err := c.Inverse()
		if err != nil {
			return Transform{}, err
		}
		forward = forward.Mul(c.Forward())
		inverse = inv.Mul(inverse)
		monitoring.Debugf("compose: component %d %s", i, c.Kind)
	}
	t := Transform{Matrix: forward, Inverse: inverse}
	if err := t.Check(); err != nil {
		return Transform{}, err
	}
	monitoring.Debugf("compose: forward=\n%v", forward)
	return t, nil
}

// NewTransform pairs m with its numeric inverse.
func NewTransform(m Matrix) (Transform, error) {
	return Compose(Custom(m))
}

// Check verifies that Matrix·Inverse is the identity within ATOL.
func (t Transform) Check() error {
	if !t.Matrix.IsFinite() || !t.Inverse.IsFinite() {
		return geom.Errorf(geom.KindInverseMismatch, "non-finite transform")
	}
	if product := t.Matrix.Mul(t.Inverse); !product.EqualApprox(Identity, geom.ATOL) {
		return geom.Errorf(geom.KindInverseMismatch, "forward x inverse =\n%v", product)
	}
	return nil
}

// Mul returns t·u, the transform that applies u first and then t.
func (t Transform) Mul(u Transform) Transform {
	return Transform{
		Matrix:  t.Matrix.Mul(u.Matrix),
		Inverse: u.Inverse.Mul(t.Inverse),
	}
}

// Inverted swaps the forward and inverse matrices.
func (t Transform) Inverted() Transform {
	return Transform{Matrix: t.Inverse, Inverse: t.Matrix}
}
