package affine

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/ledpanel/internal/geom"
)

// Kind identifies a component of a composed transform.
type Kind int

const (
	KindTranslate Kind = iota + 1
	KindScale
	KindScaleAxis
	KindShearXZ
	KindRotate
	KindMatrix
)

func (k Kind) String() string {
	switch k {
	case KindTranslate:
		return "translate"
	case KindScale:
		return "scale"
	case KindScaleAxis:
		return "scale-axis"
	case KindShearXZ:
		return "shear-xz"
	case KindRotate:
		return "rotate"
	case KindMatrix:
		return "matrix"
	default:
		return "unknown"
	}
}

// Component is one step of a transform. Only the fields used by Kind are set.
type Component struct {
	Kind    Kind
	Vector  r3.Vec // translation offset, or the axis for scale-axis and rotate
	Factor  float64
	FactorZ float64 // shear-xz only
	Angle   float64 // radians
	Matrix  Matrix  // matrix only
}

// Translate moves points by v.
func Translate(v r3.Vec) Component {
	return Component{Kind: KindTranslate, Vector: v}
}

// Scale scales x, y and z uniformly by f.
func Scale(f float64) Component {
	return Component{Kind: KindScale, Factor: f}
}

// ScaleAxis scales by f along axis only.
func ScaleAxis(f float64, axis r3.Vec) Component {
	return Component{Kind: KindScaleAxis, Factor: f, Vector: axis}
}

// ShearXZ shears in the XZ plane: x += fx*y and z += fz*y.
func ShearXZ(fx, fz float64) Component {
	return Component{Kind: KindShearXZ, Factor: fx, FactorZ: fz}
}

// Rotate rotates by angle radians about axis (right-handed).
func Rotate(angle float64, axis r3.Vec) Component {
	return Component{Kind: KindRotate, Angle: angle, Vector: axis}
}

// Custom wraps an arbitrary matrix. Its inverse is computed numerically.
func Custom(m Matrix) Component {
	return Component{Kind: KindMatrix, Matrix: m}
}

func (c Component) validate() error {
	switch c.Kind {
	case KindTranslate, KindShearXZ, KindMatrix:
	case KindScale, KindScaleAxis:
		if geom.Default.Zero(c.Factor) {
			return geom.Errorf(geom.KindSingular, "%s factor %g", c.Kind, c.Factor)
		}
		if c.Kind == KindScaleAxis && r3.Norm(c.Vector) == 0 {
			return geom.Errorf(geom.KindInvalidConfig, "%s with zero axis", c.Kind)
		}
	case KindRotate:
		if r3.Norm(c.Vector) == 0 {
			return geom.Errorf(geom.KindInvalidConfig, "%s with zero axis", c.Kind)
		}
	default:
		return geom.Errorf(geom.KindInvalidConfig, "unknown component kind %d", int(c.Kind))
	}
	return nil
}

// Forward returns the component's matrix.
func (c Component) Forward() Matrix {
	switch c.Kind {
	case KindTranslate:
		return Identity.WithTranslation(c.Vector)
	case KindScale:
		m := Identity
		m[0], m[5], m[10] = c.Factor, c.Factor, c.Factor
		return m
	case KindScaleAxis:
		return scaleAxis(c.Factor, r3.Unit(c.Vector))
	case KindShearXZ:
		m := Identity
		m[1] = c.Factor
		m[9] = c.FactorZ
		return m
	case KindRotate:
		return rotation(c.Angle, c.Vector)
	case KindMatrix:
		return c.Matrix
	}
	return Identity
}

// Inverse returns the component's inverse matrix, analytic for every kind
// except Custom.
func (c Component) Inverse() (Matrix, error) {
	if err := c.validate(); err != nil {
		return Matrix{}, err
	}
	switch c.Kind {
	case KindTranslate:
		return Translate(r3.Scale(-1, c.Vector)).Forward(), nil
	case KindScale:
		return Scale(1 / c.Factor).Forward(), nil
	case KindScaleAxis:
		return ScaleAxis(1/c.Factor, c.Vector).Forward(), nil
	case KindShearXZ:
		return ShearXZ(-c.Factor, -c.FactorZ).Forward(), nil
	case KindRotate:
		return Rotate(-c.Angle, c.Vector).Forward(), nil
	}
	return c.Matrix.Inverse()
}

// scaleAxis is I + (f-1)·a·aᵀ for unit axis a.
func scaleAxis(f float64, a r3.Vec) Matrix {
	k := f - 1
	m := Identity
	m[0] += k * a.X * a.X
	m[1] += k * a.X * a.Y
	m[2] += k * a.X * a.Z
	m[4] += k * a.Y * a.X
	m[5] += k * a.Y * a.Y
	m[6] += k * a.Y * a.Z
	m[8] += k * a.Z * a.X
	m[9] += k * a.Z * a.Y
	m[10] += k * a.Z * a.Z
	return m
}

// rotation builds the matrix whose columns are the rotated basis vectors.
func rotation(angle float64, axis r3.Vec) Matrix {
	if angle == 0 {
		return Identity
	}
	rot := r3.NewRotation(angle, axis)
	x := rot.Rotate(r3.Vec{X: 1})
	y := rot.Rotate(r3.Vec{Y: 1})
	z := rot.Rotate(r3.Vec{Z: 1})
	return Matrix{
		x.X, y.X, z.X, 0,
		x.Y, y.Y, z.Y, 0,
		x.Z, y.Z, z.Z, 0,
		0, 0, 0, 1,
	}
}
