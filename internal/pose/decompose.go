package pose

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/ledpanel/internal/affine"
	"github.com/banshee-data/ledpanel/internal/geom"
	"github.com/banshee-data/ledpanel/internal/monitoring"
)

var (
	xAxis = r3.Vec{X: 1}
	yAxis = r3.Vec{Y: 1}
	zAxis = r3.Vec{Z: 1}
)

// Result is a decomposed pose. Angles are in degrees.
type Result struct {
	Translation r3.Vec
	Yaw         float64
	Pitch       float64
	Roll        float64
	// Residual is the largest distance between the transform's unit X and Z
	// axes and those rebuilt from the angles.
	Residual float64
}

// basis holds the axes of a rigid frame in world space.
type basis struct {
	x, y, z r3.Vec
}

func basisOf(m affine.Matrix) (basis, error) {
	b := basis{x: m.ApplyVector(xAxis), y: m.ApplyVector(yAxis), z: m.ApplyVector(zAxis)}
	tol := geom.Default
	if !tol.Close(r3.Norm(b.x), 1) || !tol.Close(r3.Norm(b.y), 1) || !tol.Close(r3.Norm(b.z), 1) ||
		!tol.Zero(r3.Dot(b.x, b.y)) || !tol.Zero(r3.Dot(b.y, b.z)) || !tol.Zero(r3.Dot(b.z, b.x)) {
		return basis{}, geom.Errorf(geom.KindDegeneratePose, "basis is not a rotation:\n%v", m)
	}
	return b, nil
}

// rotation composes yaw about b.z, pitch about the yawed y axis and roll
// about the resulting x axis. Angles are in radians.
func (b basis) rotation(yaw, pitch, roll float64) r3.Rotation {
	qYaw := r3.NewRotation(yaw, b.z)
	qPitch := r3.NewRotation(pitch, qYaw.Rotate(b.y))
	x2 := qPitch.Rotate(qYaw.Rotate(b.x))
	qRoll := r3.NewRotation(roll, x2)
	q := quat.Mul(quat.Number(qRoll), quat.Mul(quat.Number(qPitch), quat.Number(qYaw)))
	return r3.Rotation(q)
}

// Decompose is DecomposeRelative with the identity basis.
func Decompose(transform affine.Matrix) (Result, error) {
	return DecomposeRelative(transform, affine.Identity)
}

// DecomposeRelative returns the translation of transform and the yaw, pitch
// and roll that carry the axes of basisTransform onto the transform's X and
// Z axes.
func DecomposeRelative(transform, basisTransform affine.Matrix) (Result, error) {
	if !transform.IsFinite() || !basisTransform.IsFinite() {
		return Result{}, geom.Errorf(geom.KindDegeneratePose, "non-finite transform")
	}
	b, err := basisOf(basisTransform)
	if err != nil {
		return Result{}, err
	}

	origin := transform.Apply(r3.Vec{})
	xPrime := transform.ApplyVector(xAxis)
	zPrime := transform.ApplyVector(zAxis)
	tol := geom.Default
	if tol.Zero(r3.Norm(xPrime)) || tol.Zero(r3.Norm(zPrime)) {
		return Result{}, geom.Errorf(geom.KindDegeneratePose, "transform collapses the X or Z axis")
	}
	xPrime, zPrime = r3.Unit(xPrime), r3.Unit(zPrime)

	xb, yb := r3.Dot(xPrime, b.x), r3.Dot(xPrime, b.y)
	yaw := math.Atan2(yb, xb)
	pitch := math.Atan2(-r3.Dot(xPrime, b.z), math.Hypot(xb, yb))

	qYaw := r3.NewRotation(yaw, b.z)
	qPitch := r3.NewRotation(pitch, qYaw.Rotate(b.y))
	zInter := qPitch.Rotate(qYaw.Rotate(b.z))
	cross := r3.Cross(zInter, zPrime)
	roll := math.Atan2(r3.Norm(cross), r3.Dot(zInter, zPrime))
	if r3.Dot(cross, xPrime) < 0 {
		roll = -roll
	}

	q := b.rotation(yaw, pitch, roll)
	residual := math.Max(
		r3.Norm(r3.Sub(q.Rotate(b.x), xPrime)),
		r3.Norm(r3.Sub(q.Rotate(b.z), zPrime)),
	)
	if residual > geom.ATOL {
		monitoring.Logf("pose: rebuilt axes differ by %.6g (yaw=%.3f pitch=%.3f roll=%.3f)",
			residual, degrees(yaw), degrees(pitch), degrees(roll))
	}

	res := Result{
		Translation: origin,
		Yaw:         degrees(yaw),
		Pitch:       degrees(pitch),
		Roll:        degrees(roll),
		Residual:    residual,
	}
	monitoring.Debugf("pose: %+v", res)
	return res, nil
}

// FromAngles builds the rotation matrix for yaw, pitch and roll in degrees,
// applied after basisTransform so that DecomposeRelative recovers them. The
// rotation acts on the basis axes only; the basis origin is kept.
func FromAngles(yaw, pitch, roll float64, basisTransform affine.Matrix) (affine.Matrix, error) {
	b, err := basisOf(basisTransform)
	if err != nil {
		return affine.Matrix{}, err
	}
	q := b.rotation(radians(yaw), radians(pitch), radians(roll))
	x, y, z := q.Rotate(xAxis), q.Rotate(yAxis), q.Rotate(zAxis)
	rot := affine.Matrix{
		x.X, y.X, z.X, 0,
		x.Y, y.Y, z.Y, 0,
		x.Z, y.Z, z.Z, 0,
		0, 0, 0, 1,
	}
	return rot.Mul(basisTransform.WithTranslation(r3.Vec{})).WithTranslation(basisTransform.Translation()), nil
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func radians(deg float64) float64 { return deg * math.Pi / 180 }
