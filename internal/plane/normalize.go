package plane

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/ledpanel/internal/affine"
	"github.com/banshee-data/ledpanel/internal/geom"
	"github.com/banshee-data/ledpanel/internal/monitoring"
)

// triVerts is the size of the defining triangle; quads are oriented and
// classified by their first three vertices.
const triVerts = 3

// MaxVertices is the largest polygon the normaliser accepts.
const MaxVertices = 4

var zAxis = r3.Vec{Z: 1}

// TriangleClass is the shape of the defining triangle.
type TriangleClass int

const (
	Other TriangleClass = iota
	Isosceles
	Equilateral
)

func (c TriangleClass) String() string {
	switch c {
	case Isosceles:
		return "isosceles"
	case Equilateral:
		return "equilateral"
	default:
		return "other"
	}
}

// Frame is a polygon expressed in its canonical frame.
type Frame struct {
	// ToWorld maps canonical points into world space; ToWorld.Inverse maps
	// world points into the frame.
	ToWorld  affine.Transform
	Vertices []r3.Vec
	Class    TriangleClass
}

// BaseWidth is the x coordinate of vertex 1.
func (f Frame) BaseWidth() float64 {
	return f.Vertices[1].X
}

// Normalizer runs the normalisation stages with a fixed tolerance.
type Normalizer struct {
	Tol geom.Tolerance
}

// NormalizePlane normalises vertices using the default tolerance.
func NormalizePlane(center, normal r3.Vec, vertices []r3.Vec) (Frame, error) {
	return Normalizer{Tol: geom.Default}.NormalizePlane(center, normal, vertices)
}

// NormalizePlane flattens the polygon onto the XY plane, orients it, moves
// it into the canonical frame and checks the result.
func (n Normalizer) NormalizePlane(center, normal r3.Vec, vertices []r3.Vec) (Frame, error) {
	if n := len(vertices); n < triVerts || n > MaxVertices {
		return Frame{}, geom.Errorf(geom.KindVertexCount, "%d vertices, want %d to %d", n, triVerts, MaxVertices)
	}

	flatten, flattened, err := n.Flatten(center, normal, vertices)
	if err != nil {
		return Frame{}, err
	}
	oriented, class, err := n.Orient(flattened)
	if err != nil {
		return Frame{}, err
	}
	normalize, normalised, err := n.Normalize(oriented)
	if err != nil {
		return Frame{}, err
	}
	if err := n.Check(normalised, class); err != nil {
		return Frame{}, err
	}

	worldToFrame := normalize.Mul(flatten)
	if err := worldToFrame.Check(); err != nil {
		return Frame{}, err
	}
	return Frame{
		ToWorld:  worldToFrame.Inverted(),
		Vertices: normalised,
		Class:    class,
	}, nil
}

// Flatten builds the transform taking the plane through center with the
// given normal onto the XY plane, and applies it to vertices.
func (n Normalizer) Flatten(center, normal r3.Vec, vertices []r3.Vec) (affine.Transform, []r3.Vec, error) {
	if r3.Norm(normal) == 0 {
		return affine.Transform{}, nil, geom.Errorf(geom.KindNormalization, "zero normal")
	}
	normal = r3.Unit(normal)

	var rotate affine.Component
	axis := r3.Cross(normal, zAxis)
	zenith := math.Atan2(r3.Norm(axis), r3.Dot(normal, zAxis))
	switch {
	case n.Tol.Zero(r3.Norm(axis)) && normal.Z > 0:
		rotate = affine.Rotate(0, zAxis)
	case n.Tol.Zero(r3.Norm(axis)):
		rotate = affine.Rotate(math.Pi, r3.Vec{X: 1})
	default:
		rotate = affine.Rotate(zenith, axis)
	}
	monitoring.Debugf("flatten: normal=%v zenith=%.6f axis=%v", normal, zenith, axis)

	flatten, err := affine.Compose(rotate, affine.Translate(r3.Scale(-1, center)))
	if err != nil {
		return affine.Transform{}, nil, err
	}

	flattened := make([]r3.Vec, len(vertices))
	for i, v := range vertices {
		flattened[i] = flatten.Matrix.Apply(v)
		if !n.Tol.Zero(flattened[i].Z) {
			return affine.Transform{}, nil, geom.Errorf(geom.KindNonCoplanar,
				"vertex %d is %.6g off the plane", i, flattened[i].Z)
		}
	}
	monitoring.Debugf("flatten: %v", flattened)
	return flatten, flattened, nil
}

// orientation is the z component of (p1-p0)x(p2-p0); positive when the first
// three points turn anticlockwise.
func orientation(points []r3.Vec) float64 {
	return r3.Cross(r3.Sub(points[1], points[0]), r3.Sub(points[2], points[0])).Z
}

// Orient makes the flattened points anticlockwise, classifies the defining
// triangle and rotates the list so the apex of an isosceles triangle ends up
// at index 2.
func (n Normalizer) Orient(flattened []r3.Vec) ([]r3.Vec, TriangleClass, error) {
	if len(flattened) < triVerts {
		return nil, Other, geom.Errorf(geom.KindVertexCount, "%d vertices, need at least %d", len(flattened), triVerts)
	}
	points := append([]r3.Vec(nil), flattened...)
	if orientation(points) < 0 {
		slices.Reverse(points)
		if o := orientation(points); o < 0 {
			return nil, Other, geom.Errorf(geom.KindOrientation, "orientation %.6g after reversing", o)
		}
	}

	var lengths [triVerts]float64
	for i := range lengths {
		lengths[i] = r3.Norm(r3.Sub(points[i], points[(i+1)%triVerts]))
	}
	equalIndex := -1
	equal := 0
	for i := range lengths {
		if n.Tol.Close(lengths[i]/lengths[(i+1)%triVerts], 1) {
			if equalIndex < 0 {
				equalIndex = i
			}
			equal++
		}
	}

	class := Other
	switch equal {
	case 3:
		class = Equilateral
	case 1:
		class = Isosceles
	}
	if class != Isosceles {
		equalIndex = 0
	}
	monitoring.Debugf("orient: lengths=%v class=%s equal_index=%d", lengths, class, equalIndex)
	return RotateSeq(points, equalIndex+2), class, nil
}

// Normalize moves oriented[0] to the origin and turns oriented[1] onto the
// positive x-axis.
func (n Normalizer) Normalize(oriented []r3.Vec) (affine.Transform, []r3.Vec, error) {
	if len(oriented) < 2 {
		return affine.Transform{}, nil, geom.Errorf(geom.KindVertexCount, "%d vertices", len(oriented))
	}
	base := r3.Sub(oriented[1], oriented[0])
	angle := math.Atan2(base.Y, base.X)
	normalize, err := affine.Compose(
		affine.Rotate(-angle, zAxis),
		affine.Translate(r3.Scale(-1, oriented[0])),
	)
	if err != nil {
		return affine.Transform{}, nil, err
	}
	normalised := make([]r3.Vec, len(oriented))
	for i, v := range oriented {
		normalised[i] = normalize.Matrix.Apply(v)
	}
	monitoring.Debugf("normalize: angle=%.6f vertices=%v", angle, normalised)
	return normalize, normalised, nil
}

// Check verifies the canonical frame invariants.
func (n Normalizer) Check(normalised []r3.Vec, class TriangleClass) error {
	if len(normalised) < triVerts {
		return geom.Errorf(geom.KindVertexCount, "%d vertices", len(normalised))
	}
	v0, v1, v2 := normalised[0], normalised[1], normalised[2]
	if !n.Tol.Zero(v0.X) || !n.Tol.Zero(v0.Y) {
		return geom.Errorf(geom.KindNormalization, "vertex 0 %v should be at the origin", v0)
	}
	if !(v1.X > 0) || !n.Tol.Zero(v1.Y) {
		return geom.Errorf(geom.KindNormalization, "vertex 1 %v should be on the positive x-axis", v1)
	}
	if v2.Y <= n.Tol.Value() {
		return geom.Errorf(geom.KindNormalization, "vertex 2 %v should be above the x-axis", v2)
	}
	if len(normalised) == triVerts && class != Other && !n.Tol.Close(v2.X, v1.X/2) {
		return geom.Errorf(geom.KindNormalization, "apex x %.6g should be half of base width %.6g for %s triangle", v2.X, v1.X, class)
	}
	return nil
}

// RotateSeq moves the first `times` elements to the back. Negative values
// rotate the other way.
func RotateSeq[T any](seq []T, times int) []T {
	if len(seq) == 0 {
		return nil
	}
	times = ((times % len(seq)) + len(seq)) % len(seq)
	out := make([]T, 0, len(seq))
	out = append(out, seq[times:]...)
	return append(out, seq[:times]...)
}
