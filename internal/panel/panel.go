package panel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/ledpanel/internal/affine"
	"github.com/banshee-data/ledpanel/internal/geom"
	"github.com/banshee-data/ledpanel/internal/grid"
	"github.com/banshee-data/ledpanel/internal/monitoring"
	"github.com/banshee-data/ledpanel/internal/plane"
	"github.com/banshee-data/ledpanel/internal/pose"
)

// MaxVertices is the largest polygon a panel may be.
const MaxVertices = plane.MaxVertices

// Polygon is one planar face of the structure in world coordinates.
type Polygon struct {
	Name     string
	Center   r3.Vec
	Normal   r3.Vec
	Vertices []r3.Vec
}

// Options apply to every panel in a run.
type Options struct {
	Grid grid.Config
	// VertexRotation rotates the vertex list before normalisation, which
	// selects the edge that becomes the base of the grid.
	VertexRotation int
	// Basis is the frame poses are reported against. The zero value means
	// the world frame.
	Basis     affine.Matrix
	Overrides map[string]PanelOverride
}

func (o Options) basis() affine.Matrix {
	if o.Basis == (affine.Matrix{}) {
		return affine.Identity
	}
	return o.Basis
}

// Result is the layout of one panel.
type Result struct {
	Name     string
	Frame    plane.Frame
	Geometry grid.GeometryInfo
	Lights   grid.LightGrid
	// Transform maps grid indices to world space.
	Transform affine.Transform
	Pose      pose.Result
	// PixelVertices are the panel vertices in grid index space.
	PixelVertices []r3.Vec
	Overridden    bool
	Metadata      map[string]string
}

// FramePixels returns each light's position in the canonical frame.
func (r Result) FramePixels() []r3.Vec {
	return applyAll(r.Geometry.Transform.Matrix, r.Lights)
}

// WorldPixels returns each light's position in world space.
func (r Result) WorldPixels() []r3.Vec {
	return applyAll(r.Transform.Matrix, r.Lights)
}

func applyAll(m affine.Matrix, lights grid.LightGrid) []r3.Vec {
	out := make([]r3.Vec, len(lights))
	for i, l := range lights {
		out[i] = m.Apply(r3.Vec{X: float64(l.Col), Y: float64(l.Row)})
	}
	return out
}

// Process lays out a single panel.
func Process(poly Polygon, opts Options) (Result, error) {
	if n := len(poly.Vertices); n < 3 || n > MaxVertices {
		return Result{}, geom.Errorf(geom.KindVertexCount, "%s has %d vertices, want 3 or 4", poly.Name, n)
	}

	override, hasOverride := opts.Overrides[poly.Name]
	cfg := opts.Grid
	if hasOverride && override.Grid != nil {
		cfg = *override.Grid
	}

	vertices := plane.RotateSeq(poly.Vertices, opts.VertexRotation)
	frame, err := plane.Normalizer{Tol: cfg.Tolerance}.NormalizePlane(poly.Center, poly.Normal, vertices)
	if err != nil {
		return Result{}, err
	}

	v := frame.Vertices
	last := v[len(v)-1]
	info, lights, err := grid.GenerateLights(v[1].X, v[2].X, v[2].Y, last.X, last.Y, cfg)
	if err != nil {
		return Result{}, err
	}

	res := Result{Name: poly.Name, Frame: frame}
	if hasOverride {
		info, lights, err = override.Apply(info, lights)
		if err != nil {
			return Result{}, err
		}
		res.Overridden = true
		res.Metadata = override.Metadata
	}
	res.Geometry = info
	res.Lights = lights

	res.Transform = frame.ToWorld.Mul(info.Transform)
	if err := res.Transform.Check(); err != nil {
		return Result{}, err
	}
	res.Pose, err = pose.DecomposeRelative(res.Transform.Matrix, opts.basis())
	if err != nil {
		return Result{}, err
	}

	res.PixelVertices = make([]r3.Vec, len(v))
	for i, p := range v {
		res.PixelVertices[i] = info.Transform.Inverse.Apply(p)
	}

	monitoring.Logf("panel %s: %s with %d lights in %d rows", poly.Name, frame.Class, len(lights), info.Rows)
	return res, nil
}

// Bounds returns the axis-aligned bounds of every polygon vertex.
func Bounds(polys []Polygon) (lo, hi r3.Vec) {
	lo = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range polys {
		for _, v := range p.Vertices {
			lo = r3.Vec{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
			hi = r3.Vec{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
		}
	}
	return lo, hi
}
