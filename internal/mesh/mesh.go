package mesh

import (
	"encoding/json"
	"fmt"
	"regexp"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/ledpanel/internal/affine"
	"github.com/banshee-data/ledpanel/internal/fsutil"
	"github.com/banshee-data/ledpanel/internal/monitoring"
	"github.com/banshee-data/ledpanel/internal/panel"
)

// MaxFileSize caps mesh files read by Load.
const MaxFileSize = 16 * 1024 * 1024 // 16MB

// PanelGroup is the collection name used in panel names.
const PanelGroup = "PANELS"

// Structure is one exported mesh object.
type Structure struct {
	Type     string      `json:"type,omitempty"`
	Name     string      `json:"name"`
	Matrix   [][]float64 `json:"matrix,omitempty"`
	Vertices [][]float64 `json:"vertices"`
	Faces    [][]int     `json:"faces"`
}

type document struct {
	Structures []Structure `json:"structures"`
	Structure
}

// Load reads and decodes a mesh file.
func Load(fsys fsutil.FileSystem, path string) ([]Structure, error) {
	data, err := fsutil.ReadLimited(fsys, path, MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load mesh: %w", err)
	}
	structures, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return structures, nil
}

// Decode parses mesh JSON.
func Decode(data []byte) ([]Structure, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse mesh JSON: %w", err)
	}
	if len(doc.Structures) > 0 {
		return doc.Structures, nil
	}
	if len(doc.Vertices) == 0 && len(doc.Faces) == 0 {
		return nil, fmt.Errorf("mesh has no structures")
	}
	return []Structure{doc.Structure}, nil
}

// World returns the structure's world matrix, or the identity when none
// was exported.
func (s Structure) World() (affine.Matrix, error) {
	if s.Matrix == nil {
		return affine.Identity, nil
	}
	if len(s.Matrix) != 4 {
		return affine.Matrix{}, fmt.Errorf("matrix must have 4 rows, got %d", len(s.Matrix))
	}
	var rows [4][4]float64
	for i, row := range s.Matrix {
		if len(row) != 4 {
			return affine.Matrix{}, fmt.Errorf("matrix row %d must have 4 columns, got %d", i, len(row))
		}
		copy(rows[i][:], row)
	}
	return affine.FromRows(rows), nil
}

// Polygons returns one polygon per face with world-space vertices. The
// center is the vertex mean and the normal is (p1-p0) x (p2-p0), so faces
// are expected counter-clockwise when viewed against the normal.
func (s Structure) Polygons() ([]panel.Polygon, error) {
	world, err := s.World()
	if err != nil {
		return nil, fmt.Errorf("structure %q: %w", s.Name, err)
	}

	local := make([]r3.Vec, len(s.Vertices))
	for i, v := range s.Vertices {
		if len(v) != 3 {
			return nil, fmt.Errorf("structure %q: vertex %d has %d components, want 3", s.Name, i, len(v))
		}
		local[i] = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}

	prefix := SanitiseName(s.Name)
	polys := make([]panel.Polygon, 0, len(s.Faces))
	for fi, face := range s.Faces {
		if len(face) < 3 {
			return nil, fmt.Errorf("structure %q: face %d has %d vertices, want at least 3", s.Name, fi, len(face))
		}
		vertices := make([]r3.Vec, len(face))
		var center r3.Vec
		for j, idx := range face {
			if idx < 0 || idx >= len(local) {
				return nil, fmt.Errorf("structure %q: face %d references vertex %d of %d", s.Name, fi, idx, len(local))
			}
			vertices[j] = world.Apply(local[idx])
			center = r3.Add(center, vertices[j])
		}
		polys = append(polys, panel.Polygon{
			Name:     fmt.Sprintf("%s.%s[%d]", prefix, PanelGroup, fi),
			Center:   r3.Scale(1/float64(len(vertices)), center),
			Normal:   Normal(vertices),
			Vertices: vertices,
		})
	}
	monitoring.Logf("mesh %s: %d faces, %d vertices", s.Name, len(s.Faces), len(s.Vertices))
	return polys, nil
}

// Polygons flattens the faces of every structure into panel polygons.
func Polygons(structures []Structure) ([]panel.Polygon, error) {
	var polys []panel.Polygon
	for _, s := range structures {
		p, err := s.Polygons()
		if err != nil {
			return nil, err
		}
		polys = append(polys, p...)
	}
	return polys, nil
}

// Normal returns (p1-p0) x (p2-p0) for the first three points. Only the
// first three are used since the points are assumed coplanar.
func Normal(points []r3.Vec) r3.Vec {
	if len(points) < 3 {
		return r3.Vec{}
	}
	return r3.Cross(r3.Sub(points[1], points[0]), r3.Sub(points[2], points[0]))
}

var nonWord = regexp.MustCompile(`\W+`)

// SanitiseName replaces each run of non-word characters with an underscore.
func SanitiseName(name string) string {
	return nonWord.ReplaceAllString(name, "_")
}
