package panel

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/ledpanel/internal/affine"
	"github.com/banshee-data/ledpanel/internal/grid"
)

// PanelOverride adjusts one named panel. Grid replaces the run's grid
// config before layout; the remaining fields are applied to the generated
// layout afterwards.
type PanelOverride struct {
	Grid *grid.Config
	// GridMatrix replaces the grid transform outright.
	GridMatrix *affine.Matrix
	// GridOrigin moves grid index (0, 0) to this frame position.
	GridOrigin *r3.Vec
	// PixelSequence replaces the wiring order.
	PixelSequence grid.LightGrid
	Metadata      map[string]string
}

// Apply returns the layout with the override's post-processing applied.
func (o PanelOverride) Apply(info grid.GeometryInfo, lights grid.LightGrid) (grid.GeometryInfo, grid.LightGrid, error) {
	if o.GridMatrix != nil {
		t, err := affine.NewTransform(*o.GridMatrix)
		if err != nil {
			return grid.GeometryInfo{}, nil, err
		}
		info.Transform = t
		info.Translation = t.Matrix.Translation()
	}
	if o.GridOrigin != nil {
		t, err := affine.NewTransform(info.Transform.Matrix.WithTranslation(*o.GridOrigin))
		if err != nil {
			return grid.GeometryInfo{}, nil, err
		}
		info.Transform = t
		info.Translation = *o.GridOrigin
	}
	if o.PixelSequence != nil {
		lights = slices.Clone(o.PixelSequence)
	}
	return info, lights, nil
}
