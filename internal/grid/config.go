package grid

import (
	"math"

	"github.com/banshee-data/ledpanel/internal/geom"
)

// Config controls pixel placement for one panel.
type Config struct {
	// Spacing is the horizontal distance between pixels in a row.
	Spacing float64
	// SpacingVertical overrides the row pitch derived from GridGradient.
	SpacingVertical *float64
	// GridGradient is the slope of the axis successive rows are offset
	// along. +Inf gives an orthogonal grid.
	GridGradient float64

	// Margin is the minimum clearance between pixels and panel edges.
	Margin float64
	// Per-edge overrides. When nil the top margin comes from where the
	// inset side edges meet and the side margins from Margin.
	MarginVerticalTop *float64
	MarginLeft        *float64
	MarginRight       *float64

	// ZOffset is passed through to the z translation of the transform.
	ZOffset float64

	// WiringSerpentine reverses every odd row.
	WiringSerpentine bool
	// WiringReverse reverses the whole sequence after serpentine ordering.
	WiringReverse bool

	// Tolerance for rounding and capacity checks; zero means geom.ATOL.
	Tolerance geom.Tolerance
}

// DefaultConfig returns an orthogonal serpentine grid with the given spacing.
func DefaultConfig(spacing float64) Config {
	return Config{
		Spacing:          spacing,
		GridGradient:     math.Inf(1),
		WiringSerpentine: true,
	}
}

// Float returns a pointer to v, for the optional Config fields.
func Float(v float64) *float64 {
	return &v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks that the config can produce a grid.
func (c Config) Validate() error {
	if !finite(c.Spacing) || c.Spacing <= 0 {
		return geom.Errorf(geom.KindInvalidConfig, "spacing must be positive and finite, got %g", c.Spacing)
	}
	if math.IsNaN(c.GridGradient) || c.Tolerance.Zero(c.GridGradient) {
		return geom.Errorf(geom.KindInvalidConfig, "grid gradient must be non-zero, got %g", c.GridGradient)
	}
	if c.SpacingVertical != nil && (!finite(*c.SpacingVertical) || *c.SpacingVertical <= 0) {
		return geom.Errorf(geom.KindInvalidConfig, "vertical spacing must be positive and finite, got %g", *c.SpacingVertical)
	}
	if !finite(c.Margin) || c.Margin < 0 {
		return geom.Errorf(geom.KindInvalidConfig, "margin must be non-negative, got %g", c.Margin)
	}
	for _, m := range []struct {
		name  string
		value *float64
	}{
		{"top", c.MarginVerticalTop},
		{"left", c.MarginLeft},
		{"right", c.MarginRight},
	} {
		if m.value != nil && (!finite(*m.value) || *m.value < 0) {
			return geom.Errorf(geom.KindInvalidConfig, "%s margin must be non-negative, got %g", m.name, *m.value)
		}
	}
	if !finite(c.ZOffset) {
		return geom.Errorf(geom.KindInvalidConfig, "z offset must be finite, got %g", c.ZOffset)
	}
	return nil
}

// spacingVertical is the row pitch.
func (c Config) spacingVertical() float64 {
	if c.SpacingVertical != nil {
		return *c.SpacingVertical
	}
	return math.Abs(geom.GradientRise(c.GridGradient) * c.Spacing)
}

// spacingShear is the horizontal offset between successive rows.
func (c Config) spacingShear() float64 {
	if c.SpacingVertical != nil {
		return math.Abs(c.Tolerance.InfDivide(*c.SpacingVertical, c.GridGradient))
	}
	return math.Abs(geom.GradientRun(c.GridGradient) * c.Spacing)
}
