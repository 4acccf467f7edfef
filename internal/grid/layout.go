package grid

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/ledpanel/internal/affine"
	"github.com/banshee-data/ledpanel/internal/geom"
	"github.com/banshee-data/ledpanel/internal/monitoring"
)

// Light is a pixel position in grid index space.
type Light struct {
	Col int
	Row int
}

// LightGrid is the wiring order of a panel's pixels.
type LightGrid []Light

// Pairs returns the grid as [col, row] pairs.
func (g LightGrid) Pairs() [][2]int {
	pairs := make([][2]int, len(g))
	for i, l := range g {
		pairs[i] = [2]int{l.Col, l.Row}
	}
	return pairs
}

// FromPairs builds a LightGrid from [col, row] pairs.
func FromPairs(pairs [][2]int) LightGrid {
	g := make(LightGrid, len(pairs))
	for i, p := range pairs {
		g[i] = Light{Col: p[0], Row: p[1]}
	}
	return g
}

// Spacing holds the pixel pitch along each grid direction.
type Spacing struct {
	Horizontal float64
	Vertical   float64
	Shear      float64
}

// Triple returns the spacing as (horizontal, vertical, shear).
func (s Spacing) Triple() [3]float64 {
	return [3]float64{s.Horizontal, s.Vertical, s.Shear}
}

// Margins are the resolved clearances on each side of the grid.
type Margins struct {
	Bottom float64
	Top    float64
	Left   float64
	Right  float64
}

// GeometryInfo describes the placement of a generated grid.
type GeometryInfo struct {
	// Translation is the frame position of grid index (0, 0).
	Translation r3.Vec
	Spacing     Spacing
	// Transform maps grid indices to frame coordinates.
	Transform affine.Transform

	GradientLeft  float64
	GradientRight float64
	Margins       Margins
	Rows          int
	Columns       int
}

// AxisCenteredLines fits lines `spacing` apart into an axis of the given
// length after removing both margins, centring them in the usable space.
// It returns the number of lines and the padding before the first line.
func AxisCenteredLines(axisLength, spacing, marginNear, marginFar float64, tol geom.Tolerance) (int, float64, error) {
	usable := axisLength - marginNear - marginFar
	lines := tol.Floor(usable/spacing) + 1
	usage := spacing * float64(lines-1)
	if usage > usable && !tol.Zero(usable-usage) {
		return 0, 0, geom.Errorf(geom.KindAxisCapacity, "usage %.6g exceeds usable %.6g", usage, usable)
	}
	padding := (usable - usage) / 2
	monitoring.Debugf("axis: usable=%.4f lines=%d usage=%.4f padding=%.4f", usable, lines, usage, padding)
	return lines, padding, nil
}

// GenerateLights computes the wiring order of the pixels that fit in the
// canonical polygon with the given corners, and the transform placing them.
func GenerateLights(baseWidth, quadRightX, quadRightHeight, quadLeftX, quadLeftHeight float64, cfg Config) (GeometryInfo, LightGrid, error) {
	if err := cfg.Validate(); err != nil {
		return GeometryInfo{}, nil, err
	}
	tol := cfg.Tolerance
	spacing := cfg.Spacing

	height := math.Max(quadLeftHeight, quadRightHeight)
	gradLeft := tol.InfDivide(quadLeftHeight, quadLeftX)
	gradRight := tol.InfDivide(quadRightHeight, quadRightX-baseWidth)
	monitoring.Debugf("grid: width=%.4f height=%.4f gradients left=%.4f right=%.4f grid=%.4f",
		baseWidth, height, gradLeft, gradRight, cfg.GridGradient)

	info := GeometryInfo{
		GradientLeft:  gradLeft,
		GradientRight: gradRight,
		Spacing: Spacing{
			Horizontal: spacing,
			Vertical:   cfg.spacingVertical(),
			Shear:      cfg.spacingShear(),
		},
	}
	spacingVertical := info.Spacing.Vertical

	m := Margins{Bottom: cfg.Margin, Top: cfg.Margin}
	switch {
	case cfg.MarginVerticalTop != nil:
		m.Top = *cfg.MarginVerticalTop
	default:
		if top, ok := geom.MarginIntersectOffset(gradLeft, gradRight, baseWidth, cfg.Margin); ok {
			m.Top = top
		}
	}
	m.Left = math.Abs(cfg.Margin / geom.GradientRise(gradLeft))
	if cfg.MarginLeft != nil {
		m.Left = *cfg.MarginLeft
	}
	m.Right = math.Abs(cfg.Margin / geom.GradientRise(gradRight))
	if cfg.MarginRight != nil {
		m.Right = *cfg.MarginRight
	}
	info.Margins = m
	monitoring.Debugf("grid: margins %+v", m)

	rows, verticalPadding, err := AxisCenteredLines(height, spacingVertical, m.Bottom, m.Top, tol)
	if err != nil {
		return GeometryInfo{}, nil, err
	}
	verticalStart := m.Bottom + verticalPadding

	startWidth := baseWidth - tol.InfDivide(verticalStart, gradLeft) + tol.InfDivide(verticalStart, gradRight)
	cols, horizontalPadding, err := AxisCenteredLines(startWidth, spacing, m.Left, m.Right, tol)
	if err != nil {
		return GeometryInfo{}, nil, err
	}
	horizontalUsage := spacing * float64(cols-1)
	horizontalStart := m.Left + tol.InfDivide(verticalStart, gradLeft) + horizontalPadding
	info.Rows, info.Columns = max(rows, 0), max(cols, 0)

	var lights LightGrid
	for v := 0; v < rows; v++ {
		y := float64(v) * spacingVertical
		// Where this row crosses the grid's shear axis.
		originX := tol.InfDivide(y, cfg.GridGradient)
		startRel := tol.InfDivide(y, gradLeft)
		endRel := horizontalUsage + tol.InfDivide(y, gradRight)
		startIdx := (startRel - originX) / spacing
		endIdx := (endRel - originX) / spacing
		if !finite(startIdx) || !finite(endIdx) {
			return GeometryInfo{}, nil, geom.Errorf(geom.KindRowCapacity,
				"row %d has non-finite bounds %.6g..%.6g", v, startRel, endRel)
		}
		gridStart := tol.AbsCeil(startIdx)
		gridEnd := tol.AbsFloor(endIdx)

		capacity := math.Abs(endRel - startRel)
		usage := float64(max(gridEnd-gridStart-1, 0)) * spacing
		monitoring.Debugf("grid: row %d start=%d end=%d capacity=%.4f usage=%.4f", v, gridStart, gridEnd, capacity, usage)
		if usage > capacity && !tol.Zero(capacity-usage) {
			return GeometryInfo{}, nil, geom.Errorf(geom.KindRowCapacity,
				"row %d usage %.6g exceeds capacity %.6g", v, usage, capacity)
		}

		row := make(LightGrid, 0, max(gridEnd-gridStart+1, 0))
		for h := gridStart; h <= gridEnd; h++ {
			row = append(row, Light{Col: h, Row: v})
		}
		if cfg.WiringSerpentine && v%2 == 1 {
			slices.Reverse(row)
		}
		lights = append(lights, row...)
	}
	if cfg.WiringReverse {
		slices.Reverse(lights)
	}

	info.Translation = r3.Vec{X: horizontalStart, Y: verticalStart, Z: cfg.ZOffset}
	transform, err := affine.Compose(
		affine.Translate(info.Translation),
		affine.ScaleAxis(spacingVertical/spacing, r3.Vec{Y: 1}),
		affine.ShearXZ(tol.InfDivide(spacingVertical, cfg.GridGradient)/spacing, 0),
		affine.Scale(spacing),
	)
	if err != nil {
		return GeometryInfo{}, nil, err
	}
	info.Transform = transform
	monitoring.Debugf("grid: %d lights in %d rows, translation %v", len(lights), rows, info.Translation)
	return info, lights, nil
}
