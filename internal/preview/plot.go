package preview

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/ledpanel/internal/fsutil"
	"github.com/banshee-data/ledpanel/internal/panel"
	"github.com/banshee-data/ledpanel/internal/security"
)

// PlotSize is the width and height of panel plots.
const PlotSize = 8 * vg.Inch

var (
	outlineColor = color.RGBA{R: 96, G: 96, B: 96, A: 255}
	wiringColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	pixelColor   = color.RGBA{R: 255, G: 82, B: 82, A: 255}
	startColor   = color.RGBA{R: 53, G: 183, B: 121, A: 255}
)

func xys(points []r3.Vec) plotter.XYs {
	pts := make(plotter.XYs, len(points))
	for i, p := range points {
		pts[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return pts
}

// NewPanelPlot draws the panel outline, its pixels and the wiring path in
// the canonical frame.
func NewPanelPlot(res panel.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - %d pixels, %d rows", res.Name, len(res.Lights), res.Geometry.Rows)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	outline := xys(res.Frame.Vertices)
	if len(outline) > 0 {
		outline = append(outline, outline[0])
	}
	outlineLine, err := plotter.NewLine(outline)
	if err != nil {
		return nil, fmt.Errorf("outline: %w", err)
	}
	outlineLine.Color = outlineColor
	outlineLine.Width = vg.Points(1.5)
	p.Add(outlineLine)
	p.Legend.Add("panel", outlineLine)

	pixels := xys(res.FramePixels())
	if len(pixels) == 0 {
		return p, nil
	}

	wiring, err := plotter.NewLine(pixels)
	if err != nil {
		return nil, fmt.Errorf("wiring: %w", err)
	}
	wiring.Color = wiringColor
	wiring.Width = vg.Points(0.75)
	p.Add(wiring)
	p.Legend.Add("wiring", wiring)

	scatter, err := plotter.NewScatter(pixels)
	if err != nil {
		return nil, fmt.Errorf("pixels: %w", err)
	}
	scatter.GlyphStyle.Color = pixelColor
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	p.Legend.Add("pixels", scatter)

	start, err := plotter.NewScatter(pixels[:1])
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	start.GlyphStyle.Color = startColor
	start.GlyphStyle.Radius = vg.Points(4)
	start.GlyphStyle.Shape = draw.RingGlyph{}
	p.Add(start)
	p.Legend.Add("first pixel", start)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// PlotPanel renders a panel plot as PNG to path.
func PlotPanel(fsys fsutil.FileSystem, res panel.Result, path string) error {
	p, err := NewPanelPlot(res)
	if err != nil {
		return fmt.Errorf("plot %s: %w", res.Name, err)
	}
	wt, err := p.WriterTo(PlotSize, PlotSize, "png")
	if err != nil {
		return fmt.Errorf("plot %s: %w", res.Name, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("render %s: %w", res.Name, err)
	}
	return fsutil.WriteFileAll(fsys, path, buf.Bytes())
}

// PlotAll writes one PNG per result into dir, named after the panel.
// Returns the number of plots written.
func PlotAll(fsys fsutil.FileSystem, results []panel.Result, dir string) (int, error) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create plot dir: %w", err)
	}
	count := 0
	for _, res := range results {
		path, err := security.JoinWithin(dir, security.SanitizeFilename(res.Name)+".png")
		if err != nil {
			return count, err
		}
		if err := PlotPanel(fsys, res, path); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
