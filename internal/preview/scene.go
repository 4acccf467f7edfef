package preview

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/ledpanel/internal/panel"
)

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// SceneChart plots every world-space pixel viewed from above, coloured by
// height.
func SceneChart(results []panel.Result) *charts.Scatter {
	var data []opts.ScatterData
	minX, minY, minZ := math.Inf(1), math.Inf(1), math.Inf(1)
	maxX, maxY, maxZ := math.Inf(-1), math.Inf(-1), math.Inf(-1)
	for _, res := range results {
		for i, p := range res.WorldPixels() {
			data = append(data, opts.ScatterData{
				Name:  fmt.Sprintf("%s #%d", res.Name, i),
				Value: []interface{}{p.X, p.Y, p.Z},
			})
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
			minZ, maxZ = math.Min(minZ, p.Z), math.Max(maxZ, p.Z)
		}
	}
	if len(data) == 0 {
		minX, maxX, minY, maxY, minZ, maxZ = -1, 1, -1, 1, 0, 1
	}

	// Square plot: equal ranges on both axes.
	half := math.Max(maxX-minX, maxY-minY)/2 + 0.05
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "LED Panel Layout", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "World Pixels", Subtitle: fmt.Sprintf("panels=%d pixels=%d", len(results), len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: cx - half, Max: cx + half, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: cy - half, Max: cy + half, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minZ),
			Max:        float32(maxZ),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("pixels", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return scatter
}

// CountChart is a bar chart of pixels per panel.
func CountChart(results []panel.Result) *charts.Bar {
	names := make([]string, len(results))
	counts := make([]opts.BarData, len(results))
	for i, res := range results {
		names[i] = res.Name
		counts[i] = opts.BarData{Value: len(res.Lights)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Pixels per Panel"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("pixels", counts,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// WriteSceneHTML renders the scene and per-panel counts as one HTML page.
func WriteSceneHTML(w io.Writer, results []panel.Result) error {
	page := components.NewPage()
	page.SetPageTitle("LED Panel Layout")
	page.AddCharts(SceneChart(results), CountChart(results))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}
