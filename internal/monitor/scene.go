// Package monitor renders replay output: an HTML scatter of the scene graph
// and PNG plots of per-cycle updater statistics.
package monitor

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/objectgraph/internal/scenegraph"
)

// sceneSeries maps each rendered layer to its series name and symbol size.
var sceneSeries = []struct {
	layer scenegraph.LayerID
	name  string
	size  int
}{
	{scenegraph.SegmentsLayer, "segments", 6},
	{scenegraph.ObjectsLayer, "objects", 14},
	{scenegraph.PlacesLayer, "places", 20},
}

// RenderSceneHTML writes a top-down (X/Y) scatter of the graph's segments,
// objects and places as a standalone HTML page.
func RenderSceneHTML(w io.Writer, g *scenegraph.Graph, title string) error {
	maxAbs := 0.0
	series := make([][]opts.ScatterData, len(sceneSeries))
	for i, s := range sceneSeries {
		nodes := g.LayerNodes(s.layer)
		data := make([]opts.ScatterData, 0, len(nodes))
		for _, n := range nodes {
			pos := n.Attrs.Base().Position
			maxAbs = math.Max(maxAbs, math.Max(math.Abs(pos.X), math.Abs(pos.Y)))
			data = append(data, opts.ScatterData{Name: nodeLabel(n), Value: []interface{}{pos.X, pos.Y}})
		}
		series[i] = data
	}

	// Pad so points at the edges are visible
	pad := maxAbs * 1.1
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Scene Graph", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("segments=%d objects=%d places=%d",
			len(series[0]), len(series[1]), len(series[2]))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)
	for i, s := range sceneSeries {
		scatter.AddSeries(s.name, series[i], charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: s.size}))
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render scene: %w", err)
	}
	return nil
}

func nodeLabel(n *scenegraph.Node) string {
	label := n.ID.Label()
	if sem, ok := scenegraph.SemanticOf(n.Attrs); ok && sem.Name != "" {
		label += " " + sem.Name
	}
	if parent, ok := n.Parent(); ok {
		label += " -> " + parent.Label()
	}
	return label
}
