package monitor

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/objectgraph/internal/objects"
)

// ErrNoCycles is returned when there is nothing to plot.
var ErrNoCycles = errors.New("monitor: no cycles to plot")

// cycleCounters are the per-cycle series drawn by SaveCyclePlot.
var cycleCounters = []struct {
	label string
	value func(objects.CycleStats) float64
}{
	{"new edges", func(s objects.CycleStats) float64 { return float64(s.NewEdges) }},
	{"retired components", func(s objects.CycleStats) float64 { return float64(s.RetiredComponents) }},
	{"objects created", func(s objects.CycleStats) float64 { return float64(s.ObjectsCreated) }},
	{"rejected objects", func(s objects.CycleStats) float64 { return float64(s.RejectedObjects) }},
	{"attached", func(s objects.CycleStats) float64 { return float64(s.Attached) }},
	{"live components", func(s objects.CycleStats) float64 { return float64(s.LiveComponents) }},
	{"active objects", func(s objects.CycleStats) float64 { return float64(s.ActiveObjects) }},
}

// SaveCyclePlot draws one line per updater counter against the cycle index
// and saves the plot to path. The file extension selects the format.
func SaveCyclePlot(path string, stats []objects.CycleStats) error {
	if len(stats) == 0 {
		return ErrNoCycles
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Object updater - %d cycles", len(stats))
	p.X.Label.Text = "Cycle"
	p.Y.Label.Text = "Count"

	colors := generateColors(len(cycleCounters))
	for i, c := range cycleCounters {
		pts := make(plotter.XYs, 0, len(stats))
		for _, s := range stats {
			pts = append(pts, plotter.XY{X: float64(s.Cycle), Y: c.value(s)})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(c.label, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save cycle plot: %w", err)
	}
	return nil
}

// generateColors creates a palette of n distinct colors
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
