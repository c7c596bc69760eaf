// Package visualize renders run history as PNG plots. It only reads
// snapshots and never touches a live solver.
package visualize

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/copyleftdev/firefly/internal/optimization"
	"github.com/copyleftdev/firefly/internal/optimization/firefly"
)

// ErrEmptyHistory is returned when there is nothing to plot.
var ErrEmptyHistory = errors.New("visualize: empty history")

var (
	swarmColor = color.RGBA{R: 70, G: 110, B: 190, A: 255}
	bestColor  = color.RGBA{R: 220, G: 50, B: 40, A: 255}
	meanColor  = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// Renderer draws fixed-size PNG plots.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewRenderer returns a 6x4 inch renderer.
func NewRenderer() *Renderer {
	return &Renderer{Width: 6 * vg.Inch, Height: 4 * vg.Inch}
}

// Generation plots the agents of one snapshot with the best agent
// highlighted. Coordinates 0 and 1 are plotted on a plane clipped to the
// bounds; a 1-D swarm is plotted as coordinate against light.
func (r *Renderer) Generation(w io.Writer, snap firefly.SwarmSnapshot, bounds optimization.Bounds) error {
	if snap.Len() == 0 {
		return ErrEmptyHistory
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Generation %d (alpha %.3g)", snap.Generation(), snap.Alpha())
	p.X.Min, p.X.Max = bounds.Low, bounds.High
	p.Add(plotter.NewGrid())

	oneD := snap.Best().Dimension() == 1
	if oneD {
		p.X.Label.Text = "x"
		p.Y.Label.Text = "light"
	} else {
		p.X.Label.Text = "x0"
		p.Y.Label.Text = "x1"
		p.Y.Min, p.Y.Max = bounds.Low, bounds.High
	}

	point := func(a firefly.AgentSnapshot) (plotter.XY, bool) {
		if oneD {
			xy := plotter.XY{X: a.Coord(0), Y: a.Light()}
			return xy, finite(xy.Y)
		}
		return plotter.XY{X: a.Coord(0), Y: a.Coord(1)}, true
	}

	swarm := make(plotter.XYs, 0, snap.Len()-1)
	for i := 1; i < snap.Len(); i++ {
		if xy, ok := point(snap.Agent(i)); ok {
			swarm = append(swarm, xy)
		}
	}
	if len(swarm) > 0 {
		s, err := plotter.NewScatter(swarm)
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = swarmColor
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(s)
		p.Legend.Add("swarm", s)
	}

	if xy, ok := point(snap.Best()); ok {
		b, err := plotter.NewScatter(plotter.XYs{xy})
		if err != nil {
			return err
		}
		b.GlyphStyle.Color = bestColor
		b.GlyphStyle.Shape = draw.CrossGlyph{}
		b.GlyphStyle.Radius = vg.Points(5)
		p.Add(b)
		p.Legend.Add(fmt.Sprintf("best %.4g", snap.Best().Light()), b)
	}

	p.Legend.Top = true
	return r.writePNG(w, p)
}

// Convergence plots the best and mean light of every generation.
// Non-finite values are skipped.
func (r *Renderer) Convergence(w io.Writer, history []firefly.SwarmSnapshot) error {
	if len(history) == 0 {
		return ErrEmptyHistory
	}

	p := plot.New()
	p.Title.Text = "Convergence"
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Light"

	best := make(plotter.XYs, 0, len(history))
	mean := make(plotter.XYs, 0, len(history))
	for _, snap := range history {
		stats := snap.Stats()
		gen := float64(snap.Generation())
		if finite(stats.Best) {
			best = append(best, plotter.XY{X: gen, Y: stats.Best})
		}
		if finite(stats.Mean) {
			mean = append(mean, plotter.XY{X: gen, Y: stats.Mean})
		}
	}

	p.Add(plotter.NewGrid())
	if len(mean) > 0 {
		meanLine, err := plotter.NewLine(mean)
		if err != nil {
			return err
		}
		meanLine.Color = meanColor
		meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(meanLine)
		p.Legend.Add("mean", meanLine)
	}
	if len(best) > 0 {
		bestLine, err := plotter.NewLine(best)
		if err != nil {
			return err
		}
		bestLine.Color = bestColor
		bestLine.Width = vg.Points(1.5)
		p.Add(bestLine)
		p.Legend.Add("best", bestLine)
	}
	p.Legend.Top = true
	return r.writePNG(w, p)
}

func (r *Renderer) writePNG(w io.Writer, p *plot.Plot) error {
	c := vgimg.New(r.Width, r.Height)
	p.Draw(draw.New(c))
	png := vgimg.PngCanvas{Canvas: c}
	_, err := png.WriteTo(w)
	return err
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
