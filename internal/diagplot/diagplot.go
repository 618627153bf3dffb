// Package diagplot renders diagnostic plots of a search run, for
// visually sanity-checking a result set before trusting it. Nothing
// here carries detection semantics.
package diagplot

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	// Liberation fonts register automatically on import.
	_ "gonum.org/v1/plot/font/liberation"

	"github.com/kbmod/kbmod/internal/search"
)

// likelihoodGrid adapts a per-pixel best-likelihood matrix to the
// plotter.GridXYZ interface a heat map needs.
type likelihoodGrid struct {
	w, h int
	z    []float64 // row-major, w*h
}

func (g *likelihoodGrid) Dims() (c, r int) { return g.w, g.h }
func (g *likelihoodGrid) X(c int) float64  { return float64(c) }
func (g *likelihoodGrid) Y(r int) float64  { return float64(r) }
func (g *likelihoodGrid) Z(c, r int) float64 {
	return g.z[r*g.w+c]
}

// PlotLikelihoodSurface renders a PNG heat map of the best likelihood
// recorded at each starting pixel across trajectories, to path.
func PlotLikelihoodSurface(path string, trajectories []search.Trajectory, w, h int) error {
	z := make([]float64, w*h)
	for i := range z {
		z[i] = math.Inf(-1)
	}
	for _, t := range trajectories {
		if t.X < 0 || t.X >= w || t.Y < 0 || t.Y >= h {
			continue
		}
		idx := t.Y*w + t.X
		if t.Lh > z[idx] {
			z[idx] = t.Lh
		}
	}
	zmin, zmax := math.Inf(1), math.Inf(-1)
	for i := range z {
		if math.IsInf(z[i], -1) {
			z[i] = 0
		}
		if z[i] < zmin {
			zmin = z[i]
		}
		if z[i] > zmax {
			zmax = z[i]
		}
	}

	p := plot.New()
	p.Title.Text = "best likelihood per starting pixel"
	p.Title.TextStyle.Font.Typeface = "Liberation"
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	grid := &likelihoodGrid{w: w, h: h, z: z}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(zmin)
	cm.SetMax(zmax)
	heatMap := plotter.NewHeatMap(grid, cm.Palette(256))
	p.Add(heatMap)

	if err := p.Save(vg.Points(float64(w)), vg.Points(float64(h)), path); err != nil {
		return fmt.Errorf("failed to render likelihood surface: %w", err)
	}
	return nil
}
