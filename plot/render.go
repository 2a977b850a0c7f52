// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package plot draws segments and corridors to an image.
package plot

import (
	"fmt"
	"image/color"
	"log"
	"math"

	"github.com/jcodagnone/corredores/spatial"
	"github.com/jcodagnone/corredores/traclus"
	"github.com/jcodagnone/corredores/trajectory"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// legendMax caps the corridors listed in the legend.
const legendMax = 12

var unassignedColor = color.Gray{Y: 200}

// Options controls the rendered image. Zero values take the defaults.
type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = 10 * vg.Inch
	}

	if o.Height == 0 {
		o.Height = 8 * vg.Inch
	}

	if o.Title == "" {
		o.Title = "Corridors"
	}

	return o
}

// lines draws independent line segments with one style.
type lines struct {
	lines []spatial.LineString
	draw.LineStyle
}

func newLines(c color.Color, width vg.Length) *lines {
	return &lines{LineStyle: draw.LineStyle{Color: c, Width: width}}
}

// Plot implements gplot.Plotter.
func (l *lines) Plot(c draw.Canvas, plt *gplot.Plot) {
	trX, trY := plt.Transforms(&c)

	for _, ln := range l.lines {
		c.StrokeLine2(l.LineStyle, trX(ln.A.X), trY(ln.A.Y), trX(ln.B.X), trY(ln.B.Y))
	}
}

// DataRange implements gplot.DataRanger.
func (l *lines) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)

	for _, ln := range l.lines {
		for _, p := range []spatial.Point{ln.A, ln.B} {
			xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
			ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
		}
	}

	return xmin, xmax, ymin, ymax
}

// Thumbnail implements gplot.Thumbnailer.
func (l *lines) Thumbnail(c *draw.Canvas) {
	y := c.Center().Y
	c.StrokeLine2(l.LineStyle, c.Min.X, y, c.Max.X, y)
}

// Render draws every segment of set, gray when unassigned and in its
// corridor's color otherwise, with the corridor average lines on top. The
// image format follows the extension of path.
func Render(path string, set *trajectory.Set, corridors []*traclus.Corridor, opts Options) error {
	opts = opts.withDefaults()

	p := gplot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	colors := generateColors(len(corridors))
	members := make([]*lines, len(corridors))

	for i, c := range colors {
		members[i] = newLines(c, vg.Points(0.5))
	}

	unassigned := newLines(unassignedColor, vg.Points(0.5))

	for seg := range set.Segments() {
		if seg.Corridor < 0 || seg.Corridor >= len(members) {
			unassigned.lines = append(unassigned.lines, seg.Line())

			continue
		}

		members[seg.Corridor].lines = append(members[seg.Corridor].lines, seg.Line())
	}

	if len(unassigned.lines) > 0 {
		p.Add(unassigned)
	}

	for _, m := range members {
		if len(m.lines) > 0 {
			p.Add(m)
		}
	}

	for i, c := range corridors {
		avg := newLines(colors[i], vg.Points(3))
		avg.lines = []spatial.LineString{c.Line()}
		p.Add(avg)

		if i < legendMax {
			p.Legend.Add(fmt.Sprintf("corridor %d (%.4g)", c.ID, c.Weight), avg)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("save corridor plot: %w", err)
	}

	log.Printf("Wrote plot with %d corridors to %s", len(corridors), path)

	return nil
}

// generateColors spreads n hues from red to magenta. Rainbow needs at least
// two colors to compute its hue step.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	return palette.Rainbow(max(n, 2), palette.Red, palette.Magenta, 0.8, 0.9, 1).Colors()[:n]
}
