// Package plotting renders the static workshop figures with gonum/plot.
// Every function writes one file; the extension (.png, .svg, .pdf)
// picks the format.
package plotting

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"mlworkshop/pkg/model"
)

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

// Series is one named curve of Curves.
type Series struct {
	Name string
	X, Y []float64
}

func save(p *plot.Plot, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	if err := p.Save(width, height, path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	return nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

// BarChart draws one bar per value with the given category labels.
func BarChart(path, title, yLabel string, labels []string, values []float64) error {
	if len(labels) != len(values) {
		return errors.Errorf("%d labels for %d values", len(labels), len(values))
	}
	p := newPlot(title, "", yLabel)
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(20))
	if err != nil {
		return errors.Wrap(err, "bar chart")
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	return save(p, path)
}

// Scatter draws the first two columns of X, one colour per label.
// centres, if any, are overlaid as black crosses.
func Scatter(path, title, xLabel, yLabel string, X [][]float64, labels []int, centres [][]float64) error {
	if labels != nil && len(labels) != len(X) {
		return errors.Errorf("%d labels for %d points", len(labels), len(X))
	}
	groups := map[int]plotter.XYs{}
	for i, row := range X {
		if len(row) < 2 {
			return errors.Errorf("point %d has %d coordinates, need 2", i, len(row))
		}
		l := 0
		if labels != nil {
			l = labels[i]
		}
		groups[l] = append(groups[l], plotter.XY{X: row[0], Y: row[1]})
	}
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	p := newPlot(title, xLabel, yLabel)
	for i, k := range keys {
		s, err := plotter.NewScatter(groups[k])
		if err != nil {
			return errors.Wrap(err, "scatter")
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		s.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(s)
		if labels != nil {
			p.Legend.Add(fmt.Sprintf("cluster %d", k), s)
		}
	}
	if len(centres) > 0 {
		pts := make(plotter.XYs, 0, len(centres))
		for _, c := range centres {
			if len(c) >= 2 {
				pts = append(pts, plotter.XY{X: c[0], Y: c[1]})
			}
		}
		c, err := plotter.NewScatter(pts)
		if err != nil {
			return errors.Wrap(err, "centres")
		}
		c.GlyphStyle.Color = color.Black
		c.GlyphStyle.Shape = draw.CrossGlyph{}
		c.GlyphStyle.Radius = vg.Points(5)
		p.Add(c)
		p.Legend.Add("k-means centre", c)
	}
	p.Legend.Top = true
	return save(p, path)
}

// Dendrogram draws the U-links of a linkage tree. cut, when positive, is
// drawn as a dashed horizontal line. Leaf labels are shown only for
// small trees.
func Dendrogram(path, title string, dg *model.Dendrogram, cut float64) error {
	if len(dg.Links) == 0 {
		return errors.New("dendrogram has no links")
	}
	p := newPlot(title, "observation", "distance")
	maxH := 0.0
	for _, link := range dg.Links {
		pts := make(plotter.XYs, 4)
		for i := range pts {
			pts[i] = plotter.XY{X: link.X[i], Y: link.Y[i]}
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrap(err, "dendrogram link")
		}
		l.LineStyle.Color = color.RGBA{B: 160, A: 255}
		l.LineStyle.Width = vg.Points(0.8)
		p.Add(l)
		if link.Height > maxH {
			maxH = link.Height
		}
	}

	right := float64(10 * len(dg.Leaves))
	if cut > 0 {
		l, err := plotter.NewLine(plotter.XYs{{X: 0, Y: cut}, {X: right, Y: cut}})
		if err != nil {
			return errors.Wrap(err, "cut line")
		}
		l.LineStyle.Color = color.RGBA{R: 220, A: 255}
		l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(l)
	}

	p.X.Min, p.X.Max = 0, right
	p.Y.Min = 0
	if len(dg.Leaves) <= 50 {
		ticks := make([]plot.Tick, len(dg.Leaves))
		for i, leaf := range dg.Leaves {
			ticks[i] = plot.Tick{Value: float64(10*i + 5), Label: fmt.Sprint(leaf)}
		}
		p.X.Tick.Marker = plot.ConstantTicks(ticks)
	} else {
		p.X.Tick.Marker = plot.ConstantTicks(nil)
	}
	return save(p, path)
}

// Histogram bins values into the given number of bins.
func Histogram(path, title, xLabel string, values []float64, bins int) error {
	if len(values) == 0 {
		return errors.New("histogram of no values")
	}
	p := newPlot(title, xLabel, "count")
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return errors.Wrap(err, "histogram")
	}
	h.FillColor = plotutil.Color(2)
	p.Add(h)
	return save(p, path)
}

// Curves overlays named line series with a legend.
func Curves(path, title, xLabel, yLabel string, series ...Series) error {
	if len(series) == 0 {
		return errors.New("no series to plot")
	}
	p := newPlot(title, xLabel, yLabel)
	for i, s := range series {
		if len(s.X) != len(s.Y) {
			return errors.Errorf("series %q has %d x and %d y values", s.Name, len(s.X), len(s.Y))
		}
		pts := make(plotter.XYs, len(s.X))
		for j := range s.X {
			pts[j] = plotter.XY{X: s.X[j], Y: s.Y[j]}
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "series %q", s.Name)
		}
		l.LineStyle.Color = plotutil.Color(i)
		l.LineStyle.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(s.Name, l)
	}
	p.Legend.Top = true
	p.Legend.Left = true
	return save(p, path)
}

// LossCurve plots a per-epoch training loss history.
func LossCurve(path string, history []float64) error {
	x := make([]float64, len(history))
	for i := range x {
		x[i] = float64(i + 1)
	}
	return Curves(path, "Training loss", "epoch", "MSE", Series{Name: "train", X: x, Y: history})
}
