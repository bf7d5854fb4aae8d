// Package report renders evaluation charts for a training run.
package report

import (
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// PlotSize is the width and height of the rendered chart.
const PlotSize = 6 * vg.Inch

// PredictionPlot writes a predicted-vs-actual scatter chart with the
// identity line to path. The image format follows the file extension
// (.png, .svg, .pdf, ...).
func PredictionPlot(yTrue, yPred []float64, path string) error {
	if len(yTrue) == 0 {
		return errors.NewValueError("PredictionPlot", "empty vector")
	}
	if len(yTrue) != len(yPred) {
		return errors.NewDimensionError("PredictionPlot", len(yTrue), len(yPred), 0)
	}

	p := plot.New()
	p.Title.Text = "Predicted vs actual price"
	p.X.Label.Text = "Actual price (ZAR)"
	p.Y.Label.Text = "Predicted price (ZAR)"

	pts := make(plotter.XYs, len(yTrue))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range yTrue {
		pts[i].X, pts[i].Y = yTrue[i], yPred[i]
		lo = math.Min(lo, math.Min(yTrue[i], yPred[i]))
		hi = math.Max(hi, math.Max(yTrue[i], yPred[i]))
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "build scatter")
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(2.5)
	scatter.GlyphStyle.Color = color.RGBA{R: 44, G: 62, B: 80, A: 200}

	identity := plotter.NewFunction(func(x float64) float64 { return x })
	identity.Color = color.RGBA{R: 255, G: 75, B: 75, A: 255}
	identity.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	p.Add(plotter.NewGrid(), scatter, identity)
	p.Legend.Add("predictions", scatter)
	p.Legend.Add("perfect prediction", identity)
	p.Legend.Top = true
	p.Legend.Left = true

	p.X.Min, p.X.Max = lo, hi
	p.Y.Min, p.Y.Max = lo, hi

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}
	if err := p.Save(PlotSize, PlotSize, path); err != nil {
		return errors.Wrapf(err, "save plot to %s", path)
	}
	return nil
}
