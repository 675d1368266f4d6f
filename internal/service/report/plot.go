package report

import (
	"bytes"
	"fmt"
	"sort"

	"CPIReg/internal/domain/models"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// PlotContentType is the MIME type of RenderPlot output.
const PlotContentType = chart.ContentTypePNG

// PlotOptions configures RenderPlot. Zero values fall back to defaults.
type PlotOptions struct {
	Title       string
	XLabel      string
	YLabel      string
	Width       int
	Height      int
	PointsLabel string
	LineLabel   string
}

// DefaultPlotOptions matches the labels used by the command line tool.
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		Title:       "CPI vs Division Performance",
		XLabel:      "CPI (Consumer Price Index)",
		YLabel:      "Division performance",
		Width:       1000,
		Height:      600,
		PointsLabel: "Actual",
		LineLabel:   "Regression line",
	}
}

func (o PlotOptions) normalized() PlotOptions {
	d := DefaultPlotOptions()
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.XLabel == "" {
		o.XLabel = d.XLabel
	}
	if o.YLabel == "" {
		o.YLabel = d.YLabel
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.PointsLabel == "" {
		o.PointsLabel = d.PointsLabel
	}
	if o.LineLabel == "" {
		o.LineLabel = d.LineLabel
	}
	return o
}

func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

// RenderPlot draws the aligned points and the fitted line across the
// observed index range as a PNG.
func RenderPlot(table models.AlignedTable, fit models.FitResult, opts PlotOptions) ([]byte, error) {
	if table.Len() == 0 {
		return nil, fmt.Errorf("render plot: no rows")
	}
	o := opts.normalized()

	rows := make([]models.AlignedRow, len(table.Rows))
	copy(rows, table.Rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Index < rows[j].Index })

	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, r := range rows {
		xs[i] = r.Index
		ys[i] = r.Performance
	}

	minX, maxX := xs[0], xs[len(xs)-1]
	lineX := []float64{minX, maxX}
	lineY := []float64{fit.Predict(minX), fit.Predict(maxX)}

	minY, maxY := bounds(append(append([]float64{}, ys...), lineY...))
	if maxY <= minY {
		minY, maxY = minY-1, maxY+1
	}
	pad := (maxY - minY) * 0.05

	graph := chart.Chart{
		Title:      o.Title,
		Width:      o.Width,
		Height:     o.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: o.XLabel},
		YAxis: chart.YAxis{
			Name:  o.YLabel,
			Range: &chart.ContinuousRange{Min: minY - pad, Max: maxY + pad},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: o.PointsLabel, XValues: xs, YValues: ys, Style: pointStyle(chart.ColorBlue)},
			chart.ContinuousSeries{Name: o.LineLabel, XValues: lineX, YValues: lineY, Style: lineStyle(chart.ColorRed)},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render plot: %w", err)
	}
	return buf.Bytes(), nil
}

func bounds(vs []float64) (float64, float64) {
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
