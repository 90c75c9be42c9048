// Package chart renders the daily macro targets as an SVG bar chart.
package chart

import (
	"io"

	"github.com/pkg/errors"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pageza/smartplate/internal/types"
)

// LegendLabel names the single dataset
const LegendLabel = "Daily Targets"

// Bar colors, in bar order
var (
	ProteinColor = drawing.Color{R: 54, G: 162, B: 235, A: 255}
	CarbsColor   = drawing.Color{R: 255, G: 206, B: 86, A: 255}
	FatColor     = drawing.Color{R: 255, G: 99, B: 132, A: 255}
)

// Bar is one plotted value
type Bar struct {
	Label string
	Value float64
	Color drawing.Color
}

// Bars returns protein, carbs and fat in that order. Missing values plot as 0.
func Bars(t types.NutrientTargets) []Bar {
	return []Bar{
		{Label: "Protein (g)", Value: types.ValueOrZero(t.ProteinG), Color: ProteinColor},
		{Label: "Carbs (g)", Value: types.ValueOrZero(t.CarbsG), Color: CarbsColor},
		{Label: "Fat (g)", Value: types.ValueOrZero(t.FatG), Color: FatColor},
	}
}

// Render writes the chart for t to w as SVG
func Render(w io.Writer, t types.NutrientTargets) error {
	bars := Bars(t)

	values := make([]gochart.Value, len(bars))
	maxValue := 0.0
	for i, b := range bars {
		values[i] = gochart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: gochart.Style{
				FillColor:   b.Color.WithAlpha(128),
				StrokeColor: b.Color,
				StrokeWidth: 1,
			},
		}
		if b.Value > maxValue {
			maxValue = b.Value
		}
	}

	// y axis always starts at 0; an all-zero chart still needs a range
	top := maxValue * 1.1
	if top < 1 {
		top = 1
	}

	graph := gochart.BarChart{
		Width:      640,
		Height:     360,
		BarWidth:   60,
		BarSpacing: 80,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: top},
		},
		Bars:     values,
		Elements: []gochart.Renderable{legend(LegendLabel, ProteinColor)},
	}

	if err := graph.Render(gochart.SVG, w); err != nil {
		return errors.Wrap(err, "render targets chart")
	}
	return nil
}

// legend draws a swatch and label above the plot area
func legend(label string, color drawing.Color) gochart.Renderable {
	return func(r gochart.Renderer, canvas gochart.Box, defaults gochart.Style) {
		swatch := gochart.Box{Top: 14, Left: canvas.Left, Right: canvas.Left + 36, Bottom: 26}
		gochart.Draw.Box(r, swatch, gochart.Style{
			FillColor:   color.WithAlpha(128),
			StrokeColor: color,
			StrokeWidth: 1,
		})
		gochart.Draw.Text(r, label, swatch.Right+8, swatch.Bottom, gochart.Style{
			Font:      defaults.Font,
			FontSize:  11,
			FontColor: gochart.DefaultTextColor,
		})
	}
}
