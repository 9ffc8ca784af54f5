package render

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/hyperjump/kotae/internal/models"
)

// chartPNG renders a vertical bar chart from spec: one bar per label/value
// pair in given order, x-axis labels rotated 45 degrees, tight margins.
func chartPNG(spec *models.ChartSpec) ([]byte, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	bars := make([]chart.Value, len(spec.Labels))
	for i, label := range spec.Labels {
		bars[i] = chart.Value{Label: label, Value: spec.Values[i]}
	}
	bc := chart.BarChart{
		Title:  spec.Title,
		Width:  1000,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.Style{
			TextRotationDegrees: 45.0,
		},
		BarWidth: 60,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
