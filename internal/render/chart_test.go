package render

import (
	"bytes"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestChartPNG(t *testing.T) {
	spec := &models.ChartSpec{
		Labels: []string{"A", "B", "C"},
		Values: []float64{1, 4.5, 2},
		Title:  "Counts",
	}
	png, err := chartPNG(spec)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestChartPNG_InvalidSpec(t *testing.T) {
	specs := []*models.ChartSpec{
		{Labels: nil, Values: nil, Title: "empty"},
		{Labels: []string{"A"}, Values: []float64{1, 2}, Title: "mismatch"},
	}
	for _, spec := range specs {
		if _, err := chartPNG(spec); err == nil {
			t.Errorf("expected error for spec %+v", spec)
		}
	}
}
