// Package render classifies raw answering-engine output and produces the
// final payload: plain text, an HTML table page, or a chart-image page.
package render

import (
	"encoding/json"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// ChartMarker is the sentinel an engine answer uses to carry chart data.
// Everything after the marker is parsed as a JSON ChartSpec.
const ChartMarker = "CHART_DATA:"

// Kind tags the classified shape of an engine answer.
type Kind int

const (
	// KindText is a plain text answer, returned unmodified.
	KindText Kind = iota
	// KindTable is an answer embedding an HTML table.
	KindTable
	// KindChart is an answer carrying a parseable chart spec.
	KindChart
)

// Response is the tagged result of classifying a raw engine answer.
type Response struct {
	Kind  Kind
	Raw   string
	Chart *models.ChartSpec
}

// Classify sniffs raw engine output into a tagged variant. Priority is fixed:
// an embedded table wins over a chart marker, which wins over plain text.
// A chart marker whose payload fails to parse or validate degrades to text so
// the underlying answer is never hidden.
func Classify(raw string) Response {
	if strings.Contains(raw, "<table") {
		return Response{Kind: KindTable, Raw: raw}
	}
	if i := strings.Index(raw, ChartMarker); i >= 0 {
		payload := strings.TrimSpace(raw[i+len(ChartMarker):])
		var spec models.ChartSpec
		if err := json.Unmarshal([]byte(payload), &spec); err != nil {
			return Response{Kind: KindText, Raw: raw}
		}
		if spec.Title == "" {
			spec.Title = "Chart"
		}
		if err := spec.Validate(); err != nil {
			return Response{Kind: KindText, Raw: raw}
		}
		return Response{Kind: KindChart, Raw: raw, Chart: &spec}
	}
	return Response{Kind: KindText, Raw: raw}
}

// Render classifies raw and produces the final payload. It is a pure function:
// the same input always yields the same output. Any wrapping or chart-render
// failure falls back to returning raw unmodified.
func Render(raw string) string {
	resp := Classify(raw)
	switch resp.Kind {
	case KindTable:
		out, err := renderTablePage(raw)
		if err != nil {
			return raw
		}
		return out
	case KindChart:
		out, err := renderChartPage(resp.Chart)
		if err != nil {
			return raw
		}
		return out
	default:
		return raw
	}
}
