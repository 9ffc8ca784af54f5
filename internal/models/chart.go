package models

import "errors"

// ChartSpec is the labels/values/title triple extracted from an engine answer
// that carries the chart-data marker. Labels and values are rendered in the
// order given, one bar per pair.
type ChartSpec struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Title  string    `json:"title"`
}

// Validate checks that the spec can produce a chart: labels and values must be
// non-empty and of equal length.
func (c *ChartSpec) Validate() error {
	if len(c.Labels) == 0 || len(c.Values) == 0 {
		return errors.New("chart spec: labels and values must be non-empty")
	}
	if len(c.Labels) != len(c.Values) {
		return errors.New("chart spec: labels and values must have equal length")
	}
	return nil
}
