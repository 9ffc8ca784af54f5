package render

import (
	"strings"
	"testing"
)

func TestClassify_Text(t *testing.T) {
	resp := Classify("the average age is 42")
	if resp.Kind != KindText {
		t.Errorf("kind: %v", resp.Kind)
	}
}

func TestClassify_Table(t *testing.T) {
	resp := Classify("<table><tr><td>1</td></tr></table>")
	if resp.Kind != KindTable {
		t.Errorf("kind: %v", resp.Kind)
	}
}

func TestClassify_Chart(t *testing.T) {
	raw := `CHART_DATA: {"labels":["A","B"],"values":[1,2],"title":"T"}`
	resp := Classify(raw)
	if resp.Kind != KindChart {
		t.Fatalf("kind: %v", resp.Kind)
	}
	if resp.Chart.Title != "T" || len(resp.Chart.Labels) != 2 {
		t.Errorf("chart spec: %+v", resp.Chart)
	}
}

func TestClassify_ChartDefaultTitle(t *testing.T) {
	resp := Classify(`CHART_DATA: {"labels":["A"],"values":[1]}`)
	if resp.Kind != KindChart || resp.Chart.Title != "Chart" {
		t.Errorf("expected default title Chart, got %+v", resp.Chart)
	}
}

func TestClassify_TableBeatsChartMarker(t *testing.T) {
	raw := `<table></table> CHART_DATA: {"labels":["A"],"values":[1]}`
	resp := Classify(raw)
	if resp.Kind != KindTable {
		t.Errorf("table should win over chart marker, got %v", resp.Kind)
	}
}

func TestClassify_MalformedChartFallsBackToText(t *testing.T) {
	for _, raw := range []string{
		`CHART_DATA: not json`,
		`CHART_DATA: {"labels":["A","B"],"values":[1]}`,
		`CHART_DATA: {"labels":[],"values":[]}`,
	} {
		resp := Classify(raw)
		if resp.Kind != KindText {
			t.Errorf("Classify(%q).Kind = %v, want text", raw, resp.Kind)
		}
	}
}

func TestRender_PlainTextUnmodified(t *testing.T) {
	raw := "just an answer\nwith two lines"
	if got := Render(raw); got != raw {
		t.Errorf("plain text must pass through unmodified: %q", got)
	}
}

func TestRender_TablePage(t *testing.T) {
	raw := "<table><tr><th>name</th></tr><tr><td>alice</td></tr></table>"
	got := Render(raw)
	if !strings.HasPrefix(got, "<!DOCTYPE html>") {
		t.Errorf("expected full HTML document, got %q", got[:40])
	}
	if !strings.Contains(got, raw) {
		t.Error("raw table must appear verbatim in the page")
	}
	if strings.Contains(got, "\n\n") {
		t.Error("normalized output must not contain blank lines")
	}
	for _, line := range strings.Split(got, "\n") {
		if line != strings.TrimSpace(line) {
			t.Errorf("line not trimmed: %q", line)
		}
	}
}

func TestRender_ChartPage(t *testing.T) {
	raw := `CHART_DATA: {"labels":["A","B"],"values":[1,2],"title":"T"}`
	got := Render(raw)
	if !strings.Contains(got, "<h1>T</h1>") {
		t.Error("chart page must contain the title heading")
	}
	if !strings.Contains(got, "data:image/png;base64,") {
		t.Error("chart page must embed a base64 PNG data URI")
	}
}

func TestRender_MalformedChartReturnsRaw(t *testing.T) {
	raw := `CHART_DATA: {"labels": oops}`
	if got := Render(raw); got != raw {
		t.Errorf("malformed chart JSON must return raw input, got %q", got)
	}
}

func TestRender_Idempotent(t *testing.T) {
	inputs := []string{
		"plain",
		"<table><tr><td>x</td></tr></table>",
		`CHART_DATA: {"labels":["A"],"values":[3],"title":"Counts"}`,
		`CHART_DATA: broken`,
	}
	for _, raw := range inputs {
		first := Render(raw)
		second := Render(raw)
		if first != second {
			t.Errorf("Render is not deterministic for %q", raw)
		}
	}
}

func TestNormalizeHTML(t *testing.T) {
	in := "  <div>\n\n\t<p>hi</p>  \n\n</div>  "
	want := "<div>\n<p>hi</p>\n</div>"
	if got := NormalizeHTML(in); got != want {
		t.Errorf("NormalizeHTML = %q, want %q", got, want)
	}
}
