package render

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

var tablePageTmpl = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Data Table</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body {
font-family: Arial, sans-serif;
margin: 0;
padding: 20px;
background-color: #f5f5f5;
}
.container {
max-width: 1200px;
margin: 0 auto;
background-color: white;
padding: 20px;
border-radius: 8px;
box-shadow: 0 2px 10px rgba(0,0,0,0.1);
}
.table-container {
overflow-x: auto;
}
table {
width: 100%;
border-collapse: collapse;
margin-top: 20px;
}
th, td {
border: 1px solid #ddd;
padding: 12px;
text-align: left;
}
th {
background-color: #f2f2f2;
font-weight: bold;
}
tr:nth-child(even) {
background-color: #f9f9f9;
}
tr:hover {
background-color: #f1f1f1;
}
</style>
</head>
<body>
<div class="container">
<div class="table-container">
{{.Table}}
</div>
</div>
</body>
</html>`))

var chartPageTmpl = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body {
font-family: Arial, sans-serif;
margin: 0;
padding: 20px;
background-color: #f5f5f5;
}
.container {
max-width: 1200px;
margin: 0 auto;
background-color: white;
padding: 20px;
border-radius: 8px;
box-shadow: 0 2px 10px rgba(0,0,0,0.1);
}
h1 {
color: #333;
text-align: center;
margin-bottom: 20px;
}
.chart-container {
text-align: center;
margin-top: 20px;
}
.chart-container img {
max-width: 100%;
height: auto;
border: 1px solid #ddd;
border-radius: 4px;
}
</style>
</head>
<body>
<div class="container">
<h1>{{.Title}}</h1>
<div class="chart-container">
<img src="{{.ImageSrc}}" alt="{{.Title}}">
</div>
</div>
</body>
</html>`))

// renderTablePage wraps raw (which embeds an HTML table) verbatim inside the
// fixed table page template and whitespace-normalizes the result.
func renderTablePage(raw string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Table template.HTML }{Table: template.HTML(raw)}
	if err := tablePageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return NormalizeHTML(buf.String()), nil
}

// renderChartPage renders the chart spec to a PNG and embeds it as a base64
// data URI inside the fixed chart page template, whitespace-normalized.
func renderChartPage(spec *models.ChartSpec) (string, error) {
	png, err := chartPNG(spec)
	if err != nil {
		return "", err
	}
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	var buf bytes.Buffer
	data := struct {
		Title    string
		ImageSrc template.URL
	}{Title: spec.Title, ImageSrc: template.URL(src)}
	if err := chartPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return NormalizeHTML(buf.String()), nil
}

// NormalizeHTML strips leading/trailing whitespace from every line, drops
// blank lines, and joins with single newlines, for deterministic output.
func NormalizeHTML(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
