package web

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"time"

	"CPIReg/internal/domain/models"
	"CPIReg/internal/service/report"
	xhttp "CPIReg/pkg/http"
)

type formState struct {
	IndexSource       string
	StartYear         int
	EndYear           int
	PerformanceSource string
}

func formStateOf(req *models.RunRequest) formState {
	return formState{
		IndexSource:       req.IndexSource,
		StartYear:         req.StartYear,
		EndYear:           req.EndYear,
		PerformanceSource: req.PerformanceSource,
	}
}

type errorView struct {
	Status  int
	Code    string
	Field   string
	Message string
}

func errorViewOf(e *xhttp.AppError) *errorView {
	return &errorView{Status: e.Status, Code: e.Code, Field: e.Field, Message: e.Message}
}

type rowView struct {
	Date        string
	Index       string
	Performance string
}

type resultView struct {
	ID          string
	Equation    string
	Slope       string
	Intercept   string
	RSquared    string
	N           int
	IndexSource string
	PerfSource  string
	Rows        []rowView
	PlotDataURI template.URL
	PlotURL     string
}

type pageView struct {
	Title         string
	KeyConfigured bool
	MaxUploadMB   float64
	Form          formState
	Notice        string
	Validation    []xhttp.ValidationError
	Error         *errorView
	Result        *resultView
}

func (h *Handler) newPage() *pageView {
	return &pageView{
		Title:         h.opts.Title,
		KeyConfigured: h.opts.APIKey != "",
		MaxUploadMB:   float64(h.opts.MaxUploadBytes) / (1 << 20),
	}
}

func (h *Handler) resultViewOf(rep *models.Report) *resultView {
	f := h.opts.Format
	rv := &resultView{
		ID:          rep.ID,
		Equation:    rep.Equation,
		Slope:       report.FormatValue(rep.Fit.Slope, f),
		Intercept:   report.FormatValue(rep.Fit.Intercept, f),
		RSquared:    report.FormatValue(rep.Fit.RSquared, f),
		N:           rep.Fit.N,
		IndexSource: rep.IndexSource,
		PerfSource:  rep.PerformanceSource,
		Rows:        make([]rowView, 0, rep.Table.Len()),
	}
	for _, r := range rep.Table.Rows {
		rv.Rows = append(rv.Rows, rowView{
			Date:        r.Date.Format("2006-01-02"),
			Index:       report.FormatValue(r.Index, f),
			Performance: report.FormatValue(r.Performance, f),
		})
	}
	if len(rep.Plot) > 0 {
		rv.PlotDataURI = template.URL("data:" + report.PlotContentType + ";base64," + base64.StdEncoding.EncodeToString(rep.Plot))
	}
	if rep.ID != "" {
		rv.PlotURL = plotURL(rep.ID)
	}
	return rv
}

// runResponse is the JSON shape of a run. The plot is linked, not embedded.
type runResponse struct {
	ID                string              `json:"id"`
	CreatedAt         time.Time           `json:"created_at"`
	IndexSource       string              `json:"index_source"`
	PerformanceSource string              `json:"performance_source"`
	Slope             float64             `json:"slope"`
	Intercept         float64             `json:"intercept"`
	RSquared          float64             `json:"r_squared"`
	N                 int                 `json:"n"`
	Equation          string              `json:"equation"`
	Summary           string              `json:"summary"`
	Rows              []models.AlignedRow `json:"rows"`
	PlotURL           string              `json:"plot_url,omitempty"`
	Notice            string              `json:"notice,omitempty"`
}

func (h *Handler) runResponseOf(rep *models.Report) *runResponse {
	out := &runResponse{
		ID:                rep.ID,
		CreatedAt:         rep.CreatedAt,
		IndexSource:       rep.IndexSource,
		PerformanceSource: rep.PerformanceSource,
		Slope:             rep.Fit.Slope,
		Intercept:         rep.Fit.Intercept,
		RSquared:          rep.Fit.RSquared,
		N:                 rep.Fit.N,
		Equation:          rep.Equation,
		Summary:           rep.Summary,
		Rows:              rep.Table.Rows,
	}
	if rep.ID != "" && len(rep.Plot) > 0 {
		out.PlotURL = plotURL(rep.ID)
	}
	return out
}

func plotURL(id string) string {
	return "/runs/" + id + "/plot.png"
}

func renderPage(v *pageView) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2em auto; color: #222; }
fieldset { margin-bottom: 1em; }
.error { background: #fde8e8; border: 1px solid #e0a0a0; padding: .75em; }
.notice { background: #fff8e0; border: 1px solid #e0d090; padding: .75em; }
.metrics span { display: inline-block; margin-right: 2em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: .25em .75em; text-align: right; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<form method="post" action="/run" enctype="multipart/form-data">
<fieldset>
<legend>Price index</legend>
<label><input type="radio" name="index_source" value="sample"{{if ne .Form.IndexSource "live"}} checked{{end}}> Sample CPI</label>
<label><input type="radio" name="index_source" value="live"{{if eq .Form.IndexSource "live"}} checked{{end}}> Live CPI</label>
<br>
<label>API key <input type="password" name="api_key" autocomplete="off" placeholder="{{if .KeyConfigured}}configured on server{{else}}required for live data{{end}}"></label>
<br>
<label>Start year <input type="number" name="start_year" value="{{.Form.StartYear}}"></label>
<label>End year <input type="number" name="end_year" value="{{.Form.EndYear}}"></label>
</fieldset>
<fieldset>
<legend>Division performance</legend>
<label><input type="radio" name="performance_source" value="sample"{{if ne .Form.PerformanceSource "upload"}} checked{{end}}> Sample file</label>
<label><input type="radio" name="performance_source" value="upload"{{if eq .Form.PerformanceSource "upload"}} checked{{end}}> Upload</label>
<br>
<label>CSV or XLSX (max {{printf "%.1f" .MaxUploadMB}} MB) <input type="file" name="performance_file" accept=".csv,.xlsx"></label>
</fieldset>
<button type="submit">Run regression</button>
</form>
{{with .Notice}}<p class="notice">{{.}}</p>{{end}}
{{if .Validation}}<div class="error"><ul>{{range .Validation}}<li>{{.Message}}</li>{{end}}</ul></div>{{end}}
{{with .Error}}<div class="error"><strong>{{.Status}}</strong> {{.Message}}{{with .Field}} (column: {{.}}){{end}}</div>{{end}}
{{with .Result}}
<h2>Result</h2>
<p><code>{{.Equation}}</code></p>
<p class="metrics"><span>Slope: {{.Slope}}</span><span>Intercept: {{.Intercept}}</span><span>R²: {{.RSquared}}</span><span>Rows: {{.N}}</span></p>
<p>Index: {{.IndexSource}}, performance: {{.PerfSource}}</p>
{{if .PlotDataURI}}<img src="{{.PlotDataURI}}" alt="regression plot">{{end}}
{{with .PlotURL}}<p><a href="{{.}}">Download plot</a></p>{{end}}
<h3>Merged data</h3>
<table>
<tr><th>Date</th><th>Index</th><th>Performance</th></tr>
{{range .Rows}}<tr><td>{{.Date}}</td><td>{{.Index}}</td><td>{{.Performance}}</td></tr>
{{end}}</table>
{{end}}
</body>
</html>
`))
