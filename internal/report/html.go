package report

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/John-Robertt/bankocr/internal/domain"
)

var htmlTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Account report{{if .Source}} - {{.Source}}{{end}}</title>
<style>
body { font-family: sans-serif; }
td.number { font-family: monospace; }
tr.ill td { background: #fde2e2; }
tr.err td { background: #fff4ce; }
</style>
</head>
<body>
<h1>Account report</h1>
{{- if .Source}}
<p class="source">{{.Source}}</p>
{{- end}}
{{- if .RunID}}
<p class="run-id">{{.RunID}}</p>
{{- end}}
<p class="summary">accounts={{len .Rows}} ok={{.OK}} ill={{.Illegible}} err={{.Invalid}}</p>
<table id="accounts">
<thead><tr><th>#</th><th>Number</th><th>Status</th></tr></thead>
<tbody>
{{- range .Rows}}
<tr class="{{.Status}}"><td class="index">{{.Index}}</td><td class="number">{{.Number}}</td><td class="status">{{.Label}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

type htmlRow struct {
	Index  int
	Number string
	Status string
	Label  string
}

type htmlData struct {
	Source string
	RunID  string
	Rows   []htmlRow

	OK        int
	Illegible int
	Invalid   int
}

// HTML 生成一个独立的 HTML 表格报告；每行的 class 是 ok/ill/err。
func HTML(meta Meta, accounts []domain.AccountStatus) ([]byte, error) {
	d := htmlData{
		Source: meta.Source,
		RunID:  meta.RunID,
		Rows:   make([]htmlRow, 0, len(accounts)),
	}
	for i, a := range accounts {
		switch a.Kind() {
		case domain.AccountOK:
			d.OK++
		case domain.AccountIllegible:
			d.Illegible++
		case domain.AccountInvalid:
			d.Invalid++
		}
		d.Rows = append(d.Rows, htmlRow{Index: i + 1, Number: a.Number, Status: a.Kind(), Label: statusLabel(a)})
	}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// statusLabel 与文本报告的后缀保持一致；没有后缀时显示 OK。
func statusLabel(a domain.AccountStatus) string {
	if l := strings.TrimSpace(a.Suffix()); l != "" {
		return l
	}
	return "OK"
}
