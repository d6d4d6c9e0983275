package view

import (
	"fmt"
	"html/template"
	"strings"
)

// tableTemplate is the HTML adapter over the typed table. Presentation
// only; all filtering and ordering happened in the pipeline.
var tableTemplate = template.Must(template.New("table").Funcs(template.FuncMap{
	"total": formatTotal,
}).Parse(`<section class="entity-table" data-entity="{{.Entity}}">
{{- if .Aggregates}}
<div class="summary-strip">
{{- range .Aggregates}}
  <span class="summary-card"><strong>{{.Label}}</strong> {{total .Total}}</span>
{{- end}}
</div>
{{- end}}
<table>
<thead><tr>
{{- range .Headers}}
  <th data-column="{{.Name}}">{{.Label}}</th>
{{- end}}
</tr></thead>
<tbody>
{{- if not .Rows}}
<tr class="empty"><td colspan="{{len .Headers}}">No records</td></tr>
{{- end}}
{{- range .Rows}}
<tr{{if .Placeholder}} class="placeholder"{{end}}>
{{- range .Cells}}
  <td>{{.}}</td>
{{- end}}
</tr>
{{- end}}
</tbody>
</table>
<footer class="pagination">Page {{.Page}}{{if .PageCount}} of {{.PageCount}}{{end}} · {{.TotalFiltered}} matching</footer>
</section>
`))

// HTML renders a table as an HTML fragment.
func HTML(t Table) (string, error) {
	var b strings.Builder
	if err := tableTemplate.Execute(&b, t); err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}
	return b.String(), nil
}
