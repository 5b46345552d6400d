package jsemitter

import "text/template"

var methodTemplate = template.Must(template.New("method").Funcs(funcs).Parse(
	`{{docBlock "" .Doc}}const {{.Name}} = async ({{join .Args ", "}}) => {
  return request({
    url: {{.URL}},
    method: '{{.Method}}'{{with .Binding}},
    {{.}}{{end}}
  });
};
`))

var moduleTemplate = template.Must(template.New("module").Funcs(funcs).Parse(
	`import request from {{.Import}};
{{range .Methods}}
{{.Source}}{{end}}
{{.Export}}
`))

var classTemplate = template.Must(template.New("class").Funcs(funcs).Parse(
	`export class {{.Name}} {
{{- range $i, $f := .Fields}}
{{if $i}}
{{end}}{{docBlock "  " $f.Doc}}  {{$f.Key}} = {{$f.Value}};
{{- end}}
}
`))
