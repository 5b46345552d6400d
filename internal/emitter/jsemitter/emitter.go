// Package jsemitter renders JavaScript sources from a spec.Document: one
// request module per path group and one class skeleton per definition.
package jsemitter

import (
	"bytes"
	"errors"
	"strings"
	"text/template"
)

var (
	// ErrExcluded marks definitions dropped by the exclusion prefixes.
	ErrExcluded = errors.New("definition excluded")
	// ErrInvalidName marks names that cannot become a JavaScript identifier.
	ErrInvalidName = errors.New("invalid identifier")
)

// DefaultRequestModule is imported by generated modules when no other
// request module is configured.
const DefaultRequestModule = "@/utils/request"

// DefaultExcludePrefixes skips pagination wrappers, which are generation noise.
var DefaultExcludePrefixes = []string{"Page"}

// FileExt is the extension of every generated file.
const FileExt = ".js"

var funcs = template.FuncMap{
	"join":     strings.Join,
	"docBlock": docBlock,
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// docBlock renders a JSDoc comment indented by indent, or nothing when lines
// is empty.
func docBlock(indent string, lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(indent + "/**\n")
	for _, line := range lines {
		line = strings.ReplaceAll(line, "*/", "*\\/")
		if line == "" {
			b.WriteString(indent + " *\n")
			continue
		}
		b.WriteString(indent + " * " + line + "\n")
	}
	b.WriteString(indent + " */\n")
	return b.String()
}

// splitLines breaks free text into trimmed lines, dropping empty edges.
func splitLines(s string) []string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}

// quote renders s as a single-quoted JavaScript string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`, "\u2028", `\u2028`, "\u2029", `\u2029`)
	return "'" + r.Replace(s) + "'"
}

// templateText escapes s for the literal part of a template literal.
func templateText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "`", "\\`", "${", `\${`)
	return r.Replace(s)
}
