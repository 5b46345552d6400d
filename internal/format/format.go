// Package format normalizes generated JavaScript and rejects sources that do
// not parse.
package format

import (
	"fmt"
	"strings"

	"github.com/dop251/goja/parser"
)

// Formatter turns generated source text into its final form.
type Formatter interface {
	Format(src string) (string, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(src string) (string, error)

func (f FormatterFunc) Format(src string) (string, error) { return f(src) }

// SyntaxError reports generated code the ECMAScript parser rejected.
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string { return "format: syntax error: " + e.Msg }

// JS checks sources with goja's parser and normalizes their whitespace with
// a two-space indent.
type JS struct {
	// IndentWidth replaces each leading tab. Zero means 2.
	IndentWidth int
}

var _ Formatter = JS{}

// Format returns src with normalized whitespace, or a *SyntaxError.
func (f JS) Format(src string) (string, error) {
	if err := Check(src); err != nil {
		return "", err
	}
	width := f.IndentWidth
	if width <= 0 {
		width = 2
	}
	return Normalize(src, width), nil
}

// Check parses src as an ES module. goja parses scripts only, so top-level
// import and export declarations are lowered to script form first.
func Check(src string) error {
	if _, err := parser.ParseFile(nil, "", scriptView(src), 0); err != nil {
		return &SyntaxError{Msg: err.Error()}
	}
	return nil
}

// scriptView rewrites top-level module declarations line by line, keeping
// line numbers. Indented lines are never declarations and stay as they are:
//
//	import request from 'x'  ->  var request
//	export { a, b }          ->  void [a, b]
//	export class A / const   ->  class A / const
func scriptView(src string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if strings.TrimLeft(line, " \t") != line {
			continue
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import "):
			lines[i] = lowerImport(trimmed)
		case strings.HasPrefix(trimmed, "export {"):
			inner := strings.TrimSuffix(strings.TrimSuffix(trimmed, ";"), " ")
			inner = strings.TrimSuffix(strings.TrimPrefix(inner, "export {"), "}")
			lines[i] = "void [" + inner + "];"
		case strings.HasPrefix(trimmed, "export default "):
			lines[i] = "void (" + strings.TrimSuffix(strings.TrimPrefix(trimmed, "export default "), ";") + ");"
		case strings.HasPrefix(trimmed, "export "):
			lines[i] = strings.TrimPrefix(trimmed, "export ")
		}
	}
	return strings.Join(lines, "\n")
}

func lowerImport(stmt string) string {
	body := strings.TrimPrefix(stmt, "import ")
	from := strings.LastIndex(body, " from ")
	if from < 0 {
		// side-effect import: import 'x'
		return "void " + strings.TrimSuffix(body, ";") + ";"
	}
	binding := strings.TrimSpace(body[:from])
	if strings.HasPrefix(binding, "{") || strings.HasPrefix(binding, "*") {
		return fmt.Sprintf("void %q;", binding)
	}
	return "var " + binding + ";"
}

// Normalize expands leading tabs, strips trailing whitespace, collapses runs
// of blank lines, drops leading blank lines and ends the text with exactly
// one newline.
func Normalize(src string, indentWidth int) string {
	indent := strings.Repeat(" ", indentWidth)
	var b strings.Builder
	blank := true // suppress leading blank lines
	for _, line := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if !blank {
				b.WriteByte('\n')
			}
			blank = true
			continue
		}
		n := 0
		for n < len(line) && line[n] == '\t' {
			n++
		}
		b.WriteString(strings.Repeat(indent, n))
		b.WriteString(line[n:])
		b.WriteByte('\n')
		blank = false
	}
	out := strings.TrimRight(b.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}
