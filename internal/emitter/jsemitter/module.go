package jsemitter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/swagger2request/internal/format"
	"github.com/mark3labs/swagger2request/internal/naming"
	"github.com/mark3labs/swagger2request/internal/paths"
	"github.com/mark3labs/swagger2request/internal/spec"
)

// ModuleOptions configures EmitModule.
type ModuleOptions struct {
	// RequestModule is the import reference of the HTTP helper. Empty means
	// DefaultRequestModule.
	RequestModule string
	// Formatter post-processes the module text. Nil leaves it as rendered.
	Formatter format.Formatter
}

// Rename records a stub name that collided within its module.
type Rename struct {
	Template string
	Method   spec.HttpMethod
	From     string
	To       string
}

// Module is the rendered request module of one path group.
type Module struct {
	Key       string
	FileName  string
	Methods   []Method
	Exports   []string
	Renames   []Rename
	Source    string
	Formatted bool
	// FormatErr is set when the formatter rejected the text; Source then
	// holds the unformatted rendering.
	FormatErr error
}

type moduleView struct {
	Import  string
	Methods []Method
	Export  string
}

// EmitModule renders the operations of one group, in the given order, as an
// ES module importing the request helper and exporting every stub.
func EmitModule(key string, ops []spec.Operation, opts ModuleOptions) (*Module, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("jsemitter: empty group key")
	}
	ref := opts.RequestModule
	if ref == "" {
		ref = DefaultRequestModule
	}

	mod := &Module{Key: key, FileName: key + FileExt}
	names := naming.NewRegistry()
	for _, op := range ops {
		derived := naming.DeriveIdentifier(op.Template, string(op.Method))
		name, renamed := names.Claim(derived)
		if renamed {
			mod.Renames = append(mod.Renames, Rename{Template: op.Template, Method: op.Method, From: derived, To: name})
		}
		m, err := EmitMethod(MethodInput{
			Name:       name,
			Template:   op.Template,
			Method:     op.Method,
			Parameters: op.Parameters,
			PathParams: paths.Parse(op.Template).Placeholders(),
			Summary:    op.Summary,
		})
		if err != nil {
			return nil, fmt.Errorf("jsemitter: module %s: %w", key, err)
		}
		mod.Methods = append(mod.Methods, m)
		mod.Exports = append(mod.Exports, m.Name)
	}

	src, err := renderTemplate(moduleTemplate, moduleView{
		Import:  quote(ref),
		Methods: mod.Methods,
		Export:  exportClause(mod.Exports),
	})
	if err != nil {
		return nil, fmt.Errorf("jsemitter: render module %s: %w", key, err)
	}
	mod.Source = src
	if opts.Formatter != nil {
		out, ferr := opts.Formatter.Format(src)
		if ferr != nil {
			mod.FormatErr = ferr
			return mod, nil
		}
		mod.Source = out
		mod.Formatted = true
	}
	return mod, nil
}

func exportClause(names []string) string {
	if len(names) == 0 {
		return "export {};"
	}
	return "export { " + strings.Join(names, ", ") + " };"
}
