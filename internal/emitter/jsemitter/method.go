package jsemitter

import (
	"fmt"
	"strings"

	"github.com/mark3labs/swagger2request/internal/naming"
	"github.com/mark3labs/swagger2request/internal/paths"
	"github.com/mark3labs/swagger2request/internal/spec"
)

// BundleName is the argument that carries every non-path parameter.
const BundleName = "params"

// RequestName is the binding of the imported request helper. Arguments
// must not shadow it.
const RequestName = "request"

// MethodInput describes one operation to render as an async request stub.
type MethodInput struct {
	Name       string
	Template   string
	Method     spec.HttpMethod
	Parameters []spec.Parameter
	// PathParams lists the placeholder names in template order. Nil means
	// they are read from Template.
	PathParams []string
	Summary    string
}

// Method is a rendered request stub.
type Method struct {
	Name string
	// Args are the positional arguments: one per placeholder, then the
	// bundle when the operation declares non-path parameters.
	Args   []string
	Bundle bool
	Source string
}

type methodView struct {
	Name    string
	Doc     []string
	Args    []string
	URL     string
	Method  string
	Binding string
}

// EmitMethod renders in as
//
//	const Name = async (pathArgs..., params) => { return request({...}); };
//
// preceded by a JSDoc block when the operation has a summary or parameters.
func EmitMethod(in MethodInput) (Method, error) {
	if !naming.IsIdentifier(in.Name) {
		return Method{}, fmt.Errorf("%w: method name %q", ErrInvalidName, in.Name)
	}
	verb := strings.ToLower(string(in.Method))
	if verb == "" {
		return Method{}, fmt.Errorf("jsemitter: %s %s: missing http method", in.Name, in.Template)
	}

	tmpl := paths.Parse(in.Template)
	names := in.PathParams
	if names == nil {
		names = tmpl.Placeholders()
	}

	vars := naming.NewRegistry()
	vars.Claim(BundleName)
	vars.Claim(RequestName)
	argFor := make(map[string]string, len(names))
	args := make([]string, 0, len(names)+1)
	for _, name := range names {
		if _, ok := argFor[name]; ok {
			continue
		}
		arg, _ := vars.Claim(naming.Variable(name, BundleName, RequestName))
		argFor[name] = arg
		args = append(args, arg)
	}

	bundle := false
	for _, p := range in.Parameters {
		if !p.IsPath() {
			bundle = true
			break
		}
	}
	view := methodView{
		Name:   in.Name,
		Doc:    methodDoc(in),
		URL:    urlExpr(tmpl, argFor),
		Method: verb,
	}
	if bundle {
		args = append(args, BundleName)
		view.Binding = binding(in.Method)
	}
	view.Args = args

	src, err := renderTemplate(methodTemplate, view)
	if err != nil {
		return Method{}, fmt.Errorf("jsemitter: render %s: %w", in.Name, err)
	}
	return Method{Name: in.Name, Args: args, Bundle: bundle, Source: src}, nil
}

// binding returns the request option that carries the bundle: query string
// for read verbs, request body for the rest.
func binding(m spec.HttpMethod) string {
	switch spec.HttpMethod(strings.ToLower(string(m))) {
	case spec.GET, spec.HEAD, spec.OPTIONS, "trace":
		return BundleName
	default:
		return "data: " + BundleName
	}
}

func methodDoc(in MethodInput) []string {
	lines := splitLines(in.Summary)
	for _, p := range in.Parameters {
		typ := p.Type
		if typ == "" {
			typ = "*"
		}
		line := fmt.Sprintf("@param {%s} %s", typ, p.Name)
		if desc := strings.Join(splitLines(p.Description), " "); desc != "" {
			line += " " + desc
		}
		lines = append(lines, line)
	}
	return lines
}

// urlExpr renders the URL as a quoted literal, or as a template literal when
// the template has placeholders.
func urlExpr(t paths.Template, argFor map[string]string) string {
	if len(argFor) == 0 {
		return quote(t.Raw)
	}
	var b strings.Builder
	b.WriteByte('`')
	for _, tok := range t.Tokens {
		if tok.Kind == paths.Placeholder {
			if arg, ok := argFor[tok.Text]; ok {
				b.WriteString("${" + arg + "}")
				continue
			}
			b.WriteString(templateText("{" + tok.Text + "}"))
			continue
		}
		b.WriteString(templateText(tok.Text))
	}
	b.WriteByte('`')
	return b.String()
}
