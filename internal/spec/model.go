package spec

// Document model consumed by the generation pipeline. Every slice keeps the
// key order of the source document.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
)

// IsHttpMethod reports whether s names an operation key of a Swagger path item.
func IsHttpMethod(s string) bool {
	switch HttpMethod(s) {
	case GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS:
		return true
	}
	return false
}

type Document struct {
	BasePath    string
	Paths       []PathItem
	Definitions []Definition
}

type PathItem struct {
	Template   string
	Operations []Operation
}

type Operation struct {
	Template   string
	Method     HttpMethod
	Summary    string
	Parameters []Parameter
}

type Parameter struct {
	Name        string
	In          string // path|query|header|body|formData
	Type        string
	Description string
	Required    bool
}

// IsPath reports whether the parameter is bound into the URL template.
func (p Parameter) IsPath() bool { return p.In == "path" }

type Definition struct {
	Name       string
	Properties []Property
}

type Property struct {
	Name        string
	Description string
	Ref         string // set when the property is a $ref to another schema
}

func (p Property) IsRef() bool { return p.Ref != "" }

// Templates returns the URL templates of the document in order.
func (d *Document) Templates() []string {
	out := make([]string, 0, len(d.Paths))
	for _, p := range d.Paths {
		out = append(out, p.Template)
	}
	return out
}

// Path returns the path item for template, or nil.
func (d *Document) Path(template string) *PathItem {
	for i := range d.Paths {
		if d.Paths[i].Template == template {
			return &d.Paths[i]
		}
	}
	return nil
}
