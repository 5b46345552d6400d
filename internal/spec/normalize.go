package spec

import (
	"fmt"
	"strings"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"
)

// BuildDocument converts a decoded Swagger 2.0 document into the pipeline's
// Document. idx supplies key order; with a nil idx keys are sorted.
func BuildDocument(doc *openapi2.T, idx *orderIndex) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	if idx == nil {
		idx = &orderIndex{}
	}

	out := &Document{BasePath: safeStr(doc.BasePath)}

	for _, tpl := range orderedKeys(idx.paths, doc.Paths) {
		// Path items keys must start with "/"; anything else is an extension.
		if !strings.HasPrefix(tpl, "/") {
			continue
		}
		item := doc.Paths[tpl]
		if item == nil {
			continue
		}
		byMethod := make(map[string]*openapi2.Operation)
		for method, op := range item.Operations() {
			byMethod[strings.ToLower(method)] = op
		}
		pi := PathItem{Template: tpl}
		for _, m := range orderedKeys(idx.methods[tpl], byMethod) {
			op := byMethod[m]
			if op == nil || !IsHttpMethod(m) {
				continue
			}
			pi.Operations = append(pi.Operations, Operation{
				Template:   tpl,
				Method:     HttpMethod(m),
				Summary:    safeStr(op.Summary),
				Parameters: mergeParameters(doc, item.Parameters, op.Parameters),
			})
		}
		out.Paths = append(out.Paths, pi)
	}

	for _, name := range orderedKeys(idx.definitions, doc.Definitions) {
		ref := doc.Definitions[name]
		if ref == nil {
			continue
		}
		def := Definition{Name: name}
		if ref.Value != nil {
			for _, pname := range orderedKeys(idx.properties[name], ref.Value.Properties) {
				def.Properties = append(def.Properties, toProperty(pname, ref.Value.Properties[pname], idx.propDescs[name]))
			}
		}
		out.Definitions = append(out.Definitions, def)
	}

	return out, nil
}

// mergeParameters applies path-level parameters first, then operation-level
// ones. An operation parameter with the same in+name replaces the path-level
// one in place.
func mergeParameters(doc *openapi2.T, base, own openapi2.Parameters) []Parameter {
	var out []Parameter
	index := map[string]int{}
	add := func(p *openapi2.Parameter) {
		p = resolveParameter(doc, p)
		if p == nil {
			return
		}
		pm := toParameter(p)
		key := paramKey(pm.In, pm.Name)
		if i, ok := index[key]; ok {
			out[i] = pm
			return
		}
		index[key] = len(out)
		out = append(out, pm)
	}
	for _, p := range base {
		add(p)
	}
	for _, p := range own {
		add(p)
	}
	return out
}

func resolveParameter(doc *openapi2.T, p *openapi2.Parameter) *openapi2.Parameter {
	if p == nil || p.Ref == "" {
		return p
	}
	name := strings.TrimPrefix(p.Ref, "#/parameters/")
	if shared, ok := doc.Parameters[name]; ok && shared != nil {
		return shared
	}
	return nil
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }

func toParameter(p *openapi2.Parameter) Parameter {
	pm := Parameter{
		Name:        safeStr(p.Name),
		In:          safeStr(p.In),
		Type:        safeStr(p.Type),
		Description: safeStr(p.Description),
		Required:    p.Required,
	}
	if pm.Type == "" && p.Schema != nil {
		pm.Type = schemaTypeName(p.Schema)
	}
	return pm
}

// schemaTypeName names a schema for documentation: the referenced definition
// name for a $ref, otherwise the schema type.
func schemaTypeName(ref *openapi3.SchemaRef) string {
	if ref.Ref != "" {
		return refName(ref.Ref)
	}
	if ref.Value == nil {
		return ""
	}
	if ref.Value.Type == "array" && ref.Value.Items != nil {
		if item := schemaTypeName(ref.Value.Items); item != "" {
			return item + "[]"
		}
	}
	return safeStr(ref.Value.Type)
}

func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func toProperty(name string, ref *openapi3.SchemaRef, rawDescs map[string]string) Property {
	prop := Property{Name: name}
	if ref == nil {
		return prop
	}
	if ref.Ref != "" {
		prop.Ref = ref.Ref
		// Siblings of $ref are dropped by the decoder; keep the raw description.
		prop.Description = safeStr(rawDescs[name])
		return prop
	}
	if ref.Value != nil {
		prop.Description = safeStr(ref.Value.Description)
	}
	return prop
}
