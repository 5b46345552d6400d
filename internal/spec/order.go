package spec

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// orderIndex remembers the key order of the raw document. kin-openapi decodes
// into Go maps, so generation order is recovered from a yaml.v3 node walk.
type orderIndex struct {
	paths       []string
	methods     map[string][]string          // by path
	definitions []string
	properties  map[string][]string          // by definition
	propDescs   map[string]map[string]string // by definition, then property
}

func buildOrderIndex(raw []byte) (*orderIndex, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	idx := &orderIndex{
		methods:    map[string][]string{},
		properties: map[string][]string{},
		propDescs:  map[string]map[string]string{},
	}
	doc := resolveNode(&root)
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = resolveNode(doc.Content[0])
	}

	forEachPair(mappingValue(doc, "paths"), func(path string, item *yaml.Node) {
		idx.paths = append(idx.paths, path)
		forEachPair(item, func(method string, _ *yaml.Node) {
			m := strings.ToLower(method)
			if IsHttpMethod(m) {
				idx.methods[path] = append(idx.methods[path], m)
			}
		})
	})

	defs := mappingValue(doc, "definitions")
	if defs == nil {
		defs = mappingValue(mappingValue(doc, "components"), "schemas")
	}
	forEachPair(defs, func(name string, schema *yaml.Node) {
		idx.definitions = append(idx.definitions, name)
		forEachPair(mappingValue(schema, "properties"), func(prop string, ps *yaml.Node) {
			idx.properties[name] = append(idx.properties[name], prop)
			if d := mappingValue(ps, "description"); d != nil && d.Kind == yaml.ScalarNode {
				if idx.propDescs[name] == nil {
					idx.propDescs[name] = map[string]string{}
				}
				idx.propDescs[name][prop] = d.Value
			}
		})
	})
	return idx, nil
}

func resolveNode(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	n = resolveNode(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return resolveNode(n.Content[i+1])
		}
	}
	return nil
}

func forEachPair(n *yaml.Node, fn func(key string, value *yaml.Node)) {
	n = resolveNode(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		fn(n.Content[i].Value, resolveNode(n.Content[i+1]))
	}
}

// orderedKeys returns the keys of m in the order they appear in order. Keys
// missing from order (e.g. introduced by a conversion) follow, sorted.
func orderedKeys[V any](order []string, m map[string]V) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range order {
		if _, ok := m[k]; ok && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
