package jsemitter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/swagger2request/internal/format"
	"github.com/mark3labs/swagger2request/internal/naming"
	"github.com/mark3labs/swagger2request/internal/spec"
)

// ClassOptions configures EmitClass.
type ClassOptions struct {
	// ExcludePrefixes drops definitions whose raw or stripped name starts
	// with one of the prefixes. Nil means DefaultExcludePrefixes; an empty
	// non-nil slice excludes nothing.
	ExcludePrefixes []string
	Formatter       format.Formatter
}

// Class is the rendered model skeleton of one definition.
type Class struct {
	Definition string
	Name       string
	FileName   string
	Source     string
	Formatted  bool
	// FormatErr is set when the formatter rejected the text; Source then
	// holds the unformatted rendering.
	FormatErr error
}

type fieldView struct {
	Key   string
	Doc   []string
	Value string
}

type classView struct {
	Name   string
	Fields []fieldView
}

// ClassName strips any dotted namespace from a definition name:
// "com.shop.Order" gives "Order".
func ClassName(definition string) string {
	if i := strings.LastIndexByte(definition, '.'); i >= 0 {
		return definition[i+1:]
	}
	return definition
}

// Excluded reports whether the definition is dropped by prefixes.
func Excluded(definition string, prefixes []string) bool {
	stripped := ClassName(definition)
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if strings.HasPrefix(definition, p) || strings.HasPrefix(stripped, p) {
			return true
		}
	}
	return false
}

// ClassFileName returns the file the class of definition is written to.
// The raw name is kept so "a.Order" and "b.Order" do not overwrite each other.
func ClassFileName(definition string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '_'
		}
		return r
	}, definition)
	return name + FileExt
}

// EmitClass renders def as an exported class with one field per property.
// It returns an error wrapping ErrExcluded or ErrInvalidName when the
// definition yields no class. A formatter failure is not an error: the
// rendered text is kept and FormatErr is set.
func EmitClass(def spec.Definition, opts ClassOptions) (*Class, error) {
	prefixes := opts.ExcludePrefixes
	if prefixes == nil {
		prefixes = DefaultExcludePrefixes
	}
	if Excluded(def.Name, prefixes) {
		return nil, fmt.Errorf("%w: %s", ErrExcluded, def.Name)
	}
	name := ClassName(def.Name)
	if !naming.IsIdentifier(name) {
		return nil, fmt.Errorf("%w: class name %q from definition %s", ErrInvalidName, name, def.Name)
	}

	view := classView{Name: name}
	for _, p := range def.Properties {
		f := fieldView{Key: fieldKey(p.Name), Doc: splitLines(p.Description), Value: "undefined"}
		if p.IsRef() {
			f.Value = "{}"
		}
		view.Fields = append(view.Fields, f)
	}
	src, err := renderTemplate(classTemplate, view)
	if err != nil {
		return nil, fmt.Errorf("jsemitter: render class %s: %w", def.Name, err)
	}
	class := &Class{Definition: def.Name, Name: name, FileName: ClassFileName(def.Name), Source: src}
	if opts.Formatter != nil {
		out, ferr := opts.Formatter.Format(src)
		if ferr != nil {
			class.FormatErr = ferr
			return class, nil
		}
		class.Source = out
		class.Formatted = true
	}
	return class, nil
}

// contextualKeys read as modifiers at the start of a class element, so a
// bare field with one of these names is misparsed by stricter parsers.
var contextualKeys = map[string]bool{"get": true, "set": true, "async": true, "static": true, "accessor": true}

// fieldKey returns the class field key for a property. Reserved words are
// valid field names; modifiers and anything that is not an identifier are
// quoted.
func fieldKey(name string) string {
	if contextualKeys[name] {
		return quote(name)
	}
	if name == "constructor" {
		// Class fields may not be named constructor unless computed.
		return "[" + quote(name) + "]"
	}
	if naming.IsIdentifier(name) || naming.IsReserved(name) {
		return name
	}
	return quote(name)
}
