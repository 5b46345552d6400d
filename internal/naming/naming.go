// Package naming derives JavaScript identifiers from Swagger URL templates.
package naming

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mark3labs/swagger2request/internal/paths"
)

// RootName is the base name of the template "/".
const RootName = "Root"

var titleCaser = cases.Title(language.English, cases.NoLower)

// DeriveIdentifier returns the stub name for one (template, verb) pair: the
// title-cased path segments with separators and braces dropped, followed by
// the upper-cased verb. "/pet/{petId}" + "get" gives "PetPetIdGET".
func DeriveIdentifier(template, verb string) string {
	return BaseName(template) + strings.ToUpper(strings.TrimSpace(verb))
}

// BaseName returns the verb-less part of DeriveIdentifier.
func BaseName(template string) string {
	t := paths.Parse(template)
	var b strings.Builder
	for _, part := range t.Parts {
		for _, tok := range part.Tokens {
			writeTitleWords(&b, tok.Text)
		}
	}
	base := b.String()
	if base == "" {
		return RootName
	}
	// "delete" is a reserved word in generated code.
	if strings.EqualFold(base, "delete") {
		base = "do" + titleCaser.String(strings.ToLower(base))
	}
	if r := []rune(base)[0]; unicode.IsDigit(r) {
		base = "_" + base
	}
	return base
}

// writeTitleWords splits s on characters that cannot appear in an identifier
// and writes each word with its first rune title-cased.
func writeTitleWords(b *strings.Builder, s string) {
	capitalizeNext := true
	for _, r := range s {
		if !isIdentRune(r) {
			capitalizeNext = true
			continue
		}
		if capitalizeNext {
			b.WriteString(titleCaser.String(string(r)))
			capitalizeNext = false
			continue
		}
		b.WriteRune(r)
	}
}

// Registry hands out identifiers that are unique within one module.
type Registry struct {
	seen map[string]bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{seen: map[string]bool{}}
}

// Claim returns name when it is still free. Otherwise it returns the first
// free name of the form name_2, name_3, ... and reports the rename.
func (r *Registry) Claim(name string) (string, bool) {
	if !r.seen[name] {
		r.seen[name] = true
		return name, false
	}
	for n := 2; ; n++ {
		candidate := name + "_" + strconv.Itoa(n)
		if !r.seen[candidate] {
			r.seen[candidate] = true
			return candidate, true
		}
	}
}
