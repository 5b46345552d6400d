package naming

import (
	"strings"
	"unicode"
)

var reserved = map[string]bool{
	"arguments": true, "await": true, "break": true, "case": true, "catch": true,
	"class": true, "const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true, "eval": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "implements": true, "import": true, "in": true,
	"instanceof": true, "interface": true, "let": true, "new": true, "null": true,
	"package": true, "private": true, "protected": true, "public": true, "return": true,
	"static": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true,
}

// IsReserved reports whether s is a reserved word in an ES module.
func IsReserved(s string) bool { return reserved[s] }

// IsIdentifier reports whether s can be used as a binding name in an ES module.
func IsIdentifier(s string) bool {
	if s == "" || IsReserved(s) {
		return false
	}
	for i, r := range s {
		if i == 0 && unicode.IsDigit(r) {
			return false
		}
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

// Variable turns a placeholder or parameter name into a lowerCamel binding
// name: "pet-id" gives "petId". Reserved words, names listed in taken and
// names starting with a digit get a leading underscore.
func Variable(name string, taken ...string) string {
	var b strings.Builder
	first := true
	capitalizeNext := false
	for _, r := range name {
		if !isIdentRune(r) {
			capitalizeNext = !first
			continue
		}
		if capitalizeNext {
			b.WriteString(titleCaser.String(string(r)))
			capitalizeNext = false
		} else {
			b.WriteRune(r)
		}
		first = false
	}
	out := b.String()
	if out == "" {
		out = "arg"
	}
	if unicode.IsDigit([]rune(out)[0]) || IsReserved(out) {
		out = "_" + out
	}
	for _, t := range taken {
		if out == t {
			out = "_" + out
			break
		}
	}
	return out
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
