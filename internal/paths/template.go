// Package paths tokenizes Swagger URL templates and buckets them into groups.
package paths

import "strings"

// Kind classifies a token of a URL template.
type Kind int

const (
	Literal Kind = iota
	Placeholder
	Separator
)

// Token is one lexical element of a URL template. For placeholders Text holds
// the name without braces.
type Token struct {
	Kind Kind
	Text string
}

// Tokenize splits raw into separators, literal runs and {placeholder} tokens.
// An opening brace without a matching close brace is kept as literal text.
func Tokenize(raw string) []Token {
	var out []Token
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			out = append(out, Token{Kind: Literal, Text: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; c {
		case '/':
			flush()
			out = append(out, Token{Kind: Separator, Text: "/"})
		case '{':
			end := strings.IndexAny(raw[i+1:], "}/")
			if end <= 0 || raw[i+1+end] != '}' {
				lit.WriteByte(c)
				continue
			}
			flush()
			out = append(out, Token{Kind: Placeholder, Text: raw[i+1 : i+1+end]})
			i += end + 1
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return out
}

// Part is one non-empty /-separated element of a template. Most parts hold a
// single token; "file.{ext}" holds a literal and a placeholder.
type Part struct {
	Raw    string
	Tokens []Token
}

// IsPlaceholder reports whether the whole part is a single {placeholder}.
func (p Part) IsPlaceholder() bool {
	return len(p.Tokens) == 1 && p.Tokens[0].Kind == Placeholder
}

// Template is a parsed URL template.
type Template struct {
	Raw    string
	Tokens []Token
	Parts  []Part
}

// Parse tokenizes raw and splits it into parts. Empty parts produced by
// leading, trailing or doubled separators are dropped.
func Parse(raw string) Template {
	t := Template{Raw: raw, Tokens: Tokenize(raw)}
	var cur Part
	var text strings.Builder
	closePart := func() {
		if len(cur.Tokens) > 0 {
			cur.Raw = text.String()
			t.Parts = append(t.Parts, cur)
		}
		cur = Part{}
		text.Reset()
	}
	for _, tok := range t.Tokens {
		switch tok.Kind {
		case Separator:
			closePart()
		case Placeholder:
			cur.Tokens = append(cur.Tokens, tok)
			text.WriteString("{" + tok.Text + "}")
		default:
			cur.Tokens = append(cur.Tokens, tok)
			text.WriteString(tok.Text)
		}
	}
	closePart()
	return t
}

// Placeholders returns the placeholder names in template order. A name that
// appears more than once is returned once, at its first position.
func (t Template) Placeholders() []string {
	var out []string
	seen := map[string]bool{}
	for _, tok := range t.Tokens {
		if tok.Kind != Placeholder || seen[tok.Text] {
			continue
		}
		seen[tok.Text] = true
		out = append(out, tok.Text)
	}
	return out
}
