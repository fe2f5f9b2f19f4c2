// Package token defines the lexical token passed from the lexer to the
// parser. A Token is just a slice of source text plus its position; all
// classification takes the grammar as an explicit argument so the same
// token can be judged under different dialects.
package token

import (
	"strings"
	"unicode/utf8"

	"github.com/planetarypy/go-pvl/internal/grammar"
)

// Token is one lexical unit of PVL source text.
type Token struct {
	Text string
	Pos  int // byte offset into the source
	Line int // 1-based
	Col  int // 1-based, in runes
}

// IsComment reports whether t is a comment under g. Line comments keep
// their start marker but not the terminating newline, so a line comment is
// recognized by its start marker alone.
func (t Token) IsComment(g *grammar.Grammar) bool {
	c, ok := g.CommentPairFor(t.Text)
	if !ok {
		return false
	}
	if c.Line() {
		return true
	}
	return strings.HasSuffix(t.Text, c.End) && len(t.Text) >= len(c.Start)+len(c.End)
}

// IsQuotedString reports whether t is a complete quoted string: at least
// two runes, opening with a quote character and closing with the same one.
func (t Token) IsQuotedString(g *grammar.Grammar) bool {
	first, size := utf8.DecodeRuneInString(t.Text)
	if size == 0 || !g.IsQuote(first) {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(t.Text)
	return utf8.RuneCountInString(t.Text) >= 2 && last == first
}

// IsReservedSymbol reports whether t is a single reserved character such as
// '=' or ','.
func (t Token) IsReservedSymbol(g *grammar.Grammar) bool {
	r, size := utf8.DecodeRuneInString(t.Text)
	return size > 0 && size == len(t.Text) && g.IsReserved(r)
}

// Is reports whether t's text equals s case-insensitively. Keyword matching
// in the PVL family is always case-insensitive.
func (t Token) Is(s string) bool {
	return strings.EqualFold(t.Text, s)
}

// BeginsAggregation reports whether t opens a group or object block.
func (t Token) BeginsAggregation(g *grammar.Grammar) bool {
	return g.IsBeginAggregation(t.Text)
}

// EndsAggregation reports whether t closes a group or object block.
func (t Token) EndsAggregation(g *grammar.Grammar) bool {
	return g.IsEndAggregation(t.Text)
}

// EndsStatement reports whether t is the statement delimiter.
func (t Token) EndsStatement(g *grammar.Grammar) bool {
	return t.Text == g.StatementDelim
}

// EndsModule reports whether t is an end-of-module keyword.
func (t Token) EndsModule(g *grammar.Grammar) bool {
	return g.IsEndStatement(t.Text)
}

// IsParameterName reports whether t can serve as the name in an assignment:
// non-empty, not a grammatical keyword, not quoted, and free of reserved
// characters.
func (t Token) IsParameterName(g *grammar.Grammar) bool {
	if t.Text == "" || g.ReservedKeyword(t.Text) || t.IsComment(g) {
		return false
	}
	for _, r := range t.Text {
		if g.IsReserved(r) || g.IsWhitespace(r) {
			return false
		}
	}
	return true
}

// IsUnits reports whether t is a complete units expression, delimiters
// included.
func (t Token) IsUnits(g *grammar.Grammar) bool {
	return strings.HasPrefix(t.Text, g.UnitsDelims[0]) &&
		strings.HasSuffix(t.Text, g.UnitsDelims[1]) &&
		len(t.Text) >= len(g.UnitsDelims[0])+len(g.UnitsDelims[1])
}
