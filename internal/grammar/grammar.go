// Package grammar defines the lexical tables for the PVL dialect family.
//
// A Grammar is pure configuration: character sets, delimiter pairs,
// aggregation keyword tables and the regular patterns for non-decimal
// numeric literals and leap-second times. The named profiles (Omni, PVL,
// ODL, PDS3, ISIS) differ only in table contents. Grammars are constructed
// once, never mutated, and shared by reference across lexer, parser and
// encoder calls.
package grammar

import (
	"regexp"
	"strings"
)

// CommentPair is a comment start marker and its matching terminator.
// A single-rune start with a "\n" end is a line comment; anything else
// is a block comment.
type CommentPair struct {
	Start string
	End   string
}

// Line reports whether the pair is a line comment (terminated by newline).
func (c CommentPair) Line() bool {
	return c.End == "\n"
}

// Grammar holds the lexical tables for one dialect.
type Grammar struct {
	Name string

	// Whitespace and Reserved partition the characters that terminate a
	// lexeme. Reserved never overlaps Whitespace.
	Whitespace string
	Reserved   string

	Comments []CommentPair

	// Aggregation keyword tables, keyed by the upper-cased begin keyword.
	// Values are the upper-cased end keyword. Matching is always
	// case-insensitive.
	GroupKeywords  map[string]string
	ObjectKeywords map[string]string

	// EndStatements are the keywords that terminate a module ("END").
	EndStatements []string

	Quotes         string // accepted quote characters; open must match close
	Escapes        bool   // backslash escapes inside quoted strings
	SequenceDelims [2]string
	SetDelims      [2]string
	UnitsDelims    [2]string
	StatementDelim string // ";"

	// NonDecimal matches a complete radix literal such as 16#4F#.
	// NonDecimalStart matches only its prefix and is used to distinguish
	// "malformed radix literal" from "never was one".
	NonDecimal      *regexp.Regexp
	NonDecimalStart *regexp.Regexp

	// LeapSecond matches a time-of-day whose seconds field is 60.
	LeapSecond *regexp.Regexp

	TrueKeywords  []string
	FalseKeywords []string
	NullKeywords  []string

	// CharAllowed reports whether a code point may appear in the input at
	// all. The lexer aborts on the first disallowed character.
	CharAllowed func(r rune) bool
}

// IsWhitespace reports whether r is in the grammar's whitespace set.
func (g *Grammar) IsWhitespace(r rune) bool {
	return strings.ContainsRune(g.Whitespace, r)
}

// IsReserved reports whether r is in the grammar's reserved set.
func (g *Grammar) IsReserved(r rune) bool {
	return strings.ContainsRune(g.Reserved, r)
}

// IsQuote reports whether r is an accepted quote character.
func (g *Grammar) IsQuote(r rune) bool {
	return strings.ContainsRune(g.Quotes, r)
}

// CommentPairFor returns the comment pair whose start marker begins at the
// head of s.
func (g *Grammar) CommentPairFor(s string) (CommentPair, bool) {
	for _, c := range g.Comments {
		if strings.HasPrefix(s, c.Start) {
			return c, true
		}
	}
	return CommentPair{}, false
}

// AggregationEnd looks up the end keyword paired with the begin keyword w.
// group reports whether w opens a group (as opposed to an object).
// Matching is case-insensitive.
func (g *Grammar) AggregationEnd(w string) (end string, group, ok bool) {
	u := strings.ToUpper(w)
	if end, ok := g.GroupKeywords[u]; ok {
		return end, true, true
	}
	if end, ok := g.ObjectKeywords[u]; ok {
		return end, false, true
	}
	return "", false, false
}

// IsBeginAggregation reports whether w opens a group or object block.
func (g *Grammar) IsBeginAggregation(w string) bool {
	_, _, ok := g.AggregationEnd(w)
	return ok
}

// IsEndAggregation reports whether w closes a group or object block.
func (g *Grammar) IsEndAggregation(w string) bool {
	u := strings.ToUpper(w)
	for _, end := range g.GroupKeywords {
		if u == end {
			return true
		}
	}
	for _, end := range g.ObjectKeywords {
		if u == end {
			return true
		}
	}
	return false
}

// IsEndStatement reports whether w terminates a module.
func (g *Grammar) IsEndStatement(w string) bool {
	u := strings.ToUpper(w)
	for _, end := range g.EndStatements {
		if u == end {
			return true
		}
	}
	return false
}

// ReservedKeyword reports whether w has grammatical meaning and therefore
// cannot be used as a bare parameter name or string value.
func (g *Grammar) ReservedKeyword(w string) bool {
	if g.IsBeginAggregation(w) || g.IsEndAggregation(w) || g.IsEndStatement(w) {
		return true
	}
	u := strings.ToUpper(w)
	for _, kws := range [][]string{g.TrueKeywords, g.FalseKeywords, g.NullKeywords} {
		for _, kw := range kws {
			if u == strings.ToUpper(kw) {
				return true
			}
		}
	}
	return false
}

const (
	pvlWhitespace = " \n\r\t\v\f"
	pvlReserved   = "&<>'{},[]=!#()%+\"~;|"
)

var (
	// Sign before the radix marker: -16#4F#
	signBeforeRadix = regexp.MustCompile(`^([+-]?)(2|8|16)#([0-9A-Fa-f]+)#$`)
	// Sign inside the marker pair: 16#-4F#
	signInsideRadix = regexp.MustCompile(`^(2|8|16)#([+-]?)([0-9A-Fa-f]+)#$`)
	// Either position (at most one sign; the decoder enforces that).
	signEitherRadix = regexp.MustCompile(`^([+-]?)(2|8|16)#([+-]?)([0-9A-Fa-f]+)#$`)

	radixStart = regexp.MustCompile(`^[+-]?(2|8|16)#`)

	leapSecond = regexp.MustCompile(`^\d{1,2}:\d{2}:60(\.\d+)?([Zz]|[+-]\d{1,2})?$`)
)

func pvlCharAllowed(r rune) bool {
	if r >= 0x20 && r <= 0x7e {
		return true
	}
	return strings.ContainsRune(" \n\r\t\v\f", r)
}

func anyCharAllowed(r rune) bool {
	return r != 0
}

func groupTable() map[string]string {
	return map[string]string{
		"GROUP":       "END_GROUP",
		"BEGIN_GROUP": "END_GROUP",
	}
}

func objectTable() map[string]string {
	return map[string]string{
		"OBJECT":       "END_OBJECT",
		"BEGIN_OBJECT": "END_OBJECT",
	}
}

// PVL is the strict grammar of the PVL specification.
var PVL = &Grammar{
	Name:            "PVL",
	Whitespace:      pvlWhitespace,
	Reserved:        pvlReserved,
	Comments:        []CommentPair{{Start: "/*", End: "*/"}},
	GroupKeywords:   groupTable(),
	ObjectKeywords:  objectTable(),
	EndStatements:   []string{"END"},
	Quotes:          `"'`,
	Escapes:         true,
	SequenceDelims:  [2]string{"(", ")"},
	SetDelims:       [2]string{"{", "}"},
	UnitsDelims:     [2]string{"<", ">"},
	StatementDelim:  ";",
	NonDecimal:      signBeforeRadix,
	NonDecimalStart: radixStart,
	LeapSecond:      leapSecond,
	TrueKeywords:    []string{"TRUE"},
	FalseKeywords:   []string{"FALSE"},
	NullKeywords:    []string{"NULL"},
	CharAllowed:     pvlCharAllowed,
}

// ODL is the Object Description Language grammar. ODL has no boolean or
// null literals and places the radix-literal sign inside the marker pair.
var ODL = &Grammar{
	Name:            "ODL",
	Whitespace:      pvlWhitespace,
	Reserved:        pvlReserved,
	Comments:        []CommentPair{{Start: "/*", End: "*/"}},
	GroupKeywords:   groupTable(),
	ObjectKeywords:  objectTable(),
	EndStatements:   []string{"END"},
	Quotes:          `"'`,
	SequenceDelims:  [2]string{"(", ")"},
	SetDelims:       [2]string{"{", "}"},
	UnitsDelims:     [2]string{"<", ">"},
	StatementDelim:  ";",
	NonDecimal:      signInsideRadix,
	NonDecimalStart: radixStart,
	LeapSecond:      leapSecond,
	CharAllowed:     pvlCharAllowed,
}

// PDS3 is the grammar of PDS3 data product labels. Lexically it is ODL.
var PDS3 = &Grammar{
	Name:            "PDS3",
	Whitespace:      pvlWhitespace,
	Reserved:        pvlReserved,
	Comments:        []CommentPair{{Start: "/*", End: "*/"}},
	GroupKeywords:   groupTable(),
	ObjectKeywords:  objectTable(),
	EndStatements:   []string{"END"},
	Quotes:          `"'`,
	SequenceDelims:  [2]string{"(", ")"},
	SetDelims:       [2]string{"{", "}"},
	UnitsDelims:     [2]string{"<", ">"},
	StatementDelim:  ";",
	NonDecimal:      signInsideRadix,
	NonDecimalStart: radixStart,
	LeapSecond:      leapSecond,
	CharAllowed:     pvlCharAllowed,
}

// ISIS is the grammar of ISIS cube labels, which add '#' line comments.
var ISIS = &Grammar{
	Name:       "ISIS",
	Whitespace: pvlWhitespace,
	Reserved:   pvlReserved,
	Comments: []CommentPair{
		{Start: "/*", End: "*/"},
		{Start: "#", End: "\n"},
	},
	GroupKeywords:   groupTable(),
	ObjectKeywords:  objectTable(),
	EndStatements:   []string{"END"},
	Quotes:          `"'`,
	SequenceDelims:  [2]string{"(", ")"},
	SetDelims:       [2]string{"{", "}"},
	UnitsDelims:     [2]string{"<", ">"},
	StatementDelim:  ";",
	NonDecimal:      signBeforeRadix,
	NonDecimalStart: radixStart,
	LeapSecond:      leapSecond,
	CharAllowed:     pvlCharAllowed,
}

// Omni accepts the union of the dialect family: both comment forms, radix
// signs on either side of the marker, case-insensitive keyword literals and
// any code point but NUL. It is the default grammar for reading foreign
// labels.
var Omni = &Grammar{
	Name:       "Omni",
	Whitespace: pvlWhitespace,
	Reserved:   pvlReserved,
	Comments: []CommentPair{
		{Start: "/*", End: "*/"},
		{Start: "#", End: "\n"},
	},
	GroupKeywords:   groupTable(),
	ObjectKeywords:  objectTable(),
	EndStatements:   []string{"END"},
	Quotes:          `"'`,
	SequenceDelims:  [2]string{"(", ")"},
	SetDelims:       [2]string{"{", "}"},
	UnitsDelims:     [2]string{"<", ">"},
	StatementDelim:  ";",
	Escapes:         true,
	NonDecimal:      signEitherRadix,
	NonDecimalStart: radixStart,
	LeapSecond:      leapSecond,
	TrueKeywords:    []string{"TRUE"},
	FalseKeywords:   []string{"FALSE"},
	NullKeywords:    []string{"NULL"},
	CharAllowed:     anyCharAllowed,
}
