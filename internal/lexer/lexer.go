// Package lexer turns PVL source text into a stream of tokens.
//
// The lexer is a character state machine with four "preserve" modes
// (comment, quoted string, units expression, non-decimal literal) in which
// characters accumulate verbatim until the matching terminator. Tokens can
// be pushed back onto the stream, which is how the parser gets single-token
// lookahead without its own buffer.
package lexer

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/planetarypy/go-pvl/internal/grammar"
	"github.com/planetarypy/go-pvl/internal/token"
)

// Error is a fatal lexical error: an illegal character or an unterminated
// comment, quoted string, units expression or non-decimal literal.
type Error struct {
	Msg     string
	Pos     int
	Line    int
	Col     int
	Context string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, column %d: %s near %q", e.Line, e.Col, e.Msg, e.Context)
}

// Lexer scans one source text under one grammar. It is not safe for
// concurrent use; independent Lexers over independent sources are.
type Lexer struct {
	src  string
	g    *grammar.Grammar
	pos  int // byte offset of the next unread rune
	line int
	col  int

	pushed []token.Token
}

// New returns a Lexer over src using grammar g.
func New(src string, g *grammar.Grammar) *Lexer {
	return &Lexer{src: src, g: g, line: 1, col: 1}
}

// PushBack returns tok to the stream; the next call to Next yields it
// again. Multiple pushed tokens come back in LIFO order.
func (l *Lexer) PushBack(tok token.Token) {
	l.pushed = append(l.pushed, tok)
}

// Next returns the next token, or io.EOF when the source is exhausted.
// Whitespace between tokens is discarded; comments are returned as tokens
// so the parser can decide what to do with them.
func (l *Lexer) Next() (token.Token, error) {
	if n := len(l.pushed); n > 0 {
		tok := l.pushed[n-1]
		l.pushed = l.pushed[:n-1]
		return tok, nil
	}

	if err := l.skipWhitespace(); err != nil {
		return token.Token{}, err
	}
	if l.pos >= len(l.src) {
		return token.Token{}, io.EOF
	}

	start := l.mark()
	r := l.peek()
	if !l.g.CharAllowed(r) {
		return token.Token{}, l.errorAt(start, fmt.Sprintf("character %q is not allowed", r))
	}

	if c, ok := l.g.CommentPairFor(l.src[l.pos:]); ok {
		return l.lexComment(start, c)
	}
	if l.g.IsQuote(r) {
		return l.lexQuoted(start, r)
	}
	if strings.HasPrefix(l.src[l.pos:], l.g.UnitsDelims[0]) {
		return l.lexUnits(start)
	}
	if l.g.IsReserved(r) && !l.signStartsNumber(r) {
		l.advance()
		return l.emit(start), nil
	}
	return l.lexBare(start)
}

// position bookkeeping

type position struct {
	pos, line, col int
}

func (l *Lexer) mark() position {
	return position{l.pos, l.line, l.col}
}

func (l *Lexer) peek() rune {
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

func (l *Lexer) peekAt(byteOffset int) rune {
	if l.pos+byteOffset >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos+byteOffset:])
	return r
}

func (l *Lexer) advance() {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) emit(start position) token.Token {
	return token.Token{
		Text: l.src[start.pos:l.pos],
		Pos:  start.pos,
		Line: start.line,
		Col:  start.col,
	}
}

func (l *Lexer) skipWhitespace() error {
	for l.pos < len(l.src) {
		r := l.peek()
		if !l.g.CharAllowed(r) {
			return l.errorAt(l.mark(), fmt.Sprintf("character %q is not allowed", r))
		}
		if !l.g.IsWhitespace(r) {
			return nil
		}
		l.advance()
	}
	return nil
}

func (l *Lexer) errorAt(p position, msg string) *Error {
	lo, hi := p.pos-8, p.pos+8
	if lo < 0 {
		lo = 0
	}
	if hi > len(l.src) {
		hi = len(l.src)
	}
	return &Error{
		Msg:     msg,
		Pos:     p.pos,
		Line:    p.line,
		Col:     p.col,
		Context: l.src[lo:hi],
	}
}

// signStartsNumber reports whether the reserved sign character r at the
// current position begins a numeric lexeme (sign immediately followed by a
// digit or decimal point).
func (l *Lexer) signStartsNumber(r rune) bool {
	if r != '+' && r != '-' {
		return false
	}
	next := l.peekAt(1)
	return isDigit(next) || next == '.'
}

// lexComment consumes a comment, preserving its text verbatim including the
// delimiters (but not a line comment's terminating newline).
func (l *Lexer) lexComment(start position, c grammar.CommentPair) (token.Token, error) {
	for range c.Start {
		l.advance()
	}
	if c.Line() {
		for l.pos < len(l.src) && l.peek() != '\n' {
			if !l.g.CharAllowed(l.peek()) {
				return token.Token{}, l.errorAt(l.mark(), fmt.Sprintf("character %q is not allowed", l.peek()))
			}
			l.advance()
		}
		return l.emit(start), nil
	}
	// Block comment. The minimum-length guard keeps the '*' shared by
	// "/*/" from counting as both the opener and the closer.
	for l.pos < len(l.src) {
		if !l.g.CharAllowed(l.peek()) {
			return token.Token{}, l.errorAt(l.mark(), fmt.Sprintf("character %q is not allowed", l.peek()))
		}
		l.advance()
		text := l.src[start.pos:l.pos]
		if strings.HasSuffix(text, c.End) && len(text) >= len(c.Start)+len(c.End) {
			return l.emit(start), nil
		}
	}
	return token.Token{}, l.errorAt(start, "unterminated comment")
}

// lexQuoted consumes a quoted string verbatim, delimiters included. When
// the grammar supports escapes, a backslash keeps the following quote
// character from terminating the string.
func (l *Lexer) lexQuoted(start position, q rune) (token.Token, error) {
	l.advance() // opening quote
	escaped := false
	for l.pos < len(l.src) {
		r := l.peek()
		if !l.g.CharAllowed(r) {
			return token.Token{}, l.errorAt(l.mark(), fmt.Sprintf("character %q is not allowed", r))
		}
		l.advance()
		if escaped {
			escaped = false
			continue
		}
		if l.g.Escapes && r == '\\' {
			escaped = true
			continue
		}
		if r == q {
			return l.emit(start), nil
		}
	}
	return token.Token{}, l.errorAt(start, "unterminated quoted string")
}

// lexUnits consumes a units expression verbatim, delimiters included.
func (l *Lexer) lexUnits(start position) (token.Token, error) {
	for range l.g.UnitsDelims[0] {
		l.advance()
	}
	for l.pos < len(l.src) {
		if !l.g.CharAllowed(l.peek()) {
			return token.Token{}, l.errorAt(l.mark(), fmt.Sprintf("character %q is not allowed", l.peek()))
		}
		if strings.HasPrefix(l.src[l.pos:], l.g.UnitsDelims[1]) {
			for range l.g.UnitsDelims[1] {
				l.advance()
			}
			return l.emit(start), nil
		}
		l.advance()
	}
	return token.Token{}, l.errorAt(start, "unterminated units expression")
}

var (
	// A lexeme that is a bare radix prefix, e.g. "16" or "-2", about to
	// meet a '#'.
	radixPrefix = regexp.MustCompile(`^[+-]?(2|8|16)$`)
	// A numeric lexeme ending in an exponent marker, e.g. "6.626e".
	exponentTail = regexp.MustCompile(`^[+-]?[0-9][0-9.]*[eE]$`)
	// A lexeme ending in a complete time-of-day, which a following signed
	// digit extends with a numeric timezone offset.
	timezoneTail = regexp.MustCompile(`[0-9]{1,2}:[0-9]{2}(:[0-9]{2}(\.[0-9]+)?)?$`)
)

// lexBare accumulates an unquoted lexeme until whitespace, a reserved
// character, a comment start or end of input. Signs that belong to numeric
// lexemes (leading sign, exponent sign, timezone offset sign) and
// non-decimal literal bodies are kept inside the lexeme.
func (l *Lexer) lexBare(start position) (token.Token, error) {
	for l.pos < len(l.src) {
		r := l.peek()
		if !l.g.CharAllowed(r) {
			return token.Token{}, l.errorAt(l.mark(), fmt.Sprintf("character %q is not allowed", r))
		}
		if l.g.IsWhitespace(r) {
			break
		}
		// The radix check comes before the comment check: under grammars
		// with '#' line comments the '#' of "2#0101#" is still a radix
		// marker, not a comment start.
		if r == '#' && radixPrefix.MatchString(l.src[start.pos:l.pos]) {
			if err := l.consumeNonDecimal(start); err != nil {
				return token.Token{}, err
			}
			continue
		}
		if _, ok := l.g.CommentPairFor(l.src[l.pos:]); ok {
			break
		}
		if l.g.IsReserved(r) {
			lexeme := l.src[start.pos:l.pos]
			switch {
			case (r == '+' || r == '-') && lexeme == "" && (isDigit(l.peekAt(1)) || l.peekAt(1) == '.'):
				l.advance()
				continue
			case (r == '+' || r == '-') && exponentTail.MatchString(lexeme) && isDigit(l.peekAt(1)):
				l.advance()
				continue
			case (r == '+' || r == '-') && timezoneTail.MatchString(lexeme) && isDigit(l.peekAt(1)):
				l.advance()
				continue
			}
			break
		}
		l.advance()
	}
	return l.emit(start), nil
}

// consumeNonDecimal eats a radix literal body from the opening '#' through
// the closing '#', verbatim. Digit validity is the decoder's concern.
func (l *Lexer) consumeNonDecimal(start position) error {
	l.advance() // opening '#'
	for l.pos < len(l.src) {
		r := l.peek()
		if !l.g.CharAllowed(r) {
			return l.errorAt(l.mark(), fmt.Sprintf("character %q is not allowed", r))
		}
		if l.g.IsWhitespace(r) {
			break
		}
		l.advance()
		if r == '#' {
			return nil
		}
	}
	return l.errorAt(start, "unterminated non-decimal literal")
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
