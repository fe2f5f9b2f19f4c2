package pvl

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped) by the Container API.
var (
	ErrNotFound        = errors.New("parameter not found")
	ErrIndexOutOfRange = errors.New("occurrence index out of range")
)

// LexerError is a fatal lexical error: an illegal character or an
// unterminated comment, quoted string, units expression or non-decimal
// literal. Pos is the byte offset into the source; Context is a short
// snippet surrounding it.
type LexerError struct {
	Msg     string
	Pos     int
	Line    int
	Column  int
	Context string
}

func (e *LexerError) Error() string {
	return fmt.Sprintf("pvl: lexer: line %d, column %d: %s near %q", e.Line, e.Column, e.Msg, e.Context)
}

// ParseError is a structurally malformed statement: an unexpected token, an
// aggregation name mismatch or a missing value under the strict policy.
type ParseError struct {
	Msg    string
	Line   int
	Column int
	Token  string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("pvl: parse: line %d, column %d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("pvl: parse: line %d, column %d: %s (at %q)", e.Line, e.Column, e.Msg, e.Token)
}

// EncodeError reports a value that cannot be serialized: either its type is
// outside the value union, or emitting it under the chosen dialect would
// change its meaning on re-parse. Values are never silently approximated.
type EncodeError struct {
	Msg   string
	Value any
}

func (e *EncodeError) Error() string {
	if e.Value == nil {
		return "pvl: encode: " + e.Msg
	}
	return fmt.Sprintf("pvl: encode: %s (value %v)", e.Msg, e.Value)
}
