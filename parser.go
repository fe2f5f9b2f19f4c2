package pvl

import (
	"errors"
	"io"
	"strings"

	"github.com/planetarypy/go-pvl/internal/grammar"
	"github.com/planetarypy/go-pvl/internal/lexer"
	"github.com/planetarypy/go-pvl/internal/token"
)

// parser consumes the lexer's token stream and builds the module container.
// Lookahead is one token, obtained by pushing an examined token back onto
// the lexer's stream.
type parser struct {
	lx  *lexer.Lexer
	g   *grammar.Grammar
	dec *valueDecoder

	// lenient converts assignments with missing values into EmptyValue
	// placeholders recorded on the module instead of failing the parse.
	lenient bool

	module *Container
}

func (p *parser) parse() (*Container, error) {
	p.module = NewModule()
	if err := p.parseBlock(p.module, ""); err != nil {
		return nil, err
	}
	return p.module, nil
}

// next returns the next meaningful token, discarding comments. ok is false
// at end of input.
func (p *parser) next() (token.Token, bool, error) {
	for {
		tok, err := p.lx.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return token.Token{}, false, nil
			}
			var lexErr *lexer.Error
			if errors.As(err, &lexErr) {
				return token.Token{}, false, &LexerError{
					Msg:     lexErr.Msg,
					Pos:     lexErr.Pos,
					Line:    lexErr.Line,
					Column:  lexErr.Col,
					Context: lexErr.Context,
				}
			}
			return token.Token{}, false, err
		}
		if tok.IsComment(p.g) {
			continue
		}
		return tok, true, nil
	}
}

func (p *parser) errorf(tok token.Token, msg string) error {
	return &ParseError{Msg: msg, Line: tok.Line, Column: tok.Col, Token: tok.Text}
}

// parseBlock parses assignments and aggregations until the end keyword (for
// a group or object body), the end-of-module keyword, or end of input. For
// the module itself endKeyword is empty and the end-of-module keyword (or
// EOF) terminates the block.
func (p *parser) parseBlock(c *Container, endKeyword string) error {
	for {
		tok, ok, err := p.next()
		if err != nil {
			return err
		}
		if !ok {
			if endKeyword != "" {
				return &ParseError{Msg: "unterminated aggregation, expected " + endKeyword}
			}
			return nil
		}
		switch {
		case endKeyword != "" && tok.EndsAggregation(p.g):
			if !tok.Is(endKeyword) {
				return p.errorf(tok, "mismatched aggregation end, expected "+endKeyword)
			}
			p.lx.PushBack(tok)
			return nil
		case endKeyword == "" && tok.EndsModule(p.g):
			// Everything after the end keyword is outside the module, so
			// trailing delimiters, comments or data are left unread.
			return nil
		case tok.BeginsAggregation(p.g):
			if err := p.parseAggregation(c, tok); err != nil {
				return err
			}
		default:
			if err := p.parseAssignment(c, tok); err != nil {
				return err
			}
		}
	}
}

// parseAggregation parses one group or object block, beginTok being its
// begin keyword.
func (p *parser) parseAggregation(c *Container, beginTok token.Token) error {
	endKeyword, isGroup, _ := p.g.AggregationEnd(beginTok.Text)

	if err := p.expectEquals(beginTok); err != nil {
		return err
	}
	nameTok, ok, err := p.next()
	if err != nil {
		return err
	}
	if !ok {
		return p.errorf(beginTok, "missing aggregation name")
	}
	name, ok := p.blockName(nameTok)
	if !ok {
		return p.errorf(nameTok, "invalid aggregation name")
	}
	if err := p.consumeStatementDelim(); err != nil {
		return err
	}

	block := NewGroup()
	if !isGroup {
		block = NewObject()
	}
	if err := p.parseBlock(block, endKeyword); err != nil {
		return err
	}

	// The end keyword was pushed back by parseBlock.
	endTok, _, err := p.next()
	if err != nil {
		return err
	}
	if err := p.parseEndAggregation(endTok, name); err != nil {
		return err
	}
	c.Append(name, block)
	return nil
}

// parseEndAggregation consumes an optional "= Name" after the end keyword,
// requiring a case-insensitive match with the begin name, plus an optional
// trailing statement delimiter.
func (p *parser) parseEndAggregation(endTok token.Token, name string) error {
	tok, ok, err := p.next()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if tok.Text != "=" {
		if !tok.EndsStatement(p.g) {
			p.lx.PushBack(tok)
		}
		return nil
	}
	nameTok, ok, err := p.next()
	if err != nil {
		return err
	}
	if !ok {
		return p.errorf(endTok, "missing name after "+endTok.Text+" =")
	}
	endName, valid := p.blockName(nameTok)
	if !valid || !strings.EqualFold(endName, name) {
		return p.errorf(nameTok, "aggregation name mismatch, block began as "+name)
	}
	return p.consumeStatementDelim()
}

func (p *parser) blockName(tok token.Token) (string, bool) {
	if tok.IsQuotedString(p.g) {
		return p.dec.decodeQuoted(tok.Text), true
	}
	if tok.IsParameterName(p.g) {
		return tok.Text, true
	}
	return "", false
}

// parseAssignment parses Name = Value with an optional trailing statement
// delimiter. Under the lenient policy a missing value becomes an EmptyValue
// placeholder and the line is recorded on the module.
func (p *parser) parseAssignment(c *Container, nameTok token.Token) error {
	name, ok := p.blockName(nameTok)
	if !ok {
		return p.errorf(nameTok, "expected parameter name")
	}
	if err := p.expectEquals(nameTok); err != nil {
		return err
	}

	missing, err := p.valueMissing()
	if err != nil {
		return err
	}
	if missing {
		if !p.lenient {
			return p.errorf(nameTok, "missing value for "+name)
		}
		c.Append(name, EmptyValue{Line: nameTok.Line})
		p.module.recordRecovered(nameTok.Line)
		return p.consumeStatementDelim()
	}

	tok, _, err := p.next()
	if err != nil {
		return err
	}
	value, err := p.parseValue(tok)
	if err != nil {
		return err
	}
	c.Append(name, value)
	return p.consumeStatementDelim()
}

func (p *parser) expectEquals(at token.Token) error {
	tok, ok, err := p.next()
	if err != nil {
		return err
	}
	if !ok {
		return p.errorf(at, "expected = after "+at.Text)
	}
	if tok.Text != "=" {
		return p.errorf(tok, "expected = after "+at.Text)
	}
	return nil
}

// valueMissing looks ahead to decide whether the assignment under way has
// no value: the next token already belongs to the following statement, ends
// the enclosing block, or is absent altogether. Examined tokens are pushed
// back untouched.
func (p *parser) valueMissing() (bool, error) {
	tok, ok, err := p.next()
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	if tok.Text == "=" || tok.EndsStatement(p.g) ||
		tok.EndsModule(p.g) || tok.EndsAggregation(p.g) || tok.BeginsAggregation(p.g) {
		p.lx.PushBack(tok)
		return true, nil
	}
	// A bare candidate immediately followed by '=' is really the next
	// statement's name.
	if !tok.IsReservedSymbol(p.g) {
		tok2, ok2, err := p.next()
		if err != nil {
			return false, err
		}
		if ok2 {
			p.lx.PushBack(tok2)
		}
		if ok2 && tok2.Text == "=" && tok.IsParameterName(p.g) {
			p.lx.PushBack(tok)
			return true, nil
		}
	}
	p.lx.PushBack(tok)
	return false, nil
}

// parseValue parses a simple value, set or sequence starting at tok, plus
// an optional trailing units expression.
func (p *parser) parseValue(tok token.Token) (any, error) {
	var value any
	switch tok.Text {
	case p.g.SequenceDelims[0]:
		seq, err := p.parseCollection(p.g.SequenceDelims[1])
		if err != nil {
			return nil, err
		}
		value = seq
	case p.g.SetDelims[0]:
		elems, err := p.parseCollection(p.g.SetDelims[1])
		if err != nil {
			return nil, err
		}
		value = NewSet(elems...)
	default:
		if tok.IsReservedSymbol(p.g) || tok.BeginsAggregation(p.g) ||
			tok.EndsAggregation(p.g) || tok.EndsModule(p.g) {
			return nil, p.errorf(tok, "expected a value")
		}
		v, err := p.dec.decodeSimple(tok.Text)
		if err != nil {
			return nil, p.errorf(tok, err.Error())
		}
		value = v
	}
	return p.parseUnits(value)
}

// parseUnits attaches a units expression to value if one follows.
func (p *parser) parseUnits(value any) (any, error) {
	tok, ok, err := p.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return value, nil
	}
	if !tok.IsUnits(p.g) {
		p.lx.PushBack(tok)
		return value, nil
	}
	units, err := p.dec.decodeUnits(tok.Text)
	if err != nil {
		return nil, p.errorf(tok, err.Error())
	}
	return Quantity{Value: value, Units: units}, nil
}

// parseCollection parses comma-separated values until the closing
// delimiter. The opening delimiter is already consumed.
func (p *parser) parseCollection(closing string) ([]any, error) {
	var elems []any
	for {
		tok, ok, err := p.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &ParseError{Msg: "unterminated collection, expected " + closing}
		}
		if tok.Text == closing && len(elems) == 0 {
			return elems, nil
		}
		v, err := p.parseValue(tok)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)

		sep, ok, err := p.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &ParseError{Msg: "unterminated collection, expected " + closing}
		}
		switch sep.Text {
		case closing:
			return elems, nil
		case ",":
			continue
		default:
			return nil, p.errorf(sep, "expected , or "+closing)
		}
	}
}

// consumeStatementDelim eats one optional statement delimiter.
func (p *parser) consumeStatementDelim() error {
	tok, ok, err := p.next()
	if err != nil {
		return err
	}
	if ok && !tok.EndsStatement(p.g) {
		p.lx.PushBack(tok)
	}
	return nil
}
