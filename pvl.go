package pvl

import (
	"io"
	"strings"

	"github.com/planetarypy/go-pvl/internal/lexer"
)

// Parse reads PVL text into a module. The default dialect is Omni, which
// accepts the union of the dialect family and recovers from assignments
// with missing values; see WithDialect, Strict and Lenient.
//
// Parse fails with *LexerError or *ParseError.
func Parse(data []byte, opts ...Option) (*Container, error) {
	return ParseString(string(data), opts...)
}

// ParseString is Parse for a string source.
func ParseString(src string, opts ...Option) (*Container, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	g := o.dialect.grammar()
	p := &parser{
		lx: lexer.New(src, g),
		g:  g,
		dec: &valueDecoder{
			g:            g,
			foldStrings:  o.dialect.foldStrings(),
			numericTZ:    o.dialect.numericTZ(),
			decimalReals: o.decimalReals,
		},
		lenient: o.isLenient(),
	}
	return p.parse()
}

// Encode renders a container as PVL text under the selected dialect's
// rules (PVL when no dialect is given; Omni encodes as PVL). It fails with
// *EncodeError when the container holds a value the dialect cannot legally
// represent.
func Encode(c *Container, opts ...Option) ([]byte, error) {
	s, err := EncodeString(c, opts...)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// EncodeString is Encode returning a string.
func EncodeString(c *Container, opts ...Option) (string, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return "", err
	}
	rules := o.dialect.rules()
	if o.indentSet {
		rules.indent = strings.Repeat(" ", o.indentWidth)
	}
	e := newTextEncoder(rules)
	if err := e.encodeModule(c); err != nil {
		return "", err
	}
	return e.b.String(), nil
}

// Decoder reads a module from an input stream.
type Decoder struct {
	r    io.Reader
	opts []Option
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode reads the remaining input and parses it as one module.
func (d *Decoder) Decode() (*Container, error) {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return nil, err
	}
	return Parse(data, d.opts...)
}

// Encoder writes modules to an output stream.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the PVL encoding of c.
func (e *Encoder) Encode(c *Container) error {
	data, err := Encode(c, e.opts...)
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}
