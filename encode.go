package pvl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/planetarypy/go-pvl/internal/grammar"
)

// encoderRules is the per-dialect serialization table: keyword casing,
// end-name repetition, spacing, and which in-memory values the dialect may
// legally carry. A value is rejected exactly when re-parsing the dialect's
// own output would not reproduce it.
type encoderRules struct {
	g *grammar.Grammar

	groupBegin  string
	groupEnd    string
	objectBegin string
	objectEnd   string

	endStatement string
	assign       string
	indent       string
	newline      string
	stmtDelim    string

	repeatEndName bool

	trueLit  string // empty means the dialect has no boolean literals
	falseLit string
	nullLit  string

	allowSets       bool
	allowNumericTZ  bool
	allowLeapSecond bool
	foldStrings     bool // the dialect's own parser folds quoted strings
}

var pvlRules = encoderRules{
	g:               grammar.PVL,
	groupBegin:      "BEGIN_GROUP",
	groupEnd:        "END_GROUP",
	objectBegin:     "BEGIN_OBJECT",
	objectEnd:       "END_OBJECT",
	endStatement:    "END",
	assign:          " = ",
	indent:          "  ",
	newline:         "\n",
	stmtDelim:       ";",
	repeatEndName:   true,
	trueLit:         "TRUE",
	falseLit:        "FALSE",
	nullLit:         "NULL",
	allowSets:       true,
	allowNumericTZ:  true,
	allowLeapSecond: true,
}

var odlRules = encoderRules{
	g:              grammar.ODL,
	groupBegin:     "GROUP",
	groupEnd:       "END_GROUP",
	objectBegin:    "OBJECT",
	objectEnd:      "END_OBJECT",
	endStatement:   "END",
	assign:         " = ",
	indent:         "  ",
	newline:        "\r\n",
	repeatEndName:  true,
	allowSets:      true,
	allowNumericTZ: true,
	foldStrings:    true,
}

var pds3Rules = encoderRules{
	g:             grammar.PDS3,
	groupBegin:    "GROUP",
	groupEnd:      "END_GROUP",
	objectBegin:   "OBJECT",
	objectEnd:     "END_OBJECT",
	endStatement:  "END",
	assign:        " = ",
	indent:        "  ",
	newline:       "\r\n",
	repeatEndName: true,
	foldStrings:   true,
}

var isisRules = encoderRules{
	g:              grammar.ISIS,
	groupBegin:     "Group",
	groupEnd:       "End_Group",
	objectBegin:    "Object",
	objectEnd:      "End_Object",
	endStatement:   "End",
	assign:         " = ",
	indent:         "  ",
	newline:        "\n",
	allowSets:      true,
	allowNumericTZ: true,
	foldStrings:    true,
}

// textEncoder walks a container and renders it under one dialect's rules.
type textEncoder struct {
	rules encoderRules
	// dec reclassifies candidate bare strings under the target dialect;
	// anything that would be misread on re-parse gets quoted.
	dec   *valueDecoder
	b     strings.Builder
	depth int
}

func newTextEncoder(rules encoderRules) *textEncoder {
	return &textEncoder{
		rules: rules,
		dec: &valueDecoder{
			g:           rules.g,
			foldStrings: rules.foldStrings,
			numericTZ:   rules.allowNumericTZ,
		},
	}
}

func (e *textEncoder) encodeModule(m *Container) error {
	for _, entry := range m.Entries() {
		if err := e.encodeEntry(entry); err != nil {
			return err
		}
	}
	e.b.WriteString(e.rules.endStatement)
	e.b.WriteString(e.rules.stmtDelim)
	e.b.WriteString(e.rules.newline)
	return nil
}

func (e *textEncoder) writeIndent() {
	for range e.depth {
		e.b.WriteString(e.rules.indent)
	}
}

func (e *textEncoder) encodeEntry(entry Entry) error {
	key, err := e.encodeName(entry.Key)
	if err != nil {
		return err
	}
	if c, ok := entry.Value.(*Container); ok {
		return e.encodeAggregation(key, c)
	}
	v, err := e.encodeValue(entry.Value)
	if err != nil {
		return err
	}
	e.writeIndent()
	e.b.WriteString(key)
	e.b.WriteString(e.rules.assign)
	e.b.WriteString(v)
	e.b.WriteString(e.rules.stmtDelim)
	e.b.WriteString(e.rules.newline)
	return nil
}

func (e *textEncoder) encodeAggregation(key string, c *Container) error {
	begin, end := e.rules.objectBegin, e.rules.objectEnd
	if c.Role() == RoleGroup {
		begin, end = e.rules.groupBegin, e.rules.groupEnd
	}
	e.writeIndent()
	e.b.WriteString(begin)
	e.b.WriteString(e.rules.assign)
	e.b.WriteString(key)
	e.b.WriteString(e.rules.stmtDelim)
	e.b.WriteString(e.rules.newline)

	e.depth++
	for _, entry := range c.Entries() {
		if err := e.encodeEntry(entry); err != nil {
			return err
		}
	}
	e.depth--

	e.writeIndent()
	e.b.WriteString(end)
	if e.rules.repeatEndName {
		e.b.WriteString(e.rules.assign)
		e.b.WriteString(key)
	}
	e.b.WriteString(e.rules.stmtDelim)
	e.b.WriteString(e.rules.newline)
	return nil
}

// encodeName renders a parameter or aggregation name, quoting it when it
// would not survive re-parsing as a bare name.
func (e *textEncoder) encodeName(name string) (string, error) {
	if name == "" {
		return "", &EncodeError{Msg: "empty parameter name"}
	}
	bare := !e.rules.g.ReservedKeyword(name)
	for _, r := range name {
		if !e.rules.g.CharAllowed(r) {
			return "", &EncodeError{Msg: fmt.Sprintf("name %q contains a character illegal in this dialect", name)}
		}
		if e.rules.g.IsReserved(r) || e.rules.g.IsWhitespace(r) {
			bare = false
		}
	}
	if bare {
		return name, nil
	}
	return e.quoteString(name)
}

func (e *textEncoder) encodeValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		if e.rules.nullLit == "" {
			return "", &EncodeError{Msg: "dialect has no null literal"}
		}
		return e.rules.nullLit, nil
	case bool:
		lit := e.rules.falseLit
		if val {
			lit = e.rules.trueLit
		}
		if lit == "" {
			return "", &EncodeError{Msg: "dialect has no boolean literals", Value: v}
		}
		return lit, nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case float64:
		return encodeFloat(val)
	case *apd.Decimal:
		return encodeDecimal(val)
	case string:
		return e.encodeString(val)
	case Date:
		return val.String(), nil
	case Time:
		if err := e.checkTime(val); err != nil {
			return "", err
		}
		return val.String(), nil
	case DateTime:
		if err := e.checkTime(val.Time); err != nil {
			return "", err
		}
		return val.String(), nil
	case Quantity:
		return e.encodeQuantity(val)
	case Set:
		if !e.rules.allowSets {
			return "", &EncodeError{Msg: "dialect does not allow sets", Value: v}
		}
		return e.encodeCollection([]any(val), e.rules.g.SetDelims)
	case []any:
		return e.encodeCollection(val, e.rules.g.SequenceDelims)
	case *Container:
		return "", &EncodeError{Msg: "aggregation in value position", Value: v}
	case EmptyValue:
		// Lenient-parse placeholders serialize as an empty quoted string.
		return e.quoteString("")
	default:
		return "", &EncodeError{Msg: fmt.Sprintf("unsupported value type %T", v), Value: v}
	}
}

func (e *textEncoder) checkTime(t Time) error {
	if t.Second == 60 && !e.rules.allowLeapSecond {
		return &EncodeError{Msg: "dialect cannot represent a leap second", Value: t}
	}
	if t.Zone != nil && *t.Zone != 0 && !e.rules.allowNumericTZ {
		return &EncodeError{Msg: "dialect requires UTC times", Value: t}
	}
	return nil
}

func (e *textEncoder) encodeQuantity(q Quantity) (string, error) {
	if _, ok := q.Value.(Quantity); ok {
		return "", &EncodeError{Msg: "quantity nested in quantity", Value: q}
	}
	inner, err := e.encodeValue(q.Value)
	if err != nil {
		return "", err
	}
	open, clos := e.rules.g.UnitsDelims[0], e.rules.g.UnitsDelims[1]
	if strings.Contains(q.Units, open) || strings.Contains(q.Units, clos) {
		return "", &EncodeError{Msg: "units string contains a units delimiter", Value: q}
	}
	return inner + " " + open + q.Units + clos, nil
}

func (e *textEncoder) encodeCollection(elems []any, delims [2]string) (string, error) {
	parts := make([]string, len(elems))
	for i, elem := range elems {
		s, err := e.encodeValue(elem)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return delims[0] + strings.Join(parts, ", ") + delims[1], nil
}

// encodeString emits s bare when re-parsing would read it back as the same
// string, and quoted otherwise.
func (e *textEncoder) encodeString(s string) (string, error) {
	if e.bareSafe(s) {
		return s, nil
	}
	return e.quoteString(s)
}

// bareSafe reports whether s can be emitted without quotes: it must be
// non-empty, carry no whitespace, reserved character or comment marker, not
// be a grammatical keyword, and not reclassify as a number, date or time.
func (e *textEncoder) bareSafe(s string) bool {
	if s == "" || e.rules.g.ReservedKeyword(s) {
		return false
	}
	for _, r := range s {
		if e.rules.g.IsWhitespace(r) || e.rules.g.IsReserved(r) || !e.rules.g.CharAllowed(r) {
			return false
		}
	}
	for _, c := range e.rules.g.Comments {
		if strings.Contains(s, c.Start) {
			return false
		}
	}
	v, err := e.dec.decodeSimple(s)
	if err != nil {
		return false
	}
	_, isString := v.(string)
	return isString
}

func (e *textEncoder) quoteString(s string) (string, error) {
	for _, r := range s {
		if !e.rules.g.CharAllowed(r) && r != '\n' && r != '\t' {
			return "", &EncodeError{Msg: fmt.Sprintf("string %q contains a character illegal in this dialect", s)}
		}
	}
	if e.rules.g.Escapes {
		// Escapes cover every whitespace character except the space
		// itself, so under a folding reader space runs and edge spaces
		// still cannot be written back faithfully.
		if e.rules.foldStrings && (strings.Contains(s, "  ") ||
			strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ")) {
			return "", &EncodeError{Msg: fmt.Sprintf("string %q does not survive folding in this dialect", s)}
		}
		var b strings.Builder
		b.WriteByte('"')
		for _, r := range s {
			switch r {
			case '\\':
				b.WriteString(`\\`)
			case '"':
				b.WriteString(`\"`)
			case '\n':
				b.WriteString(`\n`)
			case '\t':
				b.WriteString(`\t`)
			case '\f':
				b.WriteString(`\f`)
			case '\v':
				b.WriteString(`\v`)
			case '\r':
				b.WriteString(`\r`)
			default:
				b.WriteRune(r)
			}
		}
		b.WriteByte('"')
		return b.String(), nil
	}

	// No escapes: the dialect's parser folds quoted strings, so anything
	// folding would alter cannot be written without changing its meaning.
	if e.rules.foldStrings {
		if strings.ContainsAny(s, "\n\r\t\v\f") || strings.Contains(s, "  ") ||
			s != strings.TrimSpace(s) {
			return "", &EncodeError{Msg: fmt.Sprintf("string %q does not survive folding in this dialect", s)}
		}
	}
	switch {
	case !strings.Contains(s, `"`):
		return `"` + s + `"`, nil
	case !strings.Contains(s, "'"):
		return "'" + s + "'", nil
	default:
		return "", &EncodeError{Msg: fmt.Sprintf("string %q contains both quote characters and the dialect has no escapes", s)}
	}
}

func encodeFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", &EncodeError{Msg: "cannot represent non-finite real", Value: f}
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

func encodeDecimal(d *apd.Decimal) (string, error) {
	if d.Form != apd.Finite {
		return "", &EncodeError{Msg: "cannot represent non-finite real", Value: d}
	}
	s := d.Text('G')
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}
