package pvl

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"github.com/planetarypy/go-pvl/internal/grammar"
)

// valueDecoder converts token text into typed values. Classification is
// attempted in a fixed priority order: quoted string, non-decimal radix
// integer, decimal number, date/time, boolean, null, and finally the raw
// text as a bare string. Dialect differences are plain policy fields.
type valueDecoder struct {
	g *grammar.Grammar

	// foldStrings removes line continuations and collapses interior
	// whitespace runs in quoted strings. Strict PVL preserves strings
	// byte for byte apart from escapes.
	foldStrings bool

	// numericTZ accepts numeric timezone offsets such as +7 or -07.
	// PDS3 requires UTC and lets such candidates fall through to strings.
	numericTZ bool

	// decimalReals decodes real literals into *apd.Decimal instead of
	// float64, preserving the written digits exactly.
	decimalReals bool
}

var (
	decimalIntPat   = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalRealPat  = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
	anySignRadixPat = regexp.MustCompile(`^([+-]?)(2|8|16)#([+-]?)([0-9A-Fa-f]*)#$`)

	datePat    = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	doyDatePat = regexp.MustCompile(`^(\d{4})-(\d{3})$`)
	timePat    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2})(\.\d+)?)?([Zz]|[+-]\d{1,2})?$`)

	continuationPat = regexp.MustCompile(`-\r?\n[ \t\v\f]*`)
	whitespaceRun   = regexp.MustCompile(`[ \t\v\f\r\n]+`)
)

// decodeSimple classifies and converts one token's text. The returned error
// is non-nil only for text that is unmistakably a radix literal with
// malformed digits; every other failed classification falls through to the
// next candidate, ending at the bare string.
func (d *valueDecoder) decodeSimple(text string) (any, error) {
	if first, _ := utf8.DecodeRuneInString(text); d.g.IsQuote(first) {
		return d.decodeQuoted(text), nil
	}
	if d.g.NonDecimal.MatchString(text) {
		return d.decodeNonDecimal(text)
	}
	if d.g.NonDecimalStart.MatchString(text) {
		return nil, fmt.Errorf("malformed non-decimal literal %q", text)
	}
	if decimalIntPat.MatchString(text) {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
	}
	if decimalRealPat.MatchString(text) {
		if v, ok := d.decodeReal(text); ok {
			return v, nil
		}
	}
	if v, ok := d.decodeDateTime(text); ok {
		return v, nil
	}
	if matchKeyword(text, d.g.TrueKeywords) {
		return true, nil
	}
	if matchKeyword(text, d.g.FalseKeywords) {
		return false, nil
	}
	if matchKeyword(text, d.g.NullKeywords) {
		return nil, nil
	}
	return text, nil
}

func matchKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.EqualFold(text, kw) {
			return true
		}
	}
	return false
}

// decodeQuoted strips the quote pair, applies the escape table when the
// grammar supports escapes, and folds line continuations and whitespace
// runs under folding dialects.
func (d *valueDecoder) decodeQuoted(text string) string {
	_, first := utf8.DecodeRuneInString(text)
	_, last := utf8.DecodeLastRuneInString(text)
	s := text[first : len(text)-last]

	if d.foldStrings {
		s = continuationPat.ReplaceAllString(s, "")
		s = whitespaceRun.ReplaceAllString(s, " ")
		s = strings.TrimSpace(s)
	}
	if d.g.Escapes {
		s = unescape(s)
	}
	return s
}

// unescape applies the fixed table of formatting escapes. An unknown escape
// keeps its backslash.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
			} else {
				b.WriteRune(r)
			}
			continue
		}
		escaped = false
		switch r {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"', '\'':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String()
}

// decodeNonDecimal interprets a radix literal such as -16#98EF# or
// 16#-98EF#. The grammar has already vouched for the sign position; digits
// outside the stated radix are a hard error, not a fall-through.
func (d *valueDecoder) decodeNonDecimal(text string) (any, error) {
	m := anySignRadixPat.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("malformed non-decimal literal %q", text)
	}
	sign, radixDigits, innerSign, digits := m[1], m[2], m[3], m[4]
	if sign != "" && innerSign != "" {
		return nil, fmt.Errorf("two signs in non-decimal literal %q", text)
	}
	if sign == "" {
		sign = innerSign
	}
	radix, _ := strconv.Atoi(radixDigits)
	n, err := strconv.ParseUint(digits, radix, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid base-%d digits in %q", radix, text)
	}
	if n > math.MaxInt64 {
		// One extra magnitude step exists on the negative side.
		if sign == "-" && n == uint64(math.MaxInt64)+1 {
			return int64(math.MinInt64), nil
		}
		return nil, fmt.Errorf("base-%d value out of range in %q", radix, text)
	}
	v := int64(n)
	if sign == "-" {
		v = -v
	}
	return v, nil
}

func (d *valueDecoder) decodeReal(text string) (any, bool) {
	if d.decimalReals {
		dec, _, err := apd.NewFromString(text)
		if err != nil {
			return nil, false
		}
		return dec, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

// decodeDateTime recognizes month-day and day-of-year dates, times of day
// with optional fractional seconds and timezone suffix, and combined
// date/time values joined by 'T'. Unparseable candidates report !ok and
// fall through to the remaining classifications.
func (d *valueDecoder) decodeDateTime(text string) (any, bool) {
	if date, ok := d.decodeDate(text); ok {
		return date, true
	}
	if t, ok := d.decodeTime(text); ok {
		return t, true
	}
	if i := strings.IndexAny(text, "Tt"); i > 0 {
		date, ok := d.decodeDate(text[:i])
		if !ok {
			return nil, false
		}
		t, ok := d.decodeTime(text[i+1:])
		if !ok {
			return nil, false
		}
		return DateTime{Date: date, Time: t}, true
	}
	return nil, false
}

func (d *valueDecoder) decodeDate(text string) (Date, bool) {
	if m := datePat.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 {
			return Date{}, false
		}
		// Round-trip through time.Date to reject days like February 30.
		norm := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if norm.Year() != year || norm.Month() != time.Month(month) || norm.Day() != day {
			return Date{}, false
		}
		return Date{Year: year, Month: time.Month(month), Day: day}, true
	}
	if m := doyDatePat.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		doy, _ := strconv.Atoi(m[2])
		if doy < 1 || doy > 366 {
			return Date{}, false
		}
		norm := time.Date(year, time.January, doy, 0, 0, 0, 0, time.UTC)
		if norm.Year() != year {
			return Date{}, false
		}
		return Date{Year: year, Month: norm.Month(), Day: norm.Day()}, true
	}
	return Date{}, false
}

func (d *valueDecoder) decodeTime(text string) (Time, bool) {
	m := timePat.FindStringSubmatch(text)
	if m == nil {
		return Time{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return Time{}, false
	}
	t := Time{Hour: hour, Minute: minute}
	if m[3] != "" {
		t.Second, _ = strconv.Atoi(m[3])
		// Second 60 is a leap second: accepted only through the grammar's
		// dedicated pattern and preserved exactly as given.
		if t.Second > 59 && !d.g.LeapSecond.MatchString(text) {
			return Time{}, false
		}
		if t.Second > 60 {
			return Time{}, false
		}
	}
	if m[4] != "" {
		frac, err := strconv.ParseFloat("0"+m[4], 64)
		if err != nil {
			return Time{}, false
		}
		t.Nanosecond = int(frac*1e9 + 0.5)
	}
	switch zone := m[5]; {
	case zone == "":
	case zone == "Z" || zone == "z":
		utc := 0
		t.Zone = &utc
	default:
		if !d.numericTZ {
			return Time{}, false
		}
		hours, err := strconv.Atoi(zone)
		if err != nil || hours < -12 || hours > 14 {
			return Time{}, false
		}
		t.Zone = &hours
	}
	return t, true
}

// decodeUnits extracts the unit string from a complete units expression,
// delimiters included. A nested opening delimiter is a decode error.
func (d *valueDecoder) decodeUnits(text string) (string, error) {
	open, clos := d.g.UnitsDelims[0], d.g.UnitsDelims[1]
	body := strings.TrimSuffix(strings.TrimPrefix(text, open), clos)
	if strings.Contains(body, open) {
		return "", fmt.Errorf("nested %q in units expression %q", open, text)
	}
	return strings.TrimSpace(body), nil
}
