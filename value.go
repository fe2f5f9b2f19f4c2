package pvl

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// A decoded PVL value is one of:
//
//	nil                    the null literal
//	bool                   a boolean literal
//	int64                  a decimal or radix integer
//	float64                a real number
//	*apd.Decimal           a real number under WithDecimalReals
//	string                 a quoted or bare string
//	Date, Time, DateTime   calendar values
//	[]any                  a sequence
//	Set                    an unordered, duplicate-free collection
//	*Container             a nested group or object
//	Quantity               a value paired with a units expression
//	EmptyValue             a placeholder recorded by lenient parsing

// Date is a calendar date. Day-of-year input is normalized to month and
// day when it is decoded.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time is a time of day. Second may be 60: leap seconds are preserved as
// given, never clamped or rolled into the next minute, which is why this is
// a plain field struct rather than a time.Time.
//
// Zone is the UTC offset in whole hours; nil means no zone was given and 0
// means UTC (serialized as "Z").
type Time struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
	Zone       *int
}

func (t Time) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Nanosecond != 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", t.Nanosecond), "0")
		b.WriteByte('.')
		b.WriteString(frac)
	}
	if t.Zone != nil {
		if *t.Zone == 0 {
			b.WriteByte('Z')
		} else {
			fmt.Fprintf(&b, "%+03d", *t.Zone)
		}
	}
	return b.String()
}

// DateTime is a calendar date with a time of day.
type DateTime struct {
	Date Date
	Time Time
}

func (dt DateTime) String() string {
	return dt.Date.String() + "T" + dt.Time.String()
}

// Quantity pairs a value with its unit of measure. The inner value is never
// itself a Quantity.
type Quantity struct {
	Value any
	Units string
}

func (q Quantity) String() string {
	return fmt.Sprintf("%v <%s>", q.Value, q.Units)
}

// Set is an unordered, duplicate-free collection of values. Order is not
// significant for equality but insertion order is retained for stable
// serialization.
type Set []any

// NewSet builds a Set from values, dropping structural duplicates.
func NewSet(values ...any) Set {
	var s Set
	for _, v := range values {
		s = s.Add(v)
	}
	return s
}

// Add returns s with v added, unless a structurally equal member exists.
func (s Set) Add(v any) Set {
	if s.Has(v) {
		return s
	}
	return append(s, v)
}

// Has reports whether a structurally equal member exists.
func (s Set) Has(v any) bool {
	for _, m := range s {
		if valueEqual(m, v) {
			return true
		}
	}
	return false
}

// Equal reports whether two sets have the same members, ignoring order.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for _, m := range s {
		if !other.Has(m) {
			return false
		}
	}
	return true
}

// EmptyValue is the placeholder a lenient parse records for an assignment
// with a missing value. Line is the 1-based source line of the assignment.
type EmptyValue struct {
	Line int
}

func (e EmptyValue) String() string { return "" }

// valueEqual is structural equality over the value union. Numeric values of
// different Go types (int64 vs float64 vs *apd.Decimal) are not equal.
func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case *apd.Decimal:
		bv, ok := b.(*apd.Decimal)
		return ok && av.Cmp(bv) == 0
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case Date:
		bv, ok := b.(Date)
		return ok && av == bv
	case Time:
		bv, ok := b.(Time)
		return ok && timeEqual(av, bv)
	case DateTime:
		bv, ok := b.(DateTime)
		return ok && av.Date == bv.Date && timeEqual(av.Time, bv.Time)
	case Quantity:
		bv, ok := b.(Quantity)
		return ok && av.Units == bv.Units && valueEqual(av.Value, bv.Value)
	case Set:
		bv, ok := b.(Set)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Container:
		bv, ok := b.(*Container)
		return ok && av.Equal(bv)
	case EmptyValue:
		bv, ok := b.(EmptyValue)
		return ok && av == bv
	}
	return false
}

func timeEqual(a, b Time) bool {
	if a.Hour != b.Hour || a.Minute != b.Minute || a.Second != b.Second || a.Nanosecond != b.Nanosecond {
		return false
	}
	if (a.Zone == nil) != (b.Zone == nil) {
		return false
	}
	return a.Zone == nil || *a.Zone == *b.Zone
}
