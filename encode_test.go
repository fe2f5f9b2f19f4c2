package pvl_test

import (
	"math"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/require"

	pvl "github.com/planetarypy/go-pvl"
)

func single(key string, value any) *pvl.Container {
	m := pvl.NewModule()
	m.Append(key, value)
	return m
}

func TestEncodeValues(t *testing.T) {
	utc := 0
	minus7 := -7

	tests := []struct {
		name  string
		value any
		want  string // the rendered value under PVL rules
	}{
		{"int", int64(5), "5"},
		{"negative int", int64(-5), "-5"},
		{"real", 1.5, "1.5"},
		{"integral real keeps a point", 3.0, "3.0"},
		{"exponent real", 6.626e-34, "6.626e-34"},
		{"decimal real", mustDecimal(t, "0.1"), "0.1"},
		{"integral decimal keeps a point", mustDecimal(t, "3"), "3.0"},
		{"true", true, "TRUE"},
		{"false", false, "FALSE"},
		{"null", nil, "NULL"},
		{"bare string", "CASSINI", "CASSINI"},
		{"spaced string quotes", "two words", `"two words"`},
		{"numeric lookalike quotes", "5", `"5"`},
		{"date lookalike quotes", "2001-01-27", `"2001-01-27"`},
		{"keyword lookalike quotes", "END", `"END"`},
		{"boolean lookalike quotes", "true", `"true"`},
		{"escaped string", "line\nbreak \"q\"", `"line\nbreak \"q\""`},
		{"empty placeholder", pvl.EmptyValue{Line: 3}, `""`},
		{"date", pvl.Date{Year: 2001, Month: 1, Day: 27}, "2001-01-27"},
		{"time utc", pvl.Time{Hour: 1, Minute: 2, Second: 3, Zone: &utc}, "01:02:03Z"},
		{"time offset", pvl.Time{Hour: 1, Minute: 2, Second: 3, Zone: &minus7}, "01:02:03-07"},
		{"leap second", pvl.Time{Hour: 23, Minute: 59, Second: 60}, "23:59:60"},
		{"sequence", []any{int64(1), 2.5, "three"}, `(1, 2.5, "three")`},
		{"set", pvl.NewSet(int64(1), int64(2)), "{1, 2}"},
		{"quantity", pvl.Quantity{Value: int64(300), Units: "m/s"}, "300 <m/s>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pvl.EncodeString(single("v", tt.value))
			require.NoError(t, err)
			require.Equal(t, "v = "+tt.want+";\nEND;\n", got)
		})
	}
}

func mustDecimal(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestEncodeDialectLayout(t *testing.T) {
	inner := pvl.NewGroup()
	inner.Append("x", int64(1))
	m := pvl.NewModule()
	m.Append("a", "val")
	m.Append("g", inner)

	tests := []struct {
		dialect pvl.Dialect
		want    string
	}{
		{
			pvl.PVL,
			"a = val;\n" +
				"BEGIN_GROUP = g;\n" +
				"  x = 1;\n" +
				"END_GROUP = g;\n" +
				"END;\n",
		},
		{
			pvl.ODL,
			"a = val\r\n" +
				"GROUP = g\r\n" +
				"  x = 1\r\n" +
				"END_GROUP = g\r\n" +
				"END\r\n",
		},
		{
			pvl.PDS3,
			"a = val\r\n" +
				"GROUP = g\r\n" +
				"  x = 1\r\n" +
				"END_GROUP = g\r\n" +
				"END\r\n",
		},
		{
			pvl.ISIS,
			"a = val\n" +
				"Group = g\n" +
				"  x = 1\n" +
				"End_Group\n" +
				"End\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			got, err := pvl.EncodeString(m, pvl.WithDialect(tt.dialect))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeOmniUsesPVLRules(t *testing.T) {
	m := single("a", int64(1))
	asOmni, err := pvl.EncodeString(m, pvl.WithDialect(pvl.Omni))
	require.NoError(t, err)
	asPVL, err := pvl.EncodeString(m, pvl.WithDialect(pvl.PVL))
	require.NoError(t, err)
	require.Equal(t, asPVL, asOmni)
}

func TestEncodeObjectBlock(t *testing.T) {
	obj := pvl.NewObject()
	obj.Append("LINES", int64(1024))
	m := pvl.NewModule()
	m.Append("IMAGE", obj)

	got, err := pvl.EncodeString(m, pvl.WithDialect(pvl.PDS3))
	require.NoError(t, err)
	require.Equal(t,
		"OBJECT = IMAGE\r\n"+
			"  LINES = 1024\r\n"+
			"END_OBJECT = IMAGE\r\n"+
			"END\r\n",
		got)
}

func TestEncodeWithIndent(t *testing.T) {
	inner := pvl.NewGroup()
	inner.Append("x", int64(1))
	m := pvl.NewModule()
	m.Append("g", inner)

	got, err := pvl.EncodeString(m, pvl.WithIndent(4))
	require.NoError(t, err)
	require.Equal(t,
		"BEGIN_GROUP = g;\n"+
			"    x = 1;\n"+
			"END_GROUP = g;\n"+
			"END;\n",
		got)
}

func TestEncodeNameQuoting(t *testing.T) {
	got, err := pvl.EncodeString(single("two words", int64(1)))
	require.NoError(t, err)
	require.Equal(t, "\"two words\" = 1;\nEND;\n", got)
}

func TestEncodeDialectRejections(t *testing.T) {
	minus7 := -7
	leap := pvl.Time{Hour: 23, Minute: 59, Second: 60}

	tests := []struct {
		name    string
		value   any
		dialect pvl.Dialect
		msg     string
	}{
		{"boolean under odl", true, pvl.ODL, "no boolean literals"},
		{"null under odl", nil, pvl.ODL, "no null literal"},
		{"set under pds3", pvl.NewSet(int64(1)), pvl.PDS3, "does not allow sets"},
		{"leap second under odl", leap, pvl.ODL, "leap second"},
		{"leap second under pds3", leap, pvl.PDS3, "leap second"},
		{
			"offset time under pds3",
			pvl.Time{Hour: 1, Zone: &minus7},
			pvl.PDS3,
			"requires UTC",
		},
		{
			"folded string under odl",
			"two\nlines",
			pvl.ODL,
			"does not survive folding",
		},
		{
			"both quotes under odl",
			`it's a "quote"`,
			pvl.ODL,
			"both quote characters",
		},
		{
			"nested quantity",
			pvl.Quantity{Value: pvl.Quantity{Value: int64(1), Units: "s"}, Units: "m"},
			pvl.PVL,
			"quantity nested in quantity",
		},
		{
			"units delimiter in units",
			pvl.Quantity{Value: int64(1), Units: "m<s"},
			pvl.PVL,
			"units delimiter",
		},
		{
			"aggregation in value position",
			[]any{pvl.NewGroup()},
			pvl.PVL,
			"aggregation in value position",
		},
		{"unsupported type", complex(1, 2), pvl.PVL, "unsupported value type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pvl.EncodeString(single("v", tt.value), pvl.WithDialect(tt.dialect))
			var encErr *pvl.EncodeError
			require.ErrorAs(t, err, &encErr)
			require.Contains(t, encErr.Msg, tt.msg)
		})
	}
}

func TestEncodeOmniFoldingGuard(t *testing.T) {
	// Omni writes PVL escapes, but its own reader folds quoted strings and
	// the space character has no escape form, so space runs and edge spaces
	// cannot be written back faithfully.
	for _, s := range []string{"a  b", " a", "b "} {
		_, err := pvl.EncodeString(single("v", s), pvl.WithDialect(pvl.Omni))
		var encErr *pvl.EncodeError
		require.ErrorAs(t, err, &encErr, "%q", s)
		require.Contains(t, encErr.Msg, "does not survive folding")
	}

	// Strict PVL reads quoted strings byte for byte, so it still carries
	// them.
	got, err := pvl.EncodeString(single("v", "a  b"), pvl.WithDialect(pvl.PVL))
	require.NoError(t, err)
	require.Equal(t, "v = \"a  b\";\nEND;\n", got)

	// Whitespace with an escape form survives the Omni round trip.
	got, err = pvl.EncodeString(single("v", "a\t\tb"), pvl.WithDialect(pvl.Omni))
	require.NoError(t, err)
	m, err := pvl.ParseString(got)
	require.NoError(t, err)
	v, err := m.Get("v")
	require.NoError(t, err)
	require.Equal(t, "a\t\tb", v)
}

func TestEncodeKeywordsBareUnderODL(t *testing.T) {
	// ODL has no boolean literals, so "TRUE" is an ordinary bare word there
	// while PVL must quote it.
	got, err := pvl.EncodeString(single("v", "TRUE"), pvl.WithDialect(pvl.ODL))
	require.NoError(t, err)
	require.Equal(t, "v = TRUE\r\nEND\r\n", got)
}

func TestEncodeNonFiniteReals(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1)} {
		_, err := pvl.EncodeString(single("v", v))
		var encErr *pvl.EncodeError
		require.ErrorAs(t, err, &encErr)
		require.Contains(t, encErr.Msg, "non-finite")
	}
}
