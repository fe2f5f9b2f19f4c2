package pvl_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	pvl "github.com/planetarypy/go-pvl"
)

// containerCmp compares containers structurally so cmp.Diff can be used on
// values holding unexported fields.
var containerCmp = cmp.Options{
	cmp.Comparer(func(a, b *pvl.Container) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b *apd.Decimal) bool { return a.Cmp(b) == 0 }),
}

// roundTripModule builds a module using only values every target dialect
// can carry.
func roundTripModule() *pvl.Container {
	inner := pvl.NewGroup()
	inner.Append("SAMPLES", int64(1024))
	inner.Append("RATIO", 1.5)

	obj := pvl.NewObject()
	obj.Append("NAME", "two words")
	obj.Append("WINDOW", []any{int64(1), int64(2), int64(3)})

	m := pvl.NewModule()
	m.Append("MISSION", "CASSINI")
	m.Append("DATE", pvl.Date{Year: 2001, Month: 1, Day: 27})
	m.Append("EXPOSURE", pvl.Quantity{Value: 12.5, Units: "s"})
	m.Append("BANDS", inner)
	m.Append("IMAGE", obj)
	return m
}

func TestRoundTrip(t *testing.T) {
	utc := 0

	for _, d := range []pvl.Dialect{pvl.Omni, pvl.PVL, pvl.ODL, pvl.PDS3, pvl.ISIS} {
		t.Run(d.String(), func(t *testing.T) {
			m := roundTripModule()
			m.Append("START", pvl.DateTime{
				Date: pvl.Date{Year: 2001, Month: 1, Day: 1},
				Time: pvl.Time{Hour: 12, Minute: 34, Second: 56, Zone: &utc},
			})
			if d == pvl.Omni || d == pvl.PVL {
				m.Append("VALID", true)
				m.Append("MISSING", nil)
			}
			if d != pvl.PDS3 {
				m.Append("CHANNELS", pvl.NewSet(int64(1), int64(2)))
			}

			out, err := pvl.Encode(m, pvl.WithDialect(d))
			require.NoError(t, err)

			got, err := pvl.Parse(out, pvl.WithDialect(d))
			require.NoError(t, err)
			require.Empty(t, got.Errors())
			if diff := cmp.Diff(m, got, containerCmp); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTripLeapSecond(t *testing.T) {
	m := pvl.NewModule()
	m.Append("UTC_EVENT", pvl.Time{Hour: 23, Minute: 59, Second: 60})

	out, err := pvl.Encode(m, pvl.WithDialect(pvl.PVL))
	require.NoError(t, err)

	got, err := pvl.Parse(out, pvl.WithDialect(pvl.PVL))
	require.NoError(t, err)
	require.True(t, m.Equal(got))
}

func TestEncodeIdempotent(t *testing.T) {
	m := roundTripModule()

	for _, d := range []pvl.Dialect{pvl.PVL, pvl.ODL, pvl.PDS3, pvl.ISIS} {
		t.Run(d.String(), func(t *testing.T) {
			once, err := pvl.EncodeString(m, pvl.WithDialect(d))
			require.NoError(t, err)

			reparsed, err := pvl.ParseString(once, pvl.WithDialect(d))
			require.NoError(t, err)

			twice, err := pvl.EncodeString(reparsed, pvl.WithDialect(d))
			require.NoError(t, err)
			require.Equal(t, once, twice)
		})
	}
}

func TestRoundTripDecimalReals(t *testing.T) {
	src := "RATIO = 0.10\nEND\n"

	m, err := pvl.ParseString(src, pvl.WithDecimalReals())
	require.NoError(t, err)

	v, err := m.Get("RATIO")
	require.NoError(t, err)
	d, ok := v.(*apd.Decimal)
	require.True(t, ok)
	require.Equal(t, "0.10", d.Text('f'))

	out, err := pvl.EncodeString(m)
	require.NoError(t, err)

	got, err := pvl.ParseString(out, pvl.WithDecimalReals())
	require.NoError(t, err)
	require.True(t, m.Equal(got))
}

func TestDecoderEncoder(t *testing.T) {
	m, err := pvl.NewDecoder(strings.NewReader("a = 1\nEND\n")).Decode()
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())

	var buf bytes.Buffer
	err = pvl.NewEncoder(&buf, pvl.WithDialect(pvl.PVL)).Encode(m)
	require.NoError(t, err)
	require.Equal(t, "a = 1;\nEND;\n", buf.String())
}

func TestParseDialect(t *testing.T) {
	for _, name := range []string{"omni", "PVL", "Odl", "pds3", "isis"} {
		_, err := pvl.ParseDialect(name)
		require.NoError(t, err, name)
	}
	_, err := pvl.ParseDialect("json")
	require.Error(t, err)
}

func TestOptionValidation(t *testing.T) {
	_, err := pvl.ParseString("", pvl.WithDialect(pvl.Dialect(99)))
	require.Error(t, err)

	_, err = pvl.EncodeString(pvl.NewModule(), pvl.WithIndent(-1))
	require.Error(t, err)
}
