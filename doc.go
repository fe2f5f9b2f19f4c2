/*
Package pvl parses and serializes the Parameter Value Language family used
for metadata labels on scientific data products: PVL itself plus the ODL,
PDS3 and ISIS dialects.

The result of parsing is a *Container, an ordered sequence of (key, value)
pairs in which keys may repeat. Values are decoded to Go types (int64,
float64, string, Date, Time, DateTime, sequences, sets, nested containers,
Quantity) and the same container serializes back to text.

Reading a label:

	m, err := pvl.Parse(data)
	if err != nil {
		// handle *pvl.LexerError / *pvl.ParseError
	}
	lines, err := m.Get("LINES")

The default Omni dialect reads the union of the dialect family leniently:
assignments with missing values are recorded as EmptyValue placeholders and
their line numbers collected on the module, so almost-valid legacy labels
load with diagnostics instead of failing:

	m, _ := pvl.Parse(data)
	if lines := m.Errors(); len(lines) > 0 {
		// input was not fully well-formed
	}

Strict parsing under a specific dialect fails fast instead:

	m, err := pvl.Parse(data, pvl.WithDialect(pvl.PDS3))

Encoding picks a target dialect; a value that the dialect cannot legally
re-read (a set under PDS3, a leap second under ODL) is rejected with an
*EncodeError rather than approximated:

	out, err := pvl.Encode(m, pvl.WithDialect(pvl.ODL))

Containers can also be built programmatically:

	m := pvl.NewModule()
	m.Append("MISSION", "CASSINI")
	g := pvl.NewGroup()
	g.Append("EXPOSURE", pvl.Quantity{Value: int64(12), Units: "s"})
	m.Append("IMAGE", g)
*/
package pvl
