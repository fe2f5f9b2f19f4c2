package pvl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pvl "github.com/planetarypy/go-pvl"
)

func FuzzParse(f *testing.F) {
	// Seed the corpus with the labels from the testdata directory so the
	// fuzzer starts from valid syntax.
	seedFiles, err := filepath.Glob("testdata/*.pvl")
	if err != nil {
		f.Fatalf("failed to find seed files: %v", err)
	}
	for _, file := range seedFiles {
		data, err := os.ReadFile(file)
		if err != nil {
			f.Fatalf("failed to read seed file %s: %v", file, err)
		}
		f.Add(data)
	}

	// A few important shapes on top of the file corpus.
	f.Add([]byte("a = 1\nEND\n"))
	f.Add([]byte("a = (1, {2, 3}) <m>\nEND\n"))
	f.Add([]byte("t = 2001-027T23:59:60.5+7\nEND\n"))
	f.Add([]byte("n = -16#98ef#"))
	f.Add([]byte("s = \"fold-\n  ed\""))
	f.Add([]byte("GROUP = g\nOBJECT = o\nEND_OBJECT\nEND_GROUP = g\nEND"))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Invalid input is expected; the fuzz engine is hunting panics.
		m, err := pvl.Parse(data)
		if err != nil {
			return
		}

		// Omni accepts characters the PVL writer legitimately refuses to
		// emit, so an encode error is acceptable; an encode panic is not.
		out, err := pvl.Encode(m)
		if err != nil {
			return
		}

		// Our own output must always parse back.
		again, err := pvl.Parse(out)
		require.NoError(t, err, "failed to re-parse encoder output")

		// Recovered inputs hold EmptyValue placeholders, which serialize as
		// empty strings and legitimately read back differently.
		if len(m.Errors()) == 0 {
			require.True(t, m.Equal(again), "container changed across an encode/parse round trip")
		}
	})
}
