package lexer_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planetarypy/go-pvl/internal/grammar"
	"github.com/planetarypy/go-pvl/internal/lexer"
)

func collect(t *testing.T, src string, g *grammar.Grammar) []string {
	t.Helper()
	l := lexer.New(src, g)
	var texts []string
	for {
		tok, err := l.Next()
		if errors.Is(err, io.EOF) {
			return texts
		}
		require.NoError(t, err)
		texts = append(texts, tok.Text)
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		src  string
		g    *grammar.Grammar
		want []string
	}{
		{
			name: "assignment",
			src:  "foo = bar",
			g:    grammar.PVL,
			want: []string{"foo", "=", "bar"},
		},
		{
			name: "block comments",
			src:  "/* hi */ a = 1 /*tail*/",
			g:    grammar.PVL,
			want: []string{"/* hi */", "a", "=", "1", "/*tail*/"},
		},
		{
			name: "star shared with opener is not a closer",
			src:  "/*/ inner */",
			g:    grammar.PVL,
			want: []string{"/*/ inner */"},
		},
		{
			name: "line comment",
			src:  "# a hash comment\nfoo = 1",
			g:    grammar.Omni,
			want: []string{"# a hash comment", "foo", "=", "1"},
		},
		{
			name: "signed numbers",
			src:  "-5 +5 .5 1.e3 6.626e+34 1e-9",
			g:    grammar.PVL,
			want: []string{"-5", "+5", ".5", "1.e3", "6.626e+34", "1e-9"},
		},
		{
			name: "radix literals",
			src:  "2#0101# -16#98ef# 8#0107#",
			g:    grammar.PVL,
			want: []string{"2#0101#", "-16#98ef#", "8#0107#"},
		},
		{
			name: "radix literal under hash-comment grammar",
			src:  "a = 2#0101# # trailing",
			g:    grammar.Omni,
			want: []string{"a", "=", "2#0101#", "# trailing"},
		},
		{
			name: "numeric timezone stays attached",
			src:  "01:00:00+7 2001-01-01T12:00-11",
			g:    grammar.Omni,
			want: []string{"01:00:00+7", "2001-01-01T12:00-11"},
		},
		{
			name: "units expression",
			src:  "5 <m/s> 9.8 < m / s**2 >",
			g:    grammar.PVL,
			want: []string{"5", "<m/s>", "9.8", "< m / s**2 >"},
		},
		{
			name: "quoted strings",
			src:  `'single' "with \" escape"`,
			g:    grammar.PVL,
			want: []string{"'single'", `"with \" escape"`},
		},
		{
			name: "no escapes in ODL quotes",
			src:  `"back\slash"`,
			g:    grammar.ODL,
			want: []string{`"back\slash"`},
		},
		{
			name: "reserved single characters",
			src:  "(1, 2) {3}",
			g:    grammar.PVL,
			want: []string{"(", "1", ",", "2", ")", "{", "3", "}"},
		},
		{
			name: "statement delimiter",
			src:  "a = 1; b = 2;",
			g:    grammar.PVL,
			want: []string{"a", "=", "1", ";", "b", "=", "2", ";"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, collect(t, tt.src, tt.g))
		})
	}
}

func TestPositions(t *testing.T) {
	l := lexer.New("a = 1\n  bee = 2", grammar.PVL)

	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, "a", tok.Text)
	require.Equal(t, 1, tok.Line)
	require.Equal(t, 1, tok.Col)
	require.Equal(t, 0, tok.Pos)

	for range 2 { // '=' and '1'
		_, err = l.Next()
		require.NoError(t, err)
	}

	tok, err = l.Next()
	require.NoError(t, err)
	require.Equal(t, "bee", tok.Text)
	require.Equal(t, 2, tok.Line)
	require.Equal(t, 3, tok.Col)
	require.Equal(t, 8, tok.Pos)
}

func TestPushBack(t *testing.T) {
	l := lexer.New("a = 1", grammar.PVL)

	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, "a", tok.Text)

	l.PushBack(tok)
	again, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, tok, again)

	eq, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, "=", eq.Text)

	// LIFO order for multiple pushed tokens.
	l.PushBack(eq)
	l.PushBack(tok)
	first, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, "a", first.Text)
	second, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, "=", second.Text)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		g    *grammar.Grammar
		msg  string
	}{
		{"illegal character", "a = \x01", grammar.PVL, "not allowed"},
		{"non ascii under pvl", "a = café", grammar.PVL, "not allowed"},
		{"unterminated comment", "/* no end", grammar.PVL, "unterminated comment"},
		{"unterminated quote", "'no end", grammar.PVL, "unterminated quoted string"},
		{"unterminated units", "< m", grammar.PVL, "unterminated units expression"},
		{"unterminated radix", "2#01", grammar.PVL, "unterminated non-decimal literal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lexer.New(tt.src, tt.g)
			var lastErr error
			for {
				_, err := l.Next()
				if err != nil {
					lastErr = err
					break
				}
			}
			var lexErr *lexer.Error
			require.ErrorAs(t, lastErr, &lexErr)
			require.Contains(t, lexErr.Msg, tt.msg)
			require.Positive(t, lexErr.Line)
			require.Positive(t, lexErr.Col)
		})
	}
}

func TestErrorPosition(t *testing.T) {
	l := lexer.New("ok = fine\nbad = \x01", grammar.PVL)
	var lexErr *lexer.Error
	for {
		_, err := l.Next()
		if err != nil {
			require.ErrorAs(t, err, &lexErr)
			break
		}
	}
	require.Equal(t, 2, lexErr.Line)
	require.Equal(t, 7, lexErr.Col)
	require.Contains(t, lexErr.Context, "bad = ")
}
