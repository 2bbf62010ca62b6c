package language

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer(src)
	var toks []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		if tok.Kind == TokenEOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func lexFail(t *testing.T, src string) error {
	t.Helper()
	l := NewLexer(src)
	for {
		tok, err := l.Next()
		if err != nil {
			return err
		}
		if tok.Kind == TokenEOF {
			t.Fatalf("lexing %q succeeded, want error", src)
		}
	}
}

func TestLexerPunctuators(t *testing.T) {
	toks := lexAll(t, "! $ & ( ) ... : = @ [ ] { } |")
	kinds := make([]TokenKind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	require.Equal(t, []TokenKind{
		TokenBang, TokenDollar, TokenAmp, TokenParenL, TokenParenR,
		TokenSpread, TokenColon, TokenEquals, TokenAt,
		TokenBracketL, TokenBracketR, TokenBraceL, TokenBraceR, TokenPipe,
	}, kinds)
}

func TestLexerNamesAndNumbers(t *testing.T) {
	cases := []struct {
		src   string
		kind  TokenKind
		value string
	}{
		{"hello", TokenName, "hello"},
		{"_private2", TokenName, "_private2"},
		{"0", TokenInt, "0"},
		{"42", TokenInt, "42"},
		{"-9", TokenInt, "-9"},
		{"3.14", TokenFloat, "3.14"},
		{"-0.5", TokenFloat, "-0.5"},
		{"1e10", TokenFloat, "1e10"},
		{"6.02e-23", TokenFloat, "6.02e-23"},
		{"2E+3", TokenFloat, "2E+3"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			toks := lexAll(t, tc.src)
			require.Len(t, toks, 1)
			require.Equal(t, tc.kind, toks[0].Kind)
			require.Equal(t, tc.value, toks[0].Value)
		})
	}
}

func TestLexerNumberErrors(t *testing.T) {
	for _, src := range []string{"01", "1.", "-", "1e", "1.2e", "123abc", "1.2.3"} {
		t.Run(src, func(t *testing.T) {
			err := lexFail(t, src)
			require.Contains(t, err.Error(), "invalid number")
		})
	}
}

func TestLexerStrings(t *testing.T) {
	toks := lexAll(t, `"simple" "with \"escapes\" \n\t" "ABC"`)
	require.Len(t, toks, 3)
	require.Equal(t, "simple", toks[0].Value)
	require.Equal(t, "with \"escapes\" \n\t", toks[1].Value)
	require.Equal(t, "ABC", toks[2].Value)
	for _, tok := range toks {
		require.Equal(t, TokenString, tok.Kind)
	}
}

func TestLexerBlockStrings(t *testing.T) {
	src := "\"\"\"\n    Hello,\n      World!\n\n    Yours,\n      GraphQL.\n\"\"\""
	toks := lexAll(t, src)
	require.Len(t, toks, 1)
	require.Equal(t, TokenBlockString, toks[0].Kind)
	require.Equal(t, "Hello,\n  World!\n\nYours,\n  GraphQL.", toks[0].Value)

	// Escaped triple-quote stays literal.
	toks = lexAll(t, `"""contains \""" quote"""`)
	require.Equal(t, `contains """ quote`, toks[0].Value)
}

func TestLexerStringErrors(t *testing.T) {
	cases := []struct {
		src    string
		reason string
	}{
		{`"no end`, "unterminated string"},
		{"\"line\nbreak\"", "unterminated string"},
		{`"bad \q escape"`, "invalid escape character"},
		{`"bad \u00ZZ"`, "invalid unicode escape"},
		{`"""no end`, "unterminated block string"},
	}
	for _, tc := range cases {
		t.Run(tc.reason, func(t *testing.T) {
			err := lexFail(t, tc.src)
			require.Contains(t, err.Error(), tc.reason)
		})
	}
}

func TestLexerIgnoredTokens(t *testing.T) {
	toks := lexAll(t, "\uFEFF a, b , # trailing comment\n c")
	require.Len(t, toks, 3)
	require.Equal(t, "a", toks[0].Value)
	require.Equal(t, "b", toks[1].Value)
	require.Equal(t, "c", toks[2].Value)
}

func TestLexerPositions(t *testing.T) {
	toks := lexAll(t, "{ a\n  b(x: 1)\r\n}")
	want := []Position{
		{Line: 1, Column: 1}, // {
		{Line: 1, Column: 3}, // a
		{Line: 2, Column: 3}, // b
		{Line: 2, Column: 4}, // (
		{Line: 2, Column: 5}, // x
		{Line: 2, Column: 6}, // :
		{Line: 2, Column: 8}, // 1
		{Line: 2, Column: 9}, // )
		{Line: 3, Column: 1}, // }
	}
	require.Len(t, toks, len(want))
	for i, tok := range toks {
		require.Equal(t, want[i], tok.Pos, "token %d (%s)", i, tok)
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	err := lexFail(t, "a ? b")
	require.Contains(t, err.Error(), "unexpected character")

	err = lexFail(t, "a . b")
	require.Contains(t, err.Error(), "unexpected character")
}
