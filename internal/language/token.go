package language

import "fmt"

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenName
	TokenInt
	TokenFloat
	TokenString
	TokenBlockString
	TokenBang
	TokenDollar
	TokenAmp
	TokenParenL
	TokenParenR
	TokenSpread
	TokenColon
	TokenEquals
	TokenAt
	TokenBracketL
	TokenBracketR
	TokenBraceL
	TokenBraceR
	TokenPipe
)

var tokenNames = map[TokenKind]string{
	TokenEOF:         "<EOF>",
	TokenName:        "Name",
	TokenInt:         "Int",
	TokenFloat:       "Float",
	TokenString:      "String",
	TokenBlockString: "BlockString",
	TokenBang:        "!",
	TokenDollar:      "$",
	TokenAmp:         "&",
	TokenParenL:      "(",
	TokenParenR:      ")",
	TokenSpread:      "...",
	TokenColon:       ":",
	TokenEquals:      "=",
	TokenAt:          "@",
	TokenBracketL:    "[",
	TokenBracketR:    "]",
	TokenBraceL:      "{",
	TokenBraceR:      "}",
	TokenPipe:        "|",
}

func (k TokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// expectString is the form parse errors use for an expected kind:
// punctuators are quoted, token classes are not.
func (k TokenKind) expectString() string {
	switch k {
	case TokenEOF, TokenName, TokenInt, TokenFloat, TokenString, TokenBlockString:
		return k.String()
	}
	return fmt.Sprintf("%q", k.String())
}

// Position is a line/column location in the source text. Both are 1-based.
type Position struct {
	Line   int
	Column int
}

// Token is a single lexical element of a query document.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   Position
}

// String describes the token the way parse errors report it.
func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "<EOF>"
	case TokenName, TokenInt, TokenFloat:
		return fmt.Sprintf("%q", t.Value)
	case TokenString, TokenBlockString:
		return "String"
	default:
		return fmt.Sprintf("%q", t.Kind.String())
	}
}
