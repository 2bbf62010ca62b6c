package language

import "fmt"

// Location is a line/column pair as it appears in the errors section of a
// response.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is the wire-level representation of a request error originating in
// the language frontend.
type Error struct {
	Message   string     `json:"message"`
	Locations []Location `json:"locations,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// LexError reports invalid source text: unknown characters, unterminated
// strings, malformed numbers.
type LexError struct {
	Pos    Position
	Reason string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("syntax error: %s (line %d, column %d)", e.Reason, e.Pos.Line, e.Pos.Column)
}

// AsError converts the lex error into its wire form.
func (e *LexError) AsError() *Error {
	return &Error{
		Message:   fmt.Sprintf("Syntax Error: %s.", e.Reason),
		Locations: []Location{{Line: e.Pos.Line, Column: e.Pos.Column}},
	}
}

// ParseError reports a grammar violation at a given token.
type ParseError struct {
	Pos      Position
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error: expected %s, found %s (line %d, column %d)", e.Expected, e.Found, e.Pos.Line, e.Pos.Column)
}

// AsError converts the parse error into its wire form.
func (e *ParseError) AsError() *Error {
	return &Error{
		Message:   fmt.Sprintf("Syntax Error: expected %s, found %s.", e.Expected, e.Found),
		Locations: []Location{{Line: e.Pos.Line, Column: e.Pos.Column}},
	}
}
