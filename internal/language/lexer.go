package language

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Lexer turns query-language source text into a stream of tokens. Tokens are
// produced lazily through Next; the lexer never looks at input beyond the
// token it is asked for.
type Lexer struct {
	input     string
	pos       int
	line      int
	lineStart int
}

// NewLexer returns a lexer positioned at the start of input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

func (l *Lexer) position() Position {
	return Position{Line: l.line, Column: l.pos - l.lineStart + 1}
}

func (l *Lexer) errorf(pos Position, format string, args ...any) error {
	return &LexError{Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

// Next returns the next significant token. Whitespace, commas, line
// terminators, and comments are skipped. At end of input it returns a token
// of kind TokenEOF; calling Next again keeps returning EOF.
func (l *Lexer) Next() (Token, error) {
	l.skipIgnored()

	pos := l.position()
	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Pos: pos}, nil
	}

	c := l.input[l.pos]
	switch c {
	case '!':
		l.pos++
		return Token{Kind: TokenBang, Pos: pos}, nil
	case '$':
		l.pos++
		return Token{Kind: TokenDollar, Pos: pos}, nil
	case '&':
		l.pos++
		return Token{Kind: TokenAmp, Pos: pos}, nil
	case '(':
		l.pos++
		return Token{Kind: TokenParenL, Pos: pos}, nil
	case ')':
		l.pos++
		return Token{Kind: TokenParenR, Pos: pos}, nil
	case ':':
		l.pos++
		return Token{Kind: TokenColon, Pos: pos}, nil
	case '=':
		l.pos++
		return Token{Kind: TokenEquals, Pos: pos}, nil
	case '@':
		l.pos++
		return Token{Kind: TokenAt, Pos: pos}, nil
	case '[':
		l.pos++
		return Token{Kind: TokenBracketL, Pos: pos}, nil
	case ']':
		l.pos++
		return Token{Kind: TokenBracketR, Pos: pos}, nil
	case '{':
		l.pos++
		return Token{Kind: TokenBraceL, Pos: pos}, nil
	case '}':
		l.pos++
		return Token{Kind: TokenBraceR, Pos: pos}, nil
	case '|':
		l.pos++
		return Token{Kind: TokenPipe, Pos: pos}, nil
	case '.':
		if strings.HasPrefix(l.input[l.pos:], "...") {
			l.pos += 3
			return Token{Kind: TokenSpread, Pos: pos}, nil
		}
		return Token{}, l.errorf(pos, "unexpected character %q", '.')
	case '"':
		if strings.HasPrefix(l.input[l.pos:], `"""`) {
			return l.readBlockString(pos)
		}
		return l.readString(pos)
	}

	if c == '-' || isDigit(c) {
		return l.readNumber(pos)
	}
	if isNameStart(c) {
		return l.readName(pos)
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return Token{}, l.errorf(pos, "unexpected character %q", r)
}

func (l *Lexer) skipIgnored() {
	for l.pos < len(l.input) {
		switch c := l.input[l.pos]; c {
		case ' ', '\t', ',':
			l.pos++
		case '\n':
			l.pos++
			l.line++
			l.lineStart = l.pos
		case '\r':
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] == '\n' {
				l.pos++
			}
			l.line++
			l.lineStart = l.pos
		case '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' && l.input[l.pos] != '\r' {
				l.pos++
			}
		case 0xEF:
			// UTF-8 byte order mark
			if strings.HasPrefix(l.input[l.pos:], "\uFEFF") {
				l.pos += 3
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) readName(pos Position) (Token, error) {
	start := l.pos
	for l.pos < len(l.input) && isNameContinue(l.input[l.pos]) {
		l.pos++
	}
	return Token{Kind: TokenName, Value: l.input[start:l.pos], Pos: pos}, nil
}

func (l *Lexer) readNumber(pos Position) (Token, error) {
	start := l.pos
	kind := TokenInt

	if l.input[l.pos] == '-' {
		l.pos++
	}
	if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
		return Token{}, l.errorf(pos, "invalid number, expected digit but got %s", l.describeNext())
	}
	if l.input[l.pos] == '0' {
		l.pos++
		if l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			return Token{}, l.errorf(pos, "invalid number, unexpected digit after 0: %q", rune(l.input[l.pos]))
		}
	} else {
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		kind = TokenFloat
		l.pos++
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			return Token{}, l.errorf(pos, "invalid number, expected digit but got %s", l.describeNext())
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		kind = TokenFloat
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			return Token{}, l.errorf(pos, "invalid number, expected exponent digit but got %s", l.describeNext())
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	// A number must not run directly into a name or another dot.
	if l.pos < len(l.input) && (isNameStart(l.input[l.pos]) || l.input[l.pos] == '.') {
		return Token{}, l.errorf(pos, "invalid number, expected digit but got %s", l.describeNext())
	}

	return Token{Kind: kind, Value: l.input[start:l.pos], Pos: pos}, nil
}

func (l *Lexer) readString(pos Position) (Token, error) {
	l.pos++ // opening quote
	var b strings.Builder

	for l.pos < len(l.input) {
		switch c := l.input[l.pos]; c {
		case '"':
			l.pos++
			return Token{Kind: TokenString, Value: b.String(), Pos: pos}, nil
		case '\n', '\r':
			return Token{}, l.errorf(pos, "unterminated string")
		case '\\':
			l.pos++
			if l.pos >= len(l.input) {
				return Token{}, l.errorf(pos, "unterminated string")
			}
			switch e := l.input[l.pos]; e {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '/':
				b.WriteByte('/')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				if l.pos+4 >= len(l.input) {
					return Token{}, l.errorf(l.position(), "invalid unicode escape")
				}
				var code rune
				for i := 0; i < 4; i++ {
					l.pos++
					d := hexValue(l.input[l.pos])
					if d < 0 {
						return Token{}, l.errorf(l.position(), "invalid unicode escape")
					}
					code = code<<4 | rune(d)
				}
				b.WriteRune(code)
			default:
				return Token{}, l.errorf(l.position(), "invalid escape character %q", rune(e))
			}
			l.pos++
		default:
			if c < 0x20 && c != '\t' {
				return Token{}, l.errorf(l.position(), "invalid character %q in string", rune(c))
			}
			b.WriteByte(c)
			l.pos++
		}
	}
	return Token{}, l.errorf(pos, "unterminated string")
}

func (l *Lexer) readBlockString(pos Position) (Token, error) {
	l.pos += 3 // opening quotes
	start := l.pos

	for l.pos < len(l.input) {
		if strings.HasPrefix(l.input[l.pos:], `\"""`) {
			l.pos += 4
			continue
		}
		if strings.HasPrefix(l.input[l.pos:], `"""`) {
			raw := l.input[start:l.pos]
			l.pos += 3
			value := blockStringValue(strings.ReplaceAll(raw, `\"""`, `"""`))
			return Token{Kind: TokenBlockString, Value: value, Pos: pos}, nil
		}
		if l.input[l.pos] == '\n' {
			l.pos++
			l.line++
			l.lineStart = l.pos
			continue
		}
		if l.input[l.pos] == '\r' {
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] == '\n' {
				l.pos++
			}
			l.line++
			l.lineStart = l.pos
			continue
		}
		l.pos++
	}
	return Token{}, l.errorf(pos, "unterminated block string")
}

// blockStringValue strips the common indentation and blank leading/trailing
// lines from a raw block string body.
func blockStringValue(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	commonIndent := -1
	for i, line := range lines {
		if i == 0 {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < len(line) && (commonIndent == -1 || indent < commonIndent) {
			commonIndent = indent
		}
	}
	if commonIndent > 0 {
		for i, line := range lines {
			if i == 0 {
				continue
			}
			if commonIndent < len(line) {
				lines[i] = line[commonIndent:]
			} else {
				lines[i] = strings.TrimLeft(line, " \t")
			}
		}
	}

	for len(lines) > 0 && strings.TrimLeft(lines[0], " \t") == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimLeft(lines[len(lines)-1], " \t") == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func (l *Lexer) describeNext() string {
	if l.pos >= len(l.input) {
		return "<EOF>"
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return fmt.Sprintf("%q", r)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameContinue(c byte) bool { return isNameStart(c) || isDigit(c) }

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
