package conditional

import (
	"fmt"

	"github.com/buildkite/pipeline-validator/internal/conditional/token"
)

// lexer turns a conditional-expression string into a stream of tokens per
// the lexical grammar of spec §4.3. Whitespace is insignificant; an
// unrecognised character, an unpaired `&`/`|`/`@`, or an `=` not followed
// by `=` or `~` is fatal.
type lexer struct {
	input string
	pos   int // current byte offset
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '-' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// next returns the next token, or an error describing why the expression
// cannot be lexed further.
func (l *lexer) next() (token.Token, error) {
	l.skipWhitespace()

	start := l.pos
	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, Start: start, End: start}, nil
	}

	c := l.input[l.pos]
	mk := func(t token.Type, lit string) token.Token {
		return token.Token{Type: t, Literal: lit, Start: start, End: l.pos}
	}

	switch c {
	case '(':
		l.pos++
		return mk(token.LPAREN, "("), nil
	case ')':
		l.pos++
		return mk(token.RPAREN, ")"), nil
	case '[':
		l.pos++
		return mk(token.LBRACKET, "["), nil
	case ']':
		l.pos++
		return mk(token.RBRACKET, "]"), nil
	case '.':
		l.pos++
		return mk(token.DOT, "."), nil
	case ',':
		l.pos++
		return mk(token.COMMA, ","), nil
	case '"', '\'':
		return l.readString(c)
	case '/':
		return l.readRegex()
	case '=':
		l.pos++
		switch l.peekByte() {
		case '=':
			l.pos++
			return mk(token.EQ, "=="), nil
		case '~':
			l.pos++
			return mk(token.RE_EQ, "=~"), nil
		default:
			return token.Token{}, fmt.Errorf("at offset %d: expected '==' or '=~' after '='", start)
		}
	case '!':
		l.pos++
		switch l.peekByte() {
		case '=':
			l.pos++
			return mk(token.NOT_EQ, "!="), nil
		case '~':
			l.pos++
			return mk(token.RE_NOT_EQ, "!~"), nil
		default:
			return mk(token.BANG, "!"), nil
		}
	case '&':
		l.pos++
		if l.peekByte() == '&' {
			l.pos++
			return mk(token.AND, "&&"), nil
		}
		return token.Token{}, fmt.Errorf("at offset %d: expected '&&'", start)
	case '|':
		l.pos++
		if l.peekByte() == '|' {
			l.pos++
			return mk(token.OR, "||"), nil
		}
		return token.Token{}, fmt.Errorf("at offset %d: expected '||'", start)
	case '@':
		l.pos++
		if l.peekByte() == '>' {
			l.pos++
			return mk(token.CONTAINS, "@>"), nil
		}
		return token.Token{}, fmt.Errorf("at offset %d: expected '@>'", start)
	}

	if isDigit(c) {
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
		return mk(token.INT, l.input[start:l.pos]), nil
	}

	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' {
		for l.pos < len(l.input) && isIdentByte(l.input[l.pos]) {
			l.pos++
		}
		lit := l.input[start:l.pos]
		return mk(token.LookupIdent(lit), lit), nil
	}

	return token.Token{}, fmt.Errorf("at offset %d: unexpected character %q", start, c)
}

// readString consumes a quoted string literal, handling \n \t \r \\ and
// escaped-quote escapes.
func (l *lexer) readString(quote byte) (token.Token, error) {
	start := l.pos
	l.pos++ // opening quote
	var lit []byte
	for {
		if l.pos >= len(l.input) {
			return token.Token{}, fmt.Errorf("at offset %d: unterminated string", start)
		}
		c := l.input[l.pos]
		switch {
		case c == quote:
			l.pos++
			return token.Token{Type: token.STRING, Literal: string(lit), Start: start, End: l.pos}, nil
		case c == '\\':
			l.pos++
			if l.pos >= len(l.input) {
				return token.Token{}, fmt.Errorf("at offset %d: unterminated string", start)
			}
			switch esc := l.input[l.pos]; esc {
			case 'n':
				lit = append(lit, '\n')
			case 't':
				lit = append(lit, '\t')
			case 'r':
				lit = append(lit, '\r')
			case '\\':
				lit = append(lit, '\\')
			case quote:
				lit = append(lit, quote)
			default:
				lit = append(lit, '\\', esc)
			}
			l.pos++
		default:
			lit = append(lit, c)
			l.pos++
		}
	}
}

// readRegex consumes a /pattern/flags literal. Escaping inside the pattern
// is tracked so an escaped '/' doesn't end the literal early.
func (l *lexer) readRegex() (token.Token, error) {
	start := l.pos
	l.pos++ // opening slash
	var pattern []byte
	escaped := false
	for {
		if l.pos >= len(l.input) {
			return token.Token{}, fmt.Errorf("at offset %d: unterminated regex", start)
		}
		c := l.input[l.pos]
		if c == '/' && !escaped {
			l.pos++
			break
		}
		if c == '\\' && !escaped {
			escaped = true
			pattern = append(pattern, c)
			l.pos++
			continue
		}
		escaped = false
		pattern = append(pattern, c)
		l.pos++
	}

	var flags []byte
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == 'i' || c == 'm' || c == 's' || c == 'x' {
			flags = append(flags, c)
			l.pos++
			continue
		}
		break
	}

	return token.Token{Type: token.REGEXP, Literal: string(pattern), Flags: string(flags), Start: start, End: l.pos}, nil
}
