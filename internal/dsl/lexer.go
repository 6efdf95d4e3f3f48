package dsl

import "fmt"

type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) skipTrivia() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '/':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '#'
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (l *lexer) next() (tok, error) {
	l.skipTrivia()
	start := l.pos
	mk := func(t tokenType, lit string) tok {
		return tok{typ: t, literal: lit, start: start, end: l.pos}
	}

	if l.pos >= len(l.input) {
		return mk(tEOF, ""), nil
	}

	c := l.input[l.pos]
	switch c {
	case '{':
		l.pos++
		return mk(tLBrace, "{"), nil
	case '}':
		l.pos++
		return mk(tRBrace, "}"), nil
	case '(':
		l.pos++
		return mk(tLParen, "("), nil
	case ')':
		l.pos++
		return mk(tRParen, ")"), nil
	case '[':
		l.pos++
		return mk(tLBracket, "["), nil
	case ']':
		l.pos++
		return mk(tRBracket, "]"), nil
	case ':':
		l.pos++
		return mk(tColon, ":"), nil
	case ',':
		l.pos++
		return mk(tComma, ","), nil
	case '.':
		l.pos++
		return mk(tDot, "."), nil
	case '!':
		l.pos++
		return mk(tBang, "!"), nil
	case '"', '\'':
		return l.readString(c)
	}

	if c >= '0' && c <= '9' {
		for l.pos < len(l.input) && l.input[l.pos] >= '0' && l.input[l.pos] <= '9' {
			l.pos++
		}
		return mk(tInt, l.input[start:l.pos]), nil
	}

	if isIdentStart(c) {
		l.pos++
		for l.pos < len(l.input) && isIdentByte(l.input[l.pos]) {
			l.pos++
		}
		lit := l.input[start:l.pos]
		switch lit {
		case "true":
			return mk(tTrue, lit), nil
		case "false":
			return mk(tFalse, lit), nil
		default:
			return mk(tIdent, lit), nil
		}
	}

	l.pos++
	return tok{}, fmt.Errorf("at offset %d: unexpected character %q", start, c)
}

func (l *lexer) readString(quote byte) (tok, error) {
	start := l.pos
	l.pos++
	var lit []byte
	for {
		if l.pos >= len(l.input) {
			return tok{}, fmt.Errorf("at offset %d: unterminated string", start)
		}
		c := l.input[l.pos]
		switch {
		case c == quote:
			l.pos++
			return tok{typ: tString, literal: string(lit), start: start, end: l.pos}, nil
		case c == '\\' && l.pos+1 < len(l.input):
			l.pos++
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
