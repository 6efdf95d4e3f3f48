package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/buildkite/pipeline-validator/internal/span"
)

type parser struct {
	lex     *lexer
	cur     tok
	tracker *span.Tracker
}

func newParser(file, src string) (*parser, error) {
	p := &parser{lex: newLexer(src), tracker: span.NewTracker(file, src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) sp(t tok) span.Span { return p.tracker.Span(t.start, t.end) }

func (p *parser) expect(tt tokenType, what string) (tok, error) {
	if p.cur.typ != tt {
		return tok{}, fmt.Errorf("at %s: expected %s, got %q", p.sp(p.cur), what, p.cur.literal)
	}
	t := p.cur
	if err := p.advance(); err != nil {
		return tok{}, err
	}
	return t, nil
}

func stripRawPrefix(s string) string {
	if strings.HasPrefix(s, "r#") {
		return s[2:]
	}
	return s
}

// parseDocument parses the single top-level `pipeline { ... }` block and
// returns its body, the leading keyword, and the keyword's span.
func parseDocument(file, src string) (*object, string, span.Span, error) {
	p, err := newParser(file, src)
	if err != nil {
		return nil, "", span.Span{}, err
	}

	if p.cur.typ != tIdent {
		return nil, "", span.Span{}, fmt.Errorf("at %s: expected top-level %q block", p.sp(p.cur), "pipeline")
	}
	kw := stripRawPrefix(p.cur.literal)
	kwSpan := p.sp(p.cur)
	if err := p.advance(); err != nil {
		return nil, "", span.Span{}, err
	}

	if _, err := p.expect(tLBrace, "'{'"); err != nil {
		return nil, "", span.Span{}, err
	}
	obj, err := p.parseObjectBody()
	if err != nil {
		return nil, "", span.Span{}, err
	}
	if _, err := p.expect(tRBrace, "'}'"); err != nil {
		return nil, "", span.Span{}, err
	}
	if p.cur.typ != tEOF {
		return nil, "", span.Span{}, fmt.Errorf("at %s: unexpected content after the pipeline block", p.sp(p.cur))
	}

	return obj, kw, kwSpan, nil
}

// parseObjectBody parses `ident: value` pairs separated by commas up to
// (but not consuming) the closing brace.
func (p *parser) parseObjectBody() (*object, error) {
	obj := &object{}
	for p.cur.typ != tRBrace && p.cur.typ != tEOF {
		keyTok, err := p.expect(tIdent, "field name")
		if err != nil {
			return nil, err
		}
		key := stripRawPrefix(keyTok.literal)
		if _, err := p.expect(tColon, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.fields = append(obj.fields, field{key: key, keySpan: p.sp(keyTok), val: val})

		if p.cur.typ == tComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return obj, nil
}

func (p *parser) parseValue() (value, error) {
	switch p.cur.typ {
	case tString:
		v := value{kind: vString, str: p.cur.literal, span: p.sp(p.cur)}
		return v, p.advance()

	case tInt:
		n, err := strconv.Atoi(p.cur.literal)
		if err != nil {
			return value{}, fmt.Errorf("at %s: %w", p.sp(p.cur), err)
		}
		v := value{kind: vInt, i: n, span: p.sp(p.cur)}
		return v, p.advance()

	case tTrue, tFalse:
		v := value{kind: vBool, b: p.cur.typ == tTrue, span: p.sp(p.cur)}
		return v, p.advance()

	case tLBracket:
		return p.parseArray()

	case tLBrace:
		sp := p.sp(p.cur)
		if err := p.advance(); err != nil {
			return value{}, err
		}
		obj, err := p.parseObjectBody()
		if err != nil {
			return value{}, err
		}
		if _, err := p.expect(tRBrace, "'}'"); err != nil {
			return value{}, err
		}
		return value{kind: vObject, object: obj, span: sp}, nil

	case tIdent:
		return p.parseIdentLed()

	default:
		return value{}, fmt.Errorf("at %s: unexpected token %q", p.sp(p.cur), p.cur.literal)
	}
}

func (p *parser) parseArray() (value, error) {
	sp := p.sp(p.cur)
	if err := p.advance(); err != nil {
		return value{}, err
	}
	var elems []value
	for p.cur.typ != tRBracket && p.cur.typ != tEOF {
		v, err := p.parseValue()
		if err != nil {
			return value{}, err
		}
		elems = append(elems, v)
		if p.cur.typ == tComma {
			if err := p.advance(); err != nil {
				return value{}, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(tRBracket, "']'"); err != nil {
		return value{}, err
	}
	return value{kind: vArray, array: elems, span: sp}, nil
}

// parseIdentLed parses the four shapes a leading identifier can start:
// a macro call (name!(args)), a fluent chain (name(args).m(args)...), a
// braced step/object literal (name { ... }), or a bare reference.
func (p *parser) parseIdentLed() (value, error) {
	start := p.cur
	raw := strings.HasPrefix(start.literal, "r#")
	name := stripRawPrefix(start.literal)
	sp := p.sp(start)
	if err := p.advance(); err != nil {
		return value{}, err
	}

	switch p.cur.typ {
	case tBang:
		if err := p.advance(); err != nil {
			return value{}, err
		}
		if _, err := p.expect(tLParen, "'('"); err != nil {
			return value{}, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return value{}, err
		}
		end, err := p.expect(tRParen, "')'")
		if err != nil {
			return value{}, err
		}
		full := sp
		full.End = p.sp(end).End
		return value{kind: vMacro, macro: &macroCall{name: name, args: args, span: full}, span: full}, nil

	case tLParen:
		if err := p.advance(); err != nil {
			return value{}, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return value{}, err
		}
		if _, err := p.expect(tRParen, "')'"); err != nil {
			return value{}, err
		}
		c := &chain{head: call{name: name, args: args, span: sp}}
		for p.cur.typ == tDot {
			if err := p.advance(); err != nil {
				return value{}, err
			}
			methodTok, err := p.expect(tIdent, "method name")
			if err != nil {
				return value{}, err
			}
			method := stripRawPrefix(methodTok.literal)
			if _, err := p.expect(tLParen, "'('"); err != nil {
				return value{}, err
			}
			margs, err := p.parseArgs()
			if err != nil {
				return value{}, err
			}
			if _, err := p.expect(tRParen, "')'"); err != nil {
				return value{}, err
			}
			c.methods = append(c.methods, call{name: method, args: margs, span: p.sp(methodTok)})
		}
		return value{kind: vChain, chain: c, span: sp}, nil

	case tLBrace:
		if err := p.advance(); err != nil {
			return value{}, err
		}
		obj, err := p.parseObjectBody()
		if err != nil {
			return value{}, err
		}
		if _, err := p.expect(tRBrace, "'}'"); err != nil {
			return value{}, err
		}
		return value{kind: vObject, object: obj, tag: name, span: sp}, nil

	default:
		return value{kind: vIdent, ident: name, raw: raw, span: sp}, nil
	}
}

func (p *parser) parseArgs() ([]value, error) {
	var args []value
	for p.cur.typ != tRParen && p.cur.typ != tEOF {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		if p.cur.typ == tComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return args, nil
}
