// Package conditional validates Buildkite `if:` conditional expressions
// against the fixed grammar of spec §4.3: it confirms the expression
// parses, that every identifier resolves to a known reference or a call to
// a known function, and that every embedded regex compiles.
//
// This validator never materialises a reusable AST for the rest of the
// core - parsing is the only use of the grammar, so the parser below walks
// the token stream and reports diagnostics without building one.
package conditional

import (
	"regexp"
	"strings"

	"github.com/buildkite/pipeline-validator/internal/conditional/token"
	"github.com/buildkite/pipeline-validator/internal/diagnostic"
	"github.com/buildkite/pipeline-validator/internal/span"
)

// KnownReferences is the fixed catalog of dotted reference paths an
// identifier in a conditional expression may resolve to, or a prefix
// thereof (e.g. "build.creator" followed by further components).
var KnownReferences = []string{
	"build.branch",
	"build.tag",
	"build.message",
	"build.state",
	"build.source",
	"build.creator.name",
	"build.creator.email",
	"build.creator.teams",
	"build.pull_request.id",
	"build.pull_request.draft",
	"build.pull_request.base_branch",
	"build.pull_request.repository",
	"build.pull_request.labels",
	"build.env",
	"build.number",
	"build.id",
	"pipeline.default_branch",
	"pipeline.repository",
	"pipeline.slug",
	"pipeline.id",
}

// KnownFunctions is the fixed whitelist of callable identifiers.
var KnownFunctions = []string{"env", "meta-data"}

// Validate checks expr against the conditional grammar. base anchors the
// span of every reported diagnostic to expr's position within the
// enclosing DSL source. Errors are accumulated: a grammar error produces a
// single diagnostic, but reference/function/regex errors within an
// otherwise-parseable expression are all reported together.
func Validate(expr string, base span.Span) *diagnostic.Diagnostics {
	p := &parser{lex: newLexer(expr), base: base, diags: &diagnostic.Diagnostics{}}
	if err := p.init(); err != nil {
		p.diags.Addf(diagnostic.BadConditional, base, "%s", err)
		return p.diags
	}

	p.parseOr()
	if p.diags.Len() == 0 && p.cur.Type != token.EOF {
		p.errorf("unexpected token %q after expression", p.cur.Literal)
	}
	return p.diags
}

type parser struct {
	lex   *lexer
	cur   token.Token
	base  span.Span
	diags *diagnostic.Diagnostics

	// grammarErr is set once the first grammar error has been reported, so
	// an unparsable expression yields a single grammar diagnostic.
	grammarErr bool
}

func (p *parser) init() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) advance() {
	tok, err := p.lex.next()
	if err != nil {
		p.errorf("%s", err)
		p.cur = token.Token{Type: token.EOF}
		return
	}
	p.cur = tok
}

func (p *parser) tokenSpan(t token.Token) span.Span {
	sp := p.base
	sp.Start += t.Start
	sp.End += t.End
	return sp
}

func (p *parser) errorf(format string, args ...any) {
	if p.grammarErr {
		return
	}
	p.grammarErr = true
	p.diags.Addf(diagnostic.BadConditional, p.base, format, args...)
}

// parseOr := and ( '||' and )*
func (p *parser) parseOr() {
	p.parseAnd()
	for p.cur.Type == token.OR {
		p.advance()
		p.parseAnd()
	}
}

// parseAnd := cmp ( '&&' cmp )*
func (p *parser) parseAnd() {
	p.parseCmp()
	for p.cur.Type == token.AND {
		p.advance()
		p.parseCmp()
	}
}

// parseCmp := unary ( ('==' | '!=' | '=~' | '!~' | '@>') unary )?
func (p *parser) parseCmp() {
	p.parseUnary()
	switch p.cur.Type {
	case token.EQ, token.NOT_EQ, token.RE_EQ, token.RE_NOT_EQ, token.CONTAINS:
		p.advance()
		p.parseUnary()
	}
}

// parseUnary := '!' unary | primary
func (p *parser) parseUnary() {
	if p.cur.Type == token.BANG {
		p.advance()
		p.parseUnary()
		return
	}
	p.parsePrimary()
}

// parsePrimary := BOOL | INT | STR | REGEX
//
//	| '(' or ')'
//	| '[' (or (',' or)*)? ']'
//	| IDENT ( '(' args? ')' | ('.' IDENT)* )
func (p *parser) parsePrimary() {
	switch p.cur.Type {
	case token.TRUE, token.FALSE, token.INT, token.STRING:
		p.advance()

	case token.REGEXP:
		p.validateRegex(p.cur)
		p.advance()

	case token.LPAREN:
		p.advance()
		p.parseOr()
		p.expect(token.RPAREN)

	case token.LBRACKET:
		p.advance()
		if p.cur.Type != token.RBRACKET {
			p.parseOr()
			for p.cur.Type == token.COMMA {
				p.advance()
				p.parseOr()
			}
		}
		p.expect(token.RBRACKET)

	case token.IDENT:
		name := p.cur
		p.advance()
		if p.cur.Type == token.LPAREN {
			p.validateFunction(name)
			p.advance()
			if p.cur.Type != token.RPAREN {
				p.parseOr()
				for p.cur.Type == token.COMMA {
					p.advance()
					p.parseOr()
				}
			}
			p.expect(token.RPAREN)
			return
		}

		path := name.Literal
		for p.cur.Type == token.DOT {
			p.advance()
			if p.cur.Type != token.IDENT {
				p.errorf("expected identifier after '.'")
				return
			}
			path += "." + p.cur.Literal
			p.advance()
		}
		p.validateReference(name, path)

	case token.EOF:
		p.errorf("unexpected end of expression")

	default:
		p.errorf("unexpected token %q", p.cur.Literal)
	}
}

func (p *parser) expect(t token.Type) {
	if p.cur.Type != t {
		p.errorf("expected %q, got %q", t, p.cur.Literal)
		return
	}
	p.advance()
}

func (p *parser) validateRegex(t token.Token) {
	pattern := t.Literal
	full := pattern
	if strings.Contains(t.Flags, "i") {
		full = "(?i)" + pattern
	}
	if _, err := regexp.Compile(full); err != nil {
		p.diags.Add(diagnostic.New(diagnostic.BadRegex, p.tokenSpan(t),
			"invalid regex /%s/%s: %s", pattern, t.Flags, err))
	}
}

func (p *parser) validateFunction(t token.Token) {
	for _, f := range KnownFunctions {
		if t.Literal == f {
			return
		}
	}
	p.diags.Add(diagnostic.New(diagnostic.BadConditional, p.tokenSpan(t),
		"unknown function %q; known functions: %s", t.Literal, strings.Join(KnownFunctions, ", ")))
}

func (p *parser) validateReference(t token.Token, path string) {
	for _, ref := range KnownReferences {
		if path == ref || strings.HasPrefix(path, ref+".") {
			return
		}
	}

	root, _, _ := strings.Cut(path, ".")
	if root == "build" || root == "pipeline" {
		return
	}

	p.diags.Add(diagnostic.New(diagnostic.BadConditional, p.tokenSpan(t),
		"unknown reference %q; references must start with 'build.' or 'pipeline.'", path))
}
