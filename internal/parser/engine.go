package parser

import (
	"fmt"

	"github.com/seitarof/sc2xml/internal/builder"
	"github.com/seitarof/sc2xml/internal/lexer"
)

// engine is a recursive-descent recogniser with one token of lookahead.
// Every consumed token is shifted into the builder's line buffer and the
// builder hooks are fired at the matching reductions.
type engine struct {
	src         TokenSource
	b           *builder.Builder
	scope       *scope
	curt, nextt lexer.Token

	// role tags tokens consumed through next.
	role builder.Role
	// quiet > 0 inside parameter lists and type names within expressions.
	// Hooks are not fired and every token is tagged with role.
	quiet int
	// bodies counts struct and union bodies being parsed.
	bodies int
}

func newEngine(src TokenSource, b *builder.Builder) *engine {
	return &engine{
		src:   src,
		b:     b,
		scope: newScope(nil),
		role:  builder.RoleOther,
	}
}

func (p *engine) fail(err error) {
	panic(parseErrorBreakOut{err})
}

func (p *engine) errorf(format string, args ...interface{}) {
	p.fail(&SyntaxError{Pos: p.curt.Pos, Token: p.curt, Msg: fmt.Sprintf(format, args...)})
}

// advance moves the lookahead window without shifting.
func (p *engine) advance() {
	p.curt = p.nextt
	t, err := p.src.Next()
	if err != nil {
		p.fail(err)
	}
	p.nextt = t
}

// take shifts the current token with role r and advances.
func (p *engine) take(r builder.Role) lexer.Token {
	t := p.curt
	if t.Kind == lexer.EOF {
		p.errorf("unexpected end of input")
	}
	if p.quiet > 0 {
		r = p.role
	}
	p.b.Shift(t, r)
	p.advance()
	return t
}

func (p *engine) next() lexer.Token {
	return p.take(p.role)
}

func (p *engine) expect(s string) lexer.Token {
	return p.expectRole(s, p.role)
}

func (p *engine) expectRole(s string, r builder.Role) lexer.Token {
	if !p.curt.Is(s) {
		p.errorf("expected %q", s)
	}
	return p.take(r)
}

func (p *engine) expectIdent(r builder.Role) lexer.Token {
	if p.curt.Kind != lexer.Identifier {
		p.errorf("expected identifier")
	}
	return p.take(r)
}

func (p *engine) is(s string) bool {
	return p.curt.Is(s)
}

// withRole switches the role of plainly consumed tokens and returns the
// function restoring the previous one.
func (p *engine) withRole(r builder.Role) func() {
	prev := p.role
	p.role = r
	return func() { p.role = prev }
}

// hushed suppresses hooks until the returned function is called.
func (p *engine) hushed(r builder.Role) func() {
	prev := p.role
	p.quiet++
	p.role = r
	return func() {
		p.quiet--
		p.role = prev
	}
}

func (p *engine) hooks() bool {
	return p.quiet == 0
}

func (p *engine) pushScope() {
	p.scope = newScope(p.scope)
}

func (p *engine) popScope() {
	p.scope = p.scope.parent
}

func (p *engine) parseTranslationUnit() {
	for p.curt.Kind != lexer.EOF {
		p.parseDeclaration(ctxFile)
		p.b.Discard()
	}
}
