package parser

import "github.com/seitarof/sc2xml/internal/lexer"

// startsDeclaration decides, inside a block, whether the current token
// begins a declaration rather than a statement.
func (p *engine) startsDeclaration() bool {
	t := p.curt
	w := word(t)
	switch {
	case w == "typedef", w == "_Static_assert", storageWords[w], typeSpecWords[w], qualifierWords[w]:
		return true
	case isAttribute(t):
		return true
	case t.Kind == lexer.Keyword && (w == "struct" || w == "union" || w == "enum"):
		return true
	case t.Kind == lexer.Identifier:
		return p.scope.isTypedef(t.Text) || p.nextt.Kind == lexer.Identifier
	}
	return false
}

func (p *engine) parseCompound() {
	p.expect("{")
	p.pushScope()
	for !p.is("}") {
		if p.curt.Kind == lexer.EOF {
			p.errorf("expected '}'")
		}
		if p.startsDeclaration() {
			p.parseDeclaration(ctxBlock)
		} else {
			p.parseStatement()
		}
	}
	p.popScope()
	p.expect("}")
}

func (p *engine) parseStatement() {
	if p.curt.Kind == lexer.Identifier && p.nextt.Is(":") {
		p.next()
		p.next()
		p.parseStatement()
		return
	}

	if p.curt.Kind != lexer.Keyword {
		switch {
		case p.is("{"):
			p.parseCompound()
		case p.is(";"):
			p.next()
		default:
			p.parseExpression()
			p.expect(";")
		}
		return
	}

	switch p.curt.Text {
	case "case":
		p.next()
		p.parseConditional()
		if p.is("...") {
			p.next()
			p.parseConditional()
		}
		p.expect(":")
		p.parseStatement()
	case "default":
		p.next()
		p.expect(":")
		p.parseStatement()
	case "if":
		p.parseIf()
	case "switch", "while":
		p.next()
		p.parseCondition()
		p.parseStatement()
	case "do":
		p.next()
		p.parseStatement()
		p.expect("while")
		p.parseCondition()
		p.expect(";")
	case "for":
		p.parseFor()
	case "goto":
		p.next()
		p.expectIdent(p.role)
		p.expect(";")
	case "continue", "break":
		p.next()
		p.expect(";")
	case "return":
		p.next()
		if !p.is(";") {
			p.parseExpression()
		}
		p.expect(";")
	default:
		p.parseExpression()
		p.expect(";")
	}
}

func (p *engine) parseCondition() {
	p.expect("(")
	p.parseExpression()
	p.expect(")")
}

func (p *engine) parseIf() {
	p.expect("if")
	p.parseCondition()
	p.parseStatement()
	if p.is("else") {
		p.next()
		p.parseStatement()
	}
}

func (p *engine) parseFor() {
	p.expect("for")
	p.expect("(")
	p.pushScope()
	switch {
	case p.is(";"):
		p.next()
	case p.startsDeclaration():
		p.parseDeclaration(ctxBlock)
	default:
		p.parseExpression()
		p.expect(";")
	}
	if !p.is(";") {
		p.parseExpression()
	}
	p.expect(";")
	if !p.is(")") {
		p.parseExpression()
	}
	p.expect(")")
	p.parseStatement()
	p.popScope()
}
