package parser

import "github.com/seitarof/sc2xml/internal/lexer"

// binaryPrecedence maps binary operators to their binding strength,
// loosest first. All binary operators are left associative.
var binaryPrecedence = buildPrecedence(
	[]string{"||"},
	[]string{"&&"},
	[]string{"|"},
	[]string{"^"},
	[]string{"&"},
	[]string{"==", "!="},
	[]string{"<", ">", "<=", ">="},
	[]string{"<<", ">>"},
	[]string{"+", "-"},
	[]string{"*", "/", "%"},
)

var assignOps = map[string]bool{
	"=": true, "*=": true, "/=": true, "%=": true, "+=": true, "-=": true,
	"<<=": true, ">>=": true, "&=": true, "^=": true, "|=": true,
}

func buildPrecedence(levels ...[]string) map[string]int {
	m := make(map[string]int)
	for i, ops := range levels {
		for _, op := range ops {
			m[op] = i + 1
		}
	}
	return m
}

func (p *engine) binaryPrec() int {
	if p.curt.Kind != lexer.Punctuator {
		return 0
	}
	return binaryPrecedence[p.curt.Text]
}

func (p *engine) parseExpression() {
	p.parseAssignment()
	for p.is(",") {
		p.next()
		p.parseAssignment()
	}
}

func (p *engine) parseAssignment() {
	p.parseConditional()
	if p.curt.Kind == lexer.Punctuator && assignOps[p.curt.Text] {
		p.next()
		p.parseAssignment()
	}
}

func (p *engine) parseConditional() {
	p.parseBinary(1)
	if !p.is("?") {
		return
	}
	p.next()
	// GNU "a ?: b" leaves the middle operand out.
	if !p.is(":") {
		p.parseExpression()
	}
	p.expect(":")
	p.parseConditional()
}

func (p *engine) parseBinary(minPrec int) {
	p.parseCast()
	for {
		prec := p.binaryPrec()
		if prec == 0 || prec < minPrec {
			return
		}
		p.next()
		p.parseBinary(prec + 1)
	}
}

func (p *engine) parseCast() {
	if p.is("(") && p.startsTypeName(p.nextt) {
		p.next()
		p.parseTypeName()
		p.expect(")")
		if p.is("{") {
			// Compound literal.
			p.parseInitializer()
			p.parsePostfixOps()
			return
		}
		p.parseCast()
		return
	}
	p.parseUnary()
}

func (p *engine) parseUnary() {
	switch {
	case p.is("++"), p.is("--"):
		p.next()
		p.parseUnary()
	case p.is("&"), p.is("*"), p.is("+"), p.is("-"), p.is("~"), p.is("!"):
		p.next()
		p.parseCast()
	case p.is("sizeof"), isAlignof(p.curt):
		p.next()
		if p.is("(") && p.startsTypeName(p.nextt) {
			p.next()
			p.parseTypeName()
			p.expect(")")
			return
		}
		p.parseUnary()
	default:
		p.parsePrimary()
		p.parsePostfixOps()
	}
}

func isAlignof(t lexer.Token) bool {
	switch word(t) {
	case "_Alignof", "__alignof__", "__alignof":
		return true
	}
	return false
}

func (p *engine) parsePostfixOps() {
	for {
		switch {
		case p.is("["):
			p.next()
			p.parseExpression()
			p.expect("]")
		case p.is("("):
			p.next()
			if !p.is(")") {
				p.parseAssignment()
				for p.is(",") {
					p.next()
					p.parseAssignment()
				}
			}
			p.expect(")")
		case p.is("."), p.is("->"):
			p.next()
			p.expectIdent(p.role)
		case p.is("++"), p.is("--"):
			p.next()
		default:
			return
		}
	}
}

func (p *engine) parsePrimary() {
	switch p.curt.Kind {
	case lexer.Identifier, lexer.Constant:
		p.next()
	case lexer.StringLiteral:
		for p.curt.Kind == lexer.StringLiteral {
			p.next()
		}
	default:
		if !p.is("(") {
			p.errorf("expected expression")
		}
		p.next()
		if p.is("{") {
			// GNU statement expression.
			p.parseCompound()
		} else {
			p.parseExpression()
		}
		p.expect(")")
	}
}

// startsTypeName reports whether t can begin a type name inside an
// expression. Only declared typedefs count here.
func (p *engine) startsTypeName(t lexer.Token) bool {
	w := word(t)
	switch {
	case typeSpecWords[w], qualifierWords[w]:
		return true
	case t.Kind == lexer.Keyword && (w == "struct" || w == "union" || w == "enum"):
		return true
	case t.Kind == lexer.Identifier:
		return p.scope.isTypedef(t.Text)
	}
	return false
}

func (p *engine) parseTypeName() {
	restore := p.hushed(p.role)
	defer restore()

	s := p.parseSpecifiers(ctxTypeName)
	if !s.any {
		p.errorf("expected type name")
	}
	if !p.is(")") {
		p.parseDeclarator(ctxTypeName, true)
	}
}
