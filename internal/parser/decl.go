package parser

import (
	"github.com/seitarof/sc2xml/internal/builder"
	"github.com/seitarof/sc2xml/internal/lexer"
	"github.com/seitarof/sc2xml/internal/model"
)

// declCtx is where a declaration appears. It drives the type-name
// heuristic for identifiers that were never declared as typedefs.
type declCtx int

const (
	ctxFile declCtx = iota
	ctxBlock
	ctxStruct
	ctxParam
	ctxTypeName
)

var typeSpecWords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true, "_Complex": true, "__int128": true,
	"__signed": true, "__signed__": true,
}

var qualifierWords = map[string]bool{
	"const": true, "volatile": true, "restrict": true, "_Atomic": true,
	"__const": true, "__const__": true, "__restrict": true, "__restrict__": true,
	"__volatile": true, "__volatile__": true,
}

var storageWords = map[string]bool{
	"extern": true, "static": true, "auto": true, "register": true,
	"inline": true, "__inline": true, "__inline__": true, "_Noreturn": true,
	"_Thread_local": true, "__thread": true, "__extension__": true,
}

func word(t lexer.Token) string {
	if t.Kind == lexer.Keyword || t.Kind == lexer.Identifier {
		return t.Text
	}
	return ""
}

func isAttribute(t lexer.Token) bool {
	switch word(t) {
	case "__attribute__", "__attribute", "__asm__", "__asm", "asm", "__declspec":
		return true
	}
	return false
}

// specs summarises a declaration-specifier list.
type specs struct {
	any           bool
	typedef       bool
	hasType       bool
	body          bool
	attrAfterBody bool
	enum          *model.Enum
}

// declarator summarises one parsed declarator.
type declarator struct {
	name   string
	ptrs   int
	isFunc bool
}

// parseDeclaration handles file-scope and block-scope declarations and,
// at file scope, function definitions.
func (p *engine) parseDeclaration(ctx declCtx) {
	if p.is(";") {
		p.take(builder.RoleOther)
		return
	}
	if word(p.curt) == "_Static_assert" {
		p.parseStaticAssert()
		return
	}

	s := p.parseSpecifiers(ctx)
	if !s.any && p.curt.Kind != lexer.Identifier && !p.is("*") && !p.is("(") {
		p.errorf("expected declaration")
	}
	if p.is(";") {
		p.take(builder.RoleTerminator)
		p.completeField(true)
		p.finishEnum(s, "")
		return
	}

	first := ""
	for i := 0; ; i++ {
		d := p.parseDeclarator(ctx, false)
		if i == 0 {
			first = d.name
		}
		if d.name != "" {
			p.scope.define(d.name, s.typedef)
		}
		if i == 0 && ctx == ctxFile && d.isFunc && p.startsFunctionBody() {
			p.parseFunctionBody()
			p.finishEnum(s, "")
			return
		}
		p.parseAttributes()
		if p.is("=") {
			p.next()
			p.parseInitializer()
		}
		if p.is(",") {
			p.take(builder.RoleTerminator)
			p.completeField(false)
			continue
		}
		p.expectRole(";", builder.RoleTerminator)
		p.completeField(true)
		break
	}

	typedefName := ""
	if s.typedef {
		typedefName = first
	}
	p.finishEnum(s, typedefName)
}

func (p *engine) parseSpecifiers(ctx declCtx) specs {
	var s specs
	for {
		w := word(p.curt)
		switch {
		case w == "typedef":
			s.any, s.typedef = true, true
			if p.hooks() {
				p.b.MarkTypedef()
			}
			p.take(builder.RoleOther)
		case isAttribute(p.curt):
			s.any = true
			p.parseAttributes()
			if s.body {
				s.attrAfterBody = true
			}
		case storageWords[w]:
			s.any = true
			p.take(builder.RoleOther)
		case qualifierWords[w]:
			s.any = true
			p.take(builder.RoleSpecifier)
		case typeSpecWords[w]:
			s.any, s.hasType = true, true
			p.take(builder.RoleSpecifier)
		case p.curt.Kind == lexer.Keyword && (w == "struct" || w == "union"):
			s.any, s.hasType = true, true
			if p.parseStructOrUnion() {
				s.body = true
			}
		case p.curt.Kind == lexer.Keyword && w == "enum":
			s.any, s.hasType = true, true
			s.enum = p.parseEnum()
		case p.curt.Kind == lexer.Identifier && p.identIsType(ctx, s.hasType):
			s.any, s.hasType = true, true
			p.take(builder.RoleSpecifier)
		default:
			return s
		}
	}
}

// identIsType decides whether the current identifier names a type.
// Typedefs seen in this unit always do. Otherwise, so that headers using
// types declared elsewhere still parse, an identifier that starts a
// specifier list is taken as a type when what follows can only continue a
// declaration.
func (p *engine) identIsType(ctx declCtx, hasType bool) bool {
	if hasType {
		return false
	}
	if p.scope.isTypedef(p.curt.Text) {
		return true
	}
	switch ctx {
	case ctxStruct, ctxParam:
		return true
	case ctxFile, ctxBlock:
		return p.nextt.Kind == lexer.Identifier || p.nextt.Is("*")
	}
	return false
}

// parseStructOrUnion parses a struct or union specifier and reports
// whether it had a body.
func (p *engine) parseStructOrUnion() bool {
	kind := model.KindStruct
	if p.is("union") {
		kind = model.KindUnion
	}
	p.take(builder.RoleSpecifier)
	p.parseAttributes()

	hasTag := false
	if p.curt.Kind == lexer.Identifier {
		p.take(builder.RoleSpecifier)
		hasTag = true
	}
	p.parseAttributes()

	if !p.is("{") {
		if !hasTag {
			p.errorf("expected %s tag or body", kind)
		}
		return false
	}

	p.take(builder.RoleStructOpen)
	if p.hooks() {
		p.b.OpenStruct(kind)
	}
	p.parseStructBody()
	p.take(builder.RoleStructClose)
	if p.hooks() {
		p.b.PrepareClose()
	}
	return true
}

func (p *engine) parseStructBody() {
	p.bodies++
	for !p.is("}") {
		switch {
		case p.curt.Kind == lexer.EOF:
			p.fail(&builder.StructBalanceError{Pos: p.curt.Pos, Open: p.bodies})
		case p.is(";"):
			p.take(builder.RoleOther)
		default:
			p.parseStructDeclaration()
		}
	}
	p.bodies--
}

func (p *engine) parseStructDeclaration() {
	if word(p.curt) == "_Static_assert" {
		p.parseStaticAssert()
		return
	}

	s := p.parseSpecifiers(ctxStruct)
	if !s.any {
		p.errorf("expected specifier-qualifier list")
	}
	if p.hooks() {
		p.b.CaptureType()
	}
	if p.is(";") {
		p.take(builder.RoleTerminator)
		p.completeField(true)
		p.finishEnum(s, "")
		return
	}

	for {
		if s.attrAfterBody && p.hooks() {
			p.b.MarkNestedName()
		}
		if !p.is(":") {
			p.parseDeclarator(ctxStruct, false)
		}
		if p.is(":") {
			p.take(builder.RoleBitColon)
			restore := p.withRole(builder.RoleBitWidth)
			p.parseConditional()
			restore()
		}
		p.parseAttributes()
		if p.is(",") {
			p.take(builder.RoleTerminator)
			p.completeField(false)
			continue
		}
		p.expectRole(";", builder.RoleTerminator)
		p.completeField(true)
		break
	}
	p.finishEnum(s, "")
}

// parseEnum returns the enum body, or nil for a bare "enum tag" reference.
func (p *engine) parseEnum() *model.Enum {
	p.take(builder.RoleSpecifier)
	p.parseAttributes()

	en := &model.Enum{}
	if p.curt.Kind == lexer.Identifier {
		en.Name = p.take(builder.RoleSpecifier).Text
	}
	p.parseAttributes()
	if !p.is("{") {
		if en.Name == "" {
			p.errorf("expected enum tag or body")
		}
		return nil
	}

	restore := p.withRole(builder.RoleOther)
	defer restore()
	buf := p.b.Buffer()

	p.next()
	for !p.is("}") {
		v := model.EnumValue{Name: p.expectIdent(p.role).Text}
		p.parseAttributes()
		if p.is("=") {
			p.next()
			from := buf.Len()
			p.parseConditional()
			v.Expr = builder.Join(buf.Slice(from, buf.Len()))
		}
		en.Values = append(en.Values, v)
		if !p.is(",") {
			break
		}
		p.next()
	}
	p.expect("}")
	return en
}

func (p *engine) parseDeclarator(ctx declCtx, abstract bool) declarator {
	var d declarator
	for p.is("*") {
		p.take(builder.RolePointer)
		d.ptrs++
		if p.hooks() {
			p.b.MarkPointer()
		}
		for qualifierWords[word(p.curt)] || isAttribute(p.curt) {
			if isAttribute(p.curt) {
				p.parseAttributes()
				continue
			}
			p.take(builder.RoleOther)
		}
	}

	nested := false
	innerPtrs := 0
	switch {
	case p.curt.Kind == lexer.Identifier:
		d.name = p.take(builder.RoleName).Text
		if p.hooks() {
			p.b.CaptureIdentifier()
		}
	case p.is("(") && p.parenDeclarator(abstract):
		p.take(builder.RoleOther)
		p.parseAttributes()
		inner := p.parseDeclarator(ctx, abstract)
		p.expectRole(")", builder.RoleOther)
		d.name = inner.name
		d.isFunc = inner.isFunc
		innerPtrs = inner.ptrs
		nested = true
	default:
		if !abstract {
			p.errorf("expected identifier or '('")
		}
	}

	for suffix := 0; ; suffix++ {
		switch {
		case p.is("["):
			p.parseArraySuffix()
		case p.is("("):
			if nested && innerPtrs > 0 && suffix == 0 && p.hooks() {
				p.b.MarkFunctionPointer()
			}
			p.parseParamSuffix()
			if !nested {
				d.isFunc = true
			}
		default:
			return d
		}
	}
}

// parenDeclarator tells a parenthesised declarator from a parameter list.
// Only abstract declarators are ambiguous.
func (p *engine) parenDeclarator(abstract bool) bool {
	if !abstract {
		return true
	}
	t := p.nextt
	switch {
	case t.Is("*"), t.Is("("), t.Is("["), isAttribute(t):
		return true
	case t.Kind == lexer.Identifier:
		return !p.scope.isTypedef(t.Text)
	}
	return false
}

func (p *engine) parseArraySuffix() {
	p.take(builder.RoleArrayOpen)
	hasExpr := !p.is("]")
	if hasExpr {
		restore := p.withRole(builder.RoleArrayExpr)
		for w := word(p.curt); w == "static" || qualifierWords[w]; w = word(p.curt) {
			p.next()
		}
		if p.is("*") && p.nextt.Is("]") {
			p.next()
		} else if !p.is("]") {
			p.parseAssignment()
		}
		restore()
	}
	p.expectRole("]", builder.RoleArrayClose)
	if p.hooks() {
		p.b.CaptureArraySize(hasExpr)
	}
}

func (p *engine) parseParamSuffix() {
	p.take(builder.RoleParamOpen)
	if p.hooks() {
		p.b.BeginFunctionPointerArgs()
	}
	restore := p.hushed(builder.RoleParam)
	p.parseParameterList()
	restore()
	p.expectRole(")", builder.RoleParamClose)
	if p.hooks() {
		p.b.EndFunctionPointerArgs()
	}
}

// parseParameterList parses prototype parameters and K&R identifier
// lists alike; in parameter position an undeclared identifier is a type.
func (p *engine) parseParameterList() {
	if p.is(")") {
		return
	}
	for {
		if p.is("...") {
			p.next()
			return
		}
		s := p.parseSpecifiers(ctxParam)
		if !s.any {
			p.errorf("expected parameter declaration")
		}
		if !p.is(",") && !p.is(")") {
			p.parseDeclarator(ctxParam, true)
		}
		p.parseAttributes()
		if !p.is(",") {
			return
		}
		p.next()
	}
}

func (p *engine) parseInitializer() {
	if !p.is("{") {
		p.parseAssignment()
		return
	}
	p.next()
	for !p.is("}") {
		designated := false
		for p.is(".") || p.is("[") {
			designated = true
			if p.is(".") {
				p.next()
				p.expectIdent(p.role)
				continue
			}
			p.next()
			p.parseConditional()
			if p.is("...") {
				p.next()
				p.parseConditional()
			}
			p.expect("]")
		}
		switch {
		case designated:
			p.expect("=")
		case p.curt.Kind == lexer.Identifier && p.nextt.Is(":"):
			p.next()
			p.next()
		}
		p.parseInitializer()
		if !p.is(",") {
			break
		}
		p.next()
	}
	p.expect("}")
}

// parseAttributes consumes GNU attribute and asm-label groups.
func (p *engine) parseAttributes() bool {
	seen := false
	for isAttribute(p.curt) {
		seen = true
		p.take(builder.RoleAttribute)
		p.skipBalanced(builder.RoleAttribute)
	}
	return seen
}

// skipBalanced consumes a parenthesised group, nested groups included.
func (p *engine) skipBalanced(r builder.Role) {
	p.expectRole("(", r)
	for depth := 1; depth > 0; {
		switch {
		case p.is("("):
			depth++
		case p.is(")"):
			depth--
		}
		p.take(r)
	}
}

func (p *engine) parseStaticAssert() {
	p.take(builder.RoleOther)
	p.skipBalanced(builder.RoleOther)
	p.expectRole(";", builder.RoleOther)
}

func (p *engine) startsFunctionBody() bool {
	if p.is("{") {
		return true
	}
	// K&R parameter declarations; a trailing attribute ends a prototype.
	return !isAttribute(p.curt) && p.startsDeclaration()
}

func (p *engine) parseFunctionBody() {
	// A struct defined in the return type is still pending its close.
	if p.hooks() && p.b.InStruct() {
		p.completeField(true)
	}
	for !p.is("{") {
		p.parseDeclaration(ctxBlock)
	}
	p.parseCompound()
}

func (p *engine) completeField(endOfDecl bool) {
	if !p.hooks() {
		return
	}
	if err := p.b.CompleteField(endOfDecl); err != nil {
		p.fail(err)
	}
}

func (p *engine) finishEnum(s specs, typedefName string) {
	if s.enum == nil || !p.hooks() {
		return
	}
	s.enum.TypedefName = typedefName
	if err := p.b.AddEnum(s.enum); err != nil {
		p.fail(err)
	}
}
