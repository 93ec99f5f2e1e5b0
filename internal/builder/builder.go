package builder

import (
	"github.com/seitarof/sc2xml/internal/lexer"
	"github.com/seitarof/sc2xml/internal/model"
)

// Builder turns grammar events into struct records. The grammar engine
// shifts every consumed token into the buffer and calls the hooks below
// at the matching reductions. A Builder serves exactly one input unit.
type Builder struct {
	buf   LineBuffer
	stack Stack
	sink  Sink

	pendingTypedef bool

	// Per declaration: survives ',' and is reset at ';'.
	declType string

	// Per field.
	name     string
	nameSet  bool
	pointer  int
	funcPtr  int
	array    model.ArraySize
	argsFrom int
	argsTo   int
}

// New returns a builder that emits top-level records to sink.
func New(sink Sink) *Builder {
	b := &Builder{sink: sink}
	b.resetField()
	return b
}

// Shift appends a consumed token to the line buffer.
func (b *Builder) Shift(tok lexer.Token, role Role) {
	b.buf.Append(tok, role)
}

// Buffer exposes the line buffer for inspection.
func (b *Builder) Buffer() *LineBuffer { return &b.buf }

// InStruct reports whether a struct or union body is open, including
// one whose close is still pending.
func (b *Builder) InStruct() bool { return !b.stack.Empty() }

// Depth returns the number of open frames.
func (b *Builder) Depth() int { return b.stack.Len() }

// Discard drops buffered tokens when no struct is open. The engine calls
// it between external declarations so code outside structs does not
// accumulate.
func (b *Builder) Discard() {
	if b.stack.Empty() {
		b.buf.Reset()
	}
}

// MarkTypedef records that the declaration being parsed is a typedef.
func (b *Builder) MarkTypedef() {
	b.pendingTypedef = true
}

// OpenStruct pushes a frame for the struct or union whose '{' was just
// shifted. The token before '{' tells whether the name came first.
func (b *Builder) OpenStruct(kind model.Kind) {
	rec := &model.StructRecord{Kind: kind}
	f := &Frame{Kind: kind, Record: rec, TypeText: kind.String()}
	if b.pendingTypedef {
		f.IsTypedef = true
		b.pendingTypedef = false
	}

	open := b.buf.LastIndex(RoleStructOpen)
	for i := open - 1; i >= 0; i-- {
		e := b.buf.At(i)
		if e.Role == RoleAttribute {
			continue
		}
		if e.Tok.Kind == lexer.Identifier {
			rec.Name = e.Tok.Text
			f.TypeText += " " + e.Tok.Text
		} else {
			f.HasTrailingName = true
		}
		break
	}
	if open <= 0 {
		f.HasTrailingName = true
	}

	b.stack.Push(f)
	b.buf.Reset()
	b.declType = ""
	b.resetField()
}

// PrepareClose defers the close of the innermost frame until the next
// field completion. A '}' with no open frame is not a struct close.
func (b *Builder) PrepareClose() {
	if top := b.stack.Top(); top != nil {
		top.PendingClose++
	}
}

// CaptureType records the base type of the current struct declaration
// from the specifier tokens in the buffer. When the specifier was a
// struct body that is still pending close, the base type is that struct.
func (b *Builder) CaptureType() {
	top := b.stack.Top()
	if top == nil {
		return
	}
	if top.PendingClose > 0 {
		b.declType = top.TypeText
		return
	}
	b.declType = JoinRole(b.buf.Slice(0, b.buf.Len()), RoleSpecifier)
}

// MarkPointer counts one '*' of the current declarator.
func (b *Builder) MarkPointer() {
	if b.stack.Empty() || b.funcPtr > 0 {
		return
	}
	b.pointer++
}

// MarkFunctionPointer converts the last counted '*' into a function
// pointer marker.
func (b *Builder) MarkFunctionPointer() {
	if b.stack.Empty() {
		return
	}
	b.funcPtr++
	if b.pointer > 0 {
		b.pointer--
	}
}

// BeginFunctionPointerArgs is called right after a parameter list's '('
// was shifted.
func (b *Builder) BeginFunctionPointerArgs() {
	if b.stack.Empty() {
		return
	}
	b.argsFrom = b.buf.Len()
	b.argsTo = -1
}

// EndFunctionPointerArgs is called right after the matching ')' was shifted.
func (b *Builder) EndFunctionPointerArgs() {
	if b.stack.Empty() || b.argsFrom < 0 {
		return
	}
	b.argsTo = b.buf.Len() - 1
}

// CaptureArraySize records the last '[' ... ']' span in the buffer.
func (b *Builder) CaptureArraySize(hasExpr bool) {
	if b.stack.Empty() {
		return
	}
	if !hasExpr {
		b.array = model.ArraySize{Kind: model.ArrayUnspecified}
		return
	}
	end := b.buf.LastIndex(RoleArrayClose)
	if end < 0 {
		return
	}
	start := end - 1
	for start >= 0 && b.buf.At(start).Role != RoleArrayOpen {
		start--
	}
	b.array = model.ArraySize{
		Kind: model.ArrayExpression,
		Expr: Join(b.buf.Slice(start+1, end)),
	}
}

// CaptureIdentifier takes the most recent declarator name as the field
// name. The first name captured for a field wins.
func (b *Builder) CaptureIdentifier() {
	if b.stack.Empty() || b.nameSet {
		return
	}
	i := b.buf.LastIndex(RoleName)
	if i < 0 {
		return
	}
	b.name = b.buf.At(i).Tok.Text
	b.nameSet = true
}

// MarkNestedName records that the trailing run of the pending struct holds
// an attribute followed by an instance name.
func (b *Builder) MarkNestedName() {
	if top := b.stack.Top(); top != nil && top.PendingClose > 0 {
		top.NestedNamePending = true
	}
}

// CompleteField is called after a ',' or ';' ending a declarator was
// shifted. endOfDecl is true for ';'.
func (b *Builder) CompleteField(endOfDecl bool) error {
	defer func() {
		if endOfDecl {
			b.declType = ""
			if b.stack.Empty() {
				b.pendingTypedef = false
			}
		}
	}()

	top := b.stack.Top()
	if top == nil {
		b.resetField()
		b.buf.Reset()
		return nil
	}
	if top.PendingClose > 0 {
		return b.finalizeClose()
	}

	f, err := b.assembleField(b.declType)
	if err != nil {
		return err
	}
	top.Record.Members = append(top.Record.Members, model.Member{Field: f})
	b.resetField()
	b.buf.Reset()
	return nil
}

// Finish checks that every struct was closed. pos is where input ended.
func (b *Builder) Finish(pos lexer.Pos) error {
	if !b.stack.Empty() {
		return &StructBalanceError{Pos: pos, Open: b.stack.Len()}
	}
	return nil
}

// AddEnum hands a completed enum to the sink when it accepts enums.
func (b *Builder) AddEnum(e *model.Enum) error {
	es, ok := b.sink.(EnumSink)
	if !ok {
		return nil
	}
	if err := es.EmitEnum(e); err != nil {
		return &SinkError{Err: err}
	}
	return nil
}

// finalizeClose resolves the tokens after '}' into names or attributes,
// pops the frame and hands the record to its parent or the sink.
func (b *Builder) finalizeClose() error {
	f := b.stack.Top()
	f.PendingClose--
	rec := f.Record

	trailing := b.trailingRun()
	attr := JoinRole(trailing, RoleAttribute)
	switch {
	case len(trailing) == 0:
	case f.IsTypedef && b.nameSet:
		rec.TypedefName = b.name
		rec.Attributes = attr
	case f.HasTrailingName && b.nameSet:
		rec.Name = b.name
		rec.Attributes = attr
	case f.NestedNamePending:
		rec.Attributes = attr
		rec.NestedName = b.name
		f.NestedNamePending = false
	default:
		// A plain instance is carried by the parent's field.
		rec.Attributes = attr
	}

	b.stack.Pop()
	parent := b.stack.Top()
	if parent == nil {
		if err := b.sink.Emit(rec); err != nil {
			return &SinkError{Err: err}
		}
	} else {
		parent.Record.Members = append(parent.Record.Members, model.Member{Struct: rec})
		if b.nameSet {
			inst, err := b.assembleField(f.TypeText)
			if err != nil {
				return err
			}
			parent.Record.Members = append(parent.Record.Members, model.Member{Field: inst})
		}
	}

	b.declType = f.TypeText
	b.resetField()
	b.buf.Reset()
	return nil
}

// trailingRun returns the entries after the last '}' excluding the
// terminator that triggered the close.
func (b *Builder) trailingRun() []Entry {
	start := b.buf.LastIndex(RoleStructClose) + 1
	end := b.buf.Len()
	if last, ok := b.buf.Last(); ok && last.Role == RoleTerminator {
		end--
	}
	return b.buf.Slice(start, end)
}

func (b *Builder) assembleField(typeText string) (*model.Field, error) {
	if !b.nameSet {
		pos := lexer.Pos{}
		if last, ok := b.buf.Last(); ok {
			pos = last.Tok.Pos
		}
		return nil, &MalformedFieldError{Pos: pos, Type: typeText}
	}

	f := &model.Field{
		Name:         b.name,
		TypeText:     typeText,
		PointerDepth: b.pointer,
		Array:        b.array,
		BitWidth:     b.bitWidth(),
	}
	if b.funcPtr > 0 {
		args := &model.FuncArgs{Void: true}
		if b.argsFrom >= 0 && b.argsTo >= b.argsFrom {
			if raw := Join(b.buf.Slice(b.argsFrom, b.argsTo)); raw != "" {
				args = &model.FuncArgs{Raw: raw}
			}
		}
		f.FuncPtr = args
	}
	return f, nil
}

func (b *Builder) bitWidth() string {
	colon := b.buf.LastIndex(RoleBitColon)
	if colon < 0 {
		return ""
	}
	return JoinRole(b.buf.Slice(colon+1, b.buf.Len()), RoleBitWidth)
}

func (b *Builder) resetField() {
	b.name = ""
	b.nameSet = false
	b.pointer = 0
	b.funcPtr = 0
	b.array = model.ArraySize{}
	b.argsFrom = -1
	b.argsTo = -1
}
