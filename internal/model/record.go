package model

import "strings"

// Kind distinguishes struct from union records.
type Kind int

const (
	KindStruct Kind = iota
	KindUnion
)

func (k Kind) String() string {
	if k == KindUnion {
		return "union"
	}
	return "struct"
}

// ArrayKind tells whether a field is an array and whether its size was given.
type ArrayKind int

const (
	ArrayNone ArrayKind = iota
	ArrayUnspecified
	ArrayExpression
)

// ArraySize is the raw text between '[' and ']' of an array declarator.
type ArraySize struct {
	Kind ArrayKind
	Expr string
}

// FuncArgs is the parameter-list text of a function-pointer field.
// Void is set when the list was empty.
type FuncArgs struct {
	Void bool
	Raw  string
}

// Text renders the argument list the way the document writes it.
func (a FuncArgs) Text() string {
	if a.Void || a.Raw == "" {
		return "void"
	}
	return a.Raw
}

// Field is one completed struct member declarator.
type Field struct {
	Name         string
	TypeText     string
	PointerDepth int
	Array        ArraySize
	BitWidth     string
	FuncPtr      *FuncArgs
}

// TypeString returns the base type followed by one '*' per pointer level.
func (f Field) TypeString() string {
	if f.PointerDepth <= 0 {
		return f.TypeText
	}
	return f.TypeText + " " + strings.Repeat("*", f.PointerDepth)
}

// IsFunctionPointer reports whether the field was declared as (*name)(...).
func (f Field) IsFunctionPointer() bool {
	return f.FuncPtr != nil
}

// Member is either a Field or a nested record, in declaration order.
type Member struct {
	Field  *Field
	Struct *StructRecord
}

// StructRecord is the emitted description of one struct or union.
type StructRecord struct {
	Kind        Kind
	Name        string
	TypedefName string
	Attributes  string
	NestedName  string
	Members     []Member
}

// Fields returns the direct field members, skipping nested records.
func (r *StructRecord) Fields() []Field {
	out := make([]Field, 0, len(r.Members))
	for _, m := range r.Members {
		if m.Field != nil {
			out = append(out, *m.Field)
		}
	}
	return out
}

// Nested returns the records defined inside r, in order.
func (r *StructRecord) Nested() []*StructRecord {
	var out []*StructRecord
	for _, m := range r.Members {
		if m.Struct != nil {
			out = append(out, m.Struct)
		}
	}
	return out
}

// DisplayName picks the most specific name the record carries.
func (r *StructRecord) DisplayName() string {
	switch {
	case r.TypedefName != "":
		return r.TypedefName
	case r.Name != "":
		return r.Name
	default:
		return r.NestedName
	}
}

// EnumValue is one enumerator with its raw constant expression, if any.
type EnumValue struct {
	Name string
	Expr string
}

// Enum is a captured enum specifier body.
type Enum struct {
	Name        string
	TypedefName string
	Values      []EnumValue
}
