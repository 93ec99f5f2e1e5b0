package resolver

import (
	"github.com/seitarof/sc2xml/internal/matcher"
)

// DefaultRules returns built-in rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		&FuncPointerRule{},
		&BitFieldRule{},
		&EmbeddedRule{},
		&BytePointerRule{},
		&RecordPointerRule{},
		&OpaquePointerRule{},
		&BasicRule{},
		&EnumRule{},
		&RecordRule{},
	}
}

// FuncPointerRule: function pointer -> uintptr.
type FuncPointerRule struct{}

func (r *FuncPointerRule) Name() string { return "func-pointer" }

func (r *FuncPointerRule) Try(b matcher.FieldBinding) (FieldPlan, bool) {
	if !b.Field.IsFunctionPointer() {
		return FieldPlan{}, false
	}
	return newPlan(b, StrategyFuncPointer, "uintptr"), true
}

// BitFieldRule: bit-fields have no Go layout equivalent.
type BitFieldRule struct{}

func (r *BitFieldRule) Name() string { return "bit-field" }

func (r *BitFieldRule) Try(b matcher.FieldBinding) (FieldPlan, bool) {
	if b.Field.BitWidth == "" {
		return FieldPlan{}, false
	}
	return skip(b, "bit-field of width "+b.Field.BitWidth), true
}

// EmbeddedRule: anonymous struct/union member -> embedded Go struct.
type EmbeddedRule struct{}

func (r *EmbeddedRule) Name() string { return "embedded" }

func (r *EmbeddedRule) Try(b matcher.FieldBinding) (FieldPlan, bool) {
	if !b.Embedded {
		return FieldPlan{}, false
	}
	return newPlan(b, StrategyEmbedded, b.TypeName), true
}

// BytePointerRule: char * -> *byte.
type BytePointerRule struct{}

func (r *BytePointerRule) Name() string { return "byte-pointer" }

func (r *BytePointerRule) Try(b matcher.FieldBinding) (FieldPlan, bool) {
	if b.Field.PointerDepth != 1 {
		return FieldPlan{}, false
	}
	switch matcher.NormalizeType(b.Field.TypeText) {
	case "char", "signed char", "unsigned char":
		return newPlan(b, StrategyBytePointer, "*byte"), true
	}
	return FieldPlan{}, false
}

// RecordPointerRule: pointer to an extracted record -> *T.
type RecordPointerRule struct{}

func (r *RecordPointerRule) Name() string { return "record-pointer" }

func (r *RecordPointerRule) Try(b matcher.FieldBinding) (FieldPlan, bool) {
	if b.Field.PointerDepth != 1 || b.Record == nil {
		return FieldPlan{}, false
	}
	return newPlan(b, StrategyRecordPointer, "*"+b.TypeName), true
}

// OpaquePointerRule: any other pointer -> uintptr.
type OpaquePointerRule struct{}

func (r *OpaquePointerRule) Name() string { return "opaque-pointer" }

func (r *OpaquePointerRule) Try(b matcher.FieldBinding) (FieldPlan, bool) {
	if b.Field.PointerDepth == 0 {
		return FieldPlan{}, false
	}
	return newPlan(b, StrategyOpaquePointer, "uintptr"), true
}

// BasicRule: C arithmetic and fixed-width types -> Go basic types (LP64).
type BasicRule struct{}

func (r *BasicRule) Name() string { return "basic" }

func (r *BasicRule) Try(b matcher.FieldBinding) (FieldPlan, bool) {
	goType, ok := basicGoTypes[matcher.NormalizeType(b.Field.TypeText)]
	if !ok {
		return FieldPlan{}, false
	}
	return newPlan(b, StrategyBasic, goType), true
}

// EnumRule: extracted enum -> its generated Go type.
type EnumRule struct{}

func (r *EnumRule) Name() string { return "enum" }

func (r *EnumRule) Try(b matcher.FieldBinding) (FieldPlan, bool) {
	if b.Enum == nil {
		return FieldPlan{}, false
	}
	return newPlan(b, StrategyEnum, b.TypeName), true
}

// RecordRule: extracted record by value -> T.
type RecordRule struct{}

func (r *RecordRule) Name() string { return "record" }

func (r *RecordRule) Try(b matcher.FieldBinding) (FieldPlan, bool) {
	if b.Record == nil || b.Field.PointerDepth != 0 {
		return FieldPlan{}, false
	}
	return newPlan(b, StrategyRecord, b.TypeName), true
}

var basicGoTypes = map[string]string{
	"char":               "int8",
	"signed char":        "int8",
	"unsigned char":      "uint8",
	"short":              "int16",
	"unsigned short":     "uint16",
	"int":                "int32",
	"unsigned int":       "uint32",
	"long":               "int64",
	"unsigned long":      "uint64",
	"long long":          "int64",
	"unsigned long long": "uint64",
	"float":              "float32",
	"double":             "float64",
	"_Bool":              "bool",
	"bool":               "bool",
	"int8_t":             "int8",
	"uint8_t":            "uint8",
	"int16_t":            "int16",
	"uint16_t":           "uint16",
	"int32_t":            "int32",
	"uint32_t":           "uint32",
	"int64_t":            "int64",
	"uint64_t":           "uint64",
	"size_t":             "uint64",
	"ssize_t":            "int64",
	"intptr_t":           "int64",
	"uintptr_t":          "uintptr",
	"u8":                 "uint8",
	"u16":                "uint16",
	"u32":                "uint32",
	"u64":                "uint64",
	"s8":                 "int8",
	"s16":                "int16",
	"s32":                "int32",
	"s64":                "int64",
}

func newPlan(b matcher.FieldBinding, strategy Strategy, goType string) FieldPlan {
	return FieldPlan{
		Binding:  b,
		Strategy: strategy,
		GoType:   goType,
	}
}
