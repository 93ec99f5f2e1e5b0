package resolver

import (
	"github.com/seitarof/sc2xml/internal/matcher"
	"github.com/seitarof/sc2xml/internal/model"
)

// FieldPlan describes how one C field is declared in Go.
type FieldPlan struct {
	Binding  matcher.FieldBinding
	Strategy Strategy
	GoType   string
	// Reason explains a StrategySkip.
	Reason string
}

// RecordPlan describes one generated Go struct type.
type RecordPlan struct {
	Record *model.StructRecord
	GoName string
	Fields []FieldPlan
}

// EnumPlan describes one generated Go enum type and its constants.
type EnumPlan struct {
	Enum   *model.Enum
	GoName string
	Values []EnumValuePlan
}

// EnumValuePlan is one constant. Expr is a Go constant expression; an
// empty Expr with a Reason means the value could not be expressed.
type EnumValuePlan struct {
	CName  string
	GoName string
	Expr   string
	Reason string
}

// UnitPlan is everything generated for one parsed header.
type UnitPlan struct {
	Source  string
	Records []RecordPlan
	Enums   []EnumPlan
}

// Strategy identifies how a field type was mapped.
type Strategy int

const (
	StrategyBasic Strategy = iota
	StrategyEnum
	StrategyRecord
	StrategyRecordPointer
	StrategyBytePointer
	StrategyOpaquePointer
	StrategyFuncPointer
	StrategyEmbedded
	StrategySkip
)

var strategyNames = [...]string{
	StrategyBasic:         "basic",
	StrategyEnum:          "enum",
	StrategyRecord:        "record",
	StrategyRecordPointer: "record-pointer",
	StrategyBytePointer:   "byte-pointer",
	StrategyOpaquePointer: "opaque-pointer",
	StrategyFuncPointer:   "func-pointer",
	StrategyEmbedded:      "embedded",
	StrategySkip:          "skip",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return "unknown"
	}
	return strategyNames[s]
}
