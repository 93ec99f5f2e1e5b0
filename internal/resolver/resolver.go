package resolver

import (
	"fmt"

	"github.com/seitarof/sc2xml/internal/matcher"
	"github.com/seitarof/sc2xml/internal/model"
)

// Resolver maps bound C fields to Go field declarations.
type Resolver interface {
	Resolve(bindings []matcher.FieldBinding) []FieldPlan
}

// Rule tries to map the element type of one bound field. Array dimensions
// are applied by the resolver after a rule matches.
type Rule interface {
	Name() string
	Try(b matcher.FieldBinding) (FieldPlan, bool)
}

type resolverImpl struct {
	rules []Rule
}

// New builds resolver with rule chain.
func New(rules ...Rule) Resolver {
	return &resolverImpl{rules: rules}
}

func (r *resolverImpl) Resolve(bindings []matcher.FieldBinding) []FieldPlan {
	plans := make([]FieldPlan, 0, len(bindings))
	kept := ""
	for _, b := range bindings {
		plan := r.resolveOne(b)
		if b.Owner != nil && b.Owner.Kind == model.KindUnion && plan.Strategy != StrategySkip {
			// Go has no unions; the first representable member stands in.
			if kept != "" {
				plan = skip(b, "union member overlaps "+kept)
			} else {
				kept = b.GoName
			}
		}
		plans = append(plans, plan)
	}
	return plans
}

func (r *resolverImpl) resolveOne(b matcher.FieldBinding) FieldPlan {
	elem := b
	elem.Field.Array = model.ArraySize{}
	for _, rule := range r.rules {
		plan, ok := rule.Try(elem)
		if !ok {
			continue
		}
		plan.Binding = b
		if plan.Strategy == StrategySkip {
			return plan
		}
		return withArray(plan)
	}
	return skip(b, fmt.Sprintf("unsupported type %q", b.Field.TypeString()))
}

func withArray(plan FieldPlan) FieldPlan {
	switch a := plan.Binding.Field.Array; a.Kind {
	case model.ArrayUnspecified:
		return skip(plan.Binding, "flexible array member")
	case model.ArrayExpression:
		size, err := goExpr(a.Expr, nil)
		if err != nil {
			return skip(plan.Binding, fmt.Sprintf("array size %q: %v", a.Expr, err))
		}
		plan.GoType = "[" + size + "]" + plan.GoType
	}
	return plan
}

func skip(b matcher.FieldBinding, reason string) FieldPlan {
	return FieldPlan{Binding: b, Strategy: StrategySkip, Reason: reason}
}
