package resolver

import (
	"github.com/seitarof/sc2xml/internal/matcher"
)

type constRef struct {
	goName string
	enum   string
}

// PlanEnums maps every enum of the index to a Go type with constants.
// Enumerators may only reference enumerators resolved before them, as in C.
// Implicit values continue from the previous constant; a value that cannot
// be written in Go is reported with a Reason, along with the implicit values
// that follow it.
func PlanEnums(idx matcher.TypeIndex) []EnumPlan {
	resolved := map[string]constRef{}
	plans := make([]EnumPlan, 0, len(idx.Enums()))

	for _, e := range idx.Enums() {
		plan := EnumPlan{Enum: e, GoName: idx.EnumGoName(e)}
		ident := func(name string) (string, bool) {
			ref, ok := resolved[name]
			if !ok {
				return "", false
			}
			if ref.enum == plan.GoName {
				return ref.goName, true
			}
			return plan.GoName + "(" + ref.goName + ")", true
		}

		prev := ""
		for i, v := range e.Values {
			vp := EnumValuePlan{CName: v.Name, GoName: idx.ConstGoName(v.Name)}
			switch {
			case v.Expr != "":
				expr, err := goExpr(v.Expr, ident)
				if err != nil {
					vp.Reason = err.Error()
				} else {
					vp.Expr = expr
				}
			case i == 0:
				vp.Expr = "0"
			case prev != "":
				vp.Expr = prev + " + 1"
			default:
				vp.Reason = "follows an unresolved value"
			}

			prev = ""
			if vp.Expr != "" {
				prev = vp.GoName
				if _, dup := resolved[v.Name]; !dup {
					resolved[v.Name] = constRef{goName: vp.GoName, enum: plan.GoName}
				}
			}
			plan.Values = append(plan.Values, vp)
		}
		plans = append(plans, plan)
	}
	return plans
}
