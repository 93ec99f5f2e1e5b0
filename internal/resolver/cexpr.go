package resolver

import (
	"fmt"
	"go/parser"
	"strings"
	"unicode"
)

// C operators whose Go counterparts yield bool or do not exist.
var rejectedOps = map[string]bool{
	"!": true, "&&": true, "||": true, "?": true, ":": true, ",": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"sizeof": true, "_Alignof": true, "__alignof__": true,
}

// goExpr rewrites a space-joined C integer constant expression into Go
// syntax. ident maps a C identifier to Go source; a nil ident, or one
// reporting false, rejects the expression.
func goExpr(text string, ident func(string) (string, bool)) (string, error) {
	toks := strings.Fields(text)
	if len(toks) == 0 {
		return "", fmt.Errorf("empty expression")
	}
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		switch {
		case rejectedOps[tok]:
			return "", fmt.Errorf("operator %q has no integer constant form", tok)
		case tok == "~":
			tok = "^"
		case isNumber(tok):
			tok = trimIntSuffix(tok)
		case isIdent(tok):
			if ident == nil {
				return "", fmt.Errorf("unknown identifier %q", tok)
			}
			g, ok := ident(tok)
			if !ok {
				return "", fmt.Errorf("unknown identifier %q", tok)
			}
			tok = g
		}
		out = append(out, tok)
	}
	expr := strings.Join(out, " ")
	if _, err := parser.ParseExpr(expr); err != nil {
		return "", fmt.Errorf("not a Go expression: %w", err)
	}
	return expr, nil
}

func isNumber(tok string) bool {
	return tok != "" && unicode.IsDigit(rune(tok[0]))
}

func isIdent(tok string) bool {
	r := rune(tok[0])
	return r == '_' || unicode.IsLetter(r)
}

func trimIntSuffix(tok string) string {
	if strings.ContainsAny(tok, ".") || isHexFloat(tok) {
		return tok
	}
	return strings.TrimRight(tok, "uUlL")
}

func isHexFloat(tok string) bool {
	lower := strings.ToLower(tok)
	return strings.HasPrefix(lower, "0x") && strings.Contains(lower, "p")
}
