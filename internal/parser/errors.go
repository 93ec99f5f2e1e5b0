package parser

import (
	"fmt"

	"github.com/seitarof/sc2xml/internal/lexer"
)

// SyntaxError reports input the grammar does not accept.
type SyntaxError struct {
	Pos   lexer.Pos
	Token lexer.Token
	Msg   string
}

func (e *SyntaxError) Error() string {
	if e.Token.Kind == lexer.EOF {
		return fmt.Sprintf("syntax error at %s: %s, got EOF", e.Pos, e.Msg)
	}
	return fmt.Sprintf("syntax error at %s: %s, got %q", e.Pos, e.Msg, e.Token.Text)
}

type parseErrorBreakOut struct {
	err error
}
