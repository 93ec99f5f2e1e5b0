package lexer

import "fmt"

// Error is a lexical error with the position it was detected at.
type Error struct {
	Msg string
	Pos Pos
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Msg, e.Pos)
}
