package builder

import (
	"fmt"

	"github.com/seitarof/sc2xml/internal/lexer"
)

// MalformedFieldError is returned when a field ends without a name.
type MalformedFieldError struct {
	Pos  lexer.Pos
	Type string
}

func (e *MalformedFieldError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("field of type %q has no name at %s", e.Type, e.Pos)
	}
	return fmt.Sprintf("field has no name at %s", e.Pos)
}

// StructBalanceError is returned when input ends inside a struct or union.
type StructBalanceError struct {
	Pos  lexer.Pos
	Open int
}

func (e *StructBalanceError) Error() string {
	return fmt.Sprintf("%d unterminated struct/union at %s", e.Open, e.Pos)
}

// SinkError wraps a failure of the output sink.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("emit record: %v", e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }
