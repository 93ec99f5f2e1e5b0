package builder

import "github.com/seitarof/sc2xml/internal/model"

// Frame is the state of one open struct or union.
type Frame struct {
	Kind              model.Kind
	IsTypedef         bool
	HasTrailingName   bool
	PendingClose      int
	NestedNamePending bool
	// TypeText is how a field whose type is this struct is spelled,
	// e.g. "struct foo" or "union".
	TypeText string
	Record   *model.StructRecord
}

// Stack tracks nested struct scopes, innermost last.
type Stack struct {
	frames []*Frame
}

func (s *Stack) Push(f *Frame) {
	s.frames = append(s.frames, f)
}

// Pop removes and returns the innermost frame, or nil when empty.
func (s *Stack) Pop() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f
}

// Top returns the innermost frame, or nil when empty.
func (s *Stack) Top() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *Stack) Len() int { return len(s.frames) }

func (s *Stack) Empty() bool { return len(s.frames) == 0 }
