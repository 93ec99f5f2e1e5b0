package parser

// scope records typedef names visible in a block.
type scope struct {
	parent *scope
	kv     map[string]bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, kv: make(map[string]bool)}
}

func (s *scope) isTypedef(name string) bool {
	if typedef, ok := s.kv[name]; ok {
		return typedef
	}
	if s.parent != nil {
		return s.parent.isTypedef(name)
	}
	return false
}

// define binds name in s. A plain declaration shadows an outer typedef.
func (s *scope) define(name string, typedef bool) {
	s.kv[name] = typedef
}
