package builder

import (
	"strings"

	"github.com/seitarof/sc2xml/internal/lexer"
)

// Role is the syntactic role a token had when the grammar consumed it.
type Role int

const (
	RoleOther Role = iota
	RoleSpecifier
	RolePointer
	RoleName
	RoleArrayOpen
	RoleArrayExpr
	RoleArrayClose
	RoleBitColon
	RoleBitWidth
	RoleParamOpen
	RoleParam
	RoleParamClose
	RoleAttribute
	RoleStructOpen
	RoleStructClose
	RoleTerminator
)

// Entry is a buffered token together with its role.
type Entry struct {
	Tok  lexer.Token
	Role Role
}

// LineBuffer holds the tokens consumed since the last field or struct
// boundary.
type LineBuffer struct {
	entries []Entry
}

// Append adds tok and returns its index.
func (b *LineBuffer) Append(tok lexer.Token, role Role) int {
	b.entries = append(b.entries, Entry{Tok: tok, Role: role})
	return len(b.entries) - 1
}

func (b *LineBuffer) Len() int { return len(b.entries) }

func (b *LineBuffer) At(i int) Entry { return b.entries[i] }

// Last returns the most recent entry.
func (b *LineBuffer) Last() (Entry, bool) {
	if len(b.entries) == 0 {
		return Entry{}, false
	}
	return b.entries[len(b.entries)-1], true
}

// Slice returns entries in [from, to).
func (b *LineBuffer) Slice(from, to int) []Entry {
	if from < 0 {
		from = 0
	}
	if to > len(b.entries) {
		to = len(b.entries)
	}
	if from >= to {
		return nil
	}
	return b.entries[from:to]
}

// LastIndex returns the index of the last entry with role r, or -1.
func (b *LineBuffer) LastIndex(r Role) int {
	for i := len(b.entries) - 1; i >= 0; i-- {
		if b.entries[i].Role == r {
			return i
		}
	}
	return -1
}

// Reset drops every entry.
func (b *LineBuffer) Reset() {
	b.entries = b.entries[:0]
}

// Join space-joins the token texts of entries.
func Join(entries []Entry) string {
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(e.Tok.Text)
	}
	return sb.String()
}

// JoinRole space-joins the entries that have role r.
func JoinRole(entries []Entry, r Role) string {
	var sb strings.Builder
	for _, e := range entries {
		if e.Role != r {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(e.Tok.Text)
	}
	return sb.String()
}
