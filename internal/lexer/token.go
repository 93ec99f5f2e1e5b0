package lexer

import "fmt"

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Identifier
	Constant
	StringLiteral
	Punctuator
	Keyword
)

var kindToStr = [...]string{
	EOF:           "EOF",
	Identifier:    "identifier",
	Constant:      "constant",
	StringLiteral: "string",
	Punctuator:    "punctuator",
	Keyword:       "keyword",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindToStr) {
		return "unknown"
	}
	return kindToStr[k]
}

var keywords = map[string]bool{
	"auto":     true,
	"break":    true,
	"case":     true,
	"char":     true,
	"const":    true,
	"continue": true,
	"default":  true,
	"do":       true,
	"double":   true,
	"else":     true,
	"enum":     true,
	"extern":   true,
	"float":    true,
	"for":      true,
	"goto":     true,
	"if":       true,
	"int":      true,
	"long":     true,
	"register": true,
	"return":   true,
	"short":    true,
	"signed":   true,
	"sizeof":   true,
	"static":   true,
	"struct":   true,
	"switch":   true,
	"typedef":  true,
	"union":    true,
	"unsigned": true,
	"void":     true,
	"volatile": true,
	"while":    true,

	"__attribute__": true,
	"__attribute":   true,
}

// IsKeyword reports whether s lexes as a keyword.
func IsKeyword(s string) bool {
	return keywords[s]
}

// Pos is a position in a source file. Columns count tabs as four.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Token is one classified lexeme with its raw text.
type Token struct {
	Kind Kind
	Text string
	Pos  Pos
}

// Is reports whether the token is a punctuator or keyword spelled s.
func (t Token) Is(s string) bool {
	return (t.Kind == Punctuator || t.Kind == Keyword) && t.Text == s
}

func (t Token) String() string {
	if t.Kind == EOF {
		return fmt.Sprintf("EOF at %s", t.Pos)
	}
	return fmt.Sprintf("%q at %s", t.Text, t.Pos)
}
