package lexer

import (
	"fmt"
	"io"
	"strings"
)

// Punctuators ordered so that longer spellings are tried first.
var punctuators = []string{
	"...", "<<=", ">>=",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"*=", "/=", "%=", "+=", "-=", "&=", "^=", "|=", "##",
	"[", "]", "(", ")", "{", "}", ".", "&", "*", "+", "-", "~", "!",
	"/", "%", "<", ">", "^", "|", "?", ":", ";", "=", ",", "#",
}

// Lexer turns source text into tokens. Comments, whitespace and
// preprocessor directive lines are dropped; line splices are honoured.
type Lexer struct {
	r    io.Reader
	src  string
	off  int
	pos  Pos
	bol  bool
	read bool
	err  error
}

// Lex returns a lexer over r. name is only used for positions.
// The reader is consumed on the first call to Next.
func Lex(name string, r io.Reader) *Lexer {
	return &Lexer{
		r:   r,
		pos: Pos{File: name, Line: 1, Col: 1},
		bol: true,
	}
}

// All drains l and returns every token up to, but not including, EOF.
func All(l *Lexer) ([]Token, error) {
	var toks []Token
	for {
		t, err := l.Next()
		if err != nil {
			return toks, err
		}
		if t.Kind == EOF {
			return toks, nil
		}
		toks = append(toks, t)
	}
}

// Next returns the next token. Once EOF or an error is returned every
// further call returns the same.
func (lx *Lexer) Next() (Token, error) {
	if !lx.read {
		lx.read = true
		b, err := io.ReadAll(lx.r)
		if err != nil {
			lx.err = fmt.Errorf("read %s: %w", lx.pos.File, err)
		}
		lx.src = string(b)
	}
	if lx.err != nil {
		return Token{Kind: EOF, Pos: lx.pos}, lx.err
	}
	t, err := lx.scan()
	if err != nil {
		lx.err = err
	}
	return t, err
}

func (lx *Lexer) errorf(format string, args ...interface{}) error {
	return &Error{Msg: fmt.Sprintf(format, args...), Pos: lx.pos}
}

func (lx *Lexer) peekByte(n int) byte {
	if lx.off+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.off+n]
}

func (lx *Lexer) advance(n int) {
	for i := 0; i < n && lx.off < len(lx.src); i++ {
		switch lx.src[lx.off] {
		case '\n':
			lx.pos.Line++
			lx.pos.Col = 1
			lx.bol = true
		case '\t':
			lx.pos.Col += 4
		default:
			lx.pos.Col++
		}
		lx.off++
	}
}

func (lx *Lexer) scan() (Token, error) {
	for {
		if err := lx.skipBlank(); err != nil {
			return Token{}, err
		}
		if lx.off >= len(lx.src) {
			return Token{Kind: EOF, Pos: lx.pos}, nil
		}
		if lx.src[lx.off] == '#' && lx.bol {
			if err := lx.skipDirective(); err != nil {
				return Token{}, err
			}
			continue
		}
		break
	}

	start := lx.pos
	startOff := lx.off
	c := lx.src[lx.off]
	lx.bol = false

	switch {
	case isIdentStart(c):
		if (c == 'L' || c == 'u' || c == 'U') && (lx.peekByte(1) == '\'' || lx.peekByte(1) == '"') {
			lx.advance(1)
			return lx.scanQuoted(start, startOff)
		}
		for lx.off < len(lx.src) && isIdentTail(lx.src[lx.off]) {
			lx.advance(1)
		}
		text := lx.src[startOff:lx.off]
		kind := Identifier
		if keywords[text] {
			kind = Keyword
		}
		return Token{Kind: kind, Text: text, Pos: start}, nil
	case isDigit(c) || (c == '.' && isDigit(lx.peekByte(1))):
		lx.scanNumber()
		return Token{Kind: Constant, Text: lx.src[startOff:lx.off], Pos: start}, nil
	case c == '\'' || c == '"':
		return lx.scanQuoted(start, startOff)
	}

	rest := lx.src[lx.off:]
	for _, p := range punctuators {
		if strings.HasPrefix(rest, p) {
			lx.advance(len(p))
			return Token{Kind: Punctuator, Text: p, Pos: start}, nil
		}
	}
	return Token{}, lx.errorf("unexpected character %q", c)
}

// skipBlank consumes whitespace, comments and line splices.
func (lx *Lexer) skipBlank() error {
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v' || c == '\n':
			lx.advance(1)
		case c == '\\' && (lx.peekByte(1) == '\n' || (lx.peekByte(1) == '\r' && lx.peekByte(2) == '\n')):
			bol := lx.bol
			if lx.peekByte(1) == '\r' {
				lx.advance(3)
			} else {
				lx.advance(2)
			}
			lx.bol = bol
		case c == '/' && lx.peekByte(1) == '*':
			if err := lx.skipBlockComment(); err != nil {
				return err
			}
		case c == '/' && lx.peekByte(1) == '/':
			for lx.off < len(lx.src) && lx.src[lx.off] != '\n' {
				lx.advance(1)
			}
		default:
			return nil
		}
	}
	return nil
}

func (lx *Lexer) skipBlockComment() error {
	bol := lx.bol
	start := lx.pos
	lx.advance(2)
	for {
		if lx.off >= len(lx.src) {
			return &Error{Msg: "unclosed comment", Pos: start}
		}
		if lx.src[lx.off] == '*' && lx.peekByte(1) == '/' {
			lx.advance(2)
			break
		}
		lx.advance(1)
	}
	// A comment does not end the leading whitespace of a line.
	if bol {
		lx.bol = true
	}
	return nil
}

// skipDirective drops a whole preprocessor line including continuations.
func (lx *Lexer) skipDirective() error {
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		switch {
		case c == '\n':
			lx.advance(1)
			return nil
		case c == '\\' && lx.peekByte(1) == '\n':
			lx.advance(2)
		case c == '\\' && lx.peekByte(1) == '\r' && lx.peekByte(2) == '\n':
			lx.advance(3)
		case c == '/' && lx.peekByte(1) == '*':
			if err := lx.skipBlockComment(); err != nil {
				return err
			}
		default:
			lx.advance(1)
		}
	}
	return nil
}

// scanNumber consumes a preprocessing number: digits, letters, '.', '_'
// and signed exponents.
func (lx *Lexer) scanNumber() {
	for lx.off < len(lx.src) {
		c := lx.src[lx.off]
		if (c == '+' || c == '-') && lx.off > 0 {
			prev := lx.src[lx.off-1]
			if prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P' {
				lx.advance(1)
				continue
			}
			return
		}
		if isIdentTail(c) || c == '.' {
			lx.advance(1)
			continue
		}
		return
	}
}

func (lx *Lexer) scanQuoted(start Pos, startOff int) (Token, error) {
	quote := lx.src[lx.off]
	lx.advance(1)
	for {
		if lx.off >= len(lx.src) || lx.src[lx.off] == '\n' {
			if quote == '"' {
				return Token{}, &Error{Msg: "unterminated string literal", Pos: start}
			}
			return Token{}, &Error{Msg: "unterminated character constant", Pos: start}
		}
		c := lx.src[lx.off]
		if c == '\\' {
			lx.advance(2)
			continue
		}
		lx.advance(1)
		if c == quote {
			break
		}
	}
	kind := Constant
	if quote == '"' {
		kind = StringLiteral
	}
	return Token{Kind: kind, Text: lx.src[startOff:lx.off], Pos: start}, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentTail(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
