package parser

import (
	"io"

	"github.com/seitarof/sc2xml/internal/builder"
	"github.com/seitarof/sc2xml/internal/lexer"
)

// TokenSource yields classified tokens. After EOF every call keeps
// returning EOF.
type TokenSource interface {
	Next() (lexer.Token, error)
}

// Parser extracts struct and union layouts from C declarations.
type Parser interface {
	Parse(name string, r io.Reader, sink builder.Sink) error
	ParseTokens(src TokenSource, sink builder.Sink) error
}

type parserImpl struct{}

// New returns default parser. The returned value holds no per-unit state
// and may be shared between goroutines.
func New() Parser {
	return &parserImpl{}
}

func (p *parserImpl) Parse(name string, r io.Reader, sink builder.Sink) error {
	return p.ParseTokens(lexer.Lex(name, r), sink)
}

func (p *parserImpl) ParseTokens(src TokenSource, sink builder.Sink) (errRet error) {
	e := newEngine(src, builder.New(sink))

	defer func() {
		if r := recover(); r != nil {
			peb := r.(parseErrorBreakOut) // Will re-panic if not a breakout.
			errRet = peb.err
		}
	}()
	e.advance()
	e.advance()
	e.parseTranslationUnit()
	return e.b.Finish(e.curt.Pos)
}
