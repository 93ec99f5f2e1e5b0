package lexer

import (
	"errors"
	"strings"
	"testing"
)

func lexString(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := All(Lex("test.h", strings.NewReader(src)))
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	return toks
}

func texts(toks []Token) string {
	parts := make([]string, 0, len(toks))
	for _, tok := range toks {
		parts = append(parts, tok.Text)
	}
	return strings.Join(parts, " ")
}

func TestLex_Classification(t *testing.T) {
	toks := lexString(t, `struct foo { unsigned int x1:7; char *s; } __attribute__((packed));`)

	want := []struct {
		kind Kind
		text string
	}{
		{Keyword, "struct"},
		{Identifier, "foo"},
		{Punctuator, "{"},
		{Keyword, "unsigned"},
		{Keyword, "int"},
		{Identifier, "x1"},
		{Punctuator, ":"},
		{Constant, "7"},
		{Punctuator, ";"},
	}
	if len(toks) < len(want) {
		t.Fatalf("got %d tokens, want at least %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Text != w.text {
			t.Fatalf("token %d = %s %q, want %s %q", i, toks[i].Kind, toks[i].Text, w.kind, w.text)
		}
	}
	attr := toks[len(toks)-7]
	if attr.Kind != Keyword || attr.Text != "__attribute__" {
		t.Fatalf("attribute token = %s %q", attr.Kind, attr.Text)
	}
}

func TestLex_SkipsCommentsAndDirectives(t *testing.T) {
	src := "/* header */\n#ifndef FOO_H\n#define FOO(a, b) \\\n  struct a##b { int x; };\n  # include <stdio.h>\nint a; // trailing\n#endif\n"
	got := texts(lexString(t, src))
	if got != "int a ;" {
		t.Fatalf("tokens = %q, want %q", got, "int a ;")
	}
}

func TestLex_Punctuators(t *testing.T) {
	got := texts(lexString(t, "a<<=b->c...d>>e!=f&&g"))
	want := "a <<= b -> c ... d >> e != f && g"
	if got != want {
		t.Fatalf("tokens = %q, want %q", got, want)
	}
}

func TestLex_Literals(t *testing.T) {
	toks := lexString(t, `x = 0x1Fu + 1.5e-3f + 'a' + '\'' + L"wide" + "s\"q";`)
	var consts, strs []string
	for _, tok := range toks {
		switch tok.Kind {
		case Constant:
			consts = append(consts, tok.Text)
		case StringLiteral:
			strs = append(strs, tok.Text)
		}
	}
	if strings.Join(consts, "|") != `0x1Fu|1.5e-3f|'a'|'\''` {
		t.Fatalf("constants = %q", consts)
	}
	if strings.Join(strs, "|") != `L"wide"|"s\"q"` {
		t.Fatalf("strings = %q", strs)
	}
}

func TestLex_Positions(t *testing.T) {
	toks := lexString(t, "int\n\tvalue;")
	if toks[1].Pos.Line != 2 || toks[1].Pos.Col != 5 {
		t.Fatalf("pos = %s, want line 2 col 5", toks[1].Pos)
	}
}

func TestLex_UnclosedComment(t *testing.T) {
	_, err := All(Lex("bad.h", strings.NewReader("int a; /* never closed")))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var lexErr *Error
	if !errors.As(err, &lexErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if !strings.Contains(err.Error(), "bad.h:1:8") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLex_EOFIsSticky(t *testing.T) {
	lx := Lex("e.h", strings.NewReader(""))
	for i := 0; i < 2; i++ {
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if tok.Kind != EOF {
			t.Fatalf("kind = %s, want EOF", tok.Kind)
		}
	}
}
