package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/seitarof/sc2xml/internal/builder"
	"github.com/seitarof/sc2xml/internal/lexer"
	"github.com/seitarof/sc2xml/internal/model"
)

type fixtureField struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Bits string `yaml:"bits,omitempty"`
	Size string `yaml:"size,omitempty"`
	Args string `yaml:"args,omitempty"`
}

type fixtureRecord struct {
	Kind       string          `yaml:"kind"`
	Name       string          `yaml:"name,omitempty"`
	Typedef    string          `yaml:"typedef,omitempty"`
	Attributes string          `yaml:"attributes,omitempty"`
	NestedName string          `yaml:"nested_name,omitempty"`
	Fields     []fixtureField  `yaml:"fields,omitempty"`
	Nested     []fixtureRecord `yaml:"nested,omitempty"`
}

type fixtureValue struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr,omitempty"`
}

type fixtureEnum struct {
	Name    string         `yaml:"name,omitempty"`
	Typedef string         `yaml:"typedef,omitempty"`
	Values  []fixtureValue `yaml:"values,omitempty"`
}

type fixtureCase struct {
	Name  string          `yaml:"name"`
	Src   string          `yaml:"src"`
	File  string          `yaml:"file"`
	Err   string          `yaml:"err"`
	Want  []fixtureRecord `yaml:"want"`
	Enums []fixtureEnum   `yaml:"enums"`
}

func loadCases(t *testing.T) []fixtureCase {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "cases.yaml"))
	if err != nil {
		t.Fatalf("read cases: %v", err)
	}
	var cases []fixtureCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		t.Fatalf("decode cases: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("no cases loaded")
	}
	return cases
}

func toFixture(r *model.StructRecord) fixtureRecord {
	out := fixtureRecord{
		Kind:       r.Kind.String(),
		Name:       r.Name,
		Typedef:    r.TypedefName,
		Attributes: r.Attributes,
		NestedName: r.NestedName,
	}
	for _, m := range r.Members {
		if m.Field != nil {
			out.Fields = append(out.Fields, toFieldFixture(*m.Field))
		}
		if m.Struct != nil {
			out.Nested = append(out.Nested, toFixture(m.Struct))
		}
	}
	return out
}

func toFieldFixture(f model.Field) fixtureField {
	out := fixtureField{Name: f.Name, Type: f.TypeString(), Bits: f.BitWidth}
	switch f.Array.Kind {
	case model.ArrayUnspecified:
		out.Size = "N/A"
	case model.ArrayExpression:
		out.Size = f.Array.Expr
	}
	if f.FuncPtr != nil {
		out.Args = f.FuncPtr.Text()
	}
	return out
}

func toFixtures(recs []*model.StructRecord) []fixtureRecord {
	var out []fixtureRecord
	for _, r := range recs {
		out = append(out, toFixture(r))
	}
	return out
}

func toEnumFixtures(enums []*model.Enum) []fixtureEnum {
	var out []fixtureEnum
	for _, e := range enums {
		fe := fixtureEnum{Name: e.Name, Typedef: e.TypedefName}
		for _, v := range e.Values {
			fe.Values = append(fe.Values, fixtureValue{Name: v.Name, Expr: v.Expr})
		}
		out = append(out, fe)
	}
	return out
}

func assertYAMLEqual(t *testing.T, what string, got, want interface{}) {
	t.Helper()
	g, err := yaml.Marshal(got)
	if err != nil {
		t.Fatalf("marshal got: %v", err)
	}
	w, err := yaml.Marshal(want)
	if err != nil {
		t.Fatalf("marshal want: %v", err)
	}
	if string(g) != string(w) {
		t.Fatalf("%s mismatch\n--- got ---\n%s\n--- want ---\n%s", what, g, w)
	}
}

func checkErrKind(t *testing.T, err error, kind string) {
	t.Helper()
	var ok bool
	switch kind {
	case "syntax":
		var target *SyntaxError
		ok = errors.As(err, &target)
	case "balance":
		var target *builder.StructBalanceError
		ok = errors.As(err, &target)
	case "malformed":
		var target *builder.MalformedFieldError
		ok = errors.As(err, &target)
	case "lexer":
		var target *lexer.Error
		ok = errors.As(err, &target)
	default:
		t.Fatalf("unknown error kind %q in fixture", kind)
	}
	if !ok {
		t.Fatalf("Parse() error = %v, want %s error", err, kind)
	}
}

func TestParse_Cases(t *testing.T) {
	p := New()
	for _, tc := range loadCases(t) {
		t.Run(tc.Name, func(t *testing.T) {
			name := "case.h"
			src := tc.Src
			if tc.File != "" {
				name = filepath.Join("testdata", tc.File)
				data, err := os.ReadFile(name)
				if err != nil {
					t.Fatalf("read %s: %v", name, err)
				}
				src = string(data)
			}

			c := &builder.Collector{}
			err := p.Parse(name, strings.NewReader(src), c)
			if tc.Err != "" {
				checkErrKind(t, err, tc.Err)
			} else if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			assertYAMLEqual(t, "records", toFixtures(c.Records), tc.Want)
			assertYAMLEqual(t, "enums", toEnumFixtures(c.Enums), tc.Enums)
		})
	}
}

func TestParse_BasicTypeFields(t *testing.T) {
	types := []string{
		"char", "short", "int", "long", "float", "double",
		"unsigned char", "unsigned long long", "signed short", "uint32_t",
	}
	p := New()
	for _, typ := range types {
		c := &builder.Collector{}
		src := fmt.Sprintf("struct s { %s name; };", typ)
		if err := p.Parse("basic.h", strings.NewReader(src), c); err != nil {
			t.Fatalf("Parse(%q) error = %v", src, err)
		}
		f := c.Records[0].Fields()[0]
		if f.Name != "name" || f.TypeText != typ {
			t.Fatalf("%q: field = %+v", typ, f)
		}
		if f.PointerDepth != 0 || f.Array.Kind != model.ArrayNone || f.BitWidth != "" || f.FuncPtr != nil {
			t.Fatalf("%q: plain field carries declarator state: %+v", typ, f)
		}
	}
}

func TestParse_PointerDepth(t *testing.T) {
	p := New()
	for k := 0; k <= 5; k++ {
		c := &builder.Collector{}
		src := fmt.Sprintf("struct s { char %sp; int (*%sfp)(void); };", strings.Repeat("*", k), strings.Repeat("*", k))
		if err := p.Parse("ptr.h", strings.NewReader(src), c); err != nil {
			t.Fatalf("Parse(%q) error = %v", src, err)
		}
		fields := c.Records[0].Fields()
		if fields[0].PointerDepth != k {
			t.Fatalf("k=%d: pointer depth = %d", k, fields[0].PointerDepth)
		}
		// The '*' introducing a function pointer is not a data pointer.
		if !fields[1].IsFunctionPointer() || fields[1].PointerDepth != k {
			t.Fatalf("k=%d: function pointer = %+v", k, fields[1])
		}
	}
}

func TestParse_Idempotent(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "common.h"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	p := New()
	run := func() string {
		c := &builder.Collector{}
		if err := p.Parse("common.h", strings.NewReader(string(data)), c); err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		out, err := yaml.Marshal(toFixtures(c.Records))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return string(out)
	}
	if first, second := run(), run(); first != second {
		t.Fatalf("second run differs\n%s\n---\n%s", first, second)
	}
}

func TestParse_SharedAcrossGoroutines(t *testing.T) {
	p := New()
	src := "typedef struct { int a; char *b; } pair_t; struct other { pair_t p[2]; };"

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &builder.Collector{}
			if err := p.Parse("shared.h", strings.NewReader(src), c); err != nil {
				errs <- err
				return
			}
			if len(c.Records) != 2 {
				errs <- fmt.Errorf("records = %d, want 2", len(c.Records))
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

type rejectSink struct{ err error }

func (s rejectSink) Emit(*model.StructRecord) error { return s.err }

func TestParse_SinkFailureAbortsUnit(t *testing.T) {
	boom := errors.New("write failed")
	err := New().Parse("sink.h", strings.NewReader("struct a { int x; }; struct b {"), rejectSink{err: boom})
	var se *builder.SinkError
	if !errors.As(err, &se) || !errors.Is(err, boom) {
		t.Fatalf("Parse() error = %v, want SinkError wrapping %v", err, boom)
	}
}

func TestParse_SyntaxErrorPosition(t *testing.T) {
	err := New().Parse("pos.h", strings.NewReader("struct s {\n\tint a b;\n};\n"), &builder.Collector{})
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("Parse() error = %v, want SyntaxError", err)
	}
	if se.Pos.File != "pos.h" || se.Pos.Line != 2 || se.Token.Text != "b" {
		t.Fatalf("SyntaxError = %+v", se)
	}
	if !strings.Contains(se.Error(), "pos.h:2:") {
		t.Fatalf("Error() = %q, want position", se.Error())
	}
}

type sliceSource struct {
	toks []lexer.Token
}

func (s *sliceSource) Next() (lexer.Token, error) {
	if len(s.toks) == 0 {
		return lexer.Token{Kind: lexer.EOF}, nil
	}
	t := s.toks[0]
	s.toks = s.toks[1:]
	return t, nil
}

func TestParseTokens_CustomSource(t *testing.T) {
	kw := func(s string) lexer.Token { return lexer.Token{Kind: lexer.Keyword, Text: s} }
	id := func(s string) lexer.Token { return lexer.Token{Kind: lexer.Identifier, Text: s} }
	pn := func(s string) lexer.Token { return lexer.Token{Kind: lexer.Punctuator, Text: s} }

	src := &sliceSource{toks: []lexer.Token{
		kw("union"), id("u"), pn("{"), kw("int"), id("i"), pn(";"), pn("}"), pn(";"),
	}}
	c := &builder.Collector{}
	if err := New().ParseTokens(src, c); err != nil {
		t.Fatalf("ParseTokens() error = %v", err)
	}
	if len(c.Records) != 1 || c.Records[0].Kind != model.KindUnion || c.Records[0].Name != "u" {
		t.Fatalf("records = %+v", c.Records)
	}
}
