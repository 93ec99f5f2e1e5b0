package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/seitarof/sc2xml/internal/builder"
	"github.com/seitarof/sc2xml/internal/generator"
	"github.com/seitarof/sc2xml/internal/matcher"
	"github.com/seitarof/sc2xml/internal/model"
	"github.com/seitarof/sc2xml/internal/parser"
	"github.com/seitarof/sc2xml/internal/resolver"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	return string(b)
}

func newTestRunner(p *mockParser, pp *mockPreprocessor, g *mockGenerator) Runner {
	return NewRunner(p, pp, matcher.NewFieldMatcher(), resolver.New(resolver.DefaultRules()...), g)
}

func TestRunner_Run_WritesDocumentPerHeader(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.h":       "alpha",
		"b.h":       "beta",
		"notes.txt": "ignored",
		"old.h.xml": "<sc2xml></sc2xml>",
	})

	p := &mockParser{}
	r := newTestRunner(p, &mockPreprocessor{}, &mockGenerator{})
	if err := r.Run(context.Background(), &Config{Inputs: []string{dir}, Jobs: 2}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := p.parsed(); len(got) != 2 {
		t.Fatalf("parsed %v, want a.h and b.h", got)
	}
	a := readFile(t, filepath.Join(dir, "a.h.xml"))
	if !strings.Contains(a, "<struct_name>alpha</struct_name>") {
		t.Fatalf("a.h.xml missing record:\n%s", a)
	}
	if !strings.HasPrefix(a, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Fatalf("a.h.xml missing header:\n%s", a)
	}
	b := readFile(t, filepath.Join(dir, "b.h.xml"))
	if !strings.Contains(b, "<struct_name>beta</struct_name>") {
		t.Fatalf("b.h.xml missing record:\n%s", b)
	}
}

func TestRunner_Run_StubReplacesHeader(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"x.stub.h": "stub",
		"x.h":      "plain",
	})

	p := &mockParser{}
	pp := &mockPreprocessor{}
	r := newTestRunner(p, pp, &mockGenerator{})
	if err := r.Run(context.Background(), &Config{Inputs: []string{dir}, Jobs: 1}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(pp.calls) != 1 {
		t.Fatalf("preprocessor calls = %d, want 1", len(pp.calls))
	}
	if pp.calls[0][0] != filepath.Join(dir, "x.stub.h") || pp.calls[0][1] != filepath.Join(dir, "x.gen.h") {
		t.Fatalf("preprocessor call = %v", pp.calls[0])
	}
	if got := p.parsed(); len(got) != 1 || got[0] != filepath.Join(dir, "x.gen.h") {
		t.Fatalf("parsed %v, want only x.gen.h", got)
	}
	if out := readFile(t, filepath.Join(dir, "x.h.xml")); !strings.Contains(out, "<struct_name>expanded</struct_name>") {
		t.Fatalf("x.h.xml not built from the stub:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "x.gen.h")); !os.IsNotExist(err) {
		t.Fatalf("x.gen.h left behind: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "x.stub.h.xml")); !os.IsNotExist(err) {
		t.Fatalf("output named after the stub: %v", err)
	}
}

func TestRunner_Run_FailuresAreSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"bad.h":     "bad",
		"good.h":    "good",
		"notes.txt": "text",
	})

	p := &mockParser{fail: map[string]error{"bad.h": errors.New("syntax error")}}
	r := newTestRunner(p, &mockPreprocessor{}, &mockGenerator{})
	cfg := &Config{
		Inputs: []string{dir, filepath.Join(dir, "missing.h"), filepath.Join(dir, "notes.txt")},
		Jobs:   2,
	}

	err := r.Run(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "3 of 4 inputs failed") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "good.h.xml")); err != nil {
		t.Fatalf("good.h.xml not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.h.xml")); !os.IsNotExist(err) {
		t.Fatalf("bad.h.xml should not exist: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestRunner_Run_PreprocessFailure(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"x.stub.h": "stub"})

	p := &mockParser{}
	r := newTestRunner(p, &mockPreprocessor{err: errors.New("gcc: not found")}, &mockGenerator{})
	if err := r.Run(context.Background(), &Config{Inputs: []string{dir}, Jobs: 1}); err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(p.parsed()) != 0 {
		t.Fatalf("parser should not run after a failed expansion")
	}
	if _, err := os.Stat(filepath.Join(dir, "x.h.xml")); !os.IsNotExist(err) {
		t.Fatalf("x.h.xml should not exist: %v", err)
	}
}

func TestRunner_Run_OutDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "xml")
	writeFiles(t, dir, map[string]string{"a.h": "alpha"})

	r := newTestRunner(&mockParser{}, &mockPreprocessor{}, &mockGenerator{})
	cfg := &Config{Inputs: []string{filepath.Join(dir, "a.h")}, OutDir: out, Jobs: 1}
	if err := r.Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "a.h.xml")); err != nil {
		t.Fatalf("output not written to out dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.h.xml")); !os.IsNotExist(err) {
		t.Fatalf("output should not be next to the header: %v", err)
	}
}

func TestRunner_Run_GoBindings(t *testing.T) {
	dir := t.TempDir()
	goOut := filepath.Join(t.TempDir(), "hdr")
	writeFiles(t, dir, map[string]string{"a.h": "alpha"})

	gen := &mockGenerator{}
	r := newTestRunner(&mockParser{}, &mockPreprocessor{}, gen)
	cfg := &Config{Inputs: []string{dir}, Jobs: 1, GoOut: goOut, GoPackage: "hdr"}
	if err := r.Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if gen.callCount != 1 {
		t.Fatalf("generator call count = %d, want 1", gen.callCount)
	}
	if got := gen.cfg.OutputFilename(); got != filepath.Join(goOut, "a_types.go") {
		t.Fatalf("OutputFilename() = %q", got)
	}
	if got := gen.cfg.PackageName(); got != "hdr" {
		t.Fatalf("PackageName() = %q", got)
	}
	if len(gen.plan.Records) != 1 || gen.plan.Records[0].GoName != "Alpha" {
		t.Fatalf("unexpected plan: %#v", gen.plan.Records)
	}
	if gen.plan.Source != "a.h" {
		t.Fatalf("plan source = %q", gen.plan.Source)
	}
}

func TestRunner_Run_GeneratorErrorFailsUnit(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.h": "alpha"})

	gen := &mockGenerator{err: errors.New("disk full")}
	r := newTestRunner(&mockParser{}, &mockPreprocessor{}, gen)
	cfg := &Config{Inputs: []string{dir}, Jobs: 1, GoOut: t.TempDir(), GoPackage: "hdr"}
	if err := r.Run(context.Background(), cfg); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestRunner_Run_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.h": "alpha"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &mockParser{}
	r := newTestRunner(p, &mockPreprocessor{}, &mockGenerator{})
	err := r.Run(ctx, &Config{Inputs: []string{dir}, Jobs: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(p.parsed()) != 0 {
		t.Fatalf("parser ran after cancellation")
	}
}

func TestDiscover_Recursive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.h":          "",
		"a.h.orig":     "",
		"sub/c.h":      "",
		"sub/deep/d.h": "",
		"sub/e.stub.h": "",
		"sub/e.h":      "",
		"sub/e.gen.h":  "",
	})

	units, failed := discover(&Config{Inputs: []string{dir}})
	if failed != 0 || len(units) != 1 || units[0] != filepath.Join(dir, "a.h") {
		t.Fatalf("flat discover = %v (%d failed)", units, failed)
	}

	units, failed = discover(&Config{Inputs: []string{dir, filepath.Join(dir, "a.h")}, Recursive: true})
	want := []string{
		filepath.Join(dir, "a.h"),
		filepath.Join(dir, "sub", "c.h"),
		filepath.Join(dir, "sub", "deep", "d.h"),
		filepath.Join(dir, "sub", "e.stub.h"),
	}
	if failed != 0 || len(units) != len(want) {
		t.Fatalf("recursive discover = %v (%d failed), want %v", units, failed, want)
	}
	for i := range want {
		if units[i] != want[i] {
			t.Fatalf("recursive discover = %v, want %v", units, want)
		}
	}
}

type mockParser struct {
	mu    sync.Mutex
	names []string
	fail  map[string]error
}

func (m *mockParser) Parse(name string, r io.Reader, sink builder.Sink) error {
	m.mu.Lock()
	m.names = append(m.names, name)
	m.mu.Unlock()

	if err := m.fail[filepath.Base(name)]; err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return sink.Emit(&model.StructRecord{
		Kind: model.KindStruct,
		Name: strings.TrimSpace(string(data)),
		Members: []model.Member{
			{Field: &model.Field{Name: "id", TypeText: "int"}},
		},
	})
}

func (m *mockParser) ParseTokens(parser.TokenSource, builder.Sink) error {
	return errors.New("not implemented")
}

func (m *mockParser) parsed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.names...)
}

type mockPreprocessor struct {
	mu    sync.Mutex
	calls [][2]string
	err   error
}

func (m *mockPreprocessor) Expand(_ context.Context, in, out string) error {
	m.mu.Lock()
	m.calls = append(m.calls, [2]string{in, out})
	m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	return os.WriteFile(out, []byte("expanded"), 0o644)
}

type mockGenerator struct {
	mu        sync.Mutex
	callCount int
	cfg       generator.Config
	plan      resolver.UnitPlan
	err       error
}

func (m *mockGenerator) Generate(cfg generator.Config, plan resolver.UnitPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.cfg = cfg
	m.plan = plan
	return m.err
}
