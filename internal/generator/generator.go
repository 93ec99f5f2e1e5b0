package generator

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/seitarof/sc2xml/internal/model"
	"github.com/seitarof/sc2xml/internal/resolver"
)

//go:embed templates/*.go.tmpl
var templateFS embed.FS

// Generator generates Go type declarations from a unit plan.
type Generator interface {
	Generate(cfg Config, plan resolver.UnitPlan) error
}

// Config is the minimum config contract required by generator.
type Config interface {
	OutputFilename() string
	PackageName() string
}

// Formatter formats generated Go code and organizes imports.
type Formatter interface {
	Format(filename string, src []byte) ([]byte, error)
}

// FileWriter writes generated code to disk.
type FileWriter interface {
	Write(filename string, data []byte) error
}

type generatorImpl struct {
	formatter Formatter
	writer    FileWriter
	tmpl      *template.Template
}

type goimportsFormatter struct{}

type fileWriter struct{}

type templateData struct {
	Source  string
	Package string
	Enums   []resolver.EnumPlan
	Records []resolver.RecordPlan
}

// New creates a code generator.
func New(f Formatter, w FileWriter) Generator {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"renderField": renderField,
		"renderConst": renderConst,
		"cRecord":     cRecordName,
		"cEnum":       cEnumName,
	}).ParseFS(templateFS, "templates/*.go.tmpl"))
	return &generatorImpl{formatter: f, writer: w, tmpl: tmpl}
}

// NewGoimportsFormatter creates a formatter backed by goimports.
func NewGoimportsFormatter() Formatter {
	return &goimportsFormatter{}
}

// NewFileWriter creates a file writer that creates missing directories.
func NewFileWriter() FileWriter {
	return &fileWriter{}
}

// OutputName returns the Go file name generated for a header:
// buttons.h and buttons.gen.h both give buttons_types.go.
func OutputName(header string) string {
	base := filepath.Base(header)
	for _, suffix := range []string{".gen.h", ".stub.h", ".h"} {
		if strings.HasSuffix(base, suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}
	base = strings.Map(func(r rune) rune {
		if r == '.' || r == '-' || r == ' ' {
			return '_'
		}
		return r
	}, base)
	return base + "_types.go"
}

func (g *generatorImpl) Generate(cfg Config, plan resolver.UnitPlan) error {
	if len(plan.Records) == 0 && len(plan.Enums) == 0 {
		return fmt.Errorf("no types to generate")
	}

	data := templateData{
		Source:  plan.Source,
		Package: cfg.PackageName(),
		Enums:   plan.Enums,
		Records: plan.Records,
	}
	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "types.go.tmpl", data); err != nil {
		return fmt.Errorf("template: %w", err)
	}

	formatted, err := g.formatter.Format(cfg.OutputFilename(), buf.Bytes())
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if err := g.writer.Write(cfg.OutputFilename(), formatted); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (f *goimportsFormatter) Format(filename string, src []byte) ([]byte, error) {
	return imports.Process(filename, src, nil)
}

func (w *fileWriter) Write(filename string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

func renderField(plan resolver.FieldPlan) string {
	b := plan.Binding
	switch plan.Strategy {
	case resolver.StrategySkip:
		return "\t// " + b.Field.Name + " " + cFieldType(b.Field) + ": " + plan.Reason
	case resolver.StrategyEmbedded:
		return "\t" + plan.GoType
	}
	return "\t" + b.GoName + " " + plan.GoType + " `c:\"" + b.Field.Name + "\"`"
}

func renderConst(enumType string, v resolver.EnumValuePlan) string {
	if v.Expr == "" {
		return "\t// " + v.CName + ": " + v.Reason
	}
	return "\t" + v.GoName + " " + enumType + " = " + v.Expr
}

func cFieldType(f model.Field) string {
	s := f.TypeString()
	if f.IsFunctionPointer() {
		s += " (*)(" + f.FuncPtr.Text() + ")"
	}
	if f.BitWidth != "" {
		s += " : " + f.BitWidth
	}
	switch f.Array.Kind {
	case model.ArrayUnspecified:
		s += " []"
	case model.ArrayExpression:
		s += " [" + f.Array.Expr + "]"
	}
	return s
}

func cRecordName(rec *model.StructRecord) string {
	switch {
	case rec.Name != "":
		return rec.Kind.String() + " " + rec.Name
	case rec.TypedefName != "":
		return "typedef " + rec.Kind.String() + " " + rec.TypedefName
	default:
		return "an anonymous " + rec.Kind.String()
	}
}

func cEnumName(e *model.Enum) string {
	switch {
	case e.Name != "":
		return "enum " + e.Name
	case e.TypedefName != "":
		return "typedef enum " + e.TypedefName
	default:
		return "an anonymous enum"
	}
}
