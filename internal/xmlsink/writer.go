package xmlsink

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/seitarof/sc2xml/internal/model"
)

// RootElement is the document element of every output file.
const RootElement = "sc2xml"

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("xmlsink: writer closed")

type fieldElem struct {
	XMLName         xml.Name `xml:"field"`
	Type            string   `xml:"type,attr"`
	Bits            string   `xml:"bits,attr,omitempty"`
	Size            string   `xml:"size,attr,omitempty"`
	FunctionPointer string   `xml:"function_pointer,attr,omitempty"`
	InputArgs       string   `xml:"input_args,omitempty"`
	Name            string   `xml:"name"`
}

type recordElem struct {
	XMLName    xml.Name
	Name       string        `xml:"struct_name,omitempty"`
	Typedef    string        `xml:"typedef_name,omitempty"`
	Attributes string        `xml:"struct_attributes,omitempty"`
	NestedName string        `xml:"struct_nested_name,omitempty"`
	Members    []interface{} `xml:",any"`
}

// Writer renders records as one XML document. It is safe for concurrent
// use; records appear in the order Emit was called.
type Writer struct {
	mu      sync.Mutex
	out     io.Writer
	enc     *xml.Encoder
	started bool
	closed  bool
}

// New returns a Writer producing the document on out.
func New(out io.Writer) *Writer {
	enc := xml.NewEncoder(out)
	enc.Indent("", "  ")
	return &Writer{out: out, enc: enc}
}

// Emit writes one top-level record with its nested records.
func (w *Writer) Emit(rec *model.StructRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if err := w.begin(); err != nil {
		return err
	}
	if err := w.enc.Encode(toElem(rec)); err != nil {
		return fmt.Errorf("encode %s: %w", rec.Kind, err)
	}
	return nil
}

// Close ends the document. A document without records still gets the
// root element.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.begin(); err != nil {
		return err
	}
	if err := w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: RootElement}}); err != nil {
		return fmt.Errorf("close document: %w", err)
	}
	if err := w.enc.Flush(); err != nil {
		return fmt.Errorf("flush document: %w", err)
	}
	if _, err := io.WriteString(w.out, "\n"); err != nil {
		return fmt.Errorf("flush document: %w", err)
	}
	return nil
}

func (w *Writer) begin() error {
	if w.started {
		return nil
	}
	w.started = true
	if _, err := io.WriteString(w.out, xml.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: RootElement}}); err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	return nil
}

func toElem(rec *model.StructRecord) *recordElem {
	e := &recordElem{
		XMLName:    xml.Name{Local: rec.Kind.String()},
		Name:       rec.Name,
		Typedef:    rec.TypedefName,
		Attributes: rec.Attributes,
		NestedName: rec.NestedName,
	}
	for _, m := range rec.Members {
		switch {
		case m.Field != nil:
			e.Members = append(e.Members, fieldToElem(*m.Field))
		case m.Struct != nil:
			e.Members = append(e.Members, toElem(m.Struct))
		}
	}
	return e
}

func fieldToElem(f model.Field) *fieldElem {
	e := &fieldElem{
		Type: f.TypeString(),
		Bits: f.BitWidth,
		Name: f.Name,
	}
	if f.IsFunctionPointer() {
		e.FunctionPointer = "1"
		e.InputArgs = f.FuncPtr.Text()
		return e
	}
	switch f.Array.Kind {
	case model.ArrayUnspecified:
		e.Size = "N/A"
	case model.ArrayExpression:
		e.Size = f.Array.Expr
	}
	return e
}
