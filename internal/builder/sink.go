package builder

import "github.com/seitarof/sc2xml/internal/model"

// Sink receives every completed top-level record in source order.
type Sink interface {
	Emit(rec *model.StructRecord) error
}

// EnumSink is implemented by sinks that also want enum declarations.
type EnumSink interface {
	EmitEnum(e *model.Enum) error
}

// Collector is an in-memory Sink.
type Collector struct {
	Records []*model.StructRecord
	Enums   []*model.Enum
}

func (c *Collector) Emit(rec *model.StructRecord) error {
	c.Records = append(c.Records, rec)
	return nil
}

func (c *Collector) EmitEnum(e *model.Enum) error {
	c.Enums = append(c.Enums, e)
	return nil
}

// Tee forwards to every sink in order and stops at the first error.
type Tee []Sink

func (t Tee) Emit(rec *model.StructRecord) error {
	for _, s := range t {
		if err := s.Emit(rec); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) EmitEnum(e *model.Enum) error {
	for _, s := range t {
		es, ok := s.(EnumSink)
		if !ok {
			continue
		}
		if err := es.EmitEnum(e); err != nil {
			return err
		}
	}
	return nil
}
