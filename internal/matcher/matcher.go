package matcher

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/seitarof/sc2xml/internal/model"
)

// TypeIndex resolves C type text to the records and enums of one unit and
// owns the Go names given to them.
type TypeIndex interface {
	// Lookup finds the record a base type refers to. prev is the nested
	// record most recently defined in the enclosing record, if any.
	Lookup(typeText string, prev *model.StructRecord) (*model.StructRecord, bool)
	LookupEnum(typeText string) (*model.Enum, bool)
	GoName(rec *model.StructRecord) string
	EnumGoName(e *model.Enum) string
	// ConstGoName returns the Go name of an enumerator, or "" if unknown.
	ConstGoName(cName string) string
	// Records returns every record, parents before the records nested in them.
	Records() []*model.StructRecord
	Enums() []*model.Enum
}

// FieldBinding ties one C field to its Go field name and, when the base type
// names an extracted record or enum, to that type and its Go name.
type FieldBinding struct {
	Owner    *model.StructRecord
	Field    model.Field
	GoName   string
	Record   *model.StructRecord
	Enum     *model.Enum
	TypeName string
	Embedded bool
}

// FieldMatcher binds the fields of a record.
type FieldMatcher interface {
	Match(idx TypeIndex, rec *model.StructRecord, ignoreFields []string) []FieldBinding
}

type typeIndexImpl struct {
	records   []*model.StructRecord
	enums     []*model.Enum
	byTag     map[string]*model.StructRecord
	byTypedef map[string]*model.StructRecord
	enumByKey map[string]*model.Enum
	names     map[*model.StructRecord]string
	enumNames map[*model.Enum]string
	consts    map[string]string
}

type fieldMatcherImpl struct{}

// NewTypeIndex indexes top-level records (with everything nested in them)
// and enums. Go names are unique across both.
func NewTypeIndex(records []*model.StructRecord, enums []*model.Enum) TypeIndex {
	idx := &typeIndexImpl{
		byTag:     map[string]*model.StructRecord{},
		byTypedef: map[string]*model.StructRecord{},
		enumByKey: map[string]*model.Enum{},
		names:     map[*model.StructRecord]string{},
		enumNames: map[*model.Enum]string{},
		consts:    map[string]string{},
	}
	used := map[string]bool{}

	var walk func(rec *model.StructRecord, parent string)
	walk = func(rec *model.StructRecord, parent string) {
		idx.records = append(idx.records, rec)
		if rec.Name != "" {
			key := rec.Kind.String() + " " + rec.Name
			if _, ok := idx.byTag[key]; !ok {
				idx.byTag[key] = rec
			}
		}
		if rec.TypedefName != "" {
			if _, ok := idx.byTypedef[rec.TypedefName]; !ok {
				idx.byTypedef[rec.TypedefName] = rec
			}
		}

		base := rec.DisplayName()
		if base == "" {
			base = parent + "Anon"
		}
		name := unique(ExportedName(base), used)
		idx.names[rec] = name
		for _, n := range rec.Nested() {
			walk(n, name)
		}
	}
	for _, rec := range records {
		walk(rec, "")
	}

	for _, e := range enums {
		idx.enums = append(idx.enums, e)
		if e.Name != "" {
			idx.enumByKey["enum "+e.Name] = e
		}
		if e.TypedefName != "" {
			idx.enumByKey[e.TypedefName] = e
		}
		base := e.TypedefName
		if base == "" {
			base = e.Name
		}
		if base == "" {
			base = "Enum"
		}
		idx.enumNames[e] = unique(ExportedName(base), used)
	}
	for _, e := range enums {
		for _, v := range e.Values {
			if _, ok := idx.consts[v.Name]; !ok {
				idx.consts[v.Name] = unique(ExportedName(v.Name), used)
			}
		}
	}
	return idx
}

// NewFieldMatcher returns default field matcher.
func NewFieldMatcher() FieldMatcher {
	return &fieldMatcherImpl{}
}

func (idx *typeIndexImpl) Lookup(typeText string, prev *model.StructRecord) (*model.StructRecord, bool) {
	key := NormalizeType(typeText)
	if prev != nil {
		if key == prev.Kind.String() {
			return prev, true
		}
		if prev.Name != "" && key == prev.Kind.String()+" "+prev.Name {
			return prev, true
		}
	}
	if rec, ok := idx.byTag[key]; ok {
		return rec, true
	}
	rec, ok := idx.byTypedef[key]
	return rec, ok
}

func (idx *typeIndexImpl) LookupEnum(typeText string) (*model.Enum, bool) {
	e, ok := idx.enumByKey[NormalizeType(typeText)]
	return e, ok
}

func (idx *typeIndexImpl) GoName(rec *model.StructRecord) string { return idx.names[rec] }

func (idx *typeIndexImpl) EnumGoName(e *model.Enum) string { return idx.enumNames[e] }

func (idx *typeIndexImpl) ConstGoName(cName string) string { return idx.consts[cName] }

func (idx *typeIndexImpl) Records() []*model.StructRecord { return idx.records }

func (idx *typeIndexImpl) Enums() []*model.Enum { return idx.enums }

func (m *fieldMatcherImpl) Match(idx TypeIndex, rec *model.StructRecord, ignoreFields []string) []FieldBinding {
	ignoreSet := toIgnoreSet(ignoreFields)
	used := map[string]bool{}
	bindings := make([]FieldBinding, 0, len(rec.Members))

	var prev *model.StructRecord
	for i, mem := range rec.Members {
		if mem.Struct != nil {
			prev = mem.Struct
			if mem.Struct.Name == "" && !referencedNext(rec.Members, i) {
				// Anonymous member: its fields belong to rec.
				bindings = append(bindings, FieldBinding{
					Owner:    rec,
					GoName:   idx.GoName(mem.Struct),
					Record:   mem.Struct,
					TypeName: idx.GoName(mem.Struct),
					Embedded: true,
				})
			}
			continue
		}

		f := *mem.Field
		if ignoreSet[strings.ToLower(f.Name)] {
			continue
		}
		b := FieldBinding{
			Owner:  rec,
			Field:  f,
			GoName: uniqueFold(ExportedName(f.Name), used),
		}
		if r, ok := idx.Lookup(f.TypeText, prev); ok {
			b.Record = r
			b.TypeName = idx.GoName(r)
		} else if e, ok := idx.LookupEnum(f.TypeText); ok {
			b.Enum = e
			b.TypeName = idx.EnumGoName(e)
		}
		bindings = append(bindings, b)
	}
	return bindings
}

func referencedNext(members []model.Member, i int) bool {
	if i+1 >= len(members) || members[i+1].Field == nil {
		return false
	}
	return NormalizeType(members[i+1].Field.TypeText) == members[i].Struct.Kind.String()
}

var droppedWords = wordSet(
	"const", "volatile", "restrict",
	"__const", "__volatile", "__volatile__",
	"__restrict", "__restrict__", "__extension__",
	"register", "static", "extern",
)

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// NormalizeType reduces C base-type text to a canonical spelling:
// qualifiers are dropped, "int" after short/long is dropped and
// signedness words are folded, so "const unsigned long int" becomes
// "unsigned long".
func NormalizeType(typeText string) string {
	var words []string
	unsigned, signed := false, false
	for _, w := range strings.Fields(typeText) {
		switch {
		case droppedWords[w]:
			continue
		case w == "unsigned":
			unsigned = true
			continue
		case w == "signed" || w == "__signed" || w == "__signed__":
			signed = true
			continue
		}
		words = append(words, w)
	}
	if n := len(words); n > 1 && words[n-1] == "int" && (words[0] == "short" || words[0] == "long") {
		words = words[:n-1]
	}
	if len(words) == 0 && (unsigned || signed) {
		words = []string{"int"}
	}
	key := strings.Join(words, " ")
	switch {
	case unsigned:
		key = "unsigned " + key
	case signed && key == "char":
		key = "signed char"
	}
	return key
}

// ExportedName turns a C identifier into an exported Go identifier.
// Names that already start with an upper-case letter are kept.
func ExportedName(s string) string {
	s = strings.TrimLeft(s, "_")
	if s == "" {
		return "X"
	}
	if first := []rune(s)[0]; unicode.IsUpper(first) {
		return s
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}
	out := b.String()
	if out == "" || unicode.IsDigit([]rune(out)[0]) {
		out = "X" + out
	}
	return out
}

func unique(name string, used map[string]bool) string {
	out := name
	for n := 2; used[out]; n++ {
		out = name + strconv.Itoa(n)
	}
	used[out] = true
	return out
}

func uniqueFold(name string, used map[string]bool) string {
	out := name
	for n := 2; used[strings.ToLower(out)]; n++ {
		out = name + strconv.Itoa(n)
	}
	used[strings.ToLower(out)] = true
	return out
}

func toIgnoreSet(ignoreFields []string) map[string]bool {
	set := make(map[string]bool, len(ignoreFields))
	for _, f := range ignoreFields {
		f = strings.TrimSpace(strings.ToLower(f))
		if f == "" {
			continue
		}
		set[f] = true
	}
	return set
}
