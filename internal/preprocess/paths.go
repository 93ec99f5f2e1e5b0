package preprocess

import "strings"

const (
	HeaderSuffix = ".h"
	StubSuffix   = ".stub.h"
	GenSuffix    = ".gen.h"
	OutputSuffix = ".xml"
)

// IsStub reports whether path names a macro template header (X.stub.h).
func IsStub(path string) bool {
	return strings.HasSuffix(path, StubSuffix)
}

// GenPath maps X.stub.h to the expanded X.gen.h next to it.
func GenPath(stub string) string {
	return strings.TrimSuffix(stub, StubSuffix) + GenSuffix
}

// StubPath maps X.h, or an expanded X.gen.h, to the X.stub.h that would
// generate it.
func StubPath(header string) string {
	if strings.HasSuffix(header, GenSuffix) {
		return strings.TrimSuffix(header, GenSuffix) + StubSuffix
	}
	return strings.TrimSuffix(header, HeaderSuffix) + StubSuffix
}

// OutputPath maps a header to its document: X.h, X.stub.h and X.gen.h all
// become X.h.xml.
func OutputPath(header string) string {
	switch {
	case strings.HasSuffix(header, StubSuffix):
		header = strings.TrimSuffix(header, StubSuffix) + HeaderSuffix
	case strings.HasSuffix(header, GenSuffix):
		header = strings.TrimSuffix(header, GenSuffix) + HeaderSuffix
	}
	return header + OutputSuffix
}

// IsHeaderName reports whether a directory entry should be processed:
// it contains ".h" but not ".h." (so X.h.xml and X.h.orig are skipped).
func IsHeaderName(name string) bool {
	return strings.Contains(name, HeaderSuffix) && !strings.Contains(name, HeaderSuffix+".")
}
