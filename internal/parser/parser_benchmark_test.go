package parser

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/seitarof/sc2xml/internal/builder"
)

func BenchmarkParse_CommonHeader(b *testing.B) {
	data, err := os.ReadFile(filepath.Join("testdata", "common.h"))
	if err != nil {
		b.Fatal(err)
	}
	p := New()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := &builder.Collector{}
		if err := p.Parse("common.h", bytes.NewReader(data), c); err != nil {
			b.Fatal(err)
		}
		if len(c.Records) == 0 {
			b.Fatal("empty parse result")
		}
	}
}
