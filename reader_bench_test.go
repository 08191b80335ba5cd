package csvfix

import (
	"bytes"
	stdcsv "encoding/csv"
	"io"
	"strings"
	"testing"
)

func benchmarkData() []byte {
	return []byte(strings.Repeat(`id-0001,"Widget, large",he said "ok" then left,19.99
id-0002,plain value,"multi
line",5
id-0003,,"already ""escaped""",0
`, 64))
}

func BenchmarkReader(b *testing.B) {
	data := benchmarkData()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cr := NewReader(bytes.NewReader(data))
		cr.ReuseRecord = true
		cr.LazyQuotes = true

		for {
			if _, err := cr.Read(); err != nil {
				if err == io.EOF {
					break
				}
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkEncodingCSV(b *testing.B) {
	data := benchmarkData()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cr := stdcsv.NewReader(bytes.NewReader(data))
		cr.ReuseRecord = true
		cr.LazyQuotes = true

		for {
			if _, err := cr.Read(); err != nil {
				if err == io.EOF {
					break
				}
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkFix(b *testing.B) {
	data := benchmarkData()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Fix(io.Discard, bytes.NewReader(data), Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
