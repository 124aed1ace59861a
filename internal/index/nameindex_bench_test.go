package index

import (
	"fmt"
	"testing"

	"github.com/gisdb/gisdb/pkg/types"
)

// BenchmarkNameIndexInsert measures inserts including rehash growth
func BenchmarkNameIndexInsert(b *testing.B) {
	keys := make([]types.NameKey, 10000)
	for i := range keys {
		keys[i] = types.NewNameKey(fmt.Sprintf("Feature %d", i), "VA")
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		ix := NewNameIndex()
		for j, k := range keys {
			ix.Insert(k, types.Locator(j))
		}
	}
	b.ReportMetric(float64(len(keys)*b.N)/b.Elapsed().Seconds(), "keys/sec")
}

// BenchmarkNameIndexFind measures lookups in a 10k-entry table
func BenchmarkNameIndexFind(b *testing.B) {
	ix := NewNameIndex()
	keys := make([]types.NameKey, 10000)
	for i := range keys {
		keys[i] = types.NewNameKey(fmt.Sprintf("Feature %d", i), "VA")
		ix.Insert(keys[i], types.Locator(i))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, ok := ix.Find(keys[i%len(keys)]); !ok {
			b.Fatal("key not found")
		}
	}
}

func BenchmarkHash(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Hash("Bluegrass Valley:VA")
	}
}
