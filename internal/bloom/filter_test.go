package bloom

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisdb/gisdb/pkg/types"
)

func TestNameFilter_NoFalseNegatives(t *testing.T) {
	f := NewWithEstimates(1000, 0.01)
	for i := 0; i < 1000; i++ {
		f.Add(types.NewNameKey(fmt.Sprintf("Creek %d", i), "VA"))
	}
	for i := 0; i < 1000; i++ {
		assert.True(t, f.MayContain(types.NewNameKey(fmt.Sprintf("Creek %d", i), "VA")))
	}
	assert.Equal(t, uint64(1000), f.Count())
}

func TestNameFilter_FalsePositiveRateNearTarget(t *testing.T) {
	f := NewWithEstimates(2000, 0.01)
	for i := 0; i < 2000; i++ {
		f.Add(types.NewNameKey(fmt.Sprintf("Ridge %d", i), "CO"))
	}

	falsePositives := 0
	for i := 0; i < 10000; i++ {
		if f.MayContain(types.NewNameKey(fmt.Sprintf("Hollow %d", i), "NM")) {
			falsePositives++
		}
	}
	assert.Less(t, float64(falsePositives)/10000, 0.03)
	assert.InDelta(t, 0.01, f.FalsePositiveRate(), 0.01)
}

func TestOptimalParameters(t *testing.T) {
	m, k := OptimalParameters(1000, 0.01)
	assert.Equal(t, 9586, m)
	assert.Equal(t, 7, k)

	m, k = OptimalParameters(0, 2)
	assert.Equal(t, 9586, m, "invalid inputs fall back to defaults")
	assert.Equal(t, 7, k)
}

func TestNameFilter_EmptyFilter(t *testing.T) {
	f := New(0, 0)
	assert.Equal(t, 1024, f.NumBits())
	assert.Equal(t, 7, f.NumHashes())
	assert.False(t, f.MayContain("Roanoke:VA"))
	assert.Equal(t, 0.0, f.FalsePositiveRate())
	assert.Equal(t, 0.0, f.FillRatio())
}

func TestNameFilter_Display(t *testing.T) {
	f := New(128, 3)
	f.Add("Roanoke:VA")

	var buf bytes.Buffer
	require.NoError(t, f.Display(&buf))
	assert.Contains(t, buf.String(), "Bits: 128\n")
	assert.Contains(t, buf.String(), "Hash functions: 3\n")
	assert.Contains(t, buf.String(), "Keys added: 1\n")
}

func TestNameFilter_KeysAreExact(t *testing.T) {
	f := New(1<<16, 7)
	f.Add(types.NewNameKey("Roanoke", "VA"))

	assert.True(t, f.MayContain("Roanoke:VA"))
	assert.False(t, f.MayContain("Roanoke:NC"))
	assert.False(t, f.MayContain("roanoke:VA"))
	assert.InDelta(t, 4.0, f.FillRatio()*float64(f.NumBits()), 3.0, "one key sets at most seven bits")
}
