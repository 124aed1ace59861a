package cache

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisdb/gisdb/pkg/types"
)

func fill(c *RecordCache, locs ...types.Locator) {
	for _, l := range locs {
		c.Insert(fmt.Sprintf("record-%d", l), l)
	}
}

func TestRecordCache_EvictsOldest(t *testing.T) {
	c := NewRecordCache()
	for i := 1; i <= 16; i++ {
		require.True(t, c.Insert(fmt.Sprintf("record-%d", i), types.Locator(i)))
	}

	assert.Equal(t, Capacity, c.Len())
	_, ok := c.Lookup(1)
	assert.False(t, ok, "first inserted record should be evicted")
	for i := 2; i <= 16; i++ {
		text, ok := c.Lookup(types.Locator(i))
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("record-%d", i), text)
	}
	assert.Equal(t, int64(1), c.Metrics().Evictions)
}

func TestRecordCache_LookupPromotes(t *testing.T) {
	c := NewRecordCache()
	for i := 1; i <= 15; i++ {
		fill(c, types.Locator(i))
	}

	_, ok := c.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, types.Locator(1), c.Locators()[0])

	fill(c, 16)
	_, ok = c.Lookup(1)
	assert.True(t, ok, "promoted record survives")
	_, ok = c.Lookup(2)
	assert.False(t, ok, "next oldest record is evicted instead")
}

func TestRecordCache_DuplicateInsertIsNoop(t *testing.T) {
	c := NewRecordCache()
	fill(c, 1, 2)

	assert.False(t, c.Insert("changed", 1))
	assert.Equal(t, types.Locators{2, 1}, c.Locators())
	text, _ := c.Lookup(1)
	assert.Equal(t, "record-1", text)
}

func TestRecordCache_Metrics(t *testing.T) {
	c := NewRecordCache()
	fill(c, 1)
	c.Lookup(1)
	c.Lookup(2)

	m := c.Metrics()
	assert.Equal(t, int64(1), m.Hits)
	assert.Equal(t, int64(1), m.Misses)
	assert.Equal(t, int64(1), m.Entries)
	assert.InDelta(t, 50.0, m.HitRate(), 0.001)
	assert.Equal(t, 0.0, Metrics{}.HitRate())
}

func TestRecordCache_Display(t *testing.T) {
	c := NewRecordCache()
	fill(c, 10, 20)

	var buf bytes.Buffer
	require.NoError(t, c.Display(&buf))
	assert.Equal(t, "MRU\n    20:\trecord-20\n    10:\trecord-10\nLRU\n", buf.String())
}
