// Package cache provides the record cache: a fixed-capacity strict LRU of
// record text keyed by locator.
package cache

import (
	"container/list"
	"fmt"
	"io"
	"strings"

	"github.com/gisdb/gisdb/pkg/types"
)

// Capacity is the number of records the cache holds.
const Capacity = 15

// Metrics holds cache statistics for observability.
type Metrics struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int64 `json:"entries"`
}

// HitRate returns the hit rate as a percentage.
func (m Metrics) HitRate() float64 {
	total := m.Hits + m.Misses
	if total == 0 {
		return 0
	}
	return float64(m.Hits) / float64(total) * 100
}

type cacheEntry struct {
	loc  types.Locator
	text string
}

// RecordCache keeps the most recently touched records. The front of the
// recency list is the most recently used entry. It is not safe for
// concurrent use.
type RecordCache struct {
	capacity int
	order    *list.List
	index    map[types.Locator]*list.Element
	metrics  Metrics
}

// NewRecordCache returns an empty cache holding Capacity records.
func NewRecordCache() *RecordCache {
	return &RecordCache{
		capacity: Capacity,
		order:    list.New(),
		index:    make(map[types.Locator]*list.Element, Capacity),
	}
}

// Lookup returns the cached text for loc and marks it most recently used.
func (c *RecordCache) Lookup(loc types.Locator) (string, bool) {
	el, ok := c.index[loc]
	if !ok {
		c.metrics.Misses++
		return "", false
	}
	c.metrics.Hits++
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).text, true
}

// Insert caches text for loc as the most recently used entry, evicting the
// least recently used one when full. Callers must Lookup first: inserting a
// locator that is already cached does nothing and returns false.
func (c *RecordCache) Insert(text string, loc types.Locator) bool {
	if _, ok := c.index[loc]; ok {
		return false
	}
	if c.order.Len() >= c.capacity {
		tail := c.order.Back()
		c.order.Remove(tail)
		delete(c.index, tail.Value.(*cacheEntry).loc)
		c.metrics.Evictions++
	}
	c.index[loc] = c.order.PushFront(&cacheEntry{loc: loc, text: text})
	return true
}

// Len returns the number of cached records.
func (c *RecordCache) Len() int {
	return c.order.Len()
}

// Locators returns the cached locators from most to least recently used.
func (c *RecordCache) Locators() types.Locators {
	out := make(types.Locators, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*cacheEntry).loc)
	}
	return out
}

// Metrics returns a snapshot of the cache counters.
func (c *RecordCache) Metrics() Metrics {
	m := c.metrics
	m.Entries = int64(c.order.Len())
	return m
}

// Display writes the cached records from MRU to LRU.
func (c *RecordCache) Display(w io.Writer) error {
	var b strings.Builder
	b.WriteString("MRU\n")
	for el := c.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*cacheEntry)
		fmt.Fprintf(&b, "    %d:\t%s\n", e.loc, e.text)
	}
	b.WriteString("LRU\n")
	_, err := io.WriteString(w, b.String())
	return err
}
