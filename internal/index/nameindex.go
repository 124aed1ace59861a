// Package index implements the name index: a chained hash table mapping a
// feature name and state key to the records carrying that key.
package index

import (
	"fmt"
	"io"
	"strings"

	"github.com/gisdb/gisdb/pkg/types"
)

const (
	// InitialSlots is the slot count of a new table.
	InitialSlots = 256
	// LoadLimit is the elements-per-slot ratio that triggers a doubling rehash.
	LoadLimit = 1.0
)

// NameEntry is one distinct key and every record carrying it.
type NameEntry struct {
	Key      types.NameKey  `json:"key"`
	Locators types.Locators `json:"locators"`
}

// String renders the entry as "[key, [loc, loc]]".
func (e *NameEntry) String() string {
	return "[" + e.Key.String() + ", " + e.Locators.String() + "]"
}

// NameIndex is a chained hash table with front insertion and doubling growth.
// It is not safe for concurrent use.
type NameIndex struct {
	slots    [][]*NameEntry
	elements int
	rehashes int
}

// NewNameIndex returns an empty table with InitialSlots slots.
func NewNameIndex() *NameIndex {
	return &NameIndex{slots: make([][]*NameEntry, InitialSlots)}
}

func (ix *NameIndex) slotFor(key types.NameKey) int {
	return int(Hash(string(key)) % uint32(len(ix.slots)))
}

// Insert records loc under key and reports whether a new locator was added.
// A new key is placed at the front of its slot's chain; if the table then
// reaches the load limit it doubles and every entry is rehashed.
func (ix *NameIndex) Insert(key types.NameKey, loc types.Locator) bool {
	i := ix.slotFor(key)
	for _, e := range ix.slots[i] {
		if e.Key == key {
			return e.Locators.Add(loc)
		}
	}

	e := &NameEntry{Key: key, Locators: types.Locators{loc}}
	ix.slots[i] = append([]*NameEntry{e}, ix.slots[i]...)
	ix.elements++

	if float64(ix.elements)/float64(len(ix.slots)) >= LoadLimit {
		ix.rehash()
	}
	return true
}

// rehash doubles the slot count. Entries are moved, not copied, and keep
// their relative chain order within each new slot.
func (ix *NameIndex) rehash() {
	old := ix.slots
	ix.slots = make([][]*NameEntry, len(old)*2)
	for _, chain := range old {
		for _, e := range chain {
			i := ix.slotFor(e.Key)
			ix.slots[i] = append(ix.slots[i], e)
		}
	}
	ix.rehashes++
}

// Find returns a copy of the locators stored under key. Only the key's home
// slot is scanned.
func (ix *NameIndex) Find(key types.NameKey) (types.Locators, bool) {
	for _, e := range ix.slots[ix.slotFor(key)] {
		if e.Key == key {
			return e.Locators.Clone(), true
		}
	}
	return nil, false
}

// Len returns the number of distinct keys.
func (ix *NameIndex) Len() int {
	return ix.elements
}

// Slots returns the current slot count.
func (ix *NameIndex) Slots() int {
	return len(ix.slots)
}

// Stats describes the table for reports.
type Stats struct {
	Elements      int     `json:"elements"`
	Slots         int     `json:"slots"`
	LongestChain  int     `json:"longest_chain"`
	NonEmptySlots int     `json:"non_empty_slots"`
	LoadLimit     float64 `json:"load_limit"`
	Rehashes      int     `json:"rehashes"`
	TotalLocators int     `json:"total_locators"`
}

// Stats returns current table statistics.
func (ix *NameIndex) Stats() Stats {
	s := Stats{Elements: ix.elements, Slots: len(ix.slots), LoadLimit: LoadLimit, Rehashes: ix.rehashes}
	for _, chain := range ix.slots {
		if len(chain) == 0 {
			continue
		}
		s.NonEmptySlots++
		if len(chain) > s.LongestChain {
			s.LongestChain = len(chain)
		}
		for _, e := range chain {
			s.TotalLocators += len(e.Locators)
		}
	}
	return s
}

// Display writes the table summary followed by every non-empty slot.
func (ix *NameIndex) Display(w io.Writer) error {
	s := ix.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "Number of elements: %d\n", s.Elements)
	fmt.Fprintf(&b, "Number of slots: %d\n", s.Slots)
	fmt.Fprintf(&b, "Maximum elements in a slot: %d\n", s.LongestChain)
	fmt.Fprintf(&b, "Load limit: %.1f\n", s.LoadLimit)
	b.WriteString("\nSlot Contents\n")
	for i, chain := range ix.slots {
		if len(chain) == 0 {
			continue
		}
		parts := make([]string, len(chain))
		for j, e := range chain {
			parts[j] = e.String()
		}
		fmt.Fprintf(&b, "%5d: [%s]\n", i, strings.Join(parts, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
