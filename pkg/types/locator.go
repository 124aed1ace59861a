package types

import (
	"strconv"
	"strings"
)

// Locator is the byte offset of one record in the record file. Locators are
// unique per physical record and never reused.
type Locator uint64

// String returns the decimal offset.
func (l Locator) String() string {
	return strconv.FormatUint(uint64(l), 10)
}

// Locators is an insertion-ordered, duplicate-free list of record locators.
type Locators []Locator

// Contains reports whether loc is already present.
func (ls Locators) Contains(loc Locator) bool {
	for _, l := range ls {
		if l == loc {
			return true
		}
	}
	return false
}

// Add appends loc unless it is already present and reports whether it was added.
func (ls *Locators) Add(loc Locator) bool {
	if ls.Contains(loc) {
		return false
	}
	*ls = append(*ls, loc)
	return true
}

// Clone returns a copy that callers may retain without aliasing the index.
func (ls Locators) Clone() Locators {
	if ls == nil {
		return nil
	}
	out := make(Locators, len(ls))
	copy(out, ls)
	return out
}

// String renders the list as "[a, b, c]".
func (ls Locators) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, l := range ls {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(l.String())
	}
	b.WriteByte(']')
	return b.String()
}
