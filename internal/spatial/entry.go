package spatial

import (
	"strings"

	"github.com/gisdb/gisdb/pkg/types"
)

// CoordinateEntry is one distinct coordinate and every record located there.
type CoordinateEntry struct {
	Coordinate types.Coordinate `json:"coordinate"`
	Locators   types.Locators   `json:"locators"`
}

func newEntry(c types.Coordinate, loc types.Locator) *CoordinateEntry {
	return &CoordinateEntry{Coordinate: c, Locators: types.Locators{loc}}
}

func (e *CoordinateEntry) clone() CoordinateEntry {
	return CoordinateEntry{Coordinate: e.Coordinate, Locators: e.Locators.Clone()}
}

// String renders the entry as "[(x, y), loc, loc]".
func (e CoordinateEntry) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(e.Coordinate.String())
	for _, l := range e.Locators {
		b.WriteString(", ")
		b.WriteString(l.String())
	}
	b.WriteByte(']')
	return b.String()
}
