// Package report writes the human-readable command log.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gisdb/gisdb/pkg/types"
)

// DefaultSeparatorWidth is the width of the dashed line closing each command.
const DefaultSeparatorWidth = 80

// Writer formats report sections. The first write error is kept and every
// later call becomes a no-op; check Err or Flush.
type Writer struct {
	w         *bufio.Writer
	separator string
	err       error
}

// NewWriter returns a Writer over w. A width below 1 uses DefaultSeparatorWidth.
func NewWriter(w io.Writer, separatorWidth int) *Writer {
	if separatorWidth < 1 {
		separatorWidth = DefaultSeparatorWidth
	}
	return &Writer{
		w:         bufio.NewWriter(w),
		separator: strings.Repeat("-", separatorWidth),
	}
}

// Printf writes formatted text unless an earlier write failed.
func (r *Writer) Printf(format string, args ...interface{}) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

// Err returns the first write error.
func (r *Writer) Err() error {
	return r.err
}

// Flush flushes buffered output and returns the first error seen.
func (r *Writer) Flush() error {
	if r.err != nil {
		return r.err
	}
	r.err = r.w.Flush()
	return r.err
}

// Section runs display against the underlying writer, for structure dumps.
func (r *Writer) Section(display func(io.Writer) error) {
	if r.err != nil {
		return
	}
	r.err = display(r.w)
}

// Separator closes a command.
func (r *Writer) Separator() {
	r.Printf("%s\n", r.separator)
}

// Comment echoes a script comment verbatim.
func (r *Writer) Comment(line string) {
	r.Printf("%s\n", line)
}

// Command echoes numbered command n.
func (r *Writer) Command(n int, line string) {
	r.Printf("Command %d:\t%s\n\n", n, line)
}

// Error reports a command that could not be carried out.
func (r *Writer) Error(err error) {
	r.Printf("Error: %v\n", err)
}

// Banner holds the values printed when the world is set.
type Banner struct {
	Line     string
	Database string
	Script   string
	Log      string
	World    types.Rect
}

// World writes the world banner.
func (r *Writer) World(b Banner) {
	r.Printf("%s\n\n", b.Line)
	r.Printf("GIS Program\n\n")
	r.Printf("dbFile:\t%s\nscript:\t%s\nlog:\t%s\n", b.Database, b.Script, b.Log)
	r.Printf("Quadtree children are printed in the order SW SE NE NW\n")
	r.Separator()
	r.Printf("\nLatitude/longitude values in index entries are shown as signed integers, in total seconds.\n\n")
	r.Printf("World boundaries are set to:\n")
	r.Printf("\t      %.0f\n", b.World.YMax)
	r.Printf("   %.0f\t\t  %.0f\n", b.World.XMin, b.World.XMax)
	r.Printf("\t      %.0f\n", b.World.YMin)
	r.Separator()
}

// ImportStats holds the counts reported after an import.
type ImportStats struct {
	Records        int
	NamesAdded     int
	LocationsAdded int
	TotalNameLen   int
}

// AverageNameLength is the truncated mean name length over names added.
func (s ImportStats) AverageNameLength() int {
	if s.NamesAdded == 0 {
		return 0
	}
	return s.TotalNameLen / s.NamesAdded
}

// Imported writes the import statistics.
func (r *Writer) Imported(s ImportStats) {
	r.Printf("Imported Features by name: %d\n", s.NamesAdded)
	r.Printf("Imported Locations: %d\n", s.LocationsAdded)
	r.Printf("Average name length: %d\n", s.AverageNameLength())
}

// FoundAtHeader opens a what_is_at answer. long and lat are display strings.
func (r *Writer) FoundAtHeader(long, lat string) {
	r.Printf("   The following features were found at: (%s, %s)\n", long, lat)
}

// FoundAt writes one what_is_at match.
func (r *Writer) FoundAt(loc types.Locator, name, county, state string) {
	r.Printf("\t%s:\t%s\t%s\t%s\n", loc, name, county, state)
}

// NothingAt reports an empty what_is_at answer.
func (r *Writer) NothingAt(long, lat string) {
	r.Printf("Nothing was found at (%s, %s)\n", long, lat)
}

// FoundInHeader opens a what_is_in answer with the total locator count.
func (r *Writer) FoundInHeader(count int, long string, halfWidth int64, lat string, halfHeight int64) {
	r.Printf("   The following %d features were found in: (%s +/- %d, %s +/- %d)\n",
		count, long, halfWidth, lat, halfHeight)
}

// FoundIn writes one what_is_in match.
func (r *Writer) FoundIn(loc types.Locator, name, state, long, lat string) {
	r.Printf("\t%s:\t%s\t%s\t(%s, %s)\n", loc, name, state, long, lat)
}

// NothingIn reports an empty what_is_in answer.
func (r *Writer) NothingIn(long string, halfWidth int64, lat string, halfHeight int64) {
	r.Printf("Nothing was found in (%s +/- %d, %s +/- %d)\n", long, halfWidth, lat, halfHeight)
}

// Named writes one what_is match.
func (r *Writer) Named(loc types.Locator, county, long, lat string) {
	r.Printf("\t%s:\t%s  (%s, %s)\n", loc, county, long, lat)
}

// NoMatch reports an empty what_is answer.
func (r *Writer) NoMatch(name, state string) {
	r.Printf("No records match %s and %s\n", name, state)
}

// Terminate writes the quit echo.
func (r *Writer) Terminate(n int) {
	r.Command(n, "quit")
	r.Printf("Terminating execution of commands.\n")
}
