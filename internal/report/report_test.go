package report

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/gisdb/gisdb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(width int) (*Writer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWriter(&buf, width), &buf
}

func TestWriter_CommandAndSeparator(t *testing.T) {
	r, buf := newTestWriter(10)
	r.Comment("; load the data")
	r.Command(3, "import\tVA_Monterey.txt")
	r.Separator()
	require.NoError(t, r.Flush())

	assert.Equal(t, "; load the data\nCommand 3:\timport\tVA_Monterey.txt\n\n----------\n", buf.String())
}

func TestWriter_DefaultSeparatorWidth(t *testing.T) {
	r, buf := newTestWriter(0)
	r.Separator()
	require.NoError(t, r.Flush())
	assert.Equal(t, strings.Repeat("-", DefaultSeparatorWidth)+"\n", buf.String())
}

func TestWriter_World(t *testing.T) {
	r, buf := newTestWriter(4)
	r.World(Banner{
		Line:     "world\t0794530W\t0792630W\t373000N\t374500N",
		Database: "db.txt",
		Script:   "script.txt",
		Log:      "log.txt",
		World:    types.NewRect(-286530, -285990, 135000, 135900),
	})
	require.NoError(t, r.Flush())

	want := "world\t0794530W\t0792630W\t373000N\t374500N\n\n" +
		"GIS Program\n\n" +
		"dbFile:\tdb.txt\nscript:\tscript.txt\nlog:\tlog.txt\n" +
		"Quadtree children are printed in the order SW SE NE NW\n" +
		"----\n\n" +
		"Latitude/longitude values in index entries are shown as signed integers, in total seconds.\n\n" +
		"World boundaries are set to:\n" +
		"\t      135900\n" +
		"   -286530\t\t  -285990\n" +
		"\t      135000\n" +
		"----\n"
	assert.Equal(t, want, buf.String())
}

func TestWriter_Imported(t *testing.T) {
	r, buf := newTestWriter(4)
	r.Imported(ImportStats{Records: 5, NamesAdded: 4, LocationsAdded: 3, TotalNameLen: 39})
	require.NoError(t, r.Flush())
	assert.Equal(t, "Imported Features by name: 4\nImported Locations: 3\nAverage name length: 9\n", buf.String())

	assert.Equal(t, 0, ImportStats{}.AverageNameLength())
}

func TestWriter_QueryLines(t *testing.T) {
	r, buf := newTestWriter(4)
	r.FoundAtHeader("79d 30m 31s West", "38d 28m 56s North")
	r.FoundAt(types.Locator(1024), "Blue Grass", "Highland", "VA")
	r.NothingAt("79d 30m 31s West", "38d 28m 56s North")
	r.FoundInHeader(2, "79d 30m 31s West", 60, "38d 28m 56s North", 90)
	r.FoundIn(types.Locator(7), "Monterey", "VA", "79d 34m 51s West", "38d 24m 43s North")
	r.NothingIn("79d 30m 31s West", 60, "38d 28m 56s North", 90)
	r.Named(types.Locator(7), "Highland", "79d 34m 51s West", "38d 24m 43s North")
	r.NoMatch("Nowhere", "VA")
	r.Terminate(12)
	require.NoError(t, r.Flush())

	want := "   The following features were found at: (79d 30m 31s West, 38d 28m 56s North)\n" +
		"\t1024:\tBlue Grass\tHighland\tVA\n" +
		"Nothing was found at (79d 30m 31s West, 38d 28m 56s North)\n" +
		"   The following 2 features were found in: (79d 30m 31s West +/- 60, 38d 28m 56s North +/- 90)\n" +
		"\t7:\tMonterey\tVA\t(79d 34m 51s West, 38d 24m 43s North)\n" +
		"Nothing was found in (79d 30m 31s West +/- 60, 38d 28m 56s North +/- 90)\n" +
		"\t7:\tHighland  (79d 34m 51s West, 38d 24m 43s North)\n" +
		"No records match Nowhere and VA\n" +
		"Command 12:\tquit\n\nTerminating execution of commands.\n"
	assert.Equal(t, want, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_StickyError(t *testing.T) {
	r := NewWriter(failingWriter{}, 80)
	r.Section(func(w io.Writer) error { return errors.New("display failed") })
	r.Comment("ignored")
	assert.EqualError(t, r.Err(), "display failed")
	assert.EqualError(t, r.Flush(), "display failed")

	r = NewWriter(failingWriter{}, 80)
	r.Comment("x")
	assert.Error(t, r.Flush())
}
