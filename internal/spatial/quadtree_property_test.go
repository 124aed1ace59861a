package spatial

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/gisdb/gisdb/pkg/types"
)

// TestProperty_FindReturnsInsertedLocators checks that every coordinate
// inserted inside the world is findable with its locators in insertion order.
func TestProperty_FindReturnsInsertedLocators(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("find returns every locator inserted at a coordinate", prop.ForAll(
		func(xs, ys []int64) bool {
			n := len(xs)
			if len(ys) < n {
				n = len(ys)
			}

			qt := New()
			if err := qt.SetWorld(-200, 200, -100, 100); err != nil {
				return false
			}
			expected := make(map[types.Coordinate]types.Locators)
			var order []types.Coordinate
			for i := 0; i < n; i++ {
				c := types.NewCoordinate(xs[i], ys[i])
				loc := types.Locator(i % 7)
				if !qt.Insert(c, loc) {
					return false
				}
				if _, seen := expected[c]; !seen {
					order = append(order, c)
				}
				ls := expected[c]
				ls.Add(loc)
				expected[c] = ls
			}

			for _, c := range order {
				got, ok := qt.Find(c)
				if !ok || len(got) != len(expected[c]) {
					return false
				}
				for i := range got {
					if got[i] != expected[c][i] {
						return false
					}
				}
			}
			return qt.Stats().Entries == len(order)
		},
		gen.SliceOf(gen.Int64Range(-200, 200)),
		gen.SliceOf(gen.Int64Range(-100, 100)),
	))

	properties.TestingRun(t)
}

// TestProperty_RangeQueryMatchesFilter compares RangeQuery against a brute
// force filter over the inserted coordinates.
func TestProperty_RangeQueryMatchesFilter(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("range query returns exactly the coordinates inside the box", prop.ForAll(
		func(xs, ys []int64, xLo, xHi, yLo, yHi int64) bool {
			if xLo > xHi {
				xLo, xHi = xHi, xLo
			}
			if yLo > yHi {
				yLo, yHi = yHi, yLo
			}
			n := len(xs)
			if len(ys) < n {
				n = len(ys)
			}

			qt := New()
			if err := qt.SetWorld(-64, 64, -64, 64); err != nil {
				return false
			}
			want := make(map[types.Coordinate]bool)
			for i := 0; i < n; i++ {
				c := types.NewCoordinate(xs[i], ys[i])
				qt.Insert(c, types.Locator(i))
				if c.InBox(xLo, xHi, yLo, yHi) {
					want[c] = true
				}
			}

			got := qt.RangeQuery(xLo, xHi, yLo, yHi)
			if len(got) != len(want) {
				return false
			}
			for _, e := range got {
				if !want[e.Coordinate] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(-64, 64)),
		gen.SliceOf(gen.Int64Range(-64, 64)),
		gen.Int64Range(-70, 70),
		gen.Int64Range(-70, 70),
		gen.Int64Range(-70, 70),
		gen.Int64Range(-70, 70),
	))

	properties.TestingRun(t)
}
