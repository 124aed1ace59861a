// Package spatial implements the coordinate index: a bucketed point-region
// quadtree mapping each distinct coordinate to the records located there.
package spatial

import (
	"fmt"
	"io"
	"strings"

	gisErrors "github.com/gisdb/gisdb/internal/errors"
	"github.com/gisdb/gisdb/pkg/types"
)

// BucketCapacity is the number of distinct coordinates a leaf holds before it splits.
const BucketCapacity = 4

// node is either a *leaf or an *internal.
type node interface {
	isNode()
}

type leaf struct {
	entries []*CoordinateEntry
}

// internal children are indexed by quadrant, see slot.
type internal struct {
	children [4]node
}

func (*leaf) isNode()     {}
func (*internal) isNode() {}

func slot(d types.Direction) int {
	switch d {
	case types.NE:
		return 0
	case types.NW:
		return 1
	case types.SW:
		return 2
	case types.SE:
		return 3
	default:
		panic(fmt.Sprintf("spatial: no child slot for %s", d))
	}
}

func (n *internal) empty() bool {
	for _, c := range n.children {
		if c != nil {
			return false
		}
	}
	return true
}

// QuadTree is a PR quadtree over a fixed world rectangle. It is not safe for
// concurrent use.
type QuadTree struct {
	world    types.Rect
	worldSet bool
	root     node

	entries  int
	locators int
	leaves   int
	internal int
}

// New returns an empty tree. SetWorld must be called before Insert.
func New() *QuadTree {
	return &QuadTree{}
}

// SetWorld fixes the world bounds, in seconds. It may be called once.
func (t *QuadTree) SetWorld(xMin, xMax, yMin, yMax int64) error {
	if t.worldSet {
		return gisErrors.NewIndexError(gisErrors.CodeWorldAlreadySet,
			fmt.Sprintf("world already set to %s", t.world))
	}
	if xMin > xMax || yMin > yMax {
		return gisErrors.NewValidationError(gisErrors.CodeInvalidBounds,
			fmt.Sprintf("invalid world bounds x=[%d,%d] y=[%d,%d]", xMin, xMax, yMin, yMax))
	}
	t.world = types.NewRect(xMin, xMax, yMin, yMax)
	t.worldSet = true
	return nil
}

// World returns the configured bounds and whether they have been set.
func (t *QuadTree) World() (types.Rect, bool) {
	return t.world, t.worldSet
}

// Insert records loc at c. It returns false, leaving the tree untouched, when
// the world is unset or c lies outside it. Inserting a locator already stored
// at c succeeds without changing anything.
func (t *QuadTree) Insert(c types.Coordinate, loc types.Locator) bool {
	if !t.worldSet || !t.world.Contains(c) {
		return false
	}
	t.root = t.insert(t.root, t.world, c, loc)
	return true
}

func (t *QuadTree) insert(n node, r types.Rect, c types.Coordinate, loc types.Locator) node {
	switch n := n.(type) {
	case nil:
		t.entries++
		t.locators++
		t.leaves++
		return &leaf{entries: []*CoordinateEntry{newEntry(c, loc)}}

	case *leaf:
		for _, e := range n.entries {
			if e.Coordinate.Equal(c) {
				if e.Locators.Add(loc) {
					t.locators++
				}
				return n
			}
		}
		if len(n.entries) < BucketCapacity {
			n.entries = append(n.entries, newEntry(c, loc))
			t.entries++
			t.locators++
			return n
		}
		return t.insert(t.split(n, r), r, c, loc)

	case *internal:
		d := r.Quadrant(c)
		i := slot(d)
		n.children[i] = t.insert(n.children[i], r.Child(d), c, loc)
		return n

	default:
		panic(fmt.Sprintf("spatial: unknown node type %T", n))
	}
}

// split converts a full leaf into an internal node, re-homing each entry into
// the child leaf for its quadrant of r.
func (t *QuadTree) split(l *leaf, r types.Rect) *internal {
	in := &internal{}
	for _, e := range l.entries {
		i := slot(r.Quadrant(e.Coordinate))
		child, _ := in.children[i].(*leaf)
		if child == nil {
			child = &leaf{}
			in.children[i] = child
			t.leaves++
		}
		child.entries = append(child.entries, e)
	}
	t.leaves--
	t.internal++
	return in
}

// Find returns a copy of the locators stored at c.
func (t *QuadTree) Find(c types.Coordinate) (types.Locators, bool) {
	if !t.worldSet || !t.world.Contains(c) {
		return nil, false
	}
	n, r := t.root, t.world
	for {
		switch cur := n.(type) {
		case nil:
			return nil, false
		case *leaf:
			for _, e := range cur.entries {
				if e.Coordinate.Equal(c) {
					return e.Locators.Clone(), true
				}
			}
			return nil, false
		case *internal:
			if cur.empty() {
				panic("spatial: internal node has no children")
			}
			d := r.Quadrant(c)
			n, r = cur.children[slot(d)], r.Child(d)
		default:
			panic(fmt.Sprintf("spatial: unknown node type %T", cur))
		}
	}
}

// RangeQuery returns copies of every entry whose coordinate lies in the
// inclusive box [xLo,xHi]x[yLo,yHi]. Subtrees whose rectangle misses the box
// are skipped.
func (t *QuadTree) RangeQuery(xLo, xHi, yLo, yHi int64) []CoordinateEntry {
	var out []CoordinateEntry
	if t.root == nil || xLo > xHi || yLo > yHi {
		return out
	}
	t.collect(t.root, t.world, xLo, xHi, yLo, yHi, &out)
	return out
}

func (t *QuadTree) collect(n node, r types.Rect, xLo, xHi, yLo, yHi int64, out *[]CoordinateEntry) {
	if n == nil || !r.Intersects(xLo, xHi, yLo, yHi) {
		return
	}
	switch cur := n.(type) {
	case *leaf:
		for _, e := range cur.entries {
			if e.Coordinate.InBox(xLo, xHi, yLo, yHi) {
				*out = append(*out, e.clone())
			}
		}
	case *internal:
		if cur.empty() {
			panic("spatial: internal node has no children")
		}
		for _, d := range []types.Direction{types.NE, types.NW, types.SW, types.SE} {
			t.collect(cur.children[slot(d)], r.Child(d), xLo, xHi, yLo, yHi, out)
		}
	}
}

// Stats summarizes the tree shape.
type Stats struct {
	Entries       int `json:"entries"`
	Locators      int `json:"locators"`
	LeafNodes     int `json:"leaf_nodes"`
	InternalNodes int `json:"internal_nodes"`
}

// Stats returns current counts.
func (t *QuadTree) Stats() Stats {
	return Stats{Entries: t.entries, Locators: t.locators, LeafNodes: t.leaves, InternalNodes: t.internal}
}

// Display writes the tree in SW, SE, self, NE, NW order. Empty child slots
// print as "*", internal nodes as "@", and each level indents three spaces.
func (t *QuadTree) Display(w io.Writer) error {
	if t.root == nil {
		_, err := io.WriteString(w, "Tree is empty.\n")
		return err
	}
	var b strings.Builder
	display(&b, t.root, "")
	_, err := io.WriteString(w, b.String())
	return err
}

func display(b *strings.Builder, n node, pad string) {
	if n == nil {
		b.WriteString(pad + "*\n")
		return
	}
	in, isInternal := n.(*internal)
	if isInternal {
		display(b, in.children[slot(types.SW)], pad+"   ")
		display(b, in.children[slot(types.SE)], pad+"   ")
	}
	b.WriteString(pad)
	if l, ok := n.(*leaf); ok {
		for _, e := range l.entries {
			b.WriteString(e.String())
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	} else {
		b.WriteString("@\n")
	}
	if isInternal {
		display(b, in.children[slot(types.NE)], pad+"   ")
		display(b, in.children[slot(types.NW)], pad+"   ")
	}
}
