package types

import "fmt"

// Rect is an inclusive axis-aligned rectangle in seconds of arc. Bounds are
// float64 because halving an integer extent produces half-second midpoints.
type Rect struct {
	XMin, XMax, YMin, YMax float64
}

// NewRect builds a rectangle from integer world bounds.
func NewRect(xMin, xMax, yMin, yMax int64) Rect {
	return Rect{XMin: float64(xMin), XMax: float64(xMax), YMin: float64(yMin), YMax: float64(yMax)}
}

// Contains reports whether c lies inside r, boundary included.
func (r Rect) Contains(c Coordinate) bool {
	x, y := float64(c.X), float64(c.Y)
	return x >= r.XMin && x <= r.XMax && y >= r.YMin && y <= r.YMax
}

// Intersects reports whether r overlaps the inclusive box [xLo,xHi]x[yLo,yHi].
func (r Rect) Intersects(xLo, xHi, yLo, yHi int64) bool {
	return r.XMin <= float64(xHi) && r.XMax >= float64(xLo) &&
		r.YMin <= float64(yHi) && r.YMax >= float64(yLo)
}

// Midpoint returns the vertical split line (average of the x bounds) and the
// horizontal split line (average of the y bounds).
func (r Rect) Midpoint() (midX, midY float64) {
	return (r.XMin + r.XMax) / 2.0, (r.YMin + r.YMax) / 2.0
}

// Quadrant classifies c against the midpoint of r.
//
// The four comparisons form a pinwheel: each half-open split line belongs to
// exactly one quadrant, and the only point none of them claims is the exact
// midpoint, which is assigned to NE. Points outside r yield NoQuadrant.
func (r Rect) Quadrant(c Coordinate) Direction {
	if !r.Contains(c) {
		return NoQuadrant
	}
	midX, midY := r.Midpoint()
	x, y := float64(c.X), float64(c.Y)
	switch {
	case x > midX && y >= midY:
		return NE
	case x <= midX && y > midY:
		return NW
	case x < midX && y <= midY:
		return SW
	case x >= midX && y < midY:
		return SE
	default:
		return NE
	}
}

// Child returns the sub-rectangle covering quadrant d. The children share
// their split lines, so every point Quadrant assigns to d lies inside Child(d).
func (r Rect) Child(d Direction) Rect {
	midX, midY := r.Midpoint()
	switch d {
	case NE:
		return Rect{XMin: midX, XMax: r.XMax, YMin: midY, YMax: r.YMax}
	case NW:
		return Rect{XMin: r.XMin, XMax: midX, YMin: midY, YMax: r.YMax}
	case SW:
		return Rect{XMin: r.XMin, XMax: midX, YMin: r.YMin, YMax: midY}
	case SE:
		return Rect{XMin: midX, XMax: r.XMax, YMin: r.YMin, YMax: midY}
	default:
		panic(fmt.Sprintf("types: no child rectangle for %s", d))
	}
}

// String returns the rectangle as "[xMin, xMax] x [yMin, yMax]".
func (r Rect) String() string {
	return fmt.Sprintf("[%g, %g] x [%g, %g]", r.XMin, r.XMax, r.YMin, r.YMax)
}
