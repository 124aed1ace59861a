// Package types provides the value types shared by the gisdb indexes: coordinates,
// rectangles, record locators and name keys.
package types

import "fmt"

// Coordinate is a geographic position in whole seconds of arc.
// X is longitude (east positive) and Y is latitude (north positive).
type Coordinate struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// NewCoordinate returns the coordinate for the given longitude and latitude seconds.
func NewCoordinate(longitude, latitude int64) Coordinate {
	return Coordinate{X: longitude, Y: latitude}
}

// Equal reports whether both components match exactly.
func (c Coordinate) Equal(o Coordinate) bool {
	return c.X == o.X && c.Y == o.Y
}

// InBox reports whether c lies in the inclusive box [xLo,xHi]x[yLo,yHi].
func (c Coordinate) InBox(xLo, xHi, yLo, yHi int64) bool {
	return c.X >= xLo && c.X <= xHi && c.Y >= yLo && c.Y <= yHi
}

// String returns "(x, y)".
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Direction names a quadrant of a rectangle.
type Direction int

const (
	NoQuadrant Direction = iota
	NE
	NW
	SW
	SE
)

// String returns the compass abbreviation of the direction.
func (d Direction) String() string {
	switch d {
	case NE:
		return "NE"
	case NW:
		return "NW"
	case SW:
		return "SW"
	case SE:
		return "SE"
	default:
		return "NOQUADRANT"
	}
}
