package primitives

import "fmt"

// PositionKind distinguishes how a component's slots are described.
type PositionKind string

const (
	// PositionPlanar slots are boxes given as [x, y, width, height].
	PositionPlanar PositionKind = "planar"
	// PositionLine slots are segments given as [xFrom, yFrom, xTo, yTo].
	PositionLine PositionKind = "line"
)

// Slot represents a single place in a component where an entity may be drawn.
// Coordinates are relative to the component's bounding box.
type Slot [4]float64

func (s Slot) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f, %.2f)", s[0], s[1], s[2], s[3])
}
