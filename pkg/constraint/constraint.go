// Package constraint derives the level ranges a component may be sampled from.
//
// A constraint bounds level indices, not raw values. Tighten narrows the ranges so that
// a rule applied twice along a row of three panels never leaves the legal range; an
// interval that ends up with Min > Max means the rule cannot be realised for this
// component and the whole rule assignment has to be resampled.
package constraint

import (
	"slices"

	"crosswarped.com/ravengen/pkg/primitives"
)

// Position holds the candidate slots of a layout. Tighten leaves it empty: the
// concrete slots are resolved from the component's topology.
type Position struct {
	Kind  primitives.PositionKind
	Slots []primitives.Slot
}

// Layout constrains the Number, Position and Uniformity of a component.
type Layout struct {
	Number     primitives.Interval
	Position   Position
	Uniformity primitives.Interval
}

// Entity constrains the attributes of every entity in a component.
type Entity struct {
	Type  primitives.Interval
	Size  primitives.Interval
	Color primitives.Interval
	Angle primitives.Interval
}

// DeriveLayout builds a layout constraint from explicit bounds. The slot list is copied.
func DeriveLayout(kind primitives.PositionKind, slots []primitives.Slot, number, uniformity primitives.Interval) Layout {
	return Layout{
		Number:     number,
		Position:   Position{Kind: kind, Slots: slices.Clone(slots)},
		Uniformity: uniformity,
	}
}

// DefaultLayout covers the full Number and Uniformity index spaces.
func DefaultLayout(kind primitives.PositionKind, slots []primitives.Slot) Layout {
	return DeriveLayout(kind, slots, primitives.NumberLevels, primitives.UniformityLevels)
}

// DeriveEntity builds an entity constraint from explicit bounds.
func DeriveEntity(typ, size, color, angle primitives.Interval) Entity {
	return Entity{Type: typ, Size: size, Color: color, Angle: angle}
}

// DefaultEntity covers the full index space of every entity attribute.
func DefaultEntity() Entity {
	return DeriveEntity(primitives.TypeLevels, primitives.SizeLevels, primitives.ColorLevels, primitives.AngleLevels)
}

// Satisfiable reports whether Number and Uniformity both admit a level.
func (l Layout) Satisfiable() bool {
	return l.Number.Satisfiable() && l.Uniformity.Satisfiable()
}

// Satisfiable reports whether every entity attribute admits a level.
func (e Entity) Satisfiable() bool {
	return e.Type.Satisfiable() && e.Size.Satisfiable() && e.Color.Satisfiable() && e.Angle.Satisfiable()
}

// Range returns the interval of an entity attribute.
func (e Entity) Range(attr primitives.Attr) (primitives.Interval, bool) {
	switch attr {
	case primitives.AttrType:
		return e.Type, true
	case primitives.AttrSize:
		return e.Size, true
	case primitives.AttrColor:
		return e.Color, true
	case primitives.AttrAngle:
		return e.Angle, true
	}
	return primitives.Interval{}, false
}

// Unsatisfied lists the attributes whose interval is empty, in attribute order.
func Unsatisfied(l Layout, e Entity) []primitives.Attr {
	var out []primitives.Attr
	check := func(attr primitives.Attr, i primitives.Interval) {
		if !i.Satisfiable() {
			out = append(out, attr)
		}
	}
	check(primitives.AttrNumber, l.Number)
	check(primitives.AttrUniformity, l.Uniformity)
	check(primitives.AttrType, e.Type)
	check(primitives.AttrSize, e.Size)
	check(primitives.AttrColor, e.Color)
	check(primitives.AttrAngle, e.Angle)
	return out
}
