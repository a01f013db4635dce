package constraint

import (
	"fmt"

	"crosswarped.com/ravengen/pkg/primitives"
	"crosswarped.com/ravengen/pkg/rules"
)

// bounds is the working set of intervals a rule group shrinks.
type bounds struct {
	number, uniformity, typ, size, color primitives.Interval
}

func (b *bounds) entity(attr primitives.Attr) *primitives.Interval {
	switch attr {
	case primitives.AttrNumber:
		return &b.number
	case primitives.AttrType:
		return &b.typ
	case primitives.AttrSize:
		return &b.size
	case primitives.AttrColor:
		return &b.color
	}
	return nil
}

type shrinkFunc func(b *bounds, attr primitives.Attr, value int)

type key struct {
	name rules.Name
	attr primitives.Attr
}

// shrinkers is keyed by every legal (rule, attribute) pair; rules.New rejects the rest.
var shrinkers = map[key]shrinkFunc{
	{rules.Constant, primitives.AttrNumberPosition}: noShrink,
	{rules.Constant, primitives.AttrType}:           noShrink,
	{rules.Constant, primitives.AttrSize}:           noShrink,
	{rules.Constant, primitives.AttrColor}:          noShrink,

	{rules.Progression, primitives.AttrNumber}:   progression,
	{rules.Progression, primitives.AttrPosition}: progressionPosition,
	{rules.Progression, primitives.AttrType}:     progression,
	{rules.Progression, primitives.AttrSize}:     progression,
	{rules.Progression, primitives.AttrColor}:    progression,

	{rules.Arithmetic, primitives.AttrNumber}:   arithmetic,
	{rules.Arithmetic, primitives.AttrPosition}: arithmeticPosition,
	{rules.Arithmetic, primitives.AttrSize}:     arithmetic,
	{rules.Arithmetic, primitives.AttrColor}:    arithmeticColor,

	{rules.DistributeThree, primitives.AttrNumber}:   distributeThree,
	{rules.DistributeThree, primitives.AttrPosition}: distributeThreePosition,
	{rules.DistributeThree, primitives.AttrType}:     distributeThree,
	{rules.DistributeThree, primitives.AttrSize}:     distributeThree,
	{rules.DistributeThree, primitives.AttrColor}:    distributeThree,
}

func noShrink(*bounds, primitives.Attr, int) {}

// progression reserves two steps of headroom in the direction of travel.
func progression(b *bounds, attr primitives.Attr, value int) {
	i := b.entity(attr)
	if value > 0 {
		i.Max -= 2 * value
	} else {
		i.Min -= 2 * value
	}
}

// progressionPosition moves entities through the ordered slots, so every extra
// entity removes a free slot to move into.
func progressionPosition(b *bounds, _ primitives.Attr, value int) {
	b.number.Max -= 2 * abs(value)
}

// arithmetic leaves room for the third column to be the sum (value > 0) or the
// difference (value < 0) of the first two.
func arithmetic(b *bounds, attr primitives.Attr, value int) {
	i := b.entity(attr)
	if value > 0 {
		i.Max = i.Max - i.Min - 1
	} else {
		i.Min = 2*i.Min + 1
	}
}

// arithmeticPosition keeps at least two distinct slot configurations for set union
// (value > 0) or set difference (value < 0). The difference needs the first panel
// to overlap the second, hence the raised minimum.
func arithmeticPosition(b *bounds, _ primitives.Attr, value int) {
	if value < 0 {
		b.number.Min = (b.number.Max+2)/2 - 1
	}
	b.number.Max--
}

// arithmeticColor needs two different colors; level 0 is a legal operand.
func arithmeticColor(b *bounds, _ primitives.Attr, value int) {
	if b.color.Max-b.color.Min < 1 {
		b.color = b.color.Invalidate()
		return
	}
	switch {
	case value > 0:
		b.color.Max -= b.color.Min
	case value < 0:
		b.color.Min *= 2
	}
}

// distributeThree needs three distinct levels.
func distributeThree(b *bounds, attr primitives.Attr, _ int) {
	i := b.entity(attr)
	if i.Levels() < 3 {
		*i = i.Invalidate()
	}
}

// distributeThreePosition needs at least three slots. With n = Max+1 slots and
// n >= 3 there are already C(n, k) >= 3 subsets for every 1 <= k < n, so only the
// full layout has to be excluded.
func distributeThreePosition(b *bounds, _ primitives.Attr, _ int) {
	if b.number.Max+1 < 3 {
		b.number = b.number.Invalidate()
		return
	}
	b.number.Max--
}

// Tighten narrows the given ranges so that every rule in the group can be applied twice
// across a row. It fails only on a malformed group; an unsatisfiable result is reported
// through Layout.Satisfiable and Entity.Satisfiable.
//
// The returned layout has an empty Position and the entity constraint has the full
// Angle range.
func Tighten(group rules.Group, number, uniformity, typ, size, color primitives.Interval) (Layout, Entity, error) {
	if err := group.Validate(); err != nil {
		return Layout{}, Entity{}, fmt.Errorf("tighten: %w", err)
	}
	b := bounds{number: number, uniformity: uniformity, typ: typ, size: size, color: color}
	for _, r := range group {
		shrink, ok := shrinkers[key{r.Name(), r.Attr()}]
		if !ok {
			return Layout{}, Entity{}, fmt.Errorf("tighten: no shrink for %s: %w", r, rules.ErrInvalidInput)
		}
		shrink(&b, r.Attr(), r.Value())
	}
	return DeriveLayout("", nil, b.number, b.uniformity),
		DeriveEntity(b.typ, b.size, b.color, primitives.AngleLevels),
		nil
}

// TightenFrom is Tighten fed from existing constraints.
func TightenFrom(group rules.Group, l Layout, e Entity) (Layout, Entity, error) {
	return Tighten(group, l.Number, l.Uniformity, e.Type, e.Size, e.Color)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
