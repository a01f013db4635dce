package panel

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"crosswarped.com/ravengen/pkg/distractor"
	"crosswarped.com/ravengen/pkg/primitives"
)

// maxEnumerableSlots bounds the components whose slot subsets are enumerated.
const maxEnumerableSlots = 16

// Modification is a single attribute change. Value is the new level of an entity
// attribute or the new Number level; Slots is the new occupancy for Number and Position.
type Modification struct {
	Component  int                   `json:"component"`
	Attr       primitives.Attr       `json:"attr"`
	Value      int                   `json:"value"`
	Slots      primitives.SlotSet    `json:"-"`
	Uniformity distractor.Uniformity `json:"-"`
}

func (m Modification) String() string {
	switch m.Attr {
	case primitives.AttrNumber, primitives.AttrPosition:
		return fmt.Sprintf("%s@%d=%s", m.Attr, m.Component, m.Slots)
	}
	return fmt.Sprintf("%s@%d=%d", m.Attr, m.Component, m.Value)
}

func (m Modification) sameTarget(o Modification) bool {
	return m.Component == o.Component && m.Attr == o.Attr
}

// SampleAlternative draws a value for the drawn attribute that differs from the
// panel's own and from every excluded modification of the same attribute.
func (p *Panel) SampleAlternative(rng *rand.Rand, d distractor.Draw, exclude []Modification) (Modification, error) {
	c, err := p.component(d.Component)
	if err != nil {
		return Modification{}, err
	}
	base := Modification{Component: d.Component, Attr: d.Attr, Uniformity: d.Uniformity}
	taken := func(m Modification) bool {
		return slices.ContainsFunc(exclude, func(x Modification) bool {
			if !x.sameTarget(m) {
				return false
			}
			if m.Attr == primitives.AttrNumber || m.Attr == primitives.AttrPosition {
				return x.Slots == m.Slots
			}
			return x.Value == m.Value
		})
	}

	var options []Modification
	switch d.Attr {
	case primitives.AttrNumber:
		for level := d.Levels.Min; level <= d.Levels.Max; level++ {
			if level == c.NumberLevel() {
				continue
			}
			sets, err := subsets(c.SlotCount(), level+1)
			if err != nil {
				return Modification{}, err
			}
			for _, s := range sets {
				m := base
				m.Value, m.Slots = level, s
				if !taken(m) {
					options = append(options, m)
				}
			}
		}
	case primitives.AttrPosition:
		sets, err := subsets(c.SlotCount(), c.Occupied.Count())
		if err != nil {
			return Modification{}, err
		}
		for _, s := range sets {
			m := base
			m.Value, m.Slots = c.NumberLevel(), s
			if s != c.Occupied && !taken(m) {
				options = append(options, m)
			}
		}
	case primitives.AttrType, primitives.AttrSize, primitives.AttrColor:
		current := *c.Entities[0].level(d.Attr)
		for level := d.Levels.Min; level <= d.Levels.Max; level++ {
			m := base
			m.Value = level
			if level != current && !taken(m) {
				options = append(options, m)
			}
		}
	default:
		return Modification{}, fmt.Errorf("attribute %s cannot be modified: %w", d.Attr, ErrInvalidInput)
	}

	if len(options) == 0 {
		return Modification{}, fmt.Errorf("%s of component %d: %w", d.Attr, d.Component, ErrNoAlternative)
	}
	return options[rng.IntN(len(options))], nil
}

// subsets lists every set of size k over n slots.
func subsets(n, k int) ([]primitives.SlotSet, error) {
	if n > maxEnumerableSlots {
		return nil, fmt.Errorf("%d slots: %w", n, ErrInvalidInput)
	}
	var out []primitives.SlotSet
	for mask := uint32(0); mask < 1<<n; mask++ {
		var s primitives.SlotSet
		for i := range n {
			if mask&(1<<i) != 0 {
				if err := s.Add(i); err != nil {
					return nil, err
				}
			}
		}
		if s.Count() == k {
			out = append(out, s)
		}
	}
	return out, nil
}

// Apply returns a copy of the panel with m applied and recorded. The receiver is
// left untouched.
func (p *Panel) Apply(m Modification) (*Panel, error) {
	out := p.Clone()
	c, err := out.component(m.Component)
	if err != nil {
		return nil, err
	}
	switch m.Attr {
	case primitives.AttrNumber, primitives.AttrPosition:
		if m.Slots.Empty() {
			return nil, fmt.Errorf("%s without slots: %w", m, ErrInvalidInput)
		}
		if m.Attr == primitives.AttrPosition && m.Slots.Count() != c.Occupied.Count() {
			return nil, fmt.Errorf("%s changes the entity count: %w", m, ErrInvalidInput)
		}
		c.Entities = relocate(c.Entities, m.Slots)
		c.Occupied = m.Slots
	case primitives.AttrType, primitives.AttrSize, primitives.AttrColor:
		if m.Uniformity == distractor.UniformityEnforced {
			for i := range c.Entities {
				*c.Entities[i].level(m.Attr) = m.Value
			}
		} else {
			*c.Entities[0].level(m.Attr) = m.Value
		}
	default:
		return nil, fmt.Errorf("attribute %s cannot be modified: %w", m.Attr, ErrInvalidInput)
	}
	out.Modifications = append(out.Modifications, m)
	return out, nil
}

// relocate moves entities onto the given slots in order. Extra slots are filled with
// copies of the first entity; surplus entities are dropped.
func relocate(entities []Entity, slots primitives.SlotSet) []Entity {
	out := make([]Entity, 0, slots.Count())
	for s := range slots.Indices() {
		e := entities[0]
		if len(out) < len(entities) {
			e = entities[len(out)]
		}
		e.Slot = s
		out = append(out, e)
	}
	return out
}
