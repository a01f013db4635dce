// Package panel holds concrete answer panels: which slots each component occupies
// and the levels of every entity, together with the untightened constraints the
// distractor explorer counts alternatives against.
package panel

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"crosswarped.com/ravengen/pkg/constraint"
	"crosswarped.com/ravengen/pkg/layout"
	"crosswarped.com/ravengen/pkg/primitives"
)

var (
	// ErrInvalidInput reports a panel request that does not match its configuration.
	ErrInvalidInput = errors.New("panel: invalid input")
	// ErrNoAlternative is returned when every legal value of an attribute is already taken.
	ErrNoAlternative = errors.New("panel: no alternative value")
)

// Entity is one drawn shape, placed in a slot of its component.
type Entity struct {
	Slot  int `json:"slot"`
	Type  int `json:"type"`
	Size  int `json:"size"`
	Color int `json:"color"`
	Angle int `json:"angle"`
}

func (e *Entity) level(attr primitives.Attr) *int {
	switch attr {
	case primitives.AttrType:
		return &e.Type
	case primitives.AttrSize:
		return &e.Size
	case primitives.AttrColor:
		return &e.Color
	case primitives.AttrAngle:
		return &e.Angle
	}
	return nil
}

// Component is a sampled component. Layout and Entity are the configuration's
// constraints before any rule tightened them.
type Component struct {
	Name  string
	Kind  primitives.PositionKind
	Slots []primitives.Slot
	Outer bool
	Mesh  bool

	Layout constraint.Layout
	Entity constraint.Entity

	Uniformity int
	Occupied   primitives.SlotSet
	// Entities follow Occupied in ascending slot order.
	Entities []Entity
}

// NumberLevel is the Number level of the component: one less than its entity count.
func (c Component) NumberLevel() int {
	return c.Occupied.Count() - 1
}

// SlotCount is the number of places an entity of the component may occupy.
func (c Component) SlotCount() int {
	return len(c.Slots)
}

// Uniform reports whether all entities share Type, Size and Color.
func (c Component) Uniform() bool {
	return c.Uniformity == primitives.UniformLevel
}

func (c Component) clone() Component {
	c.Entities = slices.Clone(c.Entities)
	return c
}

// Panel is a sampled answer panel. Modifications lists, in order, the changes that
// derived it from the answer; it is empty for the answer itself.
type Panel struct {
	Configuration layout.ID
	Components    []Component
	Modifications []Modification
}

// Constraints is the pair of tightened constraints a component is sampled from.
type Constraints struct {
	Layout constraint.Layout
	Entity constraint.Entity
}

// Sample draws a panel of cfg from the tightened constraints of each component.
func Sample(rng *rand.Rand, cfg layout.Configuration, tightened []Constraints) (*Panel, error) {
	if len(tightened) != cfg.NumComponents() {
		return nil, fmt.Errorf("%d constraints for %s: %w", len(tightened), cfg, ErrInvalidInput)
	}
	p := &Panel{Configuration: cfg.ID, Components: make([]Component, len(cfg.Components))}
	for i, c := range cfg.Components {
		t := tightened[i]
		if !t.Layout.Satisfiable() || !t.Entity.Satisfiable() {
			return nil, fmt.Errorf("component %d: unsatisfiable %v: %w", i, constraint.Unsatisfied(t.Layout, t.Entity), ErrInvalidInput)
		}
		count := levelIn(rng, t.Layout.Number) + 1
		if count < 1 || count > c.SlotCount() {
			return nil, fmt.Errorf("component %d: %d entities in %d slots: %w", i, count, c.SlotCount(), ErrInvalidInput)
		}

		comp := Component{
			Name:       c.Name,
			Kind:       c.Kind,
			Slots:      c.Slots,
			Outer:      c.Outer,
			Mesh:       c.Mesh,
			Layout:     constraint.DeriveLayout(c.Kind, c.Slots, c.Number, c.Uniformity),
			Entity:     constraint.DeriveEntity(c.Type, c.Size, c.Color, c.Angle),
			Uniformity: levelIn(rng, t.Layout.Uniformity),
		}
		occupied, err := randomSlots(rng, c.SlotCount(), count)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		comp.Occupied = occupied
		shared := sampleEntity(rng, t.Entity)
		for s := range comp.Occupied.Indices() {
			e := shared
			if !comp.Uniform() {
				e = sampleEntity(rng, t.Entity)
			}
			e.Slot = s
			e.Angle = levelIn(rng, t.Entity.Angle)
			comp.Entities = append(comp.Entities, e)
		}
		p.Components[i] = comp
	}
	return p, nil
}

func sampleEntity(rng *rand.Rand, c constraint.Entity) Entity {
	return Entity{
		Type:  levelIn(rng, c.Type),
		Size:  levelIn(rng, c.Size),
		Color: levelIn(rng, c.Color),
	}
}

func levelIn(rng *rand.Rand, i primitives.Interval) int {
	return i.Min + rng.IntN(i.Levels())
}

// NumComponents returns the number of components.
func (p *Panel) NumComponents() int { return len(p.Components) }

// OriginalLayout returns the untightened layout constraint of a component.
func (p *Panel) OriginalLayout(i int) constraint.Layout { return p.Components[i].Layout }

// OriginalEntity returns the untightened entity constraint of a component.
func (p *Panel) OriginalEntity(i int) constraint.Entity { return p.Components[i].Entity }

// Number returns the entity count of a component.
func (p *Panel) Number(i int) int { return p.Components[i].Occupied.Count() }

// Uniform reports whether a component is uniform.
func (p *Panel) Uniform(i int) bool { return p.Components[i].Uniform() }

// SlotCount returns the number of slots of a component.
func (p *Panel) SlotCount(i int) int { return p.Components[i].SlotCount() }

// Clone returns a deep copy. Slot geometry and constraints are shared; they are never
// modified after sampling.
func (p *Panel) Clone() *Panel {
	out := &Panel{
		Configuration: p.Configuration,
		Components:    make([]Component, len(p.Components)),
		Modifications: slices.Clone(p.Modifications),
	}
	for i, c := range p.Components {
		out.Components[i] = c.clone()
	}
	return out
}

func (p *Panel) component(i int) (*Component, error) {
	if i < 0 || i >= len(p.Components) {
		return nil, fmt.Errorf("component %d of %d: %w", i, len(p.Components), ErrInvalidInput)
	}
	return &p.Components[i], nil
}

func (p *Panel) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:", p.Configuration)
	for i, c := range p.Components {
		fmt.Fprintf(&b, " [%d %s n=%d uni=%d %s]", i, c.Name, c.Occupied.Count(), c.Uniformity, c.Occupied)
	}
	return b.String()
}
