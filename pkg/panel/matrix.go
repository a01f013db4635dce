package panel

import (
	"fmt"
	"math/rand/v2"

	"crosswarped.com/ravengen/pkg/layout"
	"crosswarped.com/ravengen/pkg/primitives"
	"crosswarped.com/ravengen/pkg/rules"
)

// Matrix is the three by three grid of a sample, row by row. The last panel of the
// last row is the answer; the other eight are shown with the question.
type Matrix [3][3]*Panel

// Answer returns the bottom right panel.
func (m *Matrix) Answer() *Panel { return m[2][2] }

// Context returns the eight panels that precede the answer, row by row.
func (m *Matrix) Context() []*Panel {
	out := make([]*Panel, 0, 8)
	for r := range m {
		for c := range m[r] {
			if r == 2 && c == 2 {
				break
			}
			out = append(out, m[r][c])
		}
	}
	return out
}

// SampleMatrix samples the first panel of every row from the tightened constraints and
// derives the second and third by applying each component's rule group, Number or
// Position first. Distribute_Three values rotate across rows, so the first panels of
// rows two and three follow the first row's cycle.
func SampleMatrix(rng *rand.Rand, cfg layout.Configuration, tightened []Constraints, groups []rules.Group) (*Matrix, error) {
	if len(groups) != cfg.NumComponents() {
		return nil, fmt.Errorf("%d rule groups for %s: %w", len(groups), cfg, ErrInvalidInput)
	}
	b := &rowBuilder{rng: rng, tightened: tightened, groups: groups, cycles: map[cycleKey]*cycle{}}
	var m Matrix
	for r := range m {
		first, err := Sample(rng, cfg, tightened)
		if err != nil {
			return nil, err
		}
		m[r][0] = first
		for c := range m[r] {
			if c > 0 {
				m[r][c] = m[r][c-1].Clone()
			}
			if err := b.apply(r, m[r][:c+1]); err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", r+1, c+1, err)
			}
		}
	}
	return &m, nil
}

type cycleKey struct {
	component int
	attr      primitives.Attr
}

// cycle holds the three values of a Distribute_Three rule. Row r shows them starting
// at index r*shift.
type cycle struct {
	levels []int
	sets   []primitives.SlotSet
	shift  int
}

func (c *cycle) at(row, col int) int {
	return (col + row*c.shift) % 3
}

type rowBuilder struct {
	rng       *rand.Rand
	tightened []Constraints
	groups    []rules.Group
	cycles    map[cycleKey]*cycle
}

// apply updates the last panel of row, which already holds a copy of its predecessor.
func (b *rowBuilder) apply(row int, panels []*Panel) error {
	for i, group := range b.groups {
		for _, rule := range group {
			var err error
			switch attr := rule.Attr(); {
			case attr == primitives.AttrNumber:
				err = b.number(rule, i, row, panels)
			case attr == primitives.AttrPosition:
				err = b.position(rule, i, row, panels)
			case attr.IsEntity():
				err = b.entity(rule, i, row, panels)
			}
			if err != nil {
				return fmt.Errorf("component %d %s: %w", i, rule, err)
			}
		}
	}
	return nil
}

func (b *rowBuilder) number(rule rules.Rule, i, row int, panels []*Panel) error {
	col := len(panels) - 1
	cur := &panels[col].Components[i]
	orig := cur.Layout.Number
	var level int
	switch rule.Name() {
	case rules.Progression:
		if col == 0 {
			return nil
		}
		level = cur.NumberLevel() + rule.Value()
	case rules.Arithmetic:
		first := panels[0].Components[i].NumberLevel()
		switch col {
		case 0:
			return nil
		case 1:
			var err error
			if level, err = b.operand(first, orig, rule.Value(), 1); err != nil {
				return err
			}
		default:
			level = combine(first, cur.NumberLevel(), rule.Value(), 1)
		}
	case rules.DistributeThree:
		cy, err := b.levelCycle(cycleKey{i, primitives.AttrNumber}, cur.NumberLevel(), b.tightened[i].Layout.Number)
		if err != nil {
			return err
		}
		level = cy.levels[cy.at(row, col)]
	default:
		return nil
	}
	if level == cur.NumberLevel() {
		return nil
	}
	if !orig.Contains(level) || level+1 > cur.SlotCount() {
		return fmt.Errorf("number level %d outside %s: %w", level, orig, ErrInvalidInput)
	}
	slots, err := randomSlots(b.rng, cur.SlotCount(), level+1)
	if err != nil {
		return err
	}
	cur.Entities = relocate(cur.Entities, slots)
	cur.Occupied = slots
	return nil
}

func (b *rowBuilder) position(rule rules.Rule, i, row int, panels []*Panel) error {
	col := len(panels) - 1
	cur := &panels[col].Components[i]
	var slots primitives.SlotSet
	switch rule.Name() {
	case rules.Progression:
		if col == 0 {
			return nil
		}
		slots = shift(cur.Occupied, rule.Value(), cur.SlotCount())
	case rules.Arithmetic:
		first := panels[0].Components[i].Occupied
		switch col {
		case 0:
			return nil
		case 1:
			var err error
			if slots, err = b.positionOperand(first, rule.Value(), cur.SlotCount()); err != nil {
				return err
			}
		default:
			slots = first
			if rule.Value() > 0 {
				slots.AddAll(cur.Occupied)
			} else {
				slots.RemoveAll(cur.Occupied)
			}
		}
	case rules.DistributeThree:
		cy, err := b.setCycle(cycleKey{i, primitives.AttrPosition}, cur)
		if err != nil {
			return err
		}
		slots = cy.sets[cy.at(row, col)]
	default:
		return nil
	}
	if slots.Empty() {
		return fmt.Errorf("no slot left after %s: %w", rule, ErrInvalidInput)
	}
	if slots != cur.Occupied {
		cur.Entities = relocate(cur.Entities, slots)
		cur.Occupied = slots
	}
	return nil
}

// entity applies a Type, Size or Color rule. Progression shifts every entity;
// Arithmetic and Distribute_Three compute the level from the first entity of each
// panel and give it to every entity.
func (b *rowBuilder) entity(rule rules.Rule, i, row int, panels []*Panel) error {
	col := len(panels) - 1
	cur := &panels[col].Components[i]
	attr := rule.Attr()
	orig, ok := cur.Entity.Range(attr)
	if !ok {
		return fmt.Errorf("no range for %s: %w", attr, ErrInvalidInput)
	}
	lead := *cur.Entities[0].level(attr)
	var level int
	switch rule.Name() {
	case rules.Progression:
		if col == 0 {
			return nil
		}
		for k := range cur.Entities {
			v := cur.Entities[k].level(attr)
			*v += rule.Value()
			if !orig.Contains(*v) {
				return fmt.Errorf("%s level %d outside %s: %w", attr, *v, orig, ErrInvalidInput)
			}
		}
		return nil
	case rules.Arithmetic:
		offset := 1
		if attr == primitives.AttrColor {
			offset = 0
		}
		first := *panels[0].Components[i].Entities[0].level(attr)
		switch col {
		case 0:
			return nil
		case 1:
			var err error
			if level, err = b.operand(first, orig, rule.Value(), offset); err != nil {
				return err
			}
		default:
			level = combine(first, lead, rule.Value(), offset)
		}
	case rules.DistributeThree:
		span, _ := b.tightened[i].Entity.Range(attr)
		cy, err := b.levelCycle(cycleKey{i, attr}, lead, span)
		if err != nil {
			return err
		}
		level = cy.levels[cy.at(row, col)]
	default:
		return nil
	}
	if !orig.Contains(level) {
		return fmt.Errorf("%s level %d outside %s: %w", attr, level, orig, ErrInvalidInput)
	}
	for k := range cur.Entities {
		*cur.Entities[k].level(attr) = level
	}
	return nil
}

// operand draws the middle level of an Arithmetic row so that the third level stays
// inside orig. offset is one for Number and Size, whose sums count from one, and zero
// for Color.
func (b *rowBuilder) operand(first int, orig primitives.Interval, value, offset int) (int, error) {
	hi := orig.Max - first - offset
	if value < 0 {
		hi = first - orig.Min - offset
	}
	span := primitives.Span(orig.Min, hi)
	if !span.Satisfiable() {
		return 0, fmt.Errorf("no operand for level %d in %s: %w", first, orig, ErrInvalidInput)
	}
	return levelIn(b.rng, span), nil
}

func combine(first, second, value, offset int) int {
	if value > 0 {
		return first + second + offset
	}
	return first - second - offset
}

// positionOperand draws the middle panel of a Position Arithmetic row: new slots to
// add, or a proper subset of first to remove.
func (b *rowBuilder) positionOperand(first primitives.SlotSet, value, n int) (primitives.SlotSet, error) {
	from := first.Slice()
	most := len(from) - 1
	if value > 0 {
		from = from[:0]
		for s := range n {
			if !first.Contains(s) {
				from = append(from, s)
			}
		}
		most = len(from)
	}
	if most < 1 {
		return primitives.SlotSet{}, fmt.Errorf("no slots to combine with %s: %w", first, ErrInvalidInput)
	}
	k := 1 + b.rng.IntN(most)
	var out primitives.SlotSet
	for _, i := range b.rng.Perm(len(from))[:k] {
		if err := out.Add(from[i]); err != nil {
			return primitives.SlotSet{}, err
		}
	}
	return out, nil
}

func (b *rowBuilder) levelCycle(key cycleKey, current int, span primitives.Interval) (*cycle, error) {
	if cy, ok := b.cycles[key]; ok {
		return cy, nil
	}
	var others []int
	for l := span.Min; l <= span.Max; l++ {
		if l != current {
			others = append(others, l)
		}
	}
	if len(others) < 2 {
		return nil, fmt.Errorf("three distinct levels in %s: %w", span, ErrInvalidInput)
	}
	b.rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	cy := &cycle{levels: []int{current, others[0], others[1]}, shift: 1 + b.rng.IntN(2)}
	b.cycles[key] = cy
	return cy, nil
}

func (b *rowBuilder) setCycle(key cycleKey, c *Component) (*cycle, error) {
	if cy, ok := b.cycles[key]; ok {
		return cy, nil
	}
	all, err := subsets(c.SlotCount(), c.Occupied.Count())
	if err != nil {
		return nil, err
	}
	var others []primitives.SlotSet
	for _, s := range all {
		if s != c.Occupied {
			others = append(others, s)
		}
	}
	if len(others) < 2 {
		return nil, fmt.Errorf("three distinct placements of %d entities: %w", c.Occupied.Count(), ErrInvalidInput)
	}
	b.rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	cy := &cycle{sets: []primitives.SlotSet{c.Occupied, others[0], others[1]}, shift: 1 + b.rng.IntN(2)}
	b.cycles[key] = cy
	return cy, nil
}

// shift moves every occupied slot by step along the slot order, wrapping around.
func shift(s primitives.SlotSet, step, n int) primitives.SlotSet {
	var out primitives.SlotSet
	for i := range s.Indices() {
		_ = out.Add(((i+step)%n + n) % n)
	}
	return out
}

func randomSlots(rng *rand.Rand, n, k int) (primitives.SlotSet, error) {
	return primitives.SlotSetOf(rng.Perm(n)[:k]...)
}
