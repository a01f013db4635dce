package rules

import (
	"errors"
	"fmt"
	"slices"

	"crosswarped.com/ravengen/pkg/primitives"
)

// ErrInvalidInput signals a programming error upstream: a malformed rule, rule group or
// an input outside the documented domain of a predicate.
var ErrInvalidInput = errors.New("rules: invalid input")

// Name is the kind of transformation a rule applies across a row.
type Name string

const (
	Constant        Name = "Constant"
	Progression     Name = "Progression"
	Arithmetic      Name = "Arithmetic"
	DistributeThree Name = "Distribute_Three"
)

// Names lists every rule name.
var Names = []Name{Constant, Progression, Arithmetic, DistributeThree}

// ParseName validates a rule name.
func ParseName(s string) (Name, error) {
	for _, n := range Names {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown rule %q: %w", s, ErrInvalidInput)
}

// legal lists the attributes each rule may govern.
var legal = map[Name][]primitives.Attr{
	Constant:        {primitives.AttrNumberPosition, primitives.AttrType, primitives.AttrSize, primitives.AttrColor},
	Progression:     {primitives.AttrNumber, primitives.AttrPosition, primitives.AttrType, primitives.AttrSize, primitives.AttrColor},
	Arithmetic:      {primitives.AttrNumber, primitives.AttrPosition, primitives.AttrSize, primitives.AttrColor},
	DistributeThree: {primitives.AttrNumber, primitives.AttrPosition, primitives.AttrType, primitives.AttrSize, primitives.AttrColor},
}

// Legal reports whether the rule may govern the attribute.
func Legal(name Name, attr primitives.Attr) bool {
	return slices.Contains(legal[name], attr)
}

// Rule governs one attribute (or the Number/Position pair) of one component across a row.
// Rules are immutable; build them with New.
type Rule struct {
	name      Name
	attr      primitives.Attr
	value     int
	component int
}

// New validates and builds a rule.
//
// Value is the signed step of a Progression and the mode of an Arithmetic (positive adds,
// negative subtracts); it must be zero for Constant and Distribute_Three.
func New(name Name, attr primitives.Attr, value, component int) (Rule, error) {
	if !Legal(name, attr) {
		return Rule{}, fmt.Errorf("%s on %s: %w", name, attr, ErrInvalidInput)
	}
	switch name {
	case Progression, Arithmetic:
		if value == 0 {
			return Rule{}, fmt.Errorf("%s on %s needs a non-zero value: %w", name, attr, ErrInvalidInput)
		}
	default:
		if value != 0 {
			return Rule{}, fmt.Errorf("%s on %s takes no value, got %d: %w", name, attr, value, ErrInvalidInput)
		}
	}
	if component < 0 {
		return Rule{}, fmt.Errorf("component %d: %w", component, ErrInvalidInput)
	}
	return Rule{name: name, attr: attr, value: value, component: component}, nil
}

// MustNew is New for statically known rules; it panics on invalid input.
func MustNew(name Name, attr primitives.Attr, value, component int) Rule {
	r, err := New(name, attr, value, component)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the kind of the rule.
func (r Rule) Name() Name { return r.name }

// Attr returns the governed attribute.
func (r Rule) Attr() primitives.Attr { return r.attr }

// Value returns the signed step or mode of the rule.
func (r Rule) Value() int { return r.value }

// Component returns the index of the governed component.
func (r Rule) Component() int { return r.component }

// Class returns the attribute class the rule belongs to.
func (r Rule) Class() Class {
	c, _ := ClassOf(r.attr)
	return c
}

// IsZero reports whether r is the zero Rule rather than one built by New.
func (r Rule) IsZero() bool { return r.name == "" }

func (r Rule) String() string {
	switch r.name {
	case Progression, Arithmetic:
		return fmt.Sprintf("%s(%s, %+d)@%d", r.name, r.attr, r.value, r.component)
	}
	return fmt.Sprintf("%s(%s)@%d", r.name, r.attr, r.component)
}
