package rules

import (
	"fmt"

	"crosswarped.com/ravengen/pkg/primitives"
)

// Class is an attribute class: the unit a rule group assigns exactly one rule to.
type Class int

const (
	// ClassNumberPosition holds the rule on Number or Position (never both).
	ClassNumberPosition Class = iota
	ClassType
	ClassSize
	ClassColor

	// NumClasses is the length of a canonical rule group.
	NumClasses = 4
)

var classNames = [NumClasses]string{"Position", "Type", "Size", "Color"}

func (c Class) String() string {
	if c < 0 || c >= NumClasses {
		return fmt.Sprintf("Class(%d)", int(c))
	}
	return classNames[c]
}

// Valid reports whether c is one of the defined classes.
func (c Class) Valid() bool {
	return c >= 0 && c < NumClasses
}

// ParseClass accepts the class names used for held-out attributes.
// "Number", "Position" and "Number/Position" all name the first class.
func ParseClass(s string) (Class, error) {
	switch s {
	case "Number", "Position", "Number/Position":
		return ClassNumberPosition, nil
	}
	for i, name := range classNames {
		if name == s {
			return Class(i), nil
		}
	}
	return 0, fmt.Errorf("unknown attribute class %q: %w", s, ErrInvalidInput)
}

// ClassOf returns the class an attribute belongs to.
func ClassOf(attr primitives.Attr) (Class, bool) {
	switch attr {
	case primitives.AttrNumber, primitives.AttrPosition, primitives.AttrNumberPosition:
		return ClassNumberPosition, true
	case primitives.AttrType:
		return ClassType, true
	case primitives.AttrSize:
		return ClassSize, true
	case primitives.AttrColor:
		return ClassColor, true
	}
	return 0, false
}

// Group is the ordered set of rules governing one component across a row.
// A canonical group has NumClasses rules, one per class in class order.
type Group []Rule

// Validate checks that the group is non-empty and never assigns two rules to the same class.
func (g Group) Validate() error {
	if len(g) == 0 {
		return fmt.Errorf("empty rule group: %w", ErrInvalidInput)
	}
	var seen [NumClasses]bool
	for _, r := range g {
		if r.IsZero() {
			return fmt.Errorf("zero rule in group: %w", ErrInvalidInput)
		}
		c := r.Class()
		if seen[c] {
			return fmt.Errorf("class %s governed twice: %w", c, ErrInvalidInput)
		}
		seen[c] = true
	}
	return nil
}

// Canonical reports whether the group has exactly one rule per class, in class order.
func (g Group) Canonical() bool {
	if len(g) != NumClasses {
		return false
	}
	for i, r := range g {
		if r.IsZero() || r.Class() != Class(i) {
			return false
		}
	}
	return true
}

// Primary returns the rule on Number/Position.
func (g Group) Primary() (Rule, bool) {
	return g.ByClass(ClassNumberPosition)
}

// ByClass returns the rule governing the given class.
func (g Group) ByClass(c Class) (Rule, bool) {
	for _, r := range g {
		if !r.IsZero() && r.Class() == c {
			return r, true
		}
	}
	return Rule{}, false
}
