package rules

import (
	"fmt"

	"crosswarped.com/ravengen/pkg/primitives"
)

// Entry is one selectable (rule, attribute) pair together with the values a draw may pick.
// An empty Values list means the rule takes no value.
type Entry struct {
	Name   Name
	Attr   primitives.Attr
	Values []int
}

// Catalog lists the entries of every class. By convention the Constant entry is last.
type Catalog [NumClasses][]Entry

var steps = []int{-2, -1, 1, 2}
var modes = []int{1, -1}

// DefaultCatalog returns the catalog used for dataset generation.
func DefaultCatalog() Catalog {
	return Catalog{
		ClassNumberPosition: {
			{Progression, primitives.AttrNumber, steps},
			{Progression, primitives.AttrPosition, steps},
			{Arithmetic, primitives.AttrNumber, modes},
			{Arithmetic, primitives.AttrPosition, modes},
			{DistributeThree, primitives.AttrNumber, nil},
			{DistributeThree, primitives.AttrPosition, nil},
			{Constant, primitives.AttrNumberPosition, nil},
		},
		ClassType: {
			{Progression, primitives.AttrType, steps},
			{DistributeThree, primitives.AttrType, nil},
			{Constant, primitives.AttrType, nil},
		},
		ClassSize: {
			{Progression, primitives.AttrSize, steps},
			{Arithmetic, primitives.AttrSize, modes},
			{DistributeThree, primitives.AttrSize, nil},
			{Constant, primitives.AttrSize, nil},
		},
		ClassColor: {
			{Progression, primitives.AttrColor, steps},
			{Arithmetic, primitives.AttrColor, modes},
			{DistributeThree, primitives.AttrColor, nil},
			{Constant, primitives.AttrColor, nil},
		},
	}
}

// Validate checks that every entry can build a rule, belongs to its class, and that each
// class ends with its Constant entry.
func (c Catalog) Validate() error {
	for class, entries := range c {
		if len(entries) == 0 {
			return fmt.Errorf("catalog class %s is empty: %w", Class(class), ErrInvalidInput)
		}
		for _, e := range entries {
			if got, ok := ClassOf(e.Attr); !ok || got != Class(class) {
				return fmt.Errorf("catalog entry %s(%s) filed under %s: %w", e.Name, e.Attr, Class(class), ErrInvalidInput)
			}
			values := e.Values
			if len(values) == 0 {
				values = []int{0}
			}
			for _, v := range values {
				if _, err := New(e.Name, e.Attr, v, 0); err != nil {
					return fmt.Errorf("catalog class %s: %w", Class(class), err)
				}
			}
		}
		if entries[len(entries)-1].Name != Constant {
			return fmt.Errorf("catalog class %s does not end with Constant: %w", Class(class), ErrInvalidInput)
		}
	}
	return nil
}

// ConstantEntry returns the designated Constant entry of a class.
func (c Catalog) ConstantEntry(class Class) Entry {
	entries := c[class]
	return entries[len(entries)-1]
}

// Filter returns the entries of a class whose name equals (keep=true) or differs from
// (keep=false) the given rule name.
func (c Catalog) Filter(class Class, name Name, keep bool) []Entry {
	var out []Entry
	for _, e := range c[class] {
		if (e.Name == name) == keep {
			out = append(out, e)
		}
	}
	return out
}

// Governs reports whether any rule of the given name may govern the class.
func Governs(class Class, name Name) bool {
	for _, attr := range legal[name] {
		if c, ok := ClassOf(attr); ok && c == class {
			return true
		}
	}
	return false
}
