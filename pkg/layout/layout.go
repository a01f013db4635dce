// Package layout is the catalog of panel configurations: which structural
// components a panel has, where their entities may be placed and which level
// ranges they start from before any rule tightens them.
package layout

import (
	"errors"
	"fmt"
	"slices"

	"crosswarped.com/ravengen/pkg/primitives"
)

// ErrUnknownConfiguration is returned when a configuration identifier is not in the catalog.
var ErrUnknownConfiguration = errors.New("layout: unknown configuration")

// ID identifies a configuration.
type ID string

const (
	CenterSingle                      ID = "center_single"
	DistributeFour                    ID = "distribute_four"
	DistributeNine                    ID = "distribute_nine"
	LeftCenterSingleRightCenterSingle ID = "left_center_single_right_center_single"
	UpCenterSingleDownCenterSingle    ID = "up_center_single_down_center_single"
	InCenterSingleOutCenterSingle     ID = "in_center_single_out_center_single"
	InDistributeFourOutCenterSingle   ID = "in_distribute_four_out_center_single"
)

// Component describes one structural component of a configuration.
type Component struct {
	Name  string
	Kind  primitives.PositionKind
	Slots []primitives.Slot

	Number     primitives.Interval
	Uniformity primitives.Interval
	Type       primitives.Interval
	Size       primitives.Interval
	Color      primitives.Interval
	Angle      primitives.Interval

	// Outer marks the enclosing component of a nested configuration.
	Outer bool
	// Mesh marks the auxiliary line component appended by WithMesh.
	Mesh bool
}

// SlotCount returns the number of places an entity may occupy.
func (c Component) SlotCount() int {
	return len(c.Slots)
}

// Configuration is an ordered list of components sharing one panel.
type Configuration struct {
	ID         ID
	Components []Component
}

// NumComponents returns the number of components, including a mesh component if present.
func (c Configuration) NumComponents() int {
	return len(c.Components)
}

// HasMesh reports whether the last component is a mesh component.
func (c Configuration) HasMesh() bool {
	n := len(c.Components)
	return n > 0 && c.Components[n-1].Mesh
}

// Component returns the component at index i.
func (c Configuration) Component(i int) (Component, error) {
	if i < 0 || i >= len(c.Components) {
		return Component{}, fmt.Errorf("layout: %s has no component %d", c.ID, i)
	}
	return c.Components[i], nil
}

// WithMesh returns a copy of the configuration with a mesh component appended.
// Calling it on a configuration that already has one is a no-op.
func (c Configuration) WithMesh() Configuration {
	if c.HasMesh() {
		return c
	}
	out := Configuration{ID: c.ID, Components: slices.Clone(c.Components)}
	out.Components = append(out.Components, meshComponent())
	return out
}

func (c Configuration) String() string {
	if c.HasMesh() {
		return fmt.Sprintf("%s+mesh(%d components)", c.ID, len(c.Components))
	}
	return fmt.Sprintf("%s(%d components)", c.ID, len(c.Components))
}
