package layout

import (
	"fmt"

	"crosswarped.com/ravengen/pkg/primitives"
)

var order = []ID{
	CenterSingle,
	DistributeFour,
	DistributeNine,
	LeftCenterSingleRightCenterSingle,
	UpCenterSingleDownCenterSingle,
	InCenterSingleOutCenterSingle,
	InDistributeFourOutCenterSingle,
}

// IDs returns every catalogued configuration identifier in canonical order.
func IDs() []ID {
	out := make([]ID, len(order))
	copy(out, order)
	return out
}

// ParseID validates a configuration identifier.
func ParseID(s string) (ID, error) {
	for _, id := range order {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownConfiguration)
}

// Lookup returns a fresh copy of the configuration; callers may modify it freely.
func Lookup(id ID) (Configuration, error) {
	switch id {
	case CenterSingle:
		return Configuration{ID: id, Components: []Component{
			single("Grid", primitives.Slot{0.5, 0.5, 1, 1}),
		}}, nil
	case DistributeFour:
		return Configuration{ID: id, Components: []Component{
			grid("Grid", 2, 0.5, 0.5, 1),
		}}, nil
	case DistributeNine:
		return Configuration{ID: id, Components: []Component{
			grid("Grid", 3, 0.5, 0.5, 1),
		}}, nil
	case LeftCenterSingleRightCenterSingle:
		return Configuration{ID: id, Components: []Component{
			single("Left", primitives.Slot{0.25, 0.5, 0.5, 0.5}),
			single("Right", primitives.Slot{0.75, 0.5, 0.5, 0.5}),
		}}, nil
	case UpCenterSingleDownCenterSingle:
		return Configuration{ID: id, Components: []Component{
			single("Up", primitives.Slot{0.5, 0.25, 0.5, 0.5}),
			single("Down", primitives.Slot{0.5, 0.75, 0.5, 0.5}),
		}}, nil
	case InCenterSingleOutCenterSingle:
		return Configuration{ID: id, Components: []Component{
			outer(),
			single("In", primitives.Slot{0.5, 0.5, 0.33, 0.33}),
		}}, nil
	case InDistributeFourOutCenterSingle:
		return Configuration{ID: id, Components: []Component{
			outer(),
			grid("In", 2, 0.5, 0.5, 0.33),
		}}, nil
	}
	return Configuration{}, fmt.Errorf("%q: %w", id, ErrUnknownConfiguration)
}

func base(name string, kind primitives.PositionKind, slots []primitives.Slot) Component {
	return Component{
		Name:       name,
		Kind:       kind,
		Slots:      slots,
		Number:     primitives.Span(primitives.NumberLevels.Min, len(slots)-1),
		Uniformity: primitives.UniformityLevels,
		Type:       primitives.TypeLevels,
		Size:       primitives.SizeLevels,
		Color:      primitives.ColorLevels,
		Angle:      primitives.AngleLevels,
	}
}

func single(name string, slot primitives.Slot) Component {
	return base(name, primitives.PositionPlanar, []primitives.Slot{slot})
}

// grid lays out n×n equally sized slots inside a square of the given extent
// centred at (cx, cy).
func grid(name string, n int, cx, cy, extent float64) Component {
	cell := extent / float64(n)
	x0 := cx - extent/2
	y0 := cy - extent/2
	slots := make([]primitives.Slot, 0, n*n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			slots = append(slots, primitives.Slot{
				x0 + cell*(float64(col)+0.5),
				y0 + cell*(float64(row)+0.5),
				cell,
				cell,
			})
		}
	}
	return base(name, primitives.PositionPlanar, slots)
}

// outer is the enclosing shape of nested configurations: large and never filled.
func outer() Component {
	c := single("Out", primitives.Slot{0.5, 0.5, 1, 1})
	c.Size = primitives.Span(3, primitives.SizeLevels.Max)
	c.Color = primitives.Span(primitives.ColorLevels.Min, primitives.ColorLevels.Min)
	c.Outer = true
	return c
}

func meshComponent() Component {
	lines := []primitives.Slot{
		{1.0 / 3, 0, 1.0 / 3, 1},
		{2.0 / 3, 0, 2.0 / 3, 1},
		{0, 1.0 / 3, 1, 1.0 / 3},
		{0, 2.0 / 3, 1, 2.0 / 3},
		{0, 0, 1, 1},
		{1, 0, 0, 1},
	}
	c := base("Mesh", primitives.PositionLine, lines)
	c.Mesh = true
	return c
}
