// Package distractor counts how many legal alternative values each attribute of an
// answer panel has and hands them out one at a time, so that wrong answer candidates
// never ask for more variations of an attribute than combinatorially exist.
package distractor

import (
	"fmt"

	"crosswarped.com/ravengen/pkg/constraint"
	"crosswarped.com/ravengen/pkg/primitives"
	"crosswarped.com/ravengen/pkg/rules"
)

// Panel is the view of a finished answer panel the explorer reads. Constraints are the
// original, untightened ones of each component.
type Panel interface {
	NumComponents() int
	OriginalLayout(component int) constraint.Layout
	OriginalEntity(component int) constraint.Entity
	// Number is the realised entity count (not its level).
	Number(component int) int
	Uniform(component int) bool
	SlotCount(component int) int
}

// AvailableAttributes builds the pools of alternative values for every component governed
// by a rule group.
func AvailableAttributes(groups []rules.Group, answer Panel) (*Pools, error) {
	if len(groups) > answer.NumComponents() {
		return nil, fmt.Errorf("%d rule groups for %d components: %w", len(groups), answer.NumComponents(), ErrInvalidInput)
	}
	pools := &Pools{}
	for i, group := range groups {
		if err := group.Validate(); err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		primary, ok := group.Primary()
		if !ok {
			return nil, fmt.Errorf("component %d has no Number/Position rule: %w", i, ErrInvalidInput)
		}

		number := answer.Number(i)
		slots := answer.SlotCount(i)
		levels := answer.OriginalLayout(i).Number
		uniform := answer.Uniform(i)

		// Number can always change; a new count implies new positions.
		var numberCount int64
		for k := levels.Min; k <= levels.Max; k++ {
			if k+1 != number {
				numberCount += primitives.Binomial(slots, k+1)
			}
		}
		pools.add(i, primitives.AttrNumber, numberCount, levels, UniformityUnset)

		// Position can change unless the row is driven by a rule on Number.
		if primary.Attr() != primitives.AttrNumber {
			pools.add(i, primitives.AttrPosition, primitives.Binomial(slots, number)-1, primitives.Interval{}, UniformityUnset)
		}

		original := answer.OriginalEntity(i)
		for _, r := range group {
			if r.Class() == rules.ClassNumberPosition {
				continue
			}
			entityLevels, _ := original.Range(r.Attr())
			count := int64(entityLevels.Levels() - 1)
			if r.Name() != rules.Constant {
				pools.add(i, r.Attr(), count, entityLevels, UniformityEnforced)
				continue
			}
			// A single substituted value keeps a Constant row coherent only when all entities
			// agree anyway or the layout rule does not depend on per-entity values.
			if uniform || primary.Name() == rules.Constant ||
				(primary.Attr() == primitives.AttrPosition &&
					(primary.Name() == rules.Progression || primary.Name() == rules.DistributeThree)) {
				pools.add(i, r.Attr(), count, entityLevels, uniformityOf(uniform))
			}
		}
	}
	return pools, nil
}

func uniformityOf(uniform bool) Uniformity {
	if uniform {
		return UniformityEnforced
	}
	return UniformityFree
}
