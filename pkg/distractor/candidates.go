package distractor

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"crosswarped.com/ravengen/pkg/primitives"
)

// NumDistractors is the number of wrong candidates offered next to the answer.
const NumDistractors = 7

// Strategy chooses how distractors are derived from the pools.
type Strategy string

const (
	// Independent varies one attribute per distractor, each drawn with SampleOne.
	Independent Strategy = "independent"
	// Hierarchical varies up to three attributes and combines their alternatives as a
	// binary tree, so that no single attribute gives the answer away.
	Hierarchical Strategy = "hierarchical"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case Independent, Hierarchical:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown strategy %q: %w", s, ErrInvalidInput)
}

// Choice asks for the Variant-th alternative value of a drawn attribute. Choices sharing
// a pool and a variant must resolve to the same value.
type Choice struct {
	Draw    Draw
	Variant int
}

// Candidate is the list of changes that turns the answer into one distractor.
type Candidate []Choice

// Plan is the ordered list of distractors of one sample.
type Plan []Candidate

// BuildCandidates plans up to NumDistractors distractors. It consumes pool values and
// fails only when not a single distractor can be planned.
func BuildCandidates(strategy Strategy, pools *Pools, rng *rand.Rand, meshComponent int) (Plan, error) {
	var plan Plan
	var err error
	switch strategy {
	case Independent:
		plan, err = independent(pools, rng)
	case Hierarchical:
		plan, err = hierarchical(pools, rng, meshComponent)
	default:
		return nil, fmt.Errorf("unknown strategy %q: %w", strategy, ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		return nil, ErrPoolExhausted
	}
	return plan, nil
}

func independent(pools *Pools, rng *rand.Rand) (Plan, error) {
	variants := map[PoolID]int{}
	var plan Plan
	for len(plan) < NumDistractors && !pools.Empty() {
		d, err := pools.SampleOne(rng)
		if err != nil {
			return nil, err
		}
		plan = append(plan, Candidate{{Draw: d, Variant: variants[d.Pool]}})
		variants[d.Pool]++
	}
	return plan, nil
}

func hierarchical(pools *Pools, rng *rand.Rand, meshComponent int) (Plan, error) {
	selected := pools.Select(rng, 3, meshComponent)
	rng.Shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })
	if kept := dropPositionUnderNumber(selected); len(kept) < len(selected) {
		selected = refill(rng, kept, pools.Records(), 3)
	}
	// Number goes last so that its slots override a Position change in the same candidate.
	if i := slices.IndexFunc(selected, func(p Pool) bool { return p.Attr == primitives.AttrNumber }); i >= 0 {
		last := len(selected) - 1
		selected[i], selected[last] = selected[last], selected[i]
	}

	// The empty candidate is the answer itself and is dropped at the end.
	tree := []Candidate{{}}
	switch len(selected) {
	case 0:
		return nil, nil
	case 1:
		for v := range NumDistractors {
			d, err := pools.Take(selected[0].ID)
			if err != nil {
				break
			}
			tree = append(tree, Candidate{{Draw: d, Variant: v}})
		}
	case 2:
		d, err := pools.Take(selected[0].ID)
		if err != nil {
			return nil, err
		}
		tree = append(tree, Candidate{{Draw: d}})
		// A Position/Number pair yields six lone Number variants; otherwise three
		// variants of the second attribute each branch under both first-level nodes.
		variants, branches := 3, 2
		if pairsPositionNumber(selected) {
			variants, branches = 6, 1
		}
		for v := range variants {
			d, err := pools.Take(selected[1].ID)
			if err != nil {
				break
			}
			for _, parent := range tree[:branches] {
				tree = append(tree, extend(parent, Choice{Draw: d, Variant: v}))
			}
		}
	default:
		for _, p := range selected[:3] {
			d, err := pools.Take(p.ID)
			if err != nil {
				return nil, err
			}
			for _, parent := range tree {
				tree = append(tree, extend(parent, Choice{Draw: d}))
			}
		}
	}
	return Plan(tree[1:]), nil
}

func extend(parent Candidate, c Choice) Candidate {
	out := make(Candidate, 0, len(parent)+1)
	return append(append(out, parent...), c)
}

func pairsPositionNumber(selected []Pool) bool {
	var number, position bool
	for _, p := range selected {
		number = number || p.Attr == primitives.AttrNumber
		position = position || p.Attr == primitives.AttrPosition
	}
	return number && position
}

// dropPositionUnderNumber removes a Position pool whose component also has its Number
// pool selected: a Number change already moves every entity of that component.
func dropPositionUnderNumber(selected []Pool) []Pool {
	numbers := map[int]bool{}
	for _, p := range selected {
		if p.Attr == primitives.AttrNumber {
			numbers[p.Component] = true
		}
	}
	return slices.DeleteFunc(selected, func(p Pool) bool {
		return p.Attr == primitives.AttrPosition && numbers[p.Component]
	})
}

// refill tops selected up to n with random unselected pools that do not conflict
// with a selected Number pool.
func refill(rng *rand.Rand, selected, all []Pool, n int) []Pool {
	var spare []Pool
	for _, p := range all {
		if slices.ContainsFunc(selected, func(s Pool) bool { return s.ID == p.ID }) {
			continue
		}
		spare = append(spare, p)
	}
	rng.Shuffle(len(spare), func(i, j int) { spare[i], spare[j] = spare[j], spare[i] })
	for _, p := range spare {
		if len(selected) >= n {
			break
		}
		if kept := dropPositionUnderNumber(append(slices.Clone(selected), p)); len(kept) > len(selected) {
			selected = kept
		}
	}
	return selected
}
