package rules

import (
	"fmt"
	"math/rand/v2"

	"crosswarped.com/ravengen/pkg/layout"
)

// Request describes the rule assignment wanted for one sample.
type Request struct {
	// Components is the number of structural components, including a mesh component.
	Components int
	// MeshPresent marks the last component as a mesh component.
	MeshPresent   bool
	Configuration layout.ID
	// HeldOut switches the sampler to out-of-distribution mode when non-empty.
	HeldOut []HeldOut
	Split   Split
}

// Sampler draws rule groups from a catalog using an explicit random source.
// A Sampler is not safe for concurrent use; give each goroutine its own.
type Sampler struct {
	catalog Catalog
	rng     *rand.Rand
}

// NewSampler creates a sampler over the given catalog.
func NewSampler(catalog Catalog, rng *rand.Rand) (*Sampler, error) {
	if rng == nil {
		return nil, fmt.Errorf("nil random source: %w", ErrInvalidInput)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{catalog: catalog, rng: rng}, nil
}

// Sample returns one canonical rule group per component.
func (s *Sampler) Sample(req Request) ([]Group, error) {
	if req.Components <= 0 {
		return nil, fmt.Errorf("%d components: %w", req.Components, ErrInvalidInput)
	}
	heldOut, err := indexHeldOut(req.HeldOut)
	if err != nil {
		return nil, err
	}

	groups := make([]Group, req.Components)
	for component := range req.Components {
		isMesh := req.MeshPresent && component == req.Components-1
		group := make(Group, NumClasses)
		for class := range Class(NumClasses) {
			entries, err := s.candidates(req, component, class, isMesh, heldOut)
			if err != nil {
				return nil, err
			}
			if group[class], err = s.draw(entries, component); err != nil {
				return nil, err
			}
		}
		groups[component] = group
	}
	return groups, nil
}

// candidates returns the entries a class of a component draws from.
func (s *Sampler) candidates(req Request, component int, class Class, isMesh bool, heldOut map[Class]Name) ([]Entry, error) {
	if isMesh {
		// The mesh component only varies its lines; every entity class stays Constant.
		if class > ClassNumberPosition {
			return []Entry{s.catalog.ConstantEntry(class)}, nil
		}
		return s.catalog[class], nil
	}

	trainRule, ok := heldOut[class]
	if !ok {
		return s.catalog[class], nil
	}
	enforce, err := ShouldEnforceTrainRule(req.Split, req.Configuration, component, class, trainRule)
	if err != nil {
		return nil, err
	}
	entries := s.catalog.Filter(class, trainRule, enforce)
	if len(entries) == 0 {
		return nil, fmt.Errorf("no %s entries for class %s (enforce=%t): %w", trainRule, class, enforce, ErrInvalidInput)
	}
	return entries, nil
}

func (s *Sampler) draw(entries []Entry, component int) (Rule, error) {
	e := entries[s.rng.IntN(len(entries))]
	value := 0
	if len(e.Values) > 0 {
		value = e.Values[s.rng.IntN(len(e.Values))]
	}
	return New(e.Name, e.Attr, value, component)
}

func indexHeldOut(heldOut []HeldOut) (map[Class]Name, error) {
	out := make(map[Class]Name, len(heldOut))
	for _, h := range heldOut {
		if !h.Class.Valid() {
			return nil, fmt.Errorf("held-out class %s: %w", h.Class, ErrInvalidInput)
		}
		if !Governs(h.Class, h.TrainRule) {
			return nil, fmt.Errorf("%s cannot govern held-out class %s: %w", h.TrainRule, h.Class, ErrInvalidInput)
		}
		if _, dup := out[h.Class]; dup {
			return nil, fmt.Errorf("class %s held out twice: %w", h.Class, ErrInvalidInput)
		}
		out[h.Class] = h.TrainRule
	}
	return out, nil
}
