package rules

import (
	"fmt"

	"crosswarped.com/ravengen/pkg/layout"
)

// Split is a dataset partition.
type Split string

const (
	Train Split = "train"
	Val   Split = "val"
	Test  Split = "test"
)

// ParseSplit validates a split name.
func ParseSplit(s string) (Split, error) {
	switch Split(s) {
	case Train, Val, Test:
		return Split(s), nil
	}
	return "", fmt.Errorf("unknown split %q: %w", s, ErrInvalidInput)
}

// HeldOut designates an attribute class whose rule is biased between splits: train and
// validation matrices use TrainRule, test matrices any other rule.
type HeldOut struct {
	Class     Class
	TrainRule Name
}

// ShouldEnforceTrainRule decides whether a held-out class of the given component must be
// governed by the train-set rule.
//
// The split decides by default (train and val enforce, test suppresses), but structural
// impossibilities override it:
//   - Position cannot change in a single-slot component, so there it is enforced exactly when
//     the train rule is Constant.
//   - Color cannot change on the outer component of a nested configuration; same treatment.
//   - Size Arithmetic cannot be applied to that outer component, so it is never enforced.
//
// Inputs outside the catalogued domain return ErrInvalidInput; the predicate never defaults.
func ShouldEnforceTrainRule(split Split, configuration layout.ID, component int, class Class, trainRule Name) (bool, error) {
	if _, err := ParseSplit(string(split)); err != nil {
		return false, err
	}
	cfg, err := layout.Lookup(configuration)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	c, err := cfg.Component(component)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !class.Valid() {
		return false, fmt.Errorf("class %s: %w", class, ErrInvalidInput)
	}
	if !Governs(class, trainRule) {
		return false, fmt.Errorf("%s cannot govern %s: %w", trainRule, class, ErrInvalidInput)
	}

	switch {
	case class == ClassNumberPosition && c.SlotCount() < 2:
		return trainRule == Constant, nil
	case class == ClassColor && c.Outer:
		return trainRule == Constant, nil
	case class == ClassSize && c.Outer && trainRule == Arithmetic:
		return false, nil
	}

	switch split {
	case Train, Val:
		return true, nil
	case Test:
		return false, nil
	}
	// Unreachable: split was validated above.
	return false, fmt.Errorf("split %q: %w", split, ErrInvalidInput)
}
