package primitives

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"
)

// MaxSlots is the largest number of slots a SlotSet can track.
const MaxSlots = 32

// SlotSet efficiently represents a set of occupied slot indices using bit manipulation.
// Slot i is stored in bit i, so any layout with at most 32 slots fits in a uint32.
type SlotSet struct {
	bits uint32
}

// SlotSetOf returns a set containing the given indices.
func SlotSetOf(indices ...int) (SlotSet, error) {
	var s SlotSet
	for _, i := range indices {
		if err := s.Add(i); err != nil {
			return SlotSet{}, err
		}
	}
	return s, nil
}

// Add adds a slot index to the set.
func (s *SlotSet) Add(i int) error {
	if i < 0 || i >= MaxSlots {
		return fmt.Errorf("slot %d is out of range", i)
	}
	s.bits |= 1 << uint(i)
	return nil
}

// AddAll adds all slots from another set to this set.
func (s *SlotSet) AddAll(other SlotSet) {
	s.bits |= other.bits
}

// Contains checks if a slot is in the set.
func (s SlotSet) Contains(i int) bool {
	if i < 0 || i >= MaxSlots {
		return false
	}
	return s.bits&(1<<uint(i)) != 0
}

// Count returns the number of slots in the set.
func (s SlotSet) Count() int {
	return bits.OnesCount32(s.bits)
}

// Empty reports whether no slot is occupied.
func (s SlotSet) Empty() bool {
	return s.bits == 0
}

// RemoveAll removes every slot of other from this set.
func (s *SlotSet) RemoveAll(other SlotSet) {
	s.bits &^= other.bits
}

// Indices yields the occupied slot indices in ascending order.
func (s SlotSet) Indices() iter.Seq[int] {
	return func(yield func(int) bool) {
		for b := s.bits; b != 0; b &= b - 1 {
			if !yield(bits.TrailingZeros32(b)) {
				return
			}
		}
	}
}

// String returns a string representation of the set.
func (s SlotSet) String() string {
	if s.bits == 0 {
		return "slots []"
	}
	var idx []string
	for i := range s.Indices() {
		idx = append(idx, fmt.Sprint(i))
	}
	return fmt.Sprintf("slots [%s]", strings.Join(idx, ", "))
}

// Slice returns the occupied slot indices in ascending order.
func (s SlotSet) Slice() []int {
	out := make([]int, 0, s.Count())
	for i := range s.Indices() {
		out = append(out, i)
	}
	return out
}
