package primitives

import "fmt"

// Interval is an inclusive range of level indices. An interval with Min > Max is
// unsatisfiable: no level can be sampled from it.
type Interval struct {
	Min int
	Max int
}

// Span returns a new interval.
func Span(min, max int) Interval {
	return Interval{Min: min, Max: max}
}

// Satisfiable reports whether at least one level lies in the interval.
func (i Interval) Satisfiable() bool {
	return i.Min <= i.Max
}

// Levels returns the number of levels in the interval, or 0 if it is unsatisfiable.
func (i Interval) Levels() int {
	if !i.Satisfiable() {
		return 0
	}
	return i.Max - i.Min + 1
}

// Contains reports whether the level lies in the interval.
func (i Interval) Contains(level int) bool {
	return level >= i.Min && level <= i.Max
}

// Invalidate returns the canonical unsatisfiable form of i, keeping Min.
func (i Interval) Invalidate() Interval {
	return Interval{Min: i.Min, Max: i.Min - 1}
}

func (i Interval) String() string {
	if !i.Satisfiable() {
		return fmt.Sprintf("[%d, %d] (empty)", i.Min, i.Max)
	}
	return fmt.Sprintf("[%d, %d]", i.Min, i.Max)
}
