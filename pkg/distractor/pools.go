package distractor

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"crosswarped.com/ravengen/pkg/primitives"
)

var (
	// ErrInvalidInput reports inputs that violate the explorer's preconditions.
	ErrInvalidInput = errors.New("distractor: invalid input")
	// ErrPoolExhausted is returned when drawing from an empty pool set or a spent pool.
	ErrPoolExhausted = errors.New("distractor: pool exhausted")
)

// Uniformity tells how a substituted value must be spread across a component's entities.
type Uniformity int8

const (
	// UniformityUnset applies to Number and Position, which are not per-entity values.
	UniformityUnset Uniformity = iota
	// UniformityFree means entities may keep differing values.
	UniformityFree
	// UniformityEnforced means every entity must take the substituted value.
	UniformityEnforced
)

func (u Uniformity) String() string {
	switch u {
	case UniformityFree:
		return "free"
	case UniformityEnforced:
		return "enforced"
	}
	return "unset"
}

// PoolID identifies a pool for the lifetime of its Pools.
type PoolID int

// Pool is a still exhaustible supply of alternative values for one attribute of one component.
type Pool struct {
	ID         PoolID
	Component  int
	Attr       primitives.Attr
	Remaining  int64
	Levels     primitives.Interval
	Uniformity Uniformity
}

func (p Pool) String() string {
	return fmt.Sprintf("%s@%d remaining=%d levels=%s uniformity=%s", p.Attr, p.Component, p.Remaining, p.Levels, p.Uniformity)
}

// Draw identifies the attribute a distractor should vary.
type Draw struct {
	Pool       PoolID
	Component  int
	Attr       primitives.Attr
	Levels     primitives.Interval
	Uniformity Uniformity
}

func (p Pool) draw() Draw {
	return Draw{Pool: p.ID, Component: p.Component, Attr: p.Attr, Levels: p.Levels, Uniformity: p.Uniformity}
}

// Pools is the set of non-empty pools of one sample. It is owned by a single
// distractor-generation pass and is not safe for concurrent use.
type Pools struct {
	pools  []Pool
	nextID PoolID
}

// NewPools builds a pool set from explicit records. Records with Remaining <= 0 are
// dropped; IDs are reassigned.
func NewPools(records ...Pool) *Pools {
	p := &Pools{}
	for _, r := range records {
		p.add(r.Component, r.Attr, r.Remaining, r.Levels, r.Uniformity)
	}
	return p
}

func (p *Pools) add(component int, attr primitives.Attr, remaining int64, levels primitives.Interval, uni Uniformity) {
	if remaining <= 0 {
		return
	}
	p.pools = append(p.pools, Pool{
		ID:         p.nextID,
		Component:  component,
		Attr:       attr,
		Remaining:  remaining,
		Levels:     levels,
		Uniformity: uni,
	})
	p.nextID++
}

// Len returns the number of non-empty pools.
func (p *Pools) Len() int {
	return len(p.pools)
}

// Empty reports whether every pool is spent.
func (p *Pools) Empty() bool {
	return len(p.pools) == 0
}

// Records returns a copy of the live pools.
func (p *Pools) Records() []Pool {
	return slices.Clone(p.pools)
}

// Get returns the live pool with the given ID.
func (p *Pools) Get(id PoolID) (Pool, bool) {
	i := slices.IndexFunc(p.pools, func(r Pool) bool { return r.ID == id })
	if i < 0 {
		return Pool{}, false
	}
	return p.pools[i], true
}

// SampleOne draws a pool uniformly among the live ones and consumes one of its values.
// A pool whose count reaches zero is removed after the draw.
func (p *Pools) SampleOne(rng *rand.Rand) (Draw, error) {
	if p.Empty() {
		return Draw{}, ErrPoolExhausted
	}
	i := rng.IntN(len(p.pools))
	d := p.pools[i].draw()
	p.pools[i].Remaining--
	p.compact()
	return d, nil
}

// Take consumes one value of a specific pool.
func (p *Pools) Take(id PoolID) (Draw, error) {
	i := slices.IndexFunc(p.pools, func(r Pool) bool { return r.ID == id })
	if i < 0 {
		return Draw{}, fmt.Errorf("pool %d: %w", id, ErrPoolExhausted)
	}
	d := p.pools[i].draw()
	p.pools[i].Remaining--
	p.compact()
	return d, nil
}

// compact drops spent pools. It only runs between draws.
func (p *Pools) compact() {
	p.pools = slices.DeleteFunc(p.pools, func(r Pool) bool { return r.Remaining <= 0 })
}

// Select picks up to n distinct pools without consuming them. When meshComponent is
// non-negative and that component has pools, between one and all of its pools are
// picked first and the rest is filled from the other components, then from the
// remaining mesh pools.
func (p *Pools) Select(rng *rand.Rand, n, meshComponent int) []Pool {
	if n >= len(p.pools) {
		return p.Records()
	}
	var mesh, other []Pool
	for _, r := range p.pools {
		if meshComponent >= 0 && r.Component == meshComponent {
			mesh = append(mesh, r)
		} else {
			other = append(other, r)
		}
	}
	if len(mesh) == 0 {
		return pick(rng, other, n)
	}
	rng.Shuffle(len(mesh), func(i, j int) { mesh[i], mesh[j] = mesh[j], mesh[i] })
	k := min(rng.IntN(len(mesh))+1, n)
	selected := append(slices.Clone(mesh[:k]), pick(rng, other, n-k)...)
	if short := n - len(selected); short > 0 {
		selected = append(selected, mesh[k:min(k+short, len(mesh))]...)
	}
	return selected
}

// pick returns up to n elements of from, chosen without replacement.
func pick(rng *rand.Rand, from []Pool, n int) []Pool {
	n = min(n, len(from))
	out := make([]Pool, 0, n)
	for _, i := range rng.Perm(len(from))[:n] {
		out = append(out, from[i])
	}
	return out
}
