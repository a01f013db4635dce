package distractor

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosswarped.com/ravengen/pkg/constraint"
	"crosswarped.com/ravengen/pkg/primitives"
	"crosswarped.com/ravengen/pkg/rules"
)

type fakeComponent struct {
	layout  constraint.Layout
	entity  constraint.Entity
	number  int
	uniform bool
	slots   int
}

type fakePanel []fakeComponent

func (f fakePanel) NumComponents() int { return len(f) }
func (f fakePanel) OriginalLayout(i int) constraint.Layout { return f[i].layout }
func (f fakePanel) OriginalEntity(i int) constraint.Entity { return f[i].entity }
func (f fakePanel) Number(i int) int { return f[i].number }
func (f fakePanel) Uniform(i int) bool { return f[i].uniform }
func (f fakePanel) SlotCount(i int) int { return f[i].slots }

func fourSlots(number int, uniform bool) fakeComponent {
	return fakeComponent{
		layout:  constraint.DeriveLayout(primitives.PositionPlanar, nil, primitives.Span(0, 3), primitives.UniformityLevels),
		entity:  constraint.DefaultEntity(),
		number:  number,
		uniform: uniform,
		slots:   4,
	}
}

func group(first rules.Rule, typ, size, color rules.Name) rules.Group {
	value := func(n rules.Name) int {
		if n == rules.Progression || n == rules.Arithmetic {
			return 1
		}
		return 0
	}
	return rules.Group{
		first,
		rules.MustNew(typ, primitives.AttrType, value(typ), 0),
		rules.MustNew(size, primitives.AttrSize, value(size), 0),
		rules.MustNew(color, primitives.AttrColor, value(color), 0),
	}
}

func counts(p *Pools) map[primitives.Attr]int64 {
	out := map[primitives.Attr]int64{}
	for _, r := range p.Records() {
		out[r.Attr] = r.Remaining
	}
	return out
}

func TestAvailableAttributes_NumberRule(t *testing.T) {
	g := group(rules.MustNew(rules.Progression, primitives.AttrNumber, 1, 0), rules.Constant, rules.Progression, rules.Constant)
	pools, err := AvailableAttributes([]rules.Group{g}, fakePanel{fourSlots(2, false)})
	require.NoError(t, err)

	// C(4,1) + C(4,3) + C(4,4): every count but the realised 2.
	want := map[primitives.Attr]int64{
		primitives.AttrNumber: 9,
		primitives.AttrSize:   5,
	}
	if diff := cmp.Diff(want, counts(pools)); diff != "" {
		t.Errorf("pool sizes mismatch (-want +got):\n%s", diff)
	}
	size, ok := pools.Get(1)
	require.True(t, ok)
	assert.Equal(t, UniformityEnforced, size.Uniformity)
	assert.Equal(t, primitives.SizeLevels, size.Levels)
}

func TestAvailableAttributes_ConstantRow(t *testing.T) {
	g := group(rules.MustNew(rules.Constant, primitives.AttrNumberPosition, 0, 0), rules.Constant, rules.Constant, rules.Constant)
	pools, err := AvailableAttributes([]rules.Group{g}, fakePanel{fourSlots(2, false)})
	require.NoError(t, err)

	want := map[primitives.Attr]int64{
		primitives.AttrNumber:   9,
		primitives.AttrPosition: 5, // C(4,2) - 1
		primitives.AttrType:     4,
		primitives.AttrSize:     5,
		primitives.AttrColor:    9,
	}
	if diff := cmp.Diff(want, counts(pools)); diff != "" {
		t.Errorf("pool sizes mismatch (-want +got):\n%s", diff)
	}
	for _, r := range pools.Records() {
		if r.Attr.IsEntity() {
			assert.Equal(t, UniformityFree, r.Uniformity, r.Attr.String())
		} else {
			assert.Equal(t, UniformityUnset, r.Uniformity, r.Attr.String())
		}
	}
}

func TestAvailableAttributes_ConstantEntityExposure(t *testing.T) {
	tests := []struct {
		name    string
		first   rules.Rule
		uniform bool
		exposed bool
	}{
		{"arithmetic position, mixed", rules.MustNew(rules.Arithmetic, primitives.AttrPosition, 1, 0), false, false},
		{"arithmetic position, uniform", rules.MustNew(rules.Arithmetic, primitives.AttrPosition, 1, 0), true, true},
		{"progression position", rules.MustNew(rules.Progression, primitives.AttrPosition, 1, 0), false, true},
		{"distribute three position", rules.MustNew(rules.DistributeThree, primitives.AttrPosition, 0, 0), false, true},
		{"distribute three number", rules.MustNew(rules.DistributeThree, primitives.AttrNumber, 0, 0), false, false},
		{"progression number, uniform", rules.MustNew(rules.Progression, primitives.AttrNumber, -1, 0), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := group(tt.first, rules.Constant, rules.Constant, rules.Constant)
			pools, err := AvailableAttributes([]rules.Group{g}, fakePanel{fourSlots(3, tt.uniform)})
			require.NoError(t, err)
			_, hasType := counts(pools)[primitives.AttrType]
			assert.Equal(t, tt.exposed, hasType)
			_, hasPosition := counts(pools)[primitives.AttrPosition]
			assert.Equal(t, tt.first.Attr() != primitives.AttrNumber, hasPosition)
		})
	}
}

func TestAvailableAttributes_SingleSlotOmitsEmptyPools(t *testing.T) {
	single := fakeComponent{
		layout: constraint.DeriveLayout(primitives.PositionPlanar, nil, primitives.Span(0, 0), primitives.UniformityLevels),
		entity: constraint.DeriveEntity(primitives.TypeLevels, primitives.Span(3, 5), primitives.Span(0, 0), primitives.AngleLevels),
		number: 1,
		slots:  1,
	}
	g := group(rules.MustNew(rules.Constant, primitives.AttrNumberPosition, 0, 0), rules.Constant, rules.Constant, rules.Constant)
	pools, err := AvailableAttributes([]rules.Group{g}, fakePanel{single})
	require.NoError(t, err)
	want := map[primitives.Attr]int64{
		primitives.AttrType: 4,
		primitives.AttrSize: 2,
	}
	if diff := cmp.Diff(want, counts(pools)); diff != "" {
		t.Errorf("pool sizes mismatch (-want +got):\n%s", diff)
	}
}

func TestAvailableAttributes_InvalidInput(t *testing.T) {
	g := group(rules.MustNew(rules.Constant, primitives.AttrNumberPosition, 0, 0), rules.Constant, rules.Constant, rules.Constant)
	_, err := AvailableAttributes([]rules.Group{g, g}, fakePanel{fourSlots(1, true)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = AvailableAttributes([]rules.Group{{}}, fakePanel{fourSlots(1, true)})
	assert.ErrorIs(t, err, rules.ErrInvalidInput)

	noPrimary := rules.Group{rules.MustNew(rules.Constant, primitives.AttrType, 0, 0)}
	_, err = AvailableAttributes([]rules.Group{noPrimary}, fakePanel{fourSlots(1, true)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSampleOne_Exhaustion(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for n := int64(1); n <= 6; n++ {
		pools := NewPools(Pool{Component: 0, Attr: primitives.AttrColor, Remaining: n, Levels: primitives.ColorLevels})
		for i := int64(0); i < n; i++ {
			d, err := pools.SampleOne(rng)
			require.NoError(t, err)
			assert.Equal(t, primitives.AttrColor, d.Attr)
			assert.Equal(t, primitives.ColorLevels, d.Levels)
		}
		assert.True(t, pools.Empty())
		_, err := pools.SampleOne(rng)
		assert.ErrorIs(t, err, ErrPoolExhausted)
	}
}

func TestSampleOne_DrawsEveryValueOnce(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	pools := NewPools(
		Pool{Component: 0, Attr: primitives.AttrNumber, Remaining: 3},
		Pool{Component: 0, Attr: primitives.AttrPosition, Remaining: 0},
		Pool{Component: 1, Attr: primitives.AttrSize, Remaining: 2},
	)
	require.Equal(t, 2, pools.Len())

	seen := map[primitives.Attr]int{}
	for !pools.Empty() {
		d, err := pools.SampleOne(rng)
		require.NoError(t, err)
		seen[d.Attr]++
	}
	assert.Equal(t, map[primitives.Attr]int{primitives.AttrNumber: 3, primitives.AttrSize: 2}, seen)
}

func TestTake(t *testing.T) {
	pools := NewPools(Pool{Attr: primitives.AttrType, Remaining: 1})
	d, err := pools.Take(0)
	require.NoError(t, err)
	assert.Equal(t, primitives.AttrType, d.Attr)
	_, err = pools.Take(0)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestSelect(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	pools := NewPools(
		Pool{Component: 0, Attr: primitives.AttrNumber, Remaining: 3},
		Pool{Component: 0, Attr: primitives.AttrType, Remaining: 3},
		Pool{Component: 0, Attr: primitives.AttrSize, Remaining: 3},
		Pool{Component: 1, Attr: primitives.AttrNumber, Remaining: 3},
		Pool{Component: 1, Attr: primitives.AttrPosition, Remaining: 3},
	)
	for range 50 {
		picked := pools.Select(rng, 3, 1)
		require.Len(t, picked, 3)
		mesh := 0
		ids := map[PoolID]bool{}
		for _, p := range picked {
			if p.Component == 1 {
				mesh++
			}
			assert.False(t, ids[p.ID], "pool %d picked twice", p.ID)
			ids[p.ID] = true
		}
		assert.GreaterOrEqual(t, mesh, 1)
	}
	assert.Len(t, pools.Select(rng, 10, -1), 5)
	assert.Equal(t, 5, pools.Len(), "Select must not consume")
}

func TestSelect_FillsFromMeshWhenOthersRunShort(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	pools := NewPools(
		Pool{Component: 0, Attr: primitives.AttrColor, Remaining: 2},
		Pool{Component: 1, Attr: primitives.AttrNumber, Remaining: 2},
		Pool{Component: 1, Attr: primitives.AttrType, Remaining: 2},
		Pool{Component: 1, Attr: primitives.AttrSize, Remaining: 2},
	)
	for range 50 {
		picked := pools.Select(rng, 3, 1)
		require.Len(t, picked, 3)
		ids := map[PoolID]bool{}
		for _, p := range picked {
			assert.False(t, ids[p.ID], "pool %d picked twice", p.ID)
			ids[p.ID] = true
		}
	}
}

func TestBuildCandidates_Independent(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 9))
	pools := NewPools(
		Pool{Component: 0, Attr: primitives.AttrType, Remaining: 2},
		Pool{Component: 0, Attr: primitives.AttrColor, Remaining: 9},
	)
	plan, err := BuildCandidates(Independent, pools, rng, -1)
	require.NoError(t, err)
	require.Len(t, plan, NumDistractors)

	next := map[PoolID]int{}
	for _, c := range plan {
		require.Len(t, c, 1)
		assert.Equal(t, next[c[0].Draw.Pool], c[0].Variant)
		next[c[0].Draw.Pool]++
	}
	assert.LessOrEqual(t, next[0], 2)
	var left int64
	for _, r := range pools.Records() {
		left += r.Remaining
	}
	assert.Equal(t, int64(2+9-NumDistractors), left)
}

func TestBuildCandidates_IndependentShortSupply(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	plan, err := BuildCandidates(Independent, NewPools(Pool{Attr: primitives.AttrSize, Remaining: 3}), rng, -1)
	require.NoError(t, err)
	assert.Len(t, plan, 3)

	_, err = BuildCandidates(Independent, NewPools(), rng, -1)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestBuildCandidates_HierarchicalThree(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 2))
	pools := NewPools(
		Pool{Component: 0, Attr: primitives.AttrType, Remaining: 4},
		Pool{Component: 0, Attr: primitives.AttrSize, Remaining: 5},
		Pool{Component: 0, Attr: primitives.AttrColor, Remaining: 9},
		Pool{Component: 0, Attr: primitives.AttrNumber, Remaining: 9},
	)
	plan, err := BuildCandidates(Hierarchical, pools, rng, -1)
	require.NoError(t, err)
	require.Len(t, plan, NumDistractors)

	// Every non-empty subset of the three selected attributes appears exactly once.
	seen := map[string]bool{}
	for _, c := range plan {
		require.NotEmpty(t, c)
		key := ""
		for _, choice := range c {
			assert.Zero(t, choice.Variant)
			key += choice.Draw.Attr.String() + ","
		}
		assert.False(t, seen[key], "duplicate candidate %s", key)
		seen[key] = true
	}
	for _, c := range plan {
		for i, choice := range c {
			if choice.Draw.Attr == primitives.AttrNumber {
				assert.Equal(t, len(c)-1, i, "Number must be applied last")
			}
		}
	}
}

func TestBuildCandidates_HierarchicalTwo(t *testing.T) {
	tests := []struct {
		name        string
		pools       []Pool
		wantLone    int
		wantVariant int
	}{
		{
			name: "type and size",
			pools: []Pool{
				{Component: 0, Attr: primitives.AttrType, Remaining: 4},
				{Component: 0, Attr: primitives.AttrSize, Remaining: 5},
			},
			wantLone:    4, // first attribute alone plus three lone variants of the second
			wantVariant: 2,
		},
		{
			name: "position and number",
			pools: []Pool{
				{Component: 0, Attr: primitives.AttrPosition, Remaining: 5},
				{Component: 1, Attr: primitives.AttrNumber, Remaining: 9},
			},
			wantLone:    7,
			wantVariant: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(4, 4))
			plan, err := BuildCandidates(Hierarchical, NewPools(tt.pools...), rng, -1)
			require.NoError(t, err)
			require.Len(t, plan, NumDistractors)
			lone, maxVariant := 0, 0
			for _, c := range plan {
				if len(c) == 1 {
					lone++
				}
				for _, choice := range c {
					maxVariant = max(maxVariant, choice.Variant)
				}
			}
			assert.Equal(t, tt.wantLone, lone)
			assert.Equal(t, tt.wantVariant, maxVariant)
		})
	}
}

func TestBuildCandidates_HierarchicalSingle(t *testing.T) {
	rng := rand.New(rand.NewPCG(6, 6))
	plan, err := BuildCandidates(Hierarchical, NewPools(Pool{Attr: primitives.AttrColor, Remaining: 9}), rng, -1)
	require.NoError(t, err)
	require.Len(t, plan, NumDistractors)
	for v, c := range plan {
		want := Candidate{{Draw: Draw{Pool: 0, Attr: primitives.AttrColor}, Variant: v}}
		if diff := cmp.Diff(want, c); diff != "" {
			t.Errorf("candidate %d mismatch (-want +got):\n%s", v, diff)
		}
	}
}

func TestBuildCandidates_DropsPositionUnderNumber(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	pools := NewPools(
		Pool{Component: 0, Attr: primitives.AttrNumber, Remaining: 9},
		Pool{Component: 0, Attr: primitives.AttrPosition, Remaining: 5},
	)
	plan, err := BuildCandidates(Hierarchical, pools, rng, -1)
	require.NoError(t, err)
	for _, c := range plan {
		for _, choice := range c {
			assert.Equal(t, primitives.AttrNumber, choice.Draw.Attr)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("hierarchical")
	require.NoError(t, err)
	assert.Equal(t, Hierarchical, s)
	_, err = ParseStrategy("random")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = BuildCandidates("random", NewPools(), nil, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
