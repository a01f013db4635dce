package panel

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosswarped.com/ravengen/pkg/constraint"
	"crosswarped.com/ravengen/pkg/distractor"
	"crosswarped.com/ravengen/pkg/layout"
	"crosswarped.com/ravengen/pkg/primitives"
	"crosswarped.com/ravengen/pkg/rules"
)

func lookup(t *testing.T, id layout.ID) layout.Configuration {
	t.Helper()
	cfg, err := layout.Lookup(id)
	require.NoError(t, err)
	return cfg
}

func constraintsOf(cfg layout.Configuration) []Constraints {
	out := make([]Constraints, cfg.NumComponents())
	for i, c := range cfg.Components {
		out[i] = Constraints{
			Layout: constraint.DeriveLayout(c.Kind, nil, c.Number, c.Uniformity),
			Entity: constraint.DeriveEntity(c.Type, c.Size, c.Color, c.Angle),
		}
	}
	return out
}

// fourSlotPanel samples a distribute_four panel with exactly two entities.
func fourSlotPanel(t *testing.T, seed uint64, uniformity int) *Panel {
	t.Helper()
	cfg := lookup(t, layout.DistributeFour)
	tightened := constraintsOf(cfg)
	tightened[0].Layout.Number = primitives.Span(1, 1)
	tightened[0].Layout.Uniformity = primitives.Span(uniformity, uniformity)
	p, err := Sample(rand.New(rand.NewPCG(seed, seed)), cfg, tightened)
	require.NoError(t, err)
	return p
}

func TestSample_RespectsConstraints(t *testing.T) {
	for _, id := range layout.IDs() {
		t.Run(string(id), func(t *testing.T) {
			cfg := lookup(t, id).WithMesh()
			rng := rand.New(rand.NewPCG(1, 2))
			for range 50 {
				p, err := Sample(rng, cfg, constraintsOf(cfg))
				require.NoError(t, err)
				require.Equal(t, cfg.NumComponents(), p.NumComponents())
				for i, c := range p.Components {
					base := cfg.Components[i]
					assert.True(t, base.Number.Contains(c.NumberLevel()))
					assert.Equal(t, base.SlotCount(), c.SlotCount())
					assert.Equal(t, c.SlotCount(), p.SlotCount(i))
					assert.Len(t, c.Entities, c.Occupied.Count())
					assert.Equal(t, c.Occupied.Slice(), slotsOf(c.Entities))
					for _, e := range c.Entities {
						assert.True(t, base.Type.Contains(e.Type))
						assert.True(t, base.Size.Contains(e.Size))
						assert.True(t, base.Color.Contains(e.Color))
						assert.True(t, base.Angle.Contains(e.Angle))
					}
				}
			}
		})
	}
}

func slotsOf(entities []Entity) []int {
	out := make([]int, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Slot)
	}
	return out
}

func TestSample_Deterministic(t *testing.T) {
	cfg := lookup(t, layout.InDistributeFourOutCenterSingle)
	a, err := Sample(rand.New(rand.NewPCG(9, 9)), cfg, constraintsOf(cfg))
	require.NoError(t, err)
	b, err := Sample(rand.New(rand.NewPCG(9, 9)), cfg, constraintsOf(cfg))
	require.NoError(t, err)
	if diff := cmp.Diff(a, b, cmp.AllowUnexported(primitives.SlotSet{})); diff != "" {
		t.Errorf("same seed produced different panels (-a +b):\n%s", diff)
	}
}

func TestSample_UniformSharesLevels(t *testing.T) {
	p := fourSlotPanel(t, 3, primitives.UniformLevel)
	require.True(t, p.Uniform(0))
	first := p.Components[0].Entities[0]
	for _, e := range p.Components[0].Entities {
		assert.Equal(t, first.Type, e.Type)
		assert.Equal(t, first.Size, e.Size)
		assert.Equal(t, first.Color, e.Color)
	}
}

func TestSample_InvalidInput(t *testing.T) {
	cfg := lookup(t, layout.CenterSingle)
	rng := rand.New(rand.NewPCG(1, 1))

	_, err := Sample(rng, cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	empty := constraintsOf(cfg)
	empty[0].Entity.Color = empty[0].Entity.Color.Invalidate()
	_, err = Sample(rng, cfg, empty)
	assert.ErrorIs(t, err, ErrInvalidInput)

	crowded := constraintsOf(cfg)
	crowded[0].Layout.Number = primitives.Span(3, 3)
	_, err = Sample(rng, cfg, crowded)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSampleAlternative_ExhaustsPool(t *testing.T) {
	p := fourSlotPanel(t, 5, 0)
	tests := []struct {
		attr   primitives.Attr
		levels primitives.Interval
		want   int
	}{
		{primitives.AttrNumber, primitives.Span(0, 3), 9},
		{primitives.AttrPosition, primitives.Interval{}, 5},
		{primitives.AttrType, primitives.TypeLevels, 4},
		{primitives.AttrSize, primitives.SizeLevels, 5},
		{primitives.AttrColor, primitives.ColorLevels, 9},
	}
	for _, tt := range tests {
		t.Run(tt.attr.String(), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(2, 3))
			d := distractor.Draw{Component: 0, Attr: tt.attr, Levels: tt.levels}
			var got []Modification
			for {
				m, err := p.SampleAlternative(rng, d, got)
				if errors.Is(err, ErrNoAlternative) {
					break
				}
				require.NoError(t, err)
				require.Less(t, len(got), tt.want, "more alternatives than the pool size")
				got = append(got, m)
			}
			assert.Len(t, got, tt.want)
		})
	}
}

func TestSampleAlternative_MatchesExplorer(t *testing.T) {
	p := fourSlotPanel(t, 6, 0)
	group := rules.Group{
		rules.MustNew(rules.Constant, primitives.AttrNumberPosition, 0, 0),
		rules.MustNew(rules.Progression, primitives.AttrType, 1, 0),
		rules.MustNew(rules.Arithmetic, primitives.AttrSize, -1, 0),
		rules.MustNew(rules.DistributeThree, primitives.AttrColor, 0, 0),
	}
	pools, err := distractor.AvailableAttributes([]rules.Group{group}, p)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(4, 4))
	for _, pool := range pools.Records() {
		var got []Modification
		for range pool.Remaining {
			d, err := pools.Take(pool.ID)
			require.NoError(t, err)
			m, err := p.SampleAlternative(rng, d, got)
			require.NoError(t, err, pool.String())
			got = append(got, m)
		}
		_, err := p.SampleAlternative(rng, distractor.Draw{Component: 0, Attr: pool.Attr, Levels: pool.Levels}, got)
		assert.ErrorIs(t, err, ErrNoAlternative, pool.String())
	}
	assert.True(t, pools.Empty())
}

func TestSampleAlternative_InvalidInput(t *testing.T) {
	p := fourSlotPanel(t, 1, 0)
	rng := rand.New(rand.NewPCG(1, 1))
	_, err := p.SampleAlternative(rng, distractor.Draw{Component: 4, Attr: primitives.AttrType}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = p.SampleAlternative(rng, distractor.Draw{Component: 0, Attr: primitives.AttrAngle}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApply(t *testing.T) {
	p := fourSlotPanel(t, 7, 0)
	before := p.Clone()

	three, err := primitives.SlotSetOf(0, 1, 2)
	require.NoError(t, err)
	grown, err := p.Apply(Modification{Component: 0, Attr: primitives.AttrNumber, Value: 2, Slots: three})
	require.NoError(t, err)
	assert.Equal(t, 3, grown.Number(0))
	assert.Equal(t, []int{0, 1, 2}, slotsOf(grown.Components[0].Entities))
	extra := grown.Components[0].Entities[2]
	extra.Slot = grown.Components[0].Entities[0].Slot
	assert.Equal(t, grown.Components[0].Entities[0], extra, "added entity copies the first")
	require.Len(t, grown.Modifications, 1)

	recolored, err := grown.Apply(Modification{Component: 0, Attr: primitives.AttrColor, Value: 9, Uniformity: distractor.UniformityEnforced})
	require.NoError(t, err)
	for _, e := range recolored.Components[0].Entities {
		assert.Equal(t, 9, e.Color)
	}
	assert.Len(t, recolored.Modifications, 2)

	single, err := p.Apply(Modification{Component: 0, Attr: primitives.AttrType, Value: 1, Uniformity: distractor.UniformityFree})
	require.NoError(t, err)
	assert.Equal(t, 1, single.Components[0].Entities[0].Type)
	assert.Equal(t, p.Components[0].Entities[1], single.Components[0].Entities[1])

	if diff := cmp.Diff(before, p, cmp.AllowUnexported(primitives.SlotSet{})); diff != "" {
		t.Errorf("Apply modified its receiver (-before +after):\n%s", diff)
	}

	_, err = p.Apply(Modification{Component: 0, Attr: primitives.AttrPosition, Slots: three})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = p.Apply(Modification{Component: 2, Attr: primitives.AttrType})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
