package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosswarped.com/ravengen/pkg/primitives"
)

func TestLookup_SlotCounts(t *testing.T) {
	tests := []struct {
		id    ID
		slots []int
	}{
		{CenterSingle, []int{1}},
		{DistributeFour, []int{4}},
		{DistributeNine, []int{9}},
		{LeftCenterSingleRightCenterSingle, []int{1, 1}},
		{UpCenterSingleDownCenterSingle, []int{1, 1}},
		{InCenterSingleOutCenterSingle, []int{1, 1}},
		{InDistributeFourOutCenterSingle, []int{1, 4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			cfg, err := Lookup(tt.id)
			require.NoError(t, err)
			require.Equal(t, len(tt.slots), cfg.NumComponents())
			for i, want := range tt.slots {
				c, err := cfg.Component(i)
				require.NoError(t, err)
				assert.Equal(t, want, c.SlotCount())
				// The number range always covers every slot count.
				assert.Equal(t, primitives.Span(0, want-1), c.Number)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("hexagonal")
	assert.True(t, errors.Is(err, ErrUnknownConfiguration))

	_, err = ParseID("hexagonal")
	assert.ErrorIs(t, err, ErrUnknownConfiguration)

	id, err := ParseID("distribute_nine")
	require.NoError(t, err)
	assert.Equal(t, DistributeNine, id)
}

func TestOuterComponents(t *testing.T) {
	for _, id := range IDs() {
		cfg, err := Lookup(id)
		require.NoError(t, err)
		for i, c := range cfg.Components {
			nested := id == InCenterSingleOutCenterSingle || id == InDistributeFourOutCenterSingle
			assert.Equal(t, nested && i == 0, c.Outer, "%s component %d", id, i)
		}
	}
}

func TestWithMesh(t *testing.T) {
	cfg, err := Lookup(DistributeFour)
	require.NoError(t, err)
	assert.False(t, cfg.HasMesh())

	meshed := cfg.WithMesh()
	assert.True(t, meshed.HasMesh())
	assert.Equal(t, 2, meshed.NumComponents())
	assert.Equal(t, 1, cfg.NumComponents(), "original must be unchanged")
	assert.Equal(t, primitives.PositionLine, meshed.Components[1].Kind)
	assert.Equal(t, meshed, meshed.WithMesh())

	_, err = meshed.Component(2)
	assert.Error(t, err)
}

func TestGridSlotsAreDistinct(t *testing.T) {
	cfg, err := Lookup(DistributeNine)
	require.NoError(t, err)
	seen := map[primitives.Slot]bool{}
	for _, s := range cfg.Components[0].Slots {
		assert.False(t, seen[s], "duplicate slot %v", s)
		seen[s] = true
	}
}
