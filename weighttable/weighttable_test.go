package weighttable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/waitline/weighttable"
	"github.com/teranos/waitline/wire"
)

func TestTable_SetAndWeight(t *testing.T) {
	table := weighttable.New(1)
	table.Set(2, wire.Weight{Time: 100}, 0)

	w, ok := table.Weight(2)
	require.True(t, ok)
	assert.EqualValues(t, 100, w.Time)

	_, ok = table.Weight(99)
	assert.False(t, ok)
}

func TestTable_Set_DropsStaleIteration(t *testing.T) {
	table := weighttable.New(1)
	table.Set(2, wire.Weight{Time: 100}, 5)
	table.Set(2, wire.Weight{Time: 999}, 3)

	w, _ := table.Weight(2)
	assert.EqualValues(t, 100, w.Time, "older iteration must not overwrite a newer one")
}

func TestTable_ComputeWeight_ExcludesAskerForPeers(t *testing.T) {
	table := weighttable.New(1)
	table.Set(1, wire.Weight{Time: 50}, 0)
	table.Set(2, wire.Weight{Time: 10}, 0)
	table.Set(3, wire.Weight{Time: 20}, 0)

	// Towards peer 2, this node's own view excludes peer 2's own contribution.
	towardsTwo := table.ComputeWeight(2)
	assert.EqualValues(t, 20, towardsTwo.Time, "smallest among self and node 3")

	// Towards itself (the root's own advertisement), every entry counts.
	towardsSelf := table.ComputeWeight(1)
	assert.EqualValues(t, 10, towardsSelf.Time)
}

func TestTable_Smallest(t *testing.T) {
	table := weighttable.New(1)
	table.Set(1, wire.Weight{Time: 50}, 0)
	table.Set(2, wire.Weight{Time: 10}, 0)

	smallest, ok := table.Smallest()
	require.True(t, ok)
	assert.EqualValues(t, 2, smallest)
}

func TestTable_Smallest_EmptyTable(t *testing.T) {
	table := weighttable.New(1)
	_, ok := table.Smallest()
	assert.False(t, ok)
}

func TestTable_AnyNotMax(t *testing.T) {
	table := weighttable.New(1)
	table.Set(1, wire.MaxWeight, 0)
	assert.False(t, table.AnyNotMax())

	table.Set(2, wire.Weight{Time: 10}, 0)
	assert.True(t, table.AnyNotMax())
}

func TestTable_Remove(t *testing.T) {
	table := weighttable.New(1)
	table.Set(2, wire.Weight{Time: 10}, 0)
	table.Remove(2)

	_, ok := table.Weight(2)
	assert.False(t, ok)
}

func TestTable_NeighbourCount_ExcludesSelf(t *testing.T) {
	table := weighttable.New(1)
	table.Set(1, wire.Weight{Time: 10}, 0)
	table.Set(2, wire.Weight{Time: 20}, 0)
	table.Set(3, wire.Weight{Time: 30}, 0)

	assert.Equal(t, 2, table.NeighbourCount())
}
