package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/waitline/wire"
)

func TestTree_Equal_IgnoresNeighbourOrder(t *testing.T) {
	a := wire.Tree{Adjacency: map[wire.NodeID][]wire.NodeID{
		1: {2, 3},
		2: {1},
		3: {1},
	}}
	b := wire.Tree{Adjacency: map[wire.NodeID][]wire.NodeID{
		1: {3, 2},
		2: {1},
		3: {1},
	}}

	assert.True(t, a.Equal(b))
}

func TestTree_Equal_DetectsDifference(t *testing.T) {
	a := wire.Tree{Adjacency: map[wire.NodeID][]wire.NodeID{1: {2}, 2: {1}}}
	b := wire.Tree{Adjacency: map[wire.NodeID][]wire.NodeID{1: {2, 3}, 2: {1}, 3: {1}}}

	assert.False(t, a.Equal(b))
}

func TestTree_Clone_IsIndependent(t *testing.T) {
	a := wire.Tree{Adjacency: map[wire.NodeID][]wire.NodeID{1: {2}, 2: {1}}}
	clone := a.Clone()

	clone.Adjacency[1] = append(clone.Adjacency[1], 3)

	assert.Len(t, a.Adjacency[1], 1, "mutating the clone must not affect the original")
}

func TestTree_Nodes_SortedAscending(t *testing.T) {
	tree := wire.Tree{Adjacency: map[wire.NodeID][]wire.NodeID{3: nil, 1: nil, 2: nil}}
	assert.Equal(t, []wire.NodeID{1, 2, 3}, tree.Nodes())
}

func TestTree_Neighbours_UnknownNodeIsNil(t *testing.T) {
	tree := wire.Tree{Adjacency: map[wire.NodeID][]wire.NodeID{1: {2}, 2: {1}}}
	assert.Nil(t, tree.Neighbours(99))
}
