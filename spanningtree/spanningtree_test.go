package spanningtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/waitline/spanningtree"
	"github.com/teranos/waitline/wire"
)

func isConnectedTree(t *testing.T, tree wire.Tree, members []wire.NodeID) {
	t.Helper()
	require.Len(t, tree.Adjacency, len(members))

	edgeCount := 0
	for _, neighbours := range tree.Adjacency {
		edgeCount += len(neighbours)
	}
	// Every edge is recorded on both endpoints, so a tree of n nodes has
	// n-1 edges and thus 2*(n-1) directed adjacency entries.
	assert.Equal(t, 2*(len(members)-1), edgeCount)

	visited := map[wire.NodeID]bool{members[0]: true}
	queue := []wire.NodeID{members[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range tree.Adjacency[cur] {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	assert.Len(t, visited, len(members), "tree must be fully connected")
}

func TestFromMemberList_ProducesConnectedTree(t *testing.T) {
	members := []wire.NodeID{5, 1, 3, 2, 4}
	tree := spanningtree.FromMemberList(members)
	isConnectedTree(t, tree, members)
}

func TestFromMemberList_IsPermutationInvariant(t *testing.T) {
	a := spanningtree.FromMemberList([]wire.NodeID{1, 2, 3, 4, 5})
	b := spanningtree.FromMemberList([]wire.NodeID{5, 4, 3, 2, 1})
	assert.True(t, a.Equal(b), "construction must not depend on input order")
}

func TestFromMemberList_DedupsMembers(t *testing.T) {
	tree := spanningtree.FromMemberList([]wire.NodeID{1, 1, 2, 2, 3})
	assert.Len(t, tree.Adjacency, 3)
}

func TestAddNode_KeepsTreeConnected(t *testing.T) {
	members := []wire.NodeID{1, 2, 3}
	tree := spanningtree.FromMemberList(members)
	tree = spanningtree.AddNode(tree, 4)

	isConnectedTree(t, tree, append(members, 4))
}

func TestAddNode_ExistingNodeIsNoop(t *testing.T) {
	tree := spanningtree.FromMemberList([]wire.NodeID{1, 2, 3})
	again := spanningtree.AddNode(tree, 2)
	assert.True(t, tree.Equal(again))
}

func TestRemoveNode_ReconnectsSplitComponents(t *testing.T) {
	members := []wire.NodeID{1, 2, 3, 4, 5}
	tree := spanningtree.FromMemberList(members)

	removed := spanningtree.RemoveNode(tree, 1)

	remaining := []wire.NodeID{2, 3, 4, 5}
	isConnectedTree(t, removed, remaining)
}

func TestTowardsLowestID_LowestIsItsOwnRoot(t *testing.T) {
	tree := spanningtree.FromMemberList([]wire.NodeID{1, 2, 3})
	assert.Equal(t, wire.NodeID(1), spanningtree.TowardsLowestID(tree, 1))
}

func TestTowardsLowestID_PointsAlongPath(t *testing.T) {
	tree := wire.Tree{Adjacency: map[wire.NodeID][]wire.NodeID{
		1: {2},
		2: {1, 3},
		3: {2},
	}}
	assert.Equal(t, wire.NodeID(2), spanningtree.TowardsLowestID(tree, 3))
}
