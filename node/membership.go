package node

import (
	"github.com/teranos/waitline/logger"
	"github.com/teranos/waitline/spanningtree"
	"github.com/teranos/waitline/wire"
)

// JoinAt asks an existing member, at, to admit this node into the room.
func (n *Node) JoinAt(at wire.NodeID) {
	n.qpidWeightTable.Set(n.ID, wire.MaxWeight, 0)
	n.send(at, wire.Message{Kind: wire.KindNodeJoin, JoiningNode: n.ID})
}

func (n *Node) handleNodeJoin(nodeID wire.NodeID) error {
	return n.addNode(nodeID)
}

// addNode grows the spanning tree to include nodeID and broadcasts the
// new tree to every existing member, bumping the tree iteration so
// members can detect stale or conflicting restructures.
func (n *Node) addNode(nodeID wire.NodeID) error {
	n.networkMembers = append(n.networkMembers, nodeID)
	updated := spanningtree.AddNode(n.spanningTree, nodeID)
	n.treeIteration++

	for _, member := range n.networkMembers {
		if member == n.ID {
			continue
		}
		n.send(member, wire.Message{
			Kind:          wire.KindNodeAdded,
			AffectedNode:  nodeID,
			Tree:          updated,
			TreeIteration: n.treeIteration,
		})
	}
	return n.applyNewTree(updated)
}

func (n *Node) handleNodeAdded(nodeID wire.NodeID, tree wire.Tree, iteration uint64) error {
	if !contains(n.networkMembers, nodeID) {
		n.networkMembers = append(n.networkMembers, nodeID)
	}
	return n.restructureTreeMessage(tree, iteration)
}

// RemoveNode shrinks the spanning tree to drop nodeID, for an operator
// retiring a member deliberately rather than the failure detector
// declaring it dead. Any surviving member can announce a removal; the
// membership protocol's re-derivation on conflict makes it safe for more
// than one to do so concurrently.
func (n *Node) RemoveNode(nodeID wire.NodeID) error {
	return n.removeNode(nodeID)
}

// removeNode shrinks the spanning tree, used both for a voluntary leave
// by the last member standing on a node's behalf and for a fault-detected
// removal.
func (n *Node) removeNode(nodeID wire.NodeID) error {
	if nodeID == n.ID {
		return ErrFaultFalsePositive
	}

	n.networkMembers = removeMember(n.networkMembers, nodeID)
	updated := spanningtree.RemoveNode(n.spanningTree, nodeID)
	n.treeIteration++

	for _, member := range n.networkMembers {
		if member == n.ID {
			continue
		}
		n.send(member, wire.Message{
			Kind:          wire.KindNodeRemoved,
			AffectedNode:  nodeID,
			Tree:          updated,
			TreeIteration: n.treeIteration,
		})
	}
	return n.applyNewTree(updated)
}

func (n *Node) handleNodeRemoved(nodeID wire.NodeID, tree wire.Tree, iteration uint64) error {
	n.networkMembers = removeMember(n.networkMembers, nodeID)
	return n.restructureTreeMessage(tree, iteration)
}

func (n *Node) restructureTree() error {
	newTree := spanningtree.FromMemberList(n.networkMembers)
	n.treeIteration++
	for _, member := range n.networkMembers {
		if member == n.ID {
			continue
		}
		n.send(member, wire.Message{
			Kind:          wire.KindTreeRestructure,
			Tree:          newTree,
			TreeIteration: n.treeIteration,
		})
	}
	return n.applyNewTree(newTree)
}

func (n *Node) handleTreeRestructure(tree wire.Tree, iteration uint64) error {
	return n.restructureTreeMessage(tree, iteration)
}

// restructureTreeMessage applies an incoming tree update, resolving the
// case where two members proposed conflicting restructures at the same
// iteration by re-deriving a canonical tree from the member list (which
// every honest node computes identically) and bumping the iteration
// again so the conflict can't recur.
func (n *Node) restructureTreeMessage(tree wire.Tree, iteration uint64) error {
	if iteration == n.treeIteration {
		if n.spanningTree.Equal(tree) {
			logger.Debugw("ignoring duplicate tree restructure", "node", n.ID)
			return nil
		}
		logger.Debugw("conflicting tree restructure detected", "node", n.ID)
		return n.restructureTree()
	}
	if iteration < n.treeIteration {
		logger.Debugw("ignoring outdated tree restructure", "node", n.ID)
		return nil
	}

	n.treeIteration = iteration
	return n.applyNewTree(tree)
}

// applyNewTree reconciles this node's QPID neighbour state with a newly
// adopted spanning tree: neighbours dropped from the tree are forgotten,
// neighbours gained are introduced with a fresh QPID update, and the
// parent is recomputed once enough information is available.
func (n *Node) applyNewTree(tree wire.Tree) error {
	oldNeighbours := n.spanningTree.Neighbours(n.ID)
	newNeighbours := tree.Neighbours(n.ID)

	for _, m := range tree.Nodes() {
		if !contains(n.networkMembers, m) {
			n.networkMembers = append(n.networkMembers, m)
		}
	}

	var anyAdded, anyRemoved bool

	for _, old := range oldNeighbours {
		if !contains(newNeighbours, old) {
			n.qpidWeightTable.Remove(old)
			anyRemoved = true
		}
	}

	for _, nb := range newNeighbours {
		if !contains(oldNeighbours, nb) {
			_, hadWeight := n.qpidWeightTable.Weight(nb)
			if err := n.addNeighbour(nb); err != nil {
				return err
			}
			if !hadWeight {
				anyAdded = true
			}
		}
	}

	switch {
	case anyAdded && anyRemoved:
		logger.Debugw("both added and removed neighbours, parent unknown until updates arrive", "node", n.ID)
		n.qpidParent = nil
	case anyAdded:
		logger.Debugw("added neighbours, parent unknown until updates arrive", "node", n.ID)
		n.qpidParent = nil
	case anyRemoved:
		if parent, ok := n.qpidWeightTable.Smallest(); ok {
			n.qpidParent = &parent
		}
	}

	n.spanningTree = tree

	if n.qpidParent == nil {
		n.shouldSendFindRoot = true
		n.heuristicSetQPIDParent()
	}
	return nil
}

func (n *Node) addNeighbour(neighbour wire.NodeID) error {
	weight := n.qpidWeightTable.ComputeWeight(neighbour)
	n.send(neighbour, wire.Message{
		Kind:             wire.KindQPIDUpdate,
		Weight:           weight,
		UpdatedIteration: n.getUpdateIteration(neighbour),
	})
	return nil
}

func contains(ids []wire.NodeID, target wire.NodeID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func removeMember(members []wire.NodeID, target wire.NodeID) []wire.NodeID {
	out := members[:0]
	for _, m := range members {
		if m != target {
			out = append(out, m)
		}
	}
	return out
}
