package node

import (
	"github.com/teranos/waitline/clock"
	"github.com/teranos/waitline/logger"
	"github.com/teranos/waitline/spanningtree"
	"github.com/teranos/waitline/wire"
)

// qpidBufferTime gives the eviction timer a little slack before a newly
// elected root forces an extra eviction, so a root handover doesn't
// immediately double up on evictions.
const qpidBufferTime clock.Time = 10

// qpidInsert is Algorithm 1 (insert) of the QPID paper: record a new
// weight for this node and propagate the change towards the root if it
// changed what this node offers its parent.
func (n *Node) qpidInsert(weight wire.Weight) error {
	if n.qpidParent == nil {
		return ErrQPIDNotInitialized
	}

	parent := *n.qpidParent
	oldWeight := n.qpidWeightTable.ComputeWeight(parent)
	n.qpidWeightTable.Set(n.ID, weight, 0)

	if parent != n.ID {
		newWeight := n.qpidWeightTable.ComputeWeight(parent)
		if !newWeight.Equal(oldWeight) {
			n.sendQPIDUpdate(parent, newWeight)
		}
	} else {
		n.broadcastLatestValues()
	}
	return nil
}

func (n *Node) sendQPIDUpdate(to wire.NodeID, weight wire.Weight) {
	n.send(to, wire.Message{
		Kind:             wire.KindQPIDUpdate,
		Weight:           weight,
		UpdatedIteration: n.getUpdateIteration(to),
	})
	n.qpidLastSent[to] = weight
}

// qpidHandleUpdate is Algorithm 2 (update): absorb a neighbour's
// advertised weight and, if that changes what this node should offer its
// own parent, propagate further up the tree.
func (n *Node) qpidHandleUpdate(from wire.NodeID, weight wire.Weight, updateIteration uint64) error {
	var oldParentWeight *wire.Weight
	if n.qpidParent != nil {
		w := n.qpidWeightTable.ComputeWeight(*n.qpidParent)
		oldParentWeight = &w
	}

	n.qpidWeightTable.Set(from, weight, updateIteration)

	if n.qpidParent == nil {
		if !n.heuristicSetQPIDParent() {
			return nil
		}
		w := n.qpidWeightTable.ComputeWeight(*n.qpidParent)
		oldParentWeight = &w

		for _, peer := range n.qpidWeightTable.AllNeighbours() {
			if peer == *n.qpidParent || peer == n.ID {
				continue
			}
			n.sendQPIDUpdate(peer, n.qpidWeightTable.ComputeWeight(peer))
		}
	}

	if *n.qpidParent == n.ID {
		self, _ := n.qpidWeightTable.Weight(n.ID)
		if weight.Less(self) {
			n.qpidParent = &from
			w := n.qpidWeightTable.ComputeWeight(from)
			n.send(from, wire.Message{
				Kind:             wire.KindQPIDFindRoot,
				Weight:           w,
				LastEviction:     n.lastEvictionTime,
				UpdatedIteration: n.getUpdateIteration(from),
			})
		}
	} else {
		newParentWeight := n.qpidWeightTable.ComputeWeight(*n.qpidParent)
		if !newParentWeight.Equal(*oldParentWeight) {
			n.sendQPIDUpdate(*n.qpidParent, newParentWeight)
		}
	}
	return nil
}

// qpidDeleteMin is Algorithm 3 (deleteMin): only the root ever actually
// pops a ticket; every other node forwards the request towards the root.
func (n *Node) qpidDeleteMin() error {
	if n.qpidParent == nil {
		logger.Warn("qpid delete min requested before qpid initialised")
		return nil
	}
	if *n.qpidParent != n.ID {
		n.send(*n.qpidParent, wire.Message{Kind: wire.KindQPIDDeleteMin})
		return nil
	}

	if n.localQueue.Empty() {
		return nil
	}

	ticket, _ := n.localQueue.Dequeue()

	if next, ok := n.localQueue.Peek(); ok {
		n.qpidWeightTable.Set(n.ID, wire.WeightOf(next), 0)
	} else {
		n.qpidWeightTable.Set(n.ID, wire.MaxWeight, 0)
	}

	if n.qpidWeightTable.AnyNotMax() {
		newParent, _ := n.qpidWeightTable.Smallest()
		n.qpidParent = &newParent
		if newParent != n.ID {
			n.send(newParent, wire.Message{
				Kind:             wire.KindQPIDFindRoot,
				Weight:           n.qpidWeightTable.ComputeWeight(newParent),
				LastEviction:     n.lastEvictionTime,
				UpdatedIteration: n.getUpdateIteration(newParent),
			})
		} else {
			n.broadcastLatestValues()
		}
	}

	switch ticket.Type {
	case wire.Normal:
		ticket.EvictionTime = n.clock.Now()
		n.leavingList = append(n.leavingList, ticket)
	case wire.Drain:
		// dummy ticket; nothing to hand to a client
	case wire.Skip:
		return n.qpidDeleteMin()
	}
	return nil
}

func (n *Node) broadcastLatestValues() {
	for _, peer := range n.qpidWeightTable.AllNeighbours() {
		if peer == n.ID {
			continue
		}
		weight := n.qpidWeightTable.ComputeWeight(peer)
		if last, ok := n.qpidLastSent[peer]; ok && last.Equal(weight) {
			continue
		}
		n.sendQPIDUpdate(peer, weight)
	}
}

// qpidHandleFindRoot is Algorithm 4 (findRoot): a child just discovered
// its weight beats ours, so it's redirecting us to re-evaluate who the
// true root is.
func (n *Node) qpidHandleFindRoot(from wire.NodeID, weight wire.Weight, lastEviction clock.Time, updateIteration uint64) error {
	if n.qpidParent == nil {
		logger.Warn("qpid find root received before qpid initialised")
		return nil
	}

	n.qpidWeightTable.Set(from, weight, updateIteration)

	if n.qpidWeightTable.AnyNotMax() {
		parent, _ := n.qpidWeightTable.Smallest()
		n.qpidParent = &parent
	} else {
		parent := spanningtree.TowardsLowestID(n.spanningTree, n.ID)
		n.qpidParent = &parent
	}

	if *n.qpidParent != n.ID {
		n.send(*n.qpidParent, wire.Message{
			Kind:             wire.KindQPIDFindRoot,
			Weight:           n.qpidWeightTable.ComputeWeight(*n.qpidParent),
			LastEviction:     lastEviction,
			UpdatedIteration: n.getUpdateIteration(*n.qpidParent),
		})
		return nil
	}

	if !n.settings.EnableFindRootEviction {
		return nil
	}
	now := n.clock.Now()
	if now-lastEviction > n.settings.EvictionIntervalMS+qpidBufferTime && n.countRound == nil {
		n.startCountRound(now)
	}
	return nil
}

// heuristicSetQPIDParent tries to establish a QPID parent from whatever
// information this node currently has, either from real weight-table
// entries or, lacking those, by falling back to the static spanning-tree
// direction towards the lowest node id. It reports whether a parent was
// set.
func (n *Node) heuristicSetQPIDParent() bool {
	for _, neighbour := range n.spanningTree.Neighbours(n.ID) {
		if _, ok := n.qpidWeightTable.Weight(neighbour); !ok {
			return false
		}
	}
	if len(n.spanningTree.Neighbours(n.ID)) == 0 && len(n.networkMembers) > 1 {
		return false
	}

	var parent wire.NodeID
	if n.qpidWeightTable.AnyNotMax() {
		parent, _ = n.qpidWeightTable.Smallest()
	} else {
		parent = spanningtree.TowardsLowestID(n.spanningTree, n.ID)
	}
	n.qpidParent = &parent

	if n.shouldSendFindRoot {
		n.shouldSendFindRoot = false
		if parent == n.ID {
			return true
		}
		n.send(parent, wire.Message{
			Kind:             wire.KindQPIDFindRoot,
			Weight:           n.qpidWeightTable.ComputeWeight(parent),
			LastEviction:     n.lastEvictionTime,
			UpdatedIteration: n.getUpdateIteration(parent),
		})
	}
	return true
}
