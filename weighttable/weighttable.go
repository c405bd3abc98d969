// Package weighttable tracks the QPID weight each neighbour (and the
// node itself) currently offers, the data structure the QPID algorithms
// in package node read and update on every message.
package weighttable

import "github.com/teranos/waitline/wire"

type entry struct {
	updateIteration uint64
	weight          wire.Weight
}

// Table is one node's view of the weights offered by itself and its
// spanning tree neighbours. It is a flat list rather than a map because
// real tables have a handful of entries and iteration order for
// get_smallest needs to be stable for ties, matching the linear scan the
// protocol was designed against.
type Table struct {
	nodeID  wire.NodeID
	entries []tableEntry
}

type tableEntry struct {
	id   wire.NodeID
	data entry
}

// New returns an empty table for nodeID.
func New(nodeID wire.NodeID) *Table {
	return &Table{nodeID: nodeID}
}

func (t *Table) find(id wire.NodeID) int {
	for i, e := range t.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

// Weight returns the weight last recorded for id, if any.
func (t *Table) Weight(id wire.NodeID) (wire.Weight, bool) {
	if i := t.find(id); i >= 0 {
		return t.entries[i].data.weight, true
	}
	return wire.Weight{}, false
}

func (t *Table) lastUpdate(id wire.NodeID) (uint64, bool) {
	if i := t.find(id); i >= 0 {
		return t.entries[i].data.updateIteration, true
	}
	return 0, false
}

// Set records a weight for id at the given update iteration. Updates
// that arrive with an older iteration than what's already recorded are
// silently dropped: this is what makes the protocol tolerant of
// reordered or duplicate delivery.
func (t *Table) Set(id wire.NodeID, weight wire.Weight, updateIteration uint64) {
	if prev, ok := t.lastUpdate(id); ok && updateIteration < prev {
		return
	}
	if i := t.find(id); i >= 0 {
		t.entries[i].data = entry{updateIteration: updateIteration, weight: weight}
		return
	}
	t.entries = append(t.entries, tableEntry{id: id, data: entry{updateIteration: updateIteration, weight: weight}})
}

// Remove drops id's entry entirely, used when a neighbour relationship
// is torn down by a tree restructure.
func (t *Table) Remove(id wire.NodeID) {
	i := t.find(id)
	if i < 0 {
		return
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
}

// ComputeWeight computes the weight this node should advertise towards
// id: the minimum over every entry except id's own (id sees everyone
// else's contribution, including its own queue; everyone else excludes
// the asker so they don't get their own weight reflected back).
func (t *Table) ComputeWeight(id wire.NodeID) wire.Weight {
	best := wire.MaxWeight
	for _, e := range t.entries {
		if id != t.nodeID && e.id == id {
			continue
		}
		if e.data.weight.Less(best) {
			best = e.data.weight
		}
	}
	return best
}

// Smallest returns the neighbour (or self) currently offering the
// smallest weight, the node's QPID parent candidate.
func (t *Table) Smallest() (wire.NodeID, bool) {
	if len(t.entries) == 0 {
		return 0, false
	}
	best := t.entries[0]
	for _, e := range t.entries[1:] {
		if e.data.weight.Less(best.data.weight) {
			best = e
		}
	}
	return best.id, true
}

// AnyNotMax reports whether at least one entry holds a real (non-sentinel)
// weight, meaning the table has enough information to pick a parent.
func (t *Table) AnyNotMax() bool {
	for _, e := range t.entries {
		if e.data.weight != wire.MaxWeight {
			return true
		}
	}
	return false
}

// NeighbourCount returns the number of spanning tree neighbours tracked,
// excluding the node's own entry.
func (t *Table) NeighbourCount() int {
	n := len(t.entries)
	if t.find(t.nodeID) >= 0 {
		n--
	}
	return n
}

// AllNeighbours returns every node id with an entry in the table,
// including the node's own id.
func (t *Table) AllNeighbours() []wire.NodeID {
	out := make([]wire.NodeID, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.id
	}
	return out
}
