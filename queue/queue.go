// Package queue is the local, per-node ordered set of waiting tickets.
// It is kept in a red-black tree (the same ordered-map style structure
// teranos' dependency graph already carries in from its transitive
// closure) keyed by join time so the smallest ticket is always a cheap
// lookup away, the way the original BTreeMap-backed queue worked.
package queue

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"

	"github.com/teranos/waitline/wire"
)

type key struct {
	joinTime int64
	id       uint64
}

func keyOf(t wire.Ticket) key {
	return key{joinTime: int64(t.JoinTime), id: uint64(t.ID)}
}

func compareKeys(a, b interface{}) int {
	ka, kb := a.(key), b.(key)
	if ka.joinTime != kb.joinTime {
		return utils.Int64Comparator(ka.joinTime, kb.joinTime)
	}
	return utils.UInt64Comparator(ka.id, kb.id)
}

// Queue is the ordered multiset of tickets waiting at a single node,
// sorted by join time and tie-broken by ticket id.
type Queue struct {
	tree *redblacktree.Tree
	byID map[wire.TicketID]wire.Ticket
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{
		tree: redblacktree.NewWith(compareKeys),
		byID: make(map[wire.TicketID]wire.Ticket),
	}
}

// Enqueue adds a ticket to the queue.
func (q *Queue) Enqueue(t wire.Ticket) {
	q.tree.Put(keyOf(t), t)
	q.byID[t.ID] = t
}

// Peek returns the smallest ticket without removing it.
func (q *Queue) Peek() (wire.Ticket, bool) {
	node := q.tree.Left()
	if node == nil {
		return wire.Ticket{}, false
	}
	return node.Value.(wire.Ticket), true
}

// Dequeue removes and returns the smallest ticket.
func (q *Queue) Dequeue() (wire.Ticket, bool) {
	node := q.tree.Left()
	if node == nil {
		return wire.Ticket{}, false
	}
	t := node.Value.(wire.Ticket)
	q.tree.Remove(node.Key)
	delete(q.byID, t.ID)
	return t, true
}

// Remove deletes a specific ticket by id, used when the node sweeps
// expired tickets out of the queue.
func (q *Queue) Remove(id wire.TicketID) (wire.Ticket, bool) {
	t, ok := q.byID[id]
	if !ok {
		return wire.Ticket{}, false
	}
	q.tree.Remove(keyOf(t))
	delete(q.byID, id)
	return t, true
}

// Get returns the ticket with the given id without removing it.
func (q *Queue) Get(id wire.TicketID) (wire.Ticket, bool) {
	t, ok := q.byID[id]
	return t, ok
}

// Update replaces an existing ticket (e.g. after a refresh extends its
// window), re-keying it if its join time changed.
func (q *Queue) Update(t wire.Ticket) {
	if old, ok := q.byID[t.ID]; ok {
		q.tree.Remove(keyOf(old))
	}
	q.Enqueue(t)
}

// Len returns the number of tickets currently queued.
func (q *Queue) Len() int {
	return q.tree.Size()
}

// Empty reports whether the queue has no tickets.
func (q *Queue) Empty() bool {
	return q.tree.Size() == 0
}

// PositionOf returns the zero-based rank of id within the queue (0 is
// next to be dequeued), or -1 if the ticket isn't queued. This is the
// "position estimate" handed back to clients on check-in; it is a linear
// scan in queue order, matching the reference implementation's own
// O(n) approach rather than maintaining a separate rank index.
func (q *Queue) PositionOf(id wire.TicketID) int {
	target, ok := q.byID[id]
	if !ok {
		return -1
	}
	position := 0
	it := q.tree.Iterator()
	for it.Next() {
		t := it.Value().(wire.Ticket)
		if t.ID == target.ID {
			return position
		}
		position++
	}
	return -1
}

// All returns every queued ticket in ascending order.
func (q *Queue) All() []wire.Ticket {
	out := make([]wire.Ticket, 0, q.tree.Size())
	it := q.tree.Iterator()
	for it.Next() {
		out = append(out, it.Value().(wire.Ticket))
	}
	return out
}
