package wire

import "github.com/teranos/waitline/clock"

// Weight is the QPID ordering key propagated through the spanning tree:
// the join time of the smallest ticket a node (or its subtree) can offer,
// with Tiebreak breaking ties between simultaneous joins deterministically.
// Owner is metadata only, carried for debugging which node originated a
// given minimum; it never participates in comparison.
type Weight struct {
	Time     clock.Time
	Tiebreak uint64
	Owner    NodeID
}

// MaxWeight is the sentinel weight meaning "nothing to offer", sorting
// after every real ticket weight.
var MaxWeight = Weight{Time: 1<<63 - 1, Tiebreak: 0}

// Less reports whether w sorts before other.
func (w Weight) Less(other Weight) bool {
	if w.Time != other.Time {
		return w.Time < other.Time
	}
	return w.Tiebreak < other.Tiebreak
}

// Equal reports whether w and other carry the same ordering key. Owner
// is excluded: two nodes independently reporting the same ticket's
// weight must compare equal regardless of who last relayed it.
func (w Weight) Equal(other Weight) bool {
	return w.Time == other.Time && w.Tiebreak == other.Tiebreak
}

// WeightOf derives the QPID weight a node offers for a given ticket:
// the ticket's join time, tie-broken by its identifier, tagged with the
// ticket's owning node for debugging.
func WeightOf(t Ticket) Weight {
	return Weight{Time: t.JoinTime, Tiebreak: uint64(t.ID), Owner: t.NodeID}
}
