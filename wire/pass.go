package wire

import "github.com/teranos/waitline/clock"

// Pass is issued to a client once their ticket is dequeued, proving they
// are allowed on site until it expires or is refreshed.
type Pass struct {
	TicketID         TicketID
	NodeID           NodeID     // node the pass was last refreshed on
	QueueJoinTime    clock.Time // join time of the originating ticket, carried through for fairness auditing
	EvictionTime     clock.Time // time the originating ticket was dequeued
	PassCreationTime clock.Time
	ExpiryTime       clock.Time
}

// NewPass issues a pass for a dequeued ticket, valid for expiryWindow
// milliseconds from now.
func NewPass(t Ticket, nodeID NodeID, now, expiryWindow clock.Time) Pass {
	return Pass{
		TicketID:         t.ID,
		NodeID:           nodeID,
		QueueJoinTime:    t.JoinTime,
		EvictionTime:     t.EvictionTime,
		PassCreationTime: now,
		ExpiryTime:       now + expiryWindow,
	}
}

// Refresh returns a copy of the pass extended from now, re-homed to
// nodeID (the node that served the refresh request).
func (p Pass) Refresh(nodeID NodeID, now, expiryWindow clock.Time) Pass {
	p.NodeID = nodeID
	p.ExpiryTime = now + expiryWindow
	return p
}

// Expired reports whether the pass's expiry time has passed now.
func (p Pass) Expired(now clock.Time) bool {
	return p.ExpiryTime < now
}
