// Package wire defines the data and message types that cross a process
// boundary in the waiting room: tickets and passes handed to clients, and
// the node-to-node protocol messages exchanged across the spanning tree.
package wire

import (
	"math"

	"github.com/teranos/waitline/clock"
)

// NoPositionEstimate is the sentinel previous-position-estimate a fresh
// ticket carries before its first check-in, chosen so the very first
// real estimate is never clamped against it.
const NoPositionEstimate = math.MaxInt

// NodeID identifies a member of the spanning tree.
type NodeID uint64

// TicketID identifies a single ticket, unique for as long as it is live.
type TicketID uint64

// Type distinguishes a client's regular place in line from the
// synthetic tickets the room uses to keep occupancy correct without a
// real visitor behind them.
type Type int

const (
	// Normal is an ordinary client-held ticket.
	Normal Type = iota
	// Drain is a dummy ticket queued to force a deleteMin without letting
	// anyone through, used to correct occupancy downward.
	Drain
	// Skip marks a ticket whose holder should be passed over: deleting it
	// immediately deletes the next ticket behind it too.
	Skip
)

// Ticket is a client's place in the queue.
type Ticket struct {
	Type                      Type
	ID                        TicketID
	JoinTime                  clock.Time
	NextRefreshTime           clock.Time
	ExpiryTime                clock.Time
	EvictionTime              clock.Time // set once the ticket is dequeued and handed a pass
	NodeID                    NodeID
	PreviousPositionEstimate  int // NoPositionEstimate if never estimated
}

// NewTicket creates a fresh normal ticket joining at nodeID, using id as
// its identifier and now as its join time.
func NewTicket(id TicketID, nodeID NodeID, now, refreshTime, expiryTime clock.Time) Ticket {
	return Ticket{
		Type:                     Normal,
		ID:                       id,
		JoinTime:                 now,
		NextRefreshTime:          now + refreshTime,
		ExpiryTime:               now + expiryTime,
		NodeID:                   nodeID,
		PreviousPositionEstimate: NoPositionEstimate,
	}
}

// NewDrainTicket creates a dummy ticket that sorts first in the queue
// (JoinTime at the minimum) and never expires, used to force an eviction
// that doesn't correspond to a real visitor.
func NewDrainTicket(id TicketID, nodeID NodeID) Ticket {
	return Ticket{
		Type:                     Drain,
		ID:                       id,
		JoinTime:                 minTime,
		NextRefreshTime:          minTime,
		ExpiryTime:               maxTime,
		NodeID:                   nodeID,
		PreviousPositionEstimate: NoPositionEstimate,
	}
}

const (
	minTime clock.Time = 0
	maxTime clock.Time = 1<<63 - 1
)

// WithSkip returns a copy of the ticket marked to skip the holder behind
// it when dequeued.
func (t Ticket) WithSkip() Ticket {
	t.Type = Skip
	return t
}

// Refresh returns a copy of the ticket with its refresh/expiry window
// pushed out from now, recording the caller's current queue position
// estimate.
func (t Ticket) Refresh(now, refreshTime, expiryTime clock.Time, positionEstimate int) Ticket {
	t.NextRefreshTime = now + refreshTime
	t.ExpiryTime = now + expiryTime
	t.PreviousPositionEstimate = positionEstimate
	return t
}

// Expired reports whether the ticket's expiry time has passed now.
func (t Ticket) Expired(now clock.Time) bool {
	return t.ExpiryTime < now
}

// Less orders tickets by join time, the total order the local queue and
// the QPID weight comparisons both rely on.
func (t Ticket) Less(other Ticket) bool {
	if t.JoinTime != other.JoinTime {
		return t.JoinTime < other.JoinTime
	}
	return t.ID < other.ID
}
