package node

import "github.com/teranos/waitline/errors"

// Sentinel errors a node's user-facing operations can return. These are
// the non-fatal error taxonomy: callers compare with errors.Is and every
// one of them leaves the node itself in a consistent state.
var (
	// ErrQPIDNotInitialized is returned by Join when this node has not yet
	// established a QPID parent, so there is nowhere to route an insert.
	ErrQPIDNotInitialized = errors.New("qpid not initialized")
	// ErrTicketExpired is returned by CheckIn or Leave when the presented
	// ticket's expiry time has passed; the caller should treat this as
	// having left the queue and re-Join.
	ErrTicketExpired = errors.New("ticket expired")
	// ErrTicketNotInQueue is returned by CheckIn when the presented ticket
	// is neither in the local queue nor the queue-leaving list and was not
	// eligible for migration: it has already been consumed into a pass, or
	// never existed.
	ErrTicketNotInQueue = errors.New("ticket not in queue")
	// ErrTicketAtWrongNode is returned by Leave when the presented ticket
	// names a different owning node than this one; the caller must check
	// in first so the ticket can migrate before it can leave here.
	ErrTicketAtWrongNode = errors.New("ticket belongs to a different node")
	// ErrTicketCannotLeaveYet is returned by Leave when the ticket is
	// still waiting in the local queue and has not yet been dequeued by
	// QPID onto the queue-leaving list.
	ErrTicketCannotLeaveYet = errors.New("ticket has not reached the front of the queue")
	// ErrPassExpired is returned when a pass refresh finds the pass past
	// its expiry time.
	ErrPassExpired = errors.New("pass expired")
	// ErrPassNotInList is returned by ValidateAndRefreshPass when a pass
	// claims this node but isn't present in the on-site list: it was
	// never issued here, or has already been evicted.
	ErrPassNotInList = errors.New("pass not in on-site list")
	// ErrFaultFalsePositive is returned when a node is told to remove
	// itself from the membership: the failure detector misfired.
	ErrFaultFalsePositive = errors.New("fault detector flagged this node itself")
	// ErrUnknownPeer names the condition of a message naming a node id
	// this node has no route to. No operation in this package returns it.
	ErrUnknownPeer = errors.New("unknown peer node")
)
