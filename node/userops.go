package node

import "github.com/teranos/waitline/wire"

// Join enqueues a new ticket for this node and returns it to the caller,
// who is responsible for presenting it on every future CheckIn.
func (n *Node) Join() (wire.Ticket, error) {
	if n.qpidParent == nil {
		return wire.Ticket{}, ErrQPIDNotInitialized
	}
	now := n.clock.Now()
	ticket := wire.NewTicket(n.nextTicketID(), n.ID, now, n.settings.TicketRefreshTimeMS, n.settings.TicketExpiryTimeMS)
	n.localQueue.Enqueue(ticket)
	if err := n.qpidInsert(wire.WeightOf(ticket)); err != nil {
		return wire.Ticket{}, err
	}
	return ticket, nil
}

// CheckIn refreshes a presented ticket's lifetime and reports how far
// back in the queue it is, or that it has reached the front and is
// waiting in the queue-leaving list (position 0). ticket is the value
// the client last received, not just an id, because a client whose
// original node died must be able to present the ticket they were
// issued so this node can adopt it into its own local queue.
func (n *Node) CheckIn(ticket wire.Ticket) (wire.Ticket, int, error) {
	now := n.clock.Now()
	if ticket.Expired(now) {
		return wire.Ticket{}, 0, ErrTicketExpired
	}

	for _, t := range n.leavingList {
		if t.ID == ticket.ID {
			return t, 0, nil
		}
	}

	local, ok := n.localQueue.Get(ticket.ID)
	if !ok {
		if ticket.NodeID == n.ID {
			// We issued this ticket and it's gone from both lists: it was
			// already converted to a pass, or expired and was swept.
			return wire.Ticket{}, 0, ErrTicketNotInQueue
		}
		// The node that issued this ticket is presumed gone; the client's
		// copy is the only remaining record of it, so adopt it here and
		// let it re-enter QPID as if freshly inserted.
		migrated := ticket
		migrated.NodeID = n.ID
		n.localQueue.Enqueue(migrated)
		if err := n.qpidInsert(wire.WeightOf(migrated)); err != nil {
			return wire.Ticket{}, 0, err
		}
		local = migrated
	}

	estimate := n.localQueue.PositionOf(local.ID) + 1
	if local.PreviousPositionEstimate != wire.NoPositionEstimate && estimate > local.PreviousPositionEstimate {
		// The estimate moved backwards (possible with multiple nodes and
		// imprecise positional bookkeeping); report the old value instead
		// of confusing the client with apparent regress.
		estimate = local.PreviousPositionEstimate
	}

	refreshed := local.Refresh(now, n.settings.TicketRefreshTimeMS, n.settings.TicketExpiryTimeMS, estimate)
	n.localQueue.Update(refreshed)

	return refreshed, estimate, nil
}

// Leave converts a ticket that has reached the front of the queue into a
// Pass. The ticket must be owned by this node and already sitting in the
// queue-leaving list; a client whose ticket is still queued, or who
// presents a ticket issued elsewhere, must check in again first.
func (n *Node) Leave(ticket wire.Ticket) (wire.Pass, error) {
	now := n.clock.Now()
	if ticket.Expired(now) {
		return wire.Pass{}, ErrTicketExpired
	}
	if ticket.NodeID != n.ID {
		return wire.Pass{}, ErrTicketAtWrongNode
	}

	for i, t := range n.leavingList {
		if t.ID == ticket.ID {
			// Use the stored copy, not the one presented: it carries the
			// authoritative EvictionTime stamped when QPID dequeued it.
			n.leavingList = append(n.leavingList[:i], n.leavingList[i+1:]...)
			pass := wire.NewPass(t, n.ID, now, n.settings.PassExpiryTimeMS)
			n.onSiteList[pass.TicketID] = pass
			return pass, nil
		}
	}

	if _, stillQueued := n.localQueue.Get(ticket.ID); stillQueued {
		return wire.Pass{}, ErrTicketCannotLeaveYet
	}
	return wire.Pass{}, ErrTicketNotInQueue
}

// ValidateAndRefreshPass confirms a presented pass is still valid and
// extends its lifetime. A pass presented at a node other than the one
// that last refreshed it is adopted here, the same recovery the
// distributed on-site count relies on after a node failure.
func (n *Node) ValidateAndRefreshPass(pass wire.Pass) (wire.Pass, error) {
	now := n.clock.Now()
	if pass.Expired(now) {
		delete(n.onSiteList, pass.TicketID)
		return wire.Pass{}, ErrPassExpired
	}

	if pass.NodeID != n.ID {
		n.onSiteList[pass.TicketID] = pass
	}

	stored, ok := n.onSiteList[pass.TicketID]
	if !ok {
		return wire.Pass{}, ErrPassNotInList
	}

	refreshed := stored.Refresh(n.ID, now, n.settings.PassExpiryTimeMS)
	n.onSiteList[pass.TicketID] = refreshed
	return refreshed, nil
}
