package node

import "github.com/teranos/waitline/wire"

// nextTicketID allocates a ticket id unique to this node: the node's own
// id in the high bits and a local counter in the low bits, so ids never
// collide across nodes without needing a coordination round.
func (n *Node) nextTicketID() wire.TicketID {
	n.ticketCounter++
	return wire.TicketID(uint64(n.ID)<<48 | n.ticketCounter)
}
