// Package transport abstracts how a node exchanges wire.Message values
// with the rest of the room: a real websocket link between
// processes, or an in-memory hub for simulation and tests. Nodes never
// see which implementation they're talking to.
package transport

import "github.com/teranos/waitline/wire"

// Transport is a node's one-way-in, one-way-out mailbox onto the
// network. Receiving runs on whatever goroutines the implementation
// uses internally; a node drains its inbox from its own single-threaded
// event loop by calling Poll.
type Transport interface {
	// Send delivers msg to the node identified by to. Send does not block
	// on delivery or acknowledgement.
	Send(to wire.NodeID, msg wire.Message) error
	// Poll returns the next queued incoming message, if any, without
	// blocking.
	Poll() (from wire.NodeID, msg wire.Message, ok bool)
	// Close releases any resources the transport holds (connections,
	// registrations in a simulation hub).
	Close() error
}

// Conn is the minimal interface a live connection must satisfy, modelled
// directly on gorilla/websocket.Conn so real connections need no
// adapter.
type Conn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}
