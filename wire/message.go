package wire

import "github.com/teranos/waitline/clock"

// Kind identifies which variant of Message a given envelope carries.
// Every node-to-node message in the room passes through this single sum
// type, dispatched exhaustively at the receiver.
type Kind string

const (
	KindQPIDUpdate            Kind = "qpid_update"
	KindQPIDDeleteMin         Kind = "qpid_delete_min"
	KindQPIDFindRoot          Kind = "qpid_find_root"
	KindCountRequest          Kind = "count_request"
	KindCountResponse         Kind = "count_response"
	KindFaultDetectionRequest Kind = "fault_detection_request"
	KindFaultDetectionResponse Kind = "fault_detection_response"
	KindNodeJoin              Kind = "node_join"
	KindNodeAdded             Kind = "node_added"
	KindNodeRemoved           Kind = "node_removed"
	KindTreeRestructure       Kind = "tree_restructure"
)

// Message is the envelope exchanged between nodes. Only the fields
// relevant to Kind are populated; this mirrors a Rust enum's per-variant
// payload without needing a type switch over concrete structs for
// marshalling.
type Message struct {
	Kind Kind `json:"kind"`

	// QPIDUpdate, QPIDFindRoot
	Weight            Weight     `json:"weight,omitempty"`
	UpdatedIteration  uint64     `json:"updated_iteration,omitempty"`
	LastEviction      clock.Time `json:"last_eviction,omitempty"` // QPIDFindRoot only

	// CountRequest, CountResponse
	Iteration    clock.Time `json:"iteration,omitempty"`
	QueueCount   int        `json:"queue_count,omitempty"`
	OnSiteCount  int        `json:"on_site_count,omitempty"`

	// FaultDetectionRequest, FaultDetectionResponse. CheckID correlates a
	// response to the probe that provoked it, independent of either
	// node's clock, so a response arriving after its sender has already
	// timed out and moved on to probing someone else is recognisably stale.
	CheckID string `json:"check_id,omitempty"`

	// NodeJoin
	JoiningNode NodeID `json:"joining_node,omitempty"`

	// NodeAdded, NodeRemoved, TreeRestructure
	AffectedNode   NodeID `json:"affected_node,omitempty"` // empty for TreeRestructure
	Tree           Tree   `json:"tree,omitempty"`
	TreeIteration  uint64 `json:"tree_iteration,omitempty"`
}

// Addressed pairs a Message with the sender/receiver node ids and this
// link's sequence number. The transports in package transport do not use
// it: they send and poll plain Message values.
type Addressed struct {
	From Seq
	To   NodeID
	Msg  Message
}

// Seq identifies the sender of a message together with a monotonically
// increasing counter, letting the receiver reject a stale redelivery or
// reordered message on a per-sender basis.
type Seq struct {
	Node  NodeID
	Count uint64
}
