package transport

import (
	"sync"

	"github.com/teranos/waitline/clock"
	"github.com/teranos/waitline/rng"
	"github.com/teranos/waitline/wire"
)

// Latency models how long a simulated message takes to arrive.
type Latency interface {
	Sample(r rng.Source) clock.Time
}

// FixedLatency delivers every message after exactly Amount.
type FixedLatency struct{ Amount clock.Time }

// Sample returns the fixed latency.
func (f FixedLatency) Sample(rng.Source) clock.Time { return f.Amount }

// RandomLatency delivers messages after a uniformly random delay in
// [Min, Max).
type RandomLatency struct{ Min, Max clock.Time }

// Sample draws a latency uniformly from [Min, Max).
func (r RandomLatency) Sample(src rng.Source) clock.Time {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + clock.Time(src.Uint64N(uint64(r.Max-r.Min)))
}

type pendingMessage struct {
	arrival clock.Time
	from    wire.NodeID
	to      wire.NodeID
	msg     wire.Message
}

// Hub is the shared in-memory network every node in a simulation
// registers with. It models arbitrary latency and can drop or partition
// links, which is what makes it possible to deterministically exercise
// fault detection and tree restructuring without real sockets.
type Hub struct {
	mu       sync.Mutex
	clock    clock.Clock
	rng      rng.Source
	latency  Latency
	pending  []pendingMessage
	dropped  map[wire.NodeID]bool // partitioned-away nodes whose messages are dropped both ways
	inboxes  map[wire.NodeID]*[]pendingMessage
	dropRate float64 // independent per-message drop probability, in addition to Partition
}

// NewHub returns a Hub using clk for arrival-time bookkeeping, src for
// latency sampling, and latency as the delay model applied to every
// message.
func NewHub(clk clock.Clock, src rng.Source, latency Latency) *Hub {
	return &Hub{
		clock:   clk,
		rng:     src,
		latency: latency,
		dropped: make(map[wire.NodeID]bool),
		inboxes: make(map[wire.NodeID]*[]pendingMessage),
	}
}

// Register creates a Transport for nodeID backed by this hub.
func (h *Hub) Register(nodeID wire.NodeID) *SimTransport {
	h.mu.Lock()
	defer h.mu.Unlock()
	inbox := make([]pendingMessage, 0)
	h.inboxes[nodeID] = &inbox
	return &SimTransport{hub: h, node: nodeID}
}

// Partition marks nodeID as unreachable: messages to and from it are
// dropped until Heal is called. This is how the fault-detector test
// scenarios simulate a node going dark.
func (h *Hub) Partition(nodeID wire.NodeID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropped[nodeID] = true
}

// Heal reverses a prior Partition.
func (h *Hub) Heal(nodeID wire.NodeID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.dropped, nodeID)
}

// SetDropRate configures an independent, per-message drop probability in
// [0, 1] applied on top of any Partition: every message delivered via
// Tick is dropped with this probability, modelling lossy links rather
// than a hard partition. A rate of 0 (the default) disables it.
func (h *Hub) SetDropRate(rate float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropRate = rate
}

// Tick delivers every message whose arrival time has passed, according
// to the hub's clock. Call this after advancing a simulated clock.
func (h *Hub) Tick() {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.clock.Now()
	remaining := h.pending[:0]
	for _, m := range h.pending {
		if m.arrival > now {
			remaining = append(remaining, m)
			continue
		}
		if h.dropped[m.from] || h.dropped[m.to] {
			continue
		}
		if h.dropRate > 0 && h.rng.Uint64N(1_000_000) < uint64(h.dropRate*1_000_000) {
			continue
		}
		if inbox, ok := h.inboxes[m.to]; ok {
			*inbox = append(*inbox, m)
		}
	}
	h.pending = remaining
}

func (h *Hub) send(from, to wire.NodeID, msg wire.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	arrival := h.clock.Now() + h.latency.Sample(h.rng)
	h.pending = append(h.pending, pendingMessage{arrival: arrival, from: from, to: to, msg: msg})
}

func (h *Hub) poll(node wire.NodeID) (wire.NodeID, wire.Message, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	inbox, ok := h.inboxes[node]
	if !ok || len(*inbox) == 0 {
		return 0, wire.Message{}, false
	}
	m := (*inbox)[0]
	*inbox = (*inbox)[1:]
	return m.from, m.msg, true
}

// SimTransport is a Transport backed by a Hub, used by the simulation
// harness and by tests that need deterministic, controllable delivery.
type SimTransport struct {
	hub  *Hub
	node wire.NodeID
}

// Send queues msg for delivery to to after the hub's configured latency.
func (s *SimTransport) Send(to wire.NodeID, msg wire.Message) error {
	s.hub.send(s.node, to, msg)
	return nil
}

// Poll returns the next message that has arrived at this node, if any.
func (s *SimTransport) Poll() (wire.NodeID, wire.Message, bool) {
	return s.hub.poll(s.node)
}

// Close is a no-op for the simulated transport; the hub outlives any
// single node's registration.
func (s *SimTransport) Close() error { return nil }
