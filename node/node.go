// Package node implements a single member of the distributed waiting
// room: the QPID priority queue run over a spanning tree, the
// tree-reduction occupancy count, membership changes, and fault
// detection. A Node owns no goroutines of its own beyond what its
// Transport requires; callers drive it by calling Tick and ReceiveAll from
// a single event loop, the way the reference implementation is driven by
// a caller-owned timer loop rather than hidden threads.
package node

import (
	"github.com/teranos/waitline/clock"
	"github.com/teranos/waitline/config"
	"github.com/teranos/waitline/logger"
	"github.com/teranos/waitline/queue"
	"github.com/teranos/waitline/rng"
	"github.com/teranos/waitline/transport"
	"github.com/teranos/waitline/weighttable"
	"github.com/teranos/waitline/wire"
)

// Node is one member of the distributed waiting room.
type Node struct {
	ID       wire.NodeID
	settings config.RoomSettings

	clock     clock.Clock
	rng       rng.Source
	transport transport.Transport

	localQueue  *queue.Queue
	leavingList []wire.Ticket                // dequeued tickets awaiting a client's Leave call to collect their pass
	onSiteList  map[wire.TicketID]wire.Pass // passes currently valid on site at this node

	qpidParent          *wire.NodeID
	qpidWeightTable     *weighttable.Table
	qpidLastSent        map[wire.NodeID]wire.Weight // last weight actually sent to each neighbour, to suppress redundant updates
	qpidUpdateIteration map[wire.NodeID]uint64       // outgoing per-neighbour sequence counter
	shouldSendFindRoot  bool

	spanningTree    wire.Tree
	networkMembers  []wire.NodeID
	treeIteration   uint64

	queueCountCache  int
	lastEvictionTime clock.Time

	countRound   *countState
	failedCounts int

	faultLastProbeTime   clock.Time // when this node last sent a probe
	faultLastResponseSeen clock.Time // when this node last heard back from the node it's probing
	faultOutstandingProbe *faultProbe
	faultQueue            []wire.NodeID // shuffled victims awaiting a probe, refilled when drained

	lastCleanupTime      clock.Time
	lastEvictionTickTime clock.Time
	lastSyncTime         clock.Time
	lastFaultTickTime    clock.Time
	lastCountCheckTime   clock.Time

	ticketCounter uint64
}

// faultProbe tracks a single in-flight FaultDetectionRequest. checkID is
// an opaque correlation token independent of sentAt: the two are kept
// distinct so a probe's identity survives even if its timing bookkeeping
// is later reused for another purpose.
type faultProbe struct {
	target  wire.NodeID
	checkID string
	sentAt  clock.Time
}

// countState tracks one in-progress tree-reduction aggregation round,
// whether this node is the root that initiated it or an interior node
// relaying it towards its children.
type countState struct {
	iteration    clock.Time
	waitingOn    map[wire.NodeID]bool
	queueSum     int
	onSiteSum    int
	replyTo      *wire.NodeID // nil if this node is the initiator
}

// New constructs a lone node with the given id and settings. The node
// starts as its own spanning tree root; JoinAt or a NodeJoin message
// grows the tree.
func New(id wire.NodeID, settings config.RoomSettings, clk clock.Clock, src rng.Source, tr transport.Transport) *Node {
	n := &Node{
		ID:                  id,
		settings:            settings,
		clock:               clk,
		rng:                 src,
		transport:           tr,
		localQueue:          queue.New(),
		onSiteList:          make(map[wire.TicketID]wire.Pass),
		qpidWeightTable:     weighttable.New(id),
		qpidLastSent:        make(map[wire.NodeID]wire.Weight),
		qpidUpdateIteration: make(map[wire.NodeID]uint64),
		spanningTree:        wire.Tree{Adjacency: map[wire.NodeID][]wire.NodeID{id: nil}},
		networkMembers:      []wire.NodeID{id},
	}
	n.initialiseAlone()
	return n
}

func (n *Node) initialiseAlone() {
	n.treeIteration++
	self := n.ID
	n.qpidParent = &self
	n.qpidWeightTable.Set(n.ID, wire.MaxWeight, 0)
}

// OnSiteCount returns the number of passes this node currently considers
// on site, the local contribution to the cluster-wide count protocol.
func (n *Node) OnSiteCount() int {
	return len(n.onSiteList)
}

// IsRoot reports whether this node currently believes itself to be the
// QPID root, i.e. the holder of the cluster-wide minimum ticket. Rootship
// migrates as tickets are inserted and dequeued, so this is only a
// snapshot; callers that need to observe a handover should poll it.
func (n *Node) IsRoot() bool {
	return n.qpidParent != nil && *n.qpidParent == n.ID
}

func (n *Node) getUpdateIteration(peer wire.NodeID) uint64 {
	n.qpidUpdateIteration[peer]++
	return n.qpidUpdateIteration[peer]
}

func (n *Node) send(to wire.NodeID, msg wire.Message) {
	if err := n.transport.Send(to, msg); err != nil {
		logger.Warnw("failed to send message", "to", to, "kind", msg.Kind, "error", err)
	}
}

// Tick drains any timers that have come due and should be called
// frequently (on the order of config.RoomSettings' *_interval_ms
// fields) from the owning event loop.
func (n *Node) Tick(now clock.Time) {
	n.maybeCleanup(now)
	n.maybeEvict(now)
	n.maybeSyncUserCounts(now)
	n.maybeFaultDetect(now)
	n.maybeCheckCountTimeout(now)
}

// ReceiveAll drains every message currently queued on the transport.
func (n *Node) ReceiveAll() {
	for {
		from, msg, ok := n.transport.Poll()
		if !ok {
			return
		}
		n.dispatch(from, msg)
	}
}
