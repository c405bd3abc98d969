package node

import (
	"github.com/teranos/waitline/clock"
	"github.com/teranos/waitline/logger"
	"github.com/teranos/waitline/wire"
)

// handleFaultDetectionRequest answers a peer's liveness probe immediately.
func (n *Node) handleFaultDetectionRequest(from wire.NodeID, checkID string) {
	n.send(from, wire.Message{Kind: wire.KindFaultDetectionResponse, CheckID: checkID})
}

// handleFaultDetectionResponse clears the outstanding probe if this
// response matches it by check id; a response to a probe we've already
// timed out and moved past, or a stray reply naming some other check,
// is ignored rather than clearing the wrong probe.
func (n *Node) handleFaultDetectionResponse(from wire.NodeID, checkID string, now clock.Time) {
	if n.faultOutstandingProbe == nil || n.faultOutstandingProbe.target != from || n.faultOutstandingProbe.checkID != checkID {
		return
	}
	n.faultLastResponseSeen = now
	n.faultOutstandingProbe = nil
}

// handleFaultTimeout is called when a probe goes unanswered past the
// configured timeout: the target is presumed dead and removed from the
// membership.
func (n *Node) handleFaultTimeout(target wire.NodeID) {
	logger.Warnw("fault detection timeout, removing node", "node", n.ID, "target", target)
	if err := n.removeNode(target); err != nil {
		logger.Errorw("failed to remove faulted node", "target", target, "error", err)
	}
}
