package node

import (
	"github.com/teranos/waitline/logger"
	"github.com/teranos/waitline/wire"
)

// dispatch is the single entry point for every message received from
// another node, exhaustively switching on wire.Kind so adding a new
// message kind without handling it here is a compile-time reminder
// rather than a silent drop.
func (n *Node) dispatch(from wire.NodeID, msg wire.Message) {
	var err error
	switch msg.Kind {
	case wire.KindQPIDUpdate:
		err = n.qpidHandleUpdate(from, msg.Weight, msg.UpdatedIteration)
	case wire.KindQPIDDeleteMin:
		err = n.qpidDeleteMin()
	case wire.KindQPIDFindRoot:
		err = n.qpidHandleFindRoot(from, msg.Weight, msg.LastEviction, msg.UpdatedIteration)
	case wire.KindCountRequest:
		n.handleCountRequest(from, msg.Iteration)
	case wire.KindCountResponse:
		n.handleCountResponse(from, msg.Iteration, msg.QueueCount, msg.OnSiteCount)
	case wire.KindFaultDetectionRequest:
		n.handleFaultDetectionRequest(from, msg.CheckID)
	case wire.KindFaultDetectionResponse:
		n.handleFaultDetectionResponse(from, msg.CheckID, n.clock.Now())
	case wire.KindNodeJoin:
		err = n.handleNodeJoin(msg.JoiningNode)
	case wire.KindNodeAdded:
		err = n.handleNodeAdded(msg.AffectedNode, msg.Tree, msg.TreeIteration)
	case wire.KindNodeRemoved:
		err = n.handleNodeRemoved(msg.AffectedNode, msg.Tree, msg.TreeIteration)
	case wire.KindTreeRestructure:
		err = n.handleTreeRestructure(msg.Tree, msg.TreeIteration)
	default:
		logger.Warnw("received message of unknown kind", "node", n.ID, "from", from, "kind", msg.Kind)
	}
	if err != nil {
		logger.Warnw("error handling message", "node", n.ID, "from", from, "kind", msg.Kind, "error", err)
	}
}
