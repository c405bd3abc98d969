package node

import (
	"github.com/teranos/waitline/clock"
	"github.com/teranos/waitline/logger"
	"github.com/teranos/waitline/wire"
)

// startCountRound is called by the QPID root to kick off a fresh
// occupancy count, walking the spanning tree outward and summing
// replies back towards the root. The iteration id is the root's wall
// clock time at issuance, which is both a convenient unique id and lets
// every node recognise a stale, superseded round.
func (n *Node) startCountRound(now clock.Time) {
	n.lastEvictionTime = now
	n.countRound = n.newCountState(now, nil)
	n.fanOutCountRequest(now, 0)
}

func (n *Node) newCountState(iteration clock.Time, replyTo *wire.NodeID) *countState {
	return &countState{
		iteration: iteration,
		waitingOn: make(map[wire.NodeID]bool),
		// queueSum counts the queue-leaving list, not the local queue
		// itself: a ticket still waiting its turn hasn't been admitted and
		// doesn't count towards occupancy until QPID dequeues it.
		queueSum:  len(n.leavingList),
		onSiteSum: n.OnSiteCount(),
		replyTo:   replyTo,
	}
}

// fanOutCountRequest forwards a count request to every tree neighbour
// except the one it arrived from (cameFrom is ignored for the initiating
// root, which has no incoming neighbour to exclude).
func (n *Node) fanOutCountRequest(iteration clock.Time, cameFrom wire.NodeID) {
	neighbours := n.spanningTree.Neighbours(n.ID)
	for _, peer := range neighbours {
		if n.countRound.replyTo != nil && peer == cameFrom {
			continue
		}
		n.countRound.waitingOn[peer] = true
		n.send(peer, wire.Message{Kind: wire.KindCountRequest, Iteration: iteration})
	}
	if len(n.countRound.waitingOn) == 0 {
		n.finishCountRound()
	}
}

func (n *Node) handleCountRequest(from wire.NodeID, iteration clock.Time) {
	if n.countRound != nil && n.countRound.iteration >= iteration {
		logger.Debugw("ignoring stale or duplicate count request", "node", n.ID, "iteration", iteration)
		return
	}
	n.countRound = n.newCountState(iteration, &from)
	n.fanOutCountRequest(iteration, from)
}

func (n *Node) handleCountResponse(from wire.NodeID, iteration clock.Time, queueCount, onSiteCount int) {
	if n.countRound == nil || n.countRound.iteration != iteration {
		logger.Debugw("ignoring count response for unknown round", "node", n.ID, "iteration", iteration)
		return
	}
	if !n.countRound.waitingOn[from] {
		return
	}
	delete(n.countRound.waitingOn, from)
	n.countRound.queueSum += queueCount
	n.countRound.onSiteSum += onSiteCount

	if len(n.countRound.waitingOn) == 0 {
		n.finishCountRound()
	}
}

func (n *Node) finishCountRound() {
	round := n.countRound
	n.failedCounts = 0
	if round.replyTo == nil {
		// We're the root: the count is complete and authoritative.
		n.queueCountCache = round.queueSum
		n.reconcileOccupancy(round.onSiteSum + round.queueSum)
		n.countRound = nil
		return
	}
	n.send(*round.replyTo, wire.Message{
		Kind:        wire.KindCountResponse,
		Iteration:   round.iteration,
		QueueCount:  round.queueSum,
		OnSiteCount: round.onSiteSum,
	})
	n.countRound = nil
}

// reconcileOccupancy is called by the root once a full count completes:
// if the room is under its target occupancy and the queue is non-empty,
// admit more users; if it's over the max, queue drain tickets to correct
// it back down.
func (n *Node) reconcileOccupancy(globalOnSite int) {
	if globalOnSite < n.settings.TargetUserCount {
		deficit := n.settings.TargetUserCount - globalOnSite
		for i := 0; i < deficit; i++ {
			if err := n.qpidDeleteMin(); err != nil {
				logger.Warnw("deleteMin failed during occupancy reconciliation", "error", err)
				break
			}
		}
	} else if globalOnSite > n.settings.MaxUserCount {
		excess := globalOnSite - n.settings.MaxUserCount
		for i := 0; i < excess; i++ {
			n.enqueueDrain()
		}
	}
}

// maybeCheckCountTimeout abandons a count round that's been outstanding
// longer than CountTimeoutMS: the request or one of the responses that
// would complete it was dropped or lost to a dead peer, and without this
// a node would never start another round while the stale one sits open.
// Repeated timeouts past MaxFailedCounts are treated as a sign the
// spanning tree itself no longer reflects reality, and force a
// restructure rather than retrying the same shape indefinitely.
func (n *Node) maybeCheckCountTimeout(now clock.Time) {
	if now-n.lastCountCheckTime < n.settings.FaultDetectionIntervalMS {
		return
	}
	n.lastCountCheckTime = now

	if n.countRound == nil || now-n.countRound.iteration < n.settings.CountTimeoutMS {
		return
	}

	logger.Warnw("occupancy count round timed out", "node", n.ID, "iteration", n.countRound.iteration)
	n.countRound = nil
	n.failedCounts++

	if n.failedCounts >= n.settings.MaxFailedCounts {
		n.failedCounts = 0
		if err := n.restructureTree(); err != nil {
			logger.Errorw("failed to restructure tree after repeated count timeouts", "node", n.ID, "error", err)
		}
	}
}

func (n *Node) enqueueDrain() {
	id := n.nextTicketID()
	drain := wire.NewDrainTicket(id, n.ID)
	n.localQueue.Enqueue(drain)
	_ = n.qpidInsert(wire.WeightOf(drain))
}
