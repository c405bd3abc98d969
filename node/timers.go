package node

import (
	"github.com/google/uuid"

	"github.com/teranos/waitline/clock"
	"github.com/teranos/waitline/wire"
)

// maybeCleanup expires tickets and passes whose windows have lapsed.
// This is the node's only source of ticket removal other than an
// explicit Leave, so a client that stops checking in is eventually
// forgotten without ever sending another message.
func (n *Node) maybeCleanup(now clock.Time) {
	if now-n.lastCleanupTime < n.settings.CleanupIntervalMS {
		return
	}
	n.lastCleanupTime = now

	for _, t := range n.localQueue.All() {
		if t.Expired(now) {
			n.localQueue.Remove(t.ID)
		}
	}

	remaining := n.leavingList[:0]
	for _, t := range n.leavingList {
		if t.Expired(now) {
			continue
		}
		remaining = append(remaining, t)
	}
	n.leavingList = remaining

	for id, p := range n.onSiteList {
		if p.Expired(now) {
			delete(n.onSiteList, id)
		}
	}
}

// maybeEvict is the QPID root's eviction timer: on every tick it starts a
// fresh occupancy count, whose completion (see reconcileOccupancy) is
// what actually lets tickets out of the queue. Non-root nodes no-op
// here; they only ever see a count because the root routed one to them.
func (n *Node) maybeEvict(now clock.Time) {
	if now-n.lastEvictionTickTime < n.settings.EvictionIntervalMS {
		return
	}
	n.lastEvictionTickTime = now

	if n.qpidParent == nil || *n.qpidParent != n.ID {
		return
	}
	if n.countRound == nil {
		n.startCountRound(now)
	}
}

// maybeSyncUserCounts is a second, independently-configurable trigger
// for the same tree-reduction occupancy count as maybeEvict: it exists
// so operators can tune how often the cluster re-syncs its view of
// occupancy (sync_user_counts_interval) separately from how often the
// root attempts to admit more users (eviction_interval), the two having
// been separate timer slots in the reference implementation. The guard
// on countRound keeps the two triggers from racing each other.
func (n *Node) maybeSyncUserCounts(now clock.Time) {
	if now-n.lastSyncTime < n.settings.SyncUserCountsIntervalMS {
		return
	}
	n.lastSyncTime = now

	if n.qpidParent != nil && *n.qpidParent == n.ID && n.countRound == nil {
		n.startCountRound(now)
	}
}

// maybeFaultDetect periodically probes the next peer off the
// fault-detection queue to make sure it is still alive.
func (n *Node) maybeFaultDetect(now clock.Time) {
	if now-n.lastFaultTickTime < n.settings.FaultDetectionIntervalMS {
		return
	}
	n.lastFaultTickTime = now

	if n.faultOutstandingProbe != nil {
		if now-n.faultOutstandingProbe.sentAt > n.settings.FaultDetectionTimeoutMS {
			n.handleFaultTimeout(n.faultOutstandingProbe.target)
			n.faultOutstandingProbe = nil
		}
		return
	}

	if now-n.faultLastProbeTime < n.settings.FaultDetectionPeriodMS {
		return
	}

	target, ok := n.nextProbeTarget()
	if !ok {
		return
	}
	checkID := uuid.New().String()
	n.faultLastProbeTime = now
	n.faultOutstandingProbe = &faultProbe{target: target, checkID: checkID, sentAt: now}
	n.send(target, wire.Message{Kind: wire.KindFaultDetectionRequest, CheckID: checkID})
}

// nextProbeTarget pops the next victim off the fault-detection queue,
// refilling it with a freshly shuffled member list (minus self) whenever
// it runs dry. This gives every peer a turn before any one of them is
// probed again, rather than plain random-with-replacement sampling,
// which can starve a peer indefinitely under bad luck.
func (n *Node) nextProbeTarget() (wire.NodeID, bool) {
	for {
		if len(n.faultQueue) == 0 {
			peers := otherMembers(n.networkMembers, n.ID)
			if len(peers) == 0 {
				return 0, false
			}
			n.rng.Shuffle(len(peers), func(i, j int) { peers[i], peers[j] = peers[j], peers[i] })
			n.faultQueue = peers
		}

		target := n.faultQueue[0]
		n.faultQueue = n.faultQueue[1:]
		if contains(n.networkMembers, target) && target != n.ID {
			return target, true
		}
		// target left the cluster since the queue was filled; try the next.
	}
}

func otherMembers(members []wire.NodeID, self wire.NodeID) []wire.NodeID {
	out := make([]wire.NodeID, 0, len(members))
	for _, m := range members {
		if m != self {
			out = append(out, m)
		}
	}
	return out
}
