package node_test

import (
	"github.com/teranos/waitline/clock"
	"github.com/teranos/waitline/config"
)

// testSettings returns room settings tuned for fast, deterministic tests:
// short intervals so a handful of Tick calls exercise every timer, and a
// narrow occupancy band so admission-control scenarios are easy to reason
// about precisely.
func testSettings() config.RoomSettings {
	return testSettingsWithCapacity(1)
}

// testSettingsWithCapacity is testSettings with the occupancy band
// widened to capacity, for scenarios that need more than one ticket
// admitted before the room reports itself full.
func testSettingsWithCapacity(capacity int) config.RoomSettings {
	return config.RoomSettings{
		MinUserCount:                     1,
		MaxUserCount:                     capacity,
		TargetUserCount:                  capacity,
		TicketRefreshTimeMS:              20_000,
		TicketExpiryTimeMS:               45_000,
		PassExpiryTimeMS:                 120_000,
		CleanupIntervalMS:                5_000,
		EvictionIntervalMS:               100,
		SyncUserCountsIntervalMS:         100_000,
		EnsureCorrectUserCountIntervalMS: 100_000,
		FaultDetectionPeriodMS:           100_000,
		FaultDetectionTimeoutMS:          100_000,
		FaultDetectionIntervalMS:         100_000,
		CountTimeoutMS:                   100_000,
		MaxFailedCounts:                  3,
	}
}

// testSettingsWithFaultDetection is testSettingsWithCapacity with the
// failure detector turned on at short, test-scale intervals, for
// scenarios that need a probe to actually fire and time out within a
// simulated run.
func testSettingsWithFaultDetection(capacity int, period, timeout, interval clock.Time) config.RoomSettings {
	s := testSettingsWithCapacity(capacity)
	s.FaultDetectionPeriodMS = period
	s.FaultDetectionTimeoutMS = timeout
	s.FaultDetectionIntervalMS = interval
	return s
}

// testSettingsWithCountRetry is testSettingsWithCapacity with the count
// round timeout turned on at short, test-scale intervals, for scenarios
// that need a wedged count round to actually time out and retry within a
// simulated run.
func testSettingsWithCountRetry(capacity int, tickInterval, countTimeout clock.Time, maxFailedCounts int) config.RoomSettings {
	s := testSettingsWithCapacity(capacity)
	s.FaultDetectionIntervalMS = tickInterval // reused as the generic tick-check granularity
	s.CountTimeoutMS = countTimeout
	s.MaxFailedCounts = maxFailedCounts
	return s
}
