// Package config provides the waitline node configuration, loaded from
// TOML files and environment variables via Viper, the same way teranos'
// other services are configured.
package config

import "github.com/teranos/waitline/clock"

// Config is the full runtime configuration for a waitline node process.
type Config struct {
	Room  RoomSettings `mapstructure:"room"`
	Node  NodeConfig   `mapstructure:"node"`
	HTTP  HTTPConfig   `mapstructure:"http"`
	Log   LogConfig    `mapstructure:"log"`
}

// RoomSettings are the admission-control tunables shared by every node in
// the room and by the single-node reference implementation. Field names
// and defaults mirror the thresholds the waiting room was designed around:
// a band of acceptable on-site occupancy, and the lifetimes of the tickets
// and passes issued to users moving through it.
type RoomSettings struct {
	MinUserCount  int `mapstructure:"min_user_count"`  // floor of the on-site occupancy band
	MaxUserCount  int `mapstructure:"max_user_count"`  // ceiling of the on-site occupancy band
	TargetUserCount int `mapstructure:"target_user_count"` // occupancy eviction/admission aims for

	TicketRefreshTimeMS clock.Time `mapstructure:"ticket_refresh_time_ms"` // how often a waiting client must check in
	TicketExpiryTimeMS  clock.Time `mapstructure:"ticket_expiry_time_ms"`  // grace period after a missed check-in
	PassExpiryTimeMS    clock.Time `mapstructure:"pass_expiry_time_ms"`    // how long an on-site pass stays valid

	CleanupIntervalMS                clock.Time `mapstructure:"cleanup_interval_ms"`
	EvictionIntervalMS               clock.Time `mapstructure:"eviction_interval_ms"`
	SyncUserCountsIntervalMS         clock.Time `mapstructure:"sync_user_counts_interval_ms"`
	EnsureCorrectUserCountIntervalMS clock.Time `mapstructure:"ensure_correct_user_count_interval_ms"`

	FaultDetectionPeriodMS   clock.Time `mapstructure:"fault_detection_period_ms"`   // time between probes of a random peer
	FaultDetectionTimeoutMS  clock.Time `mapstructure:"fault_detection_timeout_ms"`  // time to wait for a probe response
	FaultDetectionIntervalMS clock.Time `mapstructure:"fault_detection_interval_ms"` // timer tick granularity

	// CountTimeoutMS bounds how long a node waits for an occupancy count
	// round to complete before giving up on it. A count that never
	// terminates (a peer died mid-round, or the network dropped the
	// request or response) would otherwise wedge every later eviction
	// behind it forever, since a node won't start a fresh round while one
	// is already outstanding.
	CountTimeoutMS clock.Time `mapstructure:"count_timeout_ms"`
	// MaxFailedCounts is how many consecutive timed-out counts a node
	// tolerates before concluding the spanning tree itself is stale and
	// forcing a TreeRestructure.
	MaxFailedCounts int `mapstructure:"max_failed_counts"`

	// EnableFindRootEviction lets a freshly elected root fire an immediate
	// eviction when handle_find_root notices the previous root let a full
	// eviction interval lapse. Left off by default: a root election
	// already implies recent churn, and an eager eviction on top of that
	// is more likely to double up with the new root's own timer than to
	// recover a genuinely missed eviction.
	EnableFindRootEviction bool `mapstructure:"enable_find_root_eviction"`
}

// NodeConfig identifies this node within the spanning tree and tells it
// how to reach its fellow members.
type NodeConfig struct {
	NodeID     uint64   `mapstructure:"node_id"`
	ListenAddr string   `mapstructure:"listen_addr"`
	JoinAddr   string   `mapstructure:"join_addr"` // address of an existing member to join through; empty to bootstrap alone
	Peers      []string `mapstructure:"peers"`     // known peer addresses, address indexed by node id order
}

// HTTPConfig configures the public-facing admission HTTP front end.
type HTTPConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	CookieName     string   `mapstructure:"cookie_name"`
}

// LogConfig controls the process-wide logger.
type LogConfig struct {
	JSONOutput bool `mapstructure:"json_output"`
}
