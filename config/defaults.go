package config

import "github.com/spf13/viper"

// SetDefaults installs the default waiting room settings onto v. These
// mirror the reference values the waiting room was validated against:
// a narrow occupancy band, check-ins every 20s, and a generous pass
// lifetime once a user makes it on site.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("room.min_user_count", 20)
	v.SetDefault("room.max_user_count", 20)
	v.SetDefault("room.target_user_count", 20)

	v.SetDefault("room.ticket_refresh_time_ms", 20_000)
	v.SetDefault("room.ticket_expiry_time_ms", 45_000)
	v.SetDefault("room.pass_expiry_time_ms", 120_000)

	v.SetDefault("room.cleanup_interval_ms", 5_000)
	v.SetDefault("room.eviction_interval_ms", 2_000)
	v.SetDefault("room.sync_user_counts_interval_ms", 5_000)
	v.SetDefault("room.ensure_correct_user_count_interval_ms", 5_000)

	v.SetDefault("room.fault_detection_period_ms", 10_000)
	v.SetDefault("room.fault_detection_timeout_ms", 3_000)
	v.SetDefault("room.fault_detection_interval_ms", 1_000)

	v.SetDefault("room.count_timeout_ms", 5_000)
	v.SetDefault("room.max_failed_counts", 3)

	v.SetDefault("room.enable_find_root_eviction", false)

	v.SetDefault("node.node_id", 0)
	v.SetDefault("node.listen_addr", "127.0.0.1:9000")

	v.SetDefault("http.port", 8877)
	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("http.cookie_name", "waitline_ticket")

	v.SetDefault("log.json_output", false)
}
