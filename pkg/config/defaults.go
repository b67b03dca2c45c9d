package config

import "time"

// DefaultAppConfig returns the AppConfig a freshly started process uses when
// no config file overrides it.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stdout",
		},
		Heartbeat: HeartbeatConfig{
			Interval:        5 * time.Second,
			ConnectDeadline: 3 * time.Second,
			Timeout:         15 * time.Second,
		},
		Cache: CacheConfig{
			SweepInterval: 60 * time.Second,
		},
		Debug: DebugConfig{
			Enabled:    true,
			ListenAddr: "127.0.0.1:9100",
		},
		Resolver: ResolverConfig{
			Endpoints:   []string{"127.0.0.1:2379"},
			DialTimeout: 3 * time.Second,
			LeaseTTL:    10 * time.Second,
		},
	}
}
