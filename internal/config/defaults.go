package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Sampling: SamplingConfig{
			IntervalMs:      1000,
			DebounceSamples: 2,
			MinSessionMs:    500,
			FlushTimeoutMs:  5000,
			FlushRetries:    4,
		},
		Storage: StorageConfig{
			Path:        "~/.config/glimpse",
			SQLiteFile:  "glimpse.db",
			JournalMode: "wal",
		},
		Daemon: DaemonConfig{
			Host: "127.0.0.1",
			Port: 7774,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "glimpse.log",
		},
	}
}
