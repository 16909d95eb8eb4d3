package config

import (
	"os"
	"strconv"
)

// FromEnv overlays RELAY_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("RELAY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("RELAY_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("RELAY_SCHEDULER"); v != "" {
		cfg.Scheduler = v
	}
	if v := os.Getenv("RELAY_FILTERS_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Filters.CacheSize = n
		}
	}
	if v := os.Getenv("RELAY_FILTERS_CACHE_TTL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Filters.CacheTTLMs = n
		}
	}
	if v := os.Getenv("RELAY_JOURNAL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Journal.Enabled = b
		}
	}
	if v := os.Getenv("RELAY_JOURNAL_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Journal.Limit = n
		}
	}
}
