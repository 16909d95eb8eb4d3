package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Scheduler names.
const (
	SchedulerLoop      = "loop"
	SchedulerGoroutine = "goroutine"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	LogLevel  string        `json:"logLevel" validate:"oneof=debug info warn error"`
	LogFormat string        `json:"logFormat" validate:"oneof=text json"`
	Scheduler string        `json:"scheduler" validate:"oneof=loop goroutine"`
	Filters   FilterConfig  `json:"filters"`
	Journal   JournalConfig `json:"journal"`
}

// FilterConfig tunes the compiled listener filter cache.
type FilterConfig struct {
	CacheSize  int `json:"cacheSize" validate:"gte=1"`
	CacheTTLMs int `json:"cacheTTLMs" validate:"gte=0"`
}

// CacheTTL returns CacheTTLMs as a duration.
func (f FilterConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLMs) * time.Millisecond
}

// JournalConfig controls the in-memory action journal.
type JournalConfig struct {
	Enabled bool `json:"enabled"`
	Limit   int  `json:"limit" validate:"gte=0"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Scheduler: SchedulerLoop,
		Filters: FilterConfig{
			CacheSize:  128,
			CacheTTLMs: int((10 * time.Minute).Milliseconds()),
		},
		Journal: JournalConfig{
			Enabled: true,
			Limit:   1024,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "config: invalid")
	}
	return nil
}

// Load reads a JSON configuration file over the defaults. If path is empty,
// returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, errors.New("yaml config not supported; use JSON")
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}
