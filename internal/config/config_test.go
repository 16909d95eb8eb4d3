package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Scheduler != SchedulerLoop {
		t.Fatalf("default scheduler: %s", cfg.Scheduler)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Limit != 1024 {
		t.Fatalf("journal defaults: %+v", cfg.Journal)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "relay.json")
	data := []byte(`{"logLevel":"debug","scheduler":"goroutine","journal":{"enabled":false,"limit":10}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Scheduler != SchedulerGoroutine {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Journal.Enabled || cfg.Journal.Limit != 10 {
		t.Fatalf("journal: %+v", cfg.Journal)
	}
	if cfg.Filters.CacheSize != 128 {
		t.Fatalf("unset fields should keep defaults")
	}
}

func TestLoadRejectsYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "relay.yaml")
	if err := os.WriteFile(file, []byte("logLevel: debug"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatalf("expected yaml to be rejected")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("RELAY_LOG_FORMAT", "json")
	t.Setenv("RELAY_FILTERS_CACHE_SIZE", "16")
	t.Setenv("RELAY_JOURNAL_ENABLED", "false")
	t.Setenv("RELAY_JOURNAL_LIMIT", "not-a-number")
	FromEnv(&cfg)
	if cfg.LogFormat != "json" {
		t.Fatalf("env override format")
	}
	if cfg.Filters.CacheSize != 16 {
		t.Fatalf("env override cache size")
	}
	if cfg.Journal.Enabled {
		t.Fatalf("env override bool")
	}
	if cfg.Journal.Limit != 1024 {
		t.Fatalf("bad int should be ignored")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
		{"bad scheduler", func(c *Config) { c.Scheduler = "threads" }},
		{"zero cache", func(c *Config) { c.Filters.CacheSize = 0 }},
		{"negative limit", func(c *Config) { c.Journal.Limit = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
