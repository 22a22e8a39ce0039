package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fentz26/recur/internal/tasks"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
	if cfg.Order != tasks.OrderRecurring {
		t.Errorf("Expected recurring order, got %q", cfg.Order)
	}
	if filepath.Base(cfg.DB) != "recur.db" {
		t.Errorf("Unexpected db path %q", cfg.DB)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != DefaultConfig().Listen {
		t.Errorf("Expected default listen address, got %q", cfg.Listen)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "order: simple\ntick_interval: 250ms\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Order != tasks.OrderSimple {
		t.Errorf("Expected simple order, got %q", cfg.Order)
	}
	if cfg.Scheduler.TickInterval != 250*time.Millisecond {
		t.Errorf("Expected 250ms tick, got %s", cfg.Scheduler.TickInterval)
	}
	if cfg.Scheduler.RefreshInterval != 30*time.Second {
		t.Errorf("Expected default refresh interval, got %s", cfg.Scheduler.RefreshInterval)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad yaml", "order: [", "parsing config file"},
		{"unknown order", "order: random\n", "unknown order"},
		{"zero tick", "tick_interval: 0s\n", "tick_interval"},
		{"empty listen", "listen: \"\"\n", "listen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:9999"
	cfg.DB = "/tmp/recur-test.db"
	cfg.Order = tasks.OrderSimple
	cfg.Scheduler.RefreshInterval = time.Minute

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestSave_Rejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(path, nil); err == nil {
		t.Error("Expected error for nil config")
	}

	cfg := DefaultConfig()
	cfg.Order = "random"
	if err := Save(path, cfg); err == nil {
		t.Error("Expected error for invalid config")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Invalid config should not be written")
	}
}
