package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendJSON {
		t.Errorf("Backend = %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != "tasks.json" {
		t.Errorf("Path = %q", cfg.Storage.Path)
	}
	if cfg.Address() != "127.0.0.1:8080" {
		t.Errorf("Address = %q", cfg.Address())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TASKLITE_BACKEND", BackendBolt)
	t.Setenv("TASKLITE_BOLT_PATH", "/tmp/alt.db")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendBolt || cfg.Storage.BoltPath != "/tmp/alt.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.HTTP.Port != "9090" {
		t.Errorf("Port = %q", cfg.HTTP.Port)
	}
	if cfg.Context.RequestTimeout != 2*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.Context.RequestTimeout)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("TASKLITE_BACKEND", "postgres")
	if _, err := Load(); err == nil {
		t.Error("unknown backend accepted")
	}
}
