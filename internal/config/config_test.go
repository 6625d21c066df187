package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.Key != "formcraft-state-v1" {
		t.Fatalf("unexpected storage defaults %+v", cfg.Storage)
	}
	if cfg.Storage.WatchInterval != 2*time.Second {
		t.Fatalf("unexpected watch interval %v", cfg.Storage.WatchInterval)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("server:\n  addr: \":9000\"\nstorage:\n  driver: file\n  path: /tmp/state.json\nauth:\n  admin_email: a@b.com\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("FORMCRAFT_ADDR", ":7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("env must override yaml, got %q", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.Path != "/tmp/state.json" {
		t.Fatalf("yaml values lost: %+v", cfg.Storage)
	}
	if cfg.Auth.AdminEmail != "a@b.com" {
		t.Fatalf("yaml auth lost: %+v", cfg.Auth)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("FORMCRAFT_STORAGE_DRIVER", "redis")
	if _, err := Load(""); err == nil {
		t.Fatalf("unknown driver must be rejected")
	}
}
