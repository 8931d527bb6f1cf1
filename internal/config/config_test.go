package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddress != Default().ListenAddress {
		t.Fatalf("expected default listen address, got %q", cfg.ListenAddress)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen_address: \":1234\"\nlog_level: debug\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddress != ":1234" {
		t.Fatalf("expected overridden listen address, got %q", cfg.ListenAddress)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected overridden log level, got %q", cfg.LogLevel)
	}
	if cfg.DiagnosticsPath != Default().DiagnosticsPath {
		t.Fatalf("expected default diagnostics path to survive partial override")
	}
}
