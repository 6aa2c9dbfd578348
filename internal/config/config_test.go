package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadNormalizesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`theme: " LIGHT "
agent:
  address: "10.0.0.5:8080"
refresh_interval_seconds: -3
log_level: DEBUG
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Theme != ThemeLight {
		t.Fatalf("expected light theme, got %q", cfg.Theme)
	}
	if cfg.Agent.Address != "10.0.0.5:8080" {
		t.Fatalf("unexpected address %q", cfg.Agent.Address)
	}
	if cfg.AgentTimeout() != DefaultAgentTimeoutSeconds*time.Second {
		t.Fatalf("expected default timeout, got %s", cfg.AgentTimeout())
	}
	if cfg.RefreshInterval() != 0 {
		t.Fatalf("expected refresh disabled, got %s", cfg.RefreshInterval())
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug log level, got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("agent: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Theme = ThemeDark
	cfg.Agent.TLS.ServerName = "agent.example.org"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, got %d entries", len(entries))
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	dir := t.TempDir()
	ca := filepath.Join(dir, "ca.pem")
	if err := os.WriteFile(ca, []byte("ca"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, addr := range []string{"127.0.0.1:8080", "agent.local:443", "unix:///run/kea-tui.sock"} {
		cfg := Default()
		cfg.Agent.Address = addr
		cfg.Agent.TLS.CAFile = ca
		if err := Validate(cfg); err != nil {
			t.Fatalf("expected %q to be valid, got %v", addr, err)
		}
	}
}

func TestValidateRejectsBadAddress(t *testing.T) {
	cases := []struct {
		name string
		addr string
	}{
		{"empty", ""},
		{"missing port", "localhost"},
		{"bad port", "localhost:abc"},
		{"zero port", "localhost:0"},
		{"negative port", "localhost:-1"},
		{"empty socket", "unix://"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Agent.Address = tc.addr
			if err := Validate(cfg); err == nil {
				t.Fatalf("expected error for %q", tc.addr)
			}
		})
	}
}

func TestValidateRejectsMissingCAFile(t *testing.T) {
	cfg := Default()
	cfg.Agent.TLS.CAFile = "/nonexistent/ca.pem"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for missing CA file")
	}
}

func TestNormalizeTheme(t *testing.T) {
	cases := map[string]string{
		"":        ThemeAuto,
		" Dark ":  ThemeDark,
		"light":   ThemeLight,
		"unknown": ThemeAuto,
	}
	for input, want := range cases {
		if got := NormalizeTheme(input); got != want {
			t.Errorf("NormalizeTheme(%q) = %q, want %q", input, got, want)
		}
	}
}
