package app

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixture = "apps:\n  - id: 1\n    daemons:\n      - name: dhcp4\n"

// writeConfig keeps logs inside the test directory.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := "log_file: " + filepath.Join(dir, "kea-tui.log") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "apps.yaml")
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRunReturnsErrorOnInvalidListenAddr(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	err := Run(ctx, Options{
		ConfigPath:  writeConfig(t, dir),
		FixturePath: writeFixture(t, dir),
		ListenAddr:  "unix://",
	})
	if err == nil {
		t.Fatalf("expected error for invalid listen address, got nil")
	}
}

func TestRunRequiresFixtureForEmbeddedAgent(t *testing.T) {
	dir := t.TempDir()
	err := Run(context.Background(), Options{ConfigPath: writeConfig(t, dir), ListenAddr: "127.0.0.1:0"})
	if err == nil || !strings.Contains(err.Error(), "fixture") {
		t.Fatalf("expected fixture error, got %v", err)
	}
}

func TestRunReturnsErrorOnUnreadableConfig(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	// a directory in place of the file forces a read error
	cfgPath := filepath.Join(dir, "cfgdir")
	if err := os.MkdirAll(cfgPath, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err := Run(ctx, Options{ConfigPath: cfgPath})
	if err == nil {
		t.Fatalf("expected error for unreadable config (directory), got nil")
	}
}

func TestRunRejectsInvalidRoute(t *testing.T) {
	dir := t.TempDir()
	err := Run(context.Background(), Options{ConfigPath: writeConfig(t, dir), Route: "/machines/3"})
	if err == nil {
		t.Fatalf("expected route error")
	}
}

func TestRunRejectsInvalidAgentAddr(t *testing.T) {
	dir := t.TempDir()
	err := Run(context.Background(), Options{ConfigPath: writeConfig(t, dir), AgentAddr: "no-port"})
	if err == nil || !strings.Contains(err.Error(), "agent address") {
		t.Fatalf("expected agent address error, got %v", err)
	}
}

func TestRunReturnsErrorOnMissingFixture(t *testing.T) {
	dir := t.TempDir()
	err := Run(context.Background(), Options{
		ConfigPath:  writeConfig(t, dir),
		FixturePath: filepath.Join(dir, "missing.yaml"),
	})
	if err == nil {
		t.Fatalf("expected fixture load error")
	}
}

func TestListenerAddrResolvesPort(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	got := listenerAddr("127.0.0.1:0", lis)
	if got == "127.0.0.1:0" || !strings.HasPrefix(got, "127.0.0.1:") {
		t.Fatalf("expected bound address, got %q", got)
	}
}
