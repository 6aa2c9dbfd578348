package route

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		appType string
		appID   int64
		daemon  string
	}{
		{"/apps/kea/7", "kea", 7, ""},
		{"apps/kea/7?daemon=ca", "kea", 7, "ca"},
		{" /apps/kea/12/?daemon=dhcp6&foo=bar ", "kea", 12, "dhcp6"},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.input, err)
		}
		if got.AppType != tt.appType || got.AppID != tt.appID || got.Daemon() != tt.daemon {
			t.Fatalf("unexpected route for %q: %+v", tt.input, got)
		}
	}
}

func TestParseRejectsBadRoutes(t *testing.T) {
	for _, input := range []string{"", "/apps", "/apps/kea", "/apps/kea/x", "/apps/kea/0", "/machines/kea/1", "/apps//1"} {
		if _, err := Parse(input); !errors.Is(err, ErrInvalidRoute) {
			t.Fatalf("expected ErrInvalidRoute for %q, got %v", input, err)
		}
	}
}

func TestWithDaemonCopiesQuery(t *testing.T) {
	r, err := Parse("/apps/kea/3?daemon=dhcp4&x=1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	next := r.WithDaemon("d2")
	if next.Daemon() != "d2" {
		t.Fatalf("expected d2, got %q", next.Daemon())
	}
	if r.Daemon() != "dhcp4" {
		t.Fatalf("expected original to keep dhcp4, got %q", r.Daemon())
	}
	if next.Query.Get("x") != "1" {
		t.Fatalf("expected other params to survive")
	}

	cleared := next.WithDaemon("")
	if cleared.Daemon() != "" {
		t.Fatalf("expected daemon to be cleared")
	}
}

func TestString(t *testing.T) {
	r, err := Parse("/apps/kea/3?daemon=ca")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := r.String(); got != "/apps/kea/3?daemon=ca" {
		t.Fatalf("unexpected string %q", got)
	}
	if got := r.WithDaemon("").String(); got != "/apps/kea/3" {
		t.Fatalf("unexpected string %q", got)
	}
}
