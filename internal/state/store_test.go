package state

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/adamkadaban/kea-tui/internal/route"
)

func sampleTab() AppTab {
	return AppTab{App: &App{
		ID:   7,
		Name: "kea@agent-1",
		Details: &AppDetails{Daemons: []Daemon{
			{Name: "dhcp4", Hooks: []string{"libdhcp_lease_cmds.so"}},
			{Name: "ca"},
		}},
	}}
}

func TestStoreSetAppTabClearsErrorAndRefreshing(t *testing.T) {
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(route.Route{})
	store.now = func() time.Time { return stamp }

	store.SetRefreshing(true)
	store.SetError("boom")
	store.SetRefreshing(true)
	store.SetAppTab(sampleTab())

	snap := store.Snapshot()
	if snap.Refreshing {
		t.Fatalf("expected refreshing to be cleared")
	}
	if snap.LastError != "" {
		t.Fatalf("expected error to be cleared, got %q", snap.LastError)
	}
	if !snap.UpdatedAt.Equal(stamp) {
		t.Fatalf("expected updated at %s, got %s", stamp, snap.UpdatedAt)
	}
	if diff := cmp.Diff(sampleTab(), *snap.AppTab); diff != "" {
		t.Fatalf("app tab mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreSetErrorEndsRefresh(t *testing.T) {
	store := NewStore(route.Route{})
	store.SetRefreshing(true)
	store.SetError("agent unreachable")

	snap := store.Snapshot()
	if snap.Refreshing {
		t.Fatalf("expected refresh to end on error")
	}
	if snap.LastError != "agent unreachable" {
		t.Fatalf("unexpected error %q", snap.LastError)
	}
}

func TestStoreSnapshotCopy(t *testing.T) {
	store := NewStore(route.Route{})
	store.SetAppTab(sampleTab())

	snap := store.Snapshot()
	snap.AppTab.App.Name = "changed"
	snap.AppTab.App.Details.Daemons[0].Name = "mutated"
	snap.AppTab.App.Details.Daemons[0].Hooks[0] = "mutated.so"

	again := store.Snapshot()
	if again.AppTab.App.Name != "kea@agent-1" {
		t.Fatalf("expected app copy to be isolated")
	}
	if again.AppTab.App.Details.Daemons[0].Name != "dhcp4" {
		t.Fatalf("expected daemons copy to be isolated")
	}
	if again.AppTab.App.Details.Daemons[0].Hooks[0] != "libdhcp_lease_cmds.so" {
		t.Fatalf("expected hooks copy to be isolated")
	}
}

func TestStoreSetRoute(t *testing.T) {
	initial, err := route.Parse("/apps/kea/7")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	store := NewStore(initial)
	store.SetRoute(initial.WithDaemon("ca"))

	if got := store.Route().Query.Get("daemon"); got != "ca" {
		t.Fatalf("expected daemon=ca, got %q", got)
	}
	if initial.Query.Get("daemon") != "" {
		t.Fatalf("expected original route to be untouched")
	}
}

func TestStoreSubscriptionReceivesNotifications(t *testing.T) {
	store := NewStore(route.Route{})
	sub := store.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		if _, ok := <-sub.Events(); ok {
			close(done)
		}
	}()

	store.SetRefreshing(true)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for store notification")
	}
}

func TestSubscriptionCloseClosesChannel(t *testing.T) {
	store := NewStore(route.Route{})
	sub := store.Subscribe()
	events := sub.Events()
	sub.Close()

	if _, ok := <-events; ok {
		t.Fatalf("expected closed channel")
	}
	// second close is a no-op
	sub.Close()
}

func TestCloneNilAppTab(t *testing.T) {
	var tab *AppTab
	if tab.Clone() != nil {
		t.Fatalf("expected nil clone")
	}
	empty := (&AppTab{}).Clone()
	if empty == nil || empty.App != nil {
		t.Fatalf("expected empty clone, got %+v", empty)
	}
}
