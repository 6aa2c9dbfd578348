package state

import (
	"time"

	"github.com/adamkadaban/kea-tui/internal/route"
)

// Machine describes the host an app runs on.
type Machine struct {
	ID       int64
	Address  string
	Hostname string
}

// LogTarget is an output configured for a Kea logger.
type LogTarget struct {
	ID       int64
	Name     string
	Severity string
	Output   string
}

// Daemon is a Kea sub-service (dhcp4, dhcp6, d2, ca, netconf) reported by the agent.
type Daemon struct {
	ID               int64
	Name             string
	Pid              int32
	Active           bool
	Monitored        bool
	Version          string
	ExtendedVersion  string
	Uptime           time.Duration
	ReloadedAt       time.Time
	Hooks            []string
	LogTargets       []LogTarget
	AgentCommErrors  int64
	CACommErrors     int64
	DaemonCommErrors int64
}

// AppDetails carries type specific app information.
type AppDetails struct {
	Daemons []Daemon
}

// App is a monitored Kea server instance.
type App struct {
	ID      int64
	Name    string
	Type    string
	Version string
	Machine Machine
	Details *AppDetails
}

// AppTab bundles an app with everything the app tab needs to render it.
type AppTab struct {
	App *App
}

// Snapshot is a threadsafe copy of the application's state tree.
type Snapshot struct {
	Route      route.Route
	AppTab     *AppTab
	Refreshing bool
	LastError  string
	UpdatedAt  time.Time
}

// Clone returns a deep copy of the app tab so callers can hold it without
// sharing slices with the store.
func (t *AppTab) Clone() *AppTab {
	if t == nil {
		return nil
	}
	out := &AppTab{}
	if t.App == nil {
		return out
	}
	app := *t.App
	if t.App.Details != nil {
		details := AppDetails{Daemons: make([]Daemon, len(t.App.Details.Daemons))}
		for idx, daemon := range t.App.Details.Daemons {
			details.Daemons[idx] = daemon.Clone()
		}
		app.Details = &details
	}
	out.App = &app
	return out
}

// Clone returns a copy of the daemon with its own slices.
func (d Daemon) Clone() Daemon {
	if d.Hooks != nil {
		d.Hooks = append([]string(nil), d.Hooks...)
	}
	if d.LogTargets != nil {
		d.LogTargets = append([]LogTarget(nil), d.LogTargets...)
	}
	return d
}
