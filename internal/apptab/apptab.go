// Package apptab projects a Kea app's daemons into the tab layout shown by
// the app view: a fixed display order, human labels and the active tab.
package apptab

import (
	"errors"
	"net/url"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamkadaban/kea-tui/internal/route"
	"github.com/adamkadaban/kea-tui/internal/state"
	"github.com/adamkadaban/kea-tui/internal/util"
)

// ErrMalformedAppTab is returned when an app tab lacks the app or its details.
var ErrMalformedAppTab = errors.New("app tab has no app details")

// DaemonLabel maps a Kea daemon key to the label shown on its tab.
type DaemonLabel struct {
	Key  string
	Name string
}

// DaemonOrder is the only order daemons are displayed in. Daemons whose key
// is missing here are not displayed at all.
var DaemonOrder = []DaemonLabel{
	{Key: "dhcp4", Name: "DHCPv4"},
	{Key: "dhcp6", Name: "DHCPv6"},
	{Key: "d2", Name: "DDNS"},
	{Key: "ca", Name: "CA"},
	{Key: "netconf", Name: "NETCONF"},
}

// Subnet is a placeholder for per daemon subnet bookkeeping filled elsewhere.
type Subnet struct {
	ID     int64
	Prefix string
}

// DaemonTab is a daemon prepared for display.
type DaemonTab struct {
	state.Daemon
	NiceName     string
	Subnets      []Subnet
	TotalSubnets int64
}

// ViewState is the immutable result of projecting an app tab.
type ViewState struct {
	appTab      state.AppTab
	daemons     []DaemonTab
	activeIndex int
}

// RefreshAppMsg asks the parent model to refetch the app with AppID.
type RefreshAppMsg struct {
	AppID int64
}

// ActiveDaemonFromQuery returns the daemon tab requested by the route query.
func ActiveDaemonFromQuery(query url.Values) string {
	return query.Get(route.DaemonParam)
}

// Build recomputes the whole view state for tab. activeDaemon selects the
// initial tab; the first tab is active when it is empty or not present.
// Duplicate daemon names in the input collapse to the last occurrence.
func Build(tab state.AppTab, activeDaemon string) (ViewState, error) {
	if tab.App == nil || tab.App.Details == nil {
		return ViewState{}, ErrMalformedAppTab
	}

	byName := make(map[string]state.Daemon, len(tab.App.Details.Daemons))
	for _, d := range tab.App.Details.Daemons {
		byName[d.Name] = d
	}

	daemons := make([]DaemonTab, 0, len(DaemonOrder))
	activeIndex := 0
	found := false
	for _, label := range DaemonOrder {
		d, ok := byName[label.Key]
		if !ok {
			continue
		}
		if !found && activeDaemon != "" && label.Key == activeDaemon {
			activeIndex = len(daemons)
			found = true
		}
		daemons = append(daemons, DaemonTab{
			Daemon:       d.Clone(),
			NiceName:     label.Name,
			Subnets:      []Subnet{},
			TotalSubnets: 0,
		})
	}

	return ViewState{
		appTab:      *tab.Clone(),
		daemons:     daemons,
		activeIndex: activeIndex,
	}, nil
}

// AppTab returns the app tab the state was built from.
func (v ViewState) AppTab() state.AppTab {
	return v.appTab
}

// Daemons returns the ordered daemon tabs.
func (v ViewState) Daemons() []DaemonTab {
	out := make([]DaemonTab, len(v.daemons))
	copy(out, v.daemons)
	return out
}

// ActiveIndex returns the position of the active tab in Daemons.
func (v ViewState) ActiveIndex() int {
	return v.activeIndex
}

// Active returns the active daemon tab, if any.
func (v ViewState) Active() (DaemonTab, bool) {
	if v.activeIndex < 0 || v.activeIndex >= len(v.daemons) {
		return DaemonTab{}, false
	}
	return v.daemons[v.activeIndex], true
}

// WithActive returns a copy of the state with the active tab moved by delta,
// wrapping around at both ends.
func (v ViewState) WithActive(delta int) ViewState {
	v.activeIndex = util.WrapIndex(v.activeIndex, delta, len(v.daemons))
	return v
}

// RefreshAppState emits a RefreshAppMsg for the app this state shows.
func (v ViewState) RefreshAppState() tea.Cmd {
	if v.appTab.App == nil {
		return nil
	}
	id := v.appTab.App.ID
	return func() tea.Msg {
		return RefreshAppMsg{AppID: id}
	}
}

// ShowDuration formats a duration for display.
func ShowDuration(d time.Duration) string {
	return util.DurationToString(d)
}
