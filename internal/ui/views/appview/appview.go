// Package appview renders a Kea app with one tab per daemon.
package appview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/adamkadaban/kea-tui/internal/apptab"
	"github.com/adamkadaban/kea-tui/internal/keymap"
	"github.com/adamkadaban/kea-tui/internal/state"
	"github.com/adamkadaban/kea-tui/internal/theme"
	"github.com/adamkadaban/kea-tui/internal/ui/components/table"
	"github.com/adamkadaban/kea-tui/internal/ui/view"
	"github.com/adamkadaban/kea-tui/internal/util"
)

var _ view.Model = (*Model)(nil)

// Model hosts the daemon tabs of one app.
type Model struct {
	store   *state.Store
	theme   theme.Theme
	keymap  keymap.Global
	spinner spinner.Model
	ticking bool

	tabs   apptab.ViewState
	loaded bool

	width  int
	height int
	now    func() time.Time
}

// New creates the app view backed by the shared store.
func New(store *state.Store, th theme.Theme, km keymap.Global) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &Model{store: store, theme: th, keymap: km, spinner: sp, now: time.Now}
}

func (m *Model) Init() tea.Cmd { return nil }

// SetAppTab rebuilds the daemon tabs from tab, selecting the daemon named
// by the current route. The previous tabs stay in place on error.
func (m *Model) SetAppTab(tab state.AppTab) error {
	next, err := apptab.Build(tab, apptab.ActiveDaemonFromQuery(m.store.Route().Query))
	if err != nil {
		return err
	}
	m.tabs = next
	m.loaded = true
	return nil
}

// Tabs returns the current view state.
func (m *Model) Tabs() apptab.ViewState {
	return m.tabs
}

// StartSpinner begins animating the refresh indicator.
func (m *Model) StartSpinner() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return m.spinner.Tick
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.store.Snapshot().Refreshing {
			m.ticking = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.NextDaemon):
			m.moveTab(1)
		case key.Matches(msg, m.keymap.PrevDaemon):
			m.moveTab(-1)
		case key.Matches(msg, m.keymap.Refresh):
			return m, m.tabs.RefreshAppState()
		}
	}
	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}
	snapshot := m.store.Snapshot()

	var content string
	switch {
	case !m.loaded && snapshot.LastError != "":
		content = m.theme.Danger.Render("Unable to load app: " + snapshot.LastError)
	case !m.loaded:
		content = m.theme.Subtle.Render(fmt.Sprintf("%s Loading app %d…", m.spinner.View(), snapshot.Route.AppID))
	default:
		content = lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.renderTabs(),
			m.renderActive(),
			m.theme.Subtle.Render(m.metaLine(snapshot)),
		)
	}
	return m.theme.Body.Copy().Width(m.width).Height(max(3, m.height)).Render(content)
}

func (m *Model) Title() string { return "Kea app" }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) SetTheme(th theme.Theme) {
	m.theme = th
}

func (m *Model) moveTab(delta int) {
	if len(m.tabs.Daemons()) == 0 {
		return
	}
	m.tabs = m.tabs.WithActive(delta)
	if active, ok := m.tabs.Active(); ok {
		m.store.SetRoute(m.store.Route().WithDaemon(active.Name))
	}
}

func (m *Model) renderHeader() string {
	app := m.tabs.AppTab().App
	name := util.Fallback(app.Name, fmt.Sprintf("app %d", app.ID))
	parts := []string{strings.ToUpper(util.Fallback(app.Type, "kea"))}
	if app.Version != "" {
		parts = append(parts, app.Version)
	}
	if host := util.Fallback(app.Machine.Hostname, app.Machine.Address); host != "" {
		parts = append(parts, "on "+host)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Title.Render(name),
		m.theme.Subtle.Render(strings.Join(parts, " · ")),
	)
}

func (m *Model) renderTabs() string {
	daemons := m.tabs.Daemons()
	if len(daemons) == 0 {
		return ""
	}
	labels := make([]string, 0, len(daemons))
	for idx, d := range daemons {
		labels = append(labels, m.theme.RenderTab(d.NiceName, idx == m.tabs.ActiveIndex()))
	}
	return "\n" + strings.Join(labels, " ")
}

func (m *Model) renderActive() string {
	active, ok := m.tabs.Active()
	if !ok {
		return "\n" + m.theme.Subtle.Render("No Kea daemons reported by this app.")
	}

	rows := []string{
		m.row("Status", m.status(active)),
		m.row("Version", m.version(active)),
		m.row("PID", pidText(active.Pid)),
		m.row("Uptime", apptab.ShowDuration(active.Uptime)),
		m.row("Last reloaded", m.reloaded(active.ReloadedAt)),
		m.row("Monitored", yesNo(active.Monitored)),
		m.row("Subnets", humanize.Comma(active.TotalSubnets)),
		m.row("Hooks", m.hooks(active.Hooks)),
		m.row("Log targets", m.logTargets(active.LogTargets)),
		m.row("Comm errors", m.commErrors(active)),
	}

	cardWidth := max(30, m.width-8)
	title := m.theme.Title.Render(active.NiceName)
	body := lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, rows...)...)
	return m.theme.Card.Copy().Width(cardWidth).Render(body)
}

func (m *Model) row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.theme.Label.Render(label), value)
}

func (m *Model) status(d apptab.DaemonTab) string {
	text := m.theme.Status(d.Active)
	if d.Active && d.Uptime > 0 {
		text += m.theme.Subtle.Render(" up " + util.DurationToShortString(d.Uptime))
	}
	return text
}

func (m *Model) version(d apptab.DaemonTab) string {
	if d.ExtendedVersion != "" && d.ExtendedVersion != d.Version {
		return fmt.Sprintf("%s (%s)", util.Fallback(d.Version, "unknown"), d.ExtendedVersion)
	}
	return util.Fallback(d.Version, "unknown")
}

func (m *Model) reloaded(ts time.Time) string {
	if ts.IsZero() {
		return "never"
	}
	return humanize.RelTime(ts, m.now(), "ago", "from now")
}

func (m *Model) hooks(hooks []string) string {
	if len(hooks) == 0 {
		return m.theme.Subtle.Render("none")
	}
	width := max(10, m.width-30)
	lines := make([]string, len(hooks))
	for idx, hook := range hooks {
		lines[idx] = util.TruncateString(hook, width)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) logTargets(targets []state.LogTarget) string {
	if len(targets) == 0 {
		return m.theme.Subtle.Render("none")
	}
	cells := make([][]string, len(targets))
	for idx, lt := range targets {
		cells[idx] = []string{lt.Name, "→ " + lt.Output, "(" + strings.ToLower(util.Fallback(lt.Severity, "info")) + ")"}
	}
	rows := table.Columns(cells, " ")
	if limit := max(10, m.width-30); table.ComputeMaxWidth(rows) > limit {
		rows = table.ClipRows(rows, 0, limit)
	}
	return strings.Join(rows, "\n")
}

func (m *Model) commErrors(d apptab.DaemonTab) string {
	text := fmt.Sprintf("agent %d · ca %d · daemon %d", d.AgentCommErrors, d.CACommErrors, d.DaemonCommErrors)
	if d.AgentCommErrors+d.CACommErrors+d.DaemonCommErrors > 0 {
		return m.theme.Danger.Render(text)
	}
	return text
}

func (m *Model) metaLine(snapshot state.Snapshot) string {
	parts := []string{snapshot.Route.String()}
	if snapshot.Refreshing {
		parts = append(parts, m.spinner.View()+" refreshing")
	} else if !snapshot.UpdatedAt.IsZero() {
		parts = append(parts, "updated "+humanize.RelTime(snapshot.UpdatedAt, m.now(), "ago", "from now"))
	}
	return strings.Join(parts, " · ")
}

func pidText(pid int32) string {
	if pid <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", pid)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
