package root

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/adamkadaban/kea-tui/internal/apptab"
	"github.com/adamkadaban/kea-tui/internal/controller"
	"github.com/adamkadaban/kea-tui/internal/keymap"
	"github.com/adamkadaban/kea-tui/internal/route"
	"github.com/adamkadaban/kea-tui/internal/state"
	"github.com/adamkadaban/kea-tui/internal/theme"
	"github.com/adamkadaban/kea-tui/internal/ui/views/appview"
)

// Options controls how the root model is assembled.
type Options struct {
	Context         context.Context
	Theme           theme.Theme
	KeyMap          *keymap.Global
	Source          controller.AppSource
	Settings        controller.SettingsManager
	RefreshInterval time.Duration
	Logger          logrus.FieldLogger
}

// Model owns the app view and answers its refresh requests.
type Model struct {
	ctx      context.Context
	store    *state.Store
	sub      *state.Subscription
	keymap   keymap.Global
	theme    theme.Theme
	source   controller.AppSource
	settings controller.SettingsManager
	log      logrus.FieldLogger

	app *appview.Model

	interval time.Duration
	tickGen  int

	// fetchSeq numbers fetches as they start; appliedSeq is the newest one
	// whose result was applied.
	fetchSeq   int
	appliedSeq int

	width  int
	height int
}

type storeChangeMsg struct{}

type appLoadedMsg struct {
	seq   int
	appID int64
	tab   state.AppTab
	err   error
}

type refreshTickMsg struct {
	gen   int
	appID int64
}

// New builds the root Bubble Tea model.
func New(store *state.Store, opts Options) *Model {
	keyMap := keymap.DefaultGlobal()
	if opts.KeyMap != nil {
		keyMap = *opts.KeyMap
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if store == nil {
		store = state.NewStore(route.Route{})
	}
	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	model := &Model{
		ctx:      ctx,
		store:    store,
		keymap:   keyMap,
		theme:    opts.Theme,
		source:   opts.Source,
		settings: opts.Settings,
		log:      log.WithField("component", "ui"),
		app:      appview.New(store, opts.Theme, keyMap),
		interval: opts.RefreshInterval,
	}
	model.sub = store.Subscribe()
	return model
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.app.Init(), waitForStoreChanges(m.sub)}
	if appID := m.store.Route().AppID; appID > 0 {
		cmds = append(cmds, func() tea.Msg { return apptab.RefreshAppMsg{AppID: appID} })
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case storeChangeMsg:
		return m, waitForStoreChanges(m.sub)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.app.SetSize(msg.Width, max(1, msg.Height-2))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.ToggleTheme):
			m.toggleTheme()
			return m, nil
		}

	case apptab.RefreshAppMsg:
		return m, m.refresh(msg.AppID)

	case appLoadedMsg:
		return m, m.applyLoaded(msg)

	case refreshTickMsg:
		if msg.gen != m.tickGen {
			return m, nil
		}
		return m, m.refresh(msg.appID)

	case tea.QuitMsg:
		m.closeSubscription()
	}

	updated, cmd := m.app.Update(msg)
	if next, ok := updated.(*appview.Model); ok {
		m.app = next
	}
	return m, cmd
}

func (m *Model) View() string {
	headline := lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Title.Render("Kea TUI"),
		lipgloss.NewStyle().Padding(0, 1).Render(m.theme.RenderTab(m.app.Title(), true)),
	)
	footer := m.theme.Footer.Render(m.footerLine(m.store.Snapshot()))
	return lipgloss.JoinVertical(lipgloss.Left, headline, m.app.View(), footer)
}

func (m *Model) refresh(appID int64) tea.Cmd {
	if m.source == nil {
		m.store.SetError("no app source configured")
		return nil
	}
	m.store.SetRefreshing(true)
	m.fetchSeq++
	seq := m.fetchSeq
	m.log.WithFields(logrus.Fields{"app": appID, "seq": seq}).Debug("refreshing app")

	ctx, source := m.ctx, m.source
	fetch := func() tea.Msg {
		tab, err := source.FetchApp(ctx, appID)
		return appLoadedMsg{seq: seq, appID: appID, tab: tab, err: err}
	}
	return tea.Batch(fetch, m.app.StartSpinner())
}

// applyLoaded applies a fetch result unless a newer one was applied first.
// Only the latest fetch ends the refresh and arms the next periodic one.
func (m *Model) applyLoaded(msg appLoadedMsg) tea.Cmd {
	log := m.log.WithFields(logrus.Fields{"app": msg.appID, "seq": msg.seq})
	if msg.seq < m.appliedSeq {
		log.Debug("dropping stale app")
		return nil
	}
	m.appliedSeq = msg.seq

	err := msg.err
	if err == nil {
		err = m.app.SetAppTab(msg.tab)
	}
	if err != nil {
		log.WithError(err).Warn("refresh failed")
		m.store.SetError(fmt.Sprintf("refresh app %d: %v", msg.appID, err))
	} else {
		m.store.SetAppTab(msg.tab)
		log.WithField("daemons", len(m.app.Tabs().Daemons())).Info("app refreshed")
	}
	if msg.seq < m.fetchSeq {
		m.store.SetRefreshing(true)
		return nil
	}
	return m.scheduleRefresh(msg.appID)
}

// scheduleRefresh arms the periodic refresh. Older pending ticks are
// invalidated so manual refreshes do not multiply the timers.
func (m *Model) scheduleRefresh(appID int64) tea.Cmd {
	m.tickGen++
	if m.interval <= 0 {
		return nil
	}
	gen := m.tickGen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return refreshTickMsg{gen: gen, appID: appID}
	})
}

func (m *Model) toggleTheme() {
	name := m.theme.Next()
	if m.settings != nil {
		saved, err := m.settings.SetTheme(name)
		if err != nil {
			m.log.WithError(err).Warn("persist theme")
			m.store.SetError(fmt.Sprintf("save theme: %v", err))
		} else {
			name = saved
		}
	}
	m.theme = theme.New(theme.Options{Override: name})
	m.app.SetTheme(m.theme)
}

func (m *Model) closeSubscription() {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
}

func (m *Model) footerLine(snapshot state.Snapshot) string {
	line := m.keymap.ShortHelp()
	if snapshot.LastError != "" {
		line = fmt.Sprintf("%s · %s", line, m.theme.Danger.Render(snapshot.LastError))
	}
	return line
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func waitForStoreChanges(sub *state.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-sub.Events(); !ok {
			return nil
		}
		return storeChangeMsg{}
	}
}
