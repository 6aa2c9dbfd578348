package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adamkadaban/kea-tui/internal/state"
)

// ErrAppNotFound is returned when the requested app is unknown to the source.
var ErrAppNotFound = errors.New("app not found")

// FixtureSource serves apps described in a YAML file.
type FixtureSource struct {
	mu   sync.RWMutex
	apps map[int64]state.App
}

type fixtureFile struct {
	Apps []fixtureApp `yaml:"apps"`
}

type fixtureApp struct {
	ID      int64           `yaml:"id"`
	Name    string          `yaml:"name"`
	Type    string          `yaml:"type"`
	Version string          `yaml:"version"`
	Machine fixtureMachine  `yaml:"machine"`
	Daemons []fixtureDaemon `yaml:"daemons"`
}

type fixtureMachine struct {
	ID       int64  `yaml:"id"`
	Address  string `yaml:"address"`
	Hostname string `yaml:"hostname"`
}

type fixtureDaemon struct {
	ID               int64              `yaml:"id"`
	Name             string             `yaml:"name"`
	Pid              int32              `yaml:"pid"`
	Active           bool               `yaml:"active"`
	Monitored        bool               `yaml:"monitored"`
	Version          string             `yaml:"version"`
	ExtendedVersion  string             `yaml:"extended_version"`
	Uptime           string             `yaml:"uptime"`
	ReloadedAt       time.Time          `yaml:"reloaded_at"`
	Hooks            []string           `yaml:"hooks"`
	LogTargets       []fixtureLogTarget `yaml:"log_targets"`
	AgentCommErrors  int64              `yaml:"agent_comm_errors"`
	CACommErrors     int64              `yaml:"ca_comm_errors"`
	DaemonCommErrors int64              `yaml:"daemon_comm_errors"`
}

type fixtureLogTarget struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name"`
	Severity string `yaml:"severity"`
	Output   string `yaml:"output"`
}

// LoadFixture reads apps from the YAML file at path.
func LoadFixture(path string) (*FixtureSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML.
func ParseFixture(data []byte) (*FixtureSource, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	apps := make([]state.App, 0, len(file.Apps))
	for _, fa := range file.Apps {
		app, err := fa.toState()
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return NewFixtureSource(apps...), nil
}

// NewFixtureSource serves the given apps keyed by ID. Later apps replace
// earlier ones with the same ID.
func NewFixtureSource(apps ...state.App) *FixtureSource {
	src := &FixtureSource{apps: make(map[int64]state.App, len(apps))}
	for _, app := range apps {
		src.apps[app.ID] = app
	}
	return src
}

// FetchApp returns a copy of the app with the given id.
func (f *FixtureSource) FetchApp(ctx context.Context, id int64) (state.AppTab, error) {
	if err := ctx.Err(); err != nil {
		return state.AppTab{}, err
	}
	f.mu.RLock()
	app, ok := f.apps[id]
	f.mu.RUnlock()
	if !ok {
		return state.AppTab{}, fmt.Errorf("%w: %d", ErrAppNotFound, id)
	}
	return *(&state.AppTab{App: &app}).Clone(), nil
}

// Put adds or replaces an app.
func (f *FixtureSource) Put(app state.App) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apps[app.ID] = app
}

func (fa fixtureApp) toState() (state.App, error) {
	app := state.App{
		ID:      fa.ID,
		Name:    fa.Name,
		Type:    fa.Type,
		Version: fa.Version,
		Machine: state.Machine{
			ID:       fa.Machine.ID,
			Address:  fa.Machine.Address,
			Hostname: fa.Machine.Hostname,
		},
		Details: &state.AppDetails{Daemons: make([]state.Daemon, 0, len(fa.Daemons))},
	}
	if app.Type == "" {
		app.Type = "kea"
	}

	for _, fd := range fa.Daemons {
		var uptime time.Duration
		if fd.Uptime != "" {
			parsed, err := time.ParseDuration(fd.Uptime)
			if err != nil {
				return state.App{}, fmt.Errorf("fixture app %d daemon %s: uptime: %w", fa.ID, fd.Name, err)
			}
			uptime = parsed
		}
		d := state.Daemon{
			ID:               fd.ID,
			Name:             fd.Name,
			Pid:              fd.Pid,
			Active:           fd.Active,
			Monitored:        fd.Monitored,
			Version:          fd.Version,
			ExtendedVersion:  fd.ExtendedVersion,
			Uptime:           uptime,
			ReloadedAt:       fd.ReloadedAt,
			Hooks:            fd.Hooks,
			AgentCommErrors:  fd.AgentCommErrors,
			CACommErrors:     fd.CACommErrors,
			DaemonCommErrors: fd.DaemonCommErrors,
		}
		for _, lt := range fd.LogTargets {
			d.LogTargets = append(d.LogTargets, state.LogTarget{
				ID:       lt.ID,
				Name:     lt.Name,
				Severity: lt.Severity,
				Output:   lt.Output,
			})
		}
		app.Details.Daemons = append(app.Details.Daemons, d)
	}
	return app, nil
}
