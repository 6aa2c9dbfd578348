package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/adamkadaban/kea-tui/internal/agent"
	"github.com/adamkadaban/kea-tui/internal/config"
	"github.com/adamkadaban/kea-tui/internal/controller"
	"github.com/adamkadaban/kea-tui/internal/keymap"
	"github.com/adamkadaban/kea-tui/internal/logging"
	"github.com/adamkadaban/kea-tui/internal/route"
	"github.com/adamkadaban/kea-tui/internal/settings"
	"github.com/adamkadaban/kea-tui/internal/state"
	"github.com/adamkadaban/kea-tui/internal/theme"
	root "github.com/adamkadaban/kea-tui/internal/ui/root"
)

// DefaultRoute is opened when no route is given.
const DefaultRoute = "/apps/kea/1"

// Options control how the application is executed.
type Options struct {
	ConfigPath string
	Theme      string
	// AgentAddr overrides the agent address from the config file.
	AgentAddr string
	Route     string
	// FixturePath serves apps from a YAML file instead of a remote agent.
	FixturePath string
	// ListenAddr, together with FixturePath, exposes the fixture through an
	// embedded agent server that the UI then talks to over gRPC.
	ListenAddr string
}

// Run loads configuration, prepares state, and starts the Bubble Tea program.
func Run(ctx context.Context, opts Options) error {
	configPath, err := config.ResolvePath(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("resolve config: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.AgentAddr != "" {
		cfg.Agent.Address = opts.AgentAddr
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	rawRoute := opts.Route
	if rawRoute == "" {
		rawRoute = DefaultRoute
	}
	current, err := route.Parse(rawRoute)
	if err != nil {
		return err
	}
	if opts.ListenAddr != "" && opts.FixturePath == "" {
		return errors.New("an embedded agent needs a fixture to serve")
	}

	logPath := cfg.LogFile
	if logPath == "" {
		if logPath, err = config.DefaultLogPath(); err != nil {
			return err
		}
	}
	logger, logCloser, err := logging.Setup(logging.Options{Path: logPath, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logCloser.Close()
	log := logger.WithField("app", current.AppID)

	runnerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(runnerCtx)

	source, closeSource, err := openSource(groupCtx, group, cfg, opts, log)
	if err != nil {
		cancel()
		_ = group.Wait()
		return err
	}
	defer closeSource()

	palette := theme.New(theme.Options{Override: opts.Theme, Preferred: cfg.Theme})
	store := state.NewStore(current)
	km := keymap.DefaultGlobal()
	settingsMgr := settings.NewManager(configPath, cfg)

	rootModel := root.New(store, root.Options{
		Context:         groupCtx,
		Theme:           palette,
		KeyMap:          &km,
		Source:          source,
		Settings:        settingsMgr,
		RefreshInterval: cfg.RefreshInterval(),
		Logger:          log,
	})

	prog := tea.NewProgram(rootModel, tea.WithAltScreen(), tea.WithContext(groupCtx))

	group.Go(func() error {
		defer cancel()
		_, err := prog.Run()
		return err
	})

	log.WithField("route", current.String()).Info("kea-tui started")
	if err := group.Wait(); err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("kea-tui stopped")
		return err
	}
	return nil
}

// openSource picks where app state comes from: a remote agent, a fixture
// file, or a fixture behind an embedded agent server started on group.
func openSource(ctx context.Context, group *errgroup.Group, cfg config.Config, opts Options, log logrus.FieldLogger) (controller.AppSource, func(), error) {
	clientOpts := agent.ClientOptions{
		Timeout: cfg.AgentTimeout(),
		Logger:  log,
	}

	if opts.FixturePath == "" {
		clientOpts.TLS = agent.ClientTLS{
			Enabled:    cfg.Agent.TLS.CAFile != "" || cfg.Agent.TLS.ServerName != "",
			CAFile:     cfg.Agent.TLS.CAFile,
			ServerName: cfg.Agent.TLS.ServerName,
			Insecure:   cfg.Agent.TLS.Insecure,
		}
		client, err := agent.Dial(cfg.Agent.Address, clientOpts)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { client.Close() }, nil
	}

	fixture, err := agent.LoadFixture(opts.FixturePath)
	if err != nil {
		return nil, nil, err
	}
	if opts.ListenAddr == "" {
		return fixture, func() {}, nil
	}

	lis, err := agent.Listen(opts.ListenAddr)
	if err != nil {
		return nil, nil, err
	}
	srv := agent.New(fixture, agent.Options{ListenAddr: opts.ListenAddr, Logger: log})
	group.Go(func() error {
		return srv.Serve(ctx, lis)
	})

	client, err := agent.Dial(listenerAddr(opts.ListenAddr, lis), clientOpts)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { client.Close() }, nil
}

// listenerAddr returns what a client should dial to reach lis, resolving
// ":0" style addresses to the port actually bound.
func listenerAddr(requested string, lis net.Listener) string {
	if lis.Addr().Network() == "unix" {
		return requested
	}
	return lis.Addr().String()
}
