package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/adamkadaban/kea-tui/internal/app"
)

func main() {
	var (
		configPath  string
		themeName   string
		agentAddr   string
		routeRaw    string
		fixturePath string
		listenAddr  string
	)

	flag.StringVar(&configPath, "config", "", "Path to the config file (defaults to XDG config dir)")
	flag.StringVar(&themeName, "theme", "", "Override theme (light, dark, auto)")
	flag.StringVar(&agentAddr, "agent", "", "Agent gRPC address (host:port or unix:///path), overrides the config file")
	flag.StringVar(&routeRaw, "route", app.DefaultRoute, "App to open, e.g. /apps/kea/1?daemon=dhcp6")
	flag.StringVar(&fixturePath, "fixture", "", "Serve apps from a YAML fixture instead of an agent")
	flag.StringVar(&listenAddr, "listen", "", "Expose the fixture through an embedded agent on this address")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:  configPath,
		Theme:       themeName,
		AgentAddr:   agentAddr,
		Route:       routeRaw,
		FixturePath: fixturePath,
		ListenAddr:  listenAddr,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "kea-tui: %v\n", err)
		os.Exit(1)
	}
}
