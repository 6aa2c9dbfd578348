package keymap

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Global defines top-level key bindings shared across all views.
type Global struct {
	Quit        key.Binding
	NextDaemon  key.Binding
	PrevDaemon  key.Binding
	Refresh     key.Binding
	ToggleTheme key.Binding
}

// DefaultGlobal returns the default global key bindings.
func DefaultGlobal() Global {
	return Global{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		NextDaemon: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next daemon"),
		),
		PrevDaemon: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab", "previous daemon"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r", "refresh"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
	}
}

// ShortHelp renders a compact help string for the footer.
func (g Global) ShortHelp() string {
	bindings := []key.Binding{g.Quit, g.NextDaemon, g.PrevDaemon, g.Refresh, g.ToggleTheme}
	snippets := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		if help.Desc == "" {
			continue
		}
		snippets = append(snippets, fmt.Sprintf("%s %s", help.Key, help.Desc))
	}
	return strings.Join(snippets, " · ")
}
