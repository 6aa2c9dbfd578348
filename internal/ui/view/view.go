package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamkadaban/kea-tui/internal/theme"
)

// Model represents a routed Bubble Tea view.
type Model interface {
	tea.Model
	SetSize(width, height int)
	SetTheme(theme theme.Theme)
	Title() string
}
