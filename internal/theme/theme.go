package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Mode controls the global color palette selection.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
)

// Options configure the active theme at runtime.
type Options struct {
	Override  string
	Preferred string
}

// Theme exposes reusable lipgloss styles for the UI.
type Theme struct {
	Mode        Mode
	Title       lipgloss.Style
	Header      lipgloss.Style
	Footer      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Body        lipgloss.Style
	Card        lipgloss.Style
	Label       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Danger      lipgloss.Style
	Subtle      lipgloss.Style
}

type palette struct {
	bg, fg, primary, subtle  lipgloss.Color
	success, warning, danger lipgloss.Color
	border                   lipgloss.Border
}

var (
	darkPalette = palette{
		bg:      lipgloss.Color("#0f1115"),
		fg:      lipgloss.Color("#e7e7e7"),
		primary: lipgloss.Color("#7de2d1"),
		subtle:  lipgloss.Color("#6b6f76"),
		success: lipgloss.Color("#4ade80"),
		warning: lipgloss.Color("#facc15"),
		danger:  lipgloss.Color("#f87171"),
		border:  lipgloss.NormalBorder(),
	}
	lightPalette = palette{
		bg:      lipgloss.Color("#f7f7f7"),
		fg:      lipgloss.Color("#1b1e23"),
		primary: lipgloss.Color("#155e75"),
		subtle:  lipgloss.Color("#6b7280"),
		success: lipgloss.Color("#15803d"),
		warning: lipgloss.Color("#d97706"),
		danger:  lipgloss.Color("#b91c1c"),
		border:  lipgloss.RoundedBorder(),
	}
)

// New constructs a theme based on the provided preferences.
func New(opts Options) Theme {
	mode := selectMode(opts.Override, opts.Preferred)
	if mode == ModeLight {
		return build(mode, lightPalette)
	}
	return build(mode, darkPalette)
}

// Next returns the name of the theme a toggle switches to.
func (t Theme) Next() string {
	if t.Mode == ModeLight {
		return string(ModeDark)
	}
	return string(ModeLight)
}

// RenderTab prints a tab label using the appropriate style.
func (t Theme) RenderTab(label string, active bool) string {
	style := t.TabInactive
	if active {
		style = t.TabActive
	}
	return style.Render(label)
}

// Status renders a daemon state marker.
func (t Theme) Status(active bool) string {
	if active {
		return t.Success.Render("● active")
	}
	return t.Danger.Render("● inactive")
}

func selectMode(override, preferred string) Mode {
	if mode := parseMode(override); mode != "" {
		return applyAuto(mode)
	}
	if mode := parseMode(preferred); mode != "" {
		return applyAuto(mode)
	}
	return ModeDark
}

func parseMode(value string) Mode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ModeDark):
		return ModeDark
	case string(ModeLight):
		return ModeLight
	case string(ModeAuto):
		return ModeAuto
	default:
		return ""
	}
}

func applyAuto(mode Mode) Mode {
	if mode == ModeAuto {
		return ModeDark
	}
	return mode
}

func build(mode Mode, p palette) Theme {
	body := lipgloss.NewStyle().Foreground(p.fg).Background(p.bg).Padding(1, 2)

	return Theme{
		Mode:        mode,
		Title:       lipgloss.NewStyle().Foreground(p.primary).Bold(true).PaddingRight(1),
		Header:      lipgloss.NewStyle().Foreground(p.primary).Background(p.bg).Padding(0, 1),
		Footer:      lipgloss.NewStyle().Foreground(p.subtle).Background(p.bg).Padding(0, 1),
		TabActive:   lipgloss.NewStyle().Foreground(p.bg).Background(p.primary).Padding(0, 2).Bold(true),
		TabInactive: lipgloss.NewStyle().Foreground(p.primary).Background(p.bg).Padding(0, 2),
		Body:        body,
		Card:        body.Copy().BorderStyle(p.border).BorderForeground(p.primary).Padding(1, 2),
		Label:       lipgloss.NewStyle().Foreground(p.subtle).Width(18),
		Success:     lipgloss.NewStyle().Foreground(p.success).Bold(true),
		Warning:     lipgloss.NewStyle().Foreground(p.warning).Bold(true),
		Danger:      lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		Subtle:      lipgloss.NewStyle().Foreground(p.subtle),
	}
}
