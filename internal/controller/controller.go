package controller

import (
	"context"

	"github.com/adamkadaban/kea-tui/internal/state"
)

// AppSource fetches the current state of a Kea app.
type AppSource interface {
	FetchApp(ctx context.Context, id int64) (state.AppTab, error)
}

// SettingsManager persists UI configuration choices.
type SettingsManager interface {
	SetTheme(name string) (string, error)
}
