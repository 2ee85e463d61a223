package cli

import (
	"testing"

	"github.com/agbru/fibwindow/internal/ui"
)

// MockSpinner records the calls made by DisplayProgress.
type MockSpinner struct {
	started bool
	stopped bool
	suffix  string
}

func (m *MockSpinner) Start()                     { m.started = true }
func (m *MockSpinner) Stop()                      { m.stopped = true }
func (m *MockSpinner) UpdateSuffix(suffix string) { m.suffix = suffix }

// withoutColors switches to the colorless theme for the duration of t.
func withoutColors(t *testing.T) {
	t.Helper()
	previous := ui.GetCurrentTheme()
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.SetCurrentTheme(previous) })
}
