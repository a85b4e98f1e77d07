package ui

import (
	"tracetour/internal/player"
	"tracetour/internal/tour"
)

// Messages delivered to the shell from outside the bubbletea loop.
type (
	// StateMsg carries a playback snapshot. Older revisions are dropped.
	StateMsg player.State
	// DiagnosticMsg carries a non-fatal playback event.
	DiagnosticMsg player.Diagnostic
	// CatalogReloadedMsg reports a scenario hot reload.
	CatalogReloadedMsg struct {
		Scenarios []*tour.Scenario
		Err       error
	}
	// ErrorMsg reports a failure that should be shown as a toast.
	ErrorMsg error
)
