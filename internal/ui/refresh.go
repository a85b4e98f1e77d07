package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// refreshMsg paces toast expiry and spotlight re-measuring.
type refreshMsg time.Time

func scheduleRefresh(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// refreshSpotlight re-measures the spotlight off the update loop, where a
// slow page cannot hold up key handling, and reports the resulting state.
func refreshSpotlight(c Controls) tea.Cmd {
	return func() tea.Msg {
		c.RefreshSpotlight()
		return StateMsg(c.State())
	}
}
