package player

import (
	"time"

	"tracetour/internal/page"
	"tracetour/internal/tour"
)

// State is a snapshot of playback. Observers receive copies; Revision
// increases with every change so late deliveries can be dropped.
type State struct {
	Session  string
	Scenario *tour.Scenario
	// Index is the 0-based current step.
	Index     int
	Playing   bool
	Muted     bool
	Minimized bool
	Complete  bool
	Closed    bool
	Phase     Phase
	// Spotlight is the highlighted rectangle, nil when nothing is lit.
	Spotlight   *page.Rect
	StepStarted time.Time
	Revision    uint64
}

// Step returns the current step.
func (s State) Step() (tour.Step, bool) {
	if s.Scenario == nil {
		return tour.Step{}, false
	}
	return s.Scenario.Step(s.Index)
}

// Total returns the number of steps in the scenario.
func (s State) Total() int {
	if s.Scenario == nil {
		return 0
	}
	return s.Scenario.Len()
}

// Progress returns the fraction of steps reached, 1 once complete.
func (s State) Progress() float64 {
	total := s.Total()
	switch {
	case total == 0:
		return 0
	case s.Complete:
		return 1
	default:
		return float64(s.Index+1) / float64(total)
	}
}

// DiagnosticKind classifies non-fatal playback events.
type DiagnosticKind string

const (
	// DiagnosticNarrationTimeout means the safety timer advanced a step
	// because narration never reported completion.
	DiagnosticNarrationTimeout DiagnosticKind = "narration_timeout"
)

// Diagnostic is a non-fatal event worth showing to the presenter.
type Diagnostic struct {
	Kind     DiagnosticKind
	Scenario string
	Step     int
	Message  string
	At       time.Time
}
