package narration

import (
	"sync"
	"time"

	"tracetour/internal/timing"
)

// Silent never produces audio. Every utterance completes after its
// simulated duration on the clock.
type Silent struct {
	clock   timing.Clock
	perChar time.Duration

	mu    sync.Mutex
	timer timing.Timer
	ids   Utterances
}

// NewSilent creates a silent narrator. perChar <= 0 uses 50ms.
func NewSilent(clock timing.Clock, perChar time.Duration) *Silent {
	if perChar <= 0 {
		perChar = 50 * time.Millisecond
	}
	return &Silent{clock: timing.OrSystem(clock), perChar: perChar}
}

// Speak schedules onFinished after the simulated duration of text.
func (s *Silent) Speak(text string, onFinished func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if onFinished == nil {
		return
	}
	id := s.ids.Begin()
	s.timer = s.clock.AfterFunc(SimulatedDuration(text, s.perChar), func() {
		if s.ids.Finish(id) {
			onFinished()
		}
	})
}

// Cancel drops the pending completion, if any.
func (s *Silent) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Silent) stopLocked() {
	s.ids.Detach()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// SetRate is ignored; simulated timing does not depend on rate.
func (s *Silent) SetRate(float64) {}

// Toggle cancels in-flight narration when disabling.
func (s *Silent) Toggle(enabled bool) {
	if !enabled {
		s.Cancel()
	}
}
