// Package player drives a scenario through its steps: navigation, simulated
// input, spotlight and narration, with a safety timer that keeps the tour
// moving when narration never reports completion.
package player

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"tracetour/internal/logging"
	"tracetour/internal/narration"
	"tracetour/internal/page"
	"tracetour/internal/timing"
	"tracetour/internal/tour"
)

var (
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("player: scheduler closed")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("player: scenario already started")
)

// Spotlighter highlights step targets.
type Spotlighter interface {
	Spotlight(selector string) (page.Rect, bool)
	Refresh() (page.Rect, bool)
	Hide()
}

// Options configures a Scheduler.
//
// The collaborators are called with the scheduler lock held, except
// Spotlight.Refresh, which runs outside it. They must not call back into the
// scheduler synchronously; narrators deliver completion from another
// goroutine or from the clock.
type Options struct {
	Clock     timing.Clock
	Narrator  narration.Narrator
	Navigator page.Navigator
	Locator   page.Locator
	Spotlight Spotlighter
	Timings   Timings

	// Session identifies this playback in logs. Generated when empty.
	Session   string
	Muted     bool
	Minimized bool

	// OnChange receives a snapshot after every change, outside the lock.
	// Snapshots from concurrent timers may arrive out of order; compare
	// Revision.
	OnChange func(State)
	// OnDiagnostic receives non-fatal events such as a safety advance.
	OnDiagnostic func(Diagnostic)

	Logger *slog.Logger
}

// generation is a cancellation token plus the timers armed under it.
// Bumping the token stops the timers and makes any straggler a no-op.
type generation struct {
	token  uint64
	timers []timing.Timer
}

func (g *generation) bump() {
	g.token++
	for _, t := range g.timers {
		t.Stop()
	}
	g.timers = nil
}

// Scheduler owns playback state for one scenario session. All methods are
// safe for concurrent use.
type Scheduler struct {
	opts  Options
	clock timing.Clock
	times Timings
	log   *slog.Logger

	mu        sync.Mutex
	lifecycle *fsm.FSM
	state     State
	closed    bool
	dirty     bool
	diags     []Diagnostic

	// step guards the visual chain of the current step: navigation, actions
	// and spotlight. It changes on step change, restart and close.
	step generation
	// voice guards narration callbacks, the natural pause and the safety
	// timer. It also changes on play/pause so pausing never rewinds visuals.
	voice generation

	refreshing atomic.Bool
}

// New creates a scheduler in the idle phase.
func New(opts Options) *Scheduler {
	if opts.Session == "" {
		opts.Session = uuid.NewString()
	}
	if opts.Narrator == nil {
		opts.Narrator = narration.NewSilent(opts.Clock, 0)
	}
	if opts.Spotlight == nil {
		opts.Spotlight = nopSpotlight{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Logger()
	}

	s := &Scheduler{
		opts:  opts,
		clock: timing.OrSystem(opts.Clock),
		times: opts.Timings.withDefaults(),
		log:   opts.Logger.With("component", "player", "session", opts.Session),
	}
	s.state = State{
		Session:   opts.Session,
		Muted:     opts.Muted,
		Minimized: opts.Minimized,
		Phase:     PhaseIdle,
	}
	s.lifecycle = newLifecycle(func(from, to Phase) {
		s.state.Phase = to
		s.log.Debug("phase changed", "from", from, "to", to)
	})
	return s
}

// Start begins playback of sc at its first step.
func (s *Scheduler) Start(sc *tour.Scenario) error {
	if sc == nil {
		return fmt.Errorf("%w: nil scenario", tour.ErrInvalidScenario)
	}
	if err := sc.Validate(); err != nil {
		return err
	}

	var err error
	s.update(func() {
		switch {
		case s.closed:
			err = ErrClosed
			return
		case s.state.Scenario != nil:
			err = ErrAlreadyStarted
			return
		}

		s.log = s.log.With("scenario", sc.ID)
		s.state.Scenario = sc
		s.state.Index = 0
		s.state.Playing = true
		s.state.Complete = false
		s.opts.Narrator.Toggle(!s.state.Muted)
		s.transition(eventStart)
		s.log.Info("playback started", "steps", sc.Len())
		s.enterStepLocked()
	})
	return err
}

// TogglePlay pauses or resumes. Pausing cancels narration and the safety
// timer but leaves the step's navigation and actions alone; resuming speaks
// the current step again from the start.
func (s *Scheduler) TogglePlay() {
	s.update(func() {
		if !s.activeLocked() {
			return
		}
		s.state.Playing = !s.state.Playing
		if s.state.Playing {
			s.transition(eventResume)
		} else {
			s.transition(eventPause)
		}
		s.voice.bump()
		s.narrateLocked()
	})
}

// Advance skips to the next step, or completes the scenario after the last
// one. It works while paused and does nothing once complete or closed.
func (s *Scheduler) Advance() {
	s.update(func() {
		if !s.activeLocked() {
			return
		}
		s.advanceLocked()
	})
}

// ToggleMute mutes or unmutes narration. Muting cancels the current
// utterance; the safety timer still moves the step along. Unmuting does not
// replay anything.
func (s *Scheduler) ToggleMute() {
	s.update(func() {
		if s.closed {
			return
		}
		s.state.Muted = !s.state.Muted
		s.opts.Narrator.Toggle(!s.state.Muted)
		s.dirty = true
	})
}

// ToggleMinimize collapses or expands the overlay.
func (s *Scheduler) ToggleMinimize() {
	s.update(func() {
		if s.closed {
			return
		}
		s.state.Minimized = !s.state.Minimized
		s.dirty = true
	})
}

// Restart replays the scenario from the first step.
func (s *Scheduler) Restart() {
	s.update(func() {
		if s.closed || s.state.Scenario == nil {
			return
		}
		s.state.Index = 0
		s.state.Complete = false
		s.state.Playing = true
		s.transition(eventRestart)
		s.log.Info("playback restarted")
		s.enterStepLocked()
	})
}

// Close cancels narration and every pending timer. The scheduler is inert
// afterwards. Close may be called at any time, more than once.
func (s *Scheduler) Close() {
	s.update(func() {
		if s.closed {
			return
		}
		s.closed = true
		s.step.bump()
		s.voice.bump()
		s.opts.Narrator.Cancel()
		s.opts.Spotlight.Hide()

		s.state.Closed = true
		s.state.Playing = false
		s.state.Spotlight = nil
		s.transition(eventClose)
		s.log.Info("playback closed", "step", s.state.Index+1)
	})
}

// RefreshSpotlight re-measures the highlighted element so the rectangle
// follows layout changes. The page is measured without the scheduler lock,
// so a slow page never holds up the controls; a result that arrives after
// the step changed is dropped. Overlapping calls return immediately.
func (s *Scheduler) RefreshSpotlight() {
	if !s.refreshing.CompareAndSwap(false, true) {
		return
	}
	defer s.refreshing.Store(false)

	s.mu.Lock()
	if !s.activeLocked() || s.state.Spotlight == nil {
		s.mu.Unlock()
		return
	}
	token := s.step.token
	s.mu.Unlock()

	rect, ok := s.opts.Spotlight.Refresh()

	s.update(func() {
		if !s.activeLocked() || s.step.token != token || s.state.Spotlight == nil {
			return
		}
		if ok {
			if *s.state.Spotlight != rect {
				s.state.Spotlight = &rect
				s.dirty = true
			}
			return
		}
		s.state.Spotlight = nil
		s.dirty = true
	})
}

// State returns the current snapshot.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Session returns the session id.
func (s *Scheduler) Session() string {
	return s.opts.Session
}

// update runs fn under the lock, then delivers the resulting snapshot and
// diagnostics outside it.
func (s *Scheduler) update(fn func()) {
	s.mu.Lock()
	fn()
	var (
		snapshot State
		changed  = s.dirty
	)
	if changed {
		s.dirty = false
		s.state.Revision++
		snapshot = s.state
	}
	diags := s.diags
	s.diags = nil
	s.mu.Unlock()

	if changed && s.opts.OnChange != nil {
		s.opts.OnChange(snapshot)
	}
	if s.opts.OnDiagnostic != nil {
		for _, d := range diags {
			s.opts.OnDiagnostic(d)
		}
	}
}

// after arms a timer under g. The callback runs under the lock, and only if
// the scheduler is open and g has not moved on.
func (s *Scheduler) after(g *generation, d time.Duration, fn func()) {
	token := g.token
	t := s.clock.AfterFunc(d, func() {
		s.update(func() {
			if s.closed || g.token != token {
				return
			}
			fn()
		})
	})
	g.timers = append(g.timers, t)
}

func (s *Scheduler) activeLocked() bool {
	return !s.closed && s.state.Scenario != nil && !s.state.Complete
}

func (s *Scheduler) transition(event string) {
	if err := fire(s.lifecycle, event); err != nil {
		s.log.Debug("lifecycle event rejected", "event", event, "error", err)
	}
	s.dirty = true
}

func (s *Scheduler) currentStepLocked() tour.Step {
	step, _ := s.state.Scenario.Step(s.state.Index)
	return step
}

func (s *Scheduler) advanceLocked() {
	s.voice.bump()
	s.opts.Narrator.Cancel()

	if s.state.Index+1 >= s.state.Scenario.Len() {
		s.completeLocked()
		return
	}
	s.state.Index++
	s.enterStepLocked()
}

func (s *Scheduler) completeLocked() {
	s.step.bump()
	s.voice.bump()
	s.opts.Spotlight.Hide()

	s.state.Complete = true
	s.state.Playing = false
	s.state.Spotlight = nil
	s.transition(eventFinish)
	s.log.Info("playback complete")
}

// enterStepLocked runs the step-entry procedure for the current index:
// navigate and settle, apply actions in order, then spotlight. Narration is
// evaluated once the visual chain is scheduled.
func (s *Scheduler) enterStepLocked() {
	s.step.bump()
	s.voice.bump()
	s.opts.Narrator.Cancel()

	step := s.currentStepLocked()
	s.state.StepStarted = s.clock.Now()
	s.dirty = true
	s.log.Debug("entering step", "step", step.Sequence, "title", step.Title)

	if step.NavigateTo != "" {
		s.navigateLocked(step.NavigateTo)
		s.after(&s.step, s.times.SettleDelay, func() { s.actLocked(step, 0) })
	} else {
		s.actLocked(step, 0)
	}

	s.narrateLocked()
}

func (s *Scheduler) navigateLocked(view string) {
	if s.opts.Navigator == nil {
		return
	}
	s.opts.Navigator.Navigate(view)
}

// actLocked applies step.Actions[i:] in order, each after its own delay,
// then schedules the spotlight.
func (s *Scheduler) actLocked(step tour.Step, i int) {
	if i >= len(step.Actions) {
		s.spotlightLocked(step)
		return
	}

	action := step.Actions[i]
	apply := func() {
		if nav, ok := action.(tour.NavigateAction); ok {
			s.navigateLocked(nav.View)
			s.after(&s.step, s.times.SettleDelay, func() { s.actLocked(step, i+1) })
			return
		}
		s.applyLocked(step, action)
		s.actLocked(step, i+1)
	}

	if d := action.Delay(); d > 0 {
		s.after(&s.step, d, apply)
		return
	}
	apply()
}

// applyLocked performs a click or fill. Missing targets are skipped.
func (s *Scheduler) applyLocked(step tour.Step, action tour.Action) {
	if s.opts.Locator == nil {
		return
	}
	switch a := action.(type) {
	case tour.ClickAction:
		el, ok := s.opts.Locator.Locate(a.Selector)
		if !ok {
			s.log.Debug("click target not found", "step", step.Sequence, "selector", a.Selector)
			return
		}
		s.opts.Locator.Click(el)
	case tour.FillAction:
		el, ok := s.opts.Locator.Locate(a.Selector)
		if !ok {
			s.log.Debug("fill target not found", "step", step.Sequence, "selector", a.Selector)
			return
		}
		s.opts.Locator.FillValue(el, a.Value)
	}
}

func (s *Scheduler) spotlightLocked(step tour.Step) {
	if step.Target == "" {
		s.opts.Spotlight.Hide()
		if s.state.Spotlight != nil {
			s.state.Spotlight = nil
			s.dirty = true
		}
		return
	}

	s.after(&s.step, s.times.SpotlightDelay, func() {
		rect, ok := s.opts.Spotlight.Spotlight(step.Target)
		if !ok {
			s.log.Debug("spotlight target not found", "step", step.Sequence, "selector", step.Target)
			s.state.Spotlight = nil
		} else {
			s.state.Spotlight = &rect
		}
		s.dirty = true
	})
}

// narrateLocked speaks the current step and arms its safety timer, or
// cancels narration when not playing. The caller bumps s.voice first.
func (s *Scheduler) narrateLocked() {
	if !s.state.Playing || s.state.Complete || s.closed {
		s.opts.Narrator.Cancel()
		return
	}

	step := s.currentStepLocked()
	token := s.voice.token
	s.opts.Narrator.Speak(step.Narration, func() { s.narrationFinished(token) })

	s.after(&s.voice, s.times.SafetyDelay(step.Narration), func() {
		if !s.state.Playing || s.state.Complete {
			return
		}
		if step.Sequence != s.state.Index+1 {
			return
		}
		msg := fmt.Sprintf("narration for step %d did not finish, advancing", step.Sequence)
		s.log.Warn("safety timer advanced step", "step", step.Sequence)
		s.diags = append(s.diags, Diagnostic{
			Kind:     DiagnosticNarrationTimeout,
			Scenario: s.state.Scenario.ID,
			Step:     step.Sequence,
			Message:  msg,
			At:       s.clock.Now(),
		})
		s.advanceLocked()
	})
}

// narrationFinished is the narrator's completion callback. After the natural
// pause it advances, unless playback was paused or moved on meanwhile.
func (s *Scheduler) narrationFinished(token uint64) {
	s.update(func() {
		if s.closed || s.voice.token != token {
			return
		}
		s.after(&s.voice, s.times.NaturalPause, func() {
			if s.state.Playing && !s.state.Complete {
				s.advanceLocked()
			}
		})
	})
}

type nopSpotlight struct{}

func (nopSpotlight) Spotlight(string) (page.Rect, bool) { return page.Rect{}, false }
func (nopSpotlight) Refresh() (page.Rect, bool)         { return page.Rect{}, false }
func (nopSpotlight) Hide()                              {}
