package browser

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"tracetour/internal/logging"
	"tracetour/internal/narration"
	"tracetour/internal/timing"
)

// evaluator runs JavaScript in the page. *Session is the production one.
type evaluator interface {
	eval(expr string, out any) error
}

// serial runs queued functions one at a time, in submission order, on a
// goroutine that exists only while the queue is non-empty.
type serial struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

func (q *serial) do(fn func()) {
	q.mu.Lock()
	q.queue = append(q.queue, fn)
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()
	go q.drain()
}

func (q *serial) drain() {
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		fn := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()
		fn()
	}
}

// Speech narrates through the page's speechSynthesis. Completion arrives
// through a CDP binding; completions of superseded utterances are ignored.
// Page calls run in the order Speak and Cancel were made, so a cancel can
// never overtake the utterance that replaced it. When the page cannot speak,
// or audio is disabled, it falls back to simulated timing.
type Speech struct {
	page  evaluator
	sim   *narration.Silent
	calls serial

	mu         sync.Mutex
	enabled    bool
	rate       float64
	pending    func()
	utterances narration.Utterances
}

var _ narration.Narrator = (*Speech)(nil)

// NewSpeech creates a narrator bound to the session.
func NewSpeech(s *Session, clock timing.Clock, perChar time.Duration) *Speech {
	sp := newSpeech(s, clock, perChar)
	s.setBindingHandler(sp.onBinding)
	return sp
}

func newSpeech(page evaluator, clock timing.Clock, perChar time.Duration) *Speech {
	return &Speech{
		page:    page,
		sim:     narration.NewSilent(clock, perChar),
		enabled: true,
		rate:    1,
	}
}

// Speak implements narration.Narrator.
func (sp *Speech) Speak(text string, onFinished func()) {
	sp.mu.Lock()
	sp.sim.Cancel()
	id := sp.utterances.Begin()
	sp.pending = onFinished
	enabled, rate := sp.enabled, sp.rate
	if !enabled {
		sp.simulateLocked(id, text)
		sp.mu.Unlock()
		return
	}
	sp.mu.Unlock()

	sp.calls.do(func() {
		if !sp.utterances.Live(id) {
			return
		}
		var started bool
		if err := sp.page.eval(speakExpr(id, text, rate), &started); err != nil || !started {
			logging.Debug("page speech unavailable, simulating", "error", err)
			sp.mu.Lock()
			if sp.utterances.Live(id) {
				sp.simulateLocked(id, text)
			}
			sp.mu.Unlock()
		}
	})
}

// simulateLocked arms the simulated completion of id. Callers hold sp.mu and
// have checked that id is live, so an older utterance never replaces the
// timer of a newer one.
func (sp *Speech) simulateLocked(id uint64, text string) {
	sp.sim.Speak(text, func() { sp.finish(id) })
}

func (sp *Speech) onBinding(payload string) {
	id, err := strconv.ParseUint(payload, 10, 64)
	if err != nil {
		logging.Debug("bad speech binding payload", "payload", payload)
		return
	}
	sp.finish(id)
}

func (sp *Speech) finish(id uint64) {
	sp.mu.Lock()
	if !sp.utterances.Finish(id) {
		sp.mu.Unlock()
		return
	}
	fn := sp.pending
	sp.pending = nil
	sp.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel implements narration.Narrator.
func (sp *Speech) Cancel() {
	sp.mu.Lock()
	sp.utterances.Detach()
	sp.pending = nil
	sp.sim.Cancel()
	sp.mu.Unlock()

	sp.calls.do(func() {
		var ok bool
		if err := sp.page.eval(cancelSpeechExpr(), &ok); err != nil && !errors.Is(err, ErrSessionClosed) {
			logging.Debug("page speech cancel failed", "error", err)
		}
	})
}

// SetRate implements narration.Narrator.
func (sp *Speech) SetRate(multiplier float64) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.rate = narration.ClampRate(multiplier)
}

// Toggle implements narration.Narrator.
func (sp *Speech) Toggle(enabled bool) {
	sp.mu.Lock()
	sp.enabled = enabled
	sp.mu.Unlock()
	if !enabled {
		sp.Cancel()
	}
}
