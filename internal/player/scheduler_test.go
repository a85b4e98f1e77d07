package player

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracetour/internal/page"
	"tracetour/internal/spotlight"
	"tracetour/internal/timing"
	"tracetour/internal/tour"
)

// fakeNarrator never finishes on its own; tests call finish.
type fakeNarrator struct {
	mu      sync.Mutex
	spoken  []string
	pending func()
	cancels int
	toggles []bool
}

func (n *fakeNarrator) Speak(text string, onFinished func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.spoken = append(n.spoken, text)
	n.pending = onFinished
}

func (n *fakeNarrator) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancels++
	n.pending = nil
}

func (n *fakeNarrator) SetRate(float64) {}

func (n *fakeNarrator) Toggle(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toggles = append(n.toggles, enabled)
	if !enabled {
		n.pending = nil
	}
}

// finish delivers the pending completion the way a real engine would: from
// outside the scheduler's call.
func (n *fakeNarrator) finish() {
	n.mu.Lock()
	fn := n.pending
	n.pending = nil
	n.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (n *fakeNarrator) spokenTexts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.spoken...)
}

func (n *fakeNarrator) hasPending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pending != nil
}

// journal records navigation, actions and spotlight calls with their
// virtual time offset.
type journal struct {
	clk     *timing.Fake
	start   time.Time
	present map[string]bool
	entries []string
}

type fakeElement string

func (e fakeElement) Selector() string { return string(e) }
func (e fakeElement) Bounds() (page.Rect, bool) {
	return page.Rect{X: 10, Y: 10, Width: 100, Height: 20}, true
}

func newJournal(clk *timing.Fake, present ...string) *journal {
	j := &journal{clk: clk, start: clk.Now(), present: make(map[string]bool)}
	for _, sel := range present {
		j.present[sel] = true
	}
	return j
}

func (j *journal) add(format string, args ...any) {
	at := j.clk.Now().Sub(j.start).Milliseconds()
	j.entries = append(j.entries, fmt.Sprintf("%dms %s", at, fmt.Sprintf(format, args...)))
}

func (j *journal) Navigate(view string) { j.add("navigate %s", view) }

func (j *journal) Locate(selector string) (page.Element, bool) {
	if !j.present[selector] {
		return nil, false
	}
	return fakeElement(selector), true
}

func (j *journal) Click(el page.Element)               { j.add("click %s", el.Selector()) }
func (j *journal) FillValue(el page.Element, v string) { j.add("fill %s=%s", el.Selector(), v) }
func (j *journal) ScrollIntoView(page.Element)         {}

func (j *journal) Spotlight(selector string) (page.Rect, bool) {
	j.add("spotlight %s", selector)
	if !j.present[selector] {
		return page.Rect{}, false
	}
	return page.Rect{X: 6, Y: 6, Width: 108, Height: 28}, true
}

func (j *journal) Refresh() (page.Rect, bool) { return page.Rect{X: 6, Y: 6, Width: 108, Height: 28}, true }
func (j *journal) Hide()                      { j.add("hide") }

type harness struct {
	clk      *timing.Fake
	narrator *fakeNarrator
	journal  *journal
	sched    *Scheduler

	mu     sync.Mutex
	states []State
	diags  []Diagnostic
}

func newHarness(t *testing.T, present ...string) *harness {
	t.Helper()
	h := &harness{clk: timing.NewFake(), narrator: &fakeNarrator{}}
	h.journal = newJournal(h.clk, present...)
	h.sched = New(Options{
		Clock:     h.clk,
		Narrator:  h.narrator,
		Navigator: h.journal,
		Locator:   h.journal,
		Spotlight: h.journal,
		Session:   "test-session",
		OnChange: func(s State) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.states = append(h.states, s)
		},
		OnDiagnostic: func(d Diagnostic) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.diags = append(h.diags, d)
		},
	})
	t.Cleanup(h.sched.Close)
	return h
}

func (h *harness) index() int { return h.sched.State().Index }

func scenario(steps ...tour.Step) *tour.Scenario {
	for i := range steps {
		steps[i].Sequence = i + 1
		if steps[i].Narration == "" {
			steps[i].Narration = "Step narration."
		}
	}
	return &tour.Scenario{ID: "test", Title: "Test", Steps: steps}
}

func TestEstimateNarration(t *testing.T) {
	tm := DefaultTimings()
	assert.Equal(t, 4000*time.Millisecond, tm.EstimateNarration("Hello world this is a test"))
	assert.Equal(t, 4000*time.Millisecond, tm.EstimateNarration(""))
	assert.Equal(t, 11000*time.Millisecond, tm.EstimateNarration(strings.Repeat("word ", 30)))
	assert.Equal(t, 6000*time.Millisecond, tm.SafetyDelay("Hello world this is a test"))
}

func TestZeroTimingsUseDefaults(t *testing.T) {
	assert.Equal(t, DefaultTimings(), Timings{}.withDefaults())

	clk := timing.NewFake()
	sched := New(Options{Clock: clk, Narrator: &fakeNarrator{}})
	defer sched.Close()
	require.NoError(t, sched.Start(scenario(
		tour.Step{Narration: "Hello world this is a test"},
		tour.Step{},
		tour.Step{},
	)))

	clk.Advance(5 * time.Second)
	assert.Equal(t, 0, sched.State().Index)
	clk.Advance(time.Second)
	assert.Equal(t, 1, sched.State().Index)
}

func TestAdvanceToCompleteIsTerminal(t *testing.T) {
	h := newHarness(t)
	sc := scenario(tour.Step{}, tour.Step{}, tour.Step{})
	require.NoError(t, h.sched.Start(sc))

	st := h.sched.State()
	assert.Equal(t, PhasePlaying, st.Phase)
	assert.True(t, st.Playing)
	assert.Equal(t, "test-session", st.Session)

	for i := 0; i < sc.Len(); i++ {
		assert.False(t, h.sched.State().Complete)
		h.sched.Advance()
	}

	st = h.sched.State()
	require.True(t, st.Complete)
	assert.Equal(t, PhaseComplete, st.Phase)
	assert.Equal(t, 2, st.Index)
	assert.Equal(t, 1.0, st.Progress())

	h.sched.Advance()
	h.sched.TogglePlay()
	after := h.sched.State()
	assert.Equal(t, st.Revision, after.Revision, "terminal state does not change")
	assert.False(t, after.Playing)
}

func TestStartErrors(t *testing.T) {
	h := newHarness(t)

	err := h.sched.Start(&tour.Scenario{ID: "empty", Title: "Empty"})
	assert.ErrorIs(t, err, tour.ErrInvalidScenario)
	assert.ErrorIs(t, h.sched.Start(nil), tour.ErrInvalidScenario)

	require.NoError(t, h.sched.Start(scenario(tour.Step{})))
	assert.ErrorIs(t, h.sched.Start(scenario(tour.Step{})), ErrAlreadyStarted)

	h.sched.Close()
	assert.ErrorIs(t, h.sched.Start(scenario(tour.Step{})), ErrClosed)
}

func TestNavigationPrecedesActions(t *testing.T) {
	h := newHarness(t, "#btn-log-receipt")
	sc := scenario(tour.Step{
		NavigateTo: "receiving",
		Actions:    tour.ActionList{tour.ClickAction{Selector: "#btn-log-receipt"}},
	})
	require.NoError(t, h.sched.Start(sc))
	assert.Equal(t, []string{"0ms navigate receiving"}, h.journal.entries)

	h.clk.Advance(499 * time.Millisecond)
	assert.Len(t, h.journal.entries, 1)

	h.clk.Advance(time.Millisecond)
	assert.Equal(t, []string{
		"0ms navigate receiving",
		"500ms click #btn-log-receipt",
		"500ms hide",
	}, h.journal.entries)
}

func TestActionsRunInOrderThenSpotlight(t *testing.T) {
	h := newHarness(t, "#btn-step-2", "#input-tlc")
	sc := scenario(tour.Step{
		Target:     "#input-tlc",
		NavigateTo: "receiving",
		Actions: tour.ActionList{
			tour.ClickAction{Selector: "#missing"},
			tour.ClickAction{Selector: "#btn-step-2", Wait: 800 * time.Millisecond},
			tour.FillAction{Selector: "#input-tlc", Value: "TH-MG-2024-1234"},
			tour.NavigateAction{View: "inventory"},
		},
	})
	require.NoError(t, h.sched.Start(sc))

	h.clk.Advance(5 * time.Second)
	assert.Equal(t, []string{
		"0ms navigate receiving",
		"1300ms click #btn-step-2",
		"1300ms fill #input-tlc=TH-MG-2024-1234",
		"1300ms navigate inventory",
		"2400ms spotlight #input-tlc",
	}, h.journal.entries)

	st := h.sched.State()
	require.NotNil(t, st.Spotlight)
	assert.Equal(t, page.Rect{X: 6, Y: 6, Width: 108, Height: 28}, *st.Spotlight)
}

func TestNavigateActionHonoursDelay(t *testing.T) {
	h := newHarness(t, "#btn-preview")
	sc := scenario(tour.Step{
		Actions: tour.ActionList{
			tour.NavigateAction{View: "reports", Wait: 700 * time.Millisecond},
			tour.ClickAction{Selector: "#btn-preview"},
		},
	})
	require.NoError(t, h.sched.Start(sc))

	h.clk.Advance(699 * time.Millisecond)
	assert.Empty(t, h.journal.entries)

	h.clk.Advance(time.Second)
	assert.Equal(t, []string{
		"700ms navigate reports",
		"1200ms click #btn-preview",
		"1200ms hide",
	}, h.journal.entries)
}

func TestSafetyTimerAdvancesAtSixSeconds(t *testing.T) {
	h := newHarness(t)
	sc := scenario(
		tour.Step{Narration: "Hello world this is a test"},
		tour.Step{},
		tour.Step{},
	)
	require.NoError(t, h.sched.Start(sc))

	h.clk.Advance(5999 * time.Millisecond)
	assert.Equal(t, 0, h.index())
	assert.Empty(t, h.diags)

	h.clk.Advance(time.Millisecond)
	assert.Equal(t, 1, h.index())
	require.Len(t, h.diags, 1)
	assert.Equal(t, DiagnosticNarrationTimeout, h.diags[0].Kind)
	assert.Equal(t, 1, h.diags[0].Step)
	assert.Equal(t, []string{"Hello world this is a test", "Step narration."}, h.narrator.spokenTexts())
}

func TestNarrationCompletionAdvancesExactlyOnce(t *testing.T) {
	h := newHarness(t)
	sc := scenario(
		tour.Step{Narration: "Hello world this is a test"},
		tour.Step{},
		tour.Step{},
	)
	require.NoError(t, h.sched.Start(sc))

	h.clk.Advance(time.Second)
	h.narrator.finish()

	h.clk.Advance(1199 * time.Millisecond)
	assert.Equal(t, 0, h.index())
	h.clk.Advance(time.Millisecond)
	assert.Equal(t, 1, h.index())

	// the original safety deadline at 6000ms passes without a second advance
	h.clk.Advance(5999 * time.Millisecond)
	assert.Equal(t, 1, h.index())
	assert.Empty(t, h.diags)

	h.mu.Lock()
	indexChanges := 0
	last := 0
	for _, s := range h.states {
		if s.Index != last {
			indexChanges++
			last = s.Index
		}
	}
	h.mu.Unlock()
	assert.Equal(t, 1, indexChanges)
}

func TestPauseCancelsScheduledAdvanceAndResumeReplaysStep(t *testing.T) {
	h := newHarness(t)
	sc := scenario(tour.Step{Narration: "Hello world this is a test"}, tour.Step{})
	require.NoError(t, h.sched.Start(sc))

	h.clk.Advance(time.Second)
	h.narrator.finish()
	h.clk.Advance(600 * time.Millisecond)

	h.sched.TogglePlay()
	st := h.sched.State()
	assert.False(t, st.Playing)
	assert.Equal(t, PhasePaused, st.Phase)

	h.clk.Advance(time.Minute)
	assert.Equal(t, 0, h.index())
	assert.Empty(t, h.diags)

	h.sched.TogglePlay()
	assert.Equal(t, PhasePlaying, h.sched.State().Phase)
	assert.Equal(t, []string{"Hello world this is a test", "Hello world this is a test"}, h.narrator.spokenTexts())
	assert.Equal(t, 0, h.index())

	h.clk.Advance(5999 * time.Millisecond)
	assert.Equal(t, 0, h.index())
	h.clk.Advance(time.Millisecond)
	assert.Equal(t, 1, h.index())
}

func TestPauseDoesNotCancelVisualChain(t *testing.T) {
	h := newHarness(t, "#btn-preview")
	sc := scenario(tour.Step{
		NavigateTo: "reports",
		Actions:    tour.ActionList{tour.ClickAction{Selector: "#btn-preview", Wait: time.Second}},
	})
	require.NoError(t, h.sched.Start(sc))

	h.sched.TogglePlay()
	h.clk.Advance(2 * time.Second)
	assert.Contains(t, h.journal.entries, "1500ms click #btn-preview")
	assert.False(t, h.narrator.hasPending())
}

func TestAdvanceWhilePausedStaysPaused(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sched.Start(scenario(tour.Step{}, tour.Step{}, tour.Step{})))

	h.sched.TogglePlay()
	h.sched.Advance()

	st := h.sched.State()
	assert.Equal(t, 1, st.Index)
	assert.False(t, st.Playing)
	assert.Equal(t, PhasePaused, st.Phase)
	assert.Len(t, h.narrator.spokenTexts(), 1)

	h.clk.Advance(time.Minute)
	assert.Equal(t, 1, h.index())

	h.sched.Advance()
	h.sched.Advance()
	assert.True(t, h.sched.State().Complete)
	assert.Equal(t, PhaseComplete, h.sched.State().Phase)
}

func TestRestartReentersFirstStep(t *testing.T) {
	h := newHarness(t)
	sc := scenario(tour.Step{NavigateTo: "dashboard"}, tour.Step{NavigateTo: "reports"})
	require.NoError(t, h.sched.Start(sc))
	h.sched.Advance()
	h.sched.Advance()
	require.True(t, h.sched.State().Complete)

	h.journal.entries = nil
	h.sched.Restart()

	st := h.sched.State()
	assert.Equal(t, 0, st.Index)
	assert.False(t, st.Complete)
	assert.True(t, st.Playing)
	assert.Equal(t, PhasePlaying, st.Phase)
	assert.Equal(t, []string{"0ms navigate dashboard"}, h.journal.entries)
	assert.True(t, h.narrator.hasPending())
}

func TestCloseStopsEverything(t *testing.T) {
	h := newHarness(t, "#btn-send-email")
	sc := scenario(tour.Step{
		Target:  "#btn-send-email",
		Actions: tour.ActionList{tour.ClickAction{Selector: "#btn-send-email", Wait: time.Second}},
	}, tour.Step{})
	require.NoError(t, h.sched.Start(sc))

	h.narrator.mu.Lock()
	stale := h.narrator.pending
	h.narrator.mu.Unlock()

	h.clk.Advance(500 * time.Millisecond)
	h.sched.Close()
	closed := h.sched.State()
	assert.True(t, closed.Closed)
	assert.Equal(t, PhaseIdle, closed.Phase)
	assert.Equal(t, []string{"500ms hide"}, h.journal.entries)

	h.clk.Advance(time.Minute)
	stale()

	h.sched.Advance()
	h.sched.TogglePlay()
	h.sched.Restart()
	h.sched.ToggleMute()
	h.sched.Close()

	assert.Equal(t, closed, h.sched.State())
	assert.Equal(t, []string{"500ms hide"}, h.journal.entries)
	assert.Zero(t, h.clk.Pending())
}

func TestMuteCancelsNarrationSafetyStillAdvances(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sched.Start(scenario(tour.Step{Narration: "Hello world this is a test"}, tour.Step{})))
	require.True(t, h.narrator.hasPending())

	h.sched.ToggleMute()
	assert.True(t, h.sched.State().Muted)
	assert.False(t, h.narrator.hasPending())

	h.clk.Advance(6 * time.Second)
	assert.Equal(t, 1, h.index())

	h.sched.ToggleMute()
	assert.False(t, h.sched.State().Muted)
	assert.Equal(t, []bool{true, false, true}, h.narrator.toggles)
	assert.Len(t, h.narrator.spokenTexts(), 2, "unmute does not replay")
}

func TestMinimizeAndRevisions(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sched.Start(scenario(tour.Step{})))

	h.sched.ToggleMinimize()
	assert.True(t, h.sched.State().Minimized)
	h.sched.ToggleMinimize()
	assert.False(t, h.sched.State().Minimized)

	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(t, h.states)
	for i := 1; i < len(h.states); i++ {
		assert.Greater(t, h.states[i].Revision, h.states[i-1].Revision)
	}
}

func TestSafetyTimerRespectsStepSequence(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sched.Start(scenario(tour.Step{}, tour.Step{}, tour.Step{})))

	// a manual skip replaces the first safety timer; only the second step's
	// timer, armed at 2s, may fire
	h.clk.Advance(2 * time.Second)
	h.sched.Advance()
	h.clk.Advance(5999 * time.Millisecond)
	assert.Equal(t, 1, h.index())
	h.clk.Advance(time.Millisecond)
	assert.Equal(t, 2, h.index())
}

// slowSpotlight blocks Refresh until release is closed.
type slowSpotlight struct {
	*journal
	entered chan struct{}
	release chan struct{}
}

func (s *slowSpotlight) Refresh() (page.Rect, bool) {
	s.entered <- struct{}{}
	<-s.release
	return page.Rect{X: 1, Y: 2, Width: 3, Height: 4}, true
}

func TestRefreshSpotlightDoesNotBlockControls(t *testing.T) {
	clk := timing.NewFake()
	j := newJournal(clk, "#input-tlc")
	slow := &slowSpotlight{journal: j, entered: make(chan struct{}), release: make(chan struct{})}
	sched := New(Options{Clock: clk, Narrator: &fakeNarrator{}, Navigator: j, Locator: j, Spotlight: slow})
	defer sched.Close()

	require.NoError(t, sched.Start(scenario(tour.Step{Target: "#input-tlc"}, tour.Step{Target: "#input-tlc"})))
	clk.Advance(600 * time.Millisecond)
	require.NotNil(t, sched.State().Spotlight)

	done := make(chan struct{})
	go func() {
		sched.RefreshSpotlight()
		close(done)
	}()
	<-slow.entered

	sched.ToggleMinimize()
	assert.True(t, sched.State().Minimized)
	sched.RefreshSpotlight()

	// the step changes while the page is being measured
	sched.Advance()
	close(slow.release)
	<-done

	st := sched.State()
	assert.Equal(t, 1, st.Index)
	require.NotNil(t, st.Spotlight)
	assert.Equal(t, page.Rect{X: 6, Y: 6, Width: 108, Height: 28}, *st.Spotlight)
}

func TestPlaybackAgainstDocument(t *testing.T) {
	clk := timing.NewFake()
	doc := page.NewDocument("dashboard", clk)
	doc.Mount("#input-tlc", "receiving", "input", page.Rect{X: 100, Y: 200, Width: 300, Height: 40})

	var typed []string
	doc.AddEventListener(page.EventInput, func(ev page.Event) { typed = append(typed, ev.Value) })

	sched := New(Options{
		Clock:     clk,
		Narrator:  &fakeNarrator{},
		Navigator: doc,
		Locator:   doc,
		Spotlight: spotlight.New(doc, nil, spotlight.DefaultPadding),
	})
	defer sched.Close()

	sc := scenario(tour.Step{
		Target:     "#input-tlc",
		NavigateTo: "receiving",
		Actions:    tour.ActionList{tour.FillAction{Selector: "#input-tlc", Value: "TH-MG-2024-1234"}},
	})
	require.NoError(t, sched.Start(sc))
	assert.NotEmpty(t, sched.Session())

	clk.Advance(500 * time.Millisecond)
	assert.Equal(t, []string{"TH-MG-2024-1234"}, typed)
	node, _ := doc.Node("#input-tlc")
	assert.Equal(t, "TH-MG-2024-1234", node.Value())

	clk.Advance(600 * time.Millisecond)
	st := sched.State()
	require.NotNil(t, st.Spotlight)
	assert.Equal(t, page.Rect{X: 96, Y: 196, Width: 308, Height: 48}, *st.Spotlight)

	node.Resize(page.Rect{X: 100, Y: 300, Width: 300, Height: 40})
	sched.RefreshSpotlight()
	assert.Equal(t, 296.0, sched.State().Spotlight.Y)
}
