package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracetour/internal/page"
	"tracetour/internal/player"
	"tracetour/internal/timing"
	"tracetour/internal/tour"
)

type rehearsalLauncher struct {
	clock    *timing.Fake
	sessions []*player.Scheduler
	fail     error
}

func (l *rehearsalLauncher) Launch(sc *tour.Scenario) (Controls, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	doc := page.Rehearsal(sc, l.clock)
	s := player.New(player.Options{Clock: l.clock, Locator: doc, Navigator: doc})
	if err := s.Start(sc); err != nil {
		return nil, err
	}
	l.sessions = append(l.sessions, s)
	return s, nil
}

func (l *rehearsalLauncher) last() *player.Scheduler {
	return l.sessions[len(l.sessions)-1]
}

func builtins(t *testing.T) []*tour.Scenario {
	t.Helper()
	cat, err := tour.LoadCatalog(tour.Options{IncludeBuiltin: true})
	require.NoError(t, err)
	return cat.List()
}

func newTestModel(t *testing.T, opts Options) (Model, *rehearsalLauncher) {
	t.Helper()
	l := &rehearsalLauncher{clock: timing.NewFake()}
	opts.Theme = ThemeDark
	return NewModel(builtins(t), l, opts), l
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	m, _ = send(t, m, msg)
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestHubListsScenarios(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	assert.Equal(t, "hub", m.Screen())

	view := m.View()
	assert.Contains(t, view, "Receiving Manager")
	assert.Contains(t, view, "Sarah")
}

func TestHubLaunchesSelectedScenario(t *testing.T) {
	m, l := newTestModel(t, Options{})
	m = press(t, m, "down")
	m = press(t, m, "enter")

	require.Equal(t, "overlay", m.Screen())
	require.Len(t, l.sessions, 1)
	st := l.last().State()
	assert.Equal(t, "compliance-officer", st.Scenario.ID)
	assert.True(t, st.Playing)
	assert.Contains(t, m.View(), "Step 1 of")
}

func TestOverlayForwardsControls(t *testing.T) {
	m, l := newTestModel(t, Options{})
	m = press(t, m, "enter")
	s := l.last()

	m = press(t, m, "space")
	assert.False(t, s.State().Playing)
	assert.Contains(t, m.View(), "paused")

	m = press(t, m, "n")
	assert.Equal(t, 1, s.State().Index)

	m = press(t, m, "m")
	assert.True(t, s.State().Muted)
	assert.Contains(t, m.View(), "muted")

	m = press(t, m, "-")
	assert.True(t, s.State().Minimized)
	assert.Contains(t, m.View(), "2/13")
}

func TestCompletionScreenAndReplay(t *testing.T) {
	m, l := newTestModel(t, Options{})
	m = press(t, m, "enter")
	s := l.last()

	for i := 0; i < s.State().Total(); i++ {
		m = press(t, m, "n")
	}
	require.True(t, s.State().Complete)
	assert.Equal(t, "complete", m.Screen())
	assert.Contains(t, m.View(), "Demo Complete")

	m = press(t, m, "r")
	assert.Equal(t, "overlay", m.Screen())
	assert.Equal(t, 0, s.State().Index)
	assert.True(t, s.State().Playing)

	for i := 0; i < s.State().Total(); i++ {
		m = press(t, m, "n")
	}
	m = press(t, m, "enter")
	assert.Equal(t, "hub", m.Screen())
	assert.True(t, s.State().Closed)
}

func TestCloseReturnsToHub(t *testing.T) {
	m, l := newTestModel(t, Options{})
	m = press(t, m, "enter")
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, isQuit(cmd))
	assert.Equal(t, "hub", m.Screen())
	assert.True(t, l.last().State().Closed)
}

func TestDirectSessionQuitsOnClose(t *testing.T) {
	scenarios := builtins(t)
	l := &rehearsalLauncher{clock: timing.NewFake()}
	m := NewModel(scenarios, l, Options{Direct: scenarios[2]})

	m, _ = send(t, m, launchMsg{scenario: scenarios[2]})
	require.Equal(t, "overlay", m.Screen())
	assert.Equal(t, "exporter-mobile", l.last().State().Scenario.ID)

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, isQuit(cmd))
}

func TestStaleStateIsDropped(t *testing.T) {
	m, l := newTestModel(t, Options{})
	m = press(t, m, "enter")
	m = press(t, m, "n")
	current := l.last().State()

	stale := current
	stale.Revision = 1
	stale.Index = 0
	m, _ = send(t, m, StateMsg(stale))
	assert.Contains(t, m.View(), "Step 2 of")

	other := current
	other.Session = "another-session"
	other.Revision = current.Revision + 10
	other.Index = 5
	m, _ = send(t, m, StateMsg(other))
	assert.Contains(t, m.View(), "Step 2 of")
}

func TestCopyNarration(t *testing.T) {
	var copied string
	m, l := newTestModel(t, Options{CopyText: func(s string) error {
		copied = s
		return nil
	}})
	m = press(t, m, "enter")
	m = press(t, m, "c")

	step, ok := l.last().State().Step()
	require.True(t, ok)
	assert.Equal(t, step.Narration, copied)
	assert.Contains(t, m.View(), "Narration copied")
}

func TestLaunchFailureShowsToast(t *testing.T) {
	m, l := newTestModel(t, Options{})
	l.fail = errors.New("browser unavailable")
	m = press(t, m, "enter")

	assert.Equal(t, "hub", m.Screen())
	assert.Contains(t, m.View(), "browser unavailable")
}

func TestRefreshMeasuresOffTheUpdateLoop(t *testing.T) {
	m, l := newTestModel(t, Options{})

	_, cmd := send(t, m, refreshMsg(time.Now()))
	assert.NotNil(t, cmd, "hub keeps the refresh ticking")

	m = press(t, m, "enter")
	_, cmd = send(t, m, refreshMsg(time.Now()))
	require.NotNil(t, cmd)

	msg := refreshSpotlight(l.last())()
	st, ok := msg.(StateMsg)
	require.True(t, ok)
	assert.Equal(t, l.last().Session(), st.Session)
}

func TestLaunchClearsPreviousToasts(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m, _ = send(t, m, DiagnosticMsg(player.Diagnostic{Step: 3, Message: "narration did not finish"}))
	require.Contains(t, m.View(), "Step 3: narration did not finish")

	m = press(t, m, "enter")
	m = press(t, m, "q")
	assert.NotContains(t, m.View(), "narration did not finish")
}

func TestCatalogReloadAndDiagnostics(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = press(t, m, "down")
	m = press(t, m, "down")

	scenarios := builtins(t)[:1]
	m, _ = send(t, m, CatalogReloadedMsg{Scenarios: scenarios})
	assert.Equal(t, 0, m.cursor)
	assert.Contains(t, m.View(), "Reloaded 1 scenarios")

	m, _ = send(t, m, CatalogReloadedMsg{Err: errors.New("bad yaml")})
	assert.Contains(t, m.View(), "bad yaml")

	m, _ = send(t, m, DiagnosticMsg(player.Diagnostic{
		Kind:    player.DiagnosticNarrationTimeout,
		Step:    4,
		Message: "narration did not finish",
	}))
	assert.Contains(t, m.View(), "Step 4: narration did not finish")
}

func TestHubDetailIsCached(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	first := m.detail
	require.NotEmpty(t, first)

	m = press(t, m, "down")
	m = press(t, m, "k")
	assert.Equal(t, first, m.detail)

	hits, _ := m.rendered.Stats()
	assert.Equal(t, 1, hits)

	m, _ = send(t, m, CatalogReloadedMsg{Scenarios: builtins(t)})
	assert.Equal(t, 1, m.rendered.Len())
}

func TestCatalogMarkdown(t *testing.T) {
	md := CatalogMarkdown(builtins(t))
	assert.Contains(t, md, "| `receiving-manager` |")
	assert.Contains(t, md, "| `exporter-mobile` |")
}

func TestInitials(t *testing.T) {
	sc := &tour.Scenario{Presenter: tour.Presenter{Name: "ana lima souza"}}
	assert.Equal(t, "AL", initials(sc))
	sc.Presenter.AvatarInitials = "SJ"
	assert.Equal(t, "SJ", initials(sc))
	assert.Equal(t, "?", initials(&tour.Scenario{}))
}

func TestProgressBar(t *testing.T) {
	s := DefaultStyles()
	bar := s.RenderProgressBar(0.5, 10)
	assert.Equal(t, 5, countRune(bar, '█'))
	assert.Equal(t, 5, countRune(bar, '░'))
	assert.Equal(t, "Step 3 of 13", StepCounter(2, 13))
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}
