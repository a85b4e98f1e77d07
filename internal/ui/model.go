// Package ui is the presenter's terminal shell: a hub of demo scenarios,
// the playback overlay with its controls and the completion screen. All
// playback decisions belong to the scheduler; the shell renders the latest
// snapshot and forwards key presses.
package ui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"tracetour/internal/cache"
	"tracetour/internal/player"
	"tracetour/internal/tour"
)

// Controls is the playback surface the shell drives.
type Controls interface {
	TogglePlay()
	Advance()
	ToggleMute()
	ToggleMinimize()
	Restart()
	Close()
	RefreshSpotlight()
	State() player.State
}

// Launcher starts a playback session for a scenario.
type Launcher interface {
	Launch(sc *tour.Scenario) (Controls, error)
}

// Options configures the shell.
type Options struct {
	Theme             ThemeType
	ShowSpotlightInfo bool
	// Direct is played immediately; closing it quits instead of returning
	// to the hub.
	Direct *tour.Scenario
	// CopyText writes to the clipboard. Defaults to the system clipboard.
	CopyText func(string) error
	// RefreshInterval paces toast expiry and spotlight re-measuring.
	RefreshInterval time.Duration
}

type screen int

const (
	screenHub screen = iota
	screenOverlay
	screenComplete
)

func (s screen) String() string {
	switch s {
	case screenHub:
		return "hub"
	case screenOverlay:
		return "overlay"
	case screenComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// launchMsg asks the model to start a session from inside Update.
type launchMsg struct {
	scenario *tour.Scenario
}

// Model is the bubbletea model of the shell.
type Model struct {
	opts     Options
	styles   *Styles
	keys     KeyMap
	launcher Launcher

	scenarios []*tour.Scenario
	cursor    int
	detail    string
	rendered  *cache.LRU[string, string]

	controls Controls
	state    player.State
	screen   screen
	direct   bool

	toasts   *ToastManager
	spinner  spinner.Model
	viewport viewport.Model

	width    int
	height   int
	quitting bool
}

// NewModel creates the shell.
func NewModel(scenarios []*tour.Scenario, launcher Launcher, opts Options) Model {
	styles := DefaultStyles()
	if opts.Theme != "" {
		styles.ApplyTheme(opts.Theme)
	}
	if opts.CopyText == nil {
		opts.CopyText = clipboard.WriteAll
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 500 * time.Millisecond
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	m := Model{
		opts:      opts,
		styles:    styles,
		keys:      DefaultKeyMap(),
		launcher:  launcher,
		scenarios: scenarios,
		rendered:  cache.NewLRU[string, string](32),
		toasts:    NewToastManager(styles),
		spinner:   s,
		viewport:  viewport.New(60, 4),
		width:     80,
		height:    24,
		direct:    opts.Direct != nil,
	}
	m.renderDetail()
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, scheduleRefresh(m.opts.RefreshInterval)}
	if m.opts.Direct != nil {
		sc := m.opts.Direct
		cmds = append(cmds, func() tea.Msg { return launchMsg{scenario: sc} })
	}
	return tea.Batch(cmds...)
}

// Update handles TUI events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.contentWidth() - 4
		m.renderDetail()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshMsg:
		m.toasts.Update()
		next := scheduleRefresh(m.opts.RefreshInterval)
		if m.controls != nil && m.screen == screenOverlay {
			return m, tea.Batch(next, refreshSpotlight(m.controls))
		}
		return m, next

	case launchMsg:
		m.launch(msg.scenario)
		return m, nil

	case StateMsg:
		m.apply(player.State(msg))
		return m, m.quitIfDone()

	case DiagnosticMsg:
		m.toasts.ShowDiagnostic(player.Diagnostic(msg))
		return m, nil

	case CatalogReloadedMsg:
		if msg.Err != nil {
			m.toasts.ShowError("Scenario reload failed: " + msg.Err.Error())
			return m, nil
		}
		m.scenarios = msg.Scenarios
		m.rendered.Purge()
		if m.cursor >= len(m.scenarios) {
			m.cursor = max(len(m.scenarios)-1, 0)
		}
		m.renderDetail()
		m.toasts.ShowInfo(fmt.Sprintf("Reloaded %d scenarios", len(m.scenarios)))
		return m, nil

	case ErrorMsg:
		m.toasts.ShowError(msg.Error())
		return m, nil

	case tea.KeyMsg:
		m.handleKey(msg)
		return m, m.quitIfDone()
	}
	return m, nil
}

func (m *Model) quitIfDone() tea.Cmd {
	if m.quitting {
		return tea.Quit
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	if key.Matches(msg, m.keys.Quit) {
		m.closeSession()
		m.quitting = true
		return
	}

	switch m.screen {
	case screenHub:
		m.handleHubKeys(msg)
	case screenOverlay:
		m.handleOverlayKeys(msg)
	case screenComplete:
		m.handleCompleteKeys(msg)
	}
}

func (m *Model) handleHubKeys(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.renderDetail()
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.scenarios)-1 {
			m.cursor++
			m.renderDetail()
		}
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(m.scenarios) {
			m.launch(m.scenarios[m.cursor])
		}
	case key.Matches(msg, m.keys.Close):
		m.quitting = true
	}
}

func (m *Model) handleOverlayKeys(msg tea.KeyMsg) {
	if m.controls == nil {
		return
	}
	switch {
	case key.Matches(msg, m.keys.Play):
		m.controls.TogglePlay()
	case key.Matches(msg, m.keys.Skip):
		m.controls.Advance()
	case key.Matches(msg, m.keys.Mute):
		m.controls.ToggleMute()
	case key.Matches(msg, m.keys.Minimize):
		m.controls.ToggleMinimize()
	case key.Matches(msg, m.keys.Copy):
		m.copyNarration()
	case key.Matches(msg, m.keys.Up):
		m.viewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.viewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Close):
		m.closeSession()
		return
	}
	m.sync()
}

func (m *Model) handleCompleteKeys(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Select):
		m.direct = false
		m.closeSession()
	case key.Matches(msg, m.keys.Replay):
		if m.controls != nil {
			m.controls.Restart()
			m.sync()
		}
	case key.Matches(msg, m.keys.Close):
		m.closeSession()
	}
}

func (m *Model) launch(sc *tour.Scenario) {
	if sc == nil || m.launcher == nil {
		return
	}
	m.closeSession()
	m.toasts.Clear()
	controls, err := m.launcher.Launch(sc)
	if err != nil {
		m.toasts.ShowError(fmt.Sprintf("Cannot start %s: %v", sc.ID, err))
		return
	}
	m.controls = controls
	m.state = controls.State()
	m.screen = screenOverlay
	m.refreshNarration()
}

// closeSession ends playback and returns to the hub, or quits when the
// session was started directly.
func (m *Model) closeSession() {
	if m.controls == nil {
		return
	}
	m.controls.Close()
	m.controls = nil
	m.state = player.State{}
	m.screen = screenHub
	if m.direct {
		m.quitting = true
	}
}

// sync pulls the scheduler's snapshot after a control call so the view
// never lags behind a key press.
func (m *Model) sync() {
	if m.controls != nil {
		m.apply(m.controls.State())
	}
}

// apply adopts st if it belongs to the current session and is newer.
func (m *Model) apply(st player.State) {
	if m.controls == nil || st.Session != m.state.Session {
		return
	}
	if st.Revision < m.state.Revision {
		return
	}
	prevIndex := m.state.Index
	m.state = st
	switch {
	case st.Complete:
		m.screen = screenComplete
	case st.Closed:
		m.controls = nil
		m.state = player.State{}
		m.screen = screenHub
		if m.direct {
			m.quitting = true
		}
	default:
		m.screen = screenOverlay
	}
	if st.Index != prevIndex || m.viewport.TotalLineCount() == 0 {
		m.refreshNarration()
	}
}

func (m *Model) refreshNarration() {
	step, ok := m.state.Step()
	if !ok {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.styles.Narration.Width(m.viewport.Width).Render(step.Narration))
	m.viewport.GotoTop()
}

func (m *Model) copyNarration() {
	step, ok := m.state.Step()
	if !ok {
		return
	}
	if err := m.opts.CopyText(step.Narration); err != nil {
		m.toasts.ShowError("Copy failed: " + err.Error())
		return
	}
	m.toasts.ShowSuccess("Narration copied")
}

func (m *Model) renderDetail() {
	if m.cursor >= len(m.scenarios) {
		m.detail = ""
		return
	}
	sc := m.scenarios[m.cursor]
	width := m.contentWidth() - 4
	key := fmt.Sprintf("%s@%d", sc.ID, width)
	m.detail = m.rendered.GetOrCompute(key, func() string {
		return RenderMarkdown(ScenarioMarkdown(sc), m.styles.Markdown, width)
	})
}

func (m *Model) contentWidth() int {
	w := m.width - 4
	if w > 100 {
		w = 100
	}
	if w < 30 {
		w = 30
	}
	return w
}

// Cleanup closes any session still open. Call it after the program exits.
func (m Model) Cleanup() {
	if m.controls != nil {
		m.controls.Close()
	}
}

// Screen names the visible screen.
func (m Model) Screen() string {
	return m.screen.String()
}
