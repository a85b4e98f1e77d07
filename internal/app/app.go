// Package app wires configuration, the scenario catalog, the browser and the
// narrator into playback sessions driven by the terminal shell.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tracetour/internal/browser"
	"tracetour/internal/config"
	"tracetour/internal/logging"
	"tracetour/internal/narration"
	"tracetour/internal/page"
	"tracetour/internal/player"
	"tracetour/internal/spotlight"
	"tracetour/internal/timing"
	"tracetour/internal/tour"
	"tracetour/internal/ui"
	"tracetour/internal/watcher"
)

// App is the running presenter console.
type App struct {
	config *config.Config
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	clock    timing.Clock
	logPath  string
	catalog  *tour.Catalog
	watcher  *watcher.Watcher
	browser  *browser.Session
	narrator narration.Narrator

	mu            sync.Mutex
	program       *tea.Program
	running       bool
	current       *player.Scheduler
	forceExit     *time.Timer
	signalCleanup func()
	shutdownOnce  sync.Once
}

// New creates a new application instance.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	return NewBuilder(ctx, cfg, opts).Build()
}

// Catalog returns the loaded scenarios.
func (a *App) Catalog() *tour.Catalog {
	return a.catalog
}

// LogPath returns the log file path, empty when file logging is off.
func (a *App) LogPath() string {
	return a.logPath
}

// Timings converts playback config into scheduler timings.
func Timings(p config.PlaybackConfig) player.Timings {
	return player.Timings{
		SettleDelay:    p.SettleDelay,
		SpotlightDelay: p.SpotlightDelay,
		NaturalPause:   p.NaturalPause,
		SafetyPad:      p.SafetyPad,
		MinNarration:   p.MinNarration,
		NarrationPad:   p.NarrationPad,
		WordsPerSecond: p.WordsPerSecond,
	}
}

// Launch starts a playback session for sc, closing any previous one. It
// implements ui.Launcher.
func (a *App) Launch(sc *tour.Scenario) (ui.Controls, error) {
	if err := a.ctx.Err(); err != nil {
		return nil, err
	}

	var (
		locator   page.Locator
		navigator page.Navigator
		surface   spotlight.Surface
	)
	if a.browser != nil {
		locator, navigator, surface = a.browser, a.browser, a.browser
	} else {
		doc := page.Rehearsal(sc, a.clock)
		locator, navigator, surface = doc, doc, spotlight.NopSurface{}
	}

	s := player.New(player.Options{
		Clock:        a.clock,
		Narrator:     a.narrator,
		Navigator:    navigator,
		Locator:      locator,
		Spotlight:    spotlight.New(locator, surface, a.config.Playback.SpotlightPadding),
		Timings:      Timings(a.config.Playback),
		Muted:        a.config.Narration.Muted || a.opts.Muted,
		Minimized:    a.config.UI.StartMinimized,
		OnChange:     func(st player.State) { a.send(ui.StateMsg(st)) },
		OnDiagnostic: a.onDiagnostic,
	})

	a.mu.Lock()
	prev := a.current
	a.current = s
	a.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	if err := s.Start(sc); err != nil {
		return nil, err
	}
	logging.Info("session started", "session", s.Session(), "scenario", sc.ID, "dry_run", a.browser == nil)
	return s, nil
}

func (a *App) onDiagnostic(d player.Diagnostic) {
	logging.Warn("playback diagnostic", "kind", d.Kind, "scenario", d.Scenario, "step", d.Step, "message", d.Message)
	a.send(ui.DiagnosticMsg(d))
}

// send delivers msg to the shell without blocking. Scheduler observers may
// run on the bubbletea goroutine itself, which must never wait on its own
// message queue.
func (a *App) send(msg tea.Msg) {
	a.mu.Lock()
	p, running := a.program, a.running
	a.mu.Unlock()
	if p == nil || !running {
		return
	}
	go p.Send(msg)
}

// reloadCatalog re-reads the scenario directories after a change.
func (a *App) reloadCatalog(events []watcher.Event) {
	for _, ev := range events {
		logging.Debug("scenario file changed", "path", ev.Path, "op", ev.Operation)
	}
	err := a.catalog.Reload()
	if err != nil {
		logging.Warn("scenario reload failed", "error", err)
	} else {
		logging.Info("scenarios reloaded", "count", a.catalog.Len())
	}
	a.send(ui.CatalogReloadedMsg{Scenarios: a.catalog.List(), Err: err})
}

// Run shows the shell until the presenter quits. A non-nil direct scenario
// starts playing immediately and quits when closed.
func (a *App) Run(direct *tour.Scenario) error {
	defer a.Shutdown()

	model := ui.NewModel(a.catalog.List(), a, ui.Options{
		Theme:             ui.ThemeType(a.config.UI.Theme),
		ShowSpotlightInfo: a.config.UI.ShowSpotlightInfo,
		Direct:            direct,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(a.ctx))

	a.mu.Lock()
	a.program = program
	a.running = true
	a.mu.Unlock()

	a.signalCleanup = a.setupSignalHandler()

	if a.watcher != nil {
		a.watcher.SetOnChange(a.reloadCatalog)
		if err := a.watcher.Start(); err != nil {
			logging.Warn("failed to start scenario watcher", "error", err)
		}
	}

	final, err := program.Run()
	if m, ok := final.(ui.Model); ok {
		m.Cleanup()
	}

	a.mu.Lock()
	a.running = false
	a.mu.Unlock()

	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// Shutdown closes the current session and releases the browser and the
// watcher. It is safe to call more than once.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultGracefulShutdown)
		defer cancel()
		a.gracefulShutdown(ctx)
	})
}
