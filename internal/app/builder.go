package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tracetour/internal/browser"
	"tracetour/internal/config"
	"tracetour/internal/logging"
	"tracetour/internal/narration"
	"tracetour/internal/timing"
	"tracetour/internal/tour"
	"tracetour/internal/watcher"
)

// Options adjust a build for one invocation.
type Options struct {
	// DryRun plays against an in-memory rehearsal document instead of a
	// browser.
	DryRun bool
	// Muted starts every session muted regardless of config.
	Muted bool
	// Clock drives playback. Defaults to the system clock.
	Clock timing.Clock
	// Catalog replaces catalog loading, mainly for tests.
	Catalog *tour.Catalog
}

// Builder provides a fluent interface for constructing App instances.
type Builder struct {
	cfg    *config.Config
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	clock    timing.Clock
	logPath  string
	catalog  *tour.Catalog
	watcher  *watcher.Watcher
	browser  *browser.Session
	narrator narration.Narrator

	mu          sync.Mutex
	buildErrors []error
}

// NewBuilder creates a new Builder with the given config.
func NewBuilder(ctx context.Context, cfg *config.Config, opts Options) *Builder {
	ctx, cancel := context.WithCancel(ctx)
	return &Builder{
		cfg:    cfg,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		clock:  timing.OrSystem(opts.Clock),
	}
}

// Build constructs the App instance, returning any errors encountered.
func (b *Builder) Build() (*App, error) {
	// Logging stays disabled on failure; stderr belongs to the TUI.
	_ = b.initLogging()
	if err := b.initCatalog(); err != nil {
		b.addError(err)
		return nil, b.fail()
	}
	if err := b.initWatcher(); err != nil {
		// Hot reload is a convenience; playback works without it.
		logging.Warn("scenario watcher unavailable", "error", err)
	}
	if err := b.initBrowser(); err != nil {
		b.addError(err)
		return nil, b.fail()
	}
	b.initNarrator()
	return b.assembleApp(), nil
}

// fail releases whatever was built and returns the combined error.
func (b *Builder) fail() error {
	if b.watcher != nil {
		_ = b.watcher.Stop()
	}
	if b.browser != nil {
		b.browser.Close()
	}
	b.cancel()
	return b.finalizeError()
}

func (b *Builder) initLogging() error {
	if !b.cfg.Logging.File {
		return nil
	}
	path, err := logging.EnableFileLogging(config.ConfigDir(), logging.ParseLevel(b.cfg.Logging.Level))
	if err != nil {
		return fmt.Errorf("failed to enable file logging: %w", err)
	}
	b.logPath = path
	return nil
}

func (b *Builder) initCatalog() error {
	if b.opts.Catalog != nil {
		b.catalog = b.opts.Catalog
		return nil
	}
	catalog, err := tour.LoadCatalog(tour.Options{
		IncludeBuiltin: b.cfg.Scenarios.IncludeBuiltin,
		Dirs:           b.cfg.Scenarios.Dirs,
		Pattern:        b.cfg.Scenarios.Pattern,
	})
	if err != nil {
		return fmt.Errorf("failed to load scenarios: %w", err)
	}
	if catalog.Len() == 0 {
		return fmt.Errorf("no scenarios found in %s", strings.Join(b.cfg.Scenarios.Dirs, ", "))
	}
	b.catalog = catalog
	logging.Info("scenarios loaded", "count", catalog.Len(), "dirs", b.cfg.Scenarios.Dirs)
	return nil
}

func (b *Builder) initWatcher() error {
	sc := b.cfg.Scenarios
	if !sc.Watch || len(sc.Dirs) == 0 || b.opts.Catalog != nil {
		return nil
	}
	w, err := watcher.NewWatcher(b.catalog.Dirs(), watcher.Config{
		Enabled:    true,
		DebounceMs: sc.DebounceMs,
		MaxWatches: config.DefaultMaxWatches,
		Pattern:    sc.Pattern,
	})
	if err != nil {
		return err
	}
	b.watcher = w
	return nil
}

func (b *Builder) initBrowser() error {
	if b.opts.DryRun {
		return nil
	}
	s, err := browser.Open(b.ctx, b.cfg.Browser)
	if err != nil {
		return err
	}
	b.browser = s
	return nil
}

func (b *Builder) initNarrator() {
	n := b.cfg.Narration
	perChar := time.Duration(n.MsPerChar) * time.Millisecond

	switch {
	case n.Engine == config.EngineBrowser && b.browser != nil:
		b.narrator = browser.NewSpeech(b.browser, b.clock, perChar)
	case n.Engine == config.EngineCommand:
		cmd := narration.NewCommand(narration.CommandConfig{
			Command:          n.Command,
			Args:             n.Args,
			BaseWPM:          config.DefaultBaseWPM,
			Rate:             n.Rate,
			PerChar:          perChar,
			FailureThreshold: n.FailureThreshold,
			ResetTimeout:     n.ResetTimeout,
		}, b.clock, nil)
		if err := cmd.Check(); err != nil {
			logging.Warn("tts command unavailable, narration will be simulated", "command", n.Command, "error", err)
		}
		b.narrator = cmd
	default:
		b.narrator = narration.NewSilent(b.clock, perChar)
	}
	b.narrator.SetRate(n.Rate)
}

func (b *Builder) assembleApp() *App {
	return &App{
		config:   b.cfg,
		opts:     b.opts,
		ctx:      b.ctx,
		cancel:   b.cancel,
		clock:    b.clock,
		logPath:  b.logPath,
		catalog:  b.catalog,
		watcher:  b.watcher,
		browser:  b.browser,
		narrator: b.narrator,
	}
}

// addError records a non-fatal error during build.
func (b *Builder) addError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buildErrors = append(b.buildErrors, err)
}

// finalizeError combines all build errors into a single error.
func (b *Builder) finalizeError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch len(b.buildErrors) {
	case 0:
		return nil
	case 1:
		return b.buildErrors[0]
	}
	msg := fmt.Sprintf("app build failed with %d error(s)", len(b.buildErrors))
	for i, err := range b.buildErrors {
		msg += fmt.Sprintf("\n  %d. %s", i+1, err.Error())
	}
	return fmt.Errorf("%s", msg)
}
