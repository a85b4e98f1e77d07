package config

import "time"

// Default configuration values.
const (
	// Step scheduler timings
	DefaultSettleDelay      = 500 * time.Millisecond
	DefaultSpotlightDelay   = 600 * time.Millisecond
	DefaultNaturalPause     = 1200 * time.Millisecond
	DefaultSafetyPad        = 2000 * time.Millisecond
	DefaultMinNarration     = 3000 * time.Millisecond
	DefaultNarrationPad     = 1000 * time.Millisecond
	DefaultWordsPerSecond   = 3.0
	DefaultSpotlightPadding = 4.0

	// Narration
	DefaultMsPerChar        = 50
	DefaultFailureThreshold = 3
	DefaultResetTimeout     = 30 * time.Second
	DefaultBaseWPM          = 175

	// Browser
	DefaultAppURL         = "http://localhost:5173"
	DefaultActionTimeout  = 3 * time.Second
	DefaultNavigateScript = `(window.__tracetourNavigate || function (v) { window.location.hash = v; })(%s)`

	// Scenario watching
	DefaultDebounceMs = 300
	DefaultMaxWatches = 256

	// Shutdown
	DefaultGracefulShutdown = 5 * time.Second
	DefaultForcedShutdown   = 10 * time.Second
)
