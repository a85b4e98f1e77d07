package config

import "time"

// Config represents the main application configuration.
type Config struct {
	Playback  PlaybackConfig  `yaml:"playback"`
	Narration NarrationConfig `yaml:"narration"`
	Browser   BrowserConfig   `yaml:"browser"`
	Scenarios ScenariosConfig `yaml:"scenarios"`
	UI        UIConfig        `yaml:"ui"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Runtime version information
	Version string `yaml:"-"`
}

// PlaybackConfig holds the step scheduler timings.
type PlaybackConfig struct {
	Preset           string        `yaml:"preset,omitempty"`  // Named pace preset applied over these values
	SettleDelay      time.Duration `yaml:"settle_delay"`      // Wait after a view switch before actions run
	SpotlightDelay   time.Duration `yaml:"spotlight_delay"`   // Wait after the last action before spotlighting
	NaturalPause     time.Duration `yaml:"natural_pause"`     // Pause between narration end and auto-advance
	SafetyPad        time.Duration `yaml:"safety_pad"`        // Added to the narration estimate for the safety timer
	MinNarration     time.Duration `yaml:"min_narration"`     // Floor of the narration estimate
	NarrationPad     time.Duration `yaml:"narration_pad"`     // Added to every narration estimate
	WordsPerSecond   float64       `yaml:"words_per_second"`  // Speaking speed assumed by the estimate
	SpotlightPadding float64       `yaml:"spotlight_padding"` // Pixels added around the spotlight target
}

// Narration engines.
const (
	EngineBrowser = "browser"
	EngineCommand = "command"
	EngineSilent  = "silent"
)

// NarrationConfig holds text-to-speech settings.
type NarrationConfig struct {
	Engine           string        `yaml:"engine"`            // browser, command or silent
	Muted            bool          `yaml:"muted"`             // Start sessions muted
	Rate             float64       `yaml:"rate"`              // Speech rate multiplier
	Command          string        `yaml:"command"`           // TTS binary for the command engine
	Args             []string      `yaml:"args"`              // Supports {text}, {rate} and {wpm}
	FailureThreshold int           `yaml:"failure_threshold"` // TTS failures before falling back to silence
	ResetTimeout     time.Duration `yaml:"reset_timeout"`     // How long the fallback lasts
	MsPerChar        int           `yaml:"mute_ms_per_char"`  // Simulated speaking time per character
}

// BrowserConfig holds settings for the driven demo application.
type BrowserConfig struct {
	AppURL         string        `yaml:"app_url"`
	RemoteURL      string        `yaml:"remote_url,omitempty"` // Attach to an existing DevTools websocket
	ExecPath       string        `yaml:"exec_path,omitempty"`
	Headless       bool          `yaml:"headless"`
	ActionTimeout  time.Duration `yaml:"action_timeout"`
	NavigateScript string        `yaml:"navigate_script"` // %s is replaced by the JSON-quoted view id
	WindowWidth    int           `yaml:"window_width"`
	WindowHeight   int           `yaml:"window_height"`
}

// ScenariosConfig holds scenario catalog settings.
type ScenariosConfig struct {
	Dirs           []string `yaml:"dirs"`
	Pattern        string   `yaml:"pattern"`
	Watch          bool     `yaml:"watch"`
	DebounceMs     int      `yaml:"debounce_ms"`
	IncludeBuiltin bool     `yaml:"include_builtin"`
}

// UIConfig holds UI-related settings.
type UIConfig struct {
	Theme             string `yaml:"theme"` // dark or macos
	StartMinimized    bool   `yaml:"start_minimized"`
	ShowSpotlightInfo bool   `yaml:"show_spotlight_info"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // Logging level: debug, info, warn, error
	File  bool   `yaml:"file"`  // Write tracetour.log into the config dir
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Playback: PlaybackConfig{
			SettleDelay:      DefaultSettleDelay,
			SpotlightDelay:   DefaultSpotlightDelay,
			NaturalPause:     DefaultNaturalPause,
			SafetyPad:        DefaultSafetyPad,
			MinNarration:     DefaultMinNarration,
			NarrationPad:     DefaultNarrationPad,
			WordsPerSecond:   DefaultWordsPerSecond,
			SpotlightPadding: DefaultSpotlightPadding,
		},
		Narration: NarrationConfig{
			Engine:           EngineBrowser,
			Rate:             1.0,
			Command:          "espeak-ng",
			Args:             []string{"-s", "{wpm}", "{text}"},
			FailureThreshold: DefaultFailureThreshold,
			ResetTimeout:     DefaultResetTimeout,
			MsPerChar:        DefaultMsPerChar,
		},
		Browser: BrowserConfig{
			AppURL:         DefaultAppURL,
			ActionTimeout:  DefaultActionTimeout,
			NavigateScript: DefaultNavigateScript,
			WindowWidth:    1440,
			WindowHeight:   900,
		},
		Scenarios: ScenariosConfig{
			Pattern:        "**/*.{yaml,yml}",
			Watch:          true,
			DebounceMs:     DefaultDebounceMs,
			IncludeBuiltin: true,
		},
		UI: UIConfig{
			Theme:             "dark",
			ShowSpotlightInfo: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  true,
		},
	}
}
