package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from file and environment variables. An empty
// path means the default location; a missing default file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = getConfigPath()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	loadFromEnv(cfg)

	if err := Normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getConfigPath returns the path to the config file.
func getConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// ConfigDir returns the tracetour configuration directory.
func ConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "tracetour")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	if runtime.GOOS == "darwin" {
		appSupport := filepath.Join(homeDir, "Library", "Application Support", "tracetour")
		if _, err := os.Stat(appSupport); err == nil {
			return appSupport
		}
	}
	return filepath.Join(homeDir, ".config", "tracetour")
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Expand environment variables in the config file
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadFromEnv loads configuration from environment variables.
func loadFromEnv(cfg *Config) {
	if appURL := os.Getenv("TRACETOUR_APP_URL"); appURL != "" {
		cfg.Browser.AppURL = appURL
	}
	if remote := os.Getenv("TRACETOUR_CHROME_URL"); remote != "" {
		cfg.Browser.RemoteURL = remote
	}
	if engine := os.Getenv("TRACETOUR_NARRATION"); engine != "" {
		cfg.Narration.Engine = engine
	}
	if level := os.Getenv("TRACETOUR_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if dirs := os.Getenv("TRACETOUR_SCENARIOS"); dirs != "" {
		cfg.Scenarios.Dirs = append(cfg.Scenarios.Dirs, filepath.SplitList(dirs)...)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	p := c.Playback
	for _, d := range []struct {
		name  string
		value float64
	}{
		{"settle_delay", float64(p.SettleDelay)},
		{"spotlight_delay", float64(p.SpotlightDelay)},
		{"natural_pause", float64(p.NaturalPause)},
		{"safety_pad", float64(p.SafetyPad)},
		{"min_narration", float64(p.MinNarration)},
		{"narration_pad", float64(p.NarrationPad)},
		{"words_per_second", p.WordsPerSecond},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%w: playback.%s", ErrNonPositiveTiming, d.name)
		}
	}
	if p.SpotlightPadding < 0 {
		return fmt.Errorf("%w: playback padding", ErrNonPositiveTiming)
	}

	switch c.Narration.Engine {
	case EngineBrowser, EngineSilent:
	case EngineCommand:
		if c.Narration.Command == "" {
			return ErrMissingCommand
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, c.Narration.Engine)
	}
	if c.Narration.Rate <= 0 || c.Narration.FailureThreshold <= 0 || c.Narration.MsPerChar <= 0 {
		return fmt.Errorf("%w: narration", ErrNonPositiveTiming)
	}

	if c.Narration.Engine == EngineBrowser && c.Browser.AppURL == "" && c.Browser.RemoteURL == "" {
		return ErrMissingAppURL
	}
	if c.Browser.ActionTimeout <= 0 {
		return fmt.Errorf("%w: browser.action_timeout", ErrNonPositiveTiming)
	}
	return nil
}

// Error types for configuration validation.
type ConfigError string

func (e ConfigError) Error() string {
	return string(e)
}

const (
	ErrNonPositiveTiming ConfigError = "timing values must be positive"
	ErrUnknownEngine     ConfigError = "unknown narration engine (use browser, command or silent)"
	ErrMissingCommand    ConfigError = "narration.command is required for the command engine"
	ErrMissingAppURL     ConfigError = "browser narration needs browser.app_url or TRACETOUR_CHROME_URL"
)

// GetConfigPath returns the path to the config file (exported for external use).
func GetConfigPath() string {
	return getConfigPath()
}

// Save writes the configuration to path, or to the default location when
// path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		path = getConfigPath()
	}
	if path == "" {
		return fmt.Errorf("could not determine config path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to a temp file then rename so a crash never leaves half a file.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
