package config

import (
	"fmt"
	"strings"
)

// engineAliases maps the loose engine names people type into config files.
var engineAliases = map[string]string{
	"":       EngineBrowser,
	"web":    EngineBrowser,
	"chrome": EngineBrowser,
	"espeak": EngineCommand,
	"say":    EngineCommand,
	"tts":    EngineCommand,
	"none":   EngineSilent,
	"off":    EngineSilent,
	"mute":   EngineSilent,
}

// Normalize makes the configuration consistent: engine aliases are resolved,
// the pace preset is applied and scenario directories are expanded.
func Normalize(cfg *Config) error {
	engine := strings.ToLower(strings.TrimSpace(cfg.Narration.Engine))
	if canonical, ok := engineAliases[engine]; ok {
		engine = canonical
	}
	cfg.Narration.Engine = engine

	// The macOS say binary has no espeak-style flags.
	if engine == EngineCommand && cfg.Narration.Command == "say" && isDefaultArgs(cfg.Narration.Args) {
		cfg.Narration.Args = []string{"-r", "{wpm}", "{text}"}
	}

	if cfg.Playback.Preset != "" {
		if !cfg.Playback.ApplyPreset(cfg.Playback.Preset) {
			return fmt.Errorf("unknown pace preset: %s (available: %s)",
				cfg.Playback.Preset,
				strings.Join(ListPresets(), ", "))
		}
	}

	for i, dir := range cfg.Scenarios.Dirs {
		cfg.Scenarios.Dirs[i] = ExpandHome(dir)
	}
	if cfg.Scenarios.Pattern == "" {
		cfg.Scenarios.Pattern = DefaultConfig().Scenarios.Pattern
	}
	return nil
}

func isDefaultArgs(args []string) bool {
	def := DefaultConfig().Narration.Args
	if len(args) != len(def) {
		return false
	}
	for i := range args {
		if args[i] != def[i] {
			return false
		}
	}
	return true
}
