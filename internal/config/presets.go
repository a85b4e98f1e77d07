package config

import (
	"sort"
	"time"
)

// PacePreset scales the scheduler timings for a kind of audience.
type PacePreset struct {
	SettleDelay    time.Duration
	SpotlightDelay time.Duration
	NaturalPause   time.Duration
	WordsPerSecond float64
}

// PacePresets contains the named playback paces.
var PacePresets = map[string]PacePreset{
	"standard": {
		SettleDelay:    DefaultSettleDelay,
		SpotlightDelay: DefaultSpotlightDelay,
		NaturalPause:   DefaultNaturalPause,
		WordsPerSecond: DefaultWordsPerSecond,
	},
	// Trade show booth: slower, more room to look at the screen.
	"relaxed": {
		SettleDelay:    800 * time.Millisecond,
		SpotlightDelay: 900 * time.Millisecond,
		NaturalPause:   2500 * time.Millisecond,
		WordsPerSecond: 2.5,
	},
	// Rehearsing a scenario file.
	"brisk": {
		SettleDelay:    250 * time.Millisecond,
		SpotlightDelay: 300 * time.Millisecond,
		NaturalPause:   400 * time.Millisecond,
		WordsPerSecond: 4,
	},
}

// ApplyPreset applies a named pace preset. Returns false if not found.
func (p *PlaybackConfig) ApplyPreset(name string) bool {
	preset, ok := PacePresets[name]
	if !ok {
		return false
	}
	p.Preset = name
	p.SettleDelay = preset.SettleDelay
	p.SpotlightDelay = preset.SpotlightDelay
	p.NaturalPause = preset.NaturalPause
	p.WordsPerSecond = preset.WordsPerSecond
	return true
}

// ListPresets returns the available preset names, sorted.
func ListPresets() []string {
	names := make([]string, 0, len(PacePresets))
	for name := range PacePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
