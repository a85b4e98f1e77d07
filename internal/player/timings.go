package player

import (
	"strings"
	"time"
)

// Timings are the fixed delays of the step scheduler.
type Timings struct {
	// SettleDelay follows every navigation, even a no-op one.
	SettleDelay time.Duration
	// SpotlightDelay separates the last action from the spotlight.
	SpotlightDelay time.Duration
	// NaturalPause separates narration completion from the advance.
	NaturalPause time.Duration
	// SafetyPad is added to the narration estimate for the safety timer.
	SafetyPad time.Duration

	MinNarration   time.Duration
	NarrationPad   time.Duration
	WordsPerSecond float64
}

// DefaultTimings returns the timings the demo was tuned with.
func DefaultTimings() Timings {
	return Timings{
		SettleDelay:    500 * time.Millisecond,
		SpotlightDelay: 600 * time.Millisecond,
		NaturalPause:   1200 * time.Millisecond,
		SafetyPad:      2000 * time.Millisecond,
		MinNarration:   3000 * time.Millisecond,
		NarrationPad:   1000 * time.Millisecond,
		WordsPerSecond: 3,
	}
}

// withDefaults fills every zero or negative field from DefaultTimings.
func (t Timings) withDefaults() Timings {
	def := DefaultTimings()
	if t.SettleDelay <= 0 {
		t.SettleDelay = def.SettleDelay
	}
	if t.SpotlightDelay <= 0 {
		t.SpotlightDelay = def.SpotlightDelay
	}
	if t.NaturalPause <= 0 {
		t.NaturalPause = def.NaturalPause
	}
	if t.SafetyPad <= 0 {
		t.SafetyPad = def.SafetyPad
	}
	if t.MinNarration <= 0 {
		t.MinNarration = def.MinNarration
	}
	if t.NarrationPad <= 0 {
		t.NarrationPad = def.NarrationPad
	}
	if t.WordsPerSecond <= 0 {
		t.WordsPerSecond = def.WordsPerSecond
	}
	return t
}

// EstimateNarration returns how long speaking text should take:
// max(MinNarration, words/WordsPerSecond) + NarrationPad.
func (t Timings) EstimateNarration(text string) time.Duration {
	words := len(strings.Fields(text))
	spoken := time.Duration(float64(words) / t.WordsPerSecond * float64(time.Second))
	if spoken < t.MinNarration {
		spoken = t.MinNarration
	}
	return spoken + t.NarrationPad
}

// SafetyDelay is when the safety timer fires for text.
func (t Timings) SafetyDelay(text string) time.Duration {
	return t.EstimateNarration(text) + t.SafetyPad
}
