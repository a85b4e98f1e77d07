// Package narration speaks step narration aloud.
//
// Completion callbacks are delivered from another goroutine (or from the
// clock in tests), never from inside Speak, and may never be delivered at
// all. Callers that wait on them must pair them with their own timeout.
package narration

import (
	"sync"
	"time"
	"unicode/utf8"
)

// Narrator converts text to speech.
type Narrator interface {
	// Speak cancels any prior utterance, detaching its callback, and starts
	// speaking text. When disabled it stays silent but still calls
	// onFinished after a delay proportional to the text length.
	Speak(text string, onFinished func())
	// Cancel stops the current utterance. Safe to call when idle.
	Cancel()
	// SetRate sets the speaking speed multiplier.
	SetRate(multiplier float64)
	// Toggle enables or disables audio. Disabling cancels in-flight speech.
	Toggle(enabled bool)
}

// Utterances hands out ids for utterances so completions from superseded
// ones can be dropped.
type Utterances struct {
	mu      sync.Mutex
	current uint64
	live    bool
}

// Begin starts a new utterance and returns its id. Any earlier id is stale.
func (u *Utterances) Begin() uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.current++
	u.live = true
	return u.current
}

// Detach makes the current utterance stale.
func (u *Utterances) Detach() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.live = false
}

// Live reports whether id is the current, unfinished utterance.
func (u *Utterances) Live(id uint64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.live && id == u.current
}

// Finish reports whether id is the live utterance and, if so, retires it.
// It returns true at most once per id.
func (u *Utterances) Finish(id uint64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.live || id != u.current {
		return false
	}
	u.live = false
	return true
}

// SimulatedDuration is how long muted narration of text pretends to take.
func SimulatedDuration(text string, perChar time.Duration) time.Duration {
	return time.Duration(utf8.RuneCountInString(text)) * perChar
}

// ClampRate keeps a rate multiplier within what TTS engines accept.
func ClampRate(multiplier float64) float64 {
	switch {
	case multiplier <= 0:
		return 1
	case multiplier < 0.1:
		return 0.1
	case multiplier > 10:
		return 10
	default:
		return multiplier
	}
}
