package watcher

import "time"

// Operation represents the type of file system operation.
type Operation int

const (
	OpCreate Operation = iota
	OpModify
	OpDelete
)

// String returns the string representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Event is a debounced change to a scenario file.
type Event struct {
	Path      string
	Operation Operation
	Time      time.Time
}

// Config holds scenario watcher configuration.
type Config struct {
	Enabled    bool
	DebounceMs int
	MaxWatches int
	// Pattern is the doublestar glob, relative to a watched root, that a
	// file must match to be reported.
	Pattern string
}

const minDebounceMs = 2

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		DebounceMs: 300,
		MaxWatches: 256,
		Pattern:    "**/*.{yaml,yml}",
	}
}

// ChangeHandler receives one debounced batch of scenario file changes.
type ChangeHandler func(events []Event)
