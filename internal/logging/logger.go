package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileName is the log file created inside the state directory.
const FileName = "tracetour.log"

var (
	logger  *slog.Logger
	logFile *os.File
	mu      sync.RWMutex
)

func init() {
	// The overlay shell owns the terminal, so logs are discarded until
	// EnableFileLogging or Configure is called.
	logger = newLogger(io.Discard, slog.LevelInfo)
}

// Level represents a logging level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel parses a level string to Level. Unknown values map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) toSlog() slog.Level {
	switch ParseLevel(string(l)) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// EnableFileLogging appends JSON logs to FileName inside dir, creating the
// directory if needed. Call it before the terminal UI starts.
func EnableFileLogging(dir string, level Level) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", err
	}

	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	logger = newLogger(f, level.toSlog())
	return path, nil
}

// Configure sends logs to w (stderr when nil) at the given level. Any open
// log file is closed.
func Configure(level Level, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = newLogger(w, level.toSlog())
}

// Close closes the log file if open and discards further output.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = newLogger(io.Discard, slog.LevelError)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a debug message.
func Debug(msg string, args ...any) { current().Debug(msg, args...) }

// Info logs an info message.
func Info(msg string, args ...any) { current().Info(msg, args...) }

// Warn logs a warning message.
func Warn(msg string, args ...any) { current().Warn(msg, args...) }

// Error logs an error message.
func Error(msg string, args ...any) { current().Error(msg, args...) }

// With returns a logger carrying the given attributes. The returned logger
// keeps writing to the destination active at call time.
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// Logger returns the underlying slog.Logger.
func Logger() *slog.Logger {
	return current()
}
