package narration

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"tracetour/internal/logging"
	"tracetour/internal/robustness"
	"tracetour/internal/timing"
)

// CommandConfig configures a Command narrator.
type CommandConfig struct {
	// Command is the TTS binary, e.g. espeak-ng or say.
	Command string
	// Args may contain {text}, {rate} and {wpm}.
	Args []string
	// BaseWPM is the words per minute at rate 1.0.
	BaseWPM int
	Rate    float64
	// PerChar is the simulated speaking time per character when muted or
	// when the TTS binary keeps failing.
	PerChar time.Duration

	FailureThreshold int
	ResetTimeout     time.Duration
}

// Runner executes one TTS invocation and blocks until it exits.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil && len(out) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return err
}

// Command speaks by running a local TTS binary per utterance. Failures trip
// a circuit breaker; while it is open utterances fall back to simulated
// timing so playback keeps its rhythm.
type Command struct {
	cfg     CommandConfig
	run     Runner
	breaker *robustness.CircuitBreaker
	sim     *Silent

	mu      sync.Mutex
	enabled bool
	rate    float64
	cancel  context.CancelFunc
	ids     Utterances
}

// NewCommand creates a command narrator. A nil runner executes the binary
// with os/exec.
func NewCommand(cfg CommandConfig, clock timing.Clock, run Runner) *Command {
	if cfg.BaseWPM <= 0 {
		cfg.BaseWPM = 175
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if run == nil {
		run = execRunner
	}
	clock = timing.OrSystem(clock)
	return &Command{
		cfg:     cfg,
		run:     run,
		breaker: robustness.NewCircuitBreaker(cfg.FailureThreshold, cfg.ResetTimeout, clock),
		sim:     NewSilent(clock, cfg.PerChar),
		enabled: true,
		rate:    ClampRate(cfg.Rate),
	}
}

// Speak starts the TTS process for text.
func (c *Command) Speak(text string, onFinished func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	if !c.enabled {
		c.sim.Speak(text, onFinished)
		return
	}
	if !c.breaker.Allow() {
		logging.Debug("tts circuit open, simulating narration", "command", c.cfg.Command)
		c.sim.Speak(text, onFinished)
		return
	}

	id := c.ids.Begin()
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	args := c.expandArgs(text)

	go func() {
		defer cancel()
		err := c.run(ctx, c.cfg.Command, args...)

		switch {
		case ctx.Err() != nil:
			// killed on purpose: neither a success nor a failure
			c.breaker.Release()
			return
		case err != nil:
			c.breaker.Failure()
			logging.Warn("tts command failed", "command", c.cfg.Command, "error", err, "breaker", c.breaker.GetState().String())
			c.fallback(id, text, onFinished)
		default:
			c.breaker.Success()
			if c.ids.Finish(id) && onFinished != nil {
				onFinished()
			}
		}
	}()
}

// fallback finishes a failed utterance on simulated timing, unless it was
// superseded meanwhile.
func (c *Command) fallback(id uint64, text string, onFinished func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ids.Finish(id) {
		return
	}
	c.sim.Speak(text, onFinished)
}

func (c *Command) expandArgs(text string) []string {
	wpm := int(float64(c.cfg.BaseWPM) * c.rate)
	r := strings.NewReplacer(
		"{text}", text,
		"{rate}", strconv.FormatFloat(c.rate, 'f', 2, 64),
		"{wpm}", strconv.Itoa(wpm),
	)
	out := make([]string, len(c.cfg.Args))
	for i, arg := range c.cfg.Args {
		out[i] = r.Replace(arg)
	}
	return out
}

// Cancel kills the running TTS process and detaches its callback.
func (c *Command) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Command) stopLocked() {
	c.ids.Detach()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.sim.Cancel()
}

// SetRate sets the rate used for subsequent utterances.
func (c *Command) SetRate(multiplier float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = ClampRate(multiplier)
}

// Toggle enables or disables audio.
func (c *Command) Toggle(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled = enabled
	if !enabled {
		c.stopLocked()
	}
}

// Breaker exposes the circuit state for status displays.
func (c *Command) Breaker() robustness.State {
	return c.breaker.GetState()
}

// ErrNoCommand is returned by Check when the TTS binary is not on PATH.
var ErrNoCommand = errors.New("tts command not found")

// Check verifies the TTS binary can be found.
func (c *Command) Check() error {
	if _, err := exec.LookPath(c.cfg.Command); err != nil {
		return fmt.Errorf("%w: %s", ErrNoCommand, c.cfg.Command)
	}
	return nil
}
