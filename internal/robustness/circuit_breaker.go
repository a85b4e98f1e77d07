package robustness

import (
	"context"
	"errors"
	"sync"
	"time"

	"tracetour/internal/timing"
)

var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// CircuitBreaker stops calling a failing dependency for resetTimeout after
// threshold consecutive failures, then lets a single trial call through.
type CircuitBreaker struct {
	mu           sync.Mutex
	clock        timing.Clock
	state        State
	failures     int
	threshold    int
	resetTimeout time.Duration
	lastFailure  time.Time
}

// NewCircuitBreaker creates a breaker. A nil clock uses the system clock.
func NewCircuitBreaker(threshold int, resetTimeout time.Duration, clock timing.Clock) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	return &CircuitBreaker{
		clock:        timing.OrSystem(clock),
		threshold:    threshold,
		resetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

// Execute runs fn unless the circuit is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !cb.Allow() {
		return ErrCircuitOpen
	}

	if err := fn(); err != nil {
		cb.Failure()
		return err
	}
	cb.Success()
	return nil
}

// Allow reports whether a call may proceed. For calls whose outcome is only
// known later, pair it with Success, Failure or Release.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.clock.Now().Sub(cb.lastFailure) < cb.resetTimeout {
			return false
		}
		cb.state = StateHalfOpen
		return true
	case StateHalfOpen:
		// one trial at a time
		return false
	default:
		return true
	}
}

// Failure records a failed call.
func (cb *CircuitBreaker) Failure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = cb.clock.Now()

	if cb.state == StateHalfOpen || cb.failures >= cb.threshold {
		cb.state = StateOpen
	}
}

// Success records a successful call and closes the circuit.
func (cb *CircuitBreaker) Success() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failures = 0
}

// Release gives back a trial that ended without an outcome, such as a call
// cancelled by its caller. A half-open circuit returns to open with its
// original failure time, so the next Allow grants a new trial.
func (cb *CircuitBreaker) Release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.state = StateOpen
	}
}

// GetState returns the current state without side effects.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
