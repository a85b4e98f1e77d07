package tour

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidScenario is wrapped by every ValidationError.
	ErrInvalidScenario = errors.New("invalid scenario")
	// ErrNotFound is returned when a scenario id is not in the catalog.
	ErrNotFound = errors.New("scenario not found")
)

// ValidationError describes the first invariant a scenario violates.
type ValidationError struct {
	Scenario string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	id := e.Scenario
	if id == "" {
		id = "<unnamed>"
	}
	return fmt.Sprintf("scenario %s: %s: %s", id, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidScenario
}

// Validate checks the invariants playback relies on. Step sequence numbers
// must equal their position plus one.
func (s *Scenario) Validate() error {
	fail := func(field, format string, args ...any) error {
		return &ValidationError{Scenario: s.ID, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	if strings.TrimSpace(s.ID) == "" {
		return fail("id", "must not be empty")
	}
	if strings.TrimSpace(s.Title) == "" {
		return fail("title", "must not be empty")
	}
	if s.DurationSeconds < 0 {
		return fail("duration_seconds", "must not be negative")
	}
	if len(s.Steps) == 0 {
		return fail("steps", "scenario has no steps")
	}

	for i, step := range s.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		if step.Sequence != i+1 {
			return fail(field+".id", "expected %d, got %d (ids must be contiguous from 1)", i+1, step.Sequence)
		}
		if strings.TrimSpace(step.Narration) == "" {
			return fail(field+".narration", "must not be empty")
		}
		for j, a := range step.Actions {
			afield := fmt.Sprintf("%s.actions[%d]", field, j)
			switch a := a.(type) {
			case NavigateAction:
				if a.View == "" {
					return fail(afield+".target", "navigate needs a view")
				}
				if a.Wait < 0 {
					return fail(afield+".delay", "must not be negative")
				}
			case ClickAction:
				if a.Selector == "" {
					return fail(afield+".target", "click needs a selector")
				}
				if a.Wait < 0 {
					return fail(afield+".delay", "must not be negative")
				}
			case FillAction:
				if a.Selector == "" {
					return fail(afield+".target", "fill needs a selector")
				}
				if a.Wait < 0 {
					return fail(afield+".delay", "must not be negative")
				}
			case nil:
				return fail(afield, "empty action")
			default:
				return fail(afield, "unsupported action %T", a)
			}
		}
	}
	return nil
}
