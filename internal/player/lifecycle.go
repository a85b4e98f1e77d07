package player

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// Phase is the scheduler lifecycle state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhasePlaying  Phase = "playing"
	PhasePaused   Phase = "paused"
	PhaseComplete Phase = "complete"
)

const (
	eventStart   = "start"
	eventPause   = "pause"
	eventResume  = "resume"
	eventFinish  = "finish"
	eventRestart = "restart"
	eventClose   = "close"
)

func newLifecycle(onEnter func(from, to Phase)) *fsm.FSM {
	all := []string{string(PhaseIdle), string(PhasePlaying), string(PhasePaused), string(PhaseComplete)}
	return fsm.NewFSM(
		string(PhaseIdle),
		fsm.Events{
			{Name: eventStart, Src: []string{string(PhaseIdle)}, Dst: string(PhasePlaying)},
			{Name: eventPause, Src: []string{string(PhasePlaying)}, Dst: string(PhasePaused)},
			{Name: eventResume, Src: []string{string(PhasePaused)}, Dst: string(PhasePlaying)},
			{Name: eventFinish, Src: []string{string(PhasePlaying), string(PhasePaused)}, Dst: string(PhaseComplete)},
			{Name: eventRestart, Src: []string{string(PhaseComplete), string(PhasePlaying), string(PhasePaused)}, Dst: string(PhasePlaying)},
			{Name: eventClose, Src: all, Dst: string(PhaseIdle)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				onEnter(Phase(e.Src), Phase(e.Dst))
			},
		},
	)
}

// fire sends event to the lifecycle. Re-entering the current state is not
// an error.
func fire(m *fsm.FSM, event string) error {
	err := m.Event(context.Background(), event)
	var same fsm.NoTransitionError
	if err == nil || errors.As(err, &same) {
		return nil
	}
	return err
}
