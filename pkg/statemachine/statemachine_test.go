package statemachine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmudadem/erpcore/pkg/statemachine"
)

const (
	stateIdle    = statemachine.StringState("idle")
	stateRunning = statemachine.StringState("running")
	stateDone    = statemachine.StringState("done")

	eventStart  = statemachine.StringEvent("start")
	eventFinish = statemachine.StringEvent("finish")
)

func TestMachine_Fire(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := statemachine.MustNew(stateIdle,
		statemachine.Transition{From: stateIdle, To: stateRunning, Event: eventStart},
		statemachine.Transition{From: stateRunning, To: stateDone, Event: eventFinish},
	)

	assert.True(t, m.Is(stateIdle))
	require.NoError(t, m.Fire(ctx, eventStart, nil))
	assert.True(t, m.Is(stateRunning))

	// Same event again has no declared transition.
	err := m.Fire(ctx, eventStart, nil)
	assert.True(t, statemachine.IsTransitionError(err))
	assert.True(t, m.Is(stateRunning))

	require.NoError(t, m.Fire(ctx, eventFinish, nil))
	assert.True(t, m.Is(stateDone))
}

func TestMachine_GuardRejection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	deny := func(context.Context, statemachine.State, statemachine.Event, any) bool { return false }

	m := statemachine.MustNew(stateIdle,
		statemachine.Transition{From: stateIdle, To: stateRunning, Event: eventStart, Guards: []statemachine.Guard{deny}},
	)

	assert.False(t, m.CanFire(ctx, eventStart, nil))
	err := m.Fire(ctx, eventStart, nil)
	assert.True(t, statemachine.IsTransitionError(err))
	assert.True(t, m.Is(stateIdle))
}

func TestMachine_ActionFailureAbortsTransition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	boom := errors.New("boom")
	failing := func(context.Context, statemachine.State, statemachine.State, statemachine.Event, any) error {
		return boom
	}

	m := statemachine.MustNew(stateIdle,
		statemachine.Transition{From: stateIdle, To: stateRunning, Event: eventStart, Actions: []statemachine.Action{failing}},
	)

	err := m.Fire(ctx, eventStart, nil)
	assert.ErrorIs(t, err, boom)
	assert.True(t, m.Is(stateIdle), "failed action must not change state")
}

func TestMachine_GuardedBranching(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Two transitions on the same event; the first passing guard wins.
	toDone := func(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
		v, _ := data.(bool)
		return v
	}

	m := statemachine.MustNew(stateIdle,
		statemachine.Transition{From: stateIdle, To: stateDone, Event: eventStart, Guards: []statemachine.Guard{toDone}},
		statemachine.Transition{From: stateIdle, To: stateRunning, Event: eventStart},
	)

	require.NoError(t, m.Fire(ctx, eventStart, true))
	assert.True(t, m.Is(stateDone))

	m.Reset()
	require.NoError(t, m.Fire(ctx, eventStart, false))
	assert.True(t, m.Is(stateRunning))
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := statemachine.New(nil)
	assert.ErrorIs(t, err, statemachine.ErrNilState)

	_, err = statemachine.New(stateIdle, statemachine.Transition{From: stateIdle, To: nil, Event: eventStart})
	assert.ErrorIs(t, err, statemachine.ErrNilState)
}
