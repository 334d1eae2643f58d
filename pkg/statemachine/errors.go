package statemachine

import (
	"errors"
	"fmt"
)

var (
	// ErrNilState is returned when a transition references a nil state or event.
	ErrNilState = errors.New("statemachine: nil state or event")

	// ErrNilEvent is returned when Fire is called with a nil event.
	ErrNilEvent = errors.New("statemachine: nil event")
)

// TransitionError reports an event that could not be applied in the current
// state, either because no transition is declared or guards rejected it.
type TransitionError struct {
	State  string
	Event  string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("statemachine: event %q in state %q: %s", e.Event, e.State, e.Reason)
}

// IsTransitionError reports whether err wraps a TransitionError.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}
