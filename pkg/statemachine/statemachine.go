package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// State is a named state in the machine.
type State interface {
	Name() string
}

// Event is a named trigger for a transition.
type Event interface {
	Name() string
}

// StringState is a string-based State for simple machines.
type StringState string

func (s StringState) Name() string { return string(s) }

// StringEvent is a string-based Event for simple machines.
type StringEvent string

func (e StringEvent) Name() string { return string(e) }

// Guard decides at runtime whether a transition may proceed.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Action runs side effects during a transition. A returned error aborts the
// transition and leaves the machine in its current state.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Transition declares a state change triggered by an event.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard
	Actions []Action
}

// Machine is a thread-safe finite state machine.
// Transition lookup is O(1) on (current state, event).
type Machine struct {
	mu      sync.RWMutex
	initial State
	current State
	// transitions[fromState][event] may hold several candidates; the first
	// whose guards all pass wins, enabling guard-based branching.
	transitions map[string]map[string][]Transition
}

// New builds a machine from an initial state and its transitions.
func New(initial State, transitions ...Transition) (*Machine, error) {
	if initial == nil {
		return nil, ErrNilState
	}

	m := &Machine{
		initial:     initial,
		current:     initial,
		transitions: make(map[string]map[string][]Transition),
	}
	for i, t := range transitions {
		if err := m.add(t); err != nil {
			return nil, fmt.Errorf("transition[%d]: %w", i, err)
		}
	}
	return m, nil
}

// MustNew is New that panics on invalid configuration. Machine wiring is
// static, so a bad definition should fail at startup.
func MustNew(initial State, transitions ...Transition) *Machine {
	m, err := New(initial, transitions...)
	if err != nil {
		panic(fmt.Sprintf("statemachine: %v", err))
	}
	return m
}

func (m *Machine) add(t Transition) error {
	if t.From == nil || t.To == nil || t.Event == nil {
		return ErrNilState
	}
	from, event := t.From.Name(), t.Event.Name()
	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[string][]Transition)
	}
	m.transitions[from][event] = append(m.transitions[from][event], t)
	return nil
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the machine is in the named state.
func (m *Machine) Is(s State) bool {
	return m.Current().Name() == s.Name()
}

// Fire applies the event, running guards and actions of the first matching
// transition. The state changes only if every action succeeds.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrNilEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := m.transitions[m.current.Name()][event.Name()]
	if len(candidates) == 0 {
		return &TransitionError{State: m.current.Name(), Event: event.Name(), Reason: "no transition"}
	}

	var chosen *Transition
	for i := range candidates {
		if guardsPass(ctx, candidates[i], m.current, event, data) {
			chosen = &candidates[i]
			break
		}
	}
	if chosen == nil {
		return &TransitionError{State: m.current.Name(), Event: event.Name(), Reason: "rejected by guards"}
	}

	for _, action := range chosen.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, m.current, chosen.To, event, data); err != nil {
			return fmt.Errorf("statemachine: action failed: %w", err)
		}
	}

	m.current = chosen.To
	return nil
}

// CanFire reports whether the event would be accepted in the current state.
func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.transitions[m.current.Name()][event.Name()] {
		if guardsPass(ctx, t, m.current, event, data) {
			return true
		}
	}
	return false
}

// Reset returns the machine to its initial state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

func guardsPass(ctx context.Context, t Transition, from State, event Event, data any) bool {
	for _, guard := range t.Guards {
		if guard != nil && !guard(ctx, from, event, data) {
			return false
		}
	}
	return true
}
