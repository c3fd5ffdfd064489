package stepfsm

import (
	"fmt"
	"log/slog"
	"sync"
)

// Machine is the runtime FSM instance, created with New or Definition.Build.
// A zero Machine has no states: every transition is rejected.
// All methods are safe for concurrent use.
type Machine struct {
	table   *Table
	initial StateID
	mu      sync.RWMutex

	currentState StateID

	// Single-slot history. The flags mark an empty slot so that the
	// zero StateID remains usable as a state name.
	prevState StateID
	hasPrev   bool
	nextState StateID
	hasNext   bool

	strict              bool
	stickyRedo          bool
	logger              *slog.Logger
	stateChangeCallback func(from, to StateID)
}

// MachineOption is a functional option for configuring a Machine
type MachineOption func(*Machine)

// WithLogger sets the logger for the machine
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStrict makes New reject configs whose initial state or transition
// targets are not declared.
func WithStrict() MachineOption {
	return func(m *Machine) {
		m.strict = true
	}
}

// WithStickyRedo keeps a pending redo across new transitions instead of
// discarding it. Redo may then jump to a state that no longer follows the
// current one.
func WithStickyRedo() MachineOption {
	return func(m *Machine) {
		m.stickyRedo = true
	}
}

// WithStateChangeCallback sets a callback invoked after each state change
func WithStateChangeCallback(fn func(from, to StateID)) MachineOption {
	return func(m *Machine) {
		m.stateChangeCallback = fn
	}
}

// New creates a Machine positioned at cfg.Initial with empty history.
// Without WithStrict the initial state is not checked against the table.
func New(cfg *Config, opts ...MachineOption) (*Machine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrConfiguration)
	}

	m := &Machine{
		initial:      cfg.Initial,
		currentState: cfg.Initial,
		logger:       Logger,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.strict {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	table, err := NewTable(cfg)
	if err != nil {
		return nil, err
	}
	m.table = table

	if !table.Has(cfg.Initial) {
		m.log().Debug("initial state not declared", "state", cfg.Initial)
	}

	return m, nil
}

// OnStateChange sets a callback invoked after each state change
func (m *Machine) OnStateChange(fn func(from, to StateID)) {
	m.mu.Lock()
	m.stateChangeCallback = fn
	m.mu.Unlock()
}

// State returns the active state
func (m *Machine) State() StateID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState
}

// Initial returns the state the machine starts in and resets to
func (m *Machine) Initial() StateID {
	return m.initial
}

// ChangeState jumps to target, ignoring the transition rules.
// The target must be a declared state.
func (m *Machine) ChangeState(target StateID) error {
	m.mu.Lock()
	from := m.currentState
	if !m.table.Has(target) {
		m.mu.Unlock()
		m.log().Debug("rejected state change", "state", from, "target", target)
		return fmt.Errorf("%w: %q", ErrInvalidState, target)
	}

	m.advance(target)
	cb := m.stateChangeCallback
	m.mu.Unlock()

	m.log().Debug("changed state", "from", from, "to", target)
	m.notify(cb, from, target)
	return nil
}

// Trigger follows the current state's transition for event
func (m *Machine) Trigger(event EventID) error {
	m.mu.Lock()
	from := m.currentState
	to, err := m.table.Next(from, event)
	if err != nil {
		m.mu.Unlock()
		m.log().Debug("no transition found", "event", event, "state", from)
		return err
	}

	m.advance(to)
	cb := m.stateChangeCallback
	m.mu.Unlock()

	m.log().Debug("executed transition", "event", event, "from", from, "to", to)
	m.notify(cb, from, to)
	return nil
}

// Reset returns to the initial state. History is kept, so Undo right
// after Reset goes back to the state Reset left.
func (m *Machine) Reset() {
	m.mu.Lock()
	from := m.currentState
	m.currentState = m.initial
	cb := m.stateChangeCallback
	m.mu.Unlock()

	m.log().Debug("reset", "from", from, "to", m.initial)
	m.notify(cb, from, m.initial)
}

// States returns every declared state in declaration order
func (m *Machine) States() []StateID {
	return m.table.IDs()
}

// StatesFor returns the states that have a transition for event, in
// declaration order. An empty event returns every state, even though
// Trigger treats "" as an ordinary event key.
func (m *Machine) StatesFor(event EventID) []StateID {
	return m.table.Accepting(event)
}

// Events returns the events accepted by the active state, sorted
func (m *Machine) Events() []EventID {
	return m.table.Events(m.State())
}

// Can reports whether Trigger(event) would succeed from the active state
func (m *Machine) Can(event EventID) bool {
	_, err := m.table.Next(m.State(), event)
	return err == nil
}

// Undo reverts the most recent transition. It returns false when there is
// nothing to undo.
func (m *Machine) Undo() bool {
	m.mu.Lock()
	if !m.hasPrev {
		m.mu.Unlock()
		return false
	}

	from := m.currentState
	m.nextState, m.hasNext = m.currentState, true
	m.currentState = m.prevState
	m.prevState, m.hasPrev = "", false
	to := m.currentState
	cb := m.stateChangeCallback
	m.mu.Unlock()

	m.log().Debug("undo", "from", from, "to", to)
	m.notify(cb, from, to)
	return true
}

// Redo re-applies the transition reverted by Undo. It returns false when
// there is nothing to redo.
func (m *Machine) Redo() bool {
	m.mu.Lock()
	if !m.hasNext {
		m.mu.Unlock()
		return false
	}

	from := m.currentState
	m.currentState = m.nextState
	m.nextState, m.hasNext = "", false
	to := m.currentState
	cb := m.stateChangeCallback
	m.mu.Unlock()

	m.log().Debug("redo", "from", from, "to", to)
	m.notify(cb, from, to)
	return true
}

// CanUndo reports whether Undo would succeed
func (m *Machine) CanUndo() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasPrev
}

// CanRedo reports whether Redo would succeed
func (m *Machine) CanRedo() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasNext
}

// ClearHistory forgets both the undo and the redo slot
func (m *Machine) ClearHistory() {
	m.mu.Lock()
	m.prevState, m.hasPrev = "", false
	m.nextState, m.hasNext = "", false
	m.mu.Unlock()

	m.log().Debug("history cleared")
}

// advance records the current state for Undo and moves to target.
// Callers hold m.mu.
func (m *Machine) advance(target StateID) {
	m.prevState, m.hasPrev = m.currentState, true
	m.currentState = target
	if !m.stickyRedo {
		m.nextState, m.hasNext = "", false
	}
}

func (m *Machine) log() *slog.Logger {
	if m.logger == nil {
		return Logger
	}
	return m.logger
}

func (m *Machine) notify(cb func(from, to StateID), from, to StateID) {
	if cb != nil && from != to {
		cb(from, to)
	}
}
