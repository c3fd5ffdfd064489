package stepfsm

import (
	"fmt"
	"slices"
)

// Table is an immutable, indexed transition table.
// It holds no active state; Next is a pure function over it.
// A nil *Table is an empty table.
type Table struct {
	order  []StateID
	states map[StateID]map[EventID]StateID
}

// NewTable copies the config's states into a Table. It fails only on a
// duplicate state ID; initial and targets are checked by Config.Validate.
func NewTable(cfg *Config) (*Table, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrConfiguration)
	}

	t := &Table{
		order:  make([]StateID, 0, len(cfg.States)),
		states: make(map[StateID]map[EventID]StateID, len(cfg.States)),
	}
	for _, s := range cfg.States {
		if _, dup := t.states[s.ID]; dup {
			return nil, fmt.Errorf("%w: state %q declared twice", ErrConfiguration, s.ID)
		}
		transitions := make(map[EventID]StateID, len(s.Transitions))
		for event, to := range s.Transitions {
			transitions[event] = to
		}
		t.order = append(t.order, s.ID)
		t.states[s.ID] = transitions
	}
	return t, nil
}

// Has reports whether the state is declared
func (t *Table) Has(id StateID) bool {
	if t == nil {
		return false
	}
	_, ok := t.states[id]
	return ok
}

// Next returns the target of event from state from
func (t *Table) Next(from StateID, event EventID) (StateID, error) {
	if t == nil {
		return "", &TransitionError{State: from, Event: event}
	}
	to, ok := t.states[from][event]
	if !ok {
		return "", &TransitionError{State: from, Event: event}
	}
	return to, nil
}

// IDs returns all declared states in declaration order
func (t *Table) IDs() []StateID {
	if t == nil {
		return []StateID{}
	}
	return slices.Clone(t.order)
}

// Accepting returns, in declaration order, the states that have a
// transition for event. An empty event matches every state, not only
// the states with a "" transition.
func (t *Table) Accepting(event EventID) []StateID {
	if event == "" || t == nil {
		return t.IDs()
	}
	result := make([]StateID, 0)
	for _, id := range t.order {
		if _, ok := t.states[id][event]; ok {
			result = append(result, id)
		}
	}
	return result
}

// Events returns the events accepted by a state, sorted
func (t *Table) Events(id StateID) []EventID {
	if t == nil {
		return []EventID{}
	}
	events := make([]EventID, 0, len(t.states[id]))
	for event := range t.states[id] {
		events = append(events, event)
	}
	slices.Sort(events)
	return events
}
