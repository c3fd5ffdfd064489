package stepfsm

import (
	"fmt"
)

// Definition builds a Config step by step
type Definition struct {
	order       []StateID
	states      map[StateID]*State
	transitions []transitionRule
	initial     StateID
}

type transitionRule struct {
	from  StateID
	event EventID
	to    StateID
}

// NewDefinition creates a new FSM definition builder
func NewDefinition() *Definition {
	return &Definition{
		states:      make(map[StateID]*State),
		transitions: make([]transitionRule, 0),
	}
}

// State adds a state to the definition. Declaring the same ID again
// replaces its options but keeps its original position.
func (d *Definition) State(id StateID, opts ...StateOption) *Definition {
	s := &State{
		ID:          id,
		Transitions: make(map[EventID]StateID),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, ok := d.states[id]; !ok {
		d.order = append(d.order, id)
	}
	d.states[id] = s
	return d
}

// Transition adds a transition rule
func (d *Definition) Transition(from StateID, event EventID, to StateID) *Definition {
	d.transitions = append(d.transitions, transitionRule{from: from, event: event, to: to})
	return d
}

// Initial sets the initial state
func (d *Definition) Initial(id StateID) *Definition {
	d.initial = id
	return d
}

// Validate checks the definition for errors
func (d *Definition) Validate() error {
	if d.initial == "" {
		return fmt.Errorf("%w: no initial state defined", ErrConfiguration)
	}

	for _, t := range d.transitions {
		if _, ok := d.states[t.from]; !ok {
			return fmt.Errorf("%w: transition from undefined state %q", ErrConfiguration, t.from)
		}
		if t.event == "" {
			return fmt.Errorf("%w: transition from %q has an empty event", ErrConfiguration, t.from)
		}
	}

	return d.Config().Validate()
}

// Config returns the Config described so far. Rules added with Transition
// override a WithTransition option for the same state and event.
func (d *Definition) Config() *Config {
	cfg := &Config{
		Initial: d.initial,
		States:  make([]State, 0, len(d.order)),
	}

	rules := make(map[StateID]map[EventID]StateID)
	for _, t := range d.transitions {
		if rules[t.from] == nil {
			rules[t.from] = make(map[EventID]StateID)
		}
		rules[t.from][t.event] = t.to
	}

	for _, id := range d.order {
		src := d.states[id]
		transitions := make(map[EventID]StateID, len(src.Transitions)+len(rules[id]))
		for event, to := range src.Transitions {
			transitions[event] = to
		}
		for event, to := range rules[id] {
			transitions[event] = to
		}
		cfg.States = append(cfg.States, State{ID: id, Transitions: transitions})
	}

	return cfg
}

// Build validates the definition and creates a Machine from it
func (d *Definition) Build(opts ...MachineOption) (*Machine, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}
	return New(d.Config(), opts...)
}
