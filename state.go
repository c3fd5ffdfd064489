package stepfsm

import "fmt"

// State declares a state and the events it accepts
type State struct {
	ID          StateID
	Transitions map[EventID]StateID // Event -> target state
}

// StateOption is a functional option for configuring a State
type StateOption func(*State)

// WithTransition adds an outgoing transition to the state
func WithTransition(event EventID, to StateID) StateOption {
	return func(s *State) {
		if s.Transitions == nil {
			s.Transitions = make(map[EventID]StateID)
		}
		s.Transitions[event] = to
	}
}

// Config is the declarative description a Machine is created from.
// States keeps declaration order; it is what States() reports.
type Config struct {
	Initial StateID
	States  []State
}

// Validate performs the strict checks: unique state IDs, a declared initial
// state, and declared transition targets.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfiguration
	}

	declared := make(map[StateID]bool, len(c.States))
	for _, s := range c.States {
		if declared[s.ID] {
			return fmt.Errorf("%w: state %q declared twice", ErrConfiguration, s.ID)
		}
		declared[s.ID] = true
	}

	if !declared[c.Initial] {
		return fmt.Errorf("%w: initial state %q not defined", ErrConfiguration, c.Initial)
	}

	for _, s := range c.States {
		for event, to := range s.Transitions {
			if !declared[to] {
				return fmt.Errorf("%w: transition %q from %q to undefined state %q", ErrConfiguration, event, s.ID, to)
			}
		}
	}

	return nil
}
