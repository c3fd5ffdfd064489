package stepfsm

import (
	"errors"
	"fmt"
	"log/slog"
)

// StateID is a unique identifier for a state
type StateID string

// EventID is a unique identifier for an event type
type EventID string

// Logger is the default logger used when none is provided
var Logger = slog.Default()

var (
	// ErrConfiguration is returned when a machine is built from a missing or malformed config
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInvalidState is returned by ChangeState for an undeclared target
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidTransition is returned by Trigger when the current state does not accept the event
	ErrInvalidTransition = errors.New("invalid transition")
)

// TransitionError reports an event the state has no transition for.
// It unwraps to ErrInvalidTransition.
type TransitionError struct {
	State StateID
	Event EventID
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: no transition for event %q from state %q", ErrInvalidTransition, e.Event, e.State)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
