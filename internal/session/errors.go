package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current phase.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrWordSourceExhausted is returned when the word source cannot supply enough words.
	ErrWordSourceExhausted = errors.New("word source exhausted")
	// ErrInvalidConfig is returned by New for configurations that cannot run.
	ErrInvalidConfig = errors.New("invalid test config")
)

// TransitionError describes a rejected operation. The session is left unchanged.
type TransitionError struct {
	Op    string
	Phase Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.Phase)
}

// Unwrap allows errors.Is(err, ErrInvalidTransition).
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
