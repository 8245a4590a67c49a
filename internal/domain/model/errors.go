package model

import (
	"errors"
	"fmt"
)

// ValidationError reports the first rule a transaction request violated.
type ValidationError struct {
	Value   any
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ScoringErrorKind classifies how an external scorer invocation failed.
type ScoringErrorKind string

const (
	ScoringErrorStart     ScoringErrorKind = "start"
	ScoringErrorExit      ScoringErrorKind = "exit"
	ScoringErrorEmpty     ScoringErrorKind = "empty"
	ScoringErrorMalformed ScoringErrorKind = "malformed"
	ScoringErrorTimeout   ScoringErrorKind = "timeout"
)

// ScoringError is returned for any failure crossing the scorer boundary.
// Stderr holds the complete diagnostic stream and RawOutput the unparsed
// stdout, when available.
type ScoringError struct {
	Err       error
	Kind      ScoringErrorKind
	Stderr    string
	RawOutput string
	ExitCode  int
}

func (e *ScoringError) Error() string {
	switch e.Kind {
	case ScoringErrorExit:
		return fmt.Sprintf("scorer exited with code %d. Error: %s", e.ExitCode, e.Stderr)
	case ScoringErrorEmpty:
		return "scorer returned no output"
	case ScoringErrorMalformed:
		return fmt.Sprintf("failed to parse scorer output: %v", e.Err)
	case ScoringErrorTimeout:
		return fmt.Sprintf("scorer timed out: %v", e.Err)
	default:
		return fmt.Sprintf("failed to run scorer: %v", e.Err)
	}
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// PersistenceEntity names which write failed.
type PersistenceEntity string

const (
	EntityTransaction  PersistenceEntity = "transaction"
	EntityNotification PersistenceEntity = "notification"
)

// PersistenceError reports a failed write, distinguishing the transaction
// record from the alert notification.
type PersistenceError struct {
	Err           error
	Entity        PersistenceEntity
	TransactionID string
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save %s for %s: %v", e.Entity, e.TransactionID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// InternalError wraps anything that does not fit the other kinds.
type InternalError struct {
	Err     error
	Message string
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")
