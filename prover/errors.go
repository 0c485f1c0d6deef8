package prover

import "errors"

var (
	// ErrUnknownImage is returned when no program is registered for an image id.
	ErrUnknownImage = errors.New("unknown image id")
	// ErrExecution wraps any error returned by a program.
	ErrExecution = errors.New("program execution failed")
	// ErrInvalidSeal is returned when a seal does not attest the journal.
	ErrInvalidSeal = errors.New("invalid seal")
	// ErrRequestExpired is returned when a request expires before it is
	// fulfilled.
	ErrRequestExpired = errors.New("proof request expired")
	// ErrRequestFailed is returned when the prover rejected a request.
	ErrRequestFailed = errors.New("proof request failed")
	// ErrInvalidPollInterval is returned when a polling loop is given a
	// non positive interval.
	ErrInvalidPollInterval = errors.New("poll interval must be positive")
)
