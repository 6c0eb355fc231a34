package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers match these with errors.Is to pick a response code;
// everything under a kind wraps it with fmt.Errorf("%w: ...").
var (
	// ErrConflict: the target row is in a terminal or incompatible state.
	ErrConflict = errors.New("conflicting ledger state")
	// ErrState: the operation is not valid from the current state.
	ErrState = errors.New("operation not valid in current state")
	// ErrInvalidTime: non-monotonic or malformed timestamps.
	ErrInvalidTime = errors.New("invalid timestamp")
	// ErrValidation: bad caller input (non-positive amounts, missing proof).
	ErrValidation = errors.New("validation failed")
	// ErrResource: the database pool stayed exhausted past the bounded retry.
	ErrResource = errors.New("resource exhausted")
)

// Specific ledger errors, surfaced verbatim to the caller for correction.
var (
	ErrAlreadyClockedIn = fmt.Errorf("%w: already clocked in", ErrConflict)
	ErrAlreadyMarkedOff = fmt.Errorf("%w: already marked off", ErrConflict)
	ErrDayHasClockMarks = fmt.Errorf("%w: day already has clock records", ErrConflict)
	ErrDaySettled       = fmt.Errorf("%w: day already settled", ErrConflict)
	ErrLedgerChanged    = fmt.Errorf("%w: ledger changed during settlement", ErrConflict)

	ErrNotClockedIn = fmt.Errorf("%w: not clocked in", ErrState)

	ErrClockOutBeforeIn = fmt.Errorf("%w: clock-out earlier than clock-in", ErrInvalidTime)
	ErrOvertimeNegative = fmt.Errorf("%w: overtime end earlier than start", ErrInvalidTime)

	ErrWorkerNotFound = errors.New("worker not found")
)
