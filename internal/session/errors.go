package session

import (
	"errors"
	"fmt"

	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/stopping"
)

// Error categories. Every typed error below matches exactly one of them
// with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrState      = errors.New("invalid session state")
	ErrExhausted  = errors.New("no items available")
	ErrNotFound   = errors.New("session not found")
)

// InvalidSectionsError rejects an empty, duplicated or unknown section list.
type InvalidSectionsError struct {
	Sections []itembank.Section
	Reason   string
}

func (e *InvalidSectionsError) Error() string {
	return fmt.Sprintf("invalid sections %v: %s", e.Sections, e.Reason)
}

func (e *InvalidSectionsError) Is(target error) bool { return target == ErrValidation }

type SessionNotActiveError struct {
	SessionID string
	Status    Status
}

func (e *SessionNotActiveError) Error() string {
	return fmt.Sprintf("session %s is %s", e.SessionID, e.Status)
}

func (e *SessionNotActiveError) Is(target error) bool { return target == ErrState }

// SectionsExhaustedError is returned by NextQuestion once the session has
// stopped; Reason says why. The session is then ready for Complete.
type SectionsExhaustedError struct {
	SessionID string
	Reason    stopping.Reason
}

func (e *SectionsExhaustedError) Error() string {
	return fmt.Sprintf("session %s has no further items (%s)", e.SessionID, e.Reason)
}

func (e *SectionsExhaustedError) Is(target error) bool { return target == ErrExhausted }

type DuplicateResponseError struct {
	SessionID string
	ItemID    string
}

func (e *DuplicateResponseError) Error() string {
	return fmt.Sprintf("item %s already answered in session %s", e.ItemID, e.SessionID)
}

func (e *DuplicateResponseError) Is(target error) bool { return target == ErrValidation }

type UnknownItemError struct {
	SessionID string
	ItemID    string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("item %s is not in the bank for session %s", e.ItemID, e.SessionID)
}

func (e *UnknownItemError) Is(target error) bool { return target == ErrValidation }

// OutOfOrderItemError means the answer is not for the pending item.
// Expected is empty when nothing is pending.
type OutOfOrderItemError struct {
	SessionID string
	ItemID    string
	Expected  string
}

func (e *OutOfOrderItemError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("item %s was not issued in session %s", e.ItemID, e.SessionID)
	}
	return fmt.Sprintf("item %s answered out of order in session %s (pending %s)", e.ItemID, e.SessionID, e.Expected)
}

func (e *OutOfOrderItemError) Is(target error) bool { return target == ErrValidation }

type SessionAlreadyTerminalError struct {
	SessionID string
	Status    Status
}

func (e *SessionAlreadyTerminalError) Error() string {
	return fmt.Sprintf("session %s is already %s", e.SessionID, e.Status)
}

func (e *SessionAlreadyTerminalError) Is(target error) bool { return target == ErrState }

type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.SessionID)
}

func (e *SessionNotFoundError) Is(target error) bool { return target == ErrNotFound }
