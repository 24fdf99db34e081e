package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/adaptiq/internal/hints"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/scoring"
	"github.com/abhisek/adaptiq/internal/stopping"
)

// Store persists sessions. LoadSession returns an error matching
// ErrNotFound for unknown ids. Writes happen synchronously under the
// session's lock, so implementations need no per-session coordination.
type Store interface {
	SaveSession(ctx context.Context, s *Session) error
	LoadSession(ctx context.Context, id string) (*Session, error)
	// ListIdle returns active sessions last updated before the cutoff.
	ListIdle(ctx context.Context, before time.Time) ([]string, error)
}

// ExposureTracker remembers which items a user saw recently so that new
// sessions prefer fresh items.
type ExposureTracker interface {
	Recent(ctx context.Context, userID string) (map[string]bool, error)
	Record(ctx context.Context, userID, itemID string, at time.Time) error
}

// IDGenerator mints session ids.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequentialIDs issues prefix-1, prefix-2, ... and is meant for tests and
// reproducible simulations.
type SequentialIDs struct {
	Prefix string
	n      atomic.Int64
}

func (g *SequentialIDs) NewID() string {
	return fmt.Sprintf("%s-%d", g.Prefix, g.n.Add(1))
}

// Clock returns the current time.
type Clock func() time.Time

// Describer produces question descriptions.
type Describer interface {
	Describe(ctx context.Context, it itembank.Item) hints.Description
}

// Event payloads appended to the event log.
type (
	SessionEvent struct {
		SessionID   string
		UserID      string
		Action      string
		Status      Status
		StopReason  stopping.Reason
		BankVersion string
		At          time.Time
	}

	ResponseEvent struct {
		SessionID      string
		UserID         string
		ItemID         string
		Section        itembank.Section
		Correct        bool
		ResponseTimeMs int64
		HintUsed       bool
		ThetaBefore    float64
		ThetaAfter     float64
		StandardError  float64
		At             time.Time
	}

	ScoreEvent struct {
		SessionID string
		UserID    string
		Result    scoring.ScoreResult
		At        time.Time
	}
)

// EventRecorder appends audit events. Failures are logged by the service
// and never fail the operation.
type EventRecorder interface {
	AppendSessionEvent(ctx context.Context, e SessionEvent) error
	AppendResponseEvent(ctx context.Context, e ResponseEvent) error
	AppendScoreEvent(ctx context.Context, e ScoreEvent) error
}

type nopEvents struct{}

func (nopEvents) AppendSessionEvent(context.Context, SessionEvent) error   { return nil }
func (nopEvents) AppendResponseEvent(context.Context, ResponseEvent) error { return nil }
func (nopEvents) AppendScoreEvent(context.Context, ScoreEvent) error       { return nil }
