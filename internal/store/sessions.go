package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/adaptiq/internal/session"
)

// SessionRepo persists whole sessions as JSON documents keyed by id, with
// a few denormalized columns for listing and idle scans.
type SessionRepo struct {
	db *sql.DB
}

var _ session.Store = (*SessionRepo)(nil)

func (r *SessionRepo) SaveSession(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ins := builder().Insert(sessionsTable.Name).
		Columns("id", "user_id", "status", "bank_version", "questions", "theta", "started_at", "updated_unix", "data").
		Values(s.ID, s.UserID, string(s.Status), s.BankVersion, len(s.Responses), s.Theta,
			s.StartedAt.UTC(), s.UpdatedAt.UnixMilli(), string(data)).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		)
	if err := execBuilt(ctx, r.db, ins); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func (r *SessionRepo) LoadSession(ctx context.Context, id string) (*session.Session, error) {
	b := builder()
	query, args := b.Select("data").
		From(b.Table(sessionsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	var data string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &session.SessionNotFoundError{SessionID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var s session.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (r *SessionRepo) ListIdle(ctx context.Context, before time.Time) ([]string, error) {
	b := builder()
	query, args := b.Select("id").
		From(b.Table(sessionsTable.Name)).
		Where(entsql.And(
			entsql.EQ("status", string(session.StatusActive)),
			entsql.LT("updated_unix", before.UnixMilli()),
		)).
		OrderBy("id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list idle sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan idle session: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SessionSummary is one row of a session listing.
type SessionSummary struct {
	ID          string
	UserID      string
	Status      session.Status
	BankVersion string
	Questions   int
	Theta       float64
	StartedAt   time.Time
	UpdatedAt   time.Time
}

// ListOpts filters session listings.
type ListOpts struct {
	UserID string
	Status session.Status
	Limit  int // 0 = unlimited
}

// List returns session summaries, most recently updated first.
func (r *SessionRepo) List(ctx context.Context, opts ListOpts) ([]SessionSummary, error) {
	b := builder()
	sel := b.Select("id", "user_id", "status", "bank_version", "questions", "theta", "started_at", "updated_unix").
		From(b.Table(sessionsTable.Name)).
		OrderBy(entsql.Desc("updated_unix"))

	var preds []*entsql.Predicate
	if opts.UserID != "" {
		preds = append(preds, entsql.EQ("user_id", opts.UserID))
	}
	if opts.Status != "" {
		preds = append(preds, entsql.EQ("status", string(opts.Status)))
	}
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			s       SessionSummary
			status  string
			updated int64
		)
		if err := rows.Scan(&s.ID, &s.UserID, &status, &s.BankVersion, &s.Questions, &s.Theta, &s.StartedAt, &updated); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Status = session.Status(status)
		s.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}
