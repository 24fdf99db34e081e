package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/adaptiq/internal/session"
)

// EventRepo appends to and reads from the event tables. Every append
// takes the next global sequence number first.
type EventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var _ session.EventRecorder = (*EventRepo)(nil)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int   // max results (0 = unlimited)
	After int64 // sequence > After
}

func (r *EventRepo) append(ctx context.Context, table string, at time.Time, columns []string, values ...any) error {
	if at.IsZero() {
		at = time.Now()
	}
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	ins := builder().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(append([]any{seqNum, at.UTC()}, values...)...)
	if err := execBuilt(ctx, r.db, ins); err != nil {
		return fmt.Errorf("save %s: %w", table, err)
	}
	return nil
}

func (r *EventRepo) AppendSessionEvent(ctx context.Context, e session.SessionEvent) error {
	return r.append(ctx, sessionEventsTable.Name, e.At,
		[]string{"session_id", "user_id", "action", "status", "stop_reason", "bank_version"},
		e.SessionID, e.UserID, e.Action, string(e.Status), string(e.StopReason), e.BankVersion,
	)
}

func (r *EventRepo) AppendResponseEvent(ctx context.Context, e session.ResponseEvent) error {
	return r.append(ctx, responseEventsTable.Name, e.At,
		[]string{"session_id", "user_id", "item_id", "section", "correct", "response_time_ms",
			"hint_used", "theta_before", "theta_after", "standard_error"},
		e.SessionID, e.UserID, e.ItemID, string(e.Section), e.Correct, e.ResponseTimeMs,
		e.HintUsed, e.ThetaBefore, e.ThetaAfter, e.StandardError,
	)
}

func (r *EventRepo) AppendScoreEvent(ctx context.Context, e session.ScoreEvent) error {
	result, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	return r.append(ctx, scoreEventsTable.Name, e.At,
		[]string{"session_id", "user_id", "theta", "standard_error", "iq", "eiq", "percentile", "reliable", "result"},
		e.SessionID, e.UserID, e.Result.Theta, e.Result.StandardError, e.Result.IQ, e.Result.EIQ,
		e.Result.Percentile, e.Result.Reliable, string(result),
	)
}

// LogEntry is one event in a session's merged history.
type LogEntry struct {
	Sequence  int64
	Timestamp time.Time
	Kind      string // "session", "response" or "score"
	Summary   string
}

// SessionLog returns every event recorded for a session, ordered by
// global sequence.
func (r *EventRepo) SessionLog(ctx context.Context, sessionID string) ([]LogEntry, error) {
	var out []LogEntry

	lifecycle, err := r.scanEvents(ctx, sessionEventsTable.Name, sessionID,
		[]string{"action", "status", "stop_reason"},
		func(scan func(...any) error) (string, error) {
			var action, status, reason string
			if err := scan(&action, &status, &reason); err != nil {
				return "", err
			}
			if reason != "" {
				return fmt.Sprintf("%s status=%s reason=%s", action, status, reason), nil
			}
			return fmt.Sprintf("%s status=%s", action, status), nil
		})
	if err != nil {
		return nil, err
	}
	out = append(out, tag(lifecycle, "session")...)

	responses, err := r.scanEvents(ctx, responseEventsTable.Name, sessionID,
		[]string{"item_id", "section", "correct", "response_time_ms", "hint_used", "theta_after", "standard_error"},
		func(scan func(...any) error) (string, error) {
			var (
				item, section string
				correct, hint bool
				ms            int64
				theta, se     float64
			)
			if err := scan(&item, &section, &correct, &ms, &hint, &theta, &se); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s [%s] correct=%t %dms hint=%t theta=%.3f se=%.3f",
				item, section, correct, ms, hint, theta, se), nil
		})
	if err != nil {
		return nil, err
	}
	out = append(out, tag(responses, "response")...)

	scores, err := r.scanEvents(ctx, scoreEventsTable.Name, sessionID,
		[]string{"iq", "eiq", "percentile", "reliable"},
		func(scan func(...any) error) (string, error) {
			var (
				iq, eiq, pct int
				reliable     bool
			)
			if err := scan(&iq, &eiq, &pct, &reliable); err != nil {
				return "", err
			}
			return fmt.Sprintf("iq=%d eiq=%d percentile=%d reliable=%t", iq, eiq, pct, reliable), nil
		})
	if err != nil {
		return nil, err
	}
	out = append(out, tag(scores, "score")...)

	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func tag(entries []LogEntry, kind string) []LogEntry {
	for i := range entries {
		entries[i].Kind = kind
	}
	return entries
}

func (r *EventRepo) scanEvents(
	ctx context.Context,
	table, sessionID string,
	columns []string,
	summarize func(scan func(...any) error) (string, error),
) ([]LogEntry, error) {
	b := builder()
	query, args := b.Select(append([]string{"sequence", "timestamp"}, columns...)...).
		From(b.Table(table)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []LogEntry
	for rows.Next() {
		var e LogEntry
		summary, err := summarize(func(dest ...any) error {
			return rows.Scan(append([]any{&e.Sequence, &e.Timestamp}, dest...)...)
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		e.Summary = summary
		out = append(out, e)
	}
	return out, rows.Err()
}

// ItemStats aggregates observed responses for one item.
type ItemStats struct {
	ItemID     string
	Responses  int
	Correct    int
	MeanTimeMs float64
}

// ItemUsage returns per-item response counts, most administered first.
func (r *EventRepo) ItemUsage(ctx context.Context, limit int) ([]ItemStats, error) {
	query := `SELECT item_id, COUNT(*), SUM(CASE WHEN correct THEN 1 ELSE 0 END), AVG(response_time_ms)
		FROM response_events GROUP BY item_id ORDER BY COUNT(*) DESC, item_id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query item usage: %w", err)
	}
	defer rows.Close()

	var out []ItemStats
	for rows.Next() {
		var s ItemStats
		if err := rows.Scan(&s.ItemID, &s.Responses, &s.Correct, &s.MeanTimeMs); err != nil {
			return nil, fmt.Errorf("scan item usage: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
