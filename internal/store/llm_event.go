package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/adaptiq/internal/llm"
)

var _ llm.RequestRecorder = (*EventRepo)(nil)

// LLMRequestEventRecord is a stored LLM call.
type LLMRequestEventRecord struct {
	ID           int
	Sequence     int64
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMUsageStats aggregates calls per purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates calls per model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

func (r *EventRepo) AppendLLMRequest(ctx context.Context, rec llm.RequestLog) error {
	return r.append(ctx, llmEventsTable.Name, time.Time{},
		[]string{"provider", "model", "purpose", "input_tokens", "output_tokens", "cost_usd",
			"latency_ms", "success", "error_message", "request_body", "response_body"},
		rec.Provider, rec.Model, string(rec.Purpose), rec.InputTokens, rec.OutputTokens, rec.CostUSD,
		rec.LatencyMs, rec.Success, rec.ErrorMessage, rec.RequestBody, rec.ResponseBody,
	)
}

var llmEventFields = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"cost_usd", "latency_ms", "success", "error_message", "request_body", "response_body",
}

func scanLLMEvent(scan func(...any) error) (LLMRequestEventRecord, error) {
	var e LLMRequestEventRecord
	err := scan(&e.ID, &e.Sequence, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.CostUSD, &e.LatencyMs, &e.Success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
	return e, err
}

// QueryLLMEvents returns LLM events, newest first.
func (r *EventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	b := builder()
	sel := b.Select(llmEventFields...).
		From(b.Table(llmEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if opts.After > 0 {
		sel = sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestEventRecord
	for rows.Next() {
		e, err := scanLLMEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetLLMEvent returns a single event, or nil if it does not exist.
func (r *EventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error) {
	b := builder()
	query, args := b.Select(llmEventFields...).
		From(b.Table(llmEventsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	e, err := scanLLMEvent(r.db.QueryRowContext(ctx, query, args...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	return &e, nil
}

// LLMUsageByPurpose aggregates token usage per purpose.
func (r *EventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT purpose, COUNT(*), SUM(input_tokens), SUM(output_tokens),
		CAST(AVG(latency_ms) AS INTEGER)
		FROM llm_request_events GROUP BY purpose ORDER BY purpose`)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []LLMUsageStats
	for rows.Next() {
		var s LLMUsageStats
		if err := rows.Scan(&s.Purpose, &s.Calls, &s.InputTokens, &s.OutputTokens, &s.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LLMUsageByModel aggregates token usage and recorded cost per model.
func (r *EventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT model, COUNT(*), SUM(input_tokens), SUM(output_tokens), SUM(cost_usd)
		FROM llm_request_events GROUP BY model ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	defer rows.Close()

	var out []LLMModelUsage
	for rows.Next() {
		var m LLMModelUsage
		if err := rows.Scan(&m.Model, &m.Calls, &m.InputTokens, &m.OutputTokens, &m.CostUSD); err != nil {
			return nil, fmt.Errorf("scan model usage: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
