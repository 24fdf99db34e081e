package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out the global sequence shared by every event
// table, so a response event can be ordered against the score event that
// followed it even though they live in different tables.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

const sequenceRow = 1

// newSequenceCounter seeds the single counter row if it is missing.
func newSequenceCounter(ctx context.Context, db *sql.DB) (*sequenceCounter, error) {
	seed := builder().Insert(globalSequenceTable.Name).
		Columns("id", "next_val").
		Values(sequenceRow, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
	if err := execBuilt(ctx, db, seed); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{db: db}, nil
}

// Next returns the next sequence number. The increment and read happen in
// one UPDATE ... RETURNING statement.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	query, args := builder().Update(globalSequenceTable.Name).
		Add("next_val", 1).
		Where(entsql.EQ("id", sequenceRow)).
		Returning("next_val").
		Query()

	var next int64
	if err := sc.db.QueryRowContext(ctx, query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return next - 1, nil
}
