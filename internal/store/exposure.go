package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/adaptiq/internal/session"
)

// ExposureRepo persists which items each user has seen, so exposure
// control survives restarts.
type ExposureRepo struct {
	db     *sql.DB
	window int
}

var _ session.ExposureTracker = (*ExposureRepo)(nil)

func (r *ExposureRepo) limit() int {
	if r.window <= 0 {
		return session.DefaultExposureWindow
	}
	return r.window
}

// Recent returns the user's last window items.
func (r *ExposureRepo) Recent(ctx context.Context, userID string) (map[string]bool, error) {
	b := builder()
	query, args := b.Select("item_id").
		From(b.Table(exposuresTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("id")).
		Limit(r.limit()).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exposures: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan exposure: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (r *ExposureRepo) Record(ctx context.Context, userID, itemID string, at time.Time) error {
	ins := builder().Insert(exposuresTable.Name).
		Columns("user_id", "item_id", "exposed_at").
		Values(userID, itemID, at.UTC())
	if err := execBuilt(ctx, r.db, ins); err != nil {
		return fmt.Errorf("record exposure: %w", err)
	}
	return nil
}

// Prune drops exposure rows that fell out of every user's window.
func (r *ExposureRepo) Prune(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM item_exposures WHERE id IN (
		SELECT id FROM (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY id DESC) AS rn
			FROM item_exposures
		) WHERE rn > ?
	)`, r.limit())
	if err != nil {
		return 0, fmt.Errorf("prune exposures: %w", err)
	}
	return res.RowsAffected()
}
