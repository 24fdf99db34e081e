package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"golang.org/x/mod/semver"

	"github.com/abhisek/adaptiq/internal/itembank"
)

// BankRepo archives every published item bank so that sessions pinned to
// an older version can be resumed after a restart.
type BankRepo struct {
	db *sql.DB
}

// BankInfo describes an archived bank without loading its items.
type BankInfo struct {
	Version     string
	Items       int
	PublishedAt time.Time
}

// Save archives b. Saving a version twice replaces the stored copy.
func (r *BankRepo) Save(ctx context.Context, b *itembank.Bank, at time.Time) error {
	data, err := itembank.MarshalYAML(b)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}

	ins := builder().Insert(bankVersionsTable.Name).
		Columns("version", "items", "published_at", "data").
		Values(b.Version(), b.Len(), at.UTC(), string(data)).
		OnConflict(
			entsql.ConflictColumns("version"),
			entsql.ResolveWithNewValues(),
		)
	if err := execBuilt(ctx, r.db, ins); err != nil {
		return fmt.Errorf("save bank %s: %w", b.Version(), err)
	}
	return nil
}

// Load returns the archived bank with the given version, or nil if it
// was never saved.
func (r *BankRepo) Load(ctx context.Context, version string) (*itembank.Bank, error) {
	bld := builder()
	query, args := bld.Select("data").
		From(bld.Table(bankVersionsTable.Name)).
		Where(entsql.EQ("version", version)).
		Query()

	var data string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load bank %s: %w", version, err)
	}
	b, err := itembank.LoadYAML(bytes.NewReader([]byte(data)))
	if err != nil {
		return nil, fmt.Errorf("decode bank %s: %w", version, err)
	}
	return b, nil
}

// List returns archived versions in ascending semver order.
func (r *BankRepo) List(ctx context.Context) ([]BankInfo, error) {
	bld := builder()
	query, args := bld.Select("version", "items", "published_at").
		From(bld.Table(bankVersionsTable.Name)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	defer rows.Close()

	var out []BankInfo
	for rows.Next() {
		var bi BankInfo
		if err := rows.Scan(&bi.Version, &bi.Items, &bi.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		out = append(out, bi)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortByVersion(out)
	return out, nil
}

// Latest returns the newest archived bank, or nil if none exist.
func (r *BankRepo) Latest(ctx context.Context) (*itembank.Bank, error) {
	infos, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, nil
	}
	return r.Load(ctx, infos[len(infos)-1].Version)
}

// Restore loads every archived bank into reg in version order. Versions
// newer than the current snapshot are published; older ones are only made
// resolvable. Versions the registry already has are skipped.
func (r *BankRepo) Restore(ctx context.Context, reg *itembank.Registry) (int, error) {
	infos, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, bi := range infos {
		if _, err := reg.Version(bi.Version); err == nil {
			continue
		}
		b, err := r.Load(ctx, bi.Version)
		if err != nil {
			return n, err
		}
		if semver.Compare(b.Version(), reg.Current().Version()) > 0 {
			if err := reg.Publish(b); err != nil {
				return n, err
			}
		} else {
			reg.Add(b)
		}
		n++
	}
	return n, nil
}

func sortByVersion(infos []BankInfo) {
	slices.SortFunc(infos, func(a, b BankInfo) int {
		return semver.Compare(a.Version, b.Version)
	})
}
