package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS purchases (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	date       TEXT NOT NULL,
	product    TEXT NOT NULL,
	price      REAL NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// Cache is the append-only local snapshot used while the primary store is
// unreachable. It exists for read/write continuity only; it makes no
// correctness promises beyond preserving what was written to it.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenCache opens (or creates) the SQLite cache at path. ":memory:" works for
// tests.
func OpenCache(path string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open cache: %v", common.ErrStore, err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init cache schema: %v", common.ErrStore, err)
	}
	return &Cache{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Append writes one record to the snapshot.
func (c *Cache) Append(ctx context.Context, rec entity.StoredRecord) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO purchases (date, product, price, notes) VALUES (?, ?, ?, ?)`,
		rec.Date, rec.Product, rec.Price, rec.Notes)
	if err != nil {
		return fmt.Errorf("%w: cache append: %v", common.ErrStore, err)
	}
	return nil
}

// AppendAll writes records in order inside one transaction.
func (c *Cache) AppendAll(ctx context.Context, recs []entity.StoredRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: cache begin: %v", common.ErrStore, err)
	}
	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO purchases (date, product, price, notes) VALUES (?, ?, ?, ?)`,
			rec.Date, rec.Product, rec.Price, rec.Notes); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: cache append: %v", common.ErrStore, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: cache commit: %v", common.ErrStore, err)
	}
	return nil
}

// ReadAll returns the snapshot in insertion order. Row ids are synthesized
// positions (data rows start at 2, as in the workbook) so displayed lists
// keep working, but they identify nothing durable.
func (c *Cache) ReadAll(ctx context.Context) ([]entity.StoredRecord, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT date, product, price, notes FROM purchases ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: cache read: %v", common.ErrStore, err)
	}
	defer rows.Close()

	var records []entity.StoredRecord
	pos := 2
	for rows.Next() {
		var rec entity.StoredRecord
		if err := rows.Scan(&rec.Date, &rec.Product, &rec.Price, &rec.Notes); err != nil {
			return nil, fmt.Errorf("%w: cache scan: %v", common.ErrStore, err)
		}
		rec.RowID = pos
		pos++
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: cache rows: %v", common.ErrStore, err)
	}
	return records, nil
}

// ClearRow always fails: the snapshot is append-only, and deletions against
// an unreachable primary must be reported, never silently absorbed.
func (c *Cache) ClearRow(ctx context.Context, rowID int) error {
	return fmt.Errorf("%w: primary store unreachable, deletion of row %d not applied", common.ErrStore, rowID)
}

// Purge empties the snapshot. Only the recovery flush calls this, after the
// snapshot's contents have landed in the primary store.
func (c *Cache) Purge(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM purchases`); err != nil {
		return fmt.Errorf("%w: cache purge: %v", common.ErrStore, err)
	}
	return nil
}

// RowCount reports the synthesized row count including the virtual header.
func (c *Cache) RowCount(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchases`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: cache count: %v", common.ErrStore, err)
	}
	return n + 1, nil
}
