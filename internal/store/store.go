// Package store implements the tabular purchases store: an XLSX workbook
// addressed by row position (row 1 is the header), a local SQLite cache for
// degraded operation, and a resilient wrapper that moves between the two with
// an explicit connection state instead of a process-wide mode flag.
package store

import (
	"context"

	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

// Store is the contract the workflow and reconciler depend on. Row
// identifiers are positions, stable only until another row is removed.
type Store interface {
	// Append writes one record after the last data row.
	Append(ctx context.Context, rec entity.StoredRecord) error
	// AppendAll writes records in order; order within a batch is preserved.
	AppendAll(ctx context.Context, recs []entity.StoredRecord) error
	// ReadAll returns all data rows. Row 1 is the header, so data rows carry
	// RowID >= 2, valid only until the next mutation.
	ReadAll(ctx context.Context) ([]entity.StoredRecord, error)
	// ClearRow removes the row at rowID, shifting later rows up.
	ClearRow(ctx context.Context, rowID int) error
	// RowCount reports the current number of rows including the header.
	RowCount(ctx context.Context) (int, error)
}

// ConnState is the explicit connection state of the resilient store. It is a
// return-value-driven transition, never a silent global mutation.
type ConnState int

const (
	// Normal means the primary workbook is serving reads and writes.
	Normal ConnState = iota
	// Degraded means the primary is unreachable and the local cache stands in.
	Degraded
)

func (s ConnState) String() string {
	if s == Degraded {
		return "degraded"
	}
	return "normal"
}
