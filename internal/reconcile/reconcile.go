// Package reconcile maps user-visible list positions onto store row
// identifiers and performs deletion safely. Row identifiers are positions
// that shift when lower rows are removed, so deletions always run in
// descending row order and stale identifiers are rejected against a fresh
// row count instead of being trusted.
package reconcile

import (
	"context"
	"log/slog"
	"sort"

	"github.com/adel-hamdan/purchases-tracker/internal/entity"
	"github.com/adel-hamdan/purchases-tracker/internal/store"
)

// headerRow is the store row reserved for column headers; it is never
// deletable.
const headerRow = 1

// Preparation resolves chosen display numbers against the displayed list.
type Preparation struct {
	ToDelete []entity.StoredRecord
	Invalid  []int
}

// PrepareDeletion resolves 1-based display numbers strictly against the
// exact list that was shown to the user, never against a re-fetched one:
// positions drift between display and action, the snapshot does not.
// Duplicate numbers resolve once; out-of-range numbers are reported.
func PrepareDeletion(displayed []entity.StoredRecord, chosen []int) Preparation {
	var prep Preparation
	seen := make(map[int]struct{}, len(chosen))
	for _, n := range chosen {
		if n < 1 || n > len(displayed) {
			prep.Invalid = append(prep.Invalid, n)
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		prep.ToDelete = append(prep.ToDelete, displayed[n-1])
	}
	return prep
}

// Result reports a batch deletion's outcome. Failed holds the row ids that
// could not be removed; one failure never aborts the rest.
type Result struct {
	Succeeded int
	Failed    []int
}

// DeleteRows removes the given rows from the store. Row ids are de-duplicated
// and sorted descending before deletion — mandatory, because clearing a row
// shifts every later row up, and descending order guarantees each pending id
// still addresses its original content when processed. The header row and
// ids beyond the store's current row count are rejected without an attempt.
func DeleteRows(ctx context.Context, st store.Store, rowIDs []int, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}

	ids := dedupeDescending(rowIDs)
	var result Result

	rowCount, err := st.RowCount(ctx)
	if err != nil {
		logger.Error("reconcile.row_count_failed", "error", err)
		result.Failed = append(result.Failed, ids...)
		return result
	}

	for _, id := range ids {
		if id <= headerRow {
			logger.Warn("reconcile.reject_row", "row", id, "reason", "header")
			result.Failed = append(result.Failed, id)
			continue
		}
		if id > rowCount {
			logger.Warn("reconcile.reject_row", "row", id, "reason", "stale", "row_count", rowCount)
			result.Failed = append(result.Failed, id)
			continue
		}
		if err := st.ClearRow(ctx, id); err != nil {
			logger.Error("reconcile.delete_failed", "row", id, "error", err)
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Succeeded++
	}

	logger.Info("reconcile.done", "succeeded", result.Succeeded, "failed", len(result.Failed))
	return result
}

func dedupeDescending(rowIDs []int) []int {
	seen := make(map[int]struct{}, len(rowIDs))
	ids := make([]int, 0, len(rowIDs))
	for _, id := range rowIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	return ids
}
