package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/entity"
	"github.com/adel-hamdan/purchases-tracker/internal/retry"
)

// Resilient wraps the primary store with the bounded retry policy and a
// single fallback hop to the local cache. The state machine is explicit:
// call the primary (with retries), on exhaustion transition to Degraded and
// serve the cache; an explicit Reset returns to Normal. There is no
// recursion and no global mode flag.
type Resilient struct {
	primary Store
	cache   *Cache
	policy  retry.Policy
	logger  *slog.Logger

	mu    sync.Mutex
	state ConnState
}

// NewResilient builds the wrapper. The cache may be nil, in which case
// exhausted retries simply propagate the primary's error.
func NewResilient(primary Store, cache *Cache, policy retry.Policy, logger *slog.Logger) *Resilient {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resilient{primary: primary, cache: cache, policy: policy, logger: logger}
}

// State reports the current connection state.
func (r *Resilient) State() ConnState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Reset returns to Normal so the next call goes to the primary again.
func (r *Resilient) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Normal {
		r.logger.Info("store.state.reset")
	}
	r.state = Normal
}

func (r *Resilient) degrade(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Degraded {
		r.logger.Warn("store.state.degraded", "cause", err)
	}
	r.state = Degraded
}

// Flush replays everything in the cache snapshot into the primary store and,
// on success, empties the snapshot and returns to Normal. It reports how many
// records were replayed. Safe to call in any state; with an empty snapshot it
// only resets.
func (r *Resilient) Flush(ctx context.Context) (int, error) {
	if r.cache == nil {
		r.Reset()
		return 0, nil
	}

	records, err := r.cache.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		r.Reset()
		return 0, nil
	}

	stored := make([]entity.StoredRecord, len(records))
	for i, rec := range records {
		rec.RowID = 0 // synthesized position, meaningless in the primary
		stored[i] = rec
	}
	if err := r.policy.Do(ctx, r.logger, "store.flush", func(ctx context.Context) error {
		return r.primary.AppendAll(ctx, stored)
	}); err != nil {
		return 0, err
	}
	if err := r.cache.Purge(ctx); err != nil {
		return len(stored), err
	}
	r.Reset()
	r.logger.Info("store.flush.done", "records", len(stored))
	return len(stored), nil
}

// call runs primaryOp against the primary with retries, falling back to
// cacheOp exactly once if retries are exhausted on a transient failure.
func (r *Resilient) call(ctx context.Context, op string, primaryOp, cacheOp func(context.Context) error) error {
	if r.State() == Degraded && r.cache != nil && cacheOp != nil {
		return cacheOp(ctx)
	}

	err := r.policy.Do(ctx, r.logger, op, primaryOp)
	if err == nil {
		return nil
	}
	if !common.IsTransient(err) || r.cache == nil || cacheOp == nil {
		return err
	}

	r.degrade(err)
	return cacheOp(ctx)
}

// Append writes to the primary, or to the cache when degraded. The cache
// write keeps the user-visible commit succeeding during outages.
func (r *Resilient) Append(ctx context.Context, rec entity.StoredRecord) error {
	return r.call(ctx, "store.append",
		func(ctx context.Context) error { return r.primary.Append(ctx, rec) },
		func(ctx context.Context) error { return r.cache.Append(ctx, rec) },
	)
}

// AppendAll writes the batch in parse order.
func (r *Resilient) AppendAll(ctx context.Context, recs []entity.StoredRecord) error {
	return r.call(ctx, "store.append_all",
		func(ctx context.Context) error { return r.primary.AppendAll(ctx, recs) },
		func(ctx context.Context) error { return r.cache.AppendAll(ctx, recs) },
	)
}

// ReadAll reads from the primary, or the cached snapshot when degraded.
func (r *Resilient) ReadAll(ctx context.Context) ([]entity.StoredRecord, error) {
	var records []entity.StoredRecord
	err := r.call(ctx, "store.read_all",
		func(ctx context.Context) error {
			var err error
			records, err = r.primary.ReadAll(ctx)
			return err
		},
		func(ctx context.Context) error {
			var err error
			records, err = r.cache.ReadAll(ctx)
			return err
		},
	)
	return records, err
}

// ClearRow never falls back: deleting against the snapshot cannot affect the
// primary, so failures surface to the caller for per-row reporting.
func (r *Resilient) ClearRow(ctx context.Context, rowID int) error {
	return r.call(ctx, "store.clear_row",
		func(ctx context.Context) error { return r.primary.ClearRow(ctx, rowID) },
		func(ctx context.Context) error { return r.cache.ClearRow(ctx, rowID) },
	)
}

// RowCount reports the primary's row count, or the snapshot's when degraded.
func (r *Resilient) RowCount(ctx context.Context) (int, error) {
	var n int
	err := r.call(ctx, "store.row_count",
		func(ctx context.Context) error {
			var err error
			n, err = r.primary.RowCount(ctx)
			return err
		},
		func(ctx context.Context) error {
			var err error
			n, err = r.cache.RowCount(ctx)
			return err
		},
	)
	return n, err
}
