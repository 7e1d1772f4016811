package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/entity"
	"github.com/adel-hamdan/purchases-tracker/internal/retry"
)

// flakyStore fails every call with a configurable error and counts calls.
type flakyStore struct {
	err   error
	calls int
}

func (f *flakyStore) Append(ctx context.Context, rec entity.StoredRecord) error {
	f.calls++
	return f.err
}

func (f *flakyStore) AppendAll(ctx context.Context, recs []entity.StoredRecord) error {
	f.calls++
	return f.err
}

func (f *flakyStore) ReadAll(ctx context.Context) ([]entity.StoredRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []entity.StoredRecord{{Product: "primary", RowID: 2}}, nil
}

func (f *flakyStore) ClearRow(ctx context.Context, rowID int) error {
	f.calls++
	return f.err
}

func (f *flakyStore) RowCount(ctx context.Context) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func fastPolicy() retry.Policy {
	return retry.Policy{Attempts: 3, Backoff: time.Millisecond}
}

func TestResilient_NormalPathUsesPrimary(t *testing.T) {
	primary := &flakyStore{}
	r := NewResilient(primary, newTestCache(t), fastPolicy(), nil)
	ctx := context.Background()

	records, err := r.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "primary", records[0].Product)
	assert.Equal(t, Normal, r.State())
	assert.Equal(t, 1, primary.calls)
}

func TestResilient_TransientExhaustionDegradesAndFallsBack(t *testing.T) {
	primary := &flakyStore{err: common.Transient(errors.New("workbook unreachable"))}
	cache := newTestCache(t)
	r := NewResilient(primary, cache, fastPolicy(), nil)
	ctx := context.Background()

	rec := storedRec("كولا", 23, "")
	require.NoError(t, r.Append(ctx, rec))
	assert.Equal(t, Degraded, r.State())
	assert.Equal(t, 3, primary.calls) // full retry budget spent

	// The write landed in the cache.
	records, err := cache.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "كولا", records[0].Product)
}

func TestResilient_DegradedServesCacheWithoutTouchingPrimary(t *testing.T) {
	primary := &flakyStore{err: common.Transient(errors.New("down"))}
	cache := newTestCache(t)
	r := NewResilient(primary, cache, fastPolicy(), nil)
	ctx := context.Background()

	require.NoError(t, r.Append(ctx, storedRec("كولا", 23, "")))
	require.Equal(t, Degraded, r.State())
	callsAfterDegrade := primary.calls

	records, err := r.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, callsAfterDegrade, primary.calls, "degraded reads must not touch the primary")
}

func TestResilient_PermanentErrorPropagatesWithoutFallback(t *testing.T) {
	primary := &flakyStore{err: errors.New("validation rejected")}
	cache := newTestCache(t)
	r := NewResilient(primary, cache, fastPolicy(), nil)
	ctx := context.Background()

	err := r.Append(ctx, storedRec("كولا", 23, ""))
	require.Error(t, err)
	assert.Equal(t, Normal, r.State())
	assert.Equal(t, 1, primary.calls)

	records, readErr := cache.ReadAll(ctx)
	require.NoError(t, readErr)
	assert.Empty(t, records, "permanent failures must not be absorbed by the cache")
}

func TestResilient_ResetReturnsToPrimary(t *testing.T) {
	primary := &flakyStore{err: common.Transient(errors.New("down"))}
	r := NewResilient(primary, newTestCache(t), fastPolicy(), nil)
	ctx := context.Background()

	require.NoError(t, r.Append(ctx, storedRec("كولا", 23, "")))
	require.Equal(t, Degraded, r.State())

	primary.err = nil
	r.Reset()
	require.Equal(t, Normal, r.State())

	_, err := r.ReadAll(ctx)
	require.NoError(t, err)
	assert.Greater(t, primary.calls, 3)
}

func TestResilient_DegradedDeletionFails(t *testing.T) {
	primary := &flakyStore{err: common.Transient(errors.New("down"))}
	r := NewResilient(primary, newTestCache(t), fastPolicy(), nil)
	ctx := context.Background()

	require.NoError(t, r.Append(ctx, storedRec("كولا", 23, "")))
	require.Equal(t, Degraded, r.State())

	// Deletions cannot be served from the append-only snapshot.
	err := r.ClearRow(ctx, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStore))
}

func TestResilient_FlushReplaysCacheAndResets(t *testing.T) {
	primary := &flakyStore{err: common.Transient(errors.New("down"))}
	cache := newTestCache(t)
	r := NewResilient(primary, cache, fastPolicy(), nil)
	ctx := context.Background()

	require.NoError(t, r.Append(ctx, storedRec("كولا", 23, "")))
	require.NoError(t, r.Append(ctx, storedRec("شاي", 15, "")))
	require.Equal(t, Degraded, r.State())

	// The primary recovers; replaying drains the snapshot.
	primary.err = nil
	n, err := r.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, Normal, r.State())

	records, err := cache.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestResilient_FlushWithEmptyCacheResets(t *testing.T) {
	primary := &flakyStore{err: common.Transient(errors.New("down"))}
	r := NewResilient(primary, newTestCache(t), fastPolicy(), nil)
	ctx := context.Background()

	require.NoError(t, r.Append(ctx, storedRec("كولا", 23, "")))
	r.Reset()
	primaryCallsBefore := primary.calls

	// One record is cached from the degraded append; a second flush after
	// purging finds nothing.
	primary.err = nil
	n, err := r.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = r.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, primaryCallsBefore+1, primary.calls, "an empty flush must not touch the primary")
}

func TestResilient_NilCachePropagatesExhaustion(t *testing.T) {
	primary := &flakyStore{err: common.Transient(errors.New("down"))}
	r := NewResilient(primary, nil, fastPolicy(), nil)

	err := r.Append(context.Background(), storedRec("كولا", 23, ""))
	require.Error(t, err)
	assert.True(t, common.IsTransient(err))
	assert.Equal(t, Normal, r.State())
}
