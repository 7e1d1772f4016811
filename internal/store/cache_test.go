package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_AppendAndReadAll(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Append(ctx, storedRec("كولا", 23, "بارد")))
	require.NoError(t, c.AppendAll(ctx, []entity.StoredRecord{
		storedRec("شاي", 15, ""),
		storedRec("خبز", 5, ""),
	}))

	records, err := c.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "كولا", records[0].Product)
	assert.Equal(t, "بارد", records[0].Notes)
	// Synthesized positions start at 2, matching the workbook's layout.
	assert.Equal(t, 2, records[0].RowID)
	assert.Equal(t, 4, records[2].RowID)
}

func TestCache_RowCountIncludesVirtualHeader(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	n, err := c.RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, c.Append(ctx, storedRec("كولا", 23, "")))
	n, err = c.RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCache_ClearRowAlwaysFails(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Append(ctx, storedRec("كولا", 23, "")))

	err := c.ClearRow(ctx, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStore))

	// The snapshot is untouched.
	records, err := c.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCache_AppendAllEmptyIsNoop(t *testing.T) {
	c := newTestCache(t)
	assert.NoError(t, c.AppendAll(context.Background(), nil))
}
