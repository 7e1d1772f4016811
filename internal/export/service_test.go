package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

type staticStore struct {
	records []entity.StoredRecord
}

func (s *staticStore) Append(ctx context.Context, rec entity.StoredRecord) error       { return nil }
func (s *staticStore) AppendAll(ctx context.Context, recs []entity.StoredRecord) error { return nil }
func (s *staticStore) ReadAll(ctx context.Context) ([]entity.StoredRecord, error) {
	return s.records, nil
}
func (s *staticStore) ClearRow(ctx context.Context, rowID int) error { return nil }
func (s *staticStore) RowCount(ctx context.Context) (int, error)     { return len(s.records) + 1, nil }

func TestExportXLSX(t *testing.T) {
	st := &staticStore{records: []entity.StoredRecord{
		{Date: "2026/08/30", Product: "كولا", Price: 23, Notes: "بارد"},
		{Date: "2026/08/31", Product: "شاي", Price: 15},
	}}
	svc := NewService(st, nil)

	data, err := svc.ExportXLSX(context.Background(), nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Purchases")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)

	assert.Equal(t, []string{"Date", "Product", "Price", "Notes"}, rows[0][:4])
	assert.Equal(t, "كولا", rows[1][1])
	assert.Equal(t, "شاي", rows[2][1])

	// The summary row carries the total.
	last := rows[len(rows)-1]
	require.GreaterOrEqual(t, len(last), 3)
	assert.Equal(t, "Total", last[1])
	assert.Equal(t, "38", last[2])
}

func TestExportXLSX_DateWindow(t *testing.T) {
	st := &staticStore{records: []entity.StoredRecord{
		{Date: "2026/08/01", Product: "قديم", Price: 9},
		{Date: "2026/08/30", Product: "كولا", Price: 23},
	}}
	svc := NewService(st, nil)

	from := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	data, err := svc.ExportXLSX(context.Background(), &from, &to)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Purchases")
	require.NoError(t, err)

	var products []string
	for _, row := range rows[1:] {
		if len(row) > 1 && row[1] != "" && row[1] != "Total" {
			products = append(products, row[1])
		}
	}
	assert.Equal(t, []string{"كولا"}, products)
}
