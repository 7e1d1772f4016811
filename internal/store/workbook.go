package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

// headerColumns is the fixed header written to row 1.
var headerColumns = []string{"التاريخ", "المنتج", "السعر", "ملاحظات"}

// Workbook is the primary store: an XLSX file where each purchase is one row.
// Every operation opens, mutates, saves, and closes the file, so any call can
// independently observe the file becoming unreachable.
type Workbook struct {
	path     string
	sheet    string
	minPrice float64
	maxPrice float64
	mu       sync.Mutex
	logger   *slog.Logger
}

// NewWorkbook opens or creates the workbook and guarantees the header row.
func NewWorkbook(cfg common.StoreConfig, logger *slog.Logger) (*Workbook, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Workbook{
		path:     cfg.WorkbookPath,
		sheet:    cfg.SheetName,
		minPrice: cfg.MinPrice,
		maxPrice: cfg.MaxPrice,
		logger:   logger,
	}
	if w.sheet == "" {
		w.sheet = "Sheet1"
	}
	if err := w.ensureHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Workbook) ensureHeader() error {
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		f := excelize.NewFile()
		defer f.Close()
		if w.sheet != "Sheet1" {
			if _, err := f.NewSheet(w.sheet); err != nil {
				return fmt.Errorf("%w: create sheet: %v", common.ErrStore, err)
			}
		}
		if err := w.writeHeader(f); err != nil {
			return err
		}
		if err := f.SaveAs(w.path); err != nil {
			return common.Transient(fmt.Errorf("%w: create workbook: %v", common.ErrStore, err))
		}
		w.logger.Info("store.workbook.created", "path", w.path, "sheet", w.sheet)
		return nil
	}

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()
	rows, err := f.GetRows(w.sheet)
	if err != nil {
		return fmt.Errorf("%w: read header: %v", common.ErrStore, err)
	}
	if len(rows) == 0 || len(rows[0]) < len(headerColumns) {
		if err := w.writeHeader(f); err != nil {
			return err
		}
		if err := f.Save(); err != nil {
			return common.Transient(fmt.Errorf("%w: save header: %v", common.ErrStore, err))
		}
	}
	return nil
}

func (w *Workbook) writeHeader(f *excelize.File) error {
	for i, name := range headerColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("%w: header cell: %v", common.ErrStore, err)
		}
		if err := f.SetCellValue(w.sheet, cell, name); err != nil {
			return fmt.Errorf("%w: write header: %v", common.ErrStore, err)
		}
	}
	return nil
}

func (w *Workbook) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		// Unreachable or corrupt file; retry may help if it is transient IO.
		return nil, common.Transient(fmt.Errorf("%w: open workbook: %v", common.ErrStore, err))
	}
	return f, nil
}

func (w *Workbook) validate(rec entity.StoredRecord) error {
	if err := common.ValidateProduct(rec.Product); err != nil {
		return err
	}
	return common.ValidatePrice(rec.Price, w.minPrice, w.maxPrice)
}

// Append writes one record after the last row.
func (w *Workbook) Append(ctx context.Context, rec entity.StoredRecord) error {
	return w.AppendAll(ctx, []entity.StoredRecord{rec})
}

// AppendAll validates every record first, then writes them in order within a
// single open/save cycle. A batch either commits completely or not at all.
func (w *Workbook) AppendAll(ctx context.Context, recs []entity.StoredRecord) error {
	if len(recs) == 0 {
		return nil
	}
	for _, rec := range recs {
		if err := w.validate(rec); err != nil {
			return err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(w.sheet)
	if err != nil {
		return fmt.Errorf("%w: read rows: %v", common.ErrStore, err)
	}
	next := len(rows) + 1
	for _, rec := range recs {
		if err := w.setRow(f, next, rec); err != nil {
			return err
		}
		next++
	}
	if err := f.Save(); err != nil {
		return common.Transient(fmt.Errorf("%w: save workbook: %v", common.ErrStore, err))
	}
	w.logger.Info("store.workbook.appended", "records", len(recs), "path", w.path)
	return nil
}

func (w *Workbook) setRow(f *excelize.File, row int, rec entity.StoredRecord) error {
	values := []any{rec.Date, rec.Product, rec.Price, rec.Notes}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("%w: cell name: %v", common.ErrStore, err)
		}
		if err := f.SetCellValue(w.sheet, cell, v); err != nil {
			return fmt.Errorf("%w: write cell %s: %v", common.ErrStore, cell, err)
		}
	}
	return nil
}

// ReadAll returns all data rows with their current positions. Malformed rows
// are skipped with a warning rather than failing the whole read.
func (w *Workbook) ReadAll(ctx context.Context) ([]entity.StoredRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := w.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %v", common.ErrStore, err)
	}

	var records []entity.StoredRecord
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 3 || strings.TrimSpace(row[1]) == "" {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			w.logger.Warn("store.workbook.bad_row", "row", i+1, "error", err)
			continue
		}
		rec := entity.StoredRecord{
			Date:    strings.TrimSpace(row[0]),
			Product: strings.TrimSpace(row[1]),
			Price:   price,
			RowID:   i + 1,
		}
		if len(row) > 3 {
			rec.Notes = strings.TrimSpace(row[3])
		}
		records = append(records, rec)
	}
	return records, nil
}

// ClearRow removes the row at rowID. Later rows shift up, which is exactly
// why callers must delete in descending order. The header is untouchable and
// stale identifiers beyond the current row count are rejected.
func (w *Workbook) ClearRow(ctx context.Context, rowID int) error {
	if rowID <= 1 {
		return fmt.Errorf("%w: row %d is the header or invalid", common.ErrSelection, rowID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(w.sheet)
	if err != nil {
		return fmt.Errorf("%w: read rows: %v", common.ErrStore, err)
	}
	if rowID > len(rows) {
		return fmt.Errorf("%w: row %d is stale (store has %d rows)", common.ErrSelection, rowID, len(rows))
	}

	if err := f.RemoveRow(w.sheet, rowID); err != nil {
		return fmt.Errorf("%w: remove row %d: %v", common.ErrStore, rowID, err)
	}
	if err := f.Save(); err != nil {
		return common.Transient(fmt.Errorf("%w: save workbook: %v", common.ErrStore, err))
	}
	w.logger.Info("store.workbook.row_cleared", "row", rowID)
	return nil
}

// RowCount reports the number of rows including the header.
func (w *Workbook) RowCount(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := w.open()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := f.GetRows(w.sheet)
	if err != nil {
		return 0, fmt.Errorf("%w: read rows: %v", common.ErrStore, err)
	}
	return len(rows), nil
}
