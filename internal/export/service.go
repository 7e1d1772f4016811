// Package export produces XLSX report workbooks from recorded purchases,
// separate from the live store file so reports can be shared without handing
// out the working workbook.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/adel-hamdan/purchases-tracker/internal/entity"
	"github.com/adel-hamdan/purchases-tracker/internal/store"
)

// Service reads the store and renders report workbooks.
type Service struct {
	st     store.Store
	logger *slog.Logger
}

func NewService(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{st: st, logger: logger}
}

// ExportXLSX returns an XLSX workbook (as bytes) for the given date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all purchases.
func (s *Service) ExportXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var fromDate, toDate string
	if from != nil {
		fromDate = from.Format(entity.DateLayout)
	}
	if to != nil {
		toDate = to.Format(entity.DateLayout)
	}
	if fromDate != "" && toDate == "" {
		toDate = time.Now().Format(entity.DateLayout)
	}

	records, err := s.st.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read purchases: %w", err)
	}
	records = filterWindow(records, fromDate, toDate)

	f := excelize.NewFile()
	const sheet = "Purchases"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Date", "Product", "Price", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	var total float64
	for _, r := range records {
		values := []any{r.Date, r.Product, r.Price, r.Notes}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		total += r.Price
		row++
	}

	// Summary row after a blank line.
	totalCell, _ := excelize.CoordinatesToCellName(2, row+1)
	_ = f.SetCellValue(sheet, totalCell, "Total")
	sumCell, _ := excelize.CoordinatesToCellName(3, row+1)
	_ = f.SetCellValue(sheet, sumCell, total)

	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 && sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	s.logger.Info("export.done",
		"records", len(records),
		"total", total,
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// filterWindow keeps records whose date falls inside [from, to]. The date
// format sorts lexicographically, so string comparison is enough.
func filterWindow(records []entity.StoredRecord, from, to string) []entity.StoredRecord {
	if from == "" && to == "" {
		return records
	}
	kept := records[:0:0]
	for _, r := range records {
		if from != "" && r.Date < from {
			continue
		}
		if to != "" && r.Date > to {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
