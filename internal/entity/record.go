package entity

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format used in the store's first column.
const DateLayout = "2006/01/02"

// ParsedRecord is a purchase extracted from user text. A nil Price means the
// line named a product but no price was found yet; that is a valid
// intermediate state, not a failure.
type ParsedRecord struct {
	Product string   `json:"product"`
	Price   *float64 `json:"price,omitempty"`
	Notes   string   `json:"notes"`
}

// HasPrice reports whether the record carries a price.
func (r ParsedRecord) HasPrice() bool {
	return r.Price != nil
}

// Line renders the record back into the canonical "product price notes" form.
func (r ParsedRecord) Line() string {
	parts := []string{r.Product}
	if r.Price != nil {
		parts = append(parts, FormatPrice(*r.Price))
	}
	if r.Notes != "" {
		parts = append(parts, r.Notes)
	}
	return strings.Join(parts, " ")
}

// FormatPrice renders a price the way the store displays it: no trailing
// zeros, no currency symbol.
func FormatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Key identifies a record for deduplication when merging deterministic parses
// with AI-extracted candidates.
func (r ParsedRecord) Key() string {
	price := ""
	if r.Price != nil {
		price = FormatPrice(*r.Price)
	}
	return strings.ToLower(strings.TrimSpace(r.Product)) + "|" + price
}

// StoredRecord is a row read back from the tabular store. RowID is the 1-based
// position of the row at the time of the read (row 1 is the header); it is NOT
// stable across mutations and must be re-validated before any deletion.
type StoredRecord struct {
	Date    string  `json:"date"` // YYYY/MM/DD
	Product string  `json:"product"`
	Price   float64 `json:"price"`
	Notes   string  `json:"notes"`
	RowID   int     `json:"row_id"`
}

// NewStoredRecord stamps a parsed record with today's date for appending.
func NewStoredRecord(r ParsedRecord, now time.Time) StoredRecord {
	var price float64
	if r.Price != nil {
		price = *r.Price
	}
	return StoredRecord{
		Date:    now.Format(DateLayout),
		Product: strings.TrimSpace(r.Product),
		Price:   price,
		Notes:   strings.TrimSpace(r.Notes),
	}
}

// Float64 is a convenience for building *float64 literals.
func Float64(f float64) *float64 { return &f }
