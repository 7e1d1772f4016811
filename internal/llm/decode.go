package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

// flexNumber decodes a price that arrives either as a JSON number or as a
// numeric string.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("price %q is not a number", s)
	}
	*f = flexNumber(v)
	return nil
}

type wireRecord struct {
	Product string     `json:"product"`
	Price   flexNumber `json:"price"`
	Notes   string     `json:"notes"`
}

// DecodeRecords turns a schema-validated JSON array into parsed records,
// re-checking each element. Any invalid element fails the whole batch; the
// caller must never receive a silently truncated extraction.
func DecodeRecords(raw []byte) ([]entity.ParsedRecord, error) {
	var wire []wireRecord
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: decode records: %v", common.ErrExtraction, err)
	}
	if len(wire) == 0 {
		return nil, fmt.Errorf("%w: empty extraction result", common.ErrExtraction)
	}
	out := make([]entity.ParsedRecord, 0, len(wire))
	for i, w := range wire {
		product := strings.TrimSpace(w.Product)
		if product == "" {
			return nil, fmt.Errorf("%w: element %d has an empty product", common.ErrExtraction, i)
		}
		price := float64(w.Price)
		if math.IsNaN(price) || math.IsInf(price, 0) {
			return nil, fmt.Errorf("%w: element %d has a non-finite price", common.ErrExtraction, i)
		}
		out = append(out, entity.ParsedRecord{
			Product: product,
			Price:   entity.Float64(price),
			Notes:   strings.TrimSpace(w.Notes),
		})
	}
	return out, nil
}
