package llm

import (
	"context"

	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

// Extractor is the boundary to the external text-to-records extraction
// service. Implementations return the same record shape the line parser
// produces; the caller owns retry and fallback policy.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]entity.ParsedRecord, error)
}
