package parser

import (
	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

// BatchResult partitions a multi-line message into fully parsed records and
// the lines the heuristics could not handle. The caller decides policy:
// commit Records only when Unparsed is empty, otherwise escalate the whole
// message and keep Records aside for merging with the AI's answer.
type BatchResult struct {
	Records  []entity.ParsedRecord
	Unparsed []string
}

// Complete reports whether every line produced a full record.
func (b BatchResult) Complete() bool {
	return len(b.Unparsed) == 0 && len(b.Records) > 0
}

// ParseBatch applies ParseLine to every non-empty line. Only outcomes with
// both product and price count as records; product-only and unparseable lines
// accumulate into Unparsed.
func (p *Parser) ParseBatch(text string) BatchResult {
	var result BatchResult
	for _, line := range nonEmptyLines(text) {
		out := p.ParseLine(line)
		if out.Kind == KindParsed && out.Record.HasPrice() {
			result.Records = append(result.Records, out.Record)
			continue
		}
		result.Unparsed = append(result.Unparsed, line)
	}
	return result
}

// MergeDedup combines deterministically parsed records with AI-derived
// candidates, dropping AI records that duplicate an already-parsed
// (product, price) pair so nothing is committed twice.
func MergeDedup(parsed, ai []entity.ParsedRecord) []entity.ParsedRecord {
	seen := make(map[string]struct{}, len(parsed))
	merged := make([]entity.ParsedRecord, 0, len(parsed)+len(ai))
	for _, r := range parsed {
		seen[r.Key()] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range ai {
		if _, dup := seen[r.Key()]; dup {
			continue
		}
		seen[r.Key()] = struct{}{}
		merged = append(merged, r)
	}
	return merged
}
