// Package parser turns free-form purchase text into structured records using
// ordered heuristics, and decides when those heuristics cannot be trusted and
// the message has to be escalated to the AI extraction service.
package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/entity"
	"github.com/adel-hamdan/purchases-tracker/internal/normalize"
)

// OutcomeKind tags the result of parsing one line.
type OutcomeKind int

const (
	// KindParsed means a full (product, price, notes) record was extracted.
	KindParsed OutcomeKind = iota
	// KindProductOnly means the line names a product but carries no price.
	KindProductOnly
	// KindUnparseable means no usable record could be extracted.
	KindUnparseable
)

// Outcome is the tagged result of ParseLine. Every line maps to exactly one
// outcome.
type Outcome struct {
	Kind    OutcomeKind
	Record  entity.ParsedRecord // set when Kind == KindParsed
	Product string              // set when Kind == KindProductOnly
	Raw     string              // set when Kind == KindUnparseable
}

// Parser extracts (product, price, notes) candidates from single lines.
type Parser struct {
	norm             *normalize.Normalizer
	maxProductTokens int
}

// NewParser builds a line parser. maxProductTokens bounds how many tokens are
// treated as the product name in price-first lines; purchase names are
// typically one to three words, so the default is 3.
func NewParser(norm *normalize.Normalizer, cfg common.ParserConfig) *Parser {
	if norm == nil {
		norm = normalize.New(nil)
	}
	max := cfg.MaxProductTokens
	if max <= 0 {
		max = 3
	}
	return &Parser{norm: norm, maxProductTokens: max}
}

// separators tried before whitespace tokenization, in priority order. The
// dash form is skipped for lines starting with "-" to avoid eating negative
// numbers.
var separators = []string{":", ",", "-", "="}

// ParseLine extracts a single record candidate from one line of text.
func (p *Parser) ParseLine(line string) Outcome {
	normalized := strings.TrimSpace(p.norm.Normalize(line))
	if normalized == "" {
		return Outcome{Kind: KindUnparseable, Raw: line}
	}

	for _, sep := range separators {
		if sep == "-" && strings.HasPrefix(normalized, "-") {
			continue
		}
		if !strings.Contains(normalized, sep) {
			continue
		}
		if out, ok := p.parseSeparated(normalized, sep); ok {
			return out
		}
		break // one separator form per line; fall back to the standard form
	}
	return p.parseStandard(line, normalized)
}

// parseSeparated handles the "product<sep>price<sep>notes" input forms.
func (p *Parser) parseSeparated(normalized, sep string) (Outcome, bool) {
	parts := strings.Split(normalized, sep)
	if len(parts) < 2 {
		return Outcome{}, false
	}
	product := strings.TrimSpace(parts[0])
	priceFields := strings.Fields(parts[1])
	if product == "" || len(priceFields) == 0 {
		return Outcome{}, false
	}
	price, ok := parseNumber(priceFields[0])
	if !ok {
		return Outcome{}, false
	}
	// Anything after the price field, separated or not, is notes.
	notesParts := priceFields[1:]
	if rest := strings.TrimSpace(strings.Join(parts[2:], sep)); rest != "" {
		notesParts = append(notesParts, rest)
	}
	notes := strings.Join(notesParts, " ")
	return Outcome{
		Kind:   KindParsed,
		Record: entity.ParsedRecord{Product: product, Price: &price, Notes: notes},
	}, true
}

// parseStandard scans whitespace tokens for the first numeric one (the price).
// Tokens before it are the product, tokens after are notes. Price-first lines
// flip that: the first few tokens after the price become the product.
func (p *Parser) parseStandard(raw, normalized string) Outcome {
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return Outcome{Kind: KindUnparseable, Raw: raw}
	}

	priceAt := -1
	var price float64
	for i, tok := range tokens {
		if v, ok := parseNumber(tok); ok {
			priceAt, price = i, v
			break
		}
	}

	if priceAt == -1 {
		return Outcome{Kind: KindProductOnly, Product: strings.Join(tokens, " ")}
	}

	if priceAt == 0 {
		rest := tokens[1:]
		if len(rest) == 0 {
			return Outcome{Kind: KindUnparseable, Raw: raw}
		}
		cut := p.maxProductTokens
		if cut > len(rest) {
			cut = len(rest)
		}
		return Outcome{
			Kind: KindParsed,
			Record: entity.ParsedRecord{
				Product: strings.Join(rest[:cut], " "),
				Price:   &price,
				Notes:   strings.Join(rest[cut:], " "),
			},
		}
	}

	product := strings.TrimSpace(strings.Join(tokens[:priceAt], " "))
	if product == "" {
		return Outcome{Kind: KindUnparseable, Raw: raw}
	}
	return Outcome{
		Kind: KindParsed,
		Record: entity.ParsedRecord{
			Product: product,
			Price:   &price,
			Notes:   strings.Join(tokens[priceAt+1:], " "),
		},
	}
}

// parseNumber accepts base-10 floats and rejects the exotic forms ParseFloat
// tolerates (inf, nan, hex) that never appear in purchase prices.
func parseNumber(tok string) (float64, bool) {
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
