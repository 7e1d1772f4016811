package parser

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/normalize"
)

// Decision is the classifier's verdict for a message.
type Decision int

const (
	// DirectParse means deterministic parsing is trustworthy for this message.
	DirectParse Decision = iota
	// Escalate means the message must go to the AI extraction service.
	Escalate
)

func (d Decision) String() string {
	if d == Escalate {
		return "escalate"
	}
	return "direct_parse"
}

// Classifier decides whether a raw message is safe to parse deterministically.
// Its job is to bound silent misparses, not to parse: anything structurally
// richer than the single-item, single-price case is delegated to the model.
type Classifier struct {
	parser *Parser
	norm   *normalize.Normalizer
	cfg    common.ParserConfig
	logger *slog.Logger
}

func NewClassifier(parser *Parser, norm *normalize.Normalizer, cfg common.ParserConfig, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = 3
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = 100
	}
	if cfg.MaxNumericTokens <= 0 {
		cfg.MaxNumericTokens = 2
	}
	return &Classifier{parser: parser, norm: norm, cfg: cfg, logger: logger}
}

// Classify runs the checks in fixed order and short-circuits on the first
// match. The ordering affects only logged diagnostics, never the outcome.
func (c *Classifier) Classify(rawText string) Decision {
	lines := nonEmptyLines(rawText)

	if len(lines) > c.cfg.MaxLines {
		return c.escalate("line_count", "lines", len(lines))
	}

	normalized := strings.TrimSpace(c.norm.Normalize(rawText))
	if utf8.RuneCountInString(normalized) > c.cfg.MaxMessageLength {
		return c.escalate("message_length", "chars", utf8.RuneCountInString(normalized))
	}

	for _, line := range lines {
		if n := countNumericTokens(c.norm.Normalize(line)); n > c.cfg.MaxNumericTokens {
			return c.escalate("numeric_tokens", "count", n)
		}
	}

	for _, line := range lines {
		if c.priceFirstAmbiguous(line) {
			return c.escalate("price_first_ambiguous", "line", line)
		}
	}

	for _, line := range lines {
		if out := c.parser.ParseLine(line); out.Kind == KindUnparseable {
			return c.escalate("unparseable_line", "line", line)
		}
	}

	return DirectParse
}

func (c *Classifier) escalate(reason string, args ...any) Decision {
	c.logger.Debug("classify.escalate", append([]any{"reason", reason}, args...)...)
	return Escalate
}

// priceFirstAmbiguous is an early-warning check, run before the full parse: a
// line whose first token is numeric fits the simple price-first pattern only
// when it is followed by non-numeric product tokens. A lone number, or a
// number followed by another number, signals something the heuristics cannot
// split safely.
func (c *Classifier) priceFirstAmbiguous(line string) bool {
	tokens := strings.Fields(c.norm.Normalize(line))
	if len(tokens) == 0 {
		return false
	}
	if _, ok := parseNumber(tokens[0]); !ok {
		return false
	}
	if len(tokens) == 1 {
		return true
	}
	_, secondNumeric := parseNumber(tokens[1])
	return secondNumeric
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	return lines
}

func countNumericTokens(line string) int {
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(line) {
		if _, ok := parseNumber(tok); ok {
			seen[tok] = struct{}{}
		}
	}
	return len(seen)
}
