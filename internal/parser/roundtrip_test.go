package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

// Rendering a record with Line and parsing it back must yield the same
// record; the canonical form is a fixed point of the parser.
func TestParseLine_LineRoundTrip(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name string
		rec  entity.ParsedRecord
	}{
		{"no notes", entity.ParsedRecord{Product: "كولا", Price: entity.Float64(23)}},
		{"with notes", entity.ParsedRecord{Product: "كولا", Price: entity.Float64(23), Notes: "بارد"}},
		{"decimal price", entity.ParsedRecord{Product: "شاي", Price: entity.Float64(3.5), Notes: "أخضر"}},
		{"numeric leading notes", entity.ParsedRecord{Product: "كولا", Price: entity.Float64(23), Notes: "2 حبة"}},
		{"multi word product", entity.ParsedRecord{Product: "عصير برتقال", Price: entity.Float64(12)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := p.ParseLine(tt.rec.Line())
			require.Equal(t, KindParsed, out.Kind)
			assert.Equal(t, tt.rec.Product, out.Record.Product)
			require.NotNil(t, out.Record.Price)
			assert.Equal(t, *tt.rec.Price, *out.Record.Price)
			assert.Equal(t, tt.rec.Notes, out.Record.Notes)
		})
	}
}

func TestParseLine_LineRoundTripWithoutPrice(t *testing.T) {
	p := newTestParser(t)

	rec := entity.ParsedRecord{Product: "تفاح أحمر"}
	out := p.ParseLine(rec.Line())
	require.Equal(t, KindProductOnly, out.Kind)
	assert.Equal(t, rec.Product, out.Product)
}

// Appending lines can only push a message toward escalation, never back:
// every rule looks at individual lines or at totals that grow with the
// message.
func TestClassify_EscalationMonotonicOverAppendedLines(t *testing.T) {
	c := newTestClassifier(t)

	escalated := []string{
		"كولا 23\nشاي 15\nخبز 5\nتفاح 10", // over the line limit
		"23",                              // lone number
		"كولا 2 3 23",                     // too many numeric tokens
		"كولا 23\nريال",                   // unparseable line
	}
	extensions := []string{
		"حليب 7",
		"حليب 7\nجبن 12",
	}
	for _, base := range escalated {
		require.Equal(t, Escalate, c.Classify(base), "base %q", base)
		for _, ext := range extensions {
			grown := base + "\n" + ext
			assert.Equal(t, Escalate, c.Classify(grown), "message %q", grown)
		}
	}
}

func TestClassify_DirectParseUntilLineLimit(t *testing.T) {
	c := newTestClassifier(t)

	lines := []string{"كولا 23", "شاي 15", "خبز 5", "تفاح 10", "حليب 7"}
	for n := 1; n <= len(lines); n++ {
		msg := strings.Join(lines[:n], "\n")
		want := DirectParse
		if n > 3 {
			want = Escalate
		}
		assert.Equal(t, want, c.Classify(msg), "%d lines", n)
	}
}
