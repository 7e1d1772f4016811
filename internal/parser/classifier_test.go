package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
	"github.com/adel-hamdan/purchases-tracker/internal/normalize"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	norm := normalize.New(nil)
	cfg := common.ParserConfig{MaxLines: 3, MaxMessageLength: 100, MaxNumericTokens: 2, MaxProductTokens: 3}
	return NewClassifier(NewParser(norm, cfg), norm, cfg, nil)
}

func TestClassify_DirectParse(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name string
		in   string
	}{
		{"single item", "كولا 23"},
		{"arabic digits", "كولا ٢٣"},
		{"price first with product", "23 كولا بارد"},
		{"product only", "تفاح"},
		{"three line batch", "كولا 23\nشاي 15\nخبز 5"},
		{"quantity and price", "كولا 2 حبة 23"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, DirectParse, c.Classify(tt.in))
		})
	}
}

func TestClassify_Escalates(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name string
		in   string
	}{
		{"too many lines", "كولا 23\nشاي 15\nخبز 5\nتفاح 10"},
		{"too long", "كولا " + strings.Repeat("وصف ", 40) + "23"},
		{"too many numeric tokens", "كولا 2 3 23"},
		{"lone number line", "23"},
		{"number then number", "23 15 كولا"},
		{"unparseable line in batch", "كولا 23\nريال"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Escalate, c.Classify(tt.in))
		})
	}
}

func TestClassify_NumericTokensCountedDistinct(t *testing.T) {
	c := newTestClassifier(t)

	// The same numeral repeated counts once, so this stays parseable.
	assert.Equal(t, DirectParse, c.Classify("كولا 2 و 2 حبة"))
}
