package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Locale carries the vocabulary the normalizer and workflow need for one
// target locale. Defaults cover the Arabic purchases bot; a YAML file can
// override any list wholesale.
type Locale struct {
	// CurrencyWords are removed when isolated or directly adjacent to digits.
	CurrencyWords []string `yaml:"currency_words"`
	// NumberWords translate spelled-out small numbers to digits (best effort).
	NumberWords map[string]int `yaml:"number_words"`
	// SkipNoteTokens are inputs treated as "no notes" by the workflow.
	SkipNoteTokens []string `yaml:"skip_note_tokens"`
}

// DefaultLocale returns the built-in Arabic vocabulary.
func DefaultLocale() *Locale {
	return &Locale{
		CurrencyWords: []string{
			"ريالاً", "ريالا", "ريال", "ر.س",
			"جنيهاً", "جنيها", "جنيه",
			"دينار", "درهم", "ليرة", "ل.س",
			"دولار", "$", "€", "﷼",
		},
		NumberWords: map[string]int{
			"واحد":   1,
			"اثنان":  2,
			"اثنين":  2,
			"ثلاثة":  3,
			"أربعة":  4,
			"خمسة":   5,
			"ستة":    6,
			"سبعة":   7,
			"ثمانية": 8,
			"تسعة":   9,
			"عشرة":   10,
			"عشرين":  20,
			"ثلاثين": 30,
			"خمسين":  50,
			"مئة":    100,
			"مائة":   100,
			"ألف":    1000,
		},
		SkipNoteTokens: []string{".", "لا", "لأ", "-", "/s", "s"},
	}
}

// LoadLocale reads a YAML vocabulary file and overlays it on the defaults.
// Missing sections keep their default values.
func LoadLocale(path string) (*Locale, error) {
	loc := DefaultLocale()
	if path == "" {
		return loc, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale file: %w", err)
	}
	var file Locale
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parse locale file: %w", err)
	}
	if len(file.CurrencyWords) > 0 {
		loc.CurrencyWords = file.CurrencyWords
	}
	if len(file.NumberWords) > 0 {
		loc.NumberWords = file.NumberWords
	}
	if len(file.SkipNoteTokens) > 0 {
		loc.SkipNoteTokens = file.SkipNoteTokens
	}
	return loc, nil
}

// IsSkipToken reports whether the input means "no notes".
func (l *Locale) IsSkipToken(s string) bool {
	for _, tok := range l.SkipNoteTokens {
		if s == tok {
			return true
		}
	}
	return false
}
