// Package normalize converts localized numeric text into a canonical ASCII
// form: Arabic-Indic digits become ASCII digits, decimal separators become
// periods, currency vocabulary is stripped, and spelled-out small numbers are
// translated to digits. Normalization is pure and idempotent; anything the
// normalizer does not recognize passes through unchanged.
package normalize

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// digitMap covers Arabic-Indic (U+0660..U+0669) and Extended Arabic-Indic
// (U+06F0..U+06F9) digits plus the Arabic decimal separator U+066B.
var digitMap = map[rune]rune{
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
	'٫': '.',
}

var decimalComma = regexp.MustCompile(`(\d),(\d)`)

// Normalizer rewrites text using one locale's vocabulary.
type Normalizer struct {
	loc           *Locale
	currencyAfter *regexp.Regexp // digit run followed by a currency word
	currencyPrior *regexp.Regexp // currency word followed by a digit run
}

// New builds a Normalizer for the locale. A nil locale uses the defaults.
func New(loc *Locale) *Normalizer {
	if loc == nil {
		loc = DefaultLocale()
	}
	alt := currencyAlternation(loc.CurrencyWords)
	n := &Normalizer{loc: loc}
	if alt != "" {
		n.currencyAfter = regexp.MustCompile(`(\d(?:\.\d+)?)(?:` + alt + `)`)
		n.currencyPrior = regexp.MustCompile(`(?:` + alt + `)(\d)`)
	}
	return n
}

// currencyAlternation quotes and joins the vocabulary, longest first so that
// e.g. "ريالاً" wins over its prefix "ريال".
func currencyAlternation(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return strings.Join(quoted, "|")
}

// Normalize converts s to canonical ASCII numeric form. Line structure is
// preserved; whitespace runs within a line collapse to single spaces.
func (n *Normalizer) Normalize(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = n.normalizeLine(line)
	}
	return strings.Join(out, "\n")
}

func (n *Normalizer) normalizeLine(line string) string {
	line = mapDigits(line)
	line = decimalComma.ReplaceAllString(line, "$1.$2")
	if n.currencyAfter != nil {
		line = n.currencyAfter.ReplaceAllString(line, "$1")
		line = n.currencyPrior.ReplaceAllString(line, "$1")
	}

	// Token pass: drop isolated currency words, translate number-words.
	fields := strings.Fields(line)
	kept := fields[:0]
	for _, tok := range fields {
		if n.isCurrencyWord(tok) {
			continue
		}
		if v, ok := n.loc.NumberWords[tok]; ok {
			kept = append(kept, strconv.Itoa(v))
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func (n *Normalizer) isCurrencyWord(tok string) bool {
	for _, w := range n.loc.CurrencyWords {
		if tok == w {
			return true
		}
	}
	return false
}

func mapDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := digitMap[r]; ok {
			return d
		}
		return r
	}, s)
}
