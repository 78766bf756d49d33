// Package textfix repairs noisy OCR output before parsing. Correction
// runs in two stages: a vocabulary stage that fixes known garbled
// receipt keywords, and a numeric stage that repairs broken amount
// formatting. The numeric stage's aggressive rules only fire on lines
// classified as amount context, because unconditional rewriting
// corrupts voucher numbers and dates, which are also digit runs.
//
// Correction is idempotent: correcting already-corrected text is a
// no-op.
package textfix

import (
	"regexp"
	"strings"
)

// Config holds the corrector tunables.
type Config struct {
	// AmountKeywords classify a line as amount context. Matching is
	// case-insensitive on whole words.
	AmountKeywords []string `mapstructure:"amount_keywords" yaml:"amount_keywords" json:"amount_keywords"`
}

// DefaultConfig returns the keyword list tuned for purchase vouchers.
func DefaultConfig() Config {
	return Config{
		AmountKeywords: []string{
			"Qty", "Quantity", "Price", "Amount", "Total",
			"Comm", "Damages", "Loading", "Cash", "Fee",
			"Less", "Deduction", "Commission",
			"Grand", "Net", "Gross", "Sub",
		},
	}
}

// Corrector applies the full correction sequence.
type Corrector struct {
	amountKeywords *regexp.Regexp
}

// New builds a Corrector from cfg. An empty keyword list falls back to
// the defaults.
func New(cfg Config) *Corrector {
	if len(cfg.AmountKeywords) == 0 {
		cfg = DefaultConfig()
	}
	quoted := make([]string, 0, len(cfg.AmountKeywords))
	for _, k := range cfg.AmountKeywords {
		quoted = append(quoted, regexp.QuoteMeta(k))
	}
	return &Corrector{
		amountKeywords: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Correct runs whitespace normalization, vocabulary fixes, voucher
// number relabeling, digit substitution and decimal repair, in that
// order.
func (c *Corrector) Correct(text string) string {
	if text == "" {
		return text
	}
	text = cleanWhitespace(text)
	text = correctTerms(text)
	text = relabelVoucherNumbers(text)
	text = correctDigitSubstitutions(text)
	text = c.correctDecimals(text)
	return cleanWhitespace(text)
}

var (
	multiSpaceRe   = regexp.MustCompile(`[ \t]+`)
	colonSpacingRe = regexp.MustCompile(`\s*:\s*`)
	blankLinesRe   = regexp.MustCompile(`\n\s*\n`)
)

func cleanWhitespace(text string) string {
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = colonSpacingRe.ReplaceAllString(text, ": ")
	text = blankLinesRe.ReplaceAllString(text, "\n")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
