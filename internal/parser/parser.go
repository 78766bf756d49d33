// Package parser extracts structured voucher fields from corrected
// OCR text. It is a single-pass, per-line heuristic classifier with
// one piece of state: whether the current line sits inside the
// deduction section. Absence of a field is a nil/empty value, never an
// error; receipts are parsed best-effort for later human review.
package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/receiptworks/voucherscan/internal/voucher"
)

// Config holds the parser tunables.
type Config struct {
	// FuzzyThreshold is the minimum edit-similarity for matching
	// garbled keywords like "Vouchcr" against "Voucher".
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" yaml:"fuzzy_threshold" json:"fuzzy_threshold"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{FuzzyThreshold: 0.75}
}

// Parser turns receipt text into a voucher.Parsed.
type Parser struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Parser. A nil logger falls back to the default.
func New(cfg Config, logger *slog.Logger) *Parser {
	if cfg.FuzzyThreshold <= 0 || cfg.FuzzyThreshold > 1 {
		cfg.FuzzyThreshold = DefaultConfig().FuzzyThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{cfg: cfg, logger: logger}
}

var (
	// header/label lines are never line items
	itemSkipRe = regexp.MustCompile(`(?i)Total|Amount|Price|Qty|Voucher|Date|Supp`)

	// named item: free text then qty, price, amount
	itemNamedRe = regexp.MustCompile(`(.+?)\s+(\d{1,6}(?:[,.]?\d{1,6})?)\s+(\d{1,6}(?:[,.]?\d{1,6})?)\s+([0-9,.]+)$`)
	// unnamed item: qty, price, amount with no label
	itemUnnamedRe = regexp.MustCompile(`^(\d{1,6}(?:[,.]?\d{1,6})?)\s+(\d{1,6}(?:[,.]?\d{1,6})?)\s+([0-9,.]+)$`)

	deductionStartRe    = regexp.MustCompile(`(?i)^(?:Less|Deductions?|Ded|\(-\))`)
	deductionSectionEnd = regexp.MustCompile(`(?i)Net\s*Total|Grand\s*Total`)
	deductionKeywordRe  = regexp.MustCompile(`(?i)(Comm|Damages?|Unloading|L\s*/?\s*F|Cash|Tax|VAT|Discount|Fee|Charge|Other)`)
	commissionPctRe     = regexp.MustCompile(`(?i)Comm.*?(\d+\.?\d*)\s*%`)

	anyDigitRe = regexp.MustCompile(`\d`)
)

// Parse walks the text line by line and fills a fresh voucher.Parsed.
// Every field is tracked independently: the first match wins per
// field, and a later line can still fill an earlier miss.
func (p *Parser) Parse(text string) *voucher.Parsed {
	out := &voucher.Parsed{}

	lines := make([]string, 0, 32)
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}

	inDeductionSection := false
	for i, ln := range lines {
		p.extractVendor(out, ln, i)
		p.extractSupplier(out, ln)
		p.extractVoucherNumber(out, ln)
		p.extractDate(out, ln)
		p.extractTotals(out, ln)

		if deductionStartRe.MatchString(ln) {
			inDeductionSection = true
			// A header line with no digits carries no data; consume
			// it. One with digits is also parsed as a deduction below.
			if !anyDigitRe.MatchString(ln) {
				continue
			}
		}
		if deductionSectionEnd.MatchString(ln) {
			inDeductionSection = false
		}

		if inDeductionSection {
			p.parseDeductionLine(out, ln)
		} else {
			p.parseItemLine(out, ln)
		}
	}

	p.finalize(out)
	p.logger.Debug("parsed voucher text",
		"lines", len(lines),
		"items", len(out.Items),
		"deductions", len(out.Deductions),
		"voucher_number", out.Master.VoucherNumber)
	return out
}

// parseItemLine tries the two line-item shapes. The line amount must
// parse to a positive value or the whole line is dropped as noise.
func (p *Parser) parseItemLine(out *voucher.Parsed, ln string) {
	if itemSkipRe.MatchString(ln) {
		return
	}

	if m := itemUnnamedRe.FindStringSubmatch(ln); m != nil {
		if amt := parseAmount(m[3]); amt != nil && amt.IsPositive() {
			out.Items = append(out.Items, voucher.LineItem{
				ItemName:  "Item",
				Quantity:  parseAmount(m[1]),
				UnitPrice: parseAmount(m[2]),
				Amount:    *amt,
			})
		}
		return
	}

	if m := itemNamedRe.FindStringSubmatch(ln); m != nil {
		if amt := parseAmount(m[4]); amt != nil && amt.IsPositive() {
			out.Items = append(out.Items, voucher.LineItem{
				ItemName:  strings.TrimSpace(m[1]),
				Quantity:  parseAmount(m[2]),
				UnitPrice: parseAmount(m[3]),
				Amount:    *amt,
			})
		}
	}
}

// parseDeductionLine treats the last whitespace token as the amount
// candidate and the rest as the label. Unknown but non-trivial labels
// are kept verbatim; short or empty ones become "Other". A commission
// expressed as a percentage is converted to an absolute amount when
// the gross total is already known.
func (p *Parser) parseDeductionLine(out *voucher.Parsed, ln string) {
	clean := strings.TrimSpace(strings.ReplaceAll(ln, "(-)", ""))
	if clean == "" || totalDeductionsRe.MatchString(clean) {
		// summary row, already captured as the deduction total
		return
	}

	if m := commissionPctRe.FindStringSubmatch(clean); m != nil && out.Master.GrossTotal != nil {
		if pct := parseAmount(m[1]); pct != nil {
			amount := out.Master.GrossTotal.Mul(*pct).Div(hundred)
			out.Deductions = append(out.Deductions, voucher.Deduction{
				Type:   "Commission @ " + pct.String() + "%",
				Amount: amount,
			})
			return
		}
	}

	label, amountTok := rsplitLast(clean)
	amt := parseAmount(amountTok)
	if amt == nil {
		return
	}
	switch {
	case deductionKeywordRe.MatchString(label):
		out.Deductions = append(out.Deductions, voucher.Deduction{Type: label, Amount: *amt})
	case len(label) < 3:
		out.Deductions = append(out.Deductions, voucher.Deduction{Type: "Other", Amount: *amt})
	default:
		out.Deductions = append(out.Deductions, voucher.Deduction{Type: label, Amount: *amt})
	}
}

// finalize derives the deduction total when the receipt never states
// it explicitly.
func (p *Parser) finalize(out *voucher.Parsed) {
	if out.Master.TotalDeductions == nil && len(out.Deductions) > 0 {
		out.Master.TotalDeductions = voucher.Ptr(out.DeductionSum())
	}
}

// rsplitLast splits the line at its last whitespace gap.
func rsplitLast(s string) (rest, last string) {
	idx := strings.LastIndexFunc(s, func(r rune) bool { return r == ' ' || r == '\t' })
	if idx < 0 {
		return "", s
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:])
}
