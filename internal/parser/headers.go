package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/receiptworks/voucherscan/internal/voucher"
)

var hundred = decimal.NewFromInt(100)

var (
	vendorExcludeRe = regexp.MustCompile(`Date|Voucher|Inv|No\.|^\d+$`)
	vendorWordRe    = regexp.MustCompile(`(Store|Traders|Bros|Company|Ltd|Ent|Sons)`)

	supplierRe = regexp.MustCompile(`(?i)(?:SUPP|Supplier)\s*(?:NAME|Name)?\s*[:\-\s]\s*(.+)`)

	voucherNumberRe         = regexp.MustCompile(`(?i)(?:Voucher|Invoice|Bill|Vouch|Inv)\s*(?:No|Number|Num|#)?\s*[:\-]?\s*[#]?(\d+)`)
	voucherNumberFallbackRe = regexp.MustCompile(`(?i)No\s*[:\-.]\s*(\d{3,})`)
	longNumberRe            = regexp.MustCompile(`(\d{3,})`)

	dateLabelRe      = regexp.MustCompile(`(?i)(?:Date|DATED|Dt)\s*[:\-]?\s*([\d/\.\-]+)`)
	dateTokenRe      = regexp.MustCompile(`([\d/\-\.]+)`)
	standaloneDateRe = regexp.MustCompile(`(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)

	netTotalRe        = regexp.MustCompile(`(?i)(?:Net\s*Total|NetTotal|Net\s*Amount|Net\s*Payable|Payable|Grand\s*Total)\s*[:\-]?\s*([0-9,.\s]+)`)
	grossLabelRe      = regexp.MustCompile(`(?i)(?:Gross\s*Total|GrossTotal|Gross|Sub\s*Total|SubTotal)\s*[:\-]?\s*([0-9,.\s]+)`)
	bareTotalRe       = regexp.MustCompile(`(?i)^Total\s*[:\-]?\s*\d*\s*([0-9,.\s]+)`)
	grandOrNetRe      = regexp.MustCompile(`(?i)Grand|Net`)
	totalDeductionsRe = regexp.MustCompile(`(?i)(?:Total\s*Deductions?|Deductions?\s*Total)\s*[:\-]?\s*([0-9,.\s]+)`)

	numberedAmountRe = regexp.MustCompile(`[0-9][0-9,.\s]*`)
)

// amountFloor rejects tiny captures like stray item counts when a
// total line is only loosely matched.
var amountFloor = decimal.NewFromInt(10)

// isUpperText reports whether s has at least one uppercase letter and
// no lowercase ones. Lines without any letters, such as numeric item
// rows, do not count as uppercase.
func isUpperText(s string) bool {
	return s != strings.ToLower(s) && s == strings.ToUpper(s)
}

// extractVendor treats an early uppercase-ish line with a trade word
// as the vendor name. Only the first five lines are candidates.
func (p *Parser) extractVendor(out *voucher.Parsed, ln string, idx int) {
	if idx >= 5 || out.Master.VendorDetails != "" || len(ln) <= 4 {
		return
	}
	if vendorExcludeRe.MatchString(ln) {
		return
	}
	if isUpperText(ln) || vendorWordRe.MatchString(ln) {
		out.Master.VendorDetails = strings.TrimRight(ln, " .,:;-")
	}
}

func (p *Parser) extractSupplier(out *voucher.Parsed, ln string) {
	if out.Master.SupplierName != "" {
		return
	}
	if m := supplierRe.FindStringSubmatch(ln); m != nil {
		name := strings.TrimSpace(m[1])
		name = strings.TrimSpace(strings.TrimPrefix(name, "None "))
		if name != "" {
			out.Master.SupplierName = name
			return
		}
	}
	// Corrected text sometimes leaves a bare short name on its own
	// line after the label was mangled away.
	if out.Master.SupplierName == "" && len(ln) >= 2 && len(ln) <= 10 &&
		!anyDigitRe.MatchString(ln) && !itemSkipRe.MatchString(ln) &&
		isUpperText(ln) && out.Master.VoucherNumber != "" {
		out.Master.SupplierName = ln
	}
}

// extractVoucherNumber goes exact label, then fuzzy label, then the
// weak "No: 1234" fallback.
func (p *Parser) extractVoucherNumber(out *voucher.Parsed, ln string) {
	if out.Master.VoucherNumber != "" {
		return
	}
	if m := voucherNumberRe.FindStringSubmatch(ln); m != nil {
		out.Master.VoucherNumber = m[1]
		return
	}
	words := strings.Fields(ln)
	for i, w := range words {
		if !p.fuzzyAny(w, "Voucher", "Invoice", "Bill") {
			continue
		}
		for j := i + 1; j < len(words) && j <= i+3; j++ {
			if m := longNumberRe.FindStringSubmatch(words[j]); m != nil {
				out.Master.VoucherNumber = m[1]
				return
			}
		}
	}
	if m := voucherNumberFallbackRe.FindStringSubmatch(ln); m != nil {
		out.Master.VoucherNumber = m[1]
	}
}

// extractDate goes labeled, then fuzzy label, then any standalone
// date-shaped token. The stored value is always DD-MM-YYYY.
func (p *Parser) extractDate(out *voucher.Parsed, ln string) {
	if out.Master.VoucherDate != "" {
		return
	}
	if m := dateLabelRe.FindStringSubmatch(ln); m != nil {
		if d := tryParseDate(m[1]); d != "" {
			out.Master.VoucherDate = d
			return
		}
	}
	words := strings.Fields(ln)
	for i, w := range words {
		if !p.fuzzyAny(w, "Date", "Dated") {
			continue
		}
		for j := i + 1; j < len(words) && j <= i+2; j++ {
			if m := dateTokenRe.FindStringSubmatch(words[j]); m != nil {
				if d := tryParseDate(m[1]); d != "" {
					out.Master.VoucherDate = d
					return
				}
			}
		}
	}
	if m := standaloneDateRe.FindStringSubmatch(ln); m != nil {
		if d := tryParseDate(m[1]); d != "" {
			out.Master.VoucherDate = d
		}
	}
}

// extractTotals fills net, gross and deduction totals. A bare "Total"
// line counts as the gross only when it is not the grand/net line and
// its trailing number clears the floor.
func (p *Parser) extractTotals(out *voucher.Parsed, ln string) {
	if out.Master.NetTotal == nil {
		if m := netTotalRe.FindStringSubmatch(ln); m != nil {
			if amt := parseAmount(m[1]); amt != nil && amt.GreaterThan(amountFloor) {
				out.Master.NetTotal = amt
			}
		} else {
			p.fuzzyNetTotal(out, ln)
		}
	}

	if out.Master.TotalDeductions == nil {
		if m := totalDeductionsRe.FindStringSubmatch(ln); m != nil {
			if amt := parseAmount(m[1]); amt != nil {
				out.Master.TotalDeductions = amt
			}
		}
	}

	if out.Master.GrossTotal != nil {
		return
	}
	if m := grossLabelRe.FindStringSubmatch(ln); m != nil {
		if amt := parseAmount(m[1]); amt != nil && amt.GreaterThan(amountFloor) {
			out.Master.GrossTotal = amt
			return
		}
	}
	if bareTotalRe.MatchString(ln) && !grandOrNetRe.MatchString(ln) {
		_, last := rsplitLast(ln)
		if amt := parseAmount(last); amt != nil && amt.GreaterThan(amountFloor) {
			out.Master.GrossTotal = amt
		}
	}
}

// fuzzyNetTotal catches garbled "Net Total"/"Grand Total" pairs the
// exact regex missed.
func (p *Parser) fuzzyNetTotal(out *voucher.Parsed, ln string) {
	words := strings.Fields(ln)
	for i := 0; i+1 < len(words); i++ {
		if !p.fuzzyAny(words[i], "Net", "Grand") || !p.fuzzyAny(words[i+1], "Total") {
			continue
		}
		rest := strings.Join(words[i+2:], " ")
		if m := numberedAmountRe.FindString(rest); m != "" {
			if amt := parseAmount(m); amt != nil && amt.GreaterThan(amountFloor) {
				out.Master.NetTotal = amt
			}
		}
		return
	}
}

func (p *Parser) fuzzyAny(word string, candidates ...string) bool {
	for _, c := range candidates {
		if similarity(word, c) >= p.cfg.FuzzyThreshold {
			return true
		}
	}
	return false
}
