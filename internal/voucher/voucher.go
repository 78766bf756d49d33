// Package voucher defines the structured records produced by the
// OCR-to-voucher extraction pipeline. All monetary values use
// shopspring/decimal; optional fields are nil pointers, never zero
// values, so "not found" stays distinguishable from a genuine 0.
package voucher

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MasterFields holds the header-level, one-per-voucher fields.
type MasterFields struct {
	VoucherNumber   string           `json:"voucher_number,omitempty" yaml:"voucher_number,omitempty"`
	VoucherDate     string           `json:"voucher_date,omitempty" yaml:"voucher_date,omitempty"`
	SupplierName    string           `json:"supplier_name,omitempty" yaml:"supplier_name,omitempty"`
	VendorDetails   string           `json:"vendor_details,omitempty" yaml:"vendor_details,omitempty"`
	GrossTotal      *decimal.Decimal `json:"gross_total,omitempty" yaml:"gross_total,omitempty"`
	TotalDeductions *decimal.Decimal `json:"total_deductions,omitempty" yaml:"total_deductions,omitempty"`
	NetTotal        *decimal.Decimal `json:"net_total,omitempty" yaml:"net_total,omitempty"`
}

// LineItem is one purchased row. Amount is required and always
// positive; rows whose amount fails to parse or is non-positive are
// discarded during parsing, not represented here.
type LineItem struct {
	ItemName  string           `json:"item_name" yaml:"item_name"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty" yaml:"unit_price,omitempty"`
	Amount    decimal.Decimal  `json:"line_amount" yaml:"line_amount"`
}

// Deduction is a negative line subtracted from the gross total.
// Type is free text, or the literal "Other" when the label on the
// receipt was too short to mean anything.
type Deduction struct {
	Type   string          `json:"deduction_type" yaml:"deduction_type"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}

// Metadata carries diagnostic output from parsing and validation.
// Warnings and Corrections are ordered, human-readable strings; they
// are advisory and never gate persistence.
type Metadata struct {
	ParseConfidence int      `json:"parse_confidence" yaml:"parse_confidence"`
	Warnings        []string `json:"validation_warnings,omitempty" yaml:"validation_warnings,omitempty"`
	Corrections     []string `json:"corrections,omitempty" yaml:"corrections,omitempty"`
}

// Parsed is the complete structured result for one voucher image.
// It is pure data: created fresh on every extraction and replaced,
// never merged, on re-extraction.
type Parsed struct {
	Master     MasterFields `json:"master" yaml:"master"`
	Items      []LineItem   `json:"items,omitempty" yaml:"items,omitempty"`
	Deductions []Deduction  `json:"deductions,omitempty" yaml:"deductions,omitempty"`
	Metadata   Metadata     `json:"metadata" yaml:"metadata"`
}

// ItemSum returns the sum of all line-item amounts.
func (p *Parsed) ItemSum() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range p.Items {
		sum = sum.Add(it.Amount)
	}
	return sum
}

// DeductionSum returns the sum of all deduction amounts.
func (p *Parsed) DeductionSum() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range p.Deductions {
		sum = sum.Add(d.Amount)
	}
	return sum
}

// Ptr copies d and returns a pointer to the copy, for optional fields.
func Ptr(d decimal.Decimal) *decimal.Decimal { return &d }

// OCRErrorMarker prefixes the text of an OCRResult whose engine
// invocation failed. Batch callers check for it instead of relying on
// errors crossing the invoker boundary.
const OCRErrorMarker = "[OCR ERROR]"

// OCRResult is the outcome of one OCR invocation, before parsing.
type OCRResult struct {
	Text             string  `json:"text" yaml:"text"`
	RawText          string  `json:"raw_text" yaml:"raw_text"`
	Confidence       float64 `json:"confidence" yaml:"confidence"`
	Method           string  `json:"preprocessing_method" yaml:"preprocessing_method"`
	ProcessingTimeMS int64   `json:"processing_time_ms" yaml:"processing_time_ms"`
}

// Failed reports whether the result is the sentinel produced when the
// OCR engine itself errored.
func (r *OCRResult) Failed() bool {
	return strings.HasPrefix(r.Text, OCRErrorMarker)
}
