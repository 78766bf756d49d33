// Package validate cross-checks the numeric fields of a parsed
// voucher, derives totals the parser missed when the arithmetic
// allows, and scores how complete the extraction was. It mutates the
// voucher in place; every adjustment is recorded as a correction and
// every unresolved mismatch as a warning. Nothing here rejects a
// voucher: the output is advisory, persistence is the caller's call.
package validate

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"

	"github.com/receiptworks/voucherscan/internal/voucher"
)

// Config holds the validation tolerances, in currency units.
type Config struct {
	// ItemSumTolerance is the allowed gap between the sum of line
	// items and the gross total before a warning fires. Wide enough
	// to absorb routine OCR digit noise.
	ItemSumTolerance float64 `mapstructure:"item_sum_tolerance" yaml:"item_sum_tolerance" json:"item_sum_tolerance"`
	// NetTolerance is the allowed gap in gross - deductions = net,
	// one currency unit for rounding.
	NetTolerance float64 `mapstructure:"net_tolerance" yaml:"net_tolerance" json:"net_tolerance"`
}

// DefaultConfig returns the production tolerances.
func DefaultConfig() Config {
	return Config{ItemSumTolerance: 5.0, NetTolerance: 1.0}
}

// Validator applies the correction rules to parsed vouchers.
type Validator struct {
	itemSumTol decimal.Decimal
	netTol     decimal.Decimal
	logger     *slog.Logger
}

// New creates a Validator. Non-positive tolerances fall back to the
// defaults; a nil logger falls back to the default logger.
func New(cfg Config, logger *slog.Logger) *Validator {
	def := DefaultConfig()
	if cfg.ItemSumTolerance <= 0 {
		cfg.ItemSumTolerance = def.ItemSumTolerance
	}
	if cfg.NetTolerance <= 0 {
		cfg.NetTolerance = def.NetTolerance
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		itemSumTol: decimal.NewFromFloat(cfg.ItemSumTolerance),
		netTol:     decimal.NewFromFloat(cfg.NetTolerance),
		logger:     logger,
	}
}

// Validate runs the rules in order. Later rules see values derived by
// earlier ones. It finishes by setting the parse-confidence score.
func (v *Validator) Validate(p *voucher.Parsed) {
	itemSum := p.ItemSum()

	// Rule 1: missing gross is the sum of items.
	if len(p.Items) > 0 && missing(p.Master.GrossTotal) {
		p.Master.GrossTotal = voucher.Ptr(itemSum)
		correct(p, "Derived gross total (%s) from sum of items", itemSum)
	} else if len(p.Items) > 0 && present(p.Master.GrossTotal) {
		// Rule 2: items disagree with gross.
		gross := *p.Master.GrossTotal
		if itemSum.Sub(gross).Abs().GreaterThan(v.itemSumTol) {
			warn(p, "Sum of items (%s) mismatches gross total (%s)", itemSum, gross)
			net := zeroIfNil(p.Master.NetTotal)
			ded := zeroIfNil(p.Master.TotalDeductions)
			if net.IsPositive() && itemSum.Sub(net.Add(ded)).Abs().LessThan(v.netTol) {
				p.Master.GrossTotal = voucher.Ptr(itemSum)
				correct(p, "Corrected gross total to item sum (%s)", itemSum)
			}
		}
	}

	// Rule 3: derive whichever of gross/net the other two determine.
	ded := zeroIfNil(p.Master.TotalDeductions)
	if present(p.Master.GrossTotal) && missing(p.Master.NetTotal) {
		derived := p.Master.GrossTotal.Sub(ded)
		p.Master.NetTotal = voucher.Ptr(derived)
		correct(p, "Derived net total (%s) from gross - deductions", derived)
	}
	if missing(p.Master.GrossTotal) && present(p.Master.NetTotal) && ded.IsPositive() {
		derived := p.Master.NetTotal.Add(ded)
		p.Master.GrossTotal = voucher.Ptr(derived)
		correct(p, "Derived gross total (%s) from net + deductions", derived)
	}

	// Rule 4: all three present, check the arithmetic.
	if present(p.Master.GrossTotal) && present(p.Master.NetTotal) {
		gross, net := *p.Master.GrossTotal, *p.Master.NetTotal
		calcNet := gross.Sub(ded)
		if calcNet.Sub(net).Abs().GreaterThan(v.netTol) {
			warn(p, "Totals mismatch: %s - %s = %s, but extracted net is %s", gross, ded, calcNet, net)
			// When the items vouch for the gross figure, trust the
			// arithmetic over the OCR'd net.
			if gross.Sub(itemSum).Abs().LessThan(v.netTol) {
				p.Master.NetTotal = voucher.Ptr(calcNet)
				correct(p, "Corrected net total to %s based on verified gross", calcNet)
			}
		}
	}

	p.Metadata.ParseConfidence = Confidence(p)
	v.logger.Debug("validated voucher",
		"warnings", len(p.Metadata.Warnings),
		"corrections", len(p.Metadata.Corrections),
		"parse_confidence", p.Metadata.ParseConfidence)
}

// Confidence scores extraction completeness 0-100 from a fixed point
// allocation: 20 points each for voucher number, date and net total,
// 10 each for supplier, vendor and gross, up to 20 for items (5 per
// item) and 10 for any deductions, normalized to a percentage.
func Confidence(p *voucher.Parsed) int {
	const maxScore = 120

	score := 0
	if p.Master.VoucherNumber != "" {
		score += 20
	}
	if p.Master.VoucherDate != "" {
		score += 20
	}
	if present(p.Master.NetTotal) {
		score += 20
	}
	if p.Master.SupplierName != "" {
		score += 10
	}
	if p.Master.VendorDetails != "" {
		score += 10
	}
	if present(p.Master.GrossTotal) {
		score += 10
	}
	if n := len(p.Items); n > 0 {
		pts := n * 5
		if pts > 20 {
			pts = 20
		}
		score += pts
	}
	if len(p.Deductions) > 0 {
		score += 10
	}
	return int(math.Round(float64(score) / maxScore * 100))
}

// missing treats both nil and zero as "not extracted": the parser
// never reports a genuine 0 total, so a zero here is parse noise.
func missing(d *decimal.Decimal) bool { return d == nil || d.IsZero() }

func present(d *decimal.Decimal) bool { return !missing(d) }

func zeroIfNil(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func warn(p *voucher.Parsed, format string, args ...any) {
	p.Metadata.Warnings = append(p.Metadata.Warnings, fmt.Sprintf(format, toAny(args)...))
}

func correct(p *voucher.Parsed, format string, args ...any) {
	p.Metadata.Corrections = append(p.Metadata.Corrections, fmt.Sprintf(format, toAny(args)...))
}

// toAny renders decimals through String so warning text never shows
// exponent notation.
func toAny(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if d, ok := a.(decimal.Decimal); ok {
			out[i] = d.String()
			continue
		}
		out[i] = a
	}
	return out
}
