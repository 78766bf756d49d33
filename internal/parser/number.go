package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var nonNumericRe = regexp.MustCompile(`[^\d.\-]`)

// parseAmount extracts a decimal from a noisy token: currency marks
// and separators are stripped, thousands commas removed. Returns nil
// when nothing parseable remains; absence is never reported as zero.
func parseAmount(s string) *decimal.Decimal {
	cleaned := nonNumericRe.ReplaceAllString(strings.ReplaceAll(s, ",", ""), "")
	cleaned = strings.TrimRight(cleaned, ".")
	if cleaned == "" || cleaned == "-" {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &d
}

// CanonicalDateFormat is the one output convention for voucher dates.
const CanonicalDateFormat = "02-01-2006"

// dateLayouts are tried in order; the first successful parse wins.
// Day-month-year comes first because that is the convention on the
// vouchers this system reads.
var dateLayouts = []string{
	"2-1-2006", "2/1/2006", "2.1.2006",
	"2-1-06", "2/1/06", "2.1.06",
	"2006-1-2", "2006/1/2",
}

var eightDigitDateRe = regexp.MustCompile(`^(\d{2})(\d{2})(\d{4})$`)

// tryParseDate parses a date token against the accepted layouts and
// normalizes to DD-MM-YYYY. The bare 8-digit DDMMYYYY form is a last
// resort. Returns "" when the token is not a valid date.
func tryParseDate(token string) string {
	token = strings.Trim(token, ".-/")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t.Format(CanonicalDateFormat)
		}
	}
	if m := eightDigitDateRe.FindStringSubmatch(token); m != nil {
		if t, err := time.Parse("02012006", token); err == nil {
			return t.Format(CanonicalDateFormat)
		}
	}
	return ""
}
