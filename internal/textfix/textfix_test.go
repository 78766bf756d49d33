package textfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCorrector(t *testing.T) *Corrector {
	t.Helper()
	return New(DefaultConfig())
}

func TestCorrectEmptyInput(t *testing.T) {
	assert.Equal(t, "", newCorrector(t).Correct(""))
}

func TestTermCorrections(t *testing.T) {
	c := newCorrector(t)
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"garbled voucher", "Voucner 214", "Voucher VoucherNumber214"},
		{"garbled supplier", "SuppNanm3 TK", "Supp Name TK"},
		{"garbled grand total", "brandTotal 748.00", "Grand Total 748.00"},
		{"garbled net total", "NetTotal 748.00", "Net Total 748.00"},
		{"garbled unloading", "Unloading 58.40", "UnLoading 58.40"},
		{"garbled damages", "LessForDamnages 110.00", "Less For Damages 110.00"},
		{"case insensitive", "VOUCNER 12", "Voucher 12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Correct(tt.in))
		})
	}
}

func TestVoucherNumberRelabeling(t *testing.T) {
	c := newCorrector(t)

	// A digit run near a voucher keyword is reattached.
	out := c.Correct("Voucher Number 214")
	assert.Contains(t, out, "VoucherNumber214")

	// Date lines must never be relabeled even though they contain
	// both the keyword and a digit run.
	out = c.Correct("Voucher Date 26/04/2024")
	assert.Contains(t, out, "26/04/2024")
	assert.NotContains(t, out, "VoucherNumber2024")
}

func TestDigitSubstitutions(t *testing.T) {
	c := newCorrector(t)
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"O for zero in amount", "84O.00", "840.00"},
		{"S for five in amount", "5S1.20", "551.20"},
		{"letters without digits nearby untouched", "GOODS SOLD", "GOODS SOLD"},
		{"protected keyword untouched", "Supp Name SO", "Supp Name SO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Correct(tt.in))
		})
	}
}

func TestDecimalRepairInAmountContext(t *testing.T) {
	c := newCorrector(t)
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing point with label", "Total 840", "Total 840.00"},
		{"trailing letter h", "Comm 5832h", "Comm 5832.00"},
		{"oOn ending", "Total 14580oOn", "Total 14580.00"},
		{"trailing dot", "Amount 400.", "Amount 400.00"},
		{"bare large amount", "Total 2100", "Total 2100.00"},
		{"double decimal group", "Net Total 684.00.00", "Net Total 684.00"},
		{"well-formed line untouched", "3 210.00 630.00", "3 210.00 630.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Correct(tt.in))
		})
	}
}

func TestAggressiveRulesGatedOutsideAmountContext(t *testing.T) {
	c := newCorrector(t)

	// A voucher number line is not amount context: its digit run must
	// keep its shape instead of gaining .00.
	out := c.Correct("Receipt 2024 annual")
	assert.NotContains(t, out, "2024.00")

	// A date stays a date even on an amount-context line.
	out = c.Correct("Voucher Date 26/04/2024")
	assert.Contains(t, out, "26/04/2024")
}

func TestAmountContextHeuristic(t *testing.T) {
	c := newCorrector(t)
	assert.True(t, c.isAmountContext("Grand Total 748.00"))
	assert.True(t, c.isAmountContext("3 210 630"), "exactly three numeric tokens")
	assert.True(t, c.isAmountContext("something 33.60"), "existing well-formed amount")
	assert.False(t, c.isAmountContext("SRI LAKSHMI TRADERS"))
	assert.False(t, c.isAmountContext("Voucher Number 214"))
}

func TestWhitespaceNormalization(t *testing.T) {
	c := newCorrector(t)
	assert.Equal(t, "Date: 26-04-2024", c.Correct("Date :   26-04-2024"))
	assert.Equal(t, "a\nb", c.Correct("a   \n\n   b"))
}

func TestCorrectionIsIdempotent(t *testing.T) {
	c := newCorrector(t)
	inputs := []string{
		"Voucher Number 214\nVoucher Date 26/04/2024\nSupp Name TK\n" +
			"3 210.00 630.00\nTotal 8 840.00\n(-) Comm 4.00% 33.60\n" +
			"(-) UnLoading 58.40\nGrand Total 748.00",
		"Voucner 340\nbrandTotal 2200n\nTota 8 14580oOn",
		"LessForDamnages 110\nUnLoadin 58.40\nLFAndCash 440.00",
		"84O.00 and SuppNam3 X",
		"",
	}
	for _, in := range inputs {
		once := c.Correct(in)
		twice := c.Correct(once)
		require.Equal(t, once, twice, "correction not idempotent for %q", in)
	}
}

func TestEndToEndReceiptTextSurvivesCorrection(t *testing.T) {
	c := newCorrector(t)
	in := "Voucher Number 214\nVoucher Date 26/04/2024\nSupp Name TK\n" +
		"3 210.00 630.00\nTotal 8 840.00\n(-) Comm 4.00% 33.60\n" +
		"(-) UnLoading 58.40\nGrand Total 748.00"
	out := c.Correct(in)

	assert.Contains(t, out, "VoucherNumber214")
	assert.Contains(t, out, "26/04/2024")
	assert.Contains(t, out, "Supp Name TK")
	assert.Contains(t, out, "3 210.00 630.00")
	assert.Contains(t, out, "33.60")
	assert.Contains(t, out, "58.40")
	assert.Contains(t, out, "Grand Total 748.00")
}
