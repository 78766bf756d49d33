package textfix

import (
	"regexp"
	"strings"
)

// termFix is one garbled-to-canonical keyword substitution. The fixes
// are ordered so longer garbles run before their substrings.
type termFix struct {
	re        *regexp.Regexp
	canonical string
	// guard and origGuard detect a canonical/garbled term sitting
	// immediately before a 3+ digit run. A fix that grows the guard
	// count swallowed part of a number and is reverted.
	guard     *regexp.Regexp
	origGuard *regexp.Regexp
}

func newTermFix(garbled, canonical string) termFix {
	return termFix{
		re:        regexp.MustCompile(`(?i)\b` + garbled + `\b`),
		canonical: canonical,
		guard:     regexp.MustCompile(regexp.QuoteMeta(canonical) + `\s*\d{3,}`),
		origGuard: regexp.MustCompile(`(?i)\b` + garbled + `\b\s*\d{3,}`),
	}
}

// Known OCR garbles of receipt vocabulary. Keys are matched on word
// boundaries, case-insensitively.
var termFixes = []termFix{
	// voucher labels
	newTermFix(`Vouch3rNumb3r`, "VoucherNumber"),
	newTermFix(`Youch3rDat3`, "VoucherDate"),
	newTermFix(`Voucner`, "Voucher"),
	newTermFix(`Vouchcr`, "Voucher"),
	newTermFix(`V0ucher`, "Voucher"),
	newTermFix(`Vouch3r`, "Voucher"),
	newTermFix(`Youch3r`, "Voucher"),
	// date labels
	newTermFix(`VoucberDate`, "Voucher Date"),
	newTermFix(`VYoucherDate`, "Voucher Date"),
	newTermFix(`Dat3`, "Date"),
	// supplier labels
	newTermFix(`SuppNanm3`, "Supp Name"),
	newTermFix(`SuppNanme`, "Supp Name"),
	newTermFix(`SuppNam3`, "Supp Name"),
	newTermFix(`SuppNane`, "Supp Name"),
	newTermFix(`SuppName`, "Supp Name"),
	// deduction vocabulary
	newTermFix(`Commision`, "Commission"),
	newTermFix(`CommW`, "Comm"),
	newTermFix(`LessForDamnages`, "Less For Damages"),
	newTermFix(`LessForDamages`, "Less For Damages"),
	newTermFix(`UnLoadin`, "UnLoading"),
	newTermFix(`Unloading`, "UnLoading"),
	newTermFix(`LFAndCash`, "L/F and Cash"),
	// totals
	newTermFix(`brandTotal`, "Grand Total"),
	newTermFix(`GrandTotal`, "Grand Total"),
	newTermFix(`NetTotal`, "Net Total"),
	newTermFix(`Tota`, "Total"),
	// column headers
	newTermFix(`Anount`, "Amount"),
}

// correctTerms applies the vocabulary table. A fix is skipped when it
// would put the corrected term before a 3+ digit run it did not sit
// before originally, which usually means the substitution fractured a
// number.
func correctTerms(text string) string {
	for _, f := range termFixes {
		if !f.re.MatchString(text) {
			continue
		}
		candidate := f.re.ReplaceAllString(text, f.canonical)
		after := len(f.guard.FindAllString(candidate, -1))
		before := len(f.origGuard.FindAllString(text, -1)) + len(f.guard.FindAllString(text, -1))
		if after > before {
			continue
		}
		text = candidate
	}
	return text
}

var (
	voucherContextRe = regexp.MustCompile(`(?i)vouch|number`)
	dateShapedRe     = regexp.MustCompile(`\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}`)
	standaloneNumRe  = regexp.MustCompile(`\b(\d{3,})\b`)
	decimalNumRe     = regexp.MustCompile(`\d+\.\d`)
)

// relabelVoucherNumbers reattaches bare digit runs to a recognized
// voucher keyword on the same line, producing the attached
// VoucherNumberNNN form the parser accepts. Lines carrying date-shaped
// or decimal tokens are left alone so the relabeling cannot eat a date
// or an amount.
func relabelVoucherNumbers(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !voucherContextRe.MatchString(line) {
			continue
		}
		if dateShapedRe.MatchString(line) || decimalNumRe.MatchString(line) {
			continue
		}
		lines[i] = standaloneNumRe.ReplaceAllString(line, "VoucherNumber$1")
	}
	return strings.Join(lines, "\n")
}
