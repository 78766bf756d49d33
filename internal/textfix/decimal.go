package textfix

import (
	"regexp"
	"strings"
)

// decimalRule is one regex rewrite targeting a specific OCR failure
// signature in monetary amounts.
type decimalRule struct {
	re  *regexp.Regexp
	rep string
}

// Rules safe to run on every line: they repair malformed decimal
// groups that cannot be anything but a broken amount.
var conservativeDecimalRules = []decimalRule{
	// duplicated decimal group: 684.002.00 -> 684.002 is wrong both
	// ways; keep the first well-formed group
	{regexp.MustCompile(`(\d+)\.000\.00`), "${1}.00"},
	{regexp.MustCompile(`(\d+)\.(\d{2})\.00`), "${1}.${2}"},
	{regexp.MustCompile(`(\d+)\.(\d+)\.(\d{2})`), "${1}.${2}${3}"},
	// trailing dot with no cents: 400. -> 400.00
	{regexp.MustCompile(`(\d+)\.($|[^0-9])`), "${1}.00${2}"},
}

// Rules gated behind amount context: letter-for-digit confusions at
// the decimal position and missing decimal points on amount-shaped
// tokens. Run unconditionally these corrupt voucher numbers and dates.
var aggressiveDecimalRules = []decimalRule{
	// 80On / 80dOn / 80oOn -> 80.00
	{regexp.MustCompile(`(\d+)[oOdD]?[oO0][nN]\b`), "${1}.00"},
	// 5832h -> 5832.00
	{regexp.MustCompile(`(\d{3,})[hH]($|[^0-9a-zA-Z])`), "${1}.00${2}"},
	// 5832d at line end -> 5832.00
	{regexp.MustCompile(`(\d{3,})[dD]$`), "${1}.00"},
	// 4080O0 at line end -> 4080.00
	{regexp.MustCompile(`(\d{3,})[oO]0$`), "${1}.00"},
	// labeled 3+ digit run without cents: Total 840 -> Total 840.00
	{regexp.MustCompile(`(?i)\b(total|amount|comm|damages|loading|cash|less|deduction|grand|net|gross)\s+(\d{3,})($|[^.0-9])`), "${1} ${2}.00${3}"},
}

var (
	numericTokenRe  = regexp.MustCompile(`\b\d+(?:\.\d{2})?\b`)
	wellFormedAmtRe = regexp.MustCompile(`\b\d+\.\d{2}\b`)
	bareAmountRe    = regexp.MustCompile(`\d{4,}`)
)

// addMissingDecimals appends .00 to bare 4+ digit tokens that stand
// alone between whitespace. The boundary check is strict on purpose:
// digit runs inside dates (26/04/2024) or attached labels must not be
// touched, and RE2 offers no lookaround to express that in a pattern.
func addMissingDecimals(line string) string {
	locs := bareAmountRe.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return line
	}
	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		b.WriteString(line[prev:start])
		b.WriteString(line[start:end])
		spaceBefore := start == 0 || line[start-1] == ' '
		spaceAfter := end == len(line) || line[end] == ' '
		if spaceBefore && spaceAfter {
			b.WriteString(".00")
		}
		prev = end
	}
	b.WriteString(line[prev:])
	return b.String()
}

// isAmountContext reports whether a line likely carries monetary
// amounts: it names an amount keyword, or holds exactly three numeric
// tokens (qty, price, amount), or already contains one well-formed
// X.XX amount.
func (c *Corrector) isAmountContext(line string) bool {
	if c.amountKeywords.MatchString(line) {
		return true
	}
	if len(numericTokenRe.FindAllString(line, -1)) == 3 {
		return true
	}
	return wellFormedAmtRe.MatchString(line)
}

// correctDecimals repairs broken amount formatting line by line. The
// conservative rules always run; the aggressive rules only run inside
// amount context.
func (c *Corrector) correctDecimals(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for _, r := range conservativeDecimalRules {
			line = r.re.ReplaceAllString(line, r.rep)
		}
		if c.isAmountContext(line) {
			for _, r := range aggressiveDecimalRules {
				line = r.re.ReplaceAllString(line, r.rep)
			}
			line = addMissingDecimals(line)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
