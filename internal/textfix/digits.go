package textfix

import "strings"

// digitSubs maps letters the engine commonly misreads for digits.
var digitSubs = map[byte]byte{
	'O': '0', 'D': '0', 'Q': '0',
	'I': '1', 'L': '1', '|': '1', '!': '1',
	'Z': '2',
	'S': '5', '$': '5',
	'B': '8', '&': '8',
	'G': '6',
}

// protected keywords: a substitution inside or next to these would
// destroy a label the parser depends on.
var protectedWords = []string{"vouch", "date", "supp"}

// correctDigitSubstitutions replaces misread letters with digits, but
// only inside numeric context (a digit or decimal point within two
// characters on either side) and never near a protected keyword.
func correctDigitSubstitutions(text string) string {
	out := []byte(text)
	lower := strings.ToLower(text)
	for i := 0; i < len(out); i++ {
		sub, ok := digitSubs[out[i]]
		if !ok {
			continue
		}
		if !numericContext(text, i) {
			continue
		}
		if nearProtectedWord(lower, i) {
			continue
		}
		out[i] = sub
	}
	return string(out)
}

func numericContext(text string, i int) bool {
	for j := i - 2; j <= i+2; j++ {
		if j == i || j < 0 || j >= len(text) {
			continue
		}
		c := text[j]
		if (c >= '0' && c <= '9') || c == '.' {
			return true
		}
	}
	return false
}

func nearProtectedWord(lower string, i int) bool {
	lo := i - 10
	if lo < 0 {
		lo = 0
	}
	hi := i + 10
	if hi > len(lower) {
		hi = len(lower)
	}
	window := lower[lo:hi]
	for _, w := range protectedWords {
		if strings.Contains(window, w) {
			return true
		}
	}
	return false
}
