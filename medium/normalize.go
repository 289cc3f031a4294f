package medium

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC so that compatibility forms (non-breaking spaces,
// full-width digits) compare equal to their plain counterparts, and maps any
// remaining Unicode space or control character to an ASCII space. It does
// not trim: variants such as "RPMI " depend on surrounding whitespace.
func Normalize(s string) string {
	s = norm.NFKC.String(s)

	return strings.Map(func(r rune) rune {
		if r == ' ' {
			return r
		}
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
