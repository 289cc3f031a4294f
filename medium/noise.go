package medium

import (
	"regexp"
	"strings"
)

// Stripper erases literal noise substrings. All substrings are compiled into
// a single alternation, so at any position the earliest listed substring that
// matches is the one removed.
type Stripper struct {
	re *regexp.Regexp
}

func NewStripper(noise []string) *Stripper {
	if len(noise) == 0 {
		return &Stripper{}
	}

	quoted := make([]string, 0, len(noise))
	for _, n := range noise {
		quoted = append(quoted, regexp.QuoteMeta(n))
	}

	return &Stripper{re: regexp.MustCompile(strings.Join(quoted, "|"))}
}

// Strip removes every noise occurrence from s.
func (s *Stripper) Strip(v string) string {
	if s.re == nil {
		return v
	}

	return s.re.ReplaceAllLiteralString(v, "")
}
