// Package medium maps free-text cell-line growth-medium descriptions onto a
// small set of canonical medium labels.
package medium

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/guregu/null.v3"
)

var ErrAmbiguous = errors.New("ambiguous medium")

// Policy decides what happens when more than one family matches.
type Policy int

const (
	// PolicyPriority assigns the first matching family in configuration order.
	PolicyPriority Policy = iota

	// PolicyStrict fails with ErrAmbiguous when two or more families match
	// and none of their matched variants contains the others. A family whose
	// matched variant is a substring of another family's matched variant
	// (e.g. "RPMI 1640" within "RPMI 1640 with L-glutamine") is discarded
	// first.
	PolicyStrict
)

func (p Policy) String() string {
	switch p {
	case PolicyPriority:
		return "priority"
	case PolicyStrict:
		return "strict"
	}

	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts "priority" or "strict".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "priority", "":
		return PolicyPriority, nil
	case "strict":
		return PolicyStrict, nil
	}

	return PolicyPriority, fmt.Errorf("unknown policy %q: use priority or strict", s)
}

// Assignment is the outcome of canonicalizing one medium string.
type Assignment struct {
	// Raw is the text as found in the annotation sheet.
	Raw string

	// Cleaned is Raw after normalization, noise removal and trimming.
	Cleaned string

	// Label is the canonical medium, null when no family matched.
	Label null.String

	// Matches lists every matching family label in priority order.
	Matches []string
}

// Mapped reports whether a family matched.
func (a Assignment) Mapped() bool {
	return a.Label.Valid
}

// Value is the canonical label, or the cleaned text when unmapped.
func (a Assignment) Value() string {
	if a.Label.Valid {
		return a.Label.String
	}

	return a.Cleaned
}

// Canonicalizer strips noise from medium text and resolves it to a label.
type Canonicalizer struct {
	stripper *Stripper
	synonyms *SynonymMap
	policy   Policy
}

func New(cfg *Config, policy Policy) *Canonicalizer {
	return &Canonicalizer{
		stripper: NewStripper(cfg.Noise),
		synonyms: cfg.SynonymMap(),
		policy:   policy,
	}
}

// Clean normalizes raw and removes noise, without trimming.
func (c *Canonicalizer) Clean(raw string) string {
	return c.stripper.Strip(Normalize(raw))
}

// Canonicalize resolves one raw medium string.
func (c *Canonicalizer) Canonicalize(raw string) (Assignment, error) {
	cleaned := c.Clean(raw)
	a := Assignment{
		Raw:     raw,
		Cleaned: strings.TrimSpace(cleaned),
	}

	matches := c.synonyms.Match(cleaned)
	for _, m := range matches {
		a.Matches = append(a.Matches, m.Label)
	}
	if len(matches) == 0 {
		return a, nil
	}

	if c.policy == PolicyStrict {
		kept := undominated(matches)
		if len(kept) > 1 {
			labels := make([]string, 0, len(kept))
			for _, m := range kept {
				labels = append(labels, m.Label)
			}
			return a, fmt.Errorf("%w: %q matches %s", ErrAmbiguous, raw, strings.Join(labels, ", "))
		}
		a.Label = null.StringFrom(kept[0].Label)
		return a, nil
	}

	a.Label = null.StringFrom(matches[0].Label)

	return a, nil
}

// CanonicalizeAll resolves every value, stopping at the first error.
func (c *Canonicalizer) CanonicalizeAll(values []string) ([]Assignment, error) {
	out := make([]Assignment, 0, len(values))
	for _, v := range values {
		a, err := c.Canonicalize(v)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, nil
}

// undominated drops matches whose variant is contained in another match's
// longer variant. Order is preserved.
func undominated(matches []Match) []Match {
	out := make([]Match, 0, len(matches))
	for i, m := range matches {
		dominated := false
		for j, other := range matches {
			if i == j || len(other.Variant) <= len(m.Variant) {
				continue
			}
			if strings.Contains(other.Variant, m.Variant) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, m)
		}
	}

	return out
}

// Unmapped returns the assignments for which no family matched.
func Unmapped(assignments []Assignment) []Assignment {
	out := make([]Assignment, 0)
	for _, a := range assignments {
		if !a.Mapped() {
			out = append(out, a)
		}
	}

	return out
}

// Media returns the distinct assignment values in first-seen order.
func Media(assignments []Assignment) []string {
	values := make([]string, 0, len(assignments))
	for _, a := range assignments {
		values = append(values, a.Value())
	}

	return Dedupe(values)
}

// Dedupe removes repeated strings, keeping the first occurrence.
func Dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}
