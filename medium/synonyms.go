package medium

import "strings"

// SynonymMap maps canonical medium labels to their textual variants. Labels
// keep the order in which they were first inserted, which is also their match
// priority, and each label's variants keep insertion order without repeats.
type SynonymMap struct {
	labels   []string
	variants map[string][]string
	seen     map[string]map[string]struct{}
}

func NewSynonymMap() *SynonymMap {
	return &SynonymMap{
		variants: make(map[string][]string),
		seen:     make(map[string]map[string]struct{}),
	}
}

// Upsert adds variants to label, creating the label if it is new. Variants
// already recorded for the label are ignored.
func (m *SynonymMap) Upsert(label string, variants ...string) {
	seen, exists := m.seen[label]
	if !exists {
		seen = make(map[string]struct{}, len(variants))
		m.seen[label] = seen
		m.labels = append(m.labels, label)
	}

	for _, v := range variants {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		m.variants[label] = append(m.variants[label], v)
	}
}

// Len is the number of labels.
func (m *SynonymMap) Len() int {
	return len(m.labels)
}

// Labels returns the labels in priority order.
func (m *SynonymMap) Labels() []string {
	return append([]string(nil), m.labels...)
}

// Variants returns the variants recorded for label.
func (m *SynonymMap) Variants(label string) []string {
	return append([]string(nil), m.variants[label]...)
}

// Families returns the map's contents as an ordered family list.
func (m *SynonymMap) Families() []Family {
	out := make([]Family, 0, len(m.labels))
	for _, label := range m.labels {
		out = append(out, Family{Label: label, Variants: m.Variants(label)})
	}

	return out
}

// Match is one family whose variant occurs in a medium string.
type Match struct {
	Label string

	// Variant is the longest of the family's variants found in the string.
	Variant string
}

// Match returns, in priority order, every family with at least one variant
// occurring as a substring of s. Matching is case-sensitive.
func (m *SynonymMap) Match(s string) []Match {
	var out []Match
	for _, label := range m.labels {
		best := ""
		for _, v := range m.variants[label] {
			if len(v) > len(best) && strings.Contains(s, v) {
				best = v
			}
		}
		if best != "" {
			out = append(out, Match{Label: label, Variant: best})
		}
	}

	return out
}
