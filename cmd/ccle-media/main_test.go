package main

import (
	"math"
	"strings"
	"testing"

	"github.com/carbocation/ccleprep/medium"
	"github.com/carbocation/ccleprep/proteomics"
	"gopkg.in/guregu/null.v3"
)

func TestParseDelimiter(t *testing.T) {
	for _, v := range []struct {
		Input    string
		Expected rune
	}{
		{",", ','},
		{";", ';'},
		{"tab", '\t'},
		{`\t`, '\t'},
		{"auto", 0},
		{"AUTO", 0},
	} {
		got, err := parseDelimiter(v.Input)
		if err != nil {
			t.Fatalf("%q: %v", v.Input, err)
		}
		if got != v.Expected {
			t.Fatalf("%q: got %q, expected %q", v.Input, got, v.Expected)
		}
	}

	if _, err := parseDelimiter(",;"); err == nil {
		t.Fatal("expected an error for a two-character delimiter")
	}
}

func TestRenderSummary(t *testing.T) {
	out := renderSummary([]proteomics.MarkSummary{
		{Mark: "H3K4me1", N: 3, Mean: 2, StdDev: 1, Min: 1, Max: 3},
		{Mark: "H3K27ac", Missing: 3, Mean: math.NaN(), StdDev: math.NaN(), Min: math.NaN(), Max: math.NaN()},
	})

	for _, want := range []string{"Mark", "H3K4me1", "H3K27ac", "NaN"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered summary lacks %q:\n%s", want, out)
		}
	}
}

func TestRenderAssignments(t *testing.T) {
	out := renderAssignments([]medium.Assignment{
		{Raw: "DMEM +10%FBS", Cleaned: "DMEM", Label: null.StringFrom("DMEM"), Matches: []string{"DMEM", "Eagle MEM"}},
		{Raw: "Keratinocyte-SFM", Cleaned: "Keratinocyte-SFM"},
	})

	for _, want := range []string{"Growth medium", "DMEM +10%FBS", "DMEM, Eagle MEM", "(unmapped)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered assignments lack %q:\n%s", want, out)
		}
	}
}
