package medium

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func defaultCanonicalizer(t *testing.T, policy Policy) *Canonicalizer {
	t.Helper()

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}

	return New(cfg, policy)
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.Noise) < 80 {
		t.Fatalf("expected the full noise list, got %d entries", len(cfg.Noise))
	}

	labels := cfg.SynonymMap().Labels()
	want := []string{
		"RPMI w Gln", "DMEM w Glc", "alpha-MEM", "McCoy's 5A", "Waymouth", "L15",
		"HAM F-12", "HAM F-10", "RPMI", "DMEM", "Eagle MEM",
	}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestStripRemovesEveryNoiseSubstring(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	s := NewStripper(cfg.Noise)

	for _, noise := range cfg.Noise {
		for _, prefix := range []string{"RPMI 1640", "DMEM"} {
			in := prefix + noise
			if out := s.Strip(in); strings.Contains(out, noise) {
				t.Fatalf("Strip(%q) = %q still contains %q", in, out, noise)
			}
		}
	}
}

func TestStripEarlierEntryWins(t *testing.T) {
	s := NewStripper([]string{" +10%FBS", " +10%"})
	if got := s.Strip("RPMI +10%FBS"); got != "RPMI" {
		t.Fatalf("got %q", got)
	}

	s = NewStripper([]string{" +10%", " +10%FBS"})
	if got := s.Strip("RPMI +10%FBS"); got != "RPMIFBS" {
		t.Fatalf("got %q", got)
	}
}

func TestStripQuotesMetacharacters(t *testing.T) {
	s := NewStripper([]string{" (FBS),10%", ". Refer"})
	if got := s.Strip("MEM (FBS),10%"); got != "MEM" {
		t.Fatalf("got %q", got)
	}
	// "." must not act as a wildcard.
	if got := s.Strip("X Refer"); got != "X Refer" {
		t.Fatalf("got %q", got)
	}
}

func TestNoNoiseIsIdentity(t *testing.T) {
	if got := NewStripper(nil).Strip("RPMI +10%FBS"); got != "RPMI +10%FBS" {
		t.Fatalf("got %q", got)
	}
}

func TestCanonicalize(t *testing.T) {
	c := defaultCanonicalizer(t, PolicyPriority)

	for _, v := range []struct {
		Raw     string
		Label   string
		Cleaned string
	}{
		{"RPMI 1640", "RPMI", "RPMI 1640"},
		{"RPMI 1640 +10%FBS", "RPMI", "RPMI 1640"},
		{"RPMI-1640 with 10% fetal bovine serum", "RPMI", "RPMI-1640"},
		{"RPMI 1640  with L-glutamine (300mg/L), 90%", "RPMI w Gln", "RPMI 1640  with L-glutamine (300mg/L), 90%"},
		{"DMEM +10%FBS", "DMEM", "DMEM"},
		{"Dulbecco's modified Eagle's medium with 10% fetal bovine serum", "DMEM", "Dulbecco's modified Eagle's medium"},
		{"90% Dulbecco's MEM (4.5g/L glucose)", "DMEM w Glc", "90% Dulbecco's MEM (4.5g/L glucose)"},
		{"80% alpha-MEM +20% FBS", "alpha-MEM", "80% alpha-MEM"},
		{"Eagle's minimal essential medium", "Eagle MEM", "Eagle's minimal essential medium"},
		{"McCoy's 5A +10%FBS", "McCoy's 5A", "McCoy's 5A"},
		{"Leibovitz's L-15 Medium +10%FBS", "L15", "Leibovitz's L-15 Medium"},
		{"Waymouth's +10%FBS", "Waymouth", "Waymouth's"},
		{"F-12K +10%FBS", "HAM F-12", "F-12K"},
		{"HamF10 +10%FBS", "HAM F-10", "HamF10"},
		{"RPMI 1640 +10%FBS", "RPMI", "RPMI 1640"},
	} {
		a, err := c.Canonicalize(v.Raw)
		if err != nil {
			t.Fatalf("%q: %v", v.Raw, err)
		}
		if !a.Mapped() || a.Label.String != v.Label {
			t.Fatalf("%q: got label %+v, expected %q (matches %v)", v.Raw, a.Label, v.Label, a.Matches)
		}
		if a.Cleaned != v.Cleaned {
			t.Fatalf("%q: got cleaned %q, expected %q", v.Raw, a.Cleaned, v.Cleaned)
		}
		if a.Raw != v.Raw {
			t.Fatalf("raw text was altered: %q", a.Raw)
		}
	}
}

func TestCanonicalizeUnmapped(t *testing.T) {
	c := defaultCanonicalizer(t, PolicyPriority)

	a, err := c.Canonicalize("Keratinocyte-SFM +10%FBS")
	if err != nil {
		t.Fatal(err)
	}
	if a.Mapped() {
		t.Fatalf("expected unmapped, got %+v", a)
	}
	if a.Value() != "Keratinocyte-SFM" {
		t.Fatalf("expected the cleaned text back, got %q", a.Value())
	}
	if len(a.Matches) != 0 {
		t.Fatalf("expected no matches, got %v", a.Matches)
	}
}

func TestCanonicalizeRecordsAllMatches(t *testing.T) {
	c := defaultCanonicalizer(t, PolicyPriority)

	a, err := c.Canonicalize("DMEM")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"DMEM", "Eagle MEM"}, a.Matches); diff != "" {
		t.Fatalf("matches mismatch (-want +got):\n%s", diff)
	}
	if a.Label.String != "DMEM" {
		t.Fatalf("got %q", a.Label.String)
	}
}

func TestStrictPolicy(t *testing.T) {
	c := defaultCanonicalizer(t, PolicyStrict)

	// Nested variants are not ambiguous.
	for _, v := range []struct {
		Raw   string
		Label string
	}{
		{"DMEM", "DMEM"},
		{"RPMI 1640 with L-glutamine(300mg/L), 90%;", "RPMI w Gln"},
		{"Dulbecco's modified Eagle's medium", "DMEM"},
		{"alpha-MEM", "alpha-MEM"},
	} {
		a, err := c.Canonicalize(v.Raw)
		if err != nil {
			t.Fatalf("%q: %v", v.Raw, err)
		}
		if a.Label.String != v.Label {
			t.Fatalf("%q: got %q, expected %q", v.Raw, a.Label.String, v.Label)
		}
	}

	if _, err := c.Canonicalize("RPMI 1640:DMEM 1:1"); !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
	if _, err := c.CanonicalizeAll([]string{"DMEM", "RPMI 1640:DMEM 1:1"}); !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}

	// The priority policy resolves the same string deterministically.
	a, err := defaultCanonicalizer(t, PolicyPriority).Canonicalize("RPMI 1640:DMEM 1:1")
	if err != nil {
		t.Fatal(err)
	}
	if a.Label.String != "RPMI" {
		t.Fatalf("got %q", a.Label.String)
	}
}

func TestMediaHasNoRepeats(t *testing.T) {
	c := defaultCanonicalizer(t, PolicyPriority)

	assignments, err := c.CanonicalizeAll([]string{
		"RPMI 1640 +10%FBS",
		"RPMI-1640 with 10% fetal bovine serum",
		"DMEM +10%FBS",
		"Keratinocyte-SFM",
		"90% RPMI 1640 +10% FBS",
		"DMEM",
		"Keratinocyte-SFM",
	})
	if err != nil {
		t.Fatal(err)
	}

	got := Media(assignments)
	if diff := cmp.Diff([]string{"RPMI", "DMEM", "Keratinocyte-SFM"}, got); diff != "" {
		t.Fatalf("media mismatch (-want +got):\n%s", diff)
	}

	unmapped := Unmapped(assignments)
	if len(unmapped) != 2 || unmapped[0].Cleaned != "Keratinocyte-SFM" {
		t.Fatalf("unexpected unmapped %+v", unmapped)
	}
}

func TestDedupe(t *testing.T) {
	if diff := cmp.Diff([]string{"b", "a"}, Dedupe([]string{"b", "a", "b", "a"})); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if got := Dedupe(nil); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestSynonymMapUpsert(t *testing.T) {
	build := func() *SynonymMap {
		m := NewSynonymMap()
		m.Upsert("RPMI", "RPMI1640", "RPMI-1640")
		m.Upsert("DMEM", "DMEM")
		m.Upsert("RPMI", "RPMI-1640", "RPMI 1640")
		m.Upsert("RPMI")
		return m
	}

	m := build()
	if diff := cmp.Diff([]string{"RPMI", "DMEM"}, m.Labels()); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"RPMI1640", "RPMI-1640", "RPMI 1640"}, m.Variants("RPMI")); diff != "" {
		t.Fatalf("variants mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m.Families(), build().Families()); diff != "" {
		t.Fatalf("upsert is not deterministic:\n%s", diff)
	}
	if m.Len() != 2 {
		t.Fatalf("got %d labels", m.Len())
	}
}

func TestSynonymMapMatchPicksLongestVariant(t *testing.T) {
	m := NewSynonymMap()
	m.Upsert("RPMI", "RPMI ", "RPMI 1640", "RPMI 1640 medium")

	got := m.Match("RPMI 1640 medium.")
	want := []Match{{Label: "RPMI", Variant: "RPMI 1640 medium"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if got := m.Match("rpmi 1640"); len(got) != 0 {
		t.Fatalf("matching should be case-sensitive, got %v", got)
	}
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "media.toml")
	user := `
noise = [" +10%FBS", " + 2mM glutamine"]

[[family]]
label = "RPMI"
variants = ["RPMI 1640 medium", "RPMI1640 (ATCC)"]

[[family]]
label = "Keratinocyte-SFM"
variants = ["Keratinocyte-SFM", "KSFM"]
`
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	defaults, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.Noise) != len(defaults.Noise)+1 || cfg.Noise[len(cfg.Noise)-1] != " + 2mM glutamine" {
		t.Fatalf("noise not merged: %d vs %d", len(cfg.Noise), len(defaults.Noise))
	}

	m := cfg.SynonymMap()
	labels := m.Labels()
	if labels[len(labels)-1] != "Keratinocyte-SFM" {
		t.Fatalf("new family should be appended last, got %v", labels)
	}
	rpmi := m.Variants("RPMI")
	if rpmi[len(rpmi)-1] != "RPMI1640 (ATCC)" {
		t.Fatalf("new variant not appended: %v", rpmi)
	}
	if len(rpmi) != len(defaults.SynonymMap().Variants("RPMI"))+1 {
		t.Fatalf("existing variant was duplicated: %v", rpmi)
	}

	a, err := New(cfg, PolicyPriority).Canonicalize("KSFM + 2mM glutamine")
	if err != nil {
		t.Fatal(err)
	}
	if a.Label.String != "Keratinocyte-SFM" || a.Cleaned != "KSFM" {
		t.Fatalf("got %+v", a)
	}
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"unknown.toml":    "colour = \"blue\"\n",
		"nolabel.toml":    "[[family]]\nvariants = [\"x\"]\n",
		"novars.toml":     "[[family]]\nlabel = \"x\"\n",
		"emptyvar.toml":   "[[family]]\nlabel = \"x\"\nvariants = [\"\"]\n",
		"emptynoise.toml": "noise = [\"\"]\n",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicyPriority, "priority": PolicyPriority, "STRICT": PolicyStrict} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("first"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestReport(t *testing.T) {
	c := defaultCanonicalizer(t, PolicyPriority)
	assignments, err := c.CanonicalizeAll([]string{"DMEM +10%FBS", "Keratinocyte-SFM"})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, assignments); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "raw,cleaned,label,mapped,matches\n") {
		t.Fatalf("unexpected header in %q", buf.String())
	}

	rows, err := ReadReport(&buf)
	if err != nil {
		t.Fatal(err)
	}
	want := []*ReportRow{
		{Raw: "DMEM +10%FBS", Cleaned: "DMEM", Label: "DMEM", Mapped: true, Matches: "DMEM;Eagle MEM"},
		{Raw: "Keratinocyte-SFM", Cleaned: "Keratinocyte-SFM"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("RPMI 1640\t+10%FBS"); got != "RPMI 1640 +10%FBS" {
		t.Fatalf("got %q", got)
	}
	if got := Normalize("RPMI "); got != "RPMI " {
		t.Fatalf("trailing space must survive, got %q", got)
	}
}
