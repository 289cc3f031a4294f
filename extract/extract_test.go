package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/ccleprep/medium"
	"github.com/carbocation/ccleprep/spreadsheet"
	"github.com/carbocation/ccleprep/table"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

const gcp = `CellLineName,BroadID,H3K4me1,H3K27ac
A_LUNG,ACH-1,0.1,0.2
B_SKIN,ACH-2,NA,0.3
C_BREAST,ACH-3,0.4,0.5
D_LIVER,ACH-4,0.6,0.7
E_KIDNEY,ACH-5,1,2
F_BLOOD,ACH-6,3,4
`

var annotations = [][]interface{}{
	{"CCLE_ID", "Name", "Growth.Medium"},
	{"A_LUNG", "a", "RPMI 1640 +10%FBS"},
	{"B_SKIN", "b", "DMEM +10%FBS"},
	{"D_LIVER", "d", "RPMI 1640"},
	{"E_KIDNEY", "e", "Keratinocyte-SFM +10%FBS"},
	{"Z_BONE", "z", "RPMI 1640 +10%FBS"},
	{"F_BLOOD", "f"},
}

func fixture(t *testing.T) *Config {
	t.Helper()

	return fixtureFrom(t, gcp)
}

// fixtureFrom writes proteomicsCSV and the annotation workbook and returns a
// config pointing at both.
func fixtureFrom(t *testing.T, proteomicsCSV string) *Config {
	t.Helper()

	dir := t.TempDir()

	gcpPath := filepath.Join(dir, "CCLE_GCP.csv")
	if err := os.WriteFile(gcpPath, []byte(proteomicsCSV), 0644); err != nil {
		t.Fatal(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Cell Line Annotations"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatal(err)
	}
	for i, row := range annotations {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	summaryPath := filepath.Join(dir, "summary.xlsx")
	if err := f.SaveAs(summaryPath); err != nil {
		t.Fatal(err)
	}

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.ProteomicsPath = gcpPath
	cfg.MetadataPath = summaryPath

	return cfg
}

func TestRun(t *testing.T) {
	cfg := fixture(t)
	cfg.Matrix = true

	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if res.Stats.JoinedRows != 5 {
		t.Fatalf("expected 5 joined rows, got %d", res.Stats.JoinedRows)
	}
	if diff := cmp.Diff([]string{"C_BREAST"}, res.Stats.UnmatchedLeft); diff != "" {
		t.Fatalf("unmatched proteomics lines (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Z_BONE"}, res.Stats.UnmatchedRight); diff != "" {
		t.Fatalf("unmatched annotations (-want +got):\n%s", diff)
	}

	raws := make([]string, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		raws = append(raws, a.Raw)
	}
	if diff := cmp.Diff([]string{"RPMI 1640 +10%FBS", "DMEM +10%FBS", "RPMI 1640", "Keratinocyte-SFM +10%FBS"}, raws); diff != "" {
		t.Fatalf("distinct media (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"RPMI", "DMEM", "Keratinocyte-SFM"}, res.Media); diff != "" {
		t.Fatalf("canonical media (-want +got):\n%s", diff)
	}

	expected := []CellLineMedium{
		{CellLine: "A_LUNG", Raw: "RPMI 1640 +10%FBS", Medium: "RPMI", Mapped: true},
		{CellLine: "B_SKIN", Raw: "DMEM +10%FBS", Medium: "DMEM", Mapped: true},
		{CellLine: "D_LIVER", Raw: "RPMI 1640", Medium: "RPMI", Mapped: true},
		{CellLine: "E_KIDNEY", Raw: "Keratinocyte-SFM +10%FBS", Medium: "Keratinocyte-SFM"},
		{CellLine: "F_BLOOD"},
	}
	if diff := cmp.Diff(expected, res.CellLines); diff != "" {
		t.Fatalf("cell line media (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"H3K4me1", "H3K27ac"}, res.Dataset.Marks); diff != "" {
		t.Fatalf("marks (-want +got):\n%s", diff)
	}
	if r, c := res.Dataset.Values.Dims(); r != 5 || c != 2 {
		t.Fatalf("got a %dx%d matrix", r, c)
	}
}

func TestRunWithoutSharedCellLines(t *testing.T) {
	cfg := fixtureFrom(t, `CellLineName,BroadID,H3K4me1
X_LUNG,ACH-7,0.1
Y_SKIN,ACH-8,0.2
`)

	for _, matrix := range []bool{false, true} {
		cfg.Matrix = matrix

		res, err := Run(context.Background(), cfg)
		if matrix {
			// The flat exports cannot be built from zero cell lines.
			if err == nil {
				t.Fatal("expected an error building an empty matrix")
			}
			continue
		}
		if err != nil {
			t.Fatal(err)
		}

		if res.Stats.JoinedRows != 0 || len(res.Media) != 0 || len(res.Assignments) != 0 || len(res.CellLines) != 0 {
			t.Fatalf("expected an empty result, got %+v", res)
		}
		if diff := cmp.Diff([]string{"X_LUNG", "Y_SKIN"}, res.Stats.UnmatchedLeft); diff != "" {
			t.Fatalf("unmatched proteomics lines (-want +got):\n%s", diff)
		}
		if res.Dataset != nil {
			t.Fatalf("expected no matrix, got %+v", res.Dataset)
		}
	}
}

func TestRunIgnoresTextColumnsWithoutMatrix(t *testing.T) {
	cfg := fixtureFrom(t, `CellLineName,BroadID,Tissue,H3K4me1
A_LUNG,ACH-1,lung,0.1
B_SKIN,ACH-2,skin,0.2
`)

	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"RPMI", "DMEM"}, res.Media); diff != "" {
		t.Fatalf("canonical media (-want +got):\n%s", diff)
	}

	if err := res.WriteOutputs(context.Background(), t.TempDir(), nil, false); !errors.Is(err, ErrNoMatrix) {
		t.Fatalf("expected ErrNoMatrix, got %v", err)
	}

	cfg.Matrix = true
	if _, err := Run(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "Tissue") {
		t.Fatalf("expected a parse error naming the Tissue column, got %v", err)
	}
}

func TestRunStrictPolicy(t *testing.T) {
	cfg := fixture(t)
	cfg.Policy = medium.PolicyStrict

	// "DMEM" also matches the Eagle MEM family, but its variant is contained
	// in the DMEM one, so strict mode still resolves it.
	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"RPMI", "DMEM", "Keratinocyte-SFM"}, res.Media); diff != "" {
		t.Fatalf("canonical media (-want +got):\n%s", diff)
	}
}

func TestRunFailures(t *testing.T) {
	ctx := context.Background()

	cfg := fixture(t)
	cfg.MetadataSheet = "Annotations"
	if _, err := Run(ctx, cfg); !errors.Is(err, spreadsheet.ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}

	cfg = fixture(t)
	cfg.MediumColumn = "Medium"
	if _, err := Run(ctx, cfg); !errors.Is(err, table.ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}

	cfg = fixture(t)
	cfg.ProteomicsPath = filepath.Join(t.TempDir(), "absent.csv")
	if _, err := Run(ctx, cfg); err == nil {
		t.Fatal("expected an error for a missing proteomics file")
	}
}

func TestWriteOutputs(t *testing.T) {
	ctx := context.Background()

	cfg := fixture(t)
	cfg.Matrix = true

	res, err := Run(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := res.WriteOutputs(ctx, dir, nil, true); err != nil {
		t.Fatal(err)
	}

	for name, expected := range map[string]string{
		NamesFile:  "A\nB\nD\nE\nF\n",
		MarksFile:  "H3K4me1\nH3K27ac\n",
		ValuesFile: "0.1,0.2\nNaN,0.3\n0.6,0.7\n1,2\n3,4\n",
	} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != expected {
			t.Fatalf("%s: got %q, expected %q", name, string(b), expected)
		}
	}

	f, err := os.Open(filepath.Join(dir, AssignmentsFile))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := medium.ReadReport(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 report rows, got %d", len(rows))
	}
	if rows[3].Mapped || rows[3].Label != "" || rows[3].Cleaned != "Keratinocyte-SFM" {
		t.Fatalf("unexpected unmapped row %+v", rows[3])
	}
}
