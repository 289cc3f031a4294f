package medium

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// ReportRow is the flat CSV form of an Assignment.
type ReportRow struct {
	Raw     string `csv:"raw"`
	Cleaned string `csv:"cleaned"`
	Label   string `csv:"label"`
	Mapped  bool   `csv:"mapped"`
	Matches string `csv:"matches"`
}

func toReportRows(assignments []Assignment) []*ReportRow {
	rows := make([]*ReportRow, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, &ReportRow{
			Raw:     a.Raw,
			Cleaned: a.Cleaned,
			Label:   a.Label.ValueOrZero(),
			Mapped:  a.Mapped(),
			Matches: strings.Join(a.Matches, ";"),
		})
	}

	return rows
}

// WriteReport writes one CSV row per assignment, with a header.
func WriteReport(w io.Writer, assignments []Assignment) error {
	return gocsv.Marshal(toReportRows(assignments), w)
}

// ReadReport parses a file produced by WriteReport.
func ReadReport(r io.Reader) ([]*ReportRow, error) {
	rows := []*ReportRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}

	return rows, nil
}
