package main

import (
	"strconv"
	"strings"

	"github.com/carbocation/ccleprep/medium"
	"github.com/carbocation/ccleprep/proteomics"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// newTableWriter returns a rounded table whose listed columns are right
// aligned.
func newTableWriter(header table.Row, numeric ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, len(numeric))
	for _, name := range numeric {
		configs = append(configs, table.ColumnConfig{
			Name:        name,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw
}

func renderAssignments(assignments []medium.Assignment) string {
	tw := newTableWriter(table.Row{"Growth medium", "Cleaned", "Canonical", "Matching families"})
	for _, a := range assignments {
		label := a.Label.ValueOrZero()
		if !a.Mapped() {
			label = "(unmapped)"
		}
		tw.AppendRow(table.Row{a.Raw, a.Cleaned, label, strings.Join(a.Matches, ", ")})
	}

	return tw.Render()
}

func renderSummary(summaries []proteomics.MarkSummary) string {
	format := func(v float64) string {
		return strconv.FormatFloat(v, 'g', 4, 64)
	}

	tw := newTableWriter(table.Row{"Mark", "N", "Missing", "Mean", "SD", "Min", "Max"},
		"N", "Missing", "Mean", "SD", "Min", "Max")
	for _, s := range summaries {
		tw.AppendRow(table.Row{s.Mark, s.N, s.Missing, format(s.Mean), format(s.StdDev), format(s.Min), format(s.Max)})
	}

	return tw.Render()
}
