package proteomics

import (
	"fmt"
	"sort"
	"strings"
)

// Layout names the non-measurement columns of a proteomics table.
type Layout struct {
	// IDColumn is an internal identifier that is dropped on load.
	IDColumn string

	// NameColumn holds the cell-line name used as the join key.
	NameColumn string

	// Missing lists cell values that denote an absent measurement.
	Missing []string
}

var Layouts = map[string]Layout{
	// Global chromatin profiling, Ghandi et al. 2019 (CCLE_GCP.csv).
	"CCLE2019": {
		IDColumn:   "BroadID",
		NameColumn: "CellLineName",
		Missing:    []string{"", "NA", "NaN", "nan"},
	},
}

func LayoutNames() string {
	names := make([]string, 0, len(Layouts))
	for m := range Layouts {
		names = append(names, m)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

// LookupLayout returns the named layout.
func LookupLayout(name string) (Layout, error) {
	l, exists := Layouts[name]
	if !exists {
		return Layout{}, fmt.Errorf("Layout %s is not found. Valid layout names include: %s", name, LayoutNames())
	}

	return l, nil
}

func (l Layout) isMissing(cell string) bool {
	cell = strings.TrimSpace(cell)
	for _, m := range l.Missing {
		if cell == m {
			return true
		}
	}

	return false
}
