// Package proteomics loads chromatin-mark intensity tables and exports them in
// the flat name/mark/matrix form consumed by the MATLAB model.
package proteomics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/ccleprep"
	"github.com/carbocation/ccleprep/table"
	"gonum.org/v1/gonum/mat"
)

var ErrEmpty = errors.New("no cell lines or no marks to export")

// Load reads the proteomics table at path and drops the layout's identifier
// column. The name column must be present.
func Load(ctx context.Context, path string, client *storage.Client, layout Layout, opts table.ReadOptions) (*table.Table, error) {
	rc, err := ccleprep.OpenReader(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := table.ReadDelimited(rc, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if t.Index(layout.NameColumn) < 0 {
		return nil, fmt.Errorf("%s: %w: %q", path, table.ErrColumnNotFound, layout.NameColumn)
	}

	if layout.IDColumn == "" {
		return t, nil
	}

	t, err = t.Drop(layout.IDColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

// Dataset is the model-ready export: one row per cell line, one column per
// chromatin mark.
type Dataset struct {
	Names  []string
	Marks  []string
	Values *mat.Dense
}

// NewDataset extracts names and numeric marks from t. Columns listed in
// exclude (for example joined annotation columns) are not treated as marks.
// Missing measurements become NaN.
func NewDataset(t *table.Table, layout Layout, exclude ...string) (*Dataset, error) {
	names, err := t.Column(layout.NameColumn)
	if err != nil {
		return nil, err
	}

	skip := map[string]struct{}{layout.NameColumn: {}, layout.IDColumn: {}}
	for _, e := range exclude {
		skip[e] = struct{}{}
	}

	markIdx := make([]int, 0, len(t.Columns))
	marks := make([]string, 0, len(t.Columns))
	for i, col := range t.Columns {
		if _, excluded := skip[col]; excluded {
			continue
		}
		markIdx = append(markIdx, i)
		marks = append(marks, col)
	}

	if len(names) == 0 || len(marks) == 0 {
		return nil, ErrEmpty
	}

	data := make([]float64, 0, len(names)*len(marks))
	for r, row := range t.Rows {
		for j, i := range markIdx {
			cell := row[i]
			if layout.isMissing(cell) {
				data = append(data, math.NaN())
				continue
			}

			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("cell line %q, mark %q (row %d): %w", names[r], marks[j], r+1, err)
			}
			data = append(data, v)
		}
	}

	return &Dataset{
		Names:  names,
		Marks:  marks,
		Values: mat.NewDense(len(names), len(marks), data),
	}, nil
}

// ShortName strips the tissue suffix from a CCLE name: 22RV1_PROSTATE
// becomes 22RV1.
func ShortName(name string) string {
	return strings.SplitN(name, "_", 2)[0]
}

// ShortNames applies ShortName to every name.
func ShortNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, ShortName(n))
	}

	return out
}
