// Package spreadsheet reads sheets out of .xlsx and legacy .xls workbooks into
// tables, naming header cells the way pandas does so that downstream column
// filters behave identically on both formats.
package spreadsheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/ccleprep"
	"github.com/carbocation/ccleprep/table"
)

var (
	ErrSheetNotFound  = errors.New("sheet not found")
	ErrEmptySheetName = errors.New("sheet name is required")
	ErrUnknownFormat  = errors.New("unrecognized workbook format")
)

// Workbook exposes the sheets of an opened spreadsheet as raw cell grids.
type Workbook interface {
	SheetNames() []string

	// Rows returns every row of the sheet; rows may be ragged.
	Rows(sheet string) ([][]string, error)
}

var (
	xlsxMagic = []byte{0x50, 0x4b, 0x03, 0x04}
	xlsMagic  = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}
)

// Open reads the workbook at path, which may be local, an http(s) URL, or a
// gs:// object.
func Open(ctx context.Context, filePath string, client *storage.Client) (Workbook, error) {
	b, err := ccleprep.ReadAll(ctx, filePath, client)
	if err != nil {
		return nil, err
	}

	wb, err := OpenBytes(b, filePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	return wb, nil
}

// OpenBytes decodes an in-memory workbook. The format is chosen from the
// file signature, falling back to the extension of name.
func OpenBytes(b []byte, name string) (Workbook, error) {
	switch {
	case bytes.HasPrefix(b, xlsxMagic):
		return openXLSX(b)
	case bytes.HasPrefix(b, xlsMagic):
		return openXLS(b)
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx", ".xlsm":
		return openXLSX(b)
	case ".xls":
		return openXLS(b)
	}

	return nil, ErrUnknownFormat
}

// HasSheet reports whether the workbook contains the named sheet.
func HasSheet(wb Workbook, sheet string) bool {
	for _, name := range wb.SheetNames() {
		if name == sheet {
			return true
		}
	}

	return false
}

// ReadSheet loads a sheet as a table. The first non-empty row is the header.
// Fully empty rows are skipped.
func ReadSheet(wb Workbook, sheet string) (*table.Table, error) {
	if sheet == "" {
		return nil, ErrEmptySheetName
	}
	if !HasSheet(wb, sheet) {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, sheet, strings.Join(wb.SheetNames(), ", "))
	}

	rows, err := wb.Rows(sheet)
	if err != nil {
		return nil, err
	}

	kept := make([][]string, 0, len(rows))
	width := 0
	for _, row := range rows {
		row = trimTrailingEmpty(row)
		if len(row) == 0 {
			continue
		}
		if len(row) > width {
			width = len(row)
		}
		kept = append(kept, row)
	}

	if len(kept) == 0 {
		return table.New(nil, nil), nil
	}

	header := make([]string, width)
	copy(header, kept[0])

	return table.New(HeaderNames(header), kept[1:]), nil
}

// HeaderNames names raw header cells the way pandas does: blank cells become
// "Unnamed: i" for zero-based column i, and repeats of a name gain ".1", ".2"
// and so on, skipping any suffix that is already taken. Names are compared
// untrimmed, so "flux" and "flux " are distinct columns.
func HeaderNames(raw []string) []string {
	out := make([]string, len(raw))
	counts := make(map[string]int, len(raw))

	for i, col := range raw {
		if strings.TrimSpace(col) == "" {
			col = fmt.Sprintf("Unnamed: %d", i)
		}

		cur := counts[col]
		for cur > 0 {
			counts[col] = cur + 1
			col = fmt.Sprintf("%s.%d", col, cur)
			cur = counts[col]
		}

		out[i] = col
		counts[col] = cur + 1
	}

	return out
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}

	return row[:end]
}
