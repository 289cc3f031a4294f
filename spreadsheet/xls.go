package spreadsheet

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

type xlsWorkbook struct {
	wb *xls.WorkBook
}

func openXLS(b []byte) (Workbook, error) {
	wb, err := xls.OpenReader(bytes.NewReader(b), "utf-8")
	if err != nil {
		return nil, err
	}

	return &xlsWorkbook{wb: wb}, nil
}

func (w *xlsWorkbook) SheetNames() []string {
	out := make([]string, 0, w.wb.NumSheets())
	for sheetID := 0; sheetID < w.wb.NumSheets(); sheetID++ {
		if sheet := w.wb.GetSheet(sheetID); sheet != nil {
			out = append(out, sheet.Name)
		}
	}

	return out
}

func (w *xlsWorkbook) Rows(name string) ([][]string, error) {
	for sheetID := 0; sheetID < w.wb.NumSheets(); sheetID++ {
		sheet := w.wb.GetSheet(sheetID)
		if sheet == nil || sheet.Name != name {
			continue
		}

		out := make([][]string, 0, int(sheet.MaxRow)+1)
		for rowID := 0; rowID <= int(sheet.MaxRow); rowID++ {
			row := sheetRow(sheet, rowID)
			if row == nil {
				out = append(out, nil)
				continue
			}

			// LastCol is one past the final populated column.
			cells := make([]string, row.LastCol())
			for colID := row.FirstCol(); colID < row.LastCol(); colID++ {
				cells[colID] = row.Col(colID)
			}
			out = append(out, cells)
		}

		return out, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
}

// sheetRow returns nil for rows that have no cells. xls.WorkSheet.Row
// dereferences the missing row and panics in that case.
func sheetRow(sheet *xls.WorkSheet, rowID int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()

	return sheet.Row(rowID)
}
