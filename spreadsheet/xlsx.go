package spreadsheet

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

type xlsxWorkbook struct {
	f *excelize.File
}

func openXLSX(b []byte) (Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	return &xlsxWorkbook{f: f}, nil
}

func (w *xlsxWorkbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// Rows returns stored cell values, not the number-formatted display text, so
// a 0.123456789 shown as 0.12 is read back in full.
func (w *xlsxWorkbook) Rows(sheet string) ([][]string, error) {
	return w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
}
