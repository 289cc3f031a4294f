package table

import (
	"encoding/csv"
	"io"
)

// WriteDelimited writes t with the given delimiter, optionally preceded by its
// header row.
func WriteDelimited(w io.Writer, t *Table, comma rune, header bool) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if header {
		if err := cw.Write(t.Columns); err != nil {
			return err
		}
	}

	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}

	return cw.Error()
}
