// Package trim cuts model-output sheets down to the part the figures use:
// pandas duplicate columns and the spacer column are dropped and only the
// leading rows are kept.
package trim

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/carbocation/ccleprep/spreadsheet"
	"github.com/carbocation/ccleprep/table"
)

// DefaultDuplicatePattern matches the ".N" suffix given to repeated header
// names.
const DefaultDuplicatePattern = `\.\d+$`

type Options struct {
	// Sheet is required by Trim. TrimAll ignores it.
	Sheet string

	// MaxRows is the number of data rows kept.
	MaxRows int

	// DropColumns must all be present in the sheet.
	DropColumns []string

	// Duplicates matches the names of de-duplicated repeat columns.
	Duplicates *regexp.Regexp
}

func DefaultOptions() Options {
	return Options{
		MaxRows:     50,
		DropColumns: []string{"Unnamed: 22"},
		Duplicates:  regexp.MustCompile(DefaultDuplicatePattern),
	}
}

// Sheet is a trimmed sheet and the name it came from.
type Sheet struct {
	Name  string
	Table *table.Table
}

// Trim reads opts.Sheet from wb and trims it.
func Trim(wb spreadsheet.Workbook, opts Options) (*table.Table, error) {
	t, err := spreadsheet.ReadSheet(wb, opts.Sheet)
	if err != nil {
		return nil, err
	}

	t, err = Apply(t, opts)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", opts.Sheet, err)
	}

	return t, nil
}

// TrimAll trims every sheet of wb, in workbook order.
func TrimAll(wb spreadsheet.Workbook, opts Options) ([]Sheet, error) {
	out := make([]Sheet, 0)
	for _, name := range wb.SheetNames() {
		opts.Sheet = name
		t, err := Trim(wb, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, Sheet{Name: name, Table: t})
	}

	return out, nil
}

// Apply drops duplicate-suffixed columns, then the fixed columns, then keeps
// the first MaxRows rows.
func Apply(t *table.Table, opts Options) (*table.Table, error) {
	if opts.Duplicates != nil {
		t = t.DropFunc(opts.Duplicates.MatchString)
	}

	if len(opts.DropColumns) > 0 {
		var err error
		t, err = t.Drop(opts.DropColumns...)
		if err != nil {
			return nil, err
		}
	}

	return t.Head(opts.MaxRows), nil
}

// FileName turns a sheet name into a single safe path element. Separators and
// characters that Windows rejects become '_'; leading and trailing dots and
// spaces are removed so the result can never be "." or "..".
func FileName(sheet string) string {
	name := strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, sheet)

	name = strings.Trim(name, ". ")
	if name == "" {
		return "sheet"
	}

	return name
}

// FileNames maps each sheet to a distinct file name with the given
// extension. A name already taken gets a "_2", "_3" suffix.
func FileNames(sheets []string, ext string) []string {
	out := make([]string, 0, len(sheets))
	used := make(map[string]struct{}, len(sheets))
	for _, sheet := range sheets {
		base := FileName(sheet)
		name := base + ext
		for i := 2; ; i++ {
			if _, taken := used[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		used[name] = struct{}{}
		out = append(out, name)
	}

	return out
}
