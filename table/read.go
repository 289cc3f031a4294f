package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/ccleprep"
	"golang.org/x/net/html/charset"
)

var ErrNoHeader = errors.New("no header row")

// ReadOptions controls how delimited text is parsed.
type ReadOptions struct {
	// Comma is the field delimiter. Zero means sniff it from the data.
	Comma rune

	// Comment, if nonzero, marks lines to be skipped.
	Comment rune

	// Encoding is an HTML/WHATWG encoding label such as "latin1" or
	// "windows-1252". Empty means UTF-8.
	Encoding string
}

// ReadDelimited parses a header row followed by data rows. Rows shorter than
// the header are padded with empty cells; a UTF-8 byte order mark on the
// first header cell is removed.
func ReadDelimited(r io.Reader, opts ReadOptions) (*Table, error) {
	if opts.Encoding != "" && !strings.EqualFold(opts.Encoding, "utf-8") && !strings.EqualFold(opts.Encoding, "utf8") {
		decoded, err := charset.NewReaderLabel(opts.Encoding, r)
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", opts.Encoding, err)
		}
		r = decoded
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	comma := opts.Comma
	if comma == 0 {
		comma = ccleprep.DetermineDelimiterBytes(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = comma
	cr.Comment = opts.Comment
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, ErrNoHeader
	}

	return New(records[0], records[1:]), nil
}
