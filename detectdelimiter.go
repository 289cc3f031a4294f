package ccleprep

import (
	"bytes"
	"io"

	"github.com/csimplestring/go-csv/detector"
)

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file. Falls back to a comma.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 && len(delimiters[0]) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}

// DetermineDelimiterBytes sniffs the delimiter from the first lines of b.
func DetermineDelimiterBytes(b []byte) rune {
	const sampleSize = 64 * 1024

	if len(b) > sampleSize {
		b = b[:sampleSize]
		// Don't hand the detector a truncated final line.
		if i := bytes.LastIndexByte(b, '\n'); i > 0 {
			b = b[:i+1]
		}
	}

	return DetermineDelimiter(bytes.NewReader(b))
}
