package proteomics

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// WriteLines writes one value per line.
func WriteLines(w io.Writer, values []string) error {
	bw := bufio.NewWriter(w)
	for _, v := range values {
		if _, err := bw.WriteString(v); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteMatrix writes m as comma-separated numbers with no header and no index
// column. NaN is written as NaN, which MATLAB's readmatrix understands.
func WriteMatrix(w io.Writer, m mat.Matrix) error {
	rows, cols := m.Dims()

	cw := csv.NewWriter(w)
	record := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) {
				record[j] = "NaN"
				continue
			}
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}
