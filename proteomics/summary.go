package proteomics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MarkSummary describes the observed (non-NaN) values of one mark.
type MarkSummary struct {
	Mark    string
	N       int
	Missing int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

// Summarize computes per-mark statistics. Marks with no observations report
// NaN for every statistic.
func Summarize(d *Dataset) []MarkSummary {
	out := make([]MarkSummary, 0, len(d.Marks))
	rows, _ := d.Values.Dims()
	col := make([]float64, rows)

	for j, mark := range d.Marks {
		mat.Col(col, j, d.Values)

		observed := make([]float64, 0, rows)
		for _, v := range col {
			if !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}

		s := MarkSummary{
			Mark:    mark,
			N:       len(observed),
			Missing: rows - len(observed),
			Mean:    math.NaN(),
			StdDev:  math.NaN(),
			Min:     math.NaN(),
			Max:     math.NaN(),
		}
		if len(observed) > 0 {
			s.Mean, s.StdDev = stat.MeanStdDev(observed, nil)
			s.Min, s.Max = observed[0], observed[0]
			for _, v := range observed[1:] {
				s.Min = math.Min(s.Min, v)
				s.Max = math.Max(s.Max, v)
			}
		}

		out = append(out, s)
	}

	return out
}
