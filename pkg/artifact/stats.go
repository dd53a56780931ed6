package artifact

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// Summary describes the value distribution of a grid
type Summary struct {
	// Count is the number of finite elements the statistics cover
	Count int

	// NonFinite counts NaN and infinite elements
	NonFinite int

	Min    float64
	Max    float64
	Mean   float64
	Median float64
	StdDev float64
}

// Summarize computes statistics over the finite elements of m. A grid
// without finite elements reports NaN statistics.
func Summarize(m mat.Matrix) (Summary, error) {
	rows, cols := m.Dims()
	data := make(stats.Float64Data, 0, rows*cols)
	var s Summary
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				s.NonFinite++
				continue
			}
			data = append(data, v)
		}
	}
	s.Count = len(data)
	if s.Count == 0 {
		nan := math.NaN()
		s.Min, s.Max, s.Mean, s.Median, s.StdDev = nan, nan, nan, nan, nan
		return s, nil
	}

	var err error
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return s, err
	}
	return s, nil
}

// Rows returns the summary as statistic,value pairs
func (s Summary) Rows() [][]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return [][]string{
		{"count", strconv.Itoa(s.Count)},
		{"non_finite", strconv.Itoa(s.NonFinite)},
		{"min", f(s.Min)},
		{"max", f(s.Max)},
		{"mean", f(s.Mean)},
		{"median", f(s.Median)},
		{"stddev", f(s.StdDev)},
	}
}

// WriteStats writes the summary rows as CSV
func WriteStats(w io.Writer, s Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(s.Rows()); err != nil {
		return err
	}
	return cw.Error()
}

// SaveStats writes the summary to path
func SaveStats(path string, s Summary) error {
	return writeFile(path, func(w io.Writer) error { return WriteStats(w, s) })
}
