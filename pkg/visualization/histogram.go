package visualization

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Bins is the number of grey levels counted by Histogram
const Bins = 256

// Histogram counts the 8-bit grey levels of the rendered grid, skipping
// transparent (non-finite) pixels. count[i] holds the pixels at level i.
func Histogram(m mat.Matrix) []float64 {
	norm := Normalize(m)
	rows, cols := norm.Dims()

	levels := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := norm.At(i, j); !math.IsNaN(v) {
				levels = append(levels, float64(Level(v)))
			}
		}
	}

	count := make([]float64, Bins)
	if len(levels) == 0 {
		return count
	}
	sort.Float64s(levels)

	dividers := floats.Span(make([]float64, Bins+1), 0, Bins)
	return stat.Histogram(count, dividers, levels, nil)
}
