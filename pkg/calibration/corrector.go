package calibration

import (
	"gonum.org/v1/gonum/mat"
)

// Correct returns (image - dark) / flat computed element-wise. The frames
// must have exactly the image's shape. Zero flat-field elements give
// infinite or NaN results following IEEE-754 division.
func Correct(image, dark, flat mat.Matrix) (*mat.Dense, error) {
	rows, cols := image.Dims()
	for _, f := range []struct {
		name string
		m    mat.Matrix
	}{{"dark", dark}, {"flat", flat}} {
		r, c := f.m.Dims()
		if r != rows || c != cols {
			return nil, &ShapeMismatchError{
				Frame:     f.name,
				ImageRows: rows,
				ImageCols: cols,
				FrameRows: r,
				FrameCols: c,
			}
		}
	}

	var diff, out mat.Dense
	diff.Sub(image, dark)
	out.DivElem(&diff, flat)
	return &out, nil
}
