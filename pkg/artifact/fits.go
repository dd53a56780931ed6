package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/astrogo/fitsio"
	"gonum.org/v1/gonum/mat"

	"pds3proc/internal/models"
)

// SaveFITS writes the corrected grid as the primary HDU of a FITS file,
// 64-bit floats with NAXIS1 = line samples and NAXIS2 = lines
func SaveFITS(path string, img *models.Image, corrected mat.Matrix) error {
	rows, cols := corrected.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data = append(data, corrected.At(i, j))
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	f, err := fitsio.Create(file)
	if err != nil {
		return fmt.Errorf("create fits: %w", err)
	}

	hdu := fitsio.NewImage(-64, []int{cols, rows})
	defer hdu.Close()

	err = hdu.Header().Append(
		fitsio.Card{Name: "ORIGIN", Value: "pds3proc", Comment: "dark and flat corrected"},
		fitsio.Card{Name: "FILENAME", Value: filepath.Base(img.Path), Comment: "source PDS3 product"},
		fitsio.Card{Name: "SMPLTYPE", Value: img.Kind.String(), Comment: "source sample type"},
	)
	if err != nil {
		return fmt.Errorf("fits header: %w", err)
	}
	if err := hdu.Write(data); err != nil {
		return fmt.Errorf("fits data: %w", err)
	}
	if err := f.Write(hdu); err != nil {
		return fmt.Errorf("fits write: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return file.Close()
}
