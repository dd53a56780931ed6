package visualization

import (
	"fmt"
	"os"

	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/mat"
)

// SaveTIFF writes m, normalized, as a full-resolution 16-bit greyscale TIFF
func SaveTIFF(path string, m mat.Matrix) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	img := ToGray16(Normalize(m))
	if err := tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return file.Close()
}
