// Package artifact writes the per-image outputs of the pipeline: the
// greyscale raster, the label side-record and the optional statistics,
// histogram, FITS and TIFF products.
package artifact

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"pds3proc/internal/models"
	"pds3proc/pkg/visualization"
)

// Options selects which artifacts are written and how rasters are rendered
type Options struct {
	// CanvasPixels and DPI define the square raster canvas
	CanvasPixels int
	DPI          int

	// Optional artifacts
	Stats     bool
	Histogram bool
	FITS      bool
	TIFF      bool
}

// DefaultOptions renders 128 px rasters at 100 dpi and writes only the
// raster and metadata
func DefaultOptions() Options {
	return Options{
		CanvasPixels: 128,
		DPI:          100,
	}
}

// Paths holds the output file names for one source image
type Paths struct {
	Raster    string
	Metadata  string
	Stats     string
	Histogram string
	FITS      string
	TIFF      string
}

// PathsFor derives the artifact paths in dir for the source file name
func PathsFor(dir, sourceName string) Paths {
	base := filepath.Base(sourceName)
	stem := filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base)))
	return Paths{
		Raster:    stem + ".png",
		Metadata:  stem + "_metadata.csv",
		Stats:     stem + "_stats.csv",
		Histogram: stem + "_histogram.csv",
		FITS:      stem + ".fits",
		TIFF:      stem + ".tiff",
	}
}

// Writer renders and serializes corrected images
type Writer struct {
	opts     Options
	renderer *visualization.Renderer
}

// NewWriter creates a writer for the given options
func NewWriter(opts Options) *Writer {
	return &Writer{
		opts:     opts,
		renderer: visualization.NewRenderer(opts.CanvasPixels, opts.DPI),
	}
}

// WriteRaster renders the grid as a normalized greyscale PNG
func (w *Writer) WriteRaster(path string, m mat.Matrix) error {
	return w.renderer.SavePNG(path, m)
}

// WriteMetadata serializes the header as key,value rows in header order
func (w *Writer) WriteMetadata(path string, hdr *models.Header) error {
	return SaveMetadata(path, hdr)
}

// WriteAll writes every enabled artifact for img into dir and returns the
// paths written. The raster and metadata are always written.
func (w *Writer) WriteAll(dir string, img *models.Image, corrected mat.Matrix) ([]string, error) {
	p := PathsFor(dir, img.Path)

	steps := []struct {
		enabled bool
		path    string
		write   func(string) error
	}{
		{true, p.Raster, func(path string) error { return w.WriteRaster(path, corrected) }},
		{true, p.Metadata, func(path string) error { return w.WriteMetadata(path, img.Header) }},
		{w.opts.Stats, p.Stats, func(path string) error {
			s, err := Summarize(corrected)
			if err != nil {
				return err
			}
			return SaveStats(path, s)
		}},
		{w.opts.Histogram, p.Histogram, func(path string) error {
			return SaveHistogram(path, visualization.Histogram(corrected))
		}},
		{w.opts.FITS, p.FITS, func(path string) error { return SaveFITS(path, img, corrected) }},
		{w.opts.TIFF, p.TIFF, func(path string) error { return visualization.SaveTIFF(path, corrected) }},
	}

	var written []string
	for _, s := range steps {
		if !s.enabled {
			continue
		}
		if err := s.write(s.path); err != nil {
			return written, fmt.Errorf("write %s: %w", s.path, err)
		}
		written = append(written, s.path)
	}
	return written, nil
}
