// Package visualization renders corrected image grids as greyscale rasters.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Renderer draws grids onto a fixed-size square canvas with a transparent
// background and no axes, ticks or padding
type Renderer struct {
	// canvasPixels is the side of the output raster in pixels
	canvasPixels int

	// dpi is the resolution used to convert the canvas to pixels
	dpi int
}

// NewRenderer creates a renderer producing canvasPixels x canvasPixels images
func NewRenderer(canvasPixels, dpi int) *Renderer {
	return &Renderer{
		canvasPixels: canvasPixels,
		dpi:          dpi,
	}
}

// Render draws the normalized grid stretched over the whole canvas
func (r *Renderer) Render(m mat.Matrix) (image.Image, error) {
	c, err := r.draw(m)
	if err != nil {
		return nil, err
	}
	return c.Image(), nil
}

// WritePNG renders m and encodes the canvas as PNG
func (r *Renderer) WritePNG(w io.Writer, m mat.Matrix) error {
	c, err := r.draw(m)
	if err != nil {
		return err
	}
	_, err = vgimg.PngCanvas{Canvas: c}.WriteTo(w)
	return err
}

// SavePNG renders m into a PNG file at path
func (r *Renderer) SavePNG(path string, m mat.Matrix) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := r.WritePNG(file, m); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return file.Close()
}

func (r *Renderer) draw(m mat.Matrix) (*vgimg.Canvas, error) {
	if r.canvasPixels <= 0 || r.dpi <= 0 {
		return nil, fmt.Errorf("invalid canvas %d px at %d dpi", r.canvasPixels, r.dpi)
	}
	rows, cols := m.Dims()

	p := plot.New()
	p.HideAxes()
	p.X.Padding = 0
	p.Y.Padding = 0
	p.BackgroundColor = color.Transparent
	p.Add(plotter.NewImage(ToImage(Normalize(m)), 0, 0, float64(cols), float64(rows)))

	side := vg.Length(r.canvasPixels) / vg.Length(r.dpi) * vg.Inch
	c := vgimg.NewWith(
		vgimg.UseWH(side, side),
		vgimg.UseDPI(r.dpi),
		vgimg.UseBackgroundColor(color.Transparent),
	)
	p.Draw(draw.New(c))
	return c, nil
}

// Normalize scales the finite values of m linearly onto [0, 1]. Non-finite
// values stay NaN. A grid with a single finite value maps it to 0.
func Normalize(m mat.Matrix) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, cols, nil)

	finite := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := m.At(i, j); !math.IsNaN(v) && !math.IsInf(v, 0) {
				finite = append(finite, v)
			}
		}
	}

	var lo, span float64
	if len(finite) > 0 {
		lo = floats.Min(finite)
		span = floats.Max(finite) - lo
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			switch {
			case math.IsNaN(v) || math.IsInf(v, 0):
				out.Set(i, j, math.NaN())
			case span == 0:
				out.Set(i, j, 0)
			default:
				out.Set(i, j, (v-lo)/span)
			}
		}
	}
	return out
}

// ToImage converts a normalized grid to grey pixels, row 0 at the top.
// NaN elements become fully transparent.
func ToImage(norm mat.Matrix) *image.NRGBA {
	rows, cols := norm.Dims()
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := norm.At(y, x)
			if math.IsNaN(v) {
				img.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			g := Level(v)
			img.SetNRGBA(x, y, color.NRGBA{R: g, G: g, B: g, A: 255})
		}
	}
	return img
}

// ToGray16 converts a normalized grid to a 16-bit greyscale image.
// NaN elements become black.
func ToGray16(norm mat.Matrix) *image.Gray16 {
	rows, cols := norm.Dims()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := norm.At(y, x)
			if math.IsNaN(v) {
				continue
			}
			value := uint16(math.Max(0, math.Min(65535, math.Round(v*65535))))
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img
}

// Level maps a normalized value to an 8-bit grey level
func Level(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v*255))))
}
