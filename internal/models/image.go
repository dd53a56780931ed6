package models

import (
	"gonum.org/v1/gonum/mat"
)

// SampleKind is the numeric interpretation of the raw samples of a product
type SampleKind int

const (
	Uint8 SampleKind = iota
	Uint16
	Float32
)

// String returns the Go name of the element type
func (k SampleKind) String() string {
	switch k {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Float32:
		return "float32"
	}
	return "unknown"
}

// Size returns the width of one sample in bytes
func (k SampleKind) Size() int {
	switch k {
	case Uint8:
		return 1
	case Uint16:
		return 2
	case Float32:
		return 4
	}
	return 0
}

// Image represents a decoded PDS3 raster with its label
type Image struct {
	// Path is the file the image was read from
	Path string

	// Header is the parsed label
	Header *Header

	// Kind is the on-disk sample type
	Kind SampleKind

	// Data holds the samples as a (lines x line samples) matrix, row-major.
	// Every supported sample type is exactly representable in float64.
	Data *mat.Dense
}

// Width returns the number of samples per line
func (img *Image) Width() int {
	_, c := img.Data.Dims()
	return c
}

// Height returns the number of lines
func (img *Image) Height() int {
	r, _ := img.Data.Dims()
	return r
}

// CalibrationSet holds the calibration candidates found for a revolution
// directory, in discovery order
type CalibrationSet struct {
	// Dark lists dark-current frames
	Dark []string

	// Flat lists flat-field frames
	Flat []string
}

// Empty reports whether either sequence has no candidates, in which case
// images of the directory cannot be corrected
func (s CalibrationSet) Empty() bool {
	return len(s.Dark) == 0 || len(s.Flat) == 0
}
