package pds3

import (
	"errors"
	"fmt"
)

// Required label keys
const (
	KeyLineSamples  = "LINE_SAMPLES"
	KeyLines        = "LINES"
	KeyRecordBytes  = "RECORD_BYTES"
	KeySampleBits   = "SAMPLE_BITS"
	KeyLabelRecords = "LABEL_RECORDS"
	KeySampleType   = "SAMPLE_TYPE"
)

// ErrFormat is returned when a file is not a readable PDS3 product
var ErrFormat = errors.New("pds3: invalid format")

// FormatError describes why a file could not be read as PDS3
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return "pds3: " + e.Reason
	}
	return fmt.Sprintf("pds3: %s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// MissingMetadataError reports a required label key that is absent
type MissingMetadataError struct {
	Key string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("pds3: missing label key %s", e.Key)
}

// UnsupportedSampleWidthError reports a SAMPLE_BITS value with no element type
type UnsupportedSampleWidthError struct {
	Bits int
}

func (e *UnsupportedSampleWidthError) Error() string {
	return fmt.Sprintf("pds3: unsupported sample bits %d", e.Bits)
}

// DimensionMismatchError reports a sample count that does not fill the raster
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("pds3: data size %d does not match expected %d samples", e.Actual, e.Expected)
}
