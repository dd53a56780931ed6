// Package pds3 reads planetary images stored in the PDS3 layout: a text
// label of KEY = VALUE lines terminated by END, label padding filling
// RECORD_BYTES * LABEL_RECORDS bytes, then LINES * LINE_SAMPLES raw samples.
//
// # Reading
//
// The label and the samples are read separately so callers that only need
// the metadata never touch the raster:
//
//	hdr, err := pds3.ReadHeader("frame.img")
//	img, err := pds3.Decode("frame.img", hdr)
//
// or in one step with [ReadImage].
//
// # Sample Types
//
//	SAMPLE_BITS | Go type
//	------------|---------
//	8           | uint8
//	16          | uint16
//	32          | float32
//
// Samples are little-endian unless SAMPLE_TYPE names a big-endian
// representation (MSB_*, SUN_*, MAC_*, IEEE_REAL).
package pds3
