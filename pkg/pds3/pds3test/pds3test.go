// Package pds3test builds synthetic PDS3 products for tests.
package pds3test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// Product describes a synthetic PDS3 file
type Product struct {
	Width        int
	Height       int
	SampleBits   int
	RecordBytes  int
	LabelRecords int

	// SampleType is written as SAMPLE_TYPE when set and selects the byte order
	SampleType string

	// Extra label pairs written after the required keys
	Extra [][2]string

	// Samples in row-major order; encoded with SampleBits
	Samples []float64
}

// Pairs returns the label pairs in the order they are written
func (p Product) Pairs() [][2]string {
	pairs := [][2]string{
		{"RECORD_BYTES", fmt.Sprint(p.RecordBytes)},
		{"LABEL_RECORDS", fmt.Sprint(p.LabelRecords)},
		{"LINES", fmt.Sprint(p.Height)},
		{"LINE_SAMPLES", fmt.Sprint(p.Width)},
		{"SAMPLE_BITS", fmt.Sprint(p.SampleBits)},
	}
	if p.SampleType != "" {
		pairs = append(pairs, [2]string{"SAMPLE_TYPE", p.SampleType})
	}
	return append(pairs, p.Extra...)
}

// Bytes renders the product. When the label fits in RecordBytes*LabelRecords
// it is space padded to that size; otherwise the label is followed by that
// many bytes of padding.
func (p Product) Bytes() []byte {
	var label bytes.Buffer
	for _, kv := range p.Pairs() {
		fmt.Fprintf(&label, "%s = %s\r\n", kv[0], kv[1])
	}
	label.WriteString("END")

	region := p.RecordBytes * p.LabelRecords
	var out bytes.Buffer
	out.Write(label.Bytes())
	if label.Len() <= region {
		out.Write(bytes.Repeat([]byte{' '}, region-label.Len()))
	} else {
		out.Write(bytes.Repeat([]byte{' '}, region))
	}
	out.Write(Encode(p.Samples, p.SampleBits, p.order()))
	return out.Bytes()
}

func (p Product) order() binary.AppendByteOrder {
	switch p.SampleType {
	case "MSB_UNSIGNED_INTEGER", "MSB_INTEGER", "IEEE_REAL":
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// WriteFile writes the product to path, creating parent directories
func (p Product) WriteFile(t testing.TB, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, p.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// Encode packs samples with the given width. Unsupported widths are
// written as one byte per sample.
func Encode(samples []float64, bits int, order binary.AppendByteOrder) []byte {
	var buf []byte
	for _, v := range samples {
		switch bits {
		case 16:
			buf = order.AppendUint16(buf, uint16(v))
		case 32:
			buf = order.AppendUint32(buf, math.Float32bits(float32(v)))
		default:
			buf = append(buf, uint8(v))
		}
	}
	return buf
}

// Ramp returns n samples counting up from start
func Ramp(n int, start float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

// Fill returns n copies of v
func Fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Frame is a 4x4 8-bit product with the minimal five-key label
func Frame(samples []float64) Product {
	return Product{
		Width:        4,
		Height:       4,
		SampleBits:   8,
		RecordBytes:  4,
		LabelRecords: 1,
		Samples:      samples,
	}
}
