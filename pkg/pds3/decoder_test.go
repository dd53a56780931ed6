package pds3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"pds3proc/internal/models"
	"pds3proc/pkg/pds3/pds3test"
)

// TestDecodeRoundTrip checks that element (r, c) equals encoded sample r*width+c
// for every supported sample width
func TestDecodeRoundTrip(t *testing.T) {
	width, height := 5, 3
	cases := []struct {
		bits    int
		kind    models.SampleKind
		samples []float64
	}{
		{8, models.Uint8, pds3test.Ramp(width*height, 200)},
		{16, models.Uint16, pds3test.Ramp(width*height, 65520)},
		{32, models.Float32, pds3test.Ramp(width*height, -7.25)},
	}

	for _, c := range cases {
		p := pds3test.Product{
			Width:        width,
			Height:       height,
			SampleBits:   c.bits,
			RecordBytes:  128,
			LabelRecords: 2,
			Samples:      c.samples,
		}
		img, err := DecodeReader(bytes.NewReader(p.Bytes()), ParseLabel(labelText(p)))
		if err != nil {
			t.Fatalf("%d-bit: failed to decode: %v", c.bits, err)
		}
		if img.Kind != c.kind {
			t.Errorf("%d-bit: expected kind %v, got %v", c.bits, c.kind, img.Kind)
		}
		if img.Width() != width || img.Height() != height {
			t.Fatalf("%d-bit: expected %dx%d grid, got %dx%d", c.bits, width, height, img.Width(), img.Height())
		}
		for r := 0; r < height; r++ {
			for col := 0; col < width; col++ {
				want := c.samples[r*width+col]
				if got := img.Data.At(r, col); got != want {
					t.Errorf("%d-bit: expected (%d,%d)=%v, got %v", c.bits, r, col, want, got)
				}
			}
		}
	}
}

func labelText(p pds3test.Product) string {
	var buf bytes.Buffer
	for _, kv := range p.Pairs() {
		buf.WriteString(kv[0] + " = " + kv[1] + "\n")
	}
	return buf.String()
}

// TestDecodeDimensionMismatch checks both sides of the sample count boundary
func TestDecodeDimensionMismatch(t *testing.T) {
	for _, bits := range []int{8, 16, 32} {
		for _, n := range []int{15, 17} {
			p := pds3test.Frame(pds3test.Ramp(n, 1))
			p.SampleBits = bits
			_, err := DecodeReader(bytes.NewReader(p.Bytes()), ParseLabel(labelText(p)))

			var dm *DimensionMismatchError
			if !errors.As(err, &dm) {
				t.Fatalf("%d-bit, %d samples: expected DimensionMismatchError, got %v", bits, n, err)
			}
			if dm.Expected != 16 || dm.Actual != n {
				t.Errorf("%d-bit: expected 16 vs %d, got %d vs %d", bits, n, dm.Expected, dm.Actual)
			}
		}
	}
}

// TestDecodeIgnoresPartialSample checks that a trailing partial sample is dropped
func TestDecodeIgnoresPartialSample(t *testing.T) {
	p := pds3test.Frame(pds3test.Ramp(16, 0))
	p.SampleBits = 16
	data := append(p.Bytes(), 0x7f)

	img, err := DecodeReader(bytes.NewReader(data), ParseLabel(labelText(p)))
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if got := img.Data.At(3, 3); got != 15 {
		t.Errorf("Expected last sample 15, got %v", got)
	}
}

// TestDecodeUnsupportedWidth checks that only 8, 16 and 32 bits are accepted
func TestDecodeUnsupportedWidth(t *testing.T) {
	for _, bits := range []int{1, 12, 24, 64} {
		p := pds3test.Frame(pds3test.Ramp(16, 0))
		p.SampleBits = bits
		_, err := DecodeReader(bytes.NewReader(p.Bytes()), ParseLabel(labelText(p)))

		var uw *UnsupportedSampleWidthError
		if !errors.As(err, &uw) {
			t.Fatalf("%d bits: expected UnsupportedSampleWidthError, got %v", bits, err)
		}
		if uw.Bits != bits {
			t.Errorf("Expected bits %d in error, got %d", bits, uw.Bits)
		}
	}
}

// TestLayoutMissingKey checks that each required key is reported by name
func TestLayoutMissingKey(t *testing.T) {
	required := []string{KeyLineSamples, KeyLines, KeyRecordBytes, KeySampleBits, KeyLabelRecords}
	for _, missing := range required {
		hdr := models.NewHeader()
		for _, k := range required {
			if k != missing {
				hdr.Set(k, "8")
			}
		}
		_, err := LayoutOf(hdr)

		var mm *MissingMetadataError
		if !errors.As(err, &mm) {
			t.Fatalf("Expected MissingMetadataError for %s, got %v", missing, err)
		}
		if mm.Key != missing {
			t.Errorf("Expected missing key %s, got %s", missing, mm.Key)
		}
	}
}

// TestLayoutValues covers unit suffixes, bad integers and sizes
func TestLayoutValues(t *testing.T) {
	hdr := ParseLabel("RECORD_BYTES = 1024 <BYTES>\nLABEL_RECORDS = 3\nLINES = 10\nLINE_SAMPLES = 20\nSAMPLE_BITS = 16\nSAMPLE_TYPE = MSB_UNSIGNED_INTEGER\n")
	l, err := LayoutOf(hdr)
	if err != nil {
		t.Fatalf("Failed to read layout: %v", err)
	}
	if l.Offset() != 3072 {
		t.Errorf("Expected offset 3072, got %d", l.Offset())
	}
	if l.Samples() != 200 {
		t.Errorf("Expected 200 samples, got %d", l.Samples())
	}
	if l.Order != binary.BigEndian {
		t.Errorf("Expected big-endian order, got %v", l.Order)
	}

	hdr.Set(KeyLines, "many")
	if _, err := LayoutOf(hdr); !errors.Is(err, ErrFormat) {
		t.Errorf("Expected ErrFormat for non-integer LINES, got %v", err)
	}

	hdr.Set(KeyLines, "0")
	if _, err := LayoutOf(hdr); !errors.Is(err, ErrFormat) {
		t.Errorf("Expected ErrFormat for zero LINES, got %v", err)
	}
}

// TestLayoutOverflow rejects sizes whose byte count does not fit an int
func TestLayoutOverflow(t *testing.T) {
	cases := map[string]string{
		"wrapping product":  "RECORD_BYTES = 4\nLABEL_RECORDS = 1\nLINES = 4\nLINE_SAMPLES = 4611686018427387905\nSAMPLE_BITS = 8\n",
		"huge float raster": "RECORD_BYTES = 4\nLABEL_RECORDS = 1\nLINES = 2\nLINE_SAMPLES = 2305843009213693952\nSAMPLE_BITS = 32\n",
		"huge label":        "RECORD_BYTES = 4611686018427387904\nLABEL_RECORDS = 4\nLINES = 2\nLINE_SAMPLES = 2\nSAMPLE_BITS = 8\n",
	}
	for name, label := range cases {
		if _, err := LayoutOf(ParseLabel(label)); !errors.Is(err, ErrFormat) {
			t.Errorf("%s: expected ErrFormat, got %v", name, err)
		}
	}
}

// TestReadImageOverflowingLabel fails cleanly on a product whose declared
// raster wraps to the number of bytes present
func TestReadImageOverflowingLabel(t *testing.T) {
	data := []byte("RECORD_BYTES = 4\r\nLABEL_RECORDS = 1\r\nLINES = 4\r\nLINE_SAMPLES = 4611686018427387905\r\nSAMPLE_BITS = 8\r\nEND")
	data = append(data, "    "...)
	data = append(data, 1, 2, 3, 4)
	path := filepath.Join(t.TempDir(), "wrap.img")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	img, err := ReadImage(path)
	if err == nil {
		t.Fatalf("Expected error, got image %dx%d", img.Width(), img.Height())
	}
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Path != path {
		t.Errorf("Expected FormatError for %s, got %v", path, err)
	}
}

// TestDecodeReaderLabelInsideRecords decodes a hand-assembled product whose
// label is padded to its records, so samples start exactly at the offset
func TestDecodeReaderLabelInsideRecords(t *testing.T) {
	label := "RECORD_BYTES = 64\r\nLABEL_RECORDS = 2\r\nLINES = 2\r\nLINE_SAMPLES = 3\r\nSAMPLE_BITS = 8\r\nEND"
	data := make([]byte, 128, 134)
	copy(data, label)
	for i := len(label); i < len(data); i++ {
		data[i] = ' '
	}
	data = append(data, 9, 8, 7, 6, 5, 4)

	r := bytes.NewReader(data)
	hdr, err := ParseHeader(r)
	if err != nil {
		t.Fatalf("Failed to parse header: %v", err)
	}
	img, err := DecodeReader(r, hdr)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	for i, want := range []float64{9, 8, 7, 6, 5, 4} {
		if got := img.Data.At(i/3, i%3); got != want {
			t.Errorf("Expected sample %d = %v, got %v", i, want, got)
		}
	}
}

// TestDataOffset covers both label layouts
func TestDataOffset(t *testing.T) {
	l := Layout{RecordBytes: 100, LabelRecords: 2}
	if got := l.DataOffset(150); got != 200 {
		t.Errorf("Expected padded label to start samples at 200, got %d", got)
	}
	if got := l.DataOffset(200); got != 200 {
		t.Errorf("Expected exact-fit label to start samples at 200, got %d", got)
	}
	if got := l.DataOffset(250); got != 450 {
		t.Errorf("Expected long label to start samples at 450, got %d", got)
	}
}

// TestByteOrder maps SAMPLE_TYPE values
func TestByteOrder(t *testing.T) {
	cases := map[string]binary.ByteOrder{
		"":                     binary.LittleEndian,
		"LSB_UNSIGNED_INTEGER": binary.LittleEndian,
		"PC_REAL":              binary.LittleEndian,
		"MSB_INTEGER":          binary.BigEndian,
		"\"ieee_real\"":        binary.BigEndian,
		"SUN_REAL":             binary.BigEndian,
		"UNSIGNED_INTEGER":     binary.BigEndian,
	}
	for in, want := range cases {
		if got := ByteOrder(in); got != want {
			t.Errorf("ByteOrder(%q): expected %v, got %v", in, want, got)
		}
	}
}

// TestDecodeBigEndian decodes MSB samples
func TestDecodeBigEndian(t *testing.T) {
	p := pds3test.Frame([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 1000})
	p.SampleBits = 16
	p.SampleType = "MSB_UNSIGNED_INTEGER"
	path := p.WriteFile(t, filepath.Join(t.TempDir(), "msb.img"))

	img, err := ReadImage(path)
	if err != nil {
		t.Fatalf("Failed to read image: %v", err)
	}
	if got := img.Data.At(3, 3); got != 1000 {
		t.Errorf("Expected 1000, got %v", got)
	}
	if img.Path != path {
		t.Errorf("Expected path %s, got %s", path, img.Path)
	}
}

// TestReadImageFrame decodes the 4x4 8-bit frame with a label longer than
// its label records
func TestReadImageFrame(t *testing.T) {
	samples := pds3test.Ramp(16, 10)
	path := pds3test.Frame(samples).WriteFile(t, filepath.Join(t.TempDir(), "frame.img"))

	img, err := ReadImage(path)
	if err != nil {
		t.Fatalf("Failed to read image: %v", err)
	}
	if img.Header.Len() != 5 {
		t.Errorf("Expected 5 header keys, got %d", img.Header.Len())
	}
	for i, want := range samples {
		if got := img.Data.At(i/4, i%4); got != want {
			t.Errorf("Expected sample %d = %v, got %v", i, want, got)
		}
	}
}

// TestDecodeFloatSpecials keeps non-finite float samples intact
func TestDecodeFloatSpecials(t *testing.T) {
	raw := pds3test.Encode([]float64{math.Inf(1), math.NaN(), -0.5, 3}, 32, binary.LittleEndian)
	data, err := DecodeSamples(raw, Layout{Width: 2, Height: 2, Kind: models.Float32})
	if err != nil {
		t.Fatalf("Failed to decode samples: %v", err)
	}
	if !math.IsInf(data[0], 1) || !math.IsNaN(data[1]) || data[2] != -0.5 || data[3] != 3 {
		t.Errorf("Unexpected decoded values %v", data)
	}
}
