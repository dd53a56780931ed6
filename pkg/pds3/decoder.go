package pds3

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"pds3proc/internal/models"
)

// Layout is the raster geometry a label describes
type Layout struct {
	// Width is LINE_SAMPLES, Height is LINES
	Width  int
	Height int

	// RecordBytes * LabelRecords is the offset of the first sample
	RecordBytes  int
	LabelRecords int

	SampleBits int
	Kind       models.SampleKind
	Order      binary.ByteOrder
}

// Offset returns the size of the label region, RECORD_BYTES * LABEL_RECORDS
func (l Layout) Offset() int64 {
	return int64(l.RecordBytes) * int64(l.LabelRecords)
}

// DataOffset returns where the samples start given the position just past
// the sentinel. An attached label that fits inside its records is padded to
// Offset; a label longer than that is followed by Offset bytes of padding.
func (l Layout) DataOffset(labelEnd int64) int64 {
	if labelEnd > l.Offset() {
		return labelEnd + l.Offset()
	}
	return l.Offset()
}

// Samples returns the number of samples the raster holds
func (l Layout) Samples() int {
	return l.Width * l.Height
}

// LayoutOf extracts the raster layout from a parsed label
func LayoutOf(hdr *models.Header) (Layout, error) {
	var l Layout
	keys := []struct {
		name string
		dst  *int
	}{
		{KeyLineSamples, &l.Width},
		{KeyLines, &l.Height},
		{KeyRecordBytes, &l.RecordBytes},
		{KeySampleBits, &l.SampleBits},
		{KeyLabelRecords, &l.LabelRecords},
	}
	for _, k := range keys {
		if _, ok := hdr.Get(k.name); !ok {
			return l, &MissingMetadataError{Key: k.name}
		}
	}
	for _, k := range keys {
		raw, _ := hdr.Get(k.name)
		v, err := parseInt(raw)
		if err != nil {
			return l, &FormatError{Reason: fmt.Sprintf("%s value %q is not an integer", k.name, raw)}
		}
		*k.dst = v
	}

	kind, err := KindOf(l.SampleBits)
	if err != nil {
		return l, err
	}
	l.Kind = kind

	if l.Width <= 0 || l.Height <= 0 {
		return l, &FormatError{Reason: fmt.Sprintf("non-positive raster size %dx%d", l.Width, l.Height)}
	}
	if l.RecordBytes <= 0 || l.LabelRecords < 0 {
		return l, &FormatError{Reason: fmt.Sprintf("invalid label size %d records of %d bytes", l.LabelRecords, l.RecordBytes)}
	}
	if l.Width > math.MaxInt/l.Height || l.Samples() > math.MaxInt/l.Kind.Size() {
		return l, &FormatError{Reason: fmt.Sprintf("raster size %dx%d of %d-bit samples overflows", l.Width, l.Height, l.SampleBits)}
	}
	if l.LabelRecords > 0 && int64(l.RecordBytes) > math.MaxInt64/2/int64(l.LabelRecords) {
		return l, &FormatError{Reason: fmt.Sprintf("label size %d records of %d bytes overflows", l.LabelRecords, l.RecordBytes)}
	}

	sampleType, _ := hdr.Get(KeySampleType)
	l.Order = ByteOrder(sampleType)
	return l, nil
}

// KindOf maps SAMPLE_BITS to the sample element type
func KindOf(bits int) (models.SampleKind, error) {
	switch bits {
	case 8:
		return models.Uint8, nil
	case 16:
		return models.Uint16, nil
	case 32:
		return models.Float32, nil
	}
	return 0, &UnsupportedSampleWidthError{Bits: bits}
}

// ByteOrder returns the byte order implied by a SAMPLE_TYPE value.
// Unknown or empty types are little-endian.
func ByteOrder(sampleType string) binary.ByteOrder {
	t := strings.ToUpper(strings.Trim(sampleType, "\"' "))
	for _, prefix := range []string{"MSB_", "SUN_", "MAC_"} {
		if strings.HasPrefix(t, prefix) {
			return binary.BigEndian
		}
	}
	switch t {
	case "IEEE_REAL", "INTEGER", "UNSIGNED_INTEGER":
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// parseInt reads the leading integer of a label value, ignoring a trailing
// unit such as "1024 <BYTES>"
func parseInt(value string) (int, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(fields[0])
}

// ReadImage parses the label of path and decodes its samples
func ReadImage(path string) (*models.Image, error) {
	hdr, err := ReadHeader(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, hdr)
}

// Decode reads the samples of path as described by hdr
func Decode(path string, hdr *models.Header) (*models.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := DecodeReader(file, hdr)
	if err != nil {
		return nil, withPath(err, path)
	}
	img.Path = path
	return img, nil
}

// DecodeReader seeks r past the label region described by hdr and decodes
// the remaining bytes into a (LINES x LINE_SAMPLES) grid. r must hold the
// whole product, label included.
func DecodeReader(r io.ReadSeeker, hdr *models.Header) (*models.Image, error) {
	layout, err := LayoutOf(hdr)
	if err != nil {
		return nil, err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to label: %w", err)
	}
	label, err := ScanLabel(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(layout.DataOffset(int64(len(label))), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek past label: %w", err)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}

	data, err := DecodeSamples(raw, layout)
	if err != nil {
		return nil, err
	}

	return &models.Image{
		Header: hdr,
		Kind:   layout.Kind,
		Data:   mat.NewDense(layout.Height, layout.Width, data),
	}, nil
}

// DecodeSamples converts raw bytes into samples of the layout's element
// type. Trailing bytes that do not form a whole sample are ignored; the
// resulting count must equal Width*Height exactly.
func DecodeSamples(raw []byte, layout Layout) ([]float64, error) {
	size := layout.Kind.Size()
	count := len(raw) / size
	if count != layout.Samples() {
		return nil, &DimensionMismatchError{Expected: layout.Samples(), Actual: count}
	}

	order := layout.Order
	if order == nil {
		order = binary.LittleEndian
	}

	data := make([]float64, count)
	switch layout.Kind {
	case models.Uint8:
		for i := range data {
			data[i] = float64(raw[i])
		}
	case models.Uint16:
		for i := range data {
			data[i] = float64(order.Uint16(raw[i*2:]))
		}
	case models.Float32:
		for i := range data {
			data[i] = float64(math.Float32frombits(order.Uint32(raw[i*4:])))
		}
	}
	return data, nil
}
