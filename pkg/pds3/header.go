package pds3

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"pds3proc/internal/models"
)

// Sentinel terminates the label text
const Sentinel = "END"

// scanChunk is the read size used while looking for the sentinel
const scanChunk = 512

// ReadHeader opens path and parses its label
func ReadHeader(path string) (*models.Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	hdr, err := ParseHeader(file)
	if err != nil {
		return nil, withPath(err, path)
	}
	return hdr, nil
}

// ParseHeader reads r from its current position up to the first occurrence
// of Sentinel and returns the KEY = VALUE pairs found before it.
func ParseHeader(r io.Reader) (*models.Header, error) {
	label, err := ScanLabel(r)
	if err != nil {
		return nil, err
	}
	return ParseLabel(decodeLabel(label)), nil
}

// ScanLabel returns the bytes of r up to and including the first Sentinel.
// Reaching the end of r first is a format error.
func ScanLabel(r io.Reader) ([]byte, error) {
	var (
		buf   []byte
		chunk = make([]byte, scanChunk)
		token = []byte(Sentinel)
	)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			// the sentinel may straddle the previous chunk
			from := len(buf) - (len(token) - 1)
			if from < 0 {
				from = 0
			}
			buf = append(buf, chunk[:n]...)
			if i := bytes.Index(buf[from:], token); i >= 0 {
				return buf[:from+i+len(token)], nil
			}
		}
		if err == io.EOF {
			return nil, &FormatError{
				Reason: fmt.Sprintf("label sentinel %s not found before end of file (%d bytes read)", Sentinel, len(buf)),
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

// ParseLabel splits label text into lines and records every line holding
// an '=' as a trimmed key/value pair, split on the first '='.
func ParseLabel(text string) *models.Header {
	hdr := models.NewHeader()
	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		hdr.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return hdr
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// decodeLabel converts label bytes to text, dropping byte sequences that
// are not valid UTF-8. Labels may carry binary padding before the sentinel.
func decodeLabel(label []byte) string {
	drop := runes.Remove(runes.Predicate(func(r rune) bool {
		return r == utf8.RuneError
	}))
	text, _, err := transform.Bytes(drop, label)
	if err != nil {
		// the transformer only fails on short buffers, which Bytes grows
		return strings.ToValidUTF8(string(label), "")
	}
	return string(text)
}

// withPath fills in the file path of a FormatError produced by a reader
func withPath(err error, path string) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Path == "" {
		fe.Path = path
	}
	return err
}
