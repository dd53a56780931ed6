package calibration

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultBinIndex is the position of the latitude bin in an image file name
const DefaultBinIndex = 6

// BinFunc derives the latitude bin token from an image file name
type BinFunc func(name string) (string, error)

// IndexBin returns a BinFunc reading the character at index of the base name
func IndexBin(index int) BinFunc {
	return func(name string) (string, error) {
		return LatitudeBin(name, index)
	}
}

// LatitudeBin returns the lower-cased character at index of the base name of name
func LatitudeBin(name string, index int) (string, error) {
	base := []rune(filepath.Base(name))
	if index < 0 || index >= len(base) {
		return "", fmt.Errorf("%w: %q has no character at index %d", ErrShortName, filepath.Base(name), index)
	}
	return strings.ToLower(string(base[index])), nil
}
