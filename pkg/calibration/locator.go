// Package calibration finds the dark-current and flat-field frames that belong
// to an image and applies them.
package calibration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pds3proc/internal/models"
)

// Options controls where calibration frames live and how they are named
type Options struct {
	// Dir is the calibration directory name inside a revolution directory
	Dir string

	// DarkPrefix and FlatPrefix classify files by the start of their name
	DarkPrefix string
	FlatPrefix string
}

// DefaultOptions returns the calib/bp*/ff* convention
func DefaultOptions() Options {
	return Options{
		Dir:        "calib",
		DarkPrefix: "bp",
		FlatPrefix: "ff",
	}
}

// Locate returns the dark-current and flat-field candidates found anywhere
// under revDir/<Dir>. A missing calibration directory yields an empty set
// and no error.
func (o Options) Locate(revDir string) (models.CalibrationSet, error) {
	var set models.CalibrationSet

	root := filepath.Join(revDir, o.Dir)
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return set, nil
		}
		return set, fmt.Errorf("stat calibration directory: %w", err)
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch name := d.Name(); {
		case o.DarkPrefix != "" && strings.HasPrefix(name, o.DarkPrefix):
			set.Dark = append(set.Dark, path)
		case o.FlatPrefix != "" && strings.HasPrefix(name, o.FlatPrefix):
			set.Flat = append(set.Flat, path)
		}
		return nil
	})
	if err != nil {
		return models.CalibrationSet{}, fmt.Errorf("walk calibration directory %s: %w", root, err)
	}
	return set, nil
}

// Select returns the first candidate whose descriptor contains token. The
// descriptor is the file name without its classification prefix and
// extension, so "bp_b.img" is matched on "_b".
func (o Options) Select(candidates []string, token string) (string, error) {
	for _, c := range candidates {
		if strings.Contains(o.descriptor(filepath.Base(c)), token) {
			return c, nil
		}
	}
	return "", &CalibrationNotFoundError{Token: token}
}

// IsCalibration reports whether a file name carries a calibration prefix
func (o Options) IsCalibration(name string) bool {
	return (o.DarkPrefix != "" && strings.HasPrefix(name, o.DarkPrefix)) ||
		(o.FlatPrefix != "" && strings.HasPrefix(name, o.FlatPrefix))
}

func (o Options) descriptor(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	for _, p := range []string{o.DarkPrefix, o.FlatPrefix} {
		if p != "" && strings.HasPrefix(name, p) {
			return name[len(p):]
		}
	}
	return name
}

// Locate finds calibration candidates with the default options
func Locate(revDir string) (models.CalibrationSet, error) {
	return DefaultOptions().Locate(revDir)
}

// Select picks a calibration candidate with the default options
func Select(candidates []string, token string) (string, error) {
	return DefaultOptions().Select(candidates, token)
}
