package calibration

import (
	"errors"
	"fmt"
)

// ErrShortName is returned when a file name is too short to hold a latitude bin
var ErrShortName = errors.New("calibration: file name too short for latitude bin")

// CalibrationNotFoundError reports that no candidate matched a latitude bin
type CalibrationNotFoundError struct {
	Token string
}

func (e *CalibrationNotFoundError) Error() string {
	return fmt.Sprintf("calibration: no calibration file found for latitude bin %q", e.Token)
}

// ShapeMismatchError reports a calibration frame whose shape differs from the image
type ShapeMismatchError struct {
	// Frame names the offending frame, "dark" or "flat"
	Frame string

	ImageRows, ImageCols int
	FrameRows, FrameCols int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("calibration: %s frame is %dx%d, image is %dx%d",
		e.Frame, e.FrameRows, e.FrameCols, e.ImageRows, e.ImageCols)
}
