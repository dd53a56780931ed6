package pipeline

import (
	"time"
)

// EventKind classifies what happened to an image or directory
type EventKind int

const (
	// EventProcessed means all artifacts of an image were written
	EventProcessed EventKind = iota

	// EventFailed means an image was abandoned; Err holds the cause
	EventFailed

	// EventSkipped means a directory had no usable calibration frames and
	// none of its images were decoded
	EventSkipped
)

func (k EventKind) String() string {
	switch k {
	case EventProcessed:
		return "processed"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	}
	return "unknown"
}

// Event reports the outcome for one image, or for one skipped directory
type Event struct {
	Kind EventKind

	// Path is the image path, or the directory path for EventSkipped
	Path string

	// Outputs lists the artifacts written for a processed image
	Outputs []string

	// Images is the number of images in a skipped directory
	Images int

	Err     error
	Elapsed time.Duration
}

// EventFunc receives run events
type EventFunc func(Event)

// Failure is a per-image error kept in the run summary
type Failure struct {
	Path string
	Err  error
}

// Summary totals a run
type Summary struct {
	Processed   int
	Failed      int
	SkippedDirs int
	Failures    []Failure
}
