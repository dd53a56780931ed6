// Package pipeline drives the decode-and-correct run over a directory tree
// of PDS3 products.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pds3proc/internal/models"
	"pds3proc/pkg/artifact"
	"pds3proc/pkg/calibration"
	"pds3proc/pkg/pds3"
)

// Params holds the run configuration
type Params struct {
	// InputDir is walked recursively for source products
	InputDir string

	// OutputDir receives artifacts under the same relative directories
	OutputDir string

	// NumCores is the number of images processed concurrently.
	// 1 processes files strictly one after another.
	NumCores int

	// ImageExtension selects source products, e.g. ".img"
	ImageExtension string

	// Bin derives the latitude bin token from an image file name
	Bin calibration.BinFunc

	// Calibration describes the calibration directory layout
	Calibration calibration.Options

	// Artifacts selects the outputs written per image
	Artifacts artifact.Options
}

// DefaultParams returns parameters for the standard layout
func DefaultParams(inputDir, outputDir string) *Params {
	return &Params{
		InputDir:       inputDir,
		OutputDir:      outputDir,
		NumCores:       1,
		ImageExtension: ".img",
		Bin:            calibration.IndexBin(calibration.DefaultBinIndex),
		Calibration:    calibration.DefaultOptions(),
		Artifacts:      artifact.DefaultOptions(),
	}
}

// job is one source image with the calibration candidates of its revolution
type job struct {
	path string
	set  models.CalibrationSet
}

// Processor walks an input tree, pairs images with calibration frames and
// writes the corrected artifacts
type Processor struct {
	params  *Params
	writer  *artifact.Writer
	logger  *slog.Logger
	onEvent EventFunc
}

// NewProcessor creates a processor from a copy of params, so later changes
// to params do not affect it. A nil logger uses slog.Default.
func NewProcessor(params *Params, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	cp := *params
	if cp.NumCores < 1 {
		cp.NumCores = 1
	}
	if cp.Bin == nil {
		cp.Bin = calibration.IndexBin(calibration.DefaultBinIndex)
	}
	return &Processor{
		params: &cp,
		writer: artifact.NewWriter(params.Artifacts),
		logger: logger,
	}
}

// SetEventCallback registers fn to receive one Event per processed image and
// per skipped directory. Events are delivered from a single goroutine.
func (p *Processor) SetEventCallback(fn EventFunc) {
	p.onEvent = fn
}

// Run processes every image under InputDir. Per-image failures are reported
// in the summary and do not stop the run; the returned error is non-nil only
// when the walk itself fails or ctx is cancelled.
func (p *Processor) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	dirs, err := p.scan()
	if err != nil {
		return summary, err
	}

	var jobs []job
	for _, d := range dirs {
		rev := filepath.Dir(d.dir)
		set, err := p.params.Calibration.Locate(rev)
		if err != nil {
			for _, img := range d.images {
				p.record(&summary, Event{Kind: EventFailed, Path: img, Err: err})
			}
			continue
		}
		if set.Empty() {
			p.record(&summary, Event{Kind: EventSkipped, Path: d.dir, Images: len(d.images)})
			continue
		}
		p.logger.Debug("calibration candidates",
			"dir", d.dir, "dark", len(set.Dark), "flat", len(set.Flat))
		for _, img := range d.images {
			jobs = append(jobs, job{path: img, set: set})
		}
	}

	p.logger.Info("starting run",
		"input", p.params.InputDir, "output", p.params.OutputDir,
		"images", len(jobs), "workers", p.params.NumCores)

	for ev := range p.dispatch(ctx, jobs) {
		p.record(&summary, ev)
	}
	return summary, ctx.Err()
}

// dispatch fans jobs out to NumCores workers and returns their events
func (p *Processor) dispatch(ctx context.Context, jobs []job) <-chan Event {
	queue := make(chan job)
	events := make(chan Event)

	var wg sync.WaitGroup
	for i := 0; i < p.params.NumCores; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				start := time.Now()
				outputs, err := p.ProcessFile(ctx, j.path, j.set)
				ev := Event{Kind: EventProcessed, Path: j.path, Outputs: outputs, Elapsed: time.Since(start)}
				if err != nil {
					ev.Kind, ev.Err = EventFailed, err
				}
				events <- ev
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, j := range jobs {
			select {
			case queue <- j:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(events)
	}()

	return events
}

// ProcessFile selects the calibration pair for imgPath from set, decodes
// the image and both frames, corrects the image and writes its artifacts
// into the mirrored output directory. It returns the artifact paths.
func (p *Processor) ProcessFile(ctx context.Context, imgPath string, set models.CalibrationSet) ([]string, error) {
	token, err := p.params.Bin(filepath.Base(imgPath))
	if err != nil {
		return nil, err
	}
	darkPath, err := p.params.Calibration.Select(set.Dark, token)
	if err != nil {
		return nil, fmt.Errorf("select dark frame: %w", err)
	}
	flatPath, err := p.params.Calibration.Select(set.Flat, token)
	if err != nil {
		return nil, fmt.Errorf("select flat frame: %w", err)
	}

	img, err := pds3.ReadImage(imgPath)
	if err != nil {
		return nil, err
	}
	dark, err := pds3.ReadImage(darkPath)
	if err != nil {
		return nil, fmt.Errorf("decode dark frame %s: %w", darkPath, err)
	}
	flat, err := pds3.ReadImage(flatPath)
	if err != nil {
		return nil, fmt.Errorf("decode flat frame %s: %w", flatPath, err)
	}

	corrected, err := calibration.Correct(img.Data, dark.Data, flat.Data)
	if err != nil {
		return nil, err
	}

	if p.logger.Enabled(ctx, slog.LevelDebug) {
		if s, err := artifact.Summarize(corrected); err == nil {
			p.logger.Debug("corrected image",
				"path", imgPath, "bin", token, "dark", darkPath, "flat", flatPath,
				"min", s.Min, "max", s.Max, "mean", s.Mean, "non_finite", s.NonFinite)
		}
	}

	outDir, err := p.outputDir(imgPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return p.writer.WriteAll(outDir, img, corrected)
}

// outputDir mirrors the image's directory relative to InputDir under OutputDir
func (p *Processor) outputDir(imgPath string) (string, error) {
	rel, err := filepath.Rel(p.params.InputDir, filepath.Dir(imgPath))
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", imgPath, err)
	}
	return filepath.Join(p.params.OutputDir, rel), nil
}

// imageDir is a directory of the input tree with its source images in
// walk order
type imageDir struct {
	dir    string
	images []string
}

// scan walks InputDir and groups candidate images by directory. Unreadable
// subdirectories are logged and skipped.
func (p *Processor) scan() ([]imageDir, error) {
	var (
		dirs  []imageDir
		index = make(map[string]int)
	)
	root := p.params.InputDir

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			p.logger.Warn("cannot read directory", "path", path, "err", err)
			return nil
		}
		if d.IsDir() || !p.isImage(d.Name()) {
			return nil
		}
		dir := filepath.Dir(path)
		i, ok := index[dir]
		if !ok {
			i = len(dirs)
			index[dir] = i
			dirs = append(dirs, imageDir{dir: dir})
		}
		dirs[i].images = append(dirs[i].images, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return dirs, nil
}

func (p *Processor) isImage(name string) bool {
	return strings.HasSuffix(name, p.params.ImageExtension) && !p.params.Calibration.IsCalibration(name)
}

// record logs ev, adds it to the summary and forwards it to the callback
func (p *Processor) record(s *Summary, ev Event) {
	switch ev.Kind {
	case EventProcessed:
		s.Processed++
		p.logger.Info("processed image",
			"path", ev.Path, "artifacts", len(ev.Outputs), "elapsed", ev.Elapsed)
	case EventFailed:
		s.Failed++
		s.Failures = append(s.Failures, Failure{Path: ev.Path, Err: ev.Err})
		p.logger.Error("image failed", "path", ev.Path, "err", ev.Err, "cause", Cause(ev.Err))
	case EventSkipped:
		s.SkippedDirs++
		p.logger.Warn("no calibration frames, skipping directory",
			"dir", ev.Path, "images", ev.Images)
	}
	if p.onEvent != nil {
		p.onEvent(ev)
	}
}

// Cause names the failure class of a per-image error
func Cause(err error) string {
	var (
		missing  *pds3.MissingMetadataError
		width    *pds3.UnsupportedSampleWidthError
		dims     *pds3.DimensionMismatchError
		notFound *calibration.CalibrationNotFoundError
		mismatch *calibration.ShapeMismatchError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, pds3.ErrFormat):
		return "format"
	case errors.As(err, &missing):
		return "missing_metadata"
	case errors.As(err, &width):
		return "unsupported_sample_width"
	case errors.As(err, &dims):
		return "dimension_mismatch"
	case errors.As(err, &notFound):
		return "calibration_not_found"
	case errors.As(err, &mismatch):
		return "shape_mismatch"
	case errors.Is(err, calibration.ErrShortName):
		return "latitude_bin"
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return "io"
	}
	return "other"
}
