package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"pds3proc/pkg/artifact"
	"pds3proc/pkg/calibration"
	"pds3proc/pkg/config"
	"pds3proc/pkg/pds3"
	"pds3proc/pkg/pipeline"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "YAML configuration file (defaults are used when absent)")
	inputDir := flag.String("input", "", "Directory tree containing PDS3 image products")
	outputDir := flag.String("output", "", "Directory receiving the mirrored artifact tree")
	numCores := flag.Int("cores", 0, "Number of images processed concurrently (default: config or all CPUs)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "", "Log format: text or json")
	inspect := flag.String("inspect", "", "Print the label and statistics of a single product and exit")
	writeConfig := flag.String("write-config", "", "Write the default configuration to this file and exit")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *writeConfig)
		return
	}

	if *inspect != "" {
		if err := inspectProduct(*inspect); err != nil {
			log.Fatalf("Inspect failed: %v", err)
		}
		return
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	// Flags override the file
	if *inputDir != "" {
		cfg.Paths.InputDir = *inputDir
	}
	if *outputDir != "" {
		cfg.Paths.OutputDir = *outputDir
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}

	if *configPath == "" && *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Invalid logging configuration: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("PDS3 IMAGE DECODE AND CALIBRATION")
	fmt.Println("Dark subtraction and flat-field division per latitude bin")
	fmt.Println("================================")

	params := &pipeline.Params{
		InputDir:       cfg.Paths.InputDir,
		OutputDir:      cfg.Paths.OutputDir,
		NumCores:       cfg.Processing.NumCores,
		ImageExtension: cfg.Processing.ImageExtension,
		Bin:            calibration.IndexBin(cfg.Processing.LatitudeBinIndex),
		Calibration:    cfg.CalibrationOptions(),
		Artifacts:      cfg.ArtifactOptions(),
	}
	processor := pipeline.NewProcessor(params, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Processing %s with %d workers...\n", params.InputDir, params.NumCores)
	startTime := time.Now()
	summary, err := processor.Run(ctx)
	processingTime := time.Since(startTime)
	if err != nil {
		log.Fatalf("Run failed after %d images: %v", summary.Processed, err)
	}

	fmt.Printf("\nRun completed in %.2f seconds\n", processingTime.Seconds())
	fmt.Printf("Artifacts written to: %s\n\n", params.OutputDir)
	fmt.Printf("Processed images: %d\n", summary.Processed)
	fmt.Printf("Failed images:    %d\n", summary.Failed)
	fmt.Printf("Skipped dirs:     %d\n", summary.SkippedDirs)

	if len(summary.Failures) > 0 {
		fmt.Println("\nFailures:")
		for _, f := range summary.Failures {
			fmt.Printf("- %s [%s]: %v\n", f.Path, pipeline.Cause(f.Err), f.Err)
		}
	}
}

// newLogger builds the run logger writing to stderr
func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// inspectProduct prints the label of path in order followed by the layout
// and value statistics of its decoded samples
func inspectProduct(path string) error {
	img, err := pds3.ReadImage(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", filepath.Base(path))
	fmt.Println("Label:")
	img.Header.Each(func(key, value string) {
		fmt.Printf("  %-16s = %s\n", key, value)
	})

	fmt.Printf("\nSamples: %d x %d %s\n", img.Width(), img.Height(), img.Kind)
	s, err := artifact.Summarize(img.Data)
	if err != nil {
		return err
	}
	for _, row := range s.Rows() {
		fmt.Printf("  %-10s %s\n", row[0], row[1])
	}

	if token, err := calibration.LatitudeBin(filepath.Base(path), calibration.DefaultBinIndex); err == nil {
		fmt.Printf("\nLatitude bin: %s\n", token)
	}
	return nil
}
