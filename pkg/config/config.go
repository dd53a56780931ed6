// Package config provides configuration loading and management for pds3proc.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"pds3proc/pkg/artifact"
	"pds3proc/pkg/calibration"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Input and output trees
	Paths struct {
		// InputDir is the root of the downloaded revolution directories
		InputDir string `yaml:"inputDir"`

		// OutputDir receives the mirrored artifact tree
		OutputDir string `yaml:"outputDir"`
	} `yaml:"paths"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many images are processed concurrently
		NumCores int `yaml:"numCores"`

		// ImageExtension selects the source products
		ImageExtension string `yaml:"imageExtension"`

		// LatitudeBinIndex is the file name position holding the latitude bin
		LatitudeBinIndex int `yaml:"latitudeBinIndex"`
	} `yaml:"processing"`

	// Calibration frame layout
	Calibration struct {
		Dir        string `yaml:"dir"`
		DarkPrefix string `yaml:"darkPrefix"`
		FlatPrefix string `yaml:"flatPrefix"`
	} `yaml:"calibration"`

	// Output parameters
	Output struct {
		// CanvasPixels is the side of the square raster
		CanvasPixels int `yaml:"canvasPixels"`

		// DPI converts the canvas size for rendering
		DPI int `yaml:"dpi"`

		WriteStats     bool `yaml:"writeStats"`
		WriteHistogram bool `yaml:"writeHistogram"`
		WriteFITS      bool `yaml:"writeFITS"`
		WriteTIFF      bool `yaml:"writeTIFF"`
	} `yaml:"output"`

	// Logging parameters
	Logging struct {
		// Level is one of debug, info, warn, error
		Level string `yaml:"level"`

		// Format is text or json
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Paths.InputDir = "downloaded_files"
	cfg.Paths.OutputDir = "output/grayscale_images"

	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.ImageExtension = ".img"
	cfg.Processing.LatitudeBinIndex = calibration.DefaultBinIndex

	cal := calibration.DefaultOptions()
	cfg.Calibration.Dir = cal.Dir
	cfg.Calibration.DarkPrefix = cal.DarkPrefix
	cfg.Calibration.FlatPrefix = cal.FlatPrefix

	out := artifact.DefaultOptions()
	cfg.Output.CanvasPixels = out.CanvasPixels
	cfg.Output.DPI = out.DPI

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	return cfg
}

// Validate checks that the configuration can drive a run
func (c *Config) Validate() error {
	if c.Processing.NumCores < 1 {
		return fmt.Errorf("processing.numCores must be at least 1, got %d", c.Processing.NumCores)
	}
	if c.Processing.LatitudeBinIndex < 0 {
		return fmt.Errorf("processing.latitudeBinIndex must not be negative, got %d", c.Processing.LatitudeBinIndex)
	}
	if c.Processing.ImageExtension == "" {
		return fmt.Errorf("processing.imageExtension must be set")
	}
	if c.Calibration.Dir == "" || c.Calibration.DarkPrefix == "" || c.Calibration.FlatPrefix == "" {
		return fmt.Errorf("calibration dir and prefixes must be set")
	}
	if c.Calibration.DarkPrefix == c.Calibration.FlatPrefix {
		return fmt.Errorf("calibration prefixes must differ, both are %q", c.Calibration.DarkPrefix)
	}
	if c.Output.CanvasPixels < 1 || c.Output.DPI < 1 {
		return fmt.Errorf("output.canvasPixels and output.dpi must be positive")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// CalibrationOptions returns the calibration layout
func (c *Config) CalibrationOptions() calibration.Options {
	return calibration.Options{
		Dir:        c.Calibration.Dir,
		DarkPrefix: c.Calibration.DarkPrefix,
		FlatPrefix: c.Calibration.FlatPrefix,
	}
}

// ArtifactOptions returns the artifact selection
func (c *Config) ArtifactOptions() artifact.Options {
	return artifact.Options{
		CanvasPixels: c.Output.CanvasPixels,
		DPI:          c.Output.DPI,
		Stats:        c.Output.WriteStats,
		Histogram:    c.Output.WriteHistogram,
		FITS:         c.Output.WriteFITS,
		TIFF:         c.Output.WriteTIFF,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
