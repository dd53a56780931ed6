package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies the defaults are valid
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to validate, got %v", err)
	}
	if cfg.Processing.LatitudeBinIndex != 6 {
		t.Errorf("Expected latitude bin index 6, got %d", cfg.Processing.LatitudeBinIndex)
	}
	if cfg.Calibration.Dir != "calib" || cfg.Calibration.DarkPrefix != "bp" || cfg.Calibration.FlatPrefix != "ff" {
		t.Errorf("Unexpected calibration defaults %+v", cfg.Calibration)
	}
	if cfg.Output.CanvasPixels != 128 || cfg.Output.DPI != 100 {
		t.Errorf("Expected 128 px at 100 dpi, got %d px at %d dpi", cfg.Output.CanvasPixels, cfg.Output.DPI)
	}
}

// TestLoadConfigMissing returns defaults for an absent file
func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults, got error %v", err)
	}
	if cfg.Processing.ImageExtension != ".img" {
		t.Errorf("Expected default extension, got %s", cfg.Processing.ImageExtension)
	}
}

// TestLoadConfigOverrides applies partial YAML over defaults
func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("processing:\n  numCores: 3\n  latitudeBinIndex: 4\noutput:\n  writeFITS: true\nlogging:\n  format: json\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Processing.NumCores != 3 || cfg.Processing.LatitudeBinIndex != 4 {
		t.Errorf("Expected overrides, got %+v", cfg.Processing)
	}
	if !cfg.Output.WriteFITS || cfg.Output.WriteTIFF {
		t.Errorf("Expected only FITS enabled, got %+v", cfg.Output)
	}
	if cfg.Calibration.Dir != "calib" {
		t.Errorf("Expected default calibration dir to survive, got %s", cfg.Calibration.Dir)
	}
	if !cfg.ArtifactOptions().FITS {
		t.Error("Expected FITS in artifact options")
	}

	if err := os.WriteFile(path, []byte("processing: [\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected parse error for malformed YAML")
	}
}

// TestSaveConfigRoundTrip writes the defaults and loads them back
func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Expected saved defaults to load unchanged, got %+v", cfg)
	}
}

// TestValidate rejects unusable settings
func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"cores":    func(c *Config) { c.Processing.NumCores = 0 },
		"index":    func(c *Config) { c.Processing.LatitudeBinIndex = -1 },
		"ext":      func(c *Config) { c.Processing.ImageExtension = "" },
		"prefixes": func(c *Config) { c.Calibration.FlatPrefix = c.Calibration.DarkPrefix },
		"canvas":   func(c *Config) { c.Output.CanvasPixels = 0 },
		"format":   func(c *Config) { c.Logging.Format = "xml" },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
