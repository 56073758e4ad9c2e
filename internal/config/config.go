// Package config loads hdrive's YAML configuration and JSON5 design files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/hdrive/internal/params"
)

// Environment overrides, applied after the file.
const (
	EnvDataDir   = "HDRIVE_DATA_DIR"
	EnvLogLevel  = "HDRIVE_LOG_LEVEL"
	EnvLogFile   = "HDRIVE_LOG_FILE"
	EnvExportDir = "HDRIVE_EXPORT_DIR"
)

// ValidLogLevels lists the accepted logging.level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Config is the full configuration.
type Config struct {
	Design  DesignConfig  `yaml:"design" json:"design"`
	Profile ProfileConfig `yaml:"profile" json:"profile"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Export  ExportConfig  `yaml:"export" json:"export"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Sweep   SweepConfig   `yaml:"sweep" json:"sweep"`
}

// DesignConfig holds defaults for the optional design fields.
type DesignConfig struct {
	PressureAngle       float64         `yaml:"pressure_angle" json:"pressure_angle"`
	Material            params.Material `yaml:"material" json:"material"`
	AddendumFactor      float64         `yaml:"addendum_factor" json:"addendum_factor"`
	DedendumFactor      float64         `yaml:"dedendum_factor" json:"dedendum_factor"`
	WallThicknessFactor float64         `yaml:"wall_thickness_factor" json:"wall_thickness_factor"`
	PrintTolerance      float64         `yaml:"print_tolerance" json:"print_tolerance"`
}

// ProfileConfig sets tooth contour point density.
type ProfileConfig struct {
	ToothPoints int `yaml:"tooth_points" json:"tooth_points"`
	ArcPoints   int `yaml:"arc_points" json:"arc_points"`
}

// StorageConfig locates the design catalogue.
type StorageConfig struct {
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// ExportConfig sets where exported files go by default.
type ExportConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// LoggingConfig configures the logger. An empty File disables the file core.
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"` // debug, info, warn, error
	File       string `yaml:"file" json:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
}

// SweepConfig bounds batch evaluation.
type SweepConfig struct {
	Workers int `yaml:"workers" json:"workers"`
}

// DefaultDataDir is ~/.hdrive, or .hdrive when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hdrive"
	}
	return filepath.Join(home, ".hdrive")
}

// DefaultPath is the config file inside the default data directory.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Design: DesignConfig{
			PressureAngle:       params.DefaultPressureAngle,
			Material:            params.DefaultMaterial,
			AddendumFactor:      params.DefaultAddendumFactor,
			DedendumFactor:      params.DefaultDedendumFactor,
			WallThicknessFactor: params.DefaultWallThicknessFactor,
			PrintTolerance:      params.DefaultPrintTolerance,
		},
		Profile: ProfileConfig{
			ToothPoints: 30,
			ArcPoints:   5,
		},
		Storage: StorageConfig{DataDir: DefaultDataDir()},
		Export:  ExportConfig{Dir: "."},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Sweep: SweepConfig{Workers: 4},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv(EnvExportDir); v != "" {
		c.Export.Dir = v
	}
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
	var problems []string

	if !isValidLevel(c.Logging.Level) {
		problems = append(problems, fmt.Sprintf("invalid logging.level %q (valid: %s)",
			c.Logging.Level, strings.Join(ValidLogLevels, ", ")))
	}
	if c.Profile.ToothPoints < 2 {
		problems = append(problems, "profile.tooth_points must be at least 2")
	}
	if c.Profile.ArcPoints < 1 {
		problems = append(problems, "profile.arc_points must be at least 1")
	}
	if c.Sweep.Workers < 1 {
		problems = append(problems, "sweep.workers must be positive")
	}
	if c.Storage.DataDir == "" {
		problems = append(problems, "storage.data_dir must not be empty")
	}
	if err := params.ValidateMaterial(c.Design.Material); err != nil {
		problems = append(problems, "design.material: "+err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func isValidLevel(level string) bool {
	for _, l := range ValidLogLevels {
		if level == l {
			return true
		}
	}
	return false
}

// Defaults fills the unset optional fields of in from the design defaults.
// Fields already set, including explicit zeros, are kept. A zero factor in
// the config itself leaves the field to the model default. TeethCS and
// Module are left alone.
func (d DesignConfig) Defaults(in params.Input) params.Input {
	fill := func(f **float64, v float64) {
		if *f == nil && v != 0 {
			*f = params.Float64(v)
		}
	}
	fill(&in.PressureAngle, d.PressureAngle)
	if in.Material == "" {
		in.Material = d.Material
	}
	fill(&in.AddendumFactor, d.AddendumFactor)
	fill(&in.DedendumFactor, d.DedendumFactor)
	fill(&in.WallThicknessFactor, d.WallThicknessFactor)
	if in.PrintTolerance == nil {
		in.PrintTolerance = params.Float64(d.PrintTolerance)
	}
	return in
}
