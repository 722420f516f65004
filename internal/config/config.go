// Package config loads the server configuration from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/ironsheep/core-column-mcp/internal/column"
	"github.com/ironsheep/core-column-mcp/internal/layout"
	"github.com/ironsheep/core-column-mcp/internal/segment"
)

// Environment variables that override the file.
const (
	EnvInferenceURL = "CORE_COLUMN_INFERENCE_URL"
	EnvLogLevel     = "CORE_COLUMN_LOG_LEVEL"
)

// ErrInvalid is returned by Load and Validate for unusable settings.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete server configuration.
type Config struct {
	// Classes are the detector class names in class id order, without the
	// background class.
	Classes []string `toml:"classes"`

	Layout   layout.Config `toml:"layout"`
	Detector Detector      `toml:"detector"`
	Column   Column        `toml:"column"`

	// Concurrency bounds how many photographs are segmented at once.
	Concurrency int `toml:"concurrency"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// Detector locates the inference service.
type Detector struct {
	// URL is the base URL of the service. Empty disables segmentation.
	URL string `toml:"url"`

	// Timeout bounds one inference request, e.g. "90s".
	Timeout time.Duration `toml:"timeout"`
}

// Column holds defaults for every column the segmenter produces.
type Column struct {
	// AddTolerance overrides the per-column default of twice the row spacing.
	AddTolerance *float64 `toml:"add_tolerance"`

	AddMode column.AddMode `toml:"add_mode"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Classes: []string{"col", "tray"},
		Layout:  layout.DefaultConfig(),
		Detector: Detector{
			URL:     "http://localhost:5000",
			Timeout: 60 * time.Second,
		},
		Column:      Column{AddMode: column.Fill},
		Concurrency: segment.DefaultConcurrency,
		LogLevel:    "info",
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Detector.URL = getEnv(EnvInferenceURL, c.Detector.URL)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// Validate checks every section.
func (c *Config) Validate() error {
	if len(c.Classes) == 0 {
		return fmt.Errorf("%w: no detector classes", ErrInvalid)
	}
	if err := c.Layout.Validate(c.ClassTable()); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency %d must be at least 1", ErrInvalid, c.Concurrency)
	}
	if c.Detector.Timeout < 0 {
		return fmt.Errorf("%w: detector timeout %s is negative", ErrInvalid, c.Detector.Timeout)
	}
	if tol := c.Column.AddTolerance; tol != nil && *tol < 0 {
		return fmt.Errorf("%w: add tolerance %g is negative", ErrInvalid, *tol)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q: %v", ErrInvalid, c.LogLevel, err)
	}
	return nil
}

// ClassTable returns the class table with the background prepended.
func (c *Config) ClassTable() layout.Classes {
	return layout.NewClasses(c.Classes...)
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// SegmentOptions translates the configuration into segmenter options.
func (c *Config) SegmentOptions() []segment.Option {
	opts := []segment.Option{
		segment.WithClasses(c.ClassTable()),
		segment.WithLayout(c.Layout),
		segment.WithConcurrency(c.Concurrency),
		segment.WithAddMode(c.Column.AddMode),
	}
	if c.Column.AddTolerance != nil {
		opts = append(opts, segment.WithAddTolerance(*c.Column.AddTolerance))
	}
	return opts
}
