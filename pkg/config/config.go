// Package config loads and validates the logdoctor tool configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/logdoctor/pkg/constants"
	"github.com/ethpandaops/logdoctor/pkg/diagnostic"
)

// Config is the logdoctor root configuration, usually .logdoctor.yaml.
type Config struct {
	Patterns PatternsConfig `yaml:"patterns"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Reports  ReportsConfig  `yaml:"reports"`
}

// PatternsConfig controls which pattern definitions are loaded.
type PatternsConfig struct {
	// DisableBuiltin skips the embedded builtin pattern library.
	DisableBuiltin bool `yaml:"disable_builtin"`
	// Paths are additional pattern YAML files to load.
	Paths []string `yaml:"paths"`
}

// AnalysisConfig controls engine filtering and resource bounds.
type AnalysisConfig struct {
	// MinConfidence filters out matchers below this confidence.
	MinConfidence int `yaml:"min_confidence"`
	// DisabledCategories excludes whole pattern categories.
	DisabledCategories []string `yaml:"disabled_categories"`
	// MaxMatchesPerMatcher bounds occurrences kept per matcher per
	// segment; 0 keeps all.
	MaxMatchesPerMatcher int `yaml:"max_matches_per_matcher"`
	// SegmentSize is the target log segment length in characters.
	SegmentSize int `yaml:"segment_size"`
	// SegmentOverlap is the overlap carried between adjacent segments.
	SegmentOverlap int `yaml:"segment_overlap"`
	// CacheSize bounds the compiled-expression cache.
	CacheSize int `yaml:"cache_size"`
}

// ReportsConfig controls analysis report persistence.
type ReportsConfig struct {
	// Dir is where JSON analysis reports are stored.
	Dir string `yaml:"dir"`
	// RetentionDays is how long reports are kept before cleanup.
	RetentionDays int `yaml:"retention_days"`
	// Disabled turns off report persistence entirely.
	Disabled bool `yaml:"disabled"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Patterns: PatternsConfig{},
		Analysis: AnalysisConfig{
			MinConfidence:        constants.DefaultMinConfidence,
			MaxMatchesPerMatcher: constants.DefaultMaxMatchesPerMatcher,
			SegmentSize:          diagnostic.DefaultSegmentSize,
			SegmentOverlap:       diagnostic.DefaultSegmentOverlap,
			CacheSize:            diagnostic.DefaultCacheSize,
		},
		Reports: ReportsConfig{
			Dir:           filepath.Join(constants.StateDir, constants.ReportsDirName),
			RetentionDays: constants.DefaultRetentionDays,
		},
	}
}

// Load reads and parses a config file. A missing file yields defaults.
// Unset sections are filled in from defaults, and LOGDOCTOR_* environment
// variables (including those from a local .env file) override the result.
func Load(path string) (*Config, error) {
	// Pick up a local .env file if present; real env vars win.
	_ = godotenv.Load()

	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Fill any fields the user left unset from the defaults.
	if err := mergo.Merge(cfg, Default()); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Analysis.MinConfidence < 0 || c.Analysis.MinConfidence > 100 {
		return fmt.Errorf("min_confidence must be between 0 and 100, got %d", c.Analysis.MinConfidence)
	}

	if c.Analysis.SegmentSize <= 0 {
		return fmt.Errorf("segment_size must be positive, got %d", c.Analysis.SegmentSize)
	}

	if c.Analysis.SegmentOverlap < 0 || c.Analysis.SegmentOverlap >= c.Analysis.SegmentSize {
		return fmt.Errorf("segment_overlap must be between 0 and segment_size, got %d", c.Analysis.SegmentOverlap)
	}

	if c.Analysis.MaxMatchesPerMatcher < 0 {
		return fmt.Errorf("max_matches_per_matcher must not be negative, got %d", c.Analysis.MaxMatchesPerMatcher)
	}

	if c.Reports.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative, got %d", c.Reports.RetentionDays)
	}

	for _, path := range c.Patterns.Paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("pattern file not found at: %s", path)
		}
	}

	return nil
}

// Options converts the analysis section into engine options.
func (c *Config) Options() diagnostic.Options {
	return diagnostic.Options{
		MinConfidence:        c.Analysis.MinConfidence,
		DisabledCategories:   c.Analysis.DisabledCategories,
		MaxMatchesPerMatcher: c.Analysis.MaxMatchesPerMatcher,
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(constants.EnvMinConfidence); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.MinConfidence = n
		}
	}

	if v := os.Getenv(constants.EnvPatternPaths); v != "" {
		for _, path := range strings.Split(v, string(os.PathListSeparator)) {
			if path = strings.TrimSpace(path); path != "" {
				cfg.Patterns.Paths = append(cfg.Patterns.Paths, path)
			}
		}
	}

	if v := os.Getenv(constants.EnvDisabledCategories); v != "" {
		for _, category := range strings.Split(v, ",") {
			if category = strings.TrimSpace(category); category != "" {
				cfg.Analysis.DisabledCategories = append(cfg.Analysis.DisabledCategories, category)
			}
		}
	}

	if v := os.Getenv(constants.EnvReportsDir); v != "" {
		cfg.Reports.Dir = v
	}
}
