// Package config holds the YAML configuration shared by the glbstats tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Failure policies for the stats batch.
const (
	PolicyAbort    = "abort"
	PolicyContinue = "continue"
)

// Thumbnail encodings sent to the description model.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Config holds all tool settings.
type Config struct {
	Stats    StatsConfig    `yaml:"stats"`
	Describe DescribeConfig `yaml:"describe"`
	Store    StoreConfig    `yaml:"store"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StatsConfig controls the stats batch.
type StatsConfig struct {
	Extension     string `yaml:"extension"`
	OutputName    string `yaml:"output_name"`
	FailurePolicy string `yaml:"failure_policy"`
}

// DescribeConfig controls the enrichment stage.
type DescribeConfig struct {
	BaseURL            string `yaml:"base_url"`
	Model              string `yaml:"model"`
	APIKeyEnv          string `yaml:"api_key_env"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	ThumbnailExtension string `yaml:"thumbnail_extension"`
	ThumbnailMaxEdge   int    `yaml:"thumbnail_max_edge"` // 0 = send original bytes
	ThumbnailFormat    string `yaml:"thumbnail_format"`
	SkipExisting       bool   `yaml:"skip_existing"`
	ExemplarRecord     string `yaml:"exemplar_record"`
	ExemplarImage      string `yaml:"exemplar_image"`
	ExemplarText       string `yaml:"exemplar_text"`
}

// StoreConfig enables the SQLite export when Path is set.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Stats: StatsConfig{
			Extension:     ".glb",
			OutputName:    "glb_stats.json",
			FailurePolicy: PolicyAbort,
		},
		Describe: DescribeConfig{
			BaseURL:            "https://openrouter.ai/api/v1",
			Model:              "mistralai/mistral-small-3.2-24b-instruct:free",
			APIKeyEnv:          "OPENROUTER_API_KEY",
			TimeoutSeconds:     120,
			ThumbnailExtension: ".png",
			ThumbnailFormat:    FormatPNG,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no tool can act on.
func (c *Config) Validate() error {
	switch c.Stats.FailurePolicy {
	case PolicyAbort, PolicyContinue:
	default:
		return fmt.Errorf("unknown failure policy %q (want %s or %s)", c.Stats.FailurePolicy, PolicyAbort, PolicyContinue)
	}
	switch c.Describe.ThumbnailFormat {
	case FormatPNG, FormatWebP:
	default:
		return fmt.Errorf("unknown thumbnail format %q (want %s or %s)", c.Describe.ThumbnailFormat, FormatPNG, FormatWebP)
	}
	if c.Describe.TimeoutSeconds < 0 || c.Describe.ThumbnailMaxEdge < 0 {
		return fmt.Errorf("timeout and thumbnail edge must not be negative")
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
// Empty strings and false leave the file value alone.
type Flags struct {
	FailurePolicy string
	Model         string
	BaseURL       string
	SkipExisting  bool
	ThumbMaxEdge  int
	ThumbFormat   string
	DBPath        string
	Debug         bool
	LogFile       string
}

// Resolve applies CLI overrides and fills defaults for anything the file
// left empty.
func (c *Config) Resolve(flags Flags) error {
	if flags.FailurePolicy != "" {
		c.Stats.FailurePolicy = flags.FailurePolicy
	}
	if flags.Model != "" {
		c.Describe.Model = flags.Model
	}
	if flags.BaseURL != "" {
		c.Describe.BaseURL = flags.BaseURL
	}
	if flags.SkipExisting {
		c.Describe.SkipExisting = true
	}
	if flags.ThumbMaxEdge > 0 {
		c.Describe.ThumbnailMaxEdge = flags.ThumbMaxEdge
	}
	if flags.ThumbFormat != "" {
		c.Describe.ThumbnailFormat = flags.ThumbFormat
	}
	if flags.DBPath != "" {
		c.Store.Path = flags.DBPath
	}
	if flags.Debug {
		c.Logging.Level = "debug"
	}
	if flags.LogFile != "" {
		c.Logging.LogFile = flags.LogFile
	}

	def := Default()
	if c.Stats.Extension == "" {
		c.Stats.Extension = def.Stats.Extension
	}
	if c.Stats.OutputName == "" {
		c.Stats.OutputName = def.Stats.OutputName
	}
	if c.Stats.FailurePolicy == "" {
		c.Stats.FailurePolicy = def.Stats.FailurePolicy
	}
	if c.Describe.BaseURL == "" {
		c.Describe.BaseURL = def.Describe.BaseURL
	}
	if c.Describe.Model == "" {
		c.Describe.Model = def.Describe.Model
	}
	if c.Describe.APIKeyEnv == "" {
		c.Describe.APIKeyEnv = def.Describe.APIKeyEnv
	}
	if c.Describe.TimeoutSeconds == 0 {
		c.Describe.TimeoutSeconds = def.Describe.TimeoutSeconds
	}
	if c.Describe.ThumbnailExtension == "" {
		c.Describe.ThumbnailExtension = def.Describe.ThumbnailExtension
	}
	if c.Describe.ThumbnailFormat == "" {
		c.Describe.ThumbnailFormat = def.Describe.ThumbnailFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	return c.Validate()
}

// APIKey returns the key from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.Describe.APIKeyEnv)
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
