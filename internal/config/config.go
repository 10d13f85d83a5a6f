package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"miniscan/internal/catalog"
	"miniscan/internal/scan"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Logging selects the slog level and handler.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Catalog locates the paint catalogue.
type Catalog struct {
	// Path is a .json file or a SQLite database.
	Path string `mapstructure:"path"`
	// DB is where "catalog import" writes.
	DB string `mapstructure:"db"`
}

// Config is the full application configuration.
type Config struct {
	Logging Logging
	Catalog Catalog
	Scan    scan.Params
	Washes  catalog.WashTable
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Logging: Logging{Level: "info", Format: "console"},
		Catalog: Catalog{
			Path: filepath.Join(DefaultDir(), "paints.db"),
			DB:   filepath.Join(DefaultDir(), "paints.db"),
		},
		Scan:   scan.DefaultParams(),
		Washes: catalog.DefaultWashTable(),
	}
}

// Load overlays whatever v has set (file, MINISCAN_ environment, bound
// flags) on the defaults.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()

	if v := v.GetString("logging.level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := v.GetString("logging.format"); v != "" {
		cfg.Logging.Format = v
	}
	if v := v.GetString("catalog.path"); v != "" {
		cfg.Catalog.Path = ExpandPath(v)
	}
	if v := v.GetString("catalog.db"); v != "" {
		cfg.Catalog.DB = ExpandPath(v)
	}
	if brands := v.GetStringSlice("brands"); len(brands) > 0 {
		cfg.Scan.Brands = brands
	}
	if v.IsSet("skip_stand") {
		cfg.Scan.SkipStand = v.GetBool("skip_stand")
	}
	if v.IsSet("anchor_skip_bottom") {
		cfg.Scan.AnchorSkipBottom = v.GetFloat64("anchor_skip_bottom")
	}
	if n := v.GetInt("workers"); n > 0 {
		cfg.Scan.Workers = n
		cfg.Scan.Cluster.Workers = n
	}

	// Nested blocks decode onto the defaults, so partial sections keep the
	// remaining values.
	sections := []struct {
		key    string
		target any
	}{
		{"analysis", &cfg.Scan.Prepare},
		{"stand", &cfg.Scan.Stand},
		{"cluster", &cfg.Scan.Cluster},
		{"metallic", &cfg.Scan.Metallic},
		{"family", &cfg.Scan.Family},
		{"shade", &cfg.Scan.Shade},
		{"match", &cfg.Scan.Match},
		{"washes", &cfg.Washes},
	}
	for _, s := range sections {
		if !v.IsSet(s.key) {
			continue
		}
		if err := v.UnmarshalKey(s.key, s.target); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, s.key, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.Logging.Format)
	}
	if c.Scan.Prepare.Width < 0 {
		return fmt.Errorf("%w: analysis.width must not be negative", ErrInvalidConfig)
	}
	if c.Scan.Cluster.MinPixels < 1 {
		return fmt.Errorf("%w: cluster.min_pixels must be positive", ErrInvalidConfig)
	}
	if c.Scan.Match.CandidatePool < 1 {
		return fmt.Errorf("%w: match.candidate_pool must be positive", ErrInvalidConfig)
	}
	if c.Scan.AnchorSkipBottom < 0 || c.Scan.AnchorSkipBottom >= 1 {
		return fmt.Errorf("%w: anchor_skip_bottom must be in [0, 1)", ErrInvalidConfig)
	}
	return nil
}
