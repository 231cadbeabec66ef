// Package config loads and saves dumap's settings file.
//
// Settings live in a TOML file under the XDG config directory, typically
// ~/.config/dumap/config.toml. Values the file does not mention keep their
// defaults, so a partial file is fine. Command line flags override whatever
// the file says.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/dumap/dumap/pkg/errors"
	"github.com/dumap/dumap/pkg/pipeline"
)

const (
	appDir   = "dumap"
	fileName = "config.toml"
)

// Config represents the application configuration.
type Config struct {
	Scan   ScanConfig   `toml:"scan"`
	View   ViewConfig   `toml:"view"`
	Export ExportConfig `toml:"export"`
}

// ScanConfig bounds directory scans.
type ScanConfig struct {
	MaxDepth         int `toml:"max_depth"`
	MaxFiles         int `toml:"max_files"`
	ProgressInterval int `toml:"progress_interval"`
}

// ViewConfig controls how the treemap is subdivided and drawn.
type ViewConfig struct {
	Depth      int     `toml:"depth"`
	MaxNodes   int     `toml:"max_nodes"`
	MinCellPx  float64 `toml:"min_cell_px"`
	ShowLabels bool    `toml:"show_labels"`
	LegendTopN int     `toml:"legend_top_n"`
}

// ExportConfig sizes rendered SVG exports.
type ExportConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			MaxDepth:         pipeline.DefaultScanMaxDepth,
			MaxFiles:         pipeline.DefaultScanMaxFiles,
			ProgressInterval: pipeline.DefaultProgressInterval,
		},
		View: ViewConfig{
			Depth:      pipeline.DefaultDepth,
			MaxNodes:   pipeline.DefaultMaxNodes,
			MinCellPx:  pipeline.DefaultMinCellSide,
			ShowLabels: true,
			LegendTopN: pipeline.DefaultLegendTopN,
		},
		Export: ExportConfig{
			Width:  pipeline.DefaultWidth,
			Height: pipeline.DefaultHeight,
		},
	}
}

// Load reads the configuration from a file. A missing file yields the
// defaults; a present file is decoded over the defaults so omitted keys
// keep their default values.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to read config file %s", path)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to parse config file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a file, creating parent directories as
// needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to create config directory")
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "failed to encode config")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "failed to write config file %s", path)
	}
	return nil
}

// Validate checks that every configured value is usable.
func (c *Config) Validate() error {
	if c.Scan.MaxDepth <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scan.max_depth must be positive, got %d", c.Scan.MaxDepth)
	}
	if c.Scan.MaxFiles < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scan.max_files must not be negative, got %d", c.Scan.MaxFiles)
	}
	if c.Scan.ProgressInterval <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scan.progress_interval must be positive, got %d", c.Scan.ProgressInterval)
	}
	if c.View.Depth <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "view.depth must be positive, got %d", c.View.Depth)
	}
	if c.View.MaxNodes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "view.max_nodes must be positive, got %d", c.View.MaxNodes)
	}
	if c.View.MinCellPx < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "view.min_cell_px must not be negative, got %g", c.View.MinCellPx)
	}
	if c.View.LegendTopN < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "view.legend_top_n must not be negative, got %d", c.View.LegendTopN)
	}
	if c.Export.Width < 16 {
		return errors.New(errors.ErrCodeInvalidConfig, "export.width must be at least 16, got %g", c.Export.Width)
	}
	if c.Export.Height < 16 {
		return errors.New(errors.ErrCodeInvalidConfig, "export.height must be at least 16, got %g", c.Export.Height)
	}
	return nil
}

// Path returns the default config file location under the XDG config
// directory.
func Path() string {
	return filepath.Join(xdg.ConfigHome, appDir, fileName)
}

// EnsureExists writes the default configuration to the standard location
// if no file is there yet, and returns the path.
func EnsureExists() (string, error) {
	path := Path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(Default(), path); err != nil {
			return "", err
		}
	}
	return path, nil
}
