// Package config holds engine configuration with TOML file loading,
// defaults, and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the per-project configuration file looked up at the scan root
const FileName = ".codemarks.toml"

// Config controls scanning and scheduling behavior
type Config struct {
	Scan  ScanConfig  `toml:"scan"`
	Timer TimerConfig `toml:"timer"`
}

// ScanConfig bounds workspace enumeration
type ScanConfig struct {
	// Extensions is the file-extension allow-list, with leading dots
	Extensions []string `toml:"extensions"`
	// IgnoreGlobs are doublestar patterns matched against slash-separated
	// paths relative to the scan root
	IgnoreGlobs []string `toml:"ignore_globs"`
	// MaxFiles caps enumeration to bound worst-case scan cost
	MaxFiles int `toml:"max_files"`
	// BatchSize is the number of files handed to one scan batch
	BatchSize int `toml:"batch_size"`
	// Workers is the scan worker pool size
	Workers int `toml:"workers"`
}

// TimerConfig sets the two independent debounce channels
type TimerConfig struct {
	// RefreshDebounceMs coalesces refresh requests into one workspace scan
	RefreshDebounceMs int `toml:"refresh_debounce_ms"`
	// PatchDebounceMs coalesces keystrokes into one incremental patch
	PatchDebounceMs int `toml:"patch_debounce_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Extensions: []string{
				".go", ".js", ".jsx", ".ts", ".tsx", ".py", ".rb", ".rs",
				".c", ".h", ".cpp", ".hpp", ".cs", ".java", ".php", ".sh",
				".html", ".css", ".scss", ".vue", ".sql", ".yaml", ".yml",
				".toml", ".md",
			},
			IgnoreGlobs: []string{
				"**/node_modules/**", "**/vendor/**", "**/.git/**",
				"**/dist/**", "**/build/**", "**/target/**",
			},
			MaxFiles:  5000,
			BatchSize: 50,
			Workers:   runtime.NumCPU(),
		},
		Timer: TimerConfig{
			RefreshDebounceMs: 500,
			PatchDebounceMs:   100,
		},
	}
}

// Load reads the configuration file under root, merging it over defaults.
// A missing file is not an error; the defaults are returned.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(root, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return cfg, nil
}

// Validate checks ranges and fills zero values with defaults.
func (c *Config) Validate() error {
	def := Default()

	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = def.Scan.Extensions
	}
	for _, ext := range c.Scan.Extensions {
		if ext == "" || ext[0] != '.' {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}

	if c.Scan.MaxFiles <= 0 {
		c.Scan.MaxFiles = def.Scan.MaxFiles
	}
	if c.Scan.BatchSize <= 0 {
		c.Scan.BatchSize = def.Scan.BatchSize
	}
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = def.Scan.Workers
	}
	if c.Timer.RefreshDebounceMs <= 0 {
		c.Timer.RefreshDebounceMs = def.Timer.RefreshDebounceMs
	}
	if c.Timer.PatchDebounceMs <= 0 {
		c.Timer.PatchDebounceMs = def.Timer.PatchDebounceMs
	}
	return nil
}
