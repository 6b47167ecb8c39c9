// Package config provides configuration loading and validation for featdb.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Standard config file location.
const defaultConfigPath = "~/.config/featdb/config.json"

// Config holds all featdb configuration settings.
type Config struct {
	DatabasePath  string              `json:"database_path"` // SQLite database with the features table
	Consolidation ConsolidationConfig `json:"consolidation"`

	// expandedPaths tracks whether ExpandPaths has been called.
	expandedPaths bool
}

// ConsolidationConfig tunes how the consolidator groups and merges records.
type ConsolidationConfig struct {
	TargetMin      int `json:"target_min"`      // Lower bound of the acceptable record count after a run
	TargetMax      int `json:"target_max"`      // Upper bound of the acceptable record count after a run
	NoMergeMax     int `json:"no_merge_max"`    // Categories at or below this size pass through untouched
	SmallFactor    int `json:"small_factor"`    // Records merged per bundle in ordinary categories
	LargeFactor    int `json:"large_factor"`    // Records merged per bundle above the large threshold
	LargeThreshold int `json:"large_threshold"` // Category size at which the large factor kicks in

	// Partitions maps a category name to explicit merge ranges. Categories
	// listed here ignore the factor rules.
	Partitions map[string][]PartitionRange `json:"partitions,omitempty"`
}

// PartitionRange is a half-open [start, end) slice of a category's
// priority-ordered records that merges into one feature. An empty name lets
// the consolidator synthesize one.
type PartitionRange struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Name  string `json:"name,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath: "~/.local/share/featdb/features.db",
		Consolidation: ConsolidationConfig{
			TargetMin:      250,
			TargetMax:      600,
			NoMergeMax:     3,
			SmallFactor:    3,
			LargeFactor:    4,
			LargeThreshold: 50,
		},
	}
}

// Load reads config from the standard location (~/.config/featdb/config.json),
// falling back to defaults if the file doesn't exist.
// Missing fields use default values (not zero values).
func Load() (*Config, error) {
	configPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// If the file doesn't exist, returns default config.
// If the file exists but is invalid, returns an error.
func LoadFromPath(path string) (*Config, error) {
	// Start with default config.
	cfg := DefaultConfig()

	// Check if config file exists.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// No config file - use all defaults.
		if err := cfg.ExpandPaths(); err != nil {
			return nil, fmt.Errorf("failed to expand paths: %w", err)
		}
		return cfg, nil
	}

	// Read the config file.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into a temporary struct for merging.
	var fileCfg fileConfig
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Merge file values over defaults (only non-zero values).
	mergeConfig(cfg, &fileCfg)

	// Expand paths.
	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	// Validate the merged config.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// fileConfig is used for parsing JSON with pointer fields to detect what was set.
type fileConfig struct {
	DatabasePath  *string            `json:"database_path"`
	Consolidation *fileConsolidation `json:"consolidation"`
}

type fileConsolidation struct {
	TargetMin      *int                        `json:"target_min"`
	TargetMax      *int                        `json:"target_max"`
	NoMergeMax     *int                        `json:"no_merge_max"`
	SmallFactor    *int                        `json:"small_factor"`
	LargeFactor    *int                        `json:"large_factor"`
	LargeThreshold *int                        `json:"large_threshold"`
	Partitions     map[string][]PartitionRange `json:"partitions"`
}

// mergeConfig merges file config values into the default config.
// Only non-nil values from the file config are applied.
func mergeConfig(cfg *Config, fileCfg *fileConfig) {
	if fileCfg.DatabasePath != nil {
		cfg.DatabasePath = *fileCfg.DatabasePath
	}

	if fileCfg.Consolidation != nil {
		if fileCfg.Consolidation.TargetMin != nil {
			cfg.Consolidation.TargetMin = *fileCfg.Consolidation.TargetMin
		}
		if fileCfg.Consolidation.TargetMax != nil {
			cfg.Consolidation.TargetMax = *fileCfg.Consolidation.TargetMax
		}
		if fileCfg.Consolidation.NoMergeMax != nil {
			cfg.Consolidation.NoMergeMax = *fileCfg.Consolidation.NoMergeMax
		}
		if fileCfg.Consolidation.SmallFactor != nil {
			cfg.Consolidation.SmallFactor = *fileCfg.Consolidation.SmallFactor
		}
		if fileCfg.Consolidation.LargeFactor != nil {
			cfg.Consolidation.LargeFactor = *fileCfg.Consolidation.LargeFactor
		}
		if fileCfg.Consolidation.LargeThreshold != nil {
			cfg.Consolidation.LargeThreshold = *fileCfg.Consolidation.LargeThreshold
		}
		if fileCfg.Consolidation.Partitions != nil {
			cfg.Consolidation.Partitions = fileCfg.Consolidation.Partitions
		}
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path must be non-empty"))
	}

	if c.Consolidation.TargetMin < 1 {
		errs = append(errs, errors.New("consolidation.target_min must be >= 1"))
	}

	if c.Consolidation.TargetMax < c.Consolidation.TargetMin {
		errs = append(errs, errors.New("consolidation.target_max must be >= consolidation.target_min"))
	}

	if c.Consolidation.NoMergeMax < 1 {
		errs = append(errs, errors.New("consolidation.no_merge_max must be >= 1"))
	}

	if c.Consolidation.SmallFactor < 2 {
		errs = append(errs, errors.New("consolidation.small_factor must be >= 2"))
	}

	if c.Consolidation.LargeFactor < 2 {
		errs = append(errs, errors.New("consolidation.large_factor must be >= 2"))
	}

	if c.Consolidation.LargeThreshold < 1 {
		errs = append(errs, errors.New("consolidation.large_threshold must be >= 1"))
	}

	for category, ranges := range c.Consolidation.Partitions {
		if strings.TrimSpace(category) == "" {
			errs = append(errs, errors.New("consolidation.partitions contains an empty category name"))
			continue
		}
		for i, r := range ranges {
			if r.Start < 0 {
				errs = append(errs, fmt.Errorf("consolidation.partitions[%s][%d]: start must be >= 0", category, i))
			}
			if r.End <= r.Start {
				errs = append(errs, fmt.Errorf("consolidation.partitions[%s][%d]: end must be > start", category, i))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ExpandPaths expands ~ to home directory in all path fields.
func (c *Config) ExpandPaths() error {
	if c.expandedPaths {
		return nil
	}

	var err error

	c.DatabasePath, err = expandPath(c.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to expand database_path: %w", err)
	}

	c.expandedPaths = true
	return nil
}

// GetDatabasePath returns the expanded database path.
func (c *Config) GetDatabasePath() string {
	return c.DatabasePath
}

// expandPath expands ~ to the user's home directory.
// It also handles relative paths by making them absolute.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	// Expand ~
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	// Clean the path.
	return filepath.Clean(path), nil
}
