// Package config loads analyzer settings from a YAML file with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the analyzer configuration. Every field can be overridden by an
// environment variable so containerized deployments need no config file.
type Config struct {
	// SystemDict is the path of the compiled system dictionary.
	SystemDict string `yaml:"system_dict"`
	// UserDicts are compiled user dictionaries merged over the system one.
	UserDicts []string `yaml:"user_dicts"`
	// Mode is the default split granularity: "A", "B" or "C".
	Mode string `yaml:"mode"`
	// CacheSize caps the analysis result cache; 0 disables it, -1 keeps the
	// built-in default.
	CacheSize int `yaml:"cache_size"`
	// Normalize enables NFKC input normalization before analysis.
	Normalize bool `yaml:"normalize"`
	// Lowercase additionally case-folds when Normalize is on.
	Lowercase bool `yaml:"lowercase"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Mode: "C", CacheSize: -1}
}

// Load reads a YAML configuration file and applies environment overrides.
// An empty path skips the file and loads defaults plus environment.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("WAKACHI_SYSTEM_DICT"); ok {
		c.SystemDict = v
	}
	if v, ok := os.LookupEnv("WAKACHI_MODE"); ok {
		c.Mode = v
	}
	if v, ok := os.LookupEnv("WAKACHI_CACHE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: WAKACHI_CACHE_SIZE: %w", err)
		}
		c.CacheSize = n
	}
	if v, ok := os.LookupEnv("WAKACHI_NORMALIZE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: WAKACHI_NORMALIZE: %w", err)
		}
		c.Normalize = b
	}
	return nil
}

// Validate reports configuration errors a load cannot detect.
func (c *Config) Validate() error {
	if c.SystemDict == "" {
		return fmt.Errorf("config: system_dict is required")
	}
	switch c.Mode {
	case "A", "a", "B", "b", "C", "c", "":
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	return nil
}
