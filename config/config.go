// Package config loads the CLI configuration file.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultPageSize = 20

// Config is the CLI configuration.
type Config struct {
	Repos      []string `yaml:"repos"`
	Format     string   `yaml:"format"`
	Pagination bool     `yaml:"pagination"`
	PageSize   int      `yaml:"page_size"`
}

// DefaultConfig constructs a configuration with default values.
func DefaultConfig() Config {
	return Config{
		Format:   "table",
		PageSize: DefaultPageSize,
	}
}

// Apply overrides the base config values with values from another
// configuration.
func (c *Config) Apply(overlay Config) {
	if len(overlay.Repos) > 0 {
		c.Repos = overlay.Repos
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.Pagination {
		c.Pagination = true
	}
	if overlay.PageSize > 0 {
		c.PageSize = overlay.PageSize
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gitql.yml")
}

// Load reads a YAML configuration file. A missing file yields the
// defaults without error.
func Load(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, errors.Wrapf(err, "read config file %q", path)
	}
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return config, errors.Wrapf(err, "parse config file %q", path)
	}
	config.Apply(overlay)
	return config, nil
}
