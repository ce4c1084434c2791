// Package config loads the optional taproot.yaml project configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds project-level settings. Command-line flags override any
// value set here.
type Config struct {
	// Root is the project root used for import resolution and identity
	// keys. Defaults to the current directory.
	Root string `yaml:"root"`
	// DB is the docstring database path.
	DB string `yaml:"db"`
	// Script is a Risor summarizer script replacing the embedded default.
	Script string `yaml:"script"`
	// Exclude lists directories (relative to Root) that discovery skips in
	// addition to the built-in tooling directories.
	Exclude []string `yaml:"exclude"`
}

// Default returns a Config with defaults applied.
func Default() *Config {
	return &Config{
		Root: ".",
		DB:   "taproot.db",
	}
}

// Load reads configuration from path, falling back to defaults. When path
// is empty, taproot.yaml in the current directory is used if present; a
// missing file is not an error, a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = "taproot.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.DB == "" {
		cfg.DB = "taproot.db"
	}
	return cfg, nil
}
