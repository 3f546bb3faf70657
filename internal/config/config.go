// Package config loads the optional duwalk configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML configuration file. Values act as defaults for
// the matching command line flags, so an explicit flag always wins.
type Config struct {
	Threads          int      `yaml:"threads"`
	Format           string   `yaml:"format"`
	ApparentSize     bool     `yaml:"apparent-size"`
	CountHardLinks   bool     `yaml:"count-hard-links"`
	StayOnFilesystem bool     `yaml:"stay-on-filesystem"`
	SortByName       bool     `yaml:"sort-by-name"`
	IgnoreDirs       []string `yaml:"ignore-dirs"`
}

// DefaultPath returns $XDG_CONFIG_HOME/duwalk/config.yaml, falling back to
// ~/.config. Empty when no home directory can be determined.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "duwalk", "config.yaml")
}

// Load reads the config at path. A missing file is not an error; the zero
// config is returned so running without one just works.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
