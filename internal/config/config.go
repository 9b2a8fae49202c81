// Package config reads the optional per-user CLI configuration file. Values
// missing from the file fall back to the standard system paths; command-line
// flags override both.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/marcellodash/rom-properties/internal/syspaths"
)

type Config struct {
	KeyFile  string `yaml:"keyFile"`
	CacheDir string `yaml:"cacheDir"`
	Language string `yaml:"language"`
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	dir := syspaths.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "rominfo.yaml")
}

// Load reads the configuration file and fills defaults. A missing file is
// not an error; it yields the pure defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	var config Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &config); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if config.KeyFile == "" {
		config.KeyFile = syspaths.DefaultKeyFile()
	}

	if config.CacheDir == "" {
		if base := syspaths.CacheDir(); base != "" {
			config.CacheDir = filepath.Join(base, "artwork")
		}
	}

	return config, nil
}
