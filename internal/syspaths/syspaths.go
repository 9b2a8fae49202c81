// Package syspaths resolves the per-user directories this library stores
// state in. Resolution happens once per process; the environment is not
// re-read afterwards.
package syspaths

import (
	"os"
	"path/filepath"
	"sync"
)

const appDirName = "rom-properties"

var (
	cacheOnce  sync.Once
	cacheDir   string
	configOnce sync.Once
	configDir  string
)

// CacheDir returns the per-user cache directory, ~/.cache/rom-properties on
// most systems. Empty when no home directory can be determined.
func CacheDir() string {
	cacheOnce.Do(func() {
		cacheDir = resolveCacheDir()
	})
	return cacheDir
}

// ConfigDir returns the per-user configuration directory,
// ~/.config/rom-properties on most systems. Empty when no home directory
// can be determined.
func ConfigDir() string {
	configOnce.Do(func() {
		configDir = resolveConfigDir()
	})
	return configDir
}

func resolveCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, appDirName)
}

func resolveConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, appDirName)
}

// DefaultKeyFile is where the key database lives unless a Config overrides
// it. Empty when the config directory is unavailable.
func DefaultKeyFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "keys.yaml")
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o700)
}
