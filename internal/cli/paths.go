package cli

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/pkggraph/pkg/cache"
)

// configPath returns the default config file, following the XDG standard
// (~/.config/pkggraph/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFileName), nil
}

// cacheDir returns the configured cache directory or the per-user default.
func cacheDir(cfg CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cache.DefaultDir()
}
