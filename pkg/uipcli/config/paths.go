package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName = "uipcli"
	defaultConfigFile    = "config.yaml"
)

// DefaultConfigPath resolves the config file location: UIPCLI_CONFIG env
// override, then the user config dir, then a dotted home fallback.
func DefaultConfigPath() string {
	if env := os.Getenv("UIPCLI_CONFIG"); env != "" {
		return env
	}
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultConfigFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".uipcli", defaultConfigFile)
}
