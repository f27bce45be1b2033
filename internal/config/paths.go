package config

import (
	"os"
	"path/filepath"
)

const (
	envConfigDir   = "RDSCRIPT_CONFIG_DIR"
	configDirName  = "rdscript"
	scratchDirName = "rdscript-scratch"
)

// Dir is where settings and history live. RDSCRIPT_CONFIG_DIR overrides the
// platform default, which keeps tests and odd setups off the real config.
func Dir() string {
	if dir := os.Getenv(envConfigDir); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return configDirName
		}
		return filepath.Join(home, "."+configDirName)
	}
	return filepath.Join(base, configDirName)
}

func DefaultScratchDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return scratchDirName
	}
	return filepath.Join(home, scratchDirName)
}

func DefaultHistoryPath() string {
	return filepath.Join(Dir(), "history.json")
}
