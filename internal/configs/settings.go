package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// UserConfigPath returns the path of the user-level config file,
// ~/.config/keyrun/config.toml on Linux.
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "keyrun", "config.toml"), nil
}

// DataDir returns the keyrun data directory, honoring XDG_DATA_HOME.
// The audit log lives here.
func DataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "keyrun"), nil
}
