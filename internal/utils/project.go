package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultAppName returns the default application name: the base name of the
// current working directory. This matches the convention of one secret store
// entry per project directory.
func DefaultAppName() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Base(cwd), nil
}
