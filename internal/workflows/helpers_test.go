package workflows

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/keyrun-dev/keyrun/internal/configs"
)

// chdir moves into dir for the test's duration.
func chdir(t *testing.T, dir string) {
	t.Helper()
	original, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(original); err != nil {
			t.Fatalf("Failed to restore working directory: %v", err)
		}
	})
}

// testInvocation builds an invocation rooted in a fresh temp dir and
// isolates the config and data directories so audit writes and config
// discovery never touch the real home.
func testInvocation(t *testing.T) *configs.Invocation {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	return &configs.Invocation{
		SecretsFile: filepath.Join(dir, ".env"),
		App:         "demo",
		Mode:        configs.ModeFile,
		Backend:     "memory",
	}
}
