// Package shared contains testing utilities shared between integration tests.
// It builds real CLI instances wired to the production commands, captures
// their output, and fakes the pieces that would otherwise need a desktop
// session: the secret-tool binary and the user's home directory.
package shared

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/keyrun-dev/keyrun/cmd"
	logger "github.com/keyrun-dev/keyrun/internal/logging"

	"github.com/spf13/cobra"
)

// SetupTestEnvironment creates an isolated project directory and home for
// the test, makes the project directory the working directory, and points
// the XDG config and data paths into the temp home. Config, audit, and
// keyring state all resolve under directories the test owns.
func SetupTestEnvironment(t *testing.T) string {
	t.Helper()

	projectDir := t.TempDir()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(projectDir); err != nil {
		t.Fatalf("Failed to change to project directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to restore working directory: %v", err)
		}
	})

	return projectDir
}

// CaptureOutput captures both stdout and stderr during function execution.
func CaptureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)

	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, stdoutReader)
		outputChan <- buf.String()
	}()
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, stderrReader)
		outputChan <- buf.String()
	}()

	err := fn()

	// Close writers to signal EOF, then restore the real streams.
	stdoutWriter.Close()
	stderrWriter.Close()
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}

// CreateTestCLI builds the production root command with fresh global state
// and the given argv. Output streams are redirected when writers are
// provided; most tests pass nil and capture through CaptureOutput instead.
func CreateTestCLI(args []string, stdout, stderr io.Writer, verboseFlag, debugFlag bool) *cobra.Command {
	cmd.ResetGlobalState()
	cmd.SetVerbose(verboseFlag)
	cmd.SetDebug(debugFlag)
	cmd.SetLogger(logger.Logger{
		Verbose: verboseFlag,
		Debug:   debugFlag,
	})

	root := cmd.GetRootCmd()
	if stdout != nil {
		root.SetOut(stdout)
	}
	if stderr != nil {
		root.SetErr(stderr)
	}

	_ = root.PersistentFlags().Set("verbose", strconv.FormatBool(verboseFlag))
	_ = root.PersistentFlags().Set("debug", strconv.FormatBool(debugFlag))

	root.SetArgs(args)
	return root
}

// InstallFakeSecretTool puts a scripted secret-tool on PATH, backed by
// flat files in a per-test state directory. Entries persist for the length
// of the test, so store, run, and clear sequences behave like one keyring
// session.
func InstallFakeSecretTool(t *testing.T) {
	t.Helper()

	stateDir := t.TempDir()
	binDir := t.TempDir()

	script := `#!/bin/sh
state="$KEYRUN_FAKE_KEYRING"
for last in "$@"; do :; done
case "$1" in
store)  cat > "$state/$last" ;;
lookup) [ -f "$state/$last" ] || exit 1; cat "$state/$last" ;;
clear)  [ -f "$state/$last" ] || exit 1; rm -f "$state/$last" ;;
*) exit 2 ;;
esac
`
	stub := filepath.Join(binDir, "secret-tool")
	if err := os.WriteFile(stub, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write secret-tool stub: %v", err)
	}

	t.Setenv("KEYRUN_FAKE_KEYRING", stateDir)
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// RemoveSecretToolFromPath leaves the test with a PATH that has no
// secret-tool at all, for unavailable-backend scenarios.
func RemoveSecretToolFromPath(t *testing.T) {
	t.Helper()
	t.Setenv("PATH", t.TempDir())
}

// SeedFakeEntry plants a keyring entry directly in the fake secret-tool
// state, bypassing the CLI.
func SeedFakeEntry(t *testing.T, app string, content []byte) {
	t.Helper()
	state := fakeStateDir(t)
	if err := os.WriteFile(filepath.Join(state, app), content, 0600); err != nil {
		t.Fatalf("Failed to seed keyring entry: %v", err)
	}
}

// ReadFakeEntry reads a keyring entry from the fake secret-tool state.
// Returns nil when no entry exists.
func ReadFakeEntry(t *testing.T, app string) []byte {
	t.Helper()
	state := fakeStateDir(t)
	content, err := os.ReadFile(filepath.Join(state, app))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("Failed to read keyring entry: %v", err)
	}
	return content
}

func fakeStateDir(t *testing.T) string {
	t.Helper()
	state := os.Getenv("KEYRUN_FAKE_KEYRING")
	if state == "" {
		t.Fatal("InstallFakeSecretTool must be called before touching fake entries")
	}
	return state
}

// FeedStdin replaces os.Stdin with a file holding content for the rest of
// the test, so capture prompts and confirmation prompts read a script
// instead of a terminal.
func FeedStdin(t *testing.T, content string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write stdin file: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open stdin file: %v", err)
	}

	original := os.Stdin
	os.Stdin = f
	t.Cleanup(func() {
		os.Stdin = original
		f.Close()
	})
}
