package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
)

// setupEnv isolates the test from the real home directory and project.
func setupEnv(t *testing.T) string {
	t.Helper()

	projectDir := t.TempDir()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(projectDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("Failed to restore directory: %v", err)
		}
	})
	return projectDir
}

// captureStdout runs fn with os.Stdout and os.Stderr redirected to a pipe
// and returns everything written.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	originalStdout := os.Stdout
	originalStderr := os.Stderr
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = writer
	os.Stderr = writer

	done := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, reader)
		done <- buf.String()
	}()

	fnErr := fn()

	writer.Close()
	os.Stdout = originalStdout
	os.Stderr = originalStderr
	return <-done, fnErr
}

func executeCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ResetGlobalState()
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetArgs([]string{})
		ResetGlobalState()
	})
	return captureStdout(t, RootCmd.Execute)
}

func TestRootCommandWiring(t *testing.T) {
	expected := []string{"run", "store", "show", "clear", "status", "keep", "doctor", "log", "version"}
	registered := make(map[string]bool)
	for _, sub := range RootCmd.Commands() {
		registered[sub.Name()] = true
	}
	for _, name := range expected {
		if !registered[name] {
			t.Errorf("Command %q is not registered on the root command", name)
		}
	}
}

func TestHelpListsCommands(t *testing.T) {
	var buf bytes.Buffer
	ResetGlobalState()
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs([]string{"--help"})
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs([]string{})
	})

	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("help failed: %v", err)
	}

	help := buf.String()
	for _, want := range []string{"run", "store", "doctor", "--verbose", "--backend"} {
		if !strings.Contains(help, want) {
			t.Errorf("Expected %q in help output:\n%s", want, help)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	output, err := executeCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(output, "dev") {
		t.Errorf("Expected the dev version in output, got: %s", output)
	}
}

func TestUnknownBackendFails(t *testing.T) {
	setupEnv(t)

	output, err := executeCLI(t, "show", "--backend", "floppy-disk", "--app", "demo")
	if err == nil {
		t.Fatal("Expected an error for an unknown backend")
	}
	if code := kerrors.ExitCode(err); code != kerrors.ExitFailure {
		t.Errorf("Expected exit code %d, got %d", kerrors.ExitFailure, code)
	}
	if !strings.Contains(output, "floppy-disk") {
		t.Errorf("Expected the backend name in the error, got: %s", output)
	}
}

func TestInvalidModeFails(t *testing.T) {
	setupEnv(t)

	output, err := executeCLI(t, "keep", "--mode", "sideways")
	if err == nil {
		t.Fatal("Expected an error for an invalid mode")
	}
	if !strings.Contains(output, "sideways") {
		t.Errorf("Expected the mode value in the error, got: %s", output)
	}
}

func TestResetGlobalState(t *testing.T) {
	SetVerbose(true)
	SetDebug(true)
	storeForce = true
	clearYes = true
	showUnmask = true
	keepRemove = true
	logJSON = true
	statusRecent = 99

	ResetGlobalState()

	if verbose || debug {
		t.Error("Expected verbosity flags to reset")
	}
	if storeForce || clearYes || showUnmask || keepRemove || logJSON {
		t.Error("Expected command flags to reset")
	}
	if statusRecent != 5 {
		t.Errorf("Expected statusRecent to reset to 5, got %d", statusRecent)
	}
}
