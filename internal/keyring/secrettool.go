package keyring

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
)

// SecretTool stores secrets by shelling out to secret-tool(1), which talks
// to the freedesktop Secret Service (GNOME Keyring, KWallet, and friends).
// Entries carry the attributes `service keyrun app <app>` so they never
// collide with other tools' secrets.
type SecretTool struct{}

// NewSecretTool returns the secret-tool backed store.
func NewSecretTool() *SecretTool {
	return &SecretTool{}
}

func (s *SecretTool) Name() string {
	return "secret-tool"
}

// Available checks that the secret-tool binary is on PATH.
func (s *SecretTool) Available() error {
	if _, err := exec.LookPath("secret-tool"); err != nil {
		return fmt.Errorf("secret-tool not found in PATH: %w", err)
	}
	return nil
}

// Get runs `secret-tool lookup` and returns its stdout verbatim.
// secret-tool prints the secret with no trailing newline added.
func (s *SecretTool) Get(app string) ([]byte, error) {
	cmd := exec.Command("secret-tool", "lookup", "service", serviceAttribute, "app", app)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Exit code 1 means no matching entry.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, fmt.Errorf("no keyring entry for %q: %w", app, kerrors.ErrSecretNotFound)
		}
		return nil, fmt.Errorf("secret-tool lookup failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	return stdout.Bytes(), nil
}

// Set runs `secret-tool store` with the content piped to stdin.
func (s *SecretTool) Set(app, label string, content []byte) error {
	cmd := exec.Command("secret-tool", "store", "--label", label, "service", serviceAttribute, "app", app)
	cmd.Stdin = bytes.NewReader(content)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("secret-tool store failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	return nil
}

// Delete runs `secret-tool clear` for the app's attributes.
func (s *SecretTool) Delete(app string) error {
	cmd := exec.Command("secret-tool", "clear", "service", serviceAttribute, "app", app)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return fmt.Errorf("no keyring entry for %q: %w", app, kerrors.ErrSecretNotFound)
		}
		return fmt.Errorf("secret-tool clear failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	return nil
}
