package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keyrun-dev/keyrun/internal/audit"
	"github.com/keyrun-dev/keyrun/internal/configs"
	"github.com/keyrun-dev/keyrun/internal/envfile"
	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/keyring"
	"github.com/keyrun-dev/keyrun/internal/utils"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult `json:"checks"`
	Summary     DoctorSummary `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// DoctorOptions configures the doctor workflow.
type DoctorOptions struct {
	// Invocation is the resolved configuration.
	Invocation *configs.Invocation

	// Store overrides the backend named by the invocation; nil opens it
	// so an unknown backend surfaces as a finding.
	Store keyring.Store
}

// Doctor runs health checks on everything a run depends on.
//
// The doctor workflow checks:
//   - User and project configuration validity
//   - Keyring backend availability and the app's entry
//   - Secrets file presence, type, and permissions
//   - Keep marker consistency
//   - Pipe mode support on this system
//   - Interactive terminal availability for capture
//   - Audit log writability
func Doctor(ctx context.Context, opts DoctorOptions) (*DoctorResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inv := opts.Invocation

	store := opts.Store
	var openErr error
	if store == nil {
		store, openErr = keyring.Open(inv.Backend)
	}

	checks := []func() CheckResult{
		checkUserConfig,
		checkProjectConfig,
		func() CheckResult { return checkBackend(inv.Backend, store, openErr) },
		func() CheckResult { return checkKeyringEntry(store, inv.App) },
		func() CheckResult { return checkSecretsFile(inv.SecretsFile) },
		func() CheckResult { return checkKeepMarkerConsistency(inv.SecretsFile) },
		func() CheckResult { return checkPipeSupport(inv.Mode) },
		checkTerminal,
		checkAuditLog,
	}

	var results []CheckResult
	for _, check := range checks {
		results = append(results, check())
	}

	summary := calculateDoctorSummary(results)

	// Collect suggestions (deduplicated).
	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	return &DoctorResult{
		Checks:      results,
		Summary:     summary,
		Suggestions: suggestions,
	}, nil
}

// checkUserConfig checks that the user config, when present, parses.
func checkUserConfig() CheckResult {
	configPath, err := configs.UserConfigPath()
	if err != nil {
		return CheckResult{
			Name:       "User configuration",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Cannot locate user configuration: %v", err),
			Suggestion: "Set HOME or XDG_CONFIG_HOME so keyrun can find its config directory",
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return CheckResult{
			Name:    "User configuration",
			Status:  CheckPass,
			Message: "No user configuration (defaults apply)",
		}
	}

	var config configs.FileConfig
	if err := configs.LoadTOML(configPath, &config); err != nil {
		return CheckResult{
			Name:       "User configuration",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to parse user config: %v", err),
			Suggestion: fmt.Sprintf("Check %s for TOML syntax errors", configPath),
		}
	}

	if config.Mode != "" {
		if _, err := configs.ParseMode(config.Mode); err != nil {
			return CheckResult{
				Name:       "User configuration",
				Status:     CheckError,
				Message:    fmt.Sprintf("User config has an invalid mode: %v", err),
				Suggestion: fmt.Sprintf("Set mode to \"file\" or \"pipe\" in %s", configPath),
			}
		}
	}

	return CheckResult{
		Name:    "User configuration",
		Status:  CheckPass,
		Message: "User configuration valid",
	}
}

// checkProjectConfig checks that the project config, when discoverable,
// parses. Discovery runs fresh from disk so a broken file still gets
// reported even when invocation resolution fell back to defaults.
func checkProjectConfig() CheckResult {
	configPath, err := utils.FindProjectConfig()
	if err != nil {
		return CheckResult{
			Name:       "Project configuration",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Cannot search for keyrun.toml: %v", err),
			Suggestion: "Check that the current directory is accessible",
		}
	}
	if configPath == "" {
		return CheckResult{
			Name:    "Project configuration",
			Status:  CheckPass,
			Message: "No keyrun.toml found (defaults apply)",
		}
	}

	var config configs.FileConfig
	if err := configs.LoadTOML(configPath, &config); err != nil {
		return CheckResult{
			Name:       "Project configuration",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to parse %s: %v", configPath, err),
			Suggestion: fmt.Sprintf("Check %s for TOML syntax errors", configPath),
		}
	}

	if config.Mode != "" {
		if _, err := configs.ParseMode(config.Mode); err != nil {
			return CheckResult{
				Name:       "Project configuration",
				Status:     CheckError,
				Message:    fmt.Sprintf("Project config has an invalid mode: %v", err),
				Suggestion: fmt.Sprintf("Set mode to \"file\" or \"pipe\" in %s", configPath),
			}
		}
	}

	return CheckResult{
		Name:    "Project configuration",
		Status:  CheckPass,
		Message: fmt.Sprintf("Project configuration valid (%s)", configPath),
	}
}

// checkBackend checks that the keyring backend exists and answers its
// availability probe.
func checkBackend(name string, store keyring.Store, openErr error) CheckResult {
	if openErr != nil {
		return CheckResult{
			Name:       "Keyring backend",
			Status:     CheckError,
			Message:    fmt.Sprintf("Unknown keyring backend %q", name),
			Suggestion: "Use --backend secret-tool or --backend service",
		}
	}

	if err := store.Available(); err != nil {
		return CheckResult{
			Name:       "Keyring backend",
			Status:     CheckError,
			Message:    fmt.Sprintf("Backend %s is unavailable: %v", store.Name(), err),
			Suggestion: "Install the backend's tooling or select another with --backend",
		}
	}

	return CheckResult{
		Name:    "Keyring backend",
		Status:  CheckPass,
		Message: fmt.Sprintf("Backend %s is available", store.Name()),
	}
}

// checkKeyringEntry checks whether the keyring holds secrets for the app.
func checkKeyringEntry(store keyring.Store, app string) CheckResult {
	if store == nil || store.Available() != nil {
		return CheckResult{
			Name:    "Keyring entry",
			Status:  CheckWarning,
			Message: "Cannot check keyring entry: backend unavailable",
		}
	}

	content, err := store.Get(app)
	if errors.Is(err, kerrors.ErrSecretNotFound) {
		return CheckResult{
			Name:       "Keyring entry",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("No keyring entry for %q", app),
			Suggestion: "Run 'keyrun store' to save secrets, or let the next run capture them",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       "Keyring entry",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to read keyring entry: %v", err),
			Suggestion: "Check the backend's own tooling for this entry",
		}
	}

	if len(content) == 0 {
		return CheckResult{
			Name:       "Keyring entry",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Keyring entry for %q is empty", app),
			Suggestion: "Run 'keyrun store --force' to replace it",
		}
	}

	return CheckResult{
		Name:    "Keyring entry",
		Status:  CheckPass,
		Message: fmt.Sprintf("Keyring entry for %q holds %d bytes", app, len(content)),
	}
}

// checkSecretsFile checks the local secrets file's type and permissions.
func checkSecretsFile(path string) CheckResult {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:    "Secrets file",
			Status:  CheckPass,
			Message: fmt.Sprintf("No local secrets file at %s; runs resolve from the keyring", path),
		}
	}
	if err != nil {
		return CheckResult{
			Name:       "Secrets file",
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to stat secrets file: %v", err),
			Suggestion: "Check that the secrets file path is accessible",
		}
	}

	if info.IsDir() {
		return CheckResult{
			Name:       "Secrets file",
			Status:     CheckError,
			Message:    fmt.Sprintf("%s is a directory", path),
			Suggestion: "Move the directory aside or point --file somewhere else",
		}
	}

	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		return CheckResult{
			Name:       "Secrets file",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Secrets file is readable by others (%04o)", mode),
			Suggestion: fmt.Sprintf("Run 'chmod 600 %s' to fix permissions", path),
		}
	}

	return CheckResult{
		Name:    "Secrets file",
		Status:  CheckPass,
		Message: fmt.Sprintf("Secrets file %s has owner-only permissions", path),
	}
}

// checkKeepMarkerConsistency checks that a keep marker, when present,
// still refers to an existing secrets file.
func checkKeepMarkerConsistency(secretsFile string) CheckResult {
	markerPath := envfile.KeepMarkerPath(secretsFile)
	if _, err := os.Stat(markerPath); err != nil {
		return CheckResult{
			Name:    "Keep marker",
			Status:  CheckPass,
			Message: "No keep marker; file artifacts are removed after runs",
		}
	}

	if _, err := os.Stat(secretsFile); os.IsNotExist(err) {
		return CheckResult{
			Name:       "Keep marker",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Keep marker %s exists but the secrets file does not", markerPath),
			Suggestion: "Remove the stale marker with 'keyrun keep --remove'",
		}
	}

	return CheckResult{
		Name:    "Keep marker",
		Status:  CheckPass,
		Message: "Keep marker present; the secrets file survives cleanup",
	}
}

// checkPipeSupport checks whether pipe mode can work on this system.
func checkPipeSupport(mode configs.Mode) CheckResult {
	if err := envfile.PipeSupported(); err != nil {
		if mode == configs.ModePipe {
			return CheckResult{
				Name:       "Pipe support",
				Status:     CheckError,
				Message:    fmt.Sprintf("Pipe mode is selected but unsupported: %v", err),
				Suggestion: "Use --mode file on this system",
			}
		}
		return CheckResult{
			Name:       "Pipe support",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Pipe mode is unsupported: %v", err),
			Suggestion: "Use --mode file on this system",
		}
	}

	return CheckResult{
		Name:    "Pipe support",
		Status:  CheckPass,
		Message: "/dev/fd is available for pipe mode",
	}
}

// checkTerminal checks whether interactive capture has a terminal to
// prompt on.
func checkTerminal() CheckResult {
	if !utils.IsTTYAvailable() {
		return CheckResult{
			Name:       "Interactive terminal",
			Status:     CheckWarning,
			Message:    "No controlling terminal; capture prompts cannot be shown",
			Suggestion: "Pipe secrets on stdin when a run needs to capture them",
		}
	}

	return CheckResult{
		Name:    "Interactive terminal",
		Status:  CheckPass,
		Message: "A terminal is available for capture prompts",
	}
}

// checkAuditLog checks that the audit log location is writable.
func checkAuditLog() CheckResult {
	logPath, err := audit.LogPath()
	if err != nil {
		return CheckResult{
			Name:       "Audit log",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Cannot determine audit log location: %v", err),
			Suggestion: "Set HOME or XDG_DATA_HOME so keyrun can find its data directory",
		}
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return CheckResult{
			Name:       "Audit log",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Audit log directory is not writable: %v", err),
			Suggestion: fmt.Sprintf("Check permissions on %s", filepath.Dir(logPath)),
		}
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return CheckResult{
			Name:       "Audit log",
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Audit log is not writable: %v", err),
			Suggestion: fmt.Sprintf("Check permissions on %s", logPath),
		}
	}
	_ = f.Close()

	return CheckResult{
		Name:    "Audit log",
		Status:  CheckPass,
		Message: fmt.Sprintf("Audit log writable at %s", logPath),
	}
}

// calculateDoctorSummary calculates the counts of checks by status.
func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}
