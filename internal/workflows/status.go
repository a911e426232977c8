package workflows

import (
	"context"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/keyrun-dev/keyrun/internal/audit"
	"github.com/keyrun-dev/keyrun/internal/configs"
	"github.com/keyrun-dev/keyrun/internal/envfile"
	"github.com/keyrun-dev/keyrun/internal/keyring"
	logger "github.com/keyrun-dev/keyrun/internal/logging"
)

// SecretsFileStatus describes the local secrets file.
type SecretsFileStatus struct {
	// Path is the configured secrets file location.
	Path string

	// Exists says whether something is at the path.
	Exists bool

	// IsDir flags the path being a directory, which blocks a run.
	IsDir bool

	// Mode holds the permission bits when the file exists.
	Mode fs.FileMode

	// Size is the file length in bytes.
	Size int64
}

// KeepMarkerStatus describes the keep marker for the secrets file.
type KeepMarkerStatus struct {
	// Path is the marker location next to the secrets file.
	Path string

	// Present says whether the marker exists.
	Present bool

	// CreatedAt and CreatedBy come from the marker metadata when it
	// parses; empty otherwise.
	CreatedAt string
	CreatedBy string
}

// KeyringStatus describes the keyring backend and the app's entry.
type KeyringStatus struct {
	// Backend is the backend name.
	Backend string

	// Available says whether the backend answered its availability probe.
	Available bool

	// Detail holds the probe failure when the backend is unavailable.
	Detail string

	// EntryExists says whether the keyring holds an entry for the app.
	EntryExists bool

	// Size is the entry length in bytes.
	Size int

	// Keys is the count of KEY names parsed from the entry; zero when
	// the content does not parse as KEY=VALUE pairs.
	Keys int
}

// StatusOptions configures the status workflow.
type StatusOptions struct {
	// Invocation is the resolved configuration.
	Invocation *configs.Invocation

	// Store is the keyring backend to inspect.
	Store keyring.Store

	// Recent caps how many audit entries are reported; zero means 5.
	Recent int

	// Logger reports progress in verbose and debug modes.
	Logger logger.Logger
}

// StatusResult contains the outcome of a status operation.
type StatusResult struct {
	// App is the keyring entry identifier.
	App string

	// Mode is the effective exposure mode.
	Mode configs.Mode

	// ProjectConfig is the discovered project config path, empty when
	// none was found.
	ProjectConfig string

	// File describes the local secrets file.
	File SecretsFileStatus

	// Marker describes the keep marker.
	Marker KeepMarkerStatus

	// Keyring describes the backend and the app's entry.
	Keyring KeyringStatus

	// Recent holds the latest audit entries for the app, newest first.
	Recent []audit.Entry
}

// Status reports everything a run would depend on: the effective
// configuration, the local secrets file, the keep marker, the keyring
// backend and entry, and recent activity from the audit log.
//
// Status never fails on an unavailable backend or a missing entry; those
// are findings, not errors.
func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inv := opts.Invocation

	limit := opts.Recent
	if limit <= 0 {
		limit = 5
	}

	return &StatusResult{
		App:           inv.App,
		Mode:          inv.Mode,
		ProjectConfig: inv.ProjectConfigPath,
		File:          inspectSecretsFile(inv.SecretsFile),
		Marker:        inspectKeepMarker(inv.SecretsFile),
		Keyring:       inspectKeyring(opts.Store, inv.App, opts.Logger),
		Recent:        recentAuditEntries(inv.App, limit, opts.Logger),
	}, nil
}

// inspectSecretsFile stats the local secrets file.
func inspectSecretsFile(path string) SecretsFileStatus {
	status := SecretsFileStatus{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		return status
	}
	status.Exists = true
	status.IsDir = info.IsDir()
	status.Mode = info.Mode().Perm()
	status.Size = info.Size()
	return status
}

// inspectKeepMarker stats the marker and reads its metadata when possible.
func inspectKeepMarker(secretsFile string) KeepMarkerStatus {
	status := KeepMarkerStatus{Path: envfile.KeepMarkerPath(secretsFile)}
	if _, err := os.Stat(status.Path); err != nil {
		return status
	}
	status.Present = true

	// Metadata is best-effort: presence alone is what cleanup honors.
	var marker keepMarker
	if err := configs.LoadTOML(status.Path, &marker); err == nil {
		status.CreatedAt = marker.CreatedAt
		status.CreatedBy = marker.CreatedBy
	}
	return status
}

// inspectKeyring probes the backend and inspects the app's entry.
func inspectKeyring(store keyring.Store, app string, log logger.Logger) KeyringStatus {
	status := KeyringStatus{Backend: store.Name()}

	if err := store.Available(); err != nil {
		status.Detail = err.Error()
		return status
	}
	status.Available = true

	content, err := store.Get(app)
	if err != nil {
		log.Debugf("keyring lookup for %s: %v", app, err)
		return status
	}
	status.EntryExists = true
	status.Size = len(content)

	parsed, err := godotenv.UnmarshalBytes(content)
	if err != nil {
		log.Debugf("keyring entry for %s does not parse as KEY=VALUE pairs: %v", app, err)
		return status
	}
	status.Keys = len(parsed)
	return status
}

// recentAuditEntries returns up to limit audit entries for the app,
// newest first. Audit problems are reported as an empty history.
func recentAuditEntries(app string, limit int, log logger.Logger) []audit.Entry {
	entries, err := audit.ReadEntries()
	if err != nil {
		log.Debugf("reading audit log: %v", err)
		return nil
	}

	var matched []audit.Entry
	for _, entry := range entries {
		if entry.App == app {
			matched = append(matched, entry)
		}
	}
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}

	// The log appends, so reverse for newest first.
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched
}
