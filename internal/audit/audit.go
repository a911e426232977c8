package audit

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/keyrun-dev/keyrun/internal/configs"
	"github.com/keyrun-dev/keyrun/internal/utils"
)

// Entry represents a single audit log entry. Secret content never appears
// here; only metadata about what keyrun did.
type Entry struct {
	Timestamp string `json:"ts"`             // RFC3339 with microseconds.
	RunID     string `json:"run"`            // Unique per invocation.
	User      string `json:"user,omitempty"` // System username.
	Host      string `json:"host,omitempty"` // System hostname.
	Operation string `json:"op"`             // Operation name (run, store, clear, ...).

	// Optional fields depending on operation.
	App      string `json:"app,omitempty"`       // Keyring entry identifier.
	Mode     string `json:"mode,omitempty"`      // file or pipe.
	Source   string `json:"source,omitempty"`    // Where run secrets came from.
	Backend  string `json:"backend,omitempty"`   // Keyring backend name.
	Command  string `json:"command,omitempty"`   // Child argv[0], never the full argv.
	ExitCode int    `json:"exit_code,omitempty"` // Child exit code for run.
}

// NewEntry creates an entry for op with a fresh run ID and the local
// identity fields populated.
func NewEntry(op string) Entry {
	entry := Entry{
		Operation: op,
		RunID:     uuid.New().String(),
	}
	if username, err := utils.GetUsername(); err == nil {
		entry.User = username
	}
	if hostname, err := utils.GetHostname(); err == nil {
		entry.Host = hostname
	}
	return entry
}

// Log appends an entry to the audit log.
// Best-effort: operations never fail because audit logging failed.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	logPath, err := LogPath()
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the audit log location under the keyrun data directory.
func LogPath() (string, error) {
	dataDir, err := configs.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "audit.jsonl"), nil
}

// ReadEntries reads all entries from the audit log.
// Returns nil when the log doesn't exist yet.
func ReadEntries() ([]Entry, error) {
	logPath, err := LogPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped to handle partial writes.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
