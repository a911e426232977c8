package workflows

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/keyrun-dev/keyrun/internal/audit"
	"github.com/keyrun-dev/keyrun/internal/configs"
	"github.com/keyrun-dev/keyrun/internal/keyring"
)

func TestStatusFullReport(t *testing.T) {
	inv := testInvocation(t)

	if err := os.WriteFile(inv.SecretsFile, []byte("LOCAL=1\n"), 0600); err != nil {
		t.Fatalf("Failed to write secrets file: %v", err)
	}
	if _, err := Keep(context.Background(), KeepOptions{Invocation: inv}); err != nil {
		t.Fatalf("Keep failed: %v", err)
	}

	store := keyring.NewMemory()
	if err := store.Set("demo", keyring.Label("demo"), []byte("A=1\nB=2\n")); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	audit.Log(audit.Entry{Operation: "run", App: "demo", Command: "sh"})
	audit.Log(audit.Entry{Operation: "run", App: "other"})

	result, err := Status(context.Background(), StatusOptions{
		Invocation: inv,
		Store:      store,
	})
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	if result.App != "demo" {
		t.Errorf("Expected app %q, got %q", "demo", result.App)
	}
	if result.Mode != configs.ModeFile {
		t.Errorf("Expected mode %q, got %q", configs.ModeFile, result.Mode)
	}

	if !result.File.Exists {
		t.Error("Secrets file should be reported as existing")
	}
	if result.File.Mode != 0600 {
		t.Errorf("Expected mode 0600, got %04o", result.File.Mode)
	}
	if result.File.Size != int64(len("LOCAL=1\n")) {
		t.Errorf("Expected size %d, got %d", len("LOCAL=1\n"), result.File.Size)
	}

	if !result.Marker.Present {
		t.Error("Keep marker should be reported as present")
	}
	if result.Marker.CreatedAt == "" {
		t.Error("Marker metadata should carry created_at")
	}

	if !result.Keyring.Available {
		t.Error("Backend should be reported as available")
	}
	if !result.Keyring.EntryExists {
		t.Error("Keyring entry should be reported as existing")
	}
	if result.Keyring.Keys != 2 {
		t.Errorf("Expected 2 parsed keys, got %d", result.Keyring.Keys)
	}
	if result.Keyring.Size != len("A=1\nB=2\n") {
		t.Errorf("Expected entry size %d, got %d", len("A=1\nB=2\n"), result.Keyring.Size)
	}

	// The keep workflow logged for demo too, so: keep, then run.
	if len(result.Recent) != 2 {
		t.Fatalf("Expected 2 recent entries for demo, got %d", len(result.Recent))
	}
	if result.Recent[0].Operation != "run" {
		t.Errorf("Newest entry should come first, got %q", result.Recent[0].Operation)
	}
	if result.Recent[1].Operation != "keep" {
		t.Errorf("Expected the keep entry second, got %q", result.Recent[1].Operation)
	}
}

func TestStatusNothingConfigured(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()

	result, err := Status(context.Background(), StatusOptions{
		Invocation: inv,
		Store:      store,
	})
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	if result.File.Exists {
		t.Error("Secrets file should be reported as missing")
	}
	if result.Marker.Present {
		t.Error("Keep marker should be reported as absent")
	}
	if !result.Keyring.Available {
		t.Error("Backend should be reported as available")
	}
	if result.Keyring.EntryExists {
		t.Error("Keyring entry should be reported as missing")
	}
	if len(result.Recent) != 0 {
		t.Errorf("Expected no recent entries, got %v", result.Recent)
	}
}

func TestStatusUnavailableBackend(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()
	store.AvailableErr = errors.New("secret-tool not found in PATH")

	result, err := Status(context.Background(), StatusOptions{
		Invocation: inv,
		Store:      store,
	})
	if err != nil {
		t.Fatalf("Status must not fail on an unavailable backend: %v", err)
	}

	if result.Keyring.Available {
		t.Error("Backend should be reported as unavailable")
	}
	if result.Keyring.Detail == "" {
		t.Error("Unavailability should carry the probe failure")
	}
	if result.Keyring.EntryExists {
		t.Error("No entry should be reported without a backend")
	}
}

func TestStatusRecentLimit(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()

	for _, command := range []string{"c1", "c2", "c3", "c4", "c5", "c6"} {
		audit.Log(audit.Entry{Operation: "run", App: "demo", Command: command})
	}

	result, err := Status(context.Background(), StatusOptions{
		Invocation: inv,
		Store:      store,
		Recent:     3,
	})
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	if len(result.Recent) != 3 {
		t.Fatalf("Expected 3 recent entries, got %d", len(result.Recent))
	}
	for i, expected := range []string{"c6", "c5", "c4"} {
		if result.Recent[i].Command != expected {
			t.Errorf("Entry %d: expected command %q, got %q", i, expected, result.Recent[i].Command)
		}
	}
}

func TestStatusDirectoryAtSecretsPath(t *testing.T) {
	inv := testInvocation(t)
	if err := os.Mkdir(inv.SecretsFile, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	result, err := Status(context.Background(), StatusOptions{
		Invocation: inv,
		Store:      keyring.NewMemory(),
	})
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	if !result.File.Exists || !result.File.IsDir {
		t.Errorf("A directory at the secrets path should be reported, got %+v", result.File)
	}
}
