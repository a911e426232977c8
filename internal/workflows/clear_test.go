package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/keyrun-dev/keyrun/internal/audit"
	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/keyring"
)

func TestClearRemovesEntry(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()
	if err := store.Set("demo", keyring.Label("demo"), []byte("A=1\n")); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	result, err := Clear(context.Background(), ClearOptions{
		Invocation: inv,
		Store:      store,
	})
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if result.App != "demo" {
		t.Errorf("Expected app %q, got %q", "demo", result.App)
	}

	if _, err := store.Get("demo"); !errors.Is(err, kerrors.ErrSecretNotFound) {
		t.Errorf("Entry should be gone after clear, got %v", err)
	}

	entries, err := audit.ReadEntries()
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	if len(entries) != 1 || entries[0].Operation != "clear" {
		t.Errorf("Expected one clear audit entry, got %v", entries)
	}
}

func TestClearMissingEntry(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()

	_, err := Clear(context.Background(), ClearOptions{
		Invocation: inv,
		Store:      store,
	})
	if !errors.Is(err, kerrors.ErrSecretNotFound) {
		t.Fatalf("Expected ErrSecretNotFound, got %v", err)
	}
}

func TestClearUnavailableStore(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()
	store.AvailableErr = errors.New("secret-tool not found in PATH")

	_, err := Clear(context.Background(), ClearOptions{
		Invocation: inv,
		Store:      store,
	})
	if !errors.Is(err, kerrors.ErrStoreUnavailable) {
		t.Fatalf("Expected ErrStoreUnavailable, got %v", err)
	}
}
