package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/keyrun-dev/keyrun/internal/audit"
	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/keyring"
)

func TestStoreCapturesAndVerifies(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()

	result, err := Store(context.Background(), StoreOptions{
		Invocation: inv,
		Store:      store,
		Capture: func() ([]byte, error) {
			return []byte("A=1\nB=2\n"), nil
		},
	})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if result.App != "demo" {
		t.Errorf("Expected app %q, got %q", "demo", result.App)
	}
	if result.Size != len("A=1\nB=2\n") {
		t.Errorf("Expected size %d, got %d", len("A=1\nB=2\n"), result.Size)
	}
	if result.Overwritten {
		t.Error("A fresh entry should not count as overwritten")
	}

	stored, err := store.Get("demo")
	if err != nil {
		t.Fatalf("Entry should exist after store: %v", err)
	}
	if string(stored) != "A=1\nB=2\n" {
		t.Errorf("Stored %q, expected the captured content", stored)
	}
	if label := store.StoredLabel("demo"); label != "keyrun: demo" {
		t.Errorf("Expected label %q, got %q", "keyrun: demo", label)
	}
}

func TestStoreExistingEntryWithoutForce(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()
	if err := store.Set("demo", keyring.Label("demo"), []byte("OLD=1\n")); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	_, err := Store(context.Background(), StoreOptions{
		Invocation: inv,
		Store:      store,
		Capture: func() ([]byte, error) {
			t.Error("Capture should not run when the entry already exists")
			return nil, nil
		},
	})
	if !errors.Is(err, kerrors.ErrEntryExists) {
		t.Fatalf("Expected ErrEntryExists, got %v", err)
	}

	stored, _ := store.Get("demo")
	if string(stored) != "OLD=1\n" {
		t.Errorf("Existing entry must stay untouched, got %q", stored)
	}
}

func TestStoreForceOverwrites(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()
	if err := store.Set("demo", keyring.Label("demo"), []byte("OLD=1\n")); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	result, err := Store(context.Background(), StoreOptions{
		Invocation: inv,
		Store:      store,
		Force:      true,
		Capture: func() ([]byte, error) {
			return []byte("NEW=1\n"), nil
		},
	})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if !result.Overwritten {
		t.Error("Replacing an entry should count as overwritten")
	}
	stored, _ := store.Get("demo")
	if string(stored) != "NEW=1\n" {
		t.Errorf("Expected the new content, got %q", stored)
	}
}

func TestStoreEmptyCapture(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()

	_, err := Store(context.Background(), StoreOptions{
		Invocation: inv,
		Store:      store,
		Capture: func() ([]byte, error) {
			return []byte(" \n"), nil
		},
	})
	if !errors.Is(err, kerrors.ErrNoSecretsProvided) {
		t.Fatalf("Expected ErrNoSecretsProvided, got %v", err)
	}

	for _, call := range store.Calls() {
		if call == "set demo" {
			t.Error("Nothing should be stored after an empty capture")
		}
	}
}

func TestStoreUnavailable(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()
	store.AvailableErr = errors.New("secret-tool not found in PATH")

	_, err := Store(context.Background(), StoreOptions{
		Invocation: inv,
		Store:      store,
	})
	if !errors.Is(err, kerrors.ErrStoreUnavailable) {
		t.Fatalf("Expected ErrStoreUnavailable, got %v", err)
	}
}

func TestStoreVerifyFailure(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()
	store.GetErr = errors.New("keyring locked")

	_, err := Store(context.Background(), StoreOptions{
		Invocation: inv,
		Store:      store,
		Capture: func() ([]byte, error) {
			return []byte("A=1\n"), nil
		},
	})
	if !errors.Is(err, kerrors.ErrKeyringRetrieveFailed) {
		t.Fatalf("Expected ErrKeyringRetrieveFailed, got %v", err)
	}
}

func TestStoreWritesAuditEntry(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()

	_, err := Store(context.Background(), StoreOptions{
		Invocation: inv,
		Store:      store,
		Capture: func() ([]byte, error) {
			return []byte("A=1\n"), nil
		},
	})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	entries, err := audit.ReadEntries()
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Operation != "store" {
		t.Errorf("Expected operation %q, got %q", "store", entries[0].Operation)
	}
	if entries[0].App != "demo" {
		t.Errorf("Expected app %q, got %q", "demo", entries[0].App)
	}
}
