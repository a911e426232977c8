package workflows

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/keyring"
	"github.com/keyrun-dev/keyrun/internal/secrets"
)

func TestShowKeyringSource(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()
	if err := store.Set("demo", keyring.Label("demo"), []byte("ZEBRA=z\nAPPLE=a\nMANGO=m\n")); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	result, err := Show(context.Background(), ShowOptions{
		Invocation: inv,
		Store:      store,
	})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	if result.Source != secrets.SourceKeyring {
		t.Errorf("Expected source %q, got %q", secrets.SourceKeyring, result.Source)
	}
	expected := []string{"APPLE", "MANGO", "ZEBRA"}
	if !reflect.DeepEqual(result.Keys, expected) {
		t.Errorf("Expected sorted keys %v, got %v", expected, result.Keys)
	}
	if result.Blob.Reveal() != "ZEBRA=z\nAPPLE=a\nMANGO=m\n" {
		t.Errorf("Blob does not hold the raw content: %q", result.Blob.Reveal())
	}
}

func TestShowLocalFileWins(t *testing.T) {
	inv := testInvocation(t)
	if err := os.WriteFile(inv.SecretsFile, []byte("LOCAL=1\n"), 0600); err != nil {
		t.Fatalf("Failed to write secrets file: %v", err)
	}

	store := keyring.NewMemory()
	if err := store.Set("demo", keyring.Label("demo"), []byte("KEYRING=1\n")); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	result, err := Show(context.Background(), ShowOptions{
		Invocation: inv,
		Store:      store,
	})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	if result.Source != secrets.SourceLocalFile {
		t.Errorf("Expected source %q, got %q", secrets.SourceLocalFile, result.Source)
	}
	if result.Path != inv.SecretsFile {
		t.Errorf("Expected path %q, got %q", inv.SecretsFile, result.Path)
	}
	if len(result.Keys) != 1 || result.Keys[0] != "LOCAL" {
		t.Errorf("Expected the local file's keys, got %v", result.Keys)
	}
	if calls := store.Calls(); len(calls) != 0 {
		t.Errorf("Keyring should never be contacted for a local file, got %v", calls)
	}
}

func TestShowUnmaskSkipsParsing(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()

	// Content that is not KEY=VALUE at all; unmask must still hand it over.
	raw := "not an env file\x00binary"
	if err := store.Set("demo", keyring.Label("demo"), []byte(raw)); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	result, err := Show(context.Background(), ShowOptions{
		Invocation: inv,
		Store:      store,
		Unmask:     true,
	})
	if err != nil {
		t.Fatalf("Show with unmask failed: %v", err)
	}

	if len(result.Keys) != 0 {
		t.Errorf("Unmask should skip parsing, got keys %v", result.Keys)
	}
	if result.Blob.Reveal() != raw {
		t.Errorf("Expected the verbatim blob, got %q", result.Blob.Reveal())
	}
}

func TestShowNothingStored(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()

	_, err := Show(context.Background(), ShowOptions{
		Invocation: inv,
		Store:      store,
	})
	if !errors.Is(err, kerrors.ErrSecretNotFound) {
		t.Fatalf("Expected ErrSecretNotFound, got %v", err)
	}
}

func TestShowUnavailableStore(t *testing.T) {
	inv := testInvocation(t)
	store := keyring.NewMemory()
	store.AvailableErr = errors.New("secret-tool not found in PATH")

	_, err := Show(context.Background(), ShowOptions{
		Invocation: inv,
		Store:      store,
	})
	if !errors.Is(err, kerrors.ErrStoreUnavailable) {
		t.Fatalf("Expected ErrStoreUnavailable, got %v", err)
	}
}
