package workflows

import (
	"context"
	"fmt"

	"github.com/keyrun-dev/keyrun/internal/audit"
	"github.com/keyrun-dev/keyrun/internal/configs"
	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/keyring"
	logger "github.com/keyrun-dev/keyrun/internal/logging"
	"github.com/keyrun-dev/keyrun/internal/secrets"
)

// StoreOptions configures the store workflow.
type StoreOptions struct {
	// Invocation is the resolved configuration.
	Invocation *configs.Invocation

	// Store is the keyring backend to write to.
	Store keyring.Store

	// Capture reads the secret content; nil means prompt on stderr and
	// read stdin.
	Capture secrets.CaptureFunc

	// Force overwrites an existing entry.
	Force bool

	// Logger reports progress in verbose and debug modes.
	Logger logger.Logger
}

// StoreResult contains the outcome of a store operation.
type StoreResult struct {
	// App is the keyring entry identifier written to.
	App string

	// Size is the stored content length in bytes.
	Size int

	// Overwritten says whether an existing entry was replaced.
	Overwritten bool
}

// Store captures secret content and writes it to the keyring under the
// invocation's app identifier, then reads it back to confirm the write
// was durable.
//
// An existing non-empty entry is only replaced with Force; otherwise
// ErrEntryExists is returned and nothing is written.
func Store(ctx context.Context, opts StoreOptions) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inv := opts.Invocation

	if err := opts.Store.Available(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrStoreUnavailable, err)
	}

	existing := false
	content, err := opts.Store.Get(inv.App)
	if err == nil && !secrets.NewBlob(content).Empty() {
		existing = true
		if !opts.Force {
			return nil, fmt.Errorf("%w for %q", kerrors.ErrEntryExists, inv.App)
		}
	}

	capture := opts.Capture
	if capture == nil {
		capture = secrets.CaptureInteractive
	}
	captured, err := capture()
	if err != nil {
		return nil, err
	}
	blob := secrets.NewBlob(captured)
	if blob.Empty() {
		return nil, kerrors.ErrNoSecretsProvided
	}

	if err := opts.Store.Set(inv.App, keyring.Label(inv.App), blob.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrKeyringStoreFailed, err)
	}

	stored, err := opts.Store.Get(inv.App)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrKeyringRetrieveFailed, err)
	}
	opts.Logger.Infof("stored secrets for %s in the keyring", inv.App)

	entry := audit.NewEntry("store")
	entry.App = inv.App
	entry.Backend = inv.Backend
	audit.Log(entry)

	return &StoreResult{
		App:         inv.App,
		Size:        len(stored),
		Overwritten: existing,
	}, nil
}
