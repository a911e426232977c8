package workflows

import (
	"context"
	"fmt"

	"github.com/keyrun-dev/keyrun/internal/audit"
	"github.com/keyrun-dev/keyrun/internal/configs"
	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/keyring"
	logger "github.com/keyrun-dev/keyrun/internal/logging"
)

// ClearOptions configures the clear workflow.
type ClearOptions struct {
	// Invocation is the resolved configuration.
	Invocation *configs.Invocation

	// Store is the keyring backend to delete from.
	Store keyring.Store

	// Logger reports progress in verbose and debug modes.
	Logger logger.Logger
}

// ClearResult contains the outcome of a clear operation.
type ClearResult struct {
	// App is the keyring entry identifier that was removed.
	App string
}

// Clear deletes the keyring entry for the invocation's app identifier.
//
// Returns an error wrapping ErrSecretNotFound when no entry exists, so
// the caller can tell "nothing to do" apart from a backend failure.
func Clear(ctx context.Context, opts ClearOptions) (*ClearResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inv := opts.Invocation

	if err := opts.Store.Available(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrStoreUnavailable, err)
	}

	if err := opts.Store.Delete(inv.App); err != nil {
		return nil, err
	}
	opts.Logger.Infof("removed keyring entry for %s", inv.App)

	entry := audit.NewEntry("clear")
	entry.App = inv.App
	entry.Backend = inv.Backend
	audit.Log(entry)

	return &ClearResult{App: inv.App}, nil
}
