package workflows

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/keyrun-dev/keyrun/internal/audit"
	"github.com/keyrun-dev/keyrun/internal/configs"
	"github.com/keyrun-dev/keyrun/internal/envfile"
	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	logger "github.com/keyrun-dev/keyrun/internal/logging"
	"github.com/keyrun-dev/keyrun/internal/utils"
)

// keepMarker is the metadata written into a keep marker file. Cleanup
// only ever checks the marker's presence; the metadata exists so status
// can say who created it and when.
type keepMarker struct {
	CreatedAt string `toml:"created_at"`
	CreatedBy string `toml:"created_by"`
}

// KeepOptions configures the keep workflow.
type KeepOptions struct {
	// Invocation is the resolved configuration.
	Invocation *configs.Invocation

	// Remove deletes the marker instead of creating it.
	Remove bool

	// Logger reports progress in verbose and debug modes.
	Logger logger.Logger
}

// KeepResult contains the outcome of a keep operation.
type KeepResult struct {
	// MarkerPath is the marker file next to the secrets file.
	MarkerPath string

	// Removed says the marker was deleted rather than created.
	Removed bool
}

// Keep creates the keep marker for the invocation's secrets file, or
// removes it with Remove. While the marker exists, a run that wrote the
// secrets file leaves it behind instead of deleting it.
//
// Returns ErrKeepMarkerExists (wrapped) when creating a marker that is
// already there, and ErrKeepMarkerNotFound (wrapped) when removing one
// that is not.
func Keep(ctx context.Context, opts KeepOptions) (*KeepResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inv := opts.Invocation
	markerPath := envfile.KeepMarkerPath(inv.SecretsFile)

	if opts.Remove {
		if _, err := os.Stat(markerPath); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", kerrors.ErrKeepMarkerNotFound, markerPath)
			}
			return nil, fmt.Errorf("failed to check keep marker %s: %w", markerPath, err)
		}
		if err := os.Remove(markerPath); err != nil {
			return nil, fmt.Errorf("removing keep marker %s: %w", markerPath, err)
		}
		opts.Logger.Infof("removed keep marker %s", markerPath)

		entry := audit.NewEntry("keep-remove")
		entry.App = inv.App
		audit.Log(entry)

		return &KeepResult{MarkerPath: markerPath, Removed: true}, nil
	}

	if _, err := os.Stat(markerPath); err == nil {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrKeepMarkerExists, markerPath)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to check keep marker %s: %w", markerPath, err)
	}

	marker := keepMarker{CreatedAt: time.Now().UTC().Format(time.RFC3339)}
	if username, err := utils.GetUsername(); err == nil {
		marker.CreatedBy = username
	}
	if err := configs.SaveTOML(markerPath, marker); err != nil {
		return nil, fmt.Errorf("writing keep marker %s: %w", markerPath, err)
	}
	opts.Logger.Infof("created keep marker %s", markerPath)

	entry := audit.NewEntry("keep")
	entry.App = inv.App
	audit.Log(entry)

	return &KeepResult{MarkerPath: markerPath}, nil
}
