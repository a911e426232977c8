package workflows

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/keyrun-dev/keyrun/internal/audit"
	"github.com/keyrun-dev/keyrun/internal/configs"
	"github.com/keyrun-dev/keyrun/internal/envfile"
	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/keyring"
	"github.com/keyrun-dev/keyrun/internal/launcher"
	logger "github.com/keyrun-dev/keyrun/internal/logging"
	"github.com/keyrun-dev/keyrun/internal/secrets"
)

// RunOptions configures the run workflow.
type RunOptions struct {
	// Invocation is the resolved configuration.
	Invocation *configs.Invocation

	// Argv is the child command and its arguments.
	Argv []string

	// Store is the keyring backend to resolve secrets from.
	Store keyring.Store

	// Capture overrides interactive capture; nil means prompt on stderr
	// and read stdin.
	Capture secrets.CaptureFunc

	// Logger reports progress in verbose and debug modes.
	Logger logger.Logger
}

// RunResult contains the outcome of a run operation.
type RunResult struct {
	// Source says where the secrets came from.
	Source secrets.Source

	// ArtifactPath is what the child saw in KEYRUN_ENV_FILE.
	ArtifactPath string

	// ExitCode is the child's exit code, propagated verbatim.
	ExitCode int
}

// Run resolves secrets, exposes them as an artifact, launches the child
// command, and cleans the artifact up afterwards.
//
// The child's non-zero exit comes back as a ChildExitError alongside a
// result; every other error means the child never ran (no partial state:
// the artifact is cleaned up even on failures after materialization).
//
// SIGINT and SIGTERM are caught for the artifact's whole lifetime. The
// child receives Ctrl-C through the shared process group and gets SIGTERM
// forwarded; the parent survives both so the deferred cleanup always runs.
func Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if len(opts.Argv) == 0 {
		return nil, kerrors.ErrNoCommand
	}
	inv := opts.Invocation

	resolution, err := secrets.Resolve(ctx, opts.Store, secrets.Options{
		File:    inv.SecretsFile,
		App:     inv.App,
		Capture: opts.Capture,
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	// Stay alive through SIGINT/SIGTERM from here on: an artifact is
	// about to exist and its cleanup must run.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	artifact, err := envfile.Materialize(resolution, inv.Mode, inv.SecretsFile)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cleanupErr := artifact.Cleanup(); cleanupErr != nil {
			opts.Logger.WarnfAlways("artifact cleanup failed: %v", cleanupErr)
		}
	}()

	opts.Logger.Infof("exposing secrets at %s (%s mode, source %s)", artifact.Path(), inv.Mode, resolution.Source)

	code, err := launcher.Launch(ctx, launcher.Options{
		Argv:        opts.Argv,
		EnvFilePath: artifact.Path(),
		ExtraFile:   artifact.ExtraFile(),
		Signals:     signals,
		Logger:      opts.Logger,
	})

	result := &RunResult{
		Source:       resolution.Source,
		ArtifactPath: artifact.Path(),
		ExitCode:     code,
	}

	entry := audit.NewEntry("run")
	entry.App = inv.App
	entry.Mode = string(inv.Mode)
	entry.Backend = inv.Backend
	entry.Source = string(resolution.Source)
	entry.Command = opts.Argv[0]
	// A spawn failure has no child code; record the invocation's own
	// exit code instead of a misleading zero.
	entry.ExitCode = kerrors.ExitCode(err)
	audit.Log(entry)

	if err != nil {
		return result, err
	}
	return result, nil
}
