package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	logger "github.com/keyrun-dev/keyrun/internal/logging"
)

// EnvFileVar is the single environment variable keyrun adds to the child:
// the path of the secrets artifact. The name is identical in file and pipe
// modes, so downstream tooling needs no mode awareness.
const EnvFileVar = "KEYRUN_ENV_FILE"

// Options configures a child process launch.
type Options struct {
	// Argv is the child command and its arguments. Must be non-empty.
	Argv []string

	// EnvFilePath is the artifact path exported as KEYRUN_ENV_FILE.
	EnvFilePath string

	// ExtraFile, when set, is inherited by the child as fd 3.
	ExtraFile *os.File

	// Signals carries SIGINT/SIGTERM caught by the caller since artifact
	// creation. SIGTERM is forwarded to the child; SIGINT is dropped
	// here because the child already receives it through the shared
	// foreground process group.
	Signals <-chan os.Signal

	// Logger reports launch details in debug mode.
	Logger logger.Logger
}

// Launch spawns the child with stdin, stdout, and stderr inherited and
// waits for it to finish. The returned int is the child's exit code
// verbatim; a child killed by signal N maps to 128+N. A non-zero exit
// comes back as a ChildExitError so callers can propagate the code
// without mistaking it for a keyrun failure.
func Launch(ctx context.Context, opts Options) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(opts.Argv) == 0 {
		return 0, kerrors.ErrNoCommand
	}

	cmd := exec.Command(opts.Argv[0], opts.Argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), EnvFileVar+"="+opts.EnvFilePath)
	if opts.ExtraFile != nil {
		cmd.ExtraFiles = []*os.File{opts.ExtraFile}
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", opts.Argv[0], err)
	}
	opts.Logger.Debugf("started %s (pid %d)", opts.Argv[0], cmd.Process.Pid)

	if opts.Signals != nil {
		relayDone := make(chan struct{})
		defer close(relayDone)
		go func() {
			for {
				select {
				case sig, ok := <-opts.Signals:
					if !ok {
						return
					}
					if sig == syscall.SIGTERM {
						_ = cmd.Process.Signal(syscall.SIGTERM)
					}
				case <-relayDone:
					return
				}
			}
		}()
	}

	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Killed by a signal: shell convention 128+N.
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				code = 128 + int(ws.Signal())
			}
		}
		return code, &kerrors.ChildExitError{Code: code}
	}

	return 0, fmt.Errorf("failed to wait for %s: %w", opts.Argv[0], err)
}
