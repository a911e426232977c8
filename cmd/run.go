package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/ui"
	"github.com/keyrun-dev/keyrun/internal/workflows"

	"github.com/spf13/cobra"
)

func init() {
	// Stop flag parsing at the first positional so child flags pass
	// through without quoting: keyrun run env -i works like
	// keyrun run -- env -i.
	runCmd.Flags().SetInterspersed(false)
}

// resetRunCommandState resets the run command's global state for testing.
func resetRunCommandState() {
	runCmd.SilenceErrors = false
}

var runCmd = &cobra.Command{
	Use:   "run [flags] -- command [args...]",
	Short: "Run a command with secrets exposed through an env file",
	Long: `Resolves secrets and launches the command with $KEYRUN_ENV_FILE pointing
at an env file holding them. The file is removed when the command exits,
unless it already existed or a keep marker protects it.

Resolution order:
  1. An existing local secrets file (used as-is, never deleted)
  2. The keyring entry for the app
  3. Interactive capture, stored to the keyring for next time

The command's stdin, stdout, and stderr are passed through untouched, and
its exit code becomes keyrun's exit code.

Examples:
  keyrun run -- npm start
  keyrun run --app billing -- ./server --port 8080
  keyrun run --mode pipe -- sh -c 'cat "$KEYRUN_ENV_FILE"'`,
	Args: cobra.ArbitraryArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting run command")

	argv := args
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		argv = args[dash:]
	}

	inv, err := buildInvocation()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Error.Sprint("✗")+" "+err.Error())
		return fail(cmd, err)
	}
	Logger.Debugf("Resolved invocation: app=%s mode=%s backend=%s file=%s", inv.App, inv.Mode, inv.Backend, inv.SecretsFile)

	store, err := openStore(inv)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Error.Sprint("✗")+" "+err.Error())
		return fail(cmd, err)
	}

	// No spinner here: the terminal belongs to the child command, and to
	// the capture prompt before it.
	result, err := workflows.Run(context.Background(), workflows.RunOptions{
		Invocation: inv,
		Argv:       argv,
		Store:      store,
		Logger:     Logger,
	})
	if err != nil {
		var childErr *kerrors.ChildExitError
		if errors.As(err, &childErr) {
			// The child already reported its own failure; keyrun adds
			// nothing and propagates the exit code through main.
			Logger.Debugf("Child exited with code %d", childErr.Code)
			return fail(cmd, err)
		}
		fmt.Fprintln(os.Stderr, formatRunError(err))
		return fail(cmd, err)
	}

	Logger.Infof("Command finished: source=%s artifact=%s", result.Source, result.ArtifactPath)
	return nil
}

// formatRunError formats a run error for display on stderr.
func formatRunError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNoCommand):
		return ui.Error.Sprint("✗") + " No command given\n" +
			ui.Info.Sprint("→") + " Usage: " + ui.Code.Sprint("keyrun run [flags] -- command [args...]")

	case errors.Is(err, kerrors.ErrStoreUnavailable):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keyrun doctor") + " to diagnose"

	case errors.Is(err, kerrors.ErrNoSecretsProvided):
		return ui.Error.Sprint("✗") + " No secrets provided\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keyrun store") + " first, or create a secrets file"

	default:
		return ui.Error.Sprint("✗") + " " + err.Error()
	}
}
