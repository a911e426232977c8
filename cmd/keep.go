package cmd

import (
	"context"
	"errors"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/ui"
	"github.com/keyrun-dev/keyrun/internal/workflows"

	"github.com/spf13/cobra"
)

var keepRemove bool

func init() {
	keepCmd.Flags().BoolVar(&keepRemove, "remove", false, "remove the keep marker instead of creating it")
}

// resetKeepCommandState resets the keep command's global state for testing.
func resetKeepCommandState() {
	keepRemove = false
	keepCmd.SilenceErrors = false
}

var keepCmd = &cobra.Command{
	Use:   "keep",
	Short: "Protect the secrets file from run cleanup",
	Long: `Creates a keep marker next to the secrets file. While the marker exists,
a run that wrote the secrets file leaves it behind instead of deleting it,
so the resolved content can be inspected between runs.

Use --remove to delete the marker and restore normal cleanup.`,
	RunE: runKeep,
}

func runKeep(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting keep command")

	spinner, cleanup := startSpinner("Updating keep marker...", verbose)
	defer cleanup()

	inv, err := buildInvocation()
	if err != nil {
		spinner.FinalMSG = ui.Error.Sprint("✗") + " " + err.Error()
		return fail(cmd, err)
	}

	result, err := workflows.Keep(context.Background(), workflows.KeepOptions{
		Invocation: inv,
		Remove:     keepRemove,
		Logger:     Logger,
	})
	if err != nil {
		spinner.FinalMSG = formatKeepError(err)
		return fail(cmd, err)
	}

	if result.Removed {
		spinner.FinalMSG = ui.Success.Sprint("✓") + " Keep marker removed\n" +
			ui.Info.Sprint("→") + " The next run cleans up " + ui.Path.Sprint(inv.SecretsFile) + " again"
	} else {
		spinner.FinalMSG = ui.Success.Sprint("✓") + " Keep marker created at " + ui.Path.Sprint(result.MarkerPath) + "\n" +
			ui.Info.Sprint("→") + " Runs now leave " + ui.Path.Sprint(inv.SecretsFile) + " in place after exit"
	}
	return nil
}

// formatKeepError formats a keep error for display to the user.
func formatKeepError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrKeepMarkerExists):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keyrun keep --remove") + " to remove it"

	case errors.Is(err, kerrors.ErrKeepMarkerNotFound):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Nothing to remove; run " + ui.Code.Sprint("keyrun status") + " to check"

	default:
		return ui.Error.Sprint("✗") + " Failed to update keep marker: " + err.Error()
	}
}
