package cmd

import (
	"context"
	"errors"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/secrets"
	"github.com/keyrun-dev/keyrun/internal/ui"
	"github.com/keyrun-dev/keyrun/internal/workflows"

	"github.com/spf13/cobra"
)

var storeForce bool

func init() {
	storeCmd.Flags().BoolVarP(&storeForce, "force", "f", false, "replace an existing keyring entry")
}

// resetStoreCommandState resets the store command's global state for testing.
func resetStoreCommandState() {
	storeForce = false
	storeCmd.SilenceErrors = false
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Capture secrets and persist them to the keyring",
	Long: `Reads KEY=VALUE lines from stdin (with a prompt on a terminal, silently
from a pipe) and writes them to the keyring entry for the app. The entry
is read back afterwards to confirm the write was durable.

An existing entry is only replaced with --force.

Examples:
  keyrun store                          # type secrets, end with Ctrl-D
  keyrun store < prod.env               # load from a file
  keyrun store --app billing --force    # replace the billing entry`,
	RunE: runStore,
}

func runStore(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting store command")

	spinner, cleanup := startSpinner("Storing secrets...", verbose)
	defer cleanup()

	inv, err := buildInvocation()
	if err != nil {
		spinner.FinalMSG = ui.Error.Sprint("✗") + " " + err.Error()
		return fail(cmd, err)
	}
	store, err := openStore(inv)
	if err != nil {
		spinner.FinalMSG = ui.Error.Sprint("✗") + " " + err.Error()
		return fail(cmd, err)
	}

	result, err := workflows.Store(context.Background(), workflows.StoreOptions{
		Invocation: inv,
		Store:      store,
		Force:      storeForce,
		Capture: func() ([]byte, error) {
			// The prompt owns the terminal while it reads.
			resume := pauseSpinner(spinner)
			defer resume()
			return secrets.CaptureInteractive()
		},
		Logger: Logger,
	})
	if err != nil {
		spinner.FinalMSG = formatStoreError(err, inv.App)
		return fail(cmd, err)
	}

	if result.Overwritten {
		spinner.FinalMSG = ui.Success.Sprint("✓") + " Replaced keyring entry " + ui.Highlight.Sprint(result.App) +
			" " + ui.Muted.Sprintf("%d bytes", result.Size)
	} else {
		spinner.FinalMSG = ui.Success.Sprint("✓") + " Stored keyring entry " + ui.Highlight.Sprint(result.App) +
			" " + ui.Muted.Sprintf("%d bytes", result.Size) + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keyrun run -- <command>") + " to use it"
	}
	return nil
}

// formatStoreError formats a store error for display to the user.
func formatStoreError(err error, app string) string {
	switch {
	case errors.Is(err, kerrors.ErrEntryExists):
		return ui.Error.Sprint("✗") + " A keyring entry for " + ui.Highlight.Sprint(app) + " already exists\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keyrun store --force") + " to replace it"

	case errors.Is(err, kerrors.ErrNoSecretsProvided):
		return ui.Error.Sprint("✗") + " No secrets provided, nothing was stored"

	case errors.Is(err, kerrors.ErrStoreUnavailable):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keyrun doctor") + " to diagnose"

	case errors.Is(err, kerrors.ErrKeyringStoreFailed):
		return ui.Error.Sprint("✗") + " " + err.Error()

	case errors.Is(err, kerrors.ErrKeyringRetrieveFailed):
		return ui.Error.Sprint("✗") + " Stored, but the read-back failed: " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " The entry may not be durable; run " + ui.Code.Sprint("keyrun show") + " to inspect it"

	default:
		return ui.Error.Sprint("✗") + " Failed to store secrets: " + err.Error()
	}
}
