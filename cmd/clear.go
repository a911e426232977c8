package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/ui"
	"github.com/keyrun-dev/keyrun/internal/workflows"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var clearYes bool

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
}

// resetClearCommandState resets the clear command's global state for testing.
func resetClearCommandState() {
	clearYes = false
	clearCmd.SilenceErrors = false
}

// confirmClear prompts the user to confirm deleting the keyring entry.
// Returns true if the user confirms, false otherwise.
func confirmClear(s *spinner.Spinner, app string) bool {
	resume := pauseSpinner(s)
	defer resume()

	fmt.Printf("\n%s This deletes the keyring entry for %s. There is no undo.\n", ui.Warning.Sprint("Warning:"), ui.Highlight.Sprint(app))
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Do you want to continue? [y/N]: ")
	response, err := reader.ReadString('\n')
	if err != nil {
		Logger.Errorf("Failed to read response: %v", err)
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))

	return response == "y" || response == "yes"
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the keyring entry for the app",
	Long: `Deletes the keyring entry for the app after a confirmation prompt.
Local secrets files are never touched; only the keyring entry goes away.

Use --yes to skip the prompt in scripts.`,
	RunE: runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting clear command")

	spinner, cleanup := startSpinner("Clearing keyring entry...", verbose)
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

	if !clearYes && !confirmClear(spinner, inv.App) {
		spinner.FinalMSG = ui.Info.Sprint("ℹ") + " Clear cancelled, nothing was deleted"
		return nil
	}

	result, err := workflows.Clear(context.Background(), workflows.ClearOptions{
		Invocation: inv,
		Store:      store,
		Logger:     Logger,
	})
	if err != nil {
		spinner.FinalMSG = formatClearError(err, inv.App)
		return fail(cmd, err)
	}

	spinner.FinalMSG = ui.Success.Sprint("✓") + " Deleted keyring entry " + ui.Highlight.Sprint(result.App)
	return nil
}

// formatClearError formats a clear error for display to the user.
func formatClearError(err error, app string) string {
	switch {
	case errors.Is(err, kerrors.ErrSecretNotFound):
		return ui.Error.Sprint("✗") + " No keyring entry for " + ui.Highlight.Sprint(app) + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keyrun status") + " to see what is stored"

	case errors.Is(err, kerrors.ErrStoreUnavailable):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keyrun doctor") + " to diagnose"

	default:
		return ui.Error.Sprint("✗") + " Failed to clear keyring entry: " + err.Error()
	}
}
