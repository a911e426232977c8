package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
	"github.com/keyrun-dev/keyrun/internal/secrets"
	"github.com/keyrun-dev/keyrun/internal/ui"
	"github.com/keyrun-dev/keyrun/internal/utils"
	"github.com/keyrun-dev/keyrun/internal/workflows"

	"github.com/spf13/cobra"
)

var showUnmask bool

func init() {
	showCmd.Flags().BoolVar(&showUnmask, "unmask", false, "print the raw secret content instead of masked keys")
}

// resetShowCommandState resets the show command's global state for testing.
func resetShowCommandState() {
	showUnmask = false
	showCmd.SilenceErrors = false
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show which secrets a run would use",
	Long: `Reads the secrets a run would resolve, without launching anything, and
lists the KEY names with their values masked. The lookup order matches
the run command: an existing local secrets file wins, otherwise the
keyring entry for the app.

With --unmask the raw content is written to stdout verbatim, suitable
for piping.`,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting show command")

	spinner, cleanup := startSpinner("Reading secrets...", verbose)
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

	result, err := workflows.Show(context.Background(), workflows.ShowOptions{
		Invocation: inv,
		Store:      store,
		Unmask:     showUnmask,
		Logger:     Logger,
	})
	if err != nil {
		spinner.FinalMSG = formatShowError(err, inv.App)
		return fail(cmd, err)
	}

	spinner.FinalMSG = ""
	cleanup()

	if showUnmask {
		// Raw bytes, no decoration: stdout may be a pipe.
		if _, err := os.Stdout.Write(result.Blob.Bytes()); err != nil {
			return fail(cmd, Logger.ErrorfAndReturn("Failed to write secrets: %v", err))
		}
		return nil
	}

	printShowResult(result)
	return nil
}

// printShowResult prints the masked key listing.
func printShowResult(result *workflows.ShowResult) {
	switch result.Source {
	case secrets.SourceLocalFile:
		fmt.Printf("Secrets for %s %s\n", ui.Highlight.Sprint(result.App), ui.Muted.Sprintf("from %s", result.Path))
	default:
		fmt.Printf("Secrets for %s %s\n", ui.Highlight.Sprint(result.App), ui.Muted.Sprint("from the keyring"))
	}
	fmt.Println()

	for _, key := range result.Keys {
		fmt.Printf("  %s=%s\n", key, utils.MaskValue(""))
	}

	fmt.Println()
	fmt.Printf("%d key(s). Run %s to print the values.\n", len(result.Keys), ui.Code.Sprint("keyrun show --unmask"))
}

// formatShowError formats a show error for display to the user.
func formatShowError(err error, app string) string {
	switch {
	case errors.Is(err, kerrors.ErrSecretNotFound):
		return ui.Error.Sprint("✗") + " Nothing stored for " + ui.Highlight.Sprint(app) + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keyrun store") + " to add secrets"

	case errors.Is(err, kerrors.ErrStoreUnavailable):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keyrun doctor") + " to diagnose"

	default:
		return ui.Error.Sprint("✗") + " Failed to read secrets: " + err.Error()
	}
}
