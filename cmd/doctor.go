package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/keyrun-dev/keyrun/internal/configs"
	"github.com/keyrun-dev/keyrun/internal/ui"
	"github.com/keyrun-dev/keyrun/internal/utils"
	"github.com/keyrun-dev/keyrun/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	doctorJSONOutput bool
	// doctorExitFunc is the function called to exit with a specific code.
	// Can be overridden for testing.
	doctorExitFunc = os.Exit
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSONOutput, "json", false, "output in JSON format")
}

// resetDoctorCommandState resets the doctor command's global state for testing.
func resetDoctorCommandState() {
	doctorJSONOutput = false
	doctorExitFunc = os.Exit
	doctorCmd.SilenceErrors = false
}

// SetDoctorExitFunc sets the exit function for testing purposes.
func SetDoctorExitFunc(f func(int)) {
	doctorExitFunc = f
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the keyrun environment",
	Long: `Runs a series of health checks on the environment and reports issues.

The doctor command checks:
  - User and project configuration validity
  - Keyring backend availability and the app's entry
  - Secrets file presence, type, and permissions
  - Keep marker consistency
  - Pipe mode support on this system
  - Interactive terminal availability for capture
  - Audit log writability

Exit codes:
  0 - All checks passed
  1 - Warnings found (non-critical issues)
  2 - Errors found (critical issues)

Use --json for machine-readable output.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting doctor command")

	spinner, cleanup := startSpinner("Running health checks...", verbose)
	defer cleanup()

	// A broken config must not keep doctor from running; the config
	// checks report the problem themselves.
	inv, err := buildInvocation()
	if err != nil {
		Logger.WarnfUser("Configuration did not resolve cleanly: %v", err)
		inv = fallbackInvocation()
	}

	result, err := workflows.Doctor(context.Background(), workflows.DoctorOptions{
		Invocation: inv,
	})
	if err != nil {
		spinner.FinalMSG = ui.Error.Sprint("✗") + " Failed to run health checks: " + err.Error()
		return fail(cmd, err)
	}

	for _, check := range result.Checks {
		Logger.Debugf("Check %s: status=%s, message=%s", check.Name, check.Status.String(), check.Message)
	}

	spinner.FinalMSG = ""
	cleanup()

	if doctorJSONOutput {
		if err := outputDoctorJSON(result); err != nil {
			return fail(cmd, Logger.ErrorfAndReturn("Failed to encode health report: %v", err))
		}
	} else {
		printDoctorResults(result)
	}

	// Exit code reflects the worst finding.
	if result.Summary.Errors > 0 {
		doctorExitFunc(2)
	}
	if result.Summary.Warnings > 0 {
		doctorExitFunc(1)
	}
	return nil
}

// fallbackInvocation builds a defaults-only invocation for doctor when
// config resolution fails, honoring whatever flags still make sense.
func fallbackInvocation() *configs.Invocation {
	inv := &configs.Invocation{
		SecretsFile: configs.DefaultSecretsFile,
		App:         flagApp,
		Mode:        configs.ModeFile,
		Backend:     configs.DefaultBackend,
	}
	if inv.App == "" {
		if app, err := utils.DefaultAppName(); err == nil {
			inv.App = app
		} else {
			inv.App = "default"
		}
	}
	if flagFile != "" {
		inv.SecretsFile = flagFile
	}
	if flagBackend != "" {
		inv.Backend = flagBackend
	}
	if flagMode != "" {
		if mode, err := configs.ParseMode(flagMode); err == nil {
			inv.Mode = mode
		}
	}
	return inv
}

// outputDoctorJSON outputs the result as JSON.
func outputDoctorJSON(result *workflows.DoctorResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// printDoctorResults prints the doctor results in a human-readable format.
func printDoctorResults(result *workflows.DoctorResult) {
	fmt.Println("Running health checks...")
	fmt.Println()

	for _, check := range result.Checks {
		var statusIcon string
		switch check.Status {
		case workflows.CheckPass:
			statusIcon = ui.Success.Sprint("✓")
		case workflows.CheckWarning:
			statusIcon = ui.Warning.Sprint("⚠")
		case workflows.CheckError:
			statusIcon = ui.Error.Sprint("✗")
		}
		fmt.Printf("%s %s\n", statusIcon, check.Message)
	}

	fmt.Println()
	fmt.Printf("Summary: %d passed", result.Summary.Passed)
	if result.Summary.Warnings > 0 {
		fmt.Printf(", %s", ui.Warning.Sprintf("%d warning(s)", result.Summary.Warnings))
	}
	if result.Summary.Errors > 0 {
		fmt.Printf(", %s", ui.Error.Sprintf("%d error(s)", result.Summary.Errors))
	}
	fmt.Println()

	if len(result.Suggestions) > 0 {
		fmt.Println()
		fmt.Println("Suggestions:")
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  %s %s\n", ui.Info.Sprint("→"), suggestion)
		}
	}
}
