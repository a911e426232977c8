package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/keyrun-dev/keyrun/internal/audit"
	"github.com/keyrun-dev/keyrun/internal/ui"
	"github.com/keyrun-dev/keyrun/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	statusJSONOutput bool
	statusRecent     int
)

func init() {
	statusCmd.Flags().BoolVar(&statusJSONOutput, "json", false, "output in JSON format")
	statusCmd.Flags().IntVar(&statusRecent, "recent", 5, "number of recent audit entries to show")
}

// resetStatusCommandState resets the status command's global state for testing.
func resetStatusCommandState() {
	statusJSONOutput = false
	statusRecent = 5
	statusCmd.SilenceErrors = false
}

// statusView is the JSON shape of the status report.
type statusView struct {
	App           string        `json:"app"`
	Mode          string        `json:"mode"`
	Backend       string        `json:"backend"`
	ProjectConfig string        `json:"project_config,omitempty"`
	File          fileView      `json:"secrets_file"`
	Marker        markerView    `json:"keep_marker"`
	Keyring       keyringView   `json:"keyring"`
	Recent        []audit.Entry `json:"recent,omitempty"`
}

type fileView struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	IsDir  bool   `json:"is_dir,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Size   int64  `json:"size,omitempty"`
}

type markerView struct {
	Path      string `json:"path"`
	Present   bool   `json:"present"`
	CreatedAt string `json:"created_at,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
}

type keyringView struct {
	Backend     string `json:"backend"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
	EntryExists bool   `json:"entry_exists"`
	Size        int    `json:"size,omitempty"`
	Keys        int    `json:"keys,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report what a run would use",
	Long: `Reports the effective configuration and the state of everything a run
depends on: the local secrets file, the keep marker, the keyring backend
and entry, and recent activity from the audit log.

Status never fails on a missing entry or an unreachable backend; it
reports what it found. Use --json for machine-readable output.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting status command")

	spinner, cleanup := startSpinner("Collecting status...", verbose)
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

	result, err := workflows.Status(context.Background(), workflows.StatusOptions{
		Invocation: inv,
		Store:      store,
		Recent:     statusRecent,
		Logger:     Logger,
	})
	if err != nil {
		spinner.FinalMSG = ui.Error.Sprint("✗") + " Failed to collect status: " + err.Error()
		return fail(cmd, err)
	}

	spinner.FinalMSG = ""
	cleanup()

	if statusJSONOutput {
		if err := outputStatusJSON(result); err != nil {
			return fail(cmd, Logger.ErrorfAndReturn("Failed to encode status report: %v", err))
		}
		return nil
	}
	printStatusResult(result)
	return nil
}

// outputStatusJSON prints the report as indented JSON on stdout.
func outputStatusJSON(result *workflows.StatusResult) error {
	view := statusView{
		App:           result.App,
		Mode:          string(result.Mode),
		Backend:       result.Keyring.Backend,
		ProjectConfig: result.ProjectConfig,
		File: fileView{
			Path:   result.File.Path,
			Exists: result.File.Exists,
			IsDir:  result.File.IsDir,
			Size:   result.File.Size,
		},
		Marker: markerView{
			Path:      result.Marker.Path,
			Present:   result.Marker.Present,
			CreatedAt: result.Marker.CreatedAt,
			CreatedBy: result.Marker.CreatedBy,
		},
		Keyring: keyringView{
			Backend:     result.Keyring.Backend,
			Available:   result.Keyring.Available,
			Detail:      result.Keyring.Detail,
			EntryExists: result.Keyring.EntryExists,
			Size:        result.Keyring.Size,
			Keys:        result.Keyring.Keys,
		},
		Recent: result.Recent,
	}
	if result.File.Exists && !result.File.IsDir {
		view.File.Mode = fmt.Sprintf("%04o", result.File.Mode)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(view)
}

// printStatusResult prints the report in a human-readable format.
func printStatusResult(result *workflows.StatusResult) {
	fmt.Printf("App:      %s\n", ui.Highlight.Sprint(result.App))
	fmt.Printf("Mode:     %s\n", result.Mode)
	fmt.Printf("Backend:  %s\n", result.Keyring.Backend)
	if result.ProjectConfig != "" {
		fmt.Printf("Config:   %s\n", ui.Path.Sprint(result.ProjectConfig))
	} else {
		fmt.Printf("Config:   %s\n", ui.Muted.Sprint("built-in defaults"))
	}
	fmt.Println()

	fmt.Println("Secrets file:")
	switch {
	case result.File.IsDir:
		fmt.Printf("  %s %s is a directory, a run cannot use it\n", ui.Error.Sprint("✗"), ui.Path.Sprint(result.File.Path))
	case result.File.Exists:
		fmt.Printf("  %s %s %s\n", ui.Success.Sprint("✓"), ui.Path.Sprint(result.File.Path),
			ui.Muted.Sprintf("%d bytes, mode %04o", result.File.Size, result.File.Mode))
	default:
		fmt.Printf("  %s not present %s\n", ui.Info.Sprint("ℹ"), ui.Muted.Sprint("a run would resolve from the keyring"))
	}
	if result.Marker.Present {
		detail := ""
		if result.Marker.CreatedAt != "" {
			detail = " " + ui.Muted.Sprintf("created %s by %s", workflows.FormatDate(result.Marker.CreatedAt), result.Marker.CreatedBy)
		}
		fmt.Printf("  %s keep marker present%s\n", ui.Success.Sprint("✓"), detail)
	}
	fmt.Println()

	fmt.Println("Keyring:")
	switch {
	case !result.Keyring.Available:
		fmt.Printf("  %s backend unavailable: %s\n", ui.Warning.Sprint("⚠"), result.Keyring.Detail)
	case result.Keyring.EntryExists:
		keys := ""
		if result.Keyring.Keys > 0 {
			keys = fmt.Sprintf(", %d key(s)", result.Keyring.Keys)
		}
		fmt.Printf("  %s entry %s %s\n", ui.Success.Sprint("✓"), ui.Highlight.Sprint(result.App),
			ui.Muted.Sprintf("%d bytes%s", result.Keyring.Size, keys))
	default:
		fmt.Printf("  %s no entry for %s %s\n", ui.Info.Sprint("ℹ"), ui.Highlight.Sprint(result.App),
			ui.Muted.Sprintf("run '%s' to add one", "keyrun store"))
	}

	if len(result.Recent) > 0 {
		fmt.Println()
		fmt.Println("Recent activity:")
		for _, e := range result.Recent {
			fmt.Printf("  %-19s  %-10s  %s\n", workflows.FormatDateTime(e.Timestamp), e.Operation, workflows.FormatDetails(e))
		}
	}
}
