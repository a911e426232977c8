package cmd

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

// Build metadata, injected with -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the keyrun version",
	Run: func(cmd *cobra.Command, args []string) {
		banner := figure.NewColorFigure("keyrun", "alligator2", "green", true)
		banner.Print()
		fmt.Println()
		fmt.Printf("keyrun %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}
