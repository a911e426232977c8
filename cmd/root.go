package cmd

import (
	"github.com/keyrun-dev/keyrun/internal/configs"
	"github.com/keyrun-dev/keyrun/internal/keyring"
	logger "github.com/keyrun-dev/keyrun/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	flagFile    string
	flagApp     string
	flagMode    string
	flagBackend string

	RootCmd = &cobra.Command{
		Use:   "keyrun",
		Short: "Run commands with secrets from the platform keyring",
		Long: `keyrun loads KEY=VALUE secrets from the platform secret store and hands
them to a child process through an env file, then cleans the file up when
the child exits. Secrets never appear in the child's environment or on its
command line; the child reads the path from $KEYRUN_ENV_FILE.

An existing local secrets file always wins over the keyring, so checked-out
projects with a plain .env keep working unchanged.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing keyrun with verbose=%t, debug=%t", verbose, debug)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVar(&flagFile, "file", "", "secrets file path (default \".env\")")
	RootCmd.PersistentFlags().StringVar(&flagApp, "app", "", "keyring entry identifier (default: working directory name)")
	RootCmd.PersistentFlags().StringVar(&flagMode, "mode", "", "exposure mode, \"file\" or \"pipe\" (default \"file\")")
	RootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "keyring backend, \"secret-tool\" or \"service\" (default \"secret-tool\")")

	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(storeCmd)
	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(clearCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(keepCmd)
	RootCmd.AddCommand(doctorCmd)
	RootCmd.AddCommand(logCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns the error for exit code
// mapping in main.
func Execute() error {
	return RootCmd.Execute()
}

// buildInvocation resolves the effective configuration from flags, the
// project config, the user config, and built-in defaults.
func buildInvocation() (*configs.Invocation, error) {
	return configs.ResolveInvocation(configs.Flags{
		SecretsFile: flagFile,
		App:         flagApp,
		Mode:        flagMode,
		Backend:     flagBackend,
	})
}

// openStore opens the keyring backend named by the invocation.
func openStore(inv *configs.Invocation) (keyring.Store, error) {
	return keyring.Open(inv.Backend)
}

// fail marks err as already displayed so cobra does not print it a second
// time, and returns it so main can map it to an exit code. Flag parse
// errors never pass through here and keep cobra's own reporting.
func fail(cmd *cobra.Command, err error) error {
	cmd.SilenceErrors = true
	return err
}

// Helper functions for testing

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	flagFile = ""
	flagApp = ""
	flagMode = ""
	flagBackend = ""
	resetRunCommandState()
	resetStoreCommandState()
	resetShowCommandState()
	resetClearCommandState()
	resetStatusCommandState()
	resetKeepCommandState()
	resetDoctorCommandState()
	resetLogCommandState()
	resetCobraFlagState(RootCmd)
}

// resetCobraFlagState clears the Changed bit cobra sets during parsing.
// Without this a reused command tree treats flags from a previous Execute
// as still set.
func resetCobraFlagState(cmd *cobra.Command) {
	cmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})
	for _, sub := range cmd.Commands() {
		sub.Flags().VisitAll(func(flag *pflag.Flag) {
			flag.Changed = false
		})
	}
}

// SetVerbose sets the verbose flag for testing.
func SetVerbose(v bool) {
	verbose = v
}

// SetDebug sets the debug flag for testing.
func SetDebug(d bool) {
	debug = d
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
