// Package logger provides leveled logging for keyrun CLI commands.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags. Output carries semantic color prefixes from fatih/color.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details
//
// Without flags, only critical warnings and errors are shown.
//
// # Log Methods
//
//	Logger.Infof()       // Shown with --verbose or --debug
//	Logger.Debugf()      // Shown only with --debug
//	Logger.Warnf()       // Shown with --verbose or --debug
//	Logger.WarnfAlways() // Always shown (critical warnings)
//	Logger.WarnfUser()   // User-facing warnings (not debug info)
//	Logger.Errorf()      // Always shown
//	Logger.ErrorfAndReturn() // Prints, then returns the error
//
// # Usage
//
// Create a logger with the desired verbosity:
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Resolved secrets from %s", source)
//
// Commands create a logger in their PersistentPreRun and pass it to
// internal functions.
//
// Info and debug messages go to stdout, warnings and errors to stderr. The
// run command relies on this split: once a child process owns the standard
// streams, keyrun itself writes nothing to stdout.
package logger
