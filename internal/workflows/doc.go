// Package workflows provides high-level orchestration for keyrun commands.
//
// Workflows coordinate multiple operations across packages (configs, secrets,
// envfile, launcher, audit) to implement complete user-facing features. Each
// workflow handles a single command's business logic, independent of CLI
// concerns like flag parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Resolves the effective invocation and opens the keyring backend
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Resolving secret content through the lookup policy
//   - Materializing and cleaning up exposure artifacts
//   - Launching and supervising the child process
//   - Recording audit trail entries
//
// # Available Workflows
//
// Each command has a corresponding workflow:
//
//   - Run: Resolves secrets, exposes them, and runs the child command
//   - Store: Captures secret content and persists it to the keyring
//   - Show: Lists the keys a run would see, without running anything
//   - Clear: Deletes the keyring entry for an app
//   - Status: Reports the resolution state a run would start from
//   - Keep: Creates or removes the keep marker for the secrets file
//   - Doctor: Runs environment health checks
//   - Log: Reads and filters the audit trail
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	result, err := workflows.Run(ctx, opts)
//	if errors.Is(err, kerrors.ErrStoreUnavailable) {
//	    // Point the user at their platform keyring setup
//	}
//
// A child's own failure is not a workflow failure: Run returns a
// *ChildExitError carrying the verbatim exit code, and the caller
// propagates it without printing anything new.
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// This enables cancellation, timeouts, and passing request-scoped values.
package workflows
