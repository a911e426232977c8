// Package errors defines sentinel errors for keyrun operations and the
// mapping from errors to process exit codes.
//
// Errors are organized by the stage that produces them: invocation parsing,
// secret-store access, secret resolution, and exposure. Callers match them
// with errors.Is:
//
//	result, err := workflows.Run(ctx, opts)
//	if errors.Is(err, kerrors.ErrStoreUnavailable) {
//	    // Tell the user which dependency to install.
//	}
//
// # Exit Codes
//
// keyrun distinguishes its own failure classes on the process exit code so
// shell pipelines and CI systems can react without parsing stderr:
//
//	0   success
//	2   no child command was provided
//	127 the secret-store backend is missing
//	1   any other keyrun failure
//
// Once a child process has been started, its exit code is authoritative and
// is propagated verbatim (a ChildExitError wraps it on the way to main).
// A child terminated by signal N surfaces as 128+N, matching shells.
package errors
