package errors

import (
	"errors"
	"fmt"
)

// Invocation errors indicate the command line itself was unusable.
var (
	// ErrNoCommand indicates no child command was supplied to run.
	ErrNoCommand = errors.New("no command provided")

	// ErrInvalidDateFormat indicates a date filter that does not parse.
	ErrInvalidDateFormat = errors.New("invalid date format")
)

// Secret store errors indicate problems reaching or using the platform keyring.
var (
	// ErrStoreUnavailable indicates the secret-store backend is not present.
	ErrStoreUnavailable = errors.New("secret store backend unavailable")

	// ErrSecretNotFound indicates no entry exists in the keyring for the app.
	ErrSecretNotFound = errors.New("no secrets found in the keyring")

	// ErrKeyringStoreFailed indicates writing the entry to the keyring failed.
	ErrKeyringStoreFailed = errors.New("failed to store secrets in the keyring")

	// ErrKeyringRetrieveFailed indicates the confirmatory re-fetch after a
	// store did not return the entry.
	ErrKeyringRetrieveFailed = errors.New("failed to retrieve secrets from the keyring")

	// ErrEntryExists indicates the keyring already holds an entry for the
	// app and overwriting was not requested.
	ErrEntryExists = errors.New("keyring entry already exists")
)

// Resolution errors indicate secret content could not be obtained.
var (
	// ErrNoSecretsProvided indicates interactive capture yielded empty input.
	ErrNoSecretsProvided = errors.New("no secrets were provided")
)

// Exposure errors indicate the secrets could not be materialized for the child.
var (
	// ErrPipeUnsupported indicates the platform has no path-addressable pipe.
	ErrPipeUnsupported = errors.New("pipe exposure is not supported on this platform")

	// ErrKeepMarkerExists indicates a keep marker is already in place.
	ErrKeepMarkerExists = errors.New("keep marker already exists")

	// ErrKeepMarkerNotFound indicates there is no keep marker to remove.
	ErrKeepMarkerNotFound = errors.New("keep marker not found")
)

// Process exit codes for the keyrun binary itself. The child's exit code is
// always propagated verbatim and takes precedence once the child has started.
const (
	// ExitOK is returned when the invocation and the child both succeed.
	ExitOK = 0

	// ExitFailure is returned for generic keyrun failures.
	ExitFailure = 1

	// ExitUsage is returned when no child command was provided.
	ExitUsage = 2

	// ExitUnavailable is returned when the secret-store dependency is
	// missing, following the shell convention for absent commands.
	ExitUnavailable = 127
)

// ChildExitError carries a child process's non-zero exit code up to main
// without being mistaken for a keyrun failure. The child already reported
// its own errors on stderr, so this error produces no additional output.
type ChildExitError struct {
	Code int
}

func (e *ChildExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Code)
}

// ExitCode maps an error returned from a command to the invocation's exit
// code. nil maps to ExitOK, a ChildExitError to the child's own code, and
// the keyrun taxonomy to the documented codes.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var child *ChildExitError
	if errors.As(err, &child) {
		return child.Code
	}

	switch {
	case errors.Is(err, ErrNoCommand):
		return ExitUsage
	case errors.Is(err, ErrStoreUnavailable):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}
