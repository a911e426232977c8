package envfile

import (
	"os"

	"github.com/keyrun-dev/keyrun/internal/configs"
	"github.com/keyrun-dev/keyrun/internal/secrets"
)

// Artifact is the filesystem surface a child process reads secrets from.
// Exactly one artifact exists per invocation, owned by the caller from
// creation to Cleanup.
type Artifact interface {
	// Path is the value KEYRUN_ENV_FILE will carry.
	Path() string

	// ExtraFile returns the descriptor the child must inherit, or nil
	// when the path alone is enough.
	ExtraFile() *os.File

	// Cleanup releases the artifact. It is idempotent and must be called
	// on every exit path, including fatal errors and signals.
	Cleanup() error
}

// KeepMarkerPath returns the marker path whose presence at cleanup time
// preserves the secrets file at path.
func KeepMarkerPath(path string) string {
	return path + ".keep"
}

// Materialize builds the artifact for a resolution: the adopted file when
// the resolver found one, otherwise a fresh file or pipe per mode.
func Materialize(resolution *secrets.Resolution, mode configs.Mode, path string) (Artifact, error) {
	// An existing local file is always used as-is, whatever the mode.
	if resolution.Source == secrets.SourceLocalFile {
		return Adopt(resolution.Path), nil
	}

	switch mode {
	case configs.ModePipe:
		return MaterializePipe(resolution.Blob)
	default:
		return MaterializeFile(resolution.Blob, path)
	}
}
