package secrets

import (
	"fmt"
	"io"
	"os"

	"github.com/keyrun-dev/keyrun/internal/utils"
)

// CaptureFunc reads secret content from the user. An empty result is legal
// here; the resolver decides what emptiness means.
type CaptureFunc func() ([]byte, error)

// CaptureInteractive prompts on stderr and reads stdin until EOF. The
// prompt goes to stderr so redirected stdout stays clean, and the wording
// adapts to whether stdin is a terminal or a pipe.
func CaptureInteractive() ([]byte, error) {
	if utils.IsTerminal() {
		fmt.Fprintln(os.Stderr, "Enter KEY=VALUE lines, end with Ctrl-D:")
	} else {
		fmt.Fprintln(os.Stderr, "Reading secrets from stdin...")
	}

	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets from stdin: %w", err)
	}

	return content, nil
}
