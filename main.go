package main

import (
	"os"

	"github.com/keyrun-dev/keyrun/cmd"
	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Commands print their own failures; this only turns the error
		// into the right process exit code, including the child's code
		// propagated verbatim from keyrun run.
		os.Exit(kerrors.ExitCode(err))
	}
}
