package cmd

import (
	"fmt"
	"time"

	"github.com/keyrun-dev/keyrun/internal/ui"

	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message when not
// in verbose or debug mode. Returns the spinner and a function that should
// be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines; the cleanup
// function calls ui.EnsureNewline() on the final message before printing
// it, so output formatting stays consistent across commands.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	// Ignore color errors, continue without a colored spinner if it fails.
	_ = s.Color("cyan")

	if !verbose && !debug {
		s.Start()
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		// Stop the spinner first to clear the spinner line.
		if !verbose && !debug {
			s.Stop()
		}

		// Print the final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// pauseSpinner stops an active spinner so a prompt or warning owns the
// terminal, and returns a function that starts it again. In verbose or
// debug mode the spinner was never started and both halves do nothing.
func pauseSpinner(s *spinner.Spinner) func() {
	if verbose || debug {
		return func() {}
	}
	s.Stop()
	return func() { s.Restart() }
}
