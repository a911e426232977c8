// Package utils provides shared utility functions for the keyrun application.
//
// This package contains general-purpose helpers used across multiple packages.
// Functions are organized into logical groups:
//
// # Filesystem Utilities
//
// Functions for working with the filesystem and project structure:
//   - FindProjectConfig: walks up directories to find keyrun.toml
//
// # System Utilities
//
// Functions for interacting with the operating system:
//   - GetUsername: returns the current system username
//   - GetHostname: returns the system hostname
//
// # Project Utilities
//
// Functions for working with project identity:
//   - DefaultAppName: returns the working directory's base name
//
// # Masking
//
// Functions for keeping secret values out of output:
//   - MaskValue: returns a fixed-width placeholder for a secret value
//
// # Terminal Utilities
//
// Functions for terminal detection:
//   - IsTerminal: checks if stdin is a terminal
//   - IsTTYAvailable: checks if the controlling terminal can be opened
package utils
