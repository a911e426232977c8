// Package audit provides audit trail logging for keyrun operations.
//
// Every significant operation (run, store, clear, keep) is recorded so a
// user can reconstruct when secrets were exposed to which commands. The
// log records metadata only: secret content, values, and full child
// command lines never appear in it.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) at:
//
//	$XDG_DATA_HOME/keyrun/audit.jsonl
//
// falling back to ~/.local/share/keyrun/audit.jsonl. Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - A run ID unique to the invocation
//   - System username and hostname
//   - Operation name plus operation-specific details (app identifier,
//     exposure mode, secret source, child command name, exit code)
//
// # Usage
//
// Create an entry with identity fields pre-populated:
//
//	entry := audit.NewEntry("run")
//	entry.App = "my-service"
//	entry.ExitCode = code
//	audit.Log(entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// missing home directory), the operation continues without error.
//
// # Reading Logs
//
// ReadEntries parses the log for display; status uses it to show the most
// recent runs. Malformed lines are silently skipped to handle partial
// writes.
package audit
