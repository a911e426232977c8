// Package secrets resolves secret content for an invocation.
//
// The central type is Blob, an opaque byte payload whose String method
// returns a fixed placeholder. Secret content passes through logging and
// error paths as a Blob, so only a deliberate Bytes or Reveal call can
// expose it.
//
// # Resolution Policy
//
// Resolve walks a fixed fallback chain:
//
//  1. Local file: if the configured secrets file already exists, it is
//     used as-is. The keyring is never contacted, which means this path
//     works on machines without any secret store installed.
//  2. Keyring: the entry for the app identifier is fetched. A non-empty
//     hit is used directly. Reaching this step triggers the backend
//     availability check; a missing backend aborts the run with an error
//     naming the dependency.
//  3. Capture: the user is prompted on stderr and stdin is read until
//     EOF. Empty or whitespace-only input aborts with
//     ErrNoSecretsProvided and nothing is written to the keyring.
//  4. Store: the captured content is written to the keyring under the app
//     identifier with a "keyrun: <app>" label.
//  5. Confirm: the entry is read back, and the re-fetched content is what
//     the child process will see. A failure here means the store was not
//     durable and the run aborts before anything is launched.
package secrets
