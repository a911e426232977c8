// Package keyring talks to the platform secret store.
//
// The Store interface holds one opaque secret per app identifier. Two real
// backends exist, selected by the `backend` config key or --backend flag:
//
//   - secret-tool (default): shells out to secret-tool(1), the CLI for the
//     freedesktop Secret Service. Entries carry the attributes
//     `service keyrun app <app>` and a display label `keyrun: <app>`, so
//     they are recognizable in Seahorse and other keyring browsers and
//     never collide with other tools' secrets.
//   - service: uses the go-keyring library to reach the OS keyring API
//     directly (Secret Service on Linux, Keychain on macOS, Credential
//     Manager on Windows). No external binary required, but the display
//     label cannot be customized.
//
// Availability is checked before the first store interaction of a run:
// secret-tool must be on PATH, and the service backend must get an answer
// from the keyring daemon. An unavailable backend aborts the run with an
// error naming the missing dependency.
//
// A not-found lookup is reported as an error wrapping
// errors.ErrSecretNotFound, distinct from infrastructure failures.
//
// The Memory store is an in-memory fake for tests.
package keyring
