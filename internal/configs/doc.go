// Package configs resolves the configuration for a keyrun invocation.
//
// Configuration is read from TOML files at two levels:
//
//   - Project config: keyrun.toml, found by walking up from the working
//     directory (the search stops above the user's home directory)
//   - User config: ~/.config/keyrun/config.toml
//
// Both accept the same keys:
//
//	secrets_file = ".env.production"
//	app = "my-service"
//	mode = "pipe"
//	backend = "secret-tool"
//
// # Precedence
//
// ResolveInvocation merges sources in precedence order:
//
//  1. Command-line flags
//  2. Project keyrun.toml
//  3. User config.toml
//  4. Built-in defaults (.env, working directory base name, file mode,
//     secret-tool backend)
//
// The result is an Invocation struct built once in the command layer and
// passed down explicitly. Packages below the command layer never read flags,
// environment variables, or config files themselves.
package configs
