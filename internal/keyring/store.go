package keyring

import (
	"fmt"
)

// serviceAttribute is the fixed service name attached to every entry,
// scoping lookups to keyrun-owned secrets.
const serviceAttribute = "keyrun"

// Store is a platform secret store holding one opaque secret per app
// identifier. Implementations are synchronous and local; none of them
// touch the network.
type Store interface {
	// Name returns the backend identifier used in config and flags.
	Name() string

	// Available checks that the backend's dependencies are present,
	// returning an error naming what is missing.
	Available() error

	// Get retrieves the secret stored under app. Returns an error
	// wrapping errors.ErrSecretNotFound when no entry exists.
	Get(app string) ([]byte, error)

	// Set stores content under app with a human-readable label.
	// Backends that cannot attach labels may ignore it.
	Set(app, label string, content []byte) error

	// Delete removes the entry stored under app. Returns an error
	// wrapping errors.ErrSecretNotFound when no entry exists.
	Delete(app string) error
}

// Open returns the backend named by the configuration.
func Open(backend string) (Store, error) {
	switch backend {
	case "secret-tool":
		return NewSecretTool(), nil
	case "service":
		return NewService(), nil
	default:
		return nil, fmt.Errorf("unknown keyring backend %q (expected %q or %q)", backend, "secret-tool", "service")
	}
}

// Label returns the display label recorded alongside an app's entry,
// making keyrun-owned secrets recognizable in keyring browsers.
func Label(app string) string {
	return "keyrun: " + app
}
