package keyring

import (
	"errors"
	"fmt"

	zkeyring "github.com/zalando/go-keyring"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
)

// availabilityProbe is the dummy entry name used to check that the keyring
// daemon answers at all.
const availabilityProbe = "keyrun-availability-probe"

// Service stores secrets through the OS keyring API (Secret Service on
// Linux, Keychain on macOS, Credential Manager on Windows) via the
// go-keyring library. Unlike the secret-tool backend it cannot attach a
// custom label; entries appear under the service name instead.
type Service struct{}

// NewService returns the go-keyring backed store.
func NewService() *Service {
	return &Service{}
}

func (s *Service) Name() string {
	return "service"
}

// Available probes the keyring with a lookup. A missing entry still proves
// the keyring daemon answered.
func (s *Service) Available() error {
	_, err := zkeyring.Get(serviceAttribute, availabilityProbe)
	if err != nil && !errors.Is(err, zkeyring.ErrNotFound) {
		return fmt.Errorf("secret service unreachable: %w", err)
	}
	return nil
}

func (s *Service) Get(app string) ([]byte, error) {
	content, err := zkeyring.Get(serviceAttribute, app)
	if err != nil {
		if errors.Is(err, zkeyring.ErrNotFound) {
			return nil, fmt.Errorf("no keyring entry for %q: %w", app, kerrors.ErrSecretNotFound)
		}
		return nil, fmt.Errorf("keyring get failed: %w", err)
	}
	return []byte(content), nil
}

// Set stores content under app. The label is ignored; go-keyring derives
// the display name from the service attribute.
func (s *Service) Set(app, label string, content []byte) error {
	if err := zkeyring.Set(serviceAttribute, app, string(content)); err != nil {
		return fmt.Errorf("keyring set failed: %w", err)
	}
	return nil
}

func (s *Service) Delete(app string) error {
	if err := zkeyring.Delete(serviceAttribute, app); err != nil {
		if errors.Is(err, zkeyring.ErrNotFound) {
			return fmt.Errorf("no keyring entry for %q: %w", app, kerrors.ErrSecretNotFound)
		}
		return fmt.Errorf("keyring delete failed: %w", err)
	}
	return nil
}
