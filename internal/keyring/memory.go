package keyring

import (
	"fmt"
	"sync"

	kerrors "github.com/keyrun-dev/keyrun/internal/errors"
)

// Memory is an in-memory Store used by tests. It records every backend
// interaction so tests can assert on call order, and supports forcing
// individual operations to fail.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]byte
	labels  map[string]string
	callLog []string

	// AvailableErr, when set, makes Available fail.
	AvailableErr error
	// GetErr, SetErr, and DeleteErr, when set, force the corresponding
	// call to fail after being recorded.
	GetErr    error
	SetErr    error
	DeleteErr error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string][]byte),
		labels:  make(map[string]string),
	}
}

func (m *Memory) Name() string {
	return "memory"
}

func (m *Memory) Available() error {
	return m.AvailableErr
}

func (m *Memory) Get(app string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLog = append(m.callLog, "get "+app)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	content, ok := m.entries[app]
	if !ok {
		return nil, fmt.Errorf("no keyring entry for %q: %w", app, kerrors.ErrSecretNotFound)
	}
	return append([]byte(nil), content...), nil
}

func (m *Memory) Set(app, label string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLog = append(m.callLog, "set "+app)
	if m.SetErr != nil {
		return m.SetErr
	}
	m.entries[app] = append([]byte(nil), content...)
	m.labels[app] = label
	return nil
}

func (m *Memory) Delete(app string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLog = append(m.callLog, "delete "+app)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.entries[app]; !ok {
		return fmt.Errorf("no keyring entry for %q: %w", app, kerrors.ErrSecretNotFound)
	}
	delete(m.entries, app)
	delete(m.labels, app)
	return nil
}

// Calls returns the backend interactions recorded so far, in order.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.callLog...)
}

// StoredLabel returns the label recorded for app's entry.
func (m *Memory) StoredLabel(app string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.labels[app]
}
