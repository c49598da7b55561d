package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps session values in the OS keychain, namespaced by backend origin.
type KeyringStore struct {
	origin string
}

// NewKeyringStore creates a keyring-backed store for origin.
func NewKeyringStore(origin string) *KeyringStore {
	return &KeyringStore{origin: origin}
}

func (s *KeyringStore) key(k string) string {
	return fmt.Sprintf("ringlify::%s::%s", s.origin, k)
}

// Get returns the stored value, or false if it is missing or the keyring fails.
func (s *KeyringStore) Get(key string) (string, bool) {
	v, err := keyring.Get(serviceName, s.key(key))
	if err != nil {
		return "", false
	}
	return v, true
}

// Set stores value under key.
func (s *KeyringStore) Set(key, value string) error {
	if err := keyring.Set(serviceName, s.key(key), value); err != nil {
		return fmt.Errorf("keyring set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Missing keys are ignored.
func (s *KeyringStore) Remove(key string) error {
	err := keyring.Delete(serviceName, s.key(key))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s: %w", key, err)
	}
	return nil
}
