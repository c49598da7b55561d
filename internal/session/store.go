// Package session persists the business session (bearer token and business id)
// and exposes a derived authentication view over it.
package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

// Storage keys for the two session values.
const (
	KeyToken      = "business_jwt_token"
	KeyBusinessID = "business_id"
)

const serviceName = "ringlify"

// Store is durable string key/value storage that outlives a single process.
//
// Get never fails: an unreadable or corrupt backing store reads as absent.
// Remove of a missing key is not an error.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// NewStore returns the preferred store for origin: the system keyring when it
// is usable, otherwise a JSON file under dir. Setting RINGLIFY_NO_KEYRING
// skips the keyring probe.
func NewStore(dir, origin string) Store {
	if os.Getenv("RINGLIFY_NO_KEYRING") != "" {
		return NewFileStore(dir, origin)
	}

	probe := "ringlify::probe"
	if err := keyring.Set(serviceName, probe, "probe"); err == nil {
		_ = keyring.Delete(serviceName, probe)
		return NewKeyringStore(origin)
	}

	fmt.Fprintf(os.Stderr, "warning: system keyring unavailable, session stored in plaintext at %s\n",
		filepath.Join(dir, sessionFileName))
	return NewFileStore(dir, origin)
}
