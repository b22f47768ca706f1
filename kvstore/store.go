// Package kvstore provides the small persistent key-value area wallgen keeps
// its settings in.
package kvstore

import (
	"os"
	"path/filepath"
)

// Store is a string key-value area. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// DefaultPath returns the store location under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wallgen", "store.yaml"), nil
}
