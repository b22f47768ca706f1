package wallgen

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mhpenta/wallgen/kvstore"
)

const (
	// CredentialKey is the store key the API key lives under.
	CredentialKey = "wallgen_api_key_secure"

	credentialKeystream = "WALLGEN_KR_2025_SALT"
)

// CredentialStore keeps the user's API key in a kvstore.Store.
//
// The value is obfuscated, not encrypted: it is XORed against a keystream
// compiled into this binary and then base64 encoded. Anyone holding the binary
// and the store file can recover the key. It only keeps the key from being
// readable at a glance.
//
// Store failures are logged and never returned. A value that cannot be decoded
// reads as absent.
type CredentialStore struct {
	store  kvstore.Store
	logger *slog.Logger
}

// NewCredentialStore wraps store. A nil logger uses slog.Default().
func NewCredentialStore(store kvstore.Store, logger *slog.Logger) *CredentialStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialStore{
		store:  store,
		logger: logger,
	}
}

// Save persists secret. A blank secret removes the stored entry instead.
func (s *CredentialStore) Save(secret string) {
	if strings.TrimSpace(secret) == "" {
		s.Clear()
		return
	}

	if err := s.store.Set(CredentialKey, obfuscate(secret)); err != nil {
		s.logger.Error("failed to save API key", "error", err.Error())
	}
}

// Load returns the stored secret. ok is false when nothing usable is stored.
func (s *CredentialStore) Load() (secret string, ok bool) {
	stored, found, err := s.store.Get(CredentialKey)
	if err != nil {
		s.logger.Error("failed to read API key", "error", err.Error())
		return "", false
	}
	if !found || stored == "" {
		return "", false
	}

	secret, err = deobfuscate(stored)
	if err != nil {
		s.logger.Error("failed to retrieve API key", "error", err.Error())
		return "", false
	}

	return secret, true
}

// Clear removes the stored secret.
func (s *CredentialStore) Clear() {
	if err := s.store.Remove(CredentialKey); err != nil {
		s.logger.Error("failed to remove API key", "error", err.Error())
	}
}

func obfuscate(secret string) string {
	return base64.StdEncoding.EncodeToString(xorKeystream([]byte(secret)))
}

func deobfuscate(stored string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("decoding stored key: %w", err)
	}

	plain := xorKeystream(raw)
	if len(plain) == 0 {
		return "", errors.New("stored key is empty")
	}
	if !utf8.Valid(plain) {
		return "", errors.New("stored key is not valid UTF-8")
	}

	return string(plain), nil
}

// xorKeystream is its own inverse.
func xorKeystream(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ credentialKeystream[i%len(credentialKeystream)]
	}
	return out
}
