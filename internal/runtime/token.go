package runtime

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"
)

// AccessTokenKey is the keyring item holding a bearer token for the Gmail API.
const AccessTokenKey = "access_token"

// TokenStore keeps the host-issued access token in the OS keyring.
type TokenStore struct {
	ring keyring.Keyring
}

// OpenTokenStore opens the keyring for service. fileDir backs the encrypted
// file fallback used when no system keyring is reachable.
func OpenTokenStore(service, fileDir string) (*TokenStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(fileDir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt(service + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring %s: %w", service, err)
	}
	return NewTokenStore(ring), nil
}

func NewTokenStore(ring keyring.Keyring) *TokenStore {
	return &TokenStore{ring: ring}
}

// AccessToken returns the stored token, or "" if none has been saved.
func (s *TokenStore) AccessToken() (string, error) {
	item, err := s.ring.Get(AccessTokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read access token: %w", err)
	}
	return string(item.Data), nil
}

func (s *TokenStore) SetAccessToken(token string) error {
	if err := s.ring.Set(keyring.Item{Key: AccessTokenKey, Data: []byte(token), Label: "Gmail access token"}); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	return nil
}
