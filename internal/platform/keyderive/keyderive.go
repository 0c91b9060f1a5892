// Package keyderive expands one configured service secret into independent
// purpose-bound keys.
package keyderive

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the length in bytes of every derived key.
const KeySize = 32

// MinSecretLength is the shortest accepted configured secret.
const MinSecretLength = 16

const salt = "anvistudio-storefront"

// Purpose labels a derived key so two consumers never share key material.
type Purpose string

const (
	// PurposeFlowToken signs verification flow continuation tokens.
	PurposeFlowToken Purpose = "flow-token/v1"
	// PurposeCacheKey keys the HMAC that turns session credentials into cache keys.
	PurposeCacheKey Purpose = "user-cache-key/v1"
)

// Keyring derives purpose-bound keys from one root secret.
type Keyring struct {
	secret []byte
}

// New validates secret and returns a keyring over it.
func New(secret string) (Keyring, error) {
	secret = strings.TrimSpace(secret)
	if len(secret) < MinSecretLength {
		return Keyring{}, fmt.Errorf("secret must be at least %d characters", MinSecretLength)
	}
	return Keyring{secret: []byte(secret)}, nil
}

// Ephemeral returns a keyring over random bytes. Tokens signed with it do not
// survive a restart.
func Ephemeral() (Keyring, error) {
	secret := make([]byte, KeySize)
	if _, err := rand.Read(secret); err != nil {
		return Keyring{}, fmt.Errorf("generate secret: %w", err)
	}
	return Keyring{secret: secret}, nil
}

// Derive returns the key for purpose.
func (k Keyring) Derive(purpose Purpose) ([]byte, error) {
	if len(k.secret) == 0 {
		return nil, errors.New("keyring is not initialised")
	}
	if strings.TrimSpace(string(purpose)) == "" {
		return nil, errors.New("key purpose is required")
	}
	key := make([]byte, KeySize)
	reader := hkdf.New(sha256.New, k.secret, []byte(salt), []byte(purpose))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}
