// Package secrets models the process-wide secret material: the token-signing
// key and the handle of the managed key used for profile-field encryption.
// A Secrets value is constructed once at startup and is read-only afterwards;
// it is passed explicitly into the flows rather than referenced globally.
package secrets

import (
	"errors"

	"github.com/dmitrijs2005/authvault/config"
)

var (
	ErrNoSigningKey = errors.New("signing key is empty")
	ErrNoKeyHandle  = errors.New("managed key handle is empty")
)

type Secrets struct {
	signingKey []byte
	keyHandle  string
}

// New validates and wraps the secret material. The signing key is copied so
// later mutation of the caller's slice cannot affect issued tokens.
func New(signingKey []byte, keyHandle string) (*Secrets, error) {
	if len(signingKey) == 0 {
		return nil, ErrNoSigningKey
	}
	if keyHandle == "" {
		return nil, ErrNoKeyHandle
	}

	key := make([]byte, len(signingKey))
	copy(key, signingKey)

	return &Secrets{signingKey: key, keyHandle: keyHandle}, nil
}

// FromConfig builds Secrets from the loaded configuration.
func FromConfig(cfg *config.Config) (*Secrets, error) {
	return New([]byte(cfg.SecretKey), cfg.KMSKeyID)
}

// SigningKey returns the HMAC secret used to sign access tokens.
func (s *Secrets) SigningKey() []byte {
	return s.signingKey
}

// KeyHandle returns the reference to the managed encryption key. Raw key
// material never passes through this package.
func (s *Secrets) KeyHandle() string {
	return s.keyHandle
}
