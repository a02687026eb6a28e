// Package auth validates caller-presented API keys against the configured
// gateway secret.
package auth

import (
	"crypto/subtle"
	"errors"
)

// ErrInvalidKey is returned for an absent or mismatched API key. The same
// error covers both cases so responses do not distinguish them.
var ErrInvalidKey = errors.New("Invalid API Key")

// Principal identifies an authenticated caller. The gateway has a single
// privilege level, so Roles is always empty.
type Principal struct {
	APIKey string
	Roles  []string
}

// Service checks presented credentials against the configured secret.
type Service struct {
	key []byte
}

// NewService creates a Service for the given shared secret.
func NewService(key string) *Service {
	return &Service{key: []byte(key)}
}

// Authenticate verifies the presented key and returns the caller's Principal.
// The comparison is constant-time over the secret's content so response
// timing does not leak where the presented key first diverges.
func (s *Service) Authenticate(presented string) (*Principal, error) {
	if subtle.ConstantTimeCompare([]byte(presented), s.key) != 1 {
		return nil, ErrInvalidKey
	}
	return &Principal{APIKey: presented, Roles: []string{}}, nil
}
