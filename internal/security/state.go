package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// StateSigner generates and validates OAuth state tokens using HMAC-SHA256.
// Tokens are derived deterministically from a nonce and a secret key, so no
// shared state is required across replicas.
type StateSigner struct {
	secret []byte
}

// NewStateSigner creates a new stateless HMAC-based state signer
func NewStateSigner(secret string) *StateSigner {
	return &StateSigner{secret: []byte(secret)}
}

// Sign returns the HMAC signature for the given nonce
func (s *StateSigner) Sign(nonce string) (string, error) {
	if nonce == "" {
		return "", fmt.Errorf("nonce is required")
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(nonce))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Validate reports whether signature is the valid signature for nonce
func (s *StateSigner) Validate(nonce, signature string) bool {
	if nonce == "" || signature == "" {
		return false
	}
	expected, err := s.Sign(nonce)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}
