// Package crypto provides cryptographic utilities for Sentinel.
// This includes signing key generation and password hashing.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// SigningKeySize is the size of a generated HMAC signing key in bytes.
	SigningKeySize = 32

	// MinSigningKeySize is the smallest signing key accepted for HS256.
	MinSigningKeySize = 32
)

// Key generation errors
var (
	// ErrInvalidHexKey indicates the hex key is malformed or too short.
	ErrInvalidHexKey = errors.New("invalid hex key: must decode to at least 32 bytes")
)

// GenerateSigningKey generates a random 32-byte signing key.
// Returns the key as a 64-character hex string.
func GenerateSigningKey() (string, error) {
	key := make([]byte, SigningKeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate signing key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// ParseHexKey parses a hex-encoded key string into bytes.
// The decoded key must be at least MinSigningKeySize bytes.
func ParseHexKey(hexKey string) ([]byte, error) {
	// Remove any whitespace
	hexKey = strings.TrimSpace(hexKey)

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHexKey, err)
	}

	if len(key) < MinSigningKeySize {
		return nil, ErrInvalidHexKey
	}

	return key, nil
}
