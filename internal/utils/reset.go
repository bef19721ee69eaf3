package utils

import (
	"crypto/rand"   // secure random number generation
	"encoding/hex"  // hex encoding for token strings
)

// NewResetToken returns an opaque random token used for password
// resets. The value is 32 bytes of cryptographically secure random
// data encoded as 64 hex characters. Tokens are stored as-is on the
// user row together with a one-hour expiry and cleared when consumed.
func NewResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
