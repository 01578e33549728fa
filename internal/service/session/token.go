package session

import (
	"crypto/rand"
	"encoding/base64"
)

// randomToken returns 32 random bytes, base64url encoded without padding.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
