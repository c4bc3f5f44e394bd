package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// stateBytes is the number of random bytes behind a state value (256 bits).
const stateBytes = 32

// GenerateState generates an unguessable state parameter for an authorization request.
func GenerateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
