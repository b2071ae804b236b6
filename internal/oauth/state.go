package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// generateState generates a random state parameter for an authorization
// request. The state correlates the request with its redirect callback and
// rejects mismatched or forged callbacks.
func generateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
