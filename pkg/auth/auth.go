// Package auth issues and verifies the source keys a pipeline presents to
// an authenticated collector.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKey is returned for malformed or mis-signed source keys.
var ErrInvalidKey = errors.New("invalid source key")

// Issue generates a source key for the given sourceID signed with the
// secret. Format: sourceID.signature
func Issue(sourceID string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(sourceID))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("%s.%s", sourceID, sig)
}

// Verify checks a source key against the secret and returns the embedded
// sourceID when valid.
func Verify(key string, secret []byte) (string, error) {
	sourceID, providedSig, ok := strings.Cut(key, ".")
	if !ok || sourceID == "" {
		return "", ErrInvalidKey
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(sourceID))
	expectedSig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(providedSig), []byte(expectedSig)) {
		return "", ErrInvalidKey
	}
	return sourceID, nil
}
