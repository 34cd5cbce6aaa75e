package auth

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestIssueAndVerify(t *testing.T) {
	secret := []byte("my-secret-key")
	sourceID := "web-frontend"

	// 1. Issue key
	key := Issue(sourceID, secret)

	// 2. Verify valid key
	got, err := Verify(key, secret)
	if err != nil {
		t.Fatalf("Expected key to verify, got err=%v", err)
	}
	if got != sourceID {
		t.Errorf("Expected sourceID %s, got %s", sourceID, got)
	}

	// 3. Wrong secret
	if _, err := Verify(key, []byte("wrong-secret")); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey with wrong secret, got %v", err)
	}

	// 4. Malformed key
	if _, err := Verify("just-some-string", secret); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey for malformed key, got %v", err)
	}

	// 5. Tampered signature
	if _, err := Verify(key+"tampered", secret); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey for tampered key, got %v", err)
	}

	// 6. Forged signature
	forged := sourceID + "." + base64.RawURLEncoding.EncodeToString([]byte("fake-sig"))
	if _, err := Verify(forged, secret); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey for forged key, got %v", err)
	}

	// 7. Empty source id
	if _, err := Verify("."+base64.RawURLEncoding.EncodeToString([]byte("sig")), secret); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey for empty source id, got %v", err)
	}
}
