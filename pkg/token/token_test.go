package token

import (
	"strings"
	"testing"
)

func TestNewLengthAndAlphabet(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if len(tok) != Length {
		t.Errorf("token length = %d; want %d", len(tok), Length)
	}
	for _, r := range tok {
		if !strings.ContainsRune(alphabet, r) {
			t.Errorf("token contains %q outside the URL-safe alphabet", r)
		}
	}
}

func TestNewUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		tok, err := New()
		if err != nil {
			t.Fatalf("New error: %v", err)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token after %d draws: %s", i, tok)
		}
		seen[tok] = struct{}{}
	}
}
