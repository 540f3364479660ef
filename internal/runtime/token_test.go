package runtime

import (
	"testing"

	"github.com/99designs/keyring"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	store := NewTokenStore(keyring.NewArrayKeyring(nil))

	got, err := store.AccessToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}

	if err := store.SetAccessToken("ya29.token"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	got, err = store.AccessToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ya29.token" {
		t.Fatalf("token = %q", got)
	}
}
