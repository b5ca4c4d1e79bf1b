package webapp

import (
	"net/http"
	"testing"

	"github.com/gorilla/sessions"
)

func TestNewSessionStoreOptions(t *testing.T) {
	store, ok := NewSessionStore("secret").(*sessions.CookieStore)
	if !ok {
		t.Fatal("expected a cookie store")
	}

	if store.Options.SameSite != http.SameSiteLaxMode {
		t.Fatalf("SameSite = %v, want lax", store.Options.SameSite)
	}
	if !store.Options.HttpOnly {
		t.Fatal("expected HttpOnly")
	}
	if store.Options.Secure {
		t.Fatal("expected Secure to be off by default")
	}
	if store.Options.MaxAge != sessionMaxAgeSecs {
		t.Fatalf("MaxAge = %d", store.Options.MaxAge)
	}
}
