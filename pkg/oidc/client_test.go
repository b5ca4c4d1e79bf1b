package oidc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/burbanox/keycloak-harold-burbano/pkg/oauth2"
)

func testConfig(backendBase string) *Config {
	return &Config{
		BrowserBaseURL: "http://localhost:8080",
		BackendBaseURL: backendBase,
		Realm:          "demo-realm",
		ClientID:       "webapp-client",
		ClientSecret:   "secret",
		RedirectURI:    "http://localhost:8000/callback",
		Scopes:         []string{"openid", "profile", "email"},
	}
}

func TestNewClientInvalidConfig(t *testing.T) {
	_, err := NewClient(&Config{})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestAuthCodeURL(t *testing.T) {
	client, err := NewClient(testConfig("http://localhost:8080"))
	if err != nil {
		t.Fatal(err)
	}

	authURL := client.AuthCodeURL("state-1", "nonce-1")

	parsed, err := url.Parse(authURL)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(authURL, "http://localhost:8080/realms/demo-realm/protocol/openid-connect/auth?") {
		t.Fatalf("unexpected authorize URL: %s", authURL)
	}

	query := parsed.Query()
	for key, want := range map[string]string{
		"client_id":     "webapp-client",
		"redirect_uri":  "http://localhost:8000/callback",
		"response_type": "code",
		"scope":         "openid profile email",
		"state":         "state-1",
		"nonce":         "nonce-1",
	} {
		if got := query.Get(key); got != want {
			t.Fatalf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestExchange(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/realms/demo-realm/protocol/openid-connect/token" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		if r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("code") != "code-1" {
			t.Errorf("code = %q", r.PostForm.Get("code"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","id_token":"it","token_type":"Bearer","expires_in":300}`))
	}))
	defer provider.Close()

	client, err := NewClient(testConfig(provider.URL))
	if err != nil {
		t.Fatal(err)
	}

	token, err := client.Exchange(context.Background(), "code-1")
	if err != nil {
		t.Fatal(err)
	}
	if token.AccessToken != "at" || token.IDToken != "it" {
		t.Fatalf("unexpected token response: %+v", token)
	}
}

func TestExchangeOAuthError(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"code expired"}`))
	}))
	defer provider.Close()

	client, err := NewClient(testConfig(provider.URL))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Exchange(context.Background(), "code-1")
	var oauthErr *oauth2.Error
	if !errors.As(err, &oauthErr) {
		t.Fatalf("expected *oauth2.Error, got %v", err)
	}
	if oauthErr.Code != "invalid_grant" {
		t.Fatalf("error code = %q", oauthErr.Code)
	}
}

func TestExchangeProviderUnavailable(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	provider.Close() // immediately, so the exchange hits a dead endpoint

	client, err := NewClient(testConfig(provider.URL))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Exchange(context.Background(), "code-1")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestEndSessionURL(t *testing.T) {
	client, err := NewClient(testConfig("http://localhost:8080"))
	if err != nil {
		t.Fatal(err)
	}

	withHint, err := url.Parse(client.EndSessionURL("http://localhost:8000/", "raw-id-token"))
	if err != nil {
		t.Fatal(err)
	}
	if withHint.Query().Get("post_logout_redirect_uri") != "http://localhost:8000/" {
		t.Fatalf("missing post_logout_redirect_uri: %s", withHint)
	}
	if withHint.Query().Get("id_token_hint") != "raw-id-token" {
		t.Fatalf("missing id_token_hint: %s", withHint)
	}

	withoutHint, err := url.Parse(client.EndSessionURL("http://localhost:8000/", ""))
	if err != nil {
		t.Fatal(err)
	}
	if withoutHint.Query().Has("id_token_hint") {
		t.Fatalf("unexpected id_token_hint: %s", withoutHint)
	}
}
