package webapp

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config is the process configuration, read once at startup and passed into
// the server. BrowserBaseURL and BackendBaseURL point at the same Keycloak
// instance but may differ, e.g. with container networking.
type Config struct {
	ListenAddr     string `validate:"required"`
	BrowserBaseURL string `validate:"required,url"`
	BackendBaseURL string `validate:"required,url"`
	Realm          string `validate:"required"`
	ClientID       string `validate:"required"`
	ClientSecret   string
	AppBaseURL     string `validate:"required,url"`
	SessionSecret  string `validate:"required"`
}

// RedirectURI is the callback URL registered at the provider. It must match
// the registered client redirect URI exactly.
func (c *Config) RedirectURI() string {
	return strings.TrimSuffix(c.AppBaseURL, "/") + "/callback"
}

// PostLogoutRedirectURI is where the provider sends the browser after
// end-session.
func (c *Config) PostLogoutRedirectURI() string {
	return strings.TrimSuffix(c.AppBaseURL, "/") + "/"
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// ConfigFromEnv builds the configuration from environment variables,
// falling back to development defaults.
func ConfigFromEnv() (*Config, error) {
	config := &Config{
		ListenAddr:     getenv("LISTEN_ADDR", ":8000"),
		BrowserBaseURL: getenv("KEYCLOAK_BROWSER_BASE", "http://localhost:8080"),
		BackendBaseURL: getenv("KEYCLOAK_BACKEND_BASE", "http://host.docker.internal:8080"),
		Realm:          getenv("KEYCLOAK_REALM", "demo-realm"),
		ClientID:       getenv("OIDC_CLIENT_ID", "webapp-client"),
		ClientSecret:   os.Getenv("OIDC_CLIENT_SECRET"),
		AppBaseURL:     getenv("APP_BASE", "http://localhost:8000"),
		SessionSecret:  getenv("SESSION_SECRET", "dev_session_secret_change_me"),
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}
