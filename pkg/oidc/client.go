package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/burbanox/keycloak-harold-burbano/pkg/oauth2"
	"github.com/go-playground/validator/v10"
)

// ErrProviderUnavailable marks network-level failures talking to the
// provider, as opposed to OAuth errors the provider reported itself.
var ErrProviderUnavailable = errors.New("identity provider unavailable")

const exchangeTimeout = 10 * time.Second

// Config describes a confidential client registered at a Keycloak realm.
// BrowserBaseURL is used for URLs the user agent navigates to, BackendBaseURL
// for server-to-server calls; they differ e.g. when the provider runs in a
// container reachable under another hostname.
type Config struct {
	BrowserBaseURL string   `validate:"required,url"`
	BackendBaseURL string   `validate:"required,url"`
	Realm          string   `validate:"required"`
	ClientID       string   `validate:"required"`
	ClientSecret   string
	RedirectURI    string   `validate:"required,url"`
	Scopes         []string `validate:"required"`
}

type Client struct {
	config                *Config
	authorizationEndpoint string
	tokenEndpoint         string
	endSessionEndpoint    string
	jwksURI               string
	httpClient            *http.Client
}

func NewClient(cfg *Config) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate oidc config: %w", err)
	}

	realmBase := func(base string) string {
		return fmt.Sprintf("%s/realms/%s/protocol/openid-connect", strings.TrimSuffix(base, "/"), cfg.Realm)
	}

	return &Client{
		config:                cfg,
		authorizationEndpoint: realmBase(cfg.BrowserBaseURL) + "/auth",
		tokenEndpoint:         realmBase(cfg.BackendBaseURL) + "/token",
		endSessionEndpoint:    realmBase(cfg.BrowserBaseURL) + "/logout",
		jwksURI:               realmBase(cfg.BackendBaseURL) + "/certs",
		httpClient:            &http.Client{Timeout: exchangeTimeout},
	}, nil
}

func (c *Client) ClientID() string {
	return c.config.ClientID
}

func (c *Client) RedirectURI() string {
	return c.config.RedirectURI
}

// AuthCodeURL builds the authorization request the browser is redirected to.
func (c *Client) AuthCodeURL(state, nonce string) string {
	query := url.Values{}
	query.Set("client_id", c.config.ClientID)
	query.Set("redirect_uri", c.config.RedirectURI)
	query.Set("response_type", "code")
	query.Set("scope", strings.Join(c.config.Scopes, " "))
	query.Set("state", state)
	query.Set("nonce", nonce)

	return fmt.Sprintf("%s?%s", c.authorizationEndpoint, query.Encode())
}

// Exchange redeems an authorization code at the token endpoint. A non-200
// response is decoded as an *oauth2.Error; transport failures wrap
// ErrProviderUnavailable.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.TokenResponse, error) {
	params := url.Values{}
	params.Set("client_id", c.config.ClientID)
	params.Set("client_secret", c.config.ClientSecret)
	params.Set("code", code)
	params.Set("redirect_uri", c.config.RedirectURI)
	params.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("unable to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read response body: %w", ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var oidcErr oauth2.Error
		if err = json.Unmarshal(body, &oidcErr); err != nil {
			return nil, fmt.Errorf("unable to decode error response (status %d): %w", resp.StatusCode, err)
		}
		return nil, &oidcErr
	}

	var tokenResponse oauth2.TokenResponse
	if err = json.Unmarshal(body, &tokenResponse); err != nil {
		return nil, fmt.Errorf("unable to decode token response: %w", err)
	}

	return &tokenResponse, nil
}

// EndSessionURL builds the provider logout URL. The ID token hint is only
// forwarded when one was stored for the session.
func (c *Client) EndSessionURL(postLogoutRedirectURI, idTokenHint string) string {
	query := url.Values{}
	query.Set("post_logout_redirect_uri", postLogoutRedirectURI)
	if idTokenHint != "" {
		query.Set("id_token_hint", idTokenHint)
	}
	return fmt.Sprintf("%s?%s", c.endSessionEndpoint, query.Encode())
}

// JwksURI returns the realm's signing key endpoint. The callback currently
// decodes tokens without verification; the URI is kept for the verification
// path.
func (c *Client) JwksURI() string {
	return c.jwksURI
}
