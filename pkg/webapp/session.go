package webapp

import (
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/burbanox/keycloak-harold-burbano/pkg/oidc"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const sessionName = "session"

const (
	authSessionKey    = "auth"
	pendingLoginKey   = "pending_login"
	sessionMaxAgeSecs = 86400 * 7
)

// Auth is the authenticated part of a browser session. Identity, Roles and
// RawIDToken are always written together by a successful callback; a session
// without an Identity counts as unauthenticated.
type Auth struct {
	Identity   *oidc.Identity
	Roles      []string
	RawIDToken string
}

// PendingLogin is the transient state of a login attempt, round-tripped
// through the provider and checked on callback.
type PendingLogin struct {
	State string
	Nonce string
}

func init() {
	gob.Register(&Auth{})
	gob.Register(&PendingLogin{})
}

// NewSessionStore builds the cookie store backing browser sessions.
// SameSite=Lax and HttpOnly; not Secure, as the app serves plain HTTP in
// development setups.
func NewSessionStore(secret string) sessions.Store {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAgeSecs,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func getSession(c echo.Context) (*sessions.Session, error) {
	httpSession, err := session.Get(sessionName, c)
	if err != nil {
		return nil, fmt.Errorf("unable to get session: %w", err)
	}
	return httpSession, nil
}

// CurrentAuth returns the session's authenticated state, or nil when the
// browser is not logged in.
func CurrentAuth(c echo.Context) *Auth {
	httpSession, err := getSession(c)
	if err != nil {
		return nil
	}
	auth, ok := httpSession.Values[authSessionKey].(*Auth)
	if !ok || auth.Identity == nil {
		return nil
	}
	return auth
}

// saveAuth writes the complete authenticated state in one step and drops the
// pending login that produced it.
func saveAuth(c echo.Context, auth *Auth) error {
	httpSession, err := getSession(c)
	if err != nil {
		return err
	}
	httpSession.Values[authSessionKey] = auth
	delete(httpSession.Values, pendingLoginKey)
	if err := httpSession.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("unable to save session: %w", err)
	}
	return nil
}

func savePendingLogin(c echo.Context, pending *PendingLogin) error {
	httpSession, err := getSession(c)
	if err != nil {
		return err
	}
	httpSession.Values[pendingLoginKey] = pending
	if err := httpSession.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("unable to save session: %w", err)
	}
	return nil
}

// popPendingLogin removes and returns the pending login attempt, if any.
func popPendingLogin(c echo.Context) (*PendingLogin, error) {
	httpSession, err := getSession(c)
	if err != nil {
		return nil, err
	}
	pending, ok := httpSession.Values[pendingLoginKey].(*PendingLogin)
	if !ok {
		return nil, nil
	}
	delete(httpSession.Values, pendingLoginKey)
	if err := httpSession.Save(c.Request(), c.Response()); err != nil {
		return nil, fmt.Errorf("unable to save session: %w", err)
	}
	return pending, nil
}

// clearSession removes all session state and returns the raw ID token that
// was stored, if any.
func clearSession(c echo.Context) (string, error) {
	httpSession, err := getSession(c)
	if err != nil {
		return "", err
	}
	rawIDToken := ""
	if auth, ok := httpSession.Values[authSessionKey].(*Auth); ok {
		rawIDToken = auth.RawIDToken
	}
	for key := range httpSession.Values {
		delete(httpSession.Values, key)
	}
	if err := httpSession.Save(c.Request(), c.Response()); err != nil {
		return "", fmt.Errorf("unable to save session: %w", err)
	}
	return rawIDToken, nil
}
