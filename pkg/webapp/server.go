package webapp

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/burbanox/keycloak-harold-burbano/pkg/nonce"
	"github.com/burbanox/keycloak-harold-burbano/pkg/oauth2"
	"github.com/burbanox/keycloak-harold-burbano/pkg/oidc"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/segmentio/ksuid"
)

var (
	//go:embed *.html
	templatesFS embed.FS
)

const (
	roleAdmin = "admin"
	roleUsers = "users"
)

type Option func(*Server) error

// WithNonceService replaces the default nonce service.
func WithNonceService(nonces nonce.Service) Option {
	return func(s *Server) error {
		s.nonces = nonces
		return nil
	}
}

// Server wires the OIDC login flow, the session transport and the role-gated
// pages together.
type Server struct {
	config       *Config
	oidcClient   *oidc.Client
	nonces       nonce.Service
	sessionStore sessions.Store

	templateLanding   *template.Template
	templateDashboard *template.Template
	templateNoRole    *template.Template
	templateError     *template.Template
}

func NewServer(config *Config, opts ...Option) (*Server, error) {
	oidcClient, err := oidc.NewClient(&oidc.Config{
		BrowserBaseURL: config.BrowserBaseURL,
		BackendBaseURL: config.BackendBaseURL,
		Realm:          config.Realm,
		ClientID:       config.ClientID,
		ClientSecret:   config.ClientSecret,
		RedirectURI:    config.RedirectURI(),
		Scopes:         []string{"openid", "profile", "email"},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create oidc client: %w", err)
	}

	s := &Server{
		config:            config,
		oidcClient:        oidcClient,
		sessionStore:      NewSessionStore(config.SessionSecret),
		templateLanding:   template.Must(template.ParseFS(templatesFS, "landing.html", "layout.html")),
		templateDashboard: template.Must(template.ParseFS(templatesFS, "dashboard.html", "layout.html")),
		templateNoRole:    template.Must(template.ParseFS(templatesFS, "no_role.html", "layout.html")),
		templateError:     template.Must(template.ParseFS(templatesFS, "error.html", "layout.html")),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.nonces == nil {
		s.nonces, err = nonce.NewHashicorpService()
		if err != nil {
			return nil, fmt.Errorf("unable to create nonce service: %w", err)
		}
	}

	return s, nil
}

func (s *Server) MountRoutes(e *echo.Echo) {
	e.Use(session.Middleware(s.sessionStore))
	e.GET("/", s.landing)
	e.GET("/login", s.login)
	e.GET("/callback", s.callback)
	e.GET("/user", s.userPage, RequireRoles(roleUsers))
	e.GET("/admin", s.adminPage, RequireRoles(roleAdmin))
	e.GET("/no-role", s.noRole)
	e.GET("/logout", s.logout)
}

func (s *Server) render(c echo.Context, status int, tpl *template.Template, data map[string]any) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return tpl.ExecuteTemplate(c.Response(), "layout.html", data)
}

func (s *Server) renderError(c echo.Context, status int, message, detail string) error {
	return s.render(c, status, s.templateError, map[string]any{
		"title":   "Error",
		"message": message,
		"detail":  detail,
	})
}

func (s *Server) landing(c echo.Context) error {
	auth := CurrentAuth(c)
	email := ""
	if auth != nil {
		email = auth.Identity.DisplayName()
	}

	return s.render(c, http.StatusOK, s.templateLanding, map[string]any{
		"title": "Login",
		"realm": s.config.Realm,
		"user":  auth,
		"email": email,
	})
}

func (s *Server) login(c echo.Context) error {
	nonceStr, err := s.nonces.Get()
	if err != nil {
		slog.Error("unable to get nonce", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "unable to start login")
	}

	pending := &PendingLogin{
		State: ksuid.New().String(),
		Nonce: nonceStr,
	}
	if err := savePendingLogin(c, pending); err != nil {
		slog.Error("unable to save pending login", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "unable to start login")
	}

	authURL := s.oidcClient.AuthCodeURL(pending.State, pending.Nonce)
	slog.Info("starting login", "state", pending.State)

	return c.Redirect(http.StatusFound, authURL)
}

func (s *Server) callback(c echo.Context) error {
	if errorCode := c.QueryParam("error"); errorCode != "" {
		slog.Warn("provider returned oauth error", "error", errorCode, "description", c.QueryParam("error_description"))
		return s.renderError(c, http.StatusBadRequest, "OAuth error", errorCode)
	}

	pending, err := popPendingLogin(c)
	if err != nil {
		return s.renderError(c, http.StatusBadRequest, "Session error", err.Error())
	}
	if pending == nil {
		return s.renderError(c, http.StatusBadRequest, "No login in progress", "")
	}

	if state := c.QueryParam("state"); state != pending.State {
		slog.Warn("state mismatch on callback", "expected", pending.State, "got", state)
		return s.renderError(c, http.StatusBadRequest, "State mismatch", "")
	}

	if err := s.nonces.Redeem(pending.Nonce); err != nil {
		slog.Warn("login attempt expired", "error", err)
		return s.renderError(c, http.StatusBadRequest, "Login attempt expired", "")
	}

	code := c.QueryParam("code")
	if code == "" {
		return s.renderError(c, http.StatusBadRequest, "Missing code parameter", "")
	}

	token, err := s.oidcClient.Exchange(c.Request().Context(), code)
	if err != nil {
		var oauthErr *oauth2.Error
		if errors.As(err, &oauthErr) {
			return s.renderError(c, http.StatusBadRequest, "OAuth error", oauthErr.Code)
		}
		slog.Error("code exchange failed", "error", err)
		return s.renderError(c, http.StatusBadGateway, "Identity provider unavailable, try again later", "")
	}

	if token.IDToken == "" || token.AccessToken == "" {
		return s.renderError(c, http.StatusBadRequest, "Did not receive expected tokens",
			fmt.Sprintf("keys=%v", token.Keys()))
	}

	idClaims, err := oidc.ParseUnverifiedClaims(token.IDToken)
	if err != nil {
		return s.renderError(c, http.StatusBadRequest, "Unable to parse ID token", err.Error())
	}
	accessClaims, err := oidc.ParseUnverifiedClaims(token.AccessToken)
	if err != nil {
		return s.renderError(c, http.StatusBadRequest, "Unable to parse access token", err.Error())
	}

	if tokenNonce, ok := idClaims["nonce"].(string); ok && tokenNonce != pending.Nonce {
		slog.Warn("nonce mismatch on callback")
		return s.renderError(c, http.StatusBadRequest, "Nonce mismatch", "")
	}

	identity := oidc.IdentityFromClaims(idClaims)
	roles := oidc.DeriveRoles(accessClaims, s.config.ClientID)

	if err := saveAuth(c, &Auth{
		Identity:   identity,
		Roles:      roles,
		RawIDToken: token.IDToken,
	}); err != nil {
		slog.Error("unable to save session", "error", err)
		return s.renderError(c, http.StatusInternalServerError, "Session error", "")
	}

	slog.Info("login completed", "subject", identity.Subject, "roles", roles)

	// admin goes first so a user holding both roles lands on the admin page
	switch {
	case oidc.HasRole(roles, roleAdmin):
		return c.Redirect(http.StatusFound, "/admin")
	case oidc.HasRole(roles, roleUsers):
		return c.Redirect(http.StatusFound, "/user")
	default:
		return c.Redirect(http.StatusFound, "/no-role")
	}
}

func (s *Server) userPage(c echo.Context) error {
	identity, err := RequireLogin(c)
	if err != nil {
		return err
	}
	return s.renderDashboard(c, "User", "user", identity)
}

func (s *Server) adminPage(c echo.Context) error {
	identity, err := RequireLogin(c)
	if err != nil {
		return err
	}
	return s.renderDashboard(c, "Admin", "admin", identity)
}

func (s *Server) renderDashboard(c echo.Context, title, mode string, identity *oidc.Identity) error {
	auth := CurrentAuth(c)
	email := identity.DisplayName()
	if email == "" {
		email = "user"
	}
	return s.render(c, http.StatusOK, s.templateDashboard, map[string]any{
		"title": title,
		"mode":  mode,
		"email": email,
		"roles": auth.Roles,
	})
}

func (s *Server) noRole(c echo.Context) error {
	email := ""
	if auth := CurrentAuth(c); auth != nil {
		email = auth.Identity.DisplayName()
	}
	return s.render(c, http.StatusOK, s.templateNoRole, map[string]any{
		"title": "No role",
		"email": email,
	})
}

func (s *Server) logout(c echo.Context) error {
	rawIDToken, err := clearSession(c)
	if err != nil {
		slog.Error("unable to clear session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "unable to clear session")
	}

	endSessionURL := s.oidcClient.EndSessionURL(s.config.PostLogoutRedirectURI(), rawIDToken)
	slog.Info("logging out", "had_id_token", rawIDToken != "")

	return c.Redirect(http.StatusFound, endSessionURL)
}
