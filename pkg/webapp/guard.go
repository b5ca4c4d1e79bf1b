package webapp

import (
	"net/http"

	"github.com/burbanox/keycloak-harold-burbano/pkg/oidc"
	"github.com/labstack/echo/v4"
)

// RequireRoles guards a route by role membership: 401 when the session
// carries no roles at all, 403 when any required role is missing. Roles
// beyond the required set are permitted. The gate leaves the session
// untouched; a forbidden user stays logged in.
func RequireRoles(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := CurrentAuth(c)
			if auth == nil || len(auth.Roles) == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			for _, role := range required {
				if !oidc.HasRole(auth.Roles, role) {
					return echo.NewHTTPError(http.StatusForbidden, "forbidden")
				}
			}
			return next(c)
		}
	}
}

// RequireLogin yields the session identity or fails with 401. Protected
// pages call this in addition to the role gate.
func RequireLogin(c echo.Context) (*oidc.Identity, error) {
	auth := CurrentAuth(c)
	if auth == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return auth.Identity, nil
}
