package oidc

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Identity is the subset of ID token claims the application keeps for an
// authenticated session.
type Identity struct {
	Subject           string `json:"sub"`
	Email             string `json:"email,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
}

// DisplayName returns the email if present, the preferred username
// otherwise.
func (i *Identity) DisplayName() string {
	if i.Email != "" {
		return i.Email
	}
	return i.PreferredUsername
}

// ParseUnverifiedClaims decodes the claim set of a serialized JWT without
// checking its signature or standard claims. Callers must only pass tokens
// obtained directly from the provider's token endpoint.
func ParseUnverifiedClaims(serialized string) (map[string]any, error) {
	token, err := jwt.ParseString(serialized, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, fmt.Errorf("unable to parse token: %w", err)
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return nil, fmt.Errorf("unable to export claims: %w", err)
	}
	return claims, nil
}

// IdentityFromClaims extracts the session identity from ID token claims.
// Optional claims are tolerated as absent.
func IdentityFromClaims(claims map[string]any) *Identity {
	identity := &Identity{}
	if sub, ok := claims["sub"].(string); ok {
		identity.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if username, ok := claims["preferred_username"].(string); ok {
		identity.PreferredUsername = username
	}
	return identity
}
