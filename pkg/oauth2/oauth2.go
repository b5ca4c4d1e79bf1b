package oauth2

import "fmt"

// TokenResponse is the body returned by the token endpoint on a successful
// authorization code exchange.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
}

// Keys lists the token fields actually present in the response. Used for
// diagnostics when the provider returns an incomplete token set.
func (t *TokenResponse) Keys() []string {
	keys := []string{}
	if t.AccessToken != "" {
		keys = append(keys, "access_token")
	}
	if t.TokenType != "" {
		keys = append(keys, "token_type")
	}
	if t.Scope != "" {
		keys = append(keys, "scope")
	}
	if t.RefreshToken != "" {
		keys = append(keys, "refresh_token")
	}
	if t.IDToken != "" {
		keys = append(keys, "id_token")
	}
	return keys
}

type Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}
