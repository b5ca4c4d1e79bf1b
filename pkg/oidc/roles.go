package oidc

import "sort"

// DeriveRoles collects role names from the three places Keycloak may put
// them in an access token: a mapper-provided top-level "roles" claim, realm
// roles under "realm_access" and client roles under
// "resource_access.<clientID>". Missing or malformed entries contribute
// nothing. The result is deduplicated and sorted ascending.
func DeriveRoles(claims map[string]any, clientID string) []string {
	seen := map[string]bool{}

	collect := func(value any) {
		switch list := value.(type) {
		case []any:
			for _, entry := range list {
				if role, ok := entry.(string); ok {
					seen[role] = true
				}
			}
		case []string:
			for _, role := range list {
				seen[role] = true
			}
		}
	}

	collect(claims["roles"])

	if realmAccess, ok := claims["realm_access"].(map[string]any); ok {
		collect(realmAccess["roles"])
	}

	if resourceAccess, ok := claims["resource_access"].(map[string]any); ok {
		if client, ok := resourceAccess[clientID].(map[string]any); ok {
			collect(client["roles"])
		}
	}

	roles := make([]string, 0, len(seen))
	for role := range seen {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// HasRole reports whether role is in roles.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
