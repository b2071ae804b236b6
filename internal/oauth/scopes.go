package oauth

// requiredScopes are always requested in addition to the caller's scopes.
// offline_access is what makes the provider issue a refresh token.
var requiredScopes = []string{"openid", "profile", "email", "offline_access"}

// NormalizeScopes returns the requested scopes with the required OIDC scopes
// appended if absent. Order is preserved, duplicates are dropped, and the
// input slice is never mutated.
func NormalizeScopes(requested []string) []string {
	normalized := make([]string, 0, len(requested)+len(requiredScopes))
	seen := make(map[string]bool, len(requested)+len(requiredScopes))

	for _, scope := range requested {
		if scope == "" || seen[scope] {
			continue
		}
		seen[scope] = true
		normalized = append(normalized, scope)
	}

	for _, scope := range requiredScopes {
		if seen[scope] {
			continue
		}
		seen[scope] = true
		normalized = append(normalized, scope)
	}

	return normalized
}
