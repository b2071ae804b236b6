// Package oauth implements the browser-based OAuth 2.0 authorization-code
// login for the cloudlink cloud service, plus the token operations the
// session lifecycle depends on (access-token validation, refresh grants).
//
// # Login flow
//
// The Coordinator owns exactly one in-flight login at a time. Login builds
// the authorization URL, opens it in the user's browser (fire-and-forget),
// and races three outcomes: the matching redirect callback, the caller's
// cancellation, and a hard 30-second timeout. Whichever resolves first wins
// and clears the pending login; redirect callbacks arriving afterwards are
// silently dropped.
//
// Redirect callbacks reach the coordinator through a RedirectSource, a
// register-once/deliver-many abstraction supplied by the host. A callback is
// accepted only if its state parameter exactly matches the pending login's
// correlation state; everything else is ignored.
//
// A second concurrent Login fails fast with ErrLoginInProgress rather than
// corrupting the correlation state of the first.
//
// # Token operations
//
// ValidateAccessTokens probes the userinfo endpoint once per token, fully in
// parallel, isolating failures per token. GetRefreshedTokens performs a
// refresh grant and quietly returns nil on any failure so callers can treat
// an unrefreshable session as one to drop rather than a fatal error.
package oauth
