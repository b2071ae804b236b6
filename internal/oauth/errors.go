package oauth

import "errors"

// Login failure taxonomy. The interactive login path is the only one that
// surfaces errors to the user, and callers classify them with errors.Is to
// present cancellation, timeout, and generic failure differently.
var (
	// ErrLoginCancelled is returned when the caller's context is
	// cancelled before the browser redirect arrives.
	ErrLoginCancelled = errors.New("login cancelled")

	// ErrLoginTimeout is returned when no redirect arrives within the
	// login timeout.
	ErrLoginTimeout = errors.New("login timed out waiting for the browser response")

	// ErrLoginInProgress is returned when Login is called while another
	// login is still pending on the same coordinator.
	ErrLoginInProgress = errors.New("another login is already in progress")

	// ErrTokenExchangeFailed is returned when the authorization code
	// could not be exchanged for tokens.
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// ErrUserInfoFailed is returned when user info could not be fetched
	// with a freshly issued access token.
	ErrUserInfoFailed = errors.New("could not retrieve user info")
)
