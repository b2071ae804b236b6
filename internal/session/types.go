package session

// Account identifies the user a session belongs to.
type Account struct {
	// ID is the stable user identifier (the email reported by the
	// identity provider).
	ID string `json:"id"`

	// Label is the display name shown to the user.
	Label string `json:"label"`
}

// Session is the authenticated identity unit exposed to the rest of the
// application. The ID is generated once at creation and never changes;
// only AccessToken is ever replaced in place (by refresh).
type Session struct {
	// ID is a random, globally unique identifier. It is the join key
	// to refresh-token records.
	ID string `json:"id"`

	// AccessToken is the bearer credential presented on API calls.
	AccessToken string `json:"accessToken"`

	// Account is the user this session authenticates.
	Account Account `json:"account"`

	// Scopes is the ordered list of granted scope strings.
	Scopes []string `json:"scopes"`
}

// RefreshTokenRecord pairs a session id with its long-lived refresh
// credential. Records are stored separately from sessions because they are
// more sensitive and rotate independently: every successful refresh yields
// a new refresh token that overwrites the old one for that id.
type RefreshTokenRecord struct {
	// ID is the owning session's id.
	ID string `json:"id"`

	// RefreshToken is the opaque long-lived credential.
	RefreshToken string `json:"refreshToken"`
}

// WithAccessToken returns a copy of the session with a replaced access
// token. ID, account, and scopes are carried over unchanged.
func (s Session) WithAccessToken(accessToken string) Session {
	copied := s
	copied.AccessToken = accessToken
	return copied
}
