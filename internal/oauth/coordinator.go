package oauth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cloudlink/internal/session"
)

// DefaultLoginTimeout is the hard ceiling on how long a login waits for the
// browser redirect, measured from the authorize-URL dispatch.
const DefaultLoginTimeout = 30 * time.Second

// DefaultHTTPTimeout is the default timeout for token and userinfo requests.
const DefaultHTTPTimeout = 30 * time.Second

// Config holds the OAuth client settings for the cloud service.
type Config struct {
	// Domain is the identity provider base URL, e.g. https://auth.cloudlink.dev.
	Domain string

	// ClientID is the OAuth client id registered for this host.
	ClientID string

	// Audience is the API audience tokens are issued for.
	Audience string

	// RedirectURI is the fixed redirect target owned by the host.
	RedirectURI string

	// LoginTimeout overrides DefaultLoginTimeout. Mainly for tests.
	LoginTimeout time.Duration

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client
}

// Callback carries the query parameters of an OAuth redirect delivered by
// the host.
type Callback struct {
	Code  string
	State string
}

// RedirectSource delivers OAuth redirect callbacks from the host. The
// coordinator registers a single handler at construction time; the source
// may deliver any number of callbacks to it over its lifetime.
type RedirectSource interface {
	Register(handler func(Callback))
}

// BrowserOpener opens a URL in the user's external browser.
type BrowserOpener interface {
	OpenURL(url string) error
}

// LoginResult is the outcome of a successful login: the new session and the
// refresh token that must be persisted alongside it.
type LoginResult struct {
	Session      session.Session
	RefreshToken string
}

// pendingLogin is the correlation state of the single in-flight login.
// It exists from the moment Login generates the state parameter until the
// redirect/cancellation/timeout race resolves.
type pendingLogin struct {
	stateID string
	codeCh  chan string
}

// Coordinator drives the authorization-code login flow and performs the
// token operations against the identity provider. It holds at most one
// pending login at a time.
type Coordinator struct {
	cfg        Config
	httpClient *http.Client
	browser    BrowserOpener

	mu      sync.Mutex
	pending *pendingLogin
}

// NewCoordinator creates a coordinator and registers it with the redirect
// source. Callbacks delivered while no login is pending are dropped.
func NewCoordinator(cfg Config, browser BrowserOpener, redirects RedirectSource) *Coordinator {
	if cfg.LoginTimeout == 0 {
		cfg.LoginTimeout = DefaultLoginTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	c := &Coordinator{
		cfg:        cfg,
		httpClient: httpClient,
		browser:    browser,
	}

	redirects.Register(c.deliver)

	return c
}

// Login runs the full authorization-code flow and returns a new session.
// The caller is responsible for persisting the result and emitting change
// events.
//
// Cancellation is cooperative: ctx only aborts the wait for the browser
// redirect. Once the authorization code has been received, the token
// exchange and userinfo fetch run to completion regardless of ctx.
func (c *Coordinator) Login(ctx context.Context, requestedScopes []string) (*LoginResult, error) {
	scopes := NormalizeScopes(requestedScopes)

	stateID, err := generateState()
	if err != nil {
		return nil, err
	}

	pending := &pendingLogin{
		stateID: stateID,
		codeCh:  make(chan string, 1),
	}

	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()
		return nil, ErrLoginInProgress
	}
	c.pending = pending
	c.mu.Unlock()
	defer c.clearPending()

	authURL := c.buildAuthorizationURL(scopes, stateID)

	// The timeout is measured from the authorize-URL dispatch and is
	// independent of the cancellation signal.
	timer := time.NewTimer(c.cfg.LoginTimeout)
	defer timer.Stop()

	// Fire-and-forget: a failed browser launch is logged but never blocks
	// or fails the flow. The user can still complete the login by opening
	// the URL manually.
	if err := c.browser.OpenURL(authURL); err != nil {
		slog.Warn("failed to open browser for login",
			"error", err.Error(),
		)
	}

	var code string
	select {
	case code = <-pending.codeCh:
	case <-ctx.Done():
		return nil, ErrLoginCancelled
	case <-timer.C:
		return nil, ErrLoginTimeout
	}

	// The race is resolved; clear the correlation slot immediately so a
	// late duplicate redirect is dropped instead of queued.
	c.clearPending()

	// Detach from the caller's cancellation: the exchange always runs to
	// completion once begun.
	exchangeCtx := context.WithoutCancel(ctx)

	token, err := c.exchangeCode(exchangeCtx, code)
	if err != nil {
		return nil, err
	}

	info, err := c.fetchUserInfo(exchangeCtx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	slog.Info("login succeeded",
		"account", info.Email,
	)

	return &LoginResult{
		Session: session.Session{
			ID:          uuid.NewString(),
			AccessToken: token.AccessToken,
			Account: session.Account{
				ID:    info.Email,
				Label: info.Name,
			},
			Scopes: scopes,
		},
		RefreshToken: token.RefreshToken,
	}, nil
}

// deliver routes a redirect callback to the pending login. Callbacks with a
// missing code, a mismatched state, or no login pending are dropped -- late
// duplicates and callbacks for superseded logins are expected, not errors.
func (c *Coordinator) deliver(cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		slog.Debug("dropping redirect callback, no login pending")
		return
	}
	if cb.State == "" || cb.State != c.pending.stateID {
		slog.Warn("dropping redirect callback with mismatched state")
		return
	}
	if cb.Code == "" {
		slog.Debug("dropping redirect callback without authorization code")
		return
	}

	select {
	case c.pending.codeCh <- cb.Code:
	default:
	}
}

// clearPending resets the correlation slot. Safe to call multiple times.
func (c *Coordinator) clearPending() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// buildAuthorizationURL constructs the browser-navigated authorize request.
func (c *Coordinator) buildAuthorizationURL(scopes []string, stateID string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {c.cfg.ClientID},
		"redirect_uri":  {c.cfg.RedirectURI},
		"state":         {stateID},
		"scope":         {strings.Join(scopes, " ")},
		"audience":      {c.cfg.Audience},
	}

	return fmt.Sprintf("%s/authorize?%s", c.cfg.Domain, params.Encode())
}
