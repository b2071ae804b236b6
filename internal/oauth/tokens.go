package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// userInfo is the subset of the userinfo response the session model needs.
type userInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// exchangeCode exchanges an authorization code for tokens. A non-success
// response or unparsable body is a hard failure.
func (c *Coordinator) exchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"client_id":    {c.cfg.ClientID},
		"code":         {code},
		"redirect_uri": {c.cfg.RedirectURI},
		"audience":     {c.cfg.Audience},
	}

	token, err := c.postTokenEndpoint(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err)
	}

	return token, nil
}

// fetchUserInfo retrieves the account info behind an access token.
func (c *Coordinator) fetchUserInfo(ctx context.Context, accessToken string) (*userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Domain+"/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUserInfoFailed, resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}

	return &info, nil
}

// ValidateAccessTokens checks each access token against the userinfo
// endpoint, fully in parallel. Any individual failure maps that token to
// false without affecting the others; this call never returns an error.
func (c *Coordinator) ValidateAccessTokens(ctx context.Context, tokens []string) map[string]bool {
	validity := make([]bool, len(tokens))

	g, ctx := errgroup.WithContext(ctx)
	for i, token := range tokens {
		i, token := i, token
		g.Go(func() error {
			_, err := c.fetchUserInfo(ctx, token)
			validity[i] = err == nil
			return nil
		})
	}
	_ = g.Wait()

	result := make(map[string]bool, len(tokens))
	for i, token := range tokens {
		result[token] = validity[i]
	}
	return result
}

// GetRefreshedTokens exchanges a refresh token for a new access/refresh
// token pair. On any failure it returns nil rather than an error, so callers
// can treat a failed refresh as a session to drop.
func (c *Coordinator) GetRefreshedTokens(ctx context.Context, refreshToken string, scopes []string) *oauth2.Token {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.cfg.ClientID},
		"redirect_uri":  {c.cfg.RedirectURI},
		"scope":         {strings.Join(scopes, " ")},
	}

	token, err := c.postTokenEndpoint(ctx, data)
	if err != nil {
		slog.Debug("token refresh failed",
			"error", err.Error(),
		)
		return nil
	}

	return token
}

// postTokenEndpoint POSTs a form-urlencoded grant to the token endpoint and
// decodes the response into an oauth2.Token.
func (c *Coordinator) postTokenEndpoint(ctx context.Context, data url.Values) (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Domain+"/oauth/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
		RefreshToken string `json:"refresh_token"`
		Scope        string `json:"scope"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, err
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("response contains no access token")
	}

	token := &oauth2.Token{
		AccessToken:  tokenResp.AccessToken,
		TokenType:    tokenResp.TokenType,
		RefreshToken: tokenResp.RefreshToken,
	}
	if tokenResp.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	return token, nil
}
