package oauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAccessTokens(t *testing.T) {
	idp := newFakeIdP(t)
	idp.validTokens = map[string]bool{
		"valid-a": true,
		"valid-b": true,
	}

	c := newTestCoordinator(idp, &stubBrowser{}, &stubRedirects{}, time.Second)

	result := c.ValidateAccessTokens(context.Background(), []string{"valid-a", "expired", "valid-b"})

	assert.Equal(t, map[string]bool{
		"valid-a": true,
		"expired": false,
		"valid-b": true,
	}, result)
}

func TestValidateAccessTokens_Empty(t *testing.T) {
	idp := newFakeIdP(t)
	c := newTestCoordinator(idp, &stubBrowser{}, &stubRedirects{}, time.Second)

	result := c.ValidateAccessTokens(context.Background(), nil)

	assert.Empty(t, result)
	assert.Zero(t, idp.userInfoCalls)
}

func TestValidateAccessTokens_UnreachableProvider(t *testing.T) {
	idp := newFakeIdP(t)
	c := newTestCoordinator(idp, &stubBrowser{}, &stubRedirects{}, time.Second)
	idp.server.Close()

	result := c.ValidateAccessTokens(context.Background(), []string{"valid-a"})

	assert.Equal(t, map[string]bool{"valid-a": false}, result)
}

func TestGetRefreshedTokens(t *testing.T) {
	idp := newFakeIdP(t)
	c := newTestCoordinator(idp, &stubBrowser{}, &stubRedirects{}, time.Second)

	token := c.GetRefreshedTokens(context.Background(), "stored-refresh-token", []string{"openid", "offline_access"})
	require.NotNil(t, token)

	assert.Equal(t, "issued-access-token", token.AccessToken)
	assert.Equal(t, "issued-refresh-token", token.RefreshToken)
	assert.False(t, token.Expiry.IsZero())

	require.Len(t, idp.tokenRequests, 1)
	form := idp.tokenRequests[0]
	assert.Equal(t, "refresh_token", form.Get("grant_type"))
	assert.Equal(t, "stored-refresh-token", form.Get("refresh_token"))
	assert.Equal(t, "test-client-id", form.Get("client_id"))
	assert.Equal(t, "openid offline_access", form.Get("scope"))
}

func TestGetRefreshedTokens_FailureReturnsNil(t *testing.T) {
	idp := newFakeIdP(t)
	idp.failExchange = true
	c := newTestCoordinator(idp, &stubBrowser{}, &stubRedirects{}, time.Second)

	token := c.GetRefreshedTokens(context.Background(), "revoked-refresh-token", nil)

	assert.Nil(t, token)
}

func TestGetRefreshedTokens_UnreachableProviderReturnsNil(t *testing.T) {
	idp := newFakeIdP(t)
	c := newTestCoordinator(idp, &stubBrowser{}, &stubRedirects{}, time.Second)
	idp.server.Close()

	token := c.GetRefreshedTokens(context.Background(), "stored-refresh-token", nil)

	assert.Nil(t, token)
}
