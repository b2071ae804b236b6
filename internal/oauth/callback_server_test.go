package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestCallbackServer(t *testing.T) *CallbackServer {
	t.Helper()

	// Force port 0 so the listener picks a free port and parallel tests
	// don't collide on the default.
	s := NewCallbackServer(0)
	s.port = 0

	_, err := s.Start(context.Background())
	require.NoError(t, err)
	t.Cleanup(s.Stop)

	return s
}

func TestCallbackServer_DeliversCallback(t *testing.T) {
	s := startTestCallbackServer(t)

	received := make(chan Callback, 1)
	s.Register(func(cb Callback) {
		received <- cb
	})

	resp, err := http.Get(s.RedirectURI() + "?code=auth-code&state=state-123")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Login successful")

	cb := <-received
	assert.Equal(t, "auth-code", cb.Code)
	assert.Equal(t, "state-123", cb.State)
}

func TestCallbackServer_RendersErrorPage(t *testing.T) {
	s := startTestCallbackServer(t)

	received := make(chan Callback, 1)
	s.Register(func(cb Callback) {
		received <- cb
	})

	resp, err := http.Get(s.RedirectURI() + "?error=access_denied&error_description=user+declined")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "access_denied")
	assert.Contains(t, string(body), "user declined")

	// The callback is still forwarded; the coordinator decides what to do
	// with an empty code.
	cb := <-received
	assert.Empty(t, cb.Code)
}

func TestCallbackServer_NoHandlerRegistered(t *testing.T) {
	s := startTestCallbackServer(t)

	resp, err := http.Get(s.RedirectURI() + "?code=auth-code&state=state-123")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCallbackServer_SecurityHeaders(t *testing.T) {
	s := startTestCallbackServer(t)

	resp, err := http.Get(s.RedirectURI() + "?code=c&state=s")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestCallbackServer_RedirectURIUsesLocalhost(t *testing.T) {
	s := startTestCallbackServer(t)

	assert.True(t, strings.HasPrefix(s.RedirectURI(), "http://localhost:"))
	assert.True(t, strings.HasSuffix(s.RedirectURI(), "/callback"))
}

func TestCallbackServer_StopOnContextCancel(t *testing.T) {
	s := NewCallbackServer(0)
	s.port = 0 // free port

	ctx, cancel := context.WithCancel(context.Background())
	uri, err := s.Start(ctx)
	require.NoError(t, err)

	cancel()

	assert.Eventually(t, func() bool {
		_, err := http.Get(fmt.Sprintf("%s?code=c&state=s", uri))
		return err != nil
	}, 2*time.Second, 20*time.Millisecond)
}
