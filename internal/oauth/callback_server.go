package oauth

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"
)

// DefaultCallbackPort is the default port for the local redirect listener.
const DefaultCallbackPort = 4215

//go:embed templates/callback_success.html
var callbackSuccessHTML string

//go:embed templates/callback_error.html
var callbackErrorHTML string

// CallbackServer is a local loopback HTTP server that receives OAuth
// redirects and forwards them to a registered handler. It is the CLI host's
// RedirectSource implementation: registered once, it delivers every callback
// it receives for as long as it runs. State matching and deduplication are
// the coordinator's job, not the listener's.
type CallbackServer struct {
	port     int
	server   *http.Server
	listener net.Listener

	mu      sync.RWMutex
	handler func(Callback)
}

// NewCallbackServer creates a callback server on the specified port.
// If port is 0, DefaultCallbackPort is used.
func NewCallbackServer(port int) *CallbackServer {
	if port == 0 {
		port = DefaultCallbackPort
	}
	return &CallbackServer{port: port}
}

// Register sets the handler redirect callbacks are delivered to.
func (s *CallbackServer) Register(handler func(Callback)) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// Start begins listening and returns the redirect URI to use in
// authorization requests. The server stops when the context is cancelled.
func (s *CallbackServer) Start(ctx context.Context) (string, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server on %s: %w", addr, err)
	}

	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_ = s.server.Serve(listener)
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return s.RedirectURI(), nil
}

// RedirectURI returns the redirect target this listener serves.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/callback", s.port)
}

// handleCallback parses a redirect request, renders the result page, and
// forwards the callback to the registered handler.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")

	query := r.URL.Query()
	cb := Callback{
		Code:  query.Get("code"),
		State: query.Get("state"),
	}

	var tmpl *template.Template
	var data interface{}

	if errCode := query.Get("error"); errCode != "" {
		tmpl = template.Must(template.New("error").Parse(callbackErrorHTML))
		data = map[string]string{
			"Error":       errCode,
			"Description": query.Get("error_description"),
		}
	} else {
		tmpl = template.Must(template.New("success").Parse(callbackSuccessHTML))
		data = map[string]string{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}

	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()

	if handler != nil {
		handler(cb)
	}
}

// Stop gracefully shuts down the callback server.
func (s *CallbackServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// Ensure CallbackServer implements RedirectSource at compile time.
var _ RedirectSource = (*CallbackServer)(nil)
