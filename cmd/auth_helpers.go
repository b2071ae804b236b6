package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"

	"cloudlink/internal/auth"
	"cloudlink/internal/config"
	"cloudlink/internal/oauth"
	"cloudlink/internal/reconcile"
	"cloudlink/internal/session"
	"cloudlink/pkg/logging"
)

// app bundles the assembled session subsystem for a single CLI invocation.
type app struct {
	provider *auth.Provider
	callback *oauth.CallbackServer
}

// buildApp assembles the provider and its collaborators from configuration.
// The returned cleanup function stops the redirect listener.
func buildApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load(authConfigPath)
	if err != nil {
		return nil, nil, err
	}

	vault, err := session.NewFileVault(cfg.VaultDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open secret vault: %w", err)
	}
	store := session.NewSecretStore(vault)

	callback := oauth.NewCallbackServer(cfg.CallbackPort)
	redirectURI, err := callback.Start(ctx)
	if err != nil {
		return nil, nil, err
	}

	coordinator := oauth.NewCoordinator(oauth.Config{
		Domain:      cfg.OAuth.Domain,
		ClientID:    cfg.OAuth.ClientID,
		Audience:    cfg.OAuth.Audience,
		RedirectURI: redirectURI,
	}, oauth.SystemBrowser{}, callback)

	provider := auth.NewProvider(auth.Config{
		Store:      store,
		Flow:       coordinator,
		Reconciler: reconcile.New(coordinator, coordinator),
		Notifier:   consoleNotifier{},
		Progress:   spinnerProgress{},
		Usage:      loggingUsage{},
	})

	return &app{provider: provider, callback: callback}, callback.Stop, nil
}

// consoleNotifier presents user-facing messages on the terminal.
type consoleNotifier struct{}

func (consoleNotifier) Info(message string) {
	if !authQuiet {
		fmt.Println(text.FgGreen.Sprint(message))
	}
}

func (consoleNotifier) Error(message string) {
	fmt.Println(text.FgRed.Sprint(message))
}

// spinnerProgress shows a terminal spinner while a long-running operation
// is in flight.
type spinnerProgress struct{}

func (spinnerProgress) Run(ctx context.Context, title string, fn func(ctx context.Context) error) error {
	if authQuiet {
		return fn(ctx)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + title
	s.Start()
	defer s.Stop()

	return fn(ctx)
}

// loggingUsage records feature-usage signals in the debug log. The CLI has
// no telemetry backend; the signals still show up when debugging.
type loggingUsage struct{}

func (loggingUsage) FeatureUsed(feature string) {
	logging.Debug("Usage", "Feature used: %s", feature)
}

// formatScopes renders a session's scope list for table output.
func formatScopes(scopes []string) string {
	if len(scopes) == 0 {
		return "-"
	}
	out := scopes[0]
	for _, scope := range scopes[1:] {
		out += ", " + scope
	}
	return out
}
