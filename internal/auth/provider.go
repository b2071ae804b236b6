package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"cloudlink/internal/oauth"
	"cloudlink/internal/reconcile"
	"cloudlink/internal/session"
)

// ChangeEvent describes a change to the session set. Added, Removed, and
// Changed never overlap; Changed entries carry the new session values.
type ChangeEvent struct {
	Added   []session.Session
	Removed []session.Session
	Changed []session.Session
}

// LoginFlow is the login capability the provider delegates to.
type LoginFlow interface {
	Login(ctx context.Context, scopes []string) (*oauth.LoginResult, error)
}

// Config wires the provider's collaborators. Store, Flow, and Reconciler
// are required; the host capabilities default to no-ops when nil.
type Config struct {
	Store      *session.SecretStore
	Flow       LoginFlow
	Reconciler *reconcile.Reconciler
	Notifier   Notifier
	Progress   ProgressRunner
	Usage      UsageRecorder
}

// Provider is the authentication session facade exposed to the rest of the
// application. The cloud service is single-account: a successful login
// replaces the stored session set.
type Provider struct {
	store      *session.SecretStore
	flow       LoginFlow
	reconciler *reconcile.Reconciler
	notifier   Notifier
	progress   ProgressRunner
	usage      UsageRecorder

	mu        sync.Mutex
	subs      map[int]func(ChangeEvent)
	nextSubID int
}

// NewProvider creates a provider from the given configuration.
func NewProvider(cfg Config) *Provider {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}
	progress := cfg.Progress
	if progress == nil {
		progress = noopProgress{}
	}
	usage := cfg.Usage
	if usage == nil {
		usage = noopUsage{}
	}

	return &Provider{
		store:      cfg.Store,
		flow:       cfg.Flow,
		reconciler: cfg.Reconciler,
		notifier:   notifier,
		progress:   progress,
		usage:      usage,
		subs:       make(map[int]func(ChangeEvent)),
	}
}

// Subscribe registers a listener for session change events. Listeners are
// invoked synchronously, after the corresponding store writes have
// completed. The returned function cancels the subscription.
func (p *Provider) Subscribe(fn func(ChangeEvent)) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// emit delivers an event to all subscribers.
func (p *Provider) emit(event ChangeEvent) {
	p.mu.Lock()
	listeners := make([]func(ChangeEvent), 0, len(p.subs))
	for _, fn := range p.subs {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}

// Initialize reconciles the persisted sessions against the identity
// provider: it validates every stored session, transparently refreshes
// expired ones, and drops the unrecoverable ones. The corrected state is
// persisted before subscribers are notified with the diff.
//
// With no stored sessions this is a no-op and issues zero network calls.
func (p *Provider) Initialize(ctx context.Context) error {
	sessions := p.store.Sessions(ctx)
	if len(sessions) == 0 {
		return nil
	}

	records := p.store.RefreshTokens(ctx)
	out := p.reconciler.Reconcile(ctx, sessions, records)

	if len(out.Removed) == 0 && len(out.Changed) == 0 {
		// Nothing to repair; the stored state is already correct.
		return nil
	}

	if err := p.store.StoreSessions(ctx, out.Result); err != nil {
		return fmt.Errorf("failed to persist reconciled sessions: %w", err)
	}
	if err := p.store.StoreRefreshTokens(ctx, mergeRecords(records, out)); err != nil {
		return fmt.Errorf("failed to persist refresh tokens: %w", err)
	}

	slog.Info("reconciled stored sessions",
		"kept", len(out.Result),
		"removed", len(out.Removed),
		"refreshed", len(out.Changed),
	)

	p.emit(ChangeEvent{
		Removed: out.Removed,
		Changed: out.Changed,
	})

	return nil
}

// mergeRecords rewrites the refresh-token list after reconciliation:
// records of removed sessions are dropped and rotated tokens overwrite
// their predecessors.
func mergeRecords(records []session.RefreshTokenRecord, out reconcile.Outcome) []session.RefreshTokenRecord {
	removed := make(map[string]bool, len(out.Removed))
	for _, s := range out.Removed {
		removed[s.ID] = true
	}
	rotated := make(map[string]string, len(out.RefreshedRecords))
	for _, rec := range out.RefreshedRecords {
		rotated[rec.ID] = rec.RefreshToken
	}

	merged := make([]session.RefreshTokenRecord, 0, len(records))
	for _, rec := range records {
		if removed[rec.ID] {
			continue
		}
		if token, ok := rotated[rec.ID]; ok {
			rec.RefreshToken = token
		}
		merged = append(merged, rec)
	}
	return merged
}

// CreateSession runs the interactive login under user-visible progress,
// persists the resulting session and its refresh token, and notifies
// subscribers. Failures are classified so cancellation, timeout, and
// generic failure present differently, and are always propagated.
func (p *Provider) CreateSession(ctx context.Context, scopes []string) (*session.Session, error) {
	var created *session.Session

	err := p.progress.Run(ctx, "Logging in to cloudlink...", func(ctx context.Context) error {
		result, err := p.flow.Login(ctx, scopes)
		if err != nil {
			return err
		}

		// Single-account provider: the new session replaces the
		// stored set wholesale.
		newSessions := []session.Session{result.Session}
		newRecords := []session.RefreshTokenRecord{{
			ID:           result.Session.ID,
			RefreshToken: result.RefreshToken,
		}}

		if err := p.store.StoreSessions(ctx, newSessions); err != nil {
			return err
		}
		if err := p.store.StoreRefreshTokens(ctx, newRecords); err != nil {
			return err
		}

		created = &result.Session
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrLoginCancelled):
			// The user backed out; no message needed.
		case errors.Is(err, oauth.ErrLoginTimeout):
			p.notifier.Error("Login failed: timed out while waiting for the browser response")
		default:
			p.notifier.Error(fmt.Sprintf("Login failed. Please try again.\n%v", err))
		}
		return nil, err
	}

	p.emit(ChangeEvent{Added: []session.Session{*created}})
	p.notifier.Info(fmt.Sprintf("Successfully authenticated with cloudlink. Welcome, %s", created.Account.Label))
	p.usage.FeatureUsed("cloud.login")

	return created, nil
}

// RemoveSession removes the session with the given id and its refresh
// record. A missing id is a no-op, not an error, and emits no event.
func (p *Provider) RemoveSession(ctx context.Context, id string) error {
	sessions := p.store.Sessions(ctx)

	var removed *session.Session
	remaining := make([]session.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.ID == id {
			s := s
			removed = &s
			continue
		}
		remaining = append(remaining, s)
	}

	records := p.store.RefreshTokens(ctx)
	remainingRecords := make([]session.RefreshTokenRecord, 0, len(records))
	for _, rec := range records {
		if rec.ID == id {
			continue
		}
		remainingRecords = append(remainingRecords, rec)
	}
	if err := p.store.StoreRefreshTokens(ctx, remainingRecords); err != nil {
		return err
	}

	if err := p.store.StoreSessions(ctx, remaining); err != nil {
		return err
	}

	if removed == nil {
		return nil
	}

	p.usage.FeatureUsed("cloud.logout")
	p.emit(ChangeEvent{Removed: []session.Session{*removed}})

	return nil
}

// Sessions returns the persisted session list as-is. The scopes parameter
// is accepted for interface compatibility but does not filter the result.
func (p *Provider) Sessions(ctx context.Context, _ []string) []session.Session {
	return p.store.Sessions(ctx)
}

// Refresh re-runs reconciliation on demand, e.g. when session drift is
// suspected.
func (p *Provider) Refresh(ctx context.Context) error {
	return p.Initialize(ctx)
}
