package reconcile

import (
	"context"
	"log/slog"

	"golang.org/x/oauth2"

	"cloudlink/internal/session"
)

// TokenValidator checks a batch of access tokens against the identity
// provider, mapping each token to its validity. Implementations must isolate
// failures per token and never return an error.
type TokenValidator interface {
	ValidateAccessTokens(ctx context.Context, tokens []string) map[string]bool
}

// TokenRefresher exchanges a refresh token for a new token pair, returning
// nil when the refresh is not possible.
type TokenRefresher interface {
	GetRefreshedTokens(ctx context.Context, refreshToken string, scopes []string) *oauth2.Token
}

// Outcome is the result of one reconciliation pass. Result, Removed, and the
// implicit unchanged set partition the input sessions by id: every input
// session is either kept (possibly with a new access token) or removed.
type Outcome struct {
	// Result is the corrected session list, in original order.
	Result []session.Session

	// Removed holds the sessions dropped because their token was invalid
	// and no usable refresh path existed.
	Removed []session.Session

	// Changed holds the refreshed sessions with their new access token;
	// id and account are unchanged from the originals.
	Changed []session.Session

	// RefreshedRecords holds the rotated refresh-token records produced
	// by successful refreshes, to be persisted by the caller.
	RefreshedRecords []session.RefreshTokenRecord
}

// Reconciler validates and repairs session lists. It is stateless; all
// side effects are the network calls made through the injected validator
// and refresher.
type Reconciler struct {
	validator TokenValidator
	refresher TokenRefresher
}

// New creates a reconciler using the given validator and refresher.
func New(validator TokenValidator, refresher TokenRefresher) *Reconciler {
	return &Reconciler{
		validator: validator,
		refresher: refresher,
	}
}

// Reconcile validates all sessions, refreshes what it can, and drops what
// it can't.
//
// An empty input returns immediately with no network calls. When every
// access token validates, the sessions are returned unchanged and no refresh
// is attempted. Otherwise sessions are walked in original order: valid ones
// are kept as-is, invalid ones are refreshed through their matching record,
// and sessions without a usable refresh path are removed. Validation runs as
// one parallel batch; refreshes run sequentially, one session at a time.
func (r *Reconciler) Reconcile(ctx context.Context, sessions []session.Session, records []session.RefreshTokenRecord) Outcome {
	if len(sessions) == 0 {
		return Outcome{}
	}

	tokens := make([]string, len(sessions))
	for i, s := range sessions {
		tokens[i] = s.AccessToken
	}
	validity := r.validator.ValidateAccessTokens(ctx, tokens)

	allValid := true
	for _, s := range sessions {
		if !validity[s.AccessToken] {
			allValid = false
			break
		}
	}
	if allValid {
		return Outcome{Result: sessions}
	}

	recordsByID := make(map[string]session.RefreshTokenRecord, len(records))
	for _, rec := range records {
		recordsByID[rec.ID] = rec
	}

	var out Outcome
	for _, s := range sessions {
		if validity[s.AccessToken] {
			out.Result = append(out.Result, s)
			continue
		}

		record, ok := recordsByID[s.ID]
		if !ok {
			slog.Debug("dropping session without refresh record",
				"session_id", s.ID,
			)
			out.Removed = append(out.Removed, s)
			continue
		}

		refreshed := r.refresher.GetRefreshedTokens(ctx, record.RefreshToken, s.Scopes)
		if refreshed == nil {
			slog.Info("dropping session after failed refresh",
				"session_id", s.ID,
				"account", s.Account.ID,
			)
			out.Removed = append(out.Removed, s)
			continue
		}

		updated := s.WithAccessToken(refreshed.AccessToken)
		out.Result = append(out.Result, updated)
		out.Changed = append(out.Changed, updated)
		out.RefreshedRecords = append(out.RefreshedRecords, session.RefreshTokenRecord{
			ID:           s.ID,
			RefreshToken: refreshed.RefreshToken,
		})

		slog.Debug("refreshed session access token",
			"session_id", s.ID,
			"account", s.Account.ID,
		)
	}

	return out
}
