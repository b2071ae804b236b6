package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Vault is the secure key-value storage capability supplied by the host.
// Implementations must make Get and Set individually atomic; the store never
// performs partial updates of a key.
type Vault interface {
	// Get returns the value stored under key, or ErrNotFound if the key
	// has never been written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, fully replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// ErrNotFound is returned by Vault.Get when no value exists for a key.
var ErrNotFound = errors.New("secret not found")

// Vault keys for the two persisted lists. They are deliberately distinct so
// the more sensitive refresh tokens rotate independently of the sessions.
const (
	sessionsKey      = "cloudlink.sessions"
	refreshTokensKey = "cloudlink.refreshTokens"
)

// SecretStore persists the session list and the refresh-token list in a
// secure vault.
//
// SECURITY: this store handles bearer and refresh credentials. Token values
// are never logged; only counts and session ids appear in log output.
type SecretStore struct {
	vault Vault
}

// NewSecretStore creates a store backed by the given vault.
func NewSecretStore(vault Vault) *SecretStore {
	return &SecretStore{vault: vault}
}

// Sessions returns the persisted session list. A missing key, an unreadable
// vault, or a corrupt blob all degrade to an empty list -- stored state is
// best-effort and never produces an error on the read path.
func (s *SecretStore) Sessions(ctx context.Context) []Session {
	var sessions []Session
	if !s.read(ctx, sessionsKey, &sessions) {
		return nil
	}
	return sessions
}

// StoreSessions fully overwrites the persisted session list.
func (s *SecretStore) StoreSessions(ctx context.Context, sessions []Session) error {
	return s.write(ctx, sessionsKey, sessions)
}

// RefreshTokens returns the persisted refresh-token records, degrading to
// empty on any read or parse failure.
func (s *SecretStore) RefreshTokens(ctx context.Context) []RefreshTokenRecord {
	var records []RefreshTokenRecord
	if !s.read(ctx, refreshTokensKey, &records) {
		return nil
	}
	return records
}

// StoreRefreshTokens fully overwrites the persisted refresh-token list.
func (s *SecretStore) StoreRefreshTokens(ctx context.Context, records []RefreshTokenRecord) error {
	return s.write(ctx, refreshTokensKey, records)
}

// StoreRefreshTokenForID replaces the refresh token stored for the given
// session id, appending a new record if none exists. The whole list is
// rewritten; merging is done here, not at the vault layer.
func (s *SecretStore) StoreRefreshTokenForID(ctx context.Context, id, refreshToken string) error {
	records := s.RefreshTokens(ctx)

	replaced := false
	for i := range records {
		if records[i].ID == id {
			records[i].RefreshToken = refreshToken
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, RefreshTokenRecord{ID: id, RefreshToken: refreshToken})
	}

	return s.StoreRefreshTokens(ctx, records)
}

// read unmarshals the blob under key into out. Returns false when the key is
// absent or the blob cannot be parsed; corrupt data is treated as absent.
func (s *SecretStore) read(ctx context.Context, key string, out interface{}) bool {
	data, err := s.vault.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Debug("secret store read failed, treating as empty",
				"key", key,
				"error", err.Error(),
			)
		}
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		slog.Debug("secret store blob is corrupt, treating as empty",
			"key", key,
			"error", err.Error(),
		)
		return false
	}

	return true
}

func (s *SecretStore) write(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}

	if err := s.vault.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}

	return nil
}
