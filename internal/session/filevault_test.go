package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileVault_RoundTrip(t *testing.T) {
	vault, err := NewFileVault(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, vault.Set(ctx, "cloudlink.sessions", []byte(`[{"id":"a"}]`)))

	data, err := vault.Get(ctx, "cloudlink.sessions")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(data))
}

func TestFileVault_MissingKeyReturnsErrNotFound(t *testing.T) {
	vault, err := NewFileVault(t.TempDir())
	require.NoError(t, err)

	_, err = vault.Get(context.Background(), "never-written")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileVault_SetOverwrites(t *testing.T) {
	vault, err := NewFileVault(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, vault.Set(ctx, "key", []byte("first")))
	require.NoError(t, vault.Set(ctx, "key", []byte("second")))

	data, err := vault.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestFileVault_CreatesDirectoryWithRestrictedPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "secrets")

	vault, err := NewFileVault(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, vault.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestFileVault_SecretFilesAreOwnerOnly(t *testing.T) {
	dir := t.TempDir()
	vault, err := NewFileVault(dir)
	require.NoError(t, err)

	require.NoError(t, vault.Set(context.Background(), "cloudlink.refreshTokens", []byte("secret")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Key strings never appear in filenames.
	assert.NotContains(t, entries[0].Name(), "refreshTokens")
}

func TestFileVault_KeysMapToDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	vault, err := NewFileVault(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, vault.Set(ctx, "cloudlink.sessions", []byte("a")))
	require.NoError(t, vault.Set(ctx, "cloudlink.refreshTokens", []byte("b")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileVault_RespectsContextCancellation(t *testing.T) {
	vault, err := NewFileVault(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = vault.Get(ctx, "key")
	assert.ErrorIs(t, err, context.Canceled)

	err = vault.Set(ctx, "key", []byte("value"))
	assert.ErrorIs(t, err, context.Canceled)
}
