package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultVaultDir is the default directory for the file-backed vault,
// relative to the user's home directory.
const DefaultVaultDir = ".config/cloudlink/secrets"

// FileVault is a file-backed Vault implementation.
//
// SECURITY: the vault directory is created with 0700 permissions (owner
// only) and every secret file with 0600 (owner read/write only). Vault keys
// are hashed to produce filesystem-safe names, so key strings never appear
// on disk.
type FileVault struct {
	mu  sync.RWMutex
	dir string
}

// NewFileVault creates a file vault rooted at dir, creating the directory
// if needed. An empty dir defaults to ~/.config/cloudlink/secrets.
func NewFileVault(dir string) (*FileVault, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, DefaultVaultDir)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}

	return &FileVault{dir: dir}, nil
}

// Dir returns the directory the vault persists to.
func (v *FileVault) Dir() string {
	return v.dir
}

// Get reads the value stored under key. Returns ErrNotFound when the key
// has never been written.
func (v *FileVault) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	// #nosec G304 -- the path is derived from a hashed key, not user input
	data, err := os.ReadFile(v.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return data, nil
}

// Set writes value under key with restricted permissions, fully replacing
// any previous value.
func (v *FileVault) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := os.WriteFile(v.filePath(key), value, 0600); err != nil {
		return fmt.Errorf("failed to write secret file: %w", err)
	}

	return nil
}

// filePath maps a vault key to a filesystem-safe path inside the vault
// directory.
func (v *FileVault) filePath(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(v.dir, hex.EncodeToString(hash[:16])+".json")
}

// Ensure FileVault implements Vault at compile time.
var _ Vault = (*FileVault)(nil)
