package ddr

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// TokenStore abstracts persistence for DDR authentication state.
type TokenStore interface {
	Load() (Credential, bool, error)
	Save(Credential) error
	Clear() error
}

// FileTokenStore writes the credential to a JSON file on disk, guarded by a
// file lock so concurrent CLI invocations do not clobber each other.
type FileTokenStore struct {
	path string
	lock *flock.Flock
}

// NewFileTokenStore builds a FileTokenStore rooted at the provided path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Load reads the credential from disk. A missing file resolves to absence,
// not an error.
func (s *FileTokenStore) Load() (Credential, bool, error) {
	if err := s.lock.RLock(); err != nil {
		return Credential{}, false, fmt.Errorf("lock auth state: %w", err)
	}
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credential{}, false, nil
		}
		return Credential{}, false, fmt.Errorf("read auth state: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, false, fmt.Errorf("decode auth state: %w", err)
	}
	return cred, cred.AccessToken != "", nil
}

// Save persists the credential with restricted permissions.
func (s *FileTokenStore) Save(cred Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure auth state directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock auth state: %w", err)
	}
	defer s.lock.Unlock()

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encode auth state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write auth state: %w", err)
	}
	return nil
}

// Clear removes the persisted credential.
func (s *FileTokenStore) Clear() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock auth state: %w", err)
	}
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove auth state: %w", err)
	}
	return nil
}
