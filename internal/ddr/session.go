package ddr

import (
	"errors"
	"sync"
	"time"
)

// ErrNotAuthenticated reports an authenticated operation attempted without a
// login having produced a credential.
var ErrNotAuthenticated = errors.New("no DDR access token: run login first")

// Credential is the bearer token issued by the login endpoint plus the
// metadata the server reports alongside it. Expiry values are surfaced to
// the log only; re-authentication is user-driven.
type Credential struct {
	AccessToken      string    `json:"access_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int       `json:"expires_in"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresIn int       `json:"refresh_expires_in"`
	IssuedAt         time.Time `json:"issued_at"`
}

// Session holds the credential for the lifetime of a plugin session. A nil
// store keeps the credential purely in memory; with a store, credentials
// survive across CLI invocations.
type Session struct {
	mu    sync.RWMutex
	cred  *Credential
	store TokenStore
}

// NewSession builds a session backed by the optional token store.
func NewSession(store TokenStore) *Session {
	return &Session{store: store}
}

// SetCredential installs the credential and persists it when a store is
// configured.
func (s *Session) SetCredential(cred Credential) error {
	if cred.IssuedAt.IsZero() {
		cred.IssuedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.cred = &cred
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(cred); err != nil {
			return err
		}
	}
	return nil
}

// Credential returns the active credential, falling back to the store when
// the in-memory slot is empty. Absence is the named ErrNotAuthenticated
// failure, not a nil credential.
func (s *Session) Credential() (*Credential, error) {
	s.mu.RLock()
	cred := s.cred
	s.mu.RUnlock()
	if cred != nil {
		return cred, nil
	}

	if s.store != nil {
		stored, ok, err := s.store.Load()
		if err != nil {
			return nil, err
		}
		if ok && stored.AccessToken != "" {
			s.mu.Lock()
			s.cred = &stored
			s.mu.Unlock()
			return &stored, nil
		}
	}
	return nil, ErrNotAuthenticated
}

// Token returns the bearer token string.
func (s *Session) Token() (string, error) {
	cred, err := s.Credential()
	if err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

// Clear drops the credential from memory and from the store.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()
	if s.store != nil {
		return s.store.Clear()
	}
	return nil
}
