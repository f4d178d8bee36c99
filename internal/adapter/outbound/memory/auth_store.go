// Package memory provides in-memory store implementations seeded from
// configuration.
package memory

import (
	"context"
	"sync"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/auth"
)

// AuthStore is an in-memory credential store seeded at startup from the
// configuration file. Reads are concurrent; the store is never mutated
// after seeding.
type AuthStore struct {
	mu         sync.RWMutex
	keys       map[string]*auth.APIKey // by key hash
	identities map[string]*auth.Identity
}

var _ auth.Store = (*AuthStore)(nil)

// NewAuthStore creates an empty AuthStore.
func NewAuthStore() *AuthStore {
	return &AuthStore{
		keys:       make(map[string]*auth.APIKey),
		identities: make(map[string]*auth.Identity),
	}
}

// SeedIdentity adds an identity.
func (s *AuthStore) SeedIdentity(identity *auth.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.ID] = identity
}

// SeedAPIKey adds an API key.
func (s *AuthStore) SeedAPIKey(key *auth.APIKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.Key] = key
}

// GetAPIKey retrieves an API key by its hash.
func (s *AuthStore) GetAPIKey(_ context.Context, keyHash string) (*auth.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k, ok := s.keys[keyHash]; ok {
		return k, nil
	}
	return nil, auth.ErrKeyNotFound
}

// GetIdentity retrieves an identity by ID.
func (s *AuthStore) GetIdentity(_ context.Context, id string) (*auth.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.identities[id]; ok {
		return i, nil
	}
	return nil, auth.ErrIdentityNotFound
}

// ListAPIKeys returns all stored API keys.
func (s *AuthStore) ListAPIKeys(_ context.Context) ([]*auth.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*auth.APIKey, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, k)
	}
	return out, nil
}
