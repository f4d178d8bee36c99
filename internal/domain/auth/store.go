package auth

import (
	"context"
	"errors"
)

// Sentinel errors for credential lookup.
var (
	// ErrKeyNotFound is returned when an API key is not found.
	ErrKeyNotFound = errors.New("api key not found")
	// ErrIdentityNotFound is returned when an identity is not found.
	ErrIdentityNotFound = errors.New("identity not found")
)

// Store provides credential lookup for authentication.
// Interface in the domain package; implementations live in adapters.
type Store interface {
	// GetAPIKey retrieves an API key by its hash.
	GetAPIKey(ctx context.Context, keyHash string) (*APIKey, error)

	// GetIdentity retrieves an identity by ID.
	GetIdentity(ctx context.Context, id string) (*Identity, error)

	// ListAPIKeys returns all stored API keys for iteration-based
	// verification of Argon2id hashes.
	ListAPIKeys(ctx context.Context) ([]*APIKey, error)
}
