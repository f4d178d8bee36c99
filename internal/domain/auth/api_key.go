package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
)

// ErrInvalidKey is returned when an API key is invalid or revoked.
var ErrInvalidKey = errors.New("invalid api key")

// ErrUnknownHashType is returned when a stored hash has an unrecognized
// format.
var ErrUnknownHashType = errors.New("unknown hash type")

// APIKeyService validates API keys and resolves identities.
type APIKeyService struct {
	store Store
}

// NewAPIKeyService creates an APIKeyService with the given store.
func NewAPIKeyService(store Store) *APIKeyService {
	return &APIKeyService{store: store}
}

// Validate checks an API key and returns the associated identity. SHA-256
// hashes resolve by direct lookup; Argon2id hashes require iterating the
// stored keys.
func (s *APIKeyService) Validate(ctx context.Context, rawKey string) (*Identity, error) {
	keyHash := HashKey(rawKey)
	if apiKey, err := s.store.GetAPIKey(ctx, keyHash); err == nil {
		return s.resolve(ctx, apiKey)
	}

	allKeys, err := s.store.ListAPIKeys(ctx)
	if err != nil {
		return nil, ErrInvalidKey
	}
	for _, candidate := range allKeys {
		match, verifyErr := VerifyKey(rawKey, candidate.Key)
		if verifyErr != nil {
			continue
		}
		if match {
			return s.resolve(ctx, candidate)
		}
	}
	return nil, ErrInvalidKey
}

func (s *APIKeyService) resolve(ctx context.Context, apiKey *APIKey) (*Identity, error) {
	if apiKey.Revoked {
		return nil, ErrInvalidKey
	}
	identity, err := s.store.GetIdentity(ctx, apiKey.IdentityID)
	if err != nil {
		return nil, fmt.Errorf("resolving identity %s: %w", apiKey.IdentityID, err)
	}
	return identity, nil
}

// HashKey returns the "sha256:<hex>" hash of a raw API key.
func HashKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// VerifyKey checks a raw key against a stored hash, supporting both the
// sha256: prefix form and Argon2id encoded hashes.
func VerifyKey(rawKey, storedHash string) (bool, error) {
	switch {
	case strings.HasPrefix(storedHash, "sha256:"):
		// Use constant-time comparison to prevent timing attacks.
		computed := HashKey(rawKey)
		return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1, nil
	case strings.HasPrefix(storedHash, "$argon2id$"):
		return safeArgon2idCompare(rawKey, storedHash)
	default:
		return false, ErrUnknownHashType
	}
}

// safeArgon2idCompare wraps argon2id.ComparePasswordAndHash with panic
// recovery. The underlying argon2 library panics on malformed Argon2id
// hashes with invalid parameters (e.g., t=0 rounds, p=0 parallelism). This
// function catches those panics and converts them to errors instead,
// ensuring VerifyKey never panics.
func safeArgon2idCompare(rawKey, storedHash string) (match bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			match = false
			err = fmt.Errorf("invalid argon2id hash parameters: %v", r)
		}
	}()
	return argon2id.ComparePasswordAndHash(rawKey, storedHash)
}
