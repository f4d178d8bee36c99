package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/alexedwards/argon2id"
)

type fakeStore struct {
	keys       map[string]*APIKey
	identities map[string]*Identity
}

func (s *fakeStore) GetAPIKey(_ context.Context, keyHash string) (*APIKey, error) {
	if k, ok := s.keys[keyHash]; ok {
		return k, nil
	}
	return nil, ErrKeyNotFound
}

func (s *fakeStore) GetIdentity(_ context.Context, id string) (*Identity, error) {
	if i, ok := s.identities[id]; ok {
		return i, nil
	}
	return nil, ErrIdentityNotFound
}

func (s *fakeStore) ListAPIKeys(context.Context) ([]*APIKey, error) {
	out := make([]*APIKey, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, k)
	}
	return out, nil
}

func TestValidateSHA256Key(t *testing.T) {
	store := &fakeStore{
		keys:       map[string]*APIKey{HashKey("good-key"): {Key: HashKey("good-key"), IdentityID: "svc"}},
		identities: map[string]*Identity{"svc": {ID: "svc", Name: "Service"}},
	}
	svc := NewAPIKeyService(store)

	identity, err := svc.Validate(context.Background(), "good-key")
	if err != nil || identity.ID != "svc" {
		t.Errorf("Validate(good) = (%v, %v)", identity, err)
	}
	if _, err := svc.Validate(context.Background(), "bad-key"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Validate(bad) = %v, want ErrInvalidKey", err)
	}
}

func TestValidateArgon2idKey(t *testing.T) {
	hash, err := argon2id.CreateHash("secret", argon2id.DefaultParams)
	if err != nil {
		t.Fatal(err)
	}
	store := &fakeStore{
		keys:       map[string]*APIKey{hash: {Key: hash, IdentityID: "svc"}},
		identities: map[string]*Identity{"svc": {ID: "svc"}},
	}
	svc := NewAPIKeyService(store)

	identity, err := svc.Validate(context.Background(), "secret")
	if err != nil || identity.ID != "svc" {
		t.Errorf("Validate(argon2id) = (%v, %v)", identity, err)
	}
	if _, err := svc.Validate(context.Background(), "wrong"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Validate(wrong) = %v, want ErrInvalidKey", err)
	}
}

func TestRevokedKeyRejected(t *testing.T) {
	store := &fakeStore{
		keys:       map[string]*APIKey{HashKey("k"): {Key: HashKey("k"), IdentityID: "svc", Revoked: true}},
		identities: map[string]*Identity{"svc": {ID: "svc"}},
	}
	svc := NewAPIKeyService(store)
	if _, err := svc.Validate(context.Background(), "k"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("revoked key accepted: %v", err)
	}
}

func TestVerifyKeyUnknownHashType(t *testing.T) {
	if _, err := VerifyKey("x", "md5:abcd"); !errors.Is(err, ErrUnknownHashType) {
		t.Errorf("VerifyKey = %v, want ErrUnknownHashType", err)
	}
}

func TestVerifyKeyMalformedArgon2idDoesNotPanic(t *testing.T) {
	// The argon2 library panics on hashes with invalid parameters
	// (t=0 rounds, p=0 parallelism); VerifyKey must degrade to an error.
	malformed := []string{
		"$argon2id$v=19$m=65536,t=0,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=0$c2FsdA$aGFzaA",
		"$argon2id$garbage",
	}
	for _, hash := range malformed {
		match, err := VerifyKey("key", hash)
		if match {
			t.Errorf("VerifyKey(%q) matched", hash)
		}
		if err == nil {
			t.Errorf("VerifyKey(%q) returned no error", hash)
		}
	}
}

func TestValidateMalformedStoredHashRejectsKey(t *testing.T) {
	store := &fakeStore{
		keys: map[string]*APIKey{
			"$argon2id$v=19$m=65536,t=0,p=2$c2FsdA$aGFzaA": {
				Key:        "$argon2id$v=19$m=65536,t=0,p=2$c2FsdA$aGFzaA",
				IdentityID: "svc",
			},
		},
		identities: map[string]*Identity{"svc": {ID: "svc"}},
	}
	svc := NewAPIKeyService(store)
	if _, err := svc.Validate(context.Background(), "key"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Validate with corrupted stored hash = %v, want ErrInvalidKey", err)
	}
}
