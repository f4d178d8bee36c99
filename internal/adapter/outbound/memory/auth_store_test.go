package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/auth"
)

func TestAuthStoreLookup(t *testing.T) {
	store := NewAuthStore()
	store.SeedIdentity(&auth.Identity{ID: "svc", Name: "Service"})
	store.SeedAPIKey(&auth.APIKey{Key: "sha256:abcd", IdentityID: "svc"})

	key, err := store.GetAPIKey(context.Background(), "sha256:abcd")
	if err != nil || key.IdentityID != "svc" {
		t.Errorf("GetAPIKey = (%+v, %v)", key, err)
	}
	if _, err := store.GetAPIKey(context.Background(), "sha256:other"); !errors.Is(err, auth.ErrKeyNotFound) {
		t.Errorf("GetAPIKey(miss) = %v, want ErrKeyNotFound", err)
	}

	identity, err := store.GetIdentity(context.Background(), "svc")
	if err != nil || identity.Name != "Service" {
		t.Errorf("GetIdentity = (%+v, %v)", identity, err)
	}
	if _, err := store.GetIdentity(context.Background(), "ghost"); !errors.Is(err, auth.ErrIdentityNotFound) {
		t.Errorf("GetIdentity(miss) = %v, want ErrIdentityNotFound", err)
	}

	keys, err := store.ListAPIKeys(context.Background())
	if err != nil || len(keys) != 1 {
		t.Errorf("ListAPIKeys = (%d keys, %v)", len(keys), err)
	}
}
