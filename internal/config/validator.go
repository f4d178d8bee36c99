package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validate checks struct tags plus the cross-field rules the tags cannot
// express.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := time.ParseDuration(cfg.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid server.shutdown_timeout %q: %w", cfg.Server.ShutdownTimeout, err)
	}
	if _, err := time.ParseDuration(cfg.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache.ttl %q: %w", cfg.Cache.TTL, err)
	}

	switch cfg.Audit.Output {
	case "file":
		if cfg.Audit.Dir == "" {
			return fmt.Errorf("audit.dir is required when audit.output is \"file\"")
		}
	case "sqlite":
		if cfg.Audit.Path == "" {
			return fmt.Errorf("audit.path is required when audit.output is \"sqlite\"")
		}
	}

	identities := make(map[string]bool, len(cfg.Auth.Identities))
	for _, id := range cfg.Auth.Identities {
		if identities[id.ID] {
			return fmt.Errorf("duplicate identity id %q", id.ID)
		}
		identities[id.ID] = true
	}
	for _, key := range cfg.Auth.APIKeys {
		if !identities[key.IdentityID] {
			return fmt.Errorf("api key references unknown identity %q", key.IdentityID)
		}
		if !strings.HasPrefix(key.KeyHash, "sha256:") && !strings.HasPrefix(key.KeyHash, "$argon2id$") {
			return fmt.Errorf("api key for %q: key_hash must be sha256: or $argon2id$ form", key.IdentityID)
		}
	}
	return nil
}
