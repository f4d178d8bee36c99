package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{
		Policy: PolicyConfig{Locations: []string{"file:///etc/pdp/*.json"}},
	}
	cfg.SetDefaults()
	return cfg
}

func TestSetDefaults(t *testing.T) {
	cfg := validConfig()
	if cfg.Server.HTTPAddr != "127.0.0.1:8280" {
		t.Errorf("HTTPAddr default = %s", cfg.Server.HTTPAddr)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("LogLevel default = %s", cfg.Server.LogLevel)
	}
	if cfg.Engine.MaxPolicyRefDepth != 10 || cfg.Engine.MaxVariableRefDepth != 10 {
		t.Errorf("engine depth defaults = %+v", cfg.Engine)
	}
	if cfg.Cache.Size != 4096 || cfg.Cache.TTL != "10s" {
		t.Errorf("cache defaults = %+v", cfg.Cache)
	}
	if cfg.Audit.Output != "none" {
		t.Errorf("audit default = %s", cfg.Audit.Output)
	}
}

func TestNegativeDepthSurvivesDefaults(t *testing.T) {
	cfg := &Config{
		Policy: PolicyConfig{Locations: []string{"p.json"}},
		Engine: EngineConfig{MaxPolicyRefDepth: -1, MaxVariableRefDepth: -1},
	}
	cfg.SetDefaults()
	if cfg.Engine.MaxPolicyRefDepth != -1 || cfg.Engine.MaxVariableRefDepth != -1 {
		t.Errorf("disabled bounds overwritten: %+v", cfg.Engine)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"no locations", func(c *Config) { c.Policy.Locations = nil }, ""},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "verbose" }, ""},
		{"bad addr", func(c *Config) { c.Server.HTTPAddr = "not an addr" }, ""},
		{"bad ttl", func(c *Config) { c.Cache.TTL = "soon" }, "cache.ttl"},
		{"file audit without dir", func(c *Config) { c.Audit.Output = "file" }, "audit.dir"},
		{"sqlite audit without path", func(c *Config) { c.Audit.Output = "sqlite" }, "audit.path"},
		{"bad audit output", func(c *Config) { c.Audit.Output = "kafka" }, ""},
		{"orphan api key", func(c *Config) {
			c.Auth.APIKeys = []APIKeyConfig{{KeyHash: "sha256:ab", IdentityID: "ghost"}}
		}, "unknown identity"},
		{"bad key hash", func(c *Config) {
			c.Auth.Identities = []IdentityConfig{{ID: "i", Name: "I"}}
			c.Auth.APIKeys = []APIKeyConfig{{KeyHash: "plaintext", IdentityID: "i"}}
		}, "key_hash"},
		{"duplicate identity", func(c *Config) {
			c.Auth.Identities = []IdentityConfig{{ID: "i", Name: "A"}, {ID: "i", Name: "B"}}
		}, "duplicate identity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate succeeded, want error")
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Identities = []IdentityConfig{{ID: "svc", Name: "Service"}}
	cfg.Auth.APIKeys = []APIKeyConfig{
		{KeyHash: "sha256:abcdef", IdentityID: "svc"},
		{KeyHash: "$argon2id$v=19$m=65536,t=1,p=2$c2FsdA$aGFzaA", IdentityID: "svc"},
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
