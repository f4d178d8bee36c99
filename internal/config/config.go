// Package config provides configuration types for Sentinel PDP.
//
// Configuration is file-based (sentinel-pdp.yaml) with environment variable
// overrides under the SENTINEL_PDP_ prefix.
package config

// Config is the top-level configuration for Sentinel PDP.
type Config struct {
	// Server configures the HTTP decision API listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Engine configures the evaluation engine knobs.
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`

	// Policy configures the policy corpus sources and root selection.
	Policy PolicyConfig `yaml:"policy" mapstructure:"policy"`

	// Cache configures the decision result cache.
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`

	// Audit configures decision audit persistence.
	Audit AuditConfig `yaml:"audit" mapstructure:"audit"`

	// Auth configures API keys for the decision API.
	// Optional: when empty, the API is unauthenticated (bind to localhost).
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Tracing enables OpenTelemetry trace export to stdout.
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// HTTPAddr is the address to listen on (e.g., "127.0.0.1:8280").
	// Defaults to "127.0.0.1:8280" (localhost only) if empty.
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level.
	// Valid values: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// ShutdownTimeout is how long to wait for in-flight requests on
	// shutdown (e.g., "10s").
	ShutdownTimeout string `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"omitempty"`
}

// EngineConfig surfaces the evaluation engine knobs.
type EngineConfig struct {
	// MaxVariableRefDepth bounds nested variable-definition references.
	// Negative disables the bound. Defaults to 10.
	MaxVariableRefDepth int `yaml:"max_variable_ref_depth" mapstructure:"max_variable_ref_depth"`

	// MaxPolicyRefDepth bounds chained PolicySetIdReference length.
	// Negative disables the bound. Defaults to 10.
	MaxPolicyRefDepth int `yaml:"max_policy_ref_depth" mapstructure:"max_policy_ref_depth"`

	// IgnoreOldPolicyVersions keeps only the highest version per policy id.
	IgnoreOldPolicyVersions bool `yaml:"ignore_old_policy_versions" mapstructure:"ignore_old_policy_versions"`

	// StrictAttributeIssuerMatch stops issuer-less request attributes
	// from satisfying designators that require an issuer.
	StrictAttributeIssuerMatch bool `yaml:"strict_attribute_issuer_match" mapstructure:"strict_attribute_issuer_match"`
}

// PolicyConfig configures the policy corpus.
type PolicyConfig struct {
	// Locations are policy sources: plain paths, or file://DIR/*SUFFIX
	// patterns where each extra leading "*" descends one directory level.
	Locations []string `yaml:"locations" mapstructure:"locations" validate:"required,min=1"`

	// RootID selects the root policy element explicitly. Required when
	// the corpus holds more than one candidate.
	RootID string `yaml:"root_id" mapstructure:"root_id"`
}

// CacheConfig configures the decision result cache.
type CacheConfig struct {
	// Enabled turns the cache on or off. Defaults to on.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Size is the maximum number of cached decisions. Defaults to 4096.
	Size int `yaml:"size" mapstructure:"size" validate:"omitempty,min=1"`

	// TTL is the entry lifetime (e.g., "10s"). Decisions on requests
	// without explicit environment clock attributes depend on the
	// evaluation instant, so entries must expire. Defaults to "10s".
	TTL string `yaml:"ttl" mapstructure:"ttl" validate:"omitempty"`
}

// AuditConfig configures decision audit output.
type AuditConfig struct {
	// Output selects the audit sink.
	// Valid values: "none", "file", "sqlite". Defaults to "none".
	Output string `yaml:"output" mapstructure:"output" validate:"omitempty,oneof=none file sqlite"`

	// Dir is the directory for file output. Required when output=file.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// RetentionDays is the number of days to keep audit files (file
	// output only). Defaults to 7.
	RetentionDays int `yaml:"retention_days" mapstructure:"retention_days"`

	// MaxFileSizeMB is the maximum size per audit file before rotation
	// (file output only). Defaults to 100.
	MaxFileSizeMB int `yaml:"max_file_size_mb" mapstructure:"max_file_size_mb"`

	// Path is the database path for sqlite output. Required when
	// output=sqlite.
	Path string `yaml:"path" mapstructure:"path"`
}

// AuthConfig configures API-key authentication for the decision API.
type AuthConfig struct {
	// Identities defines the known identities (callers).
	Identities []IdentityConfig `yaml:"identities" mapstructure:"identities" validate:"omitempty,dive"`

	// APIKeys defines the API keys that map to identities.
	APIKeys []APIKeyConfig `yaml:"api_keys" mapstructure:"api_keys" validate:"omitempty,dive"`
}

// IdentityConfig defines a file-based identity.
type IdentityConfig struct {
	// ID is the unique identifier for this identity.
	ID string `yaml:"id" mapstructure:"id" validate:"required"`

	// Name is the human-readable name for this identity.
	Name string `yaml:"name" mapstructure:"name" validate:"required"`
}

// APIKeyConfig defines an API key that authenticates as an identity.
type APIKeyConfig struct {
	// KeyHash is the stored hash: "sha256:<hex>" or an Argon2id encoded
	// hash ("$argon2id$...").
	// Generate with: sentinel-pdp hash-key
	KeyHash string `yaml:"key_hash" mapstructure:"key_hash" validate:"required"`

	// IdentityID references the identity this key authenticates as.
	IdentityID string `yaml:"identity_id" mapstructure:"identity_id" validate:"required"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns stdout trace export on. Defaults to off.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	// Server defaults — bind to localhost only; users who need network
	// access must set http_addr explicitly.
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8280"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}

	if c.Engine.MaxVariableRefDepth == 0 {
		c.Engine.MaxVariableRefDepth = 10
	}
	if c.Engine.MaxPolicyRefDepth == 0 {
		c.Engine.MaxPolicyRefDepth = 10
	}

	if c.Cache.Size == 0 {
		c.Cache.Size = 4096
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "10s"
	}

	if c.Audit.Output == "" {
		c.Audit.Output = "none"
	}
	if c.Audit.RetentionDays == 0 {
		c.Audit.RetentionDays = 7
	}
	if c.Audit.MaxFileSizeMB == 0 {
		c.Audit.MaxFileSizeMB = 100
	}
}
