package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches for sentinel-pdp.yaml/.yml
// in the standard locations. The search requires an explicit YAML extension
// so the binary itself is never matched.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("sentinel-pdp")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: SENTINEL_PDP_SERVER_HTTP_ADDR
	viper.SetEnvPrefix("SENTINEL_PDP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// The decision cache is on unless the configuration turns it off.
	viper.SetDefault("cache.enabled", true)

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a sentinel-pdp config file
// with an explicit YAML extension.
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".sentinel-pdp"),
		"/etc/sentinel-pdp",
	}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "sentinel-pdp"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds nested config keys for environment variable
// support. Example: SENTINEL_PDP_ENGINE_MAX_POLICY_REF_DEPTH overrides
// engine.max_policy_ref_depth.
func bindNestedEnvKeys() {
	keys := []string{
		"server.http_addr",
		"server.log_level",
		"server.shutdown_timeout",
		"engine.max_variable_ref_depth",
		"engine.max_policy_ref_depth",
		"engine.ignore_old_policy_versions",
		"engine.strict_attribute_issuer_match",
		"policy.locations",
		"policy.root_id",
		"cache.enabled",
		"cache.size",
		"cache.ttl",
		"audit.output",
		"audit.dir",
		"audit.retention_days",
		"audit.max_file_size_mb",
		"audit.path",
		"tracing.enabled",
	}
	for _, k := range keys {
		_ = viper.BindEnv(k)
	}
}

// Load reads, defaults, and validates the configuration. A missing config
// file is not an error: defaults plus environment variables may be enough.
func Load() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.SetDefaults()
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
