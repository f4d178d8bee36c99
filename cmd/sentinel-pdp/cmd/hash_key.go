package cmd

import (
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/auth"
)

var hashKeyArgon2 bool

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key [api-key]",
	Short: "Generate a hash for an API key",
	Long: `Generate a hash of an API key for use in the auth.api_keys
key_hash config field.

By default the output is "sha256:<hex>" (fast lookup). With --argon2id the
key is hashed with Argon2id instead, which resists offline brute force at
the cost of per-request verification work.

Example:
  sentinel-pdp hash-key "my-secret-api-key"
  sentinel-pdp hash-key --argon2id "my-secret-api-key"

Security note: the key will appear in shell history. Consider using an
environment variable:
  sentinel-pdp hash-key "$MY_API_KEY"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if hashKeyArgon2 {
			hash, err := argon2id.CreateHash(args[0], argon2id.DefaultParams)
			if err != nil {
				return fmt.Errorf("hashing key: %w", err)
			}
			fmt.Println(hash)
			return nil
		}
		fmt.Println(auth.HashKey(args[0]))
		return nil
	},
}

func init() {
	hashKeyCmd.Flags().BoolVar(&hashKeyArgon2, "argon2id", false, "hash with Argon2id instead of SHA-256")
	rootCmd.AddCommand(hashKeyCmd)
}
