// Package cmd provides the CLI commands for Sentinel PDP.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sentinel-pdp",
	Short: "Sentinel PDP - XACML 3.0 Policy Decision Point",
	Long: `Sentinel PDP is an attribute-based access control decision point
implementing the OASIS XACML 3.0 evaluation semantics.

It loads a corpus of policies and policy sets, validates every reference at
startup, and answers authorization requests over HTTP or from the command
line.

Quick start:
  1. Create a config file: sentinel-pdp.yaml
  2. Run: sentinel-pdp start

Configuration:
  Config is loaded from sentinel-pdp.yaml in the current directory,
  $HOME/.sentinel-pdp/, or /etc/sentinel-pdp/.

  Environment variables can override config values with the SENTINEL_PDP_
  prefix. Example: SENTINEL_PDP_SERVER_HTTP_ADDR=:8280

Commands:
  start       Start the HTTP decision API
  evaluate    Evaluate one request document and print the response
  validate    Load the policy corpus and report load-time diagnostics
  hash-key    Generate a hash for an API key
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sentinel-pdp.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
