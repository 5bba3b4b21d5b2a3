// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the quip-export CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/quip-export/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the quip-export CLI.
var rootCmd = &cobra.Command{
	Use:   "quip-export",
	Short: "Export Quip documents to local Markdown files",
	Long: `quip-export walks Quip folder trees, converts each document's HTML to
Markdown, and writes the results to a local directory. A per-folder manifest
tracks what has already been exported, so repeated runs only fetch documents
that changed since the last export.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./quip-export.yaml or ~/.config/quip-export/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("quip-export")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "quip-export"))
		}
	}

	viper.SetEnvPrefix("QUIP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// resolveToken picks the access token from, in order: the --token flag,
// the QUIP_TOKEN environment variable (or config file), and .secrets/.
func resolveToken(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := viper.GetString("token"); v != "" {
		return v, nil
	}
	tok, err := secrets.Token(".secrets/")
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", fmt.Errorf("no access token: set --token, QUIP_TOKEN, or .secrets/%s", secrets.TokenFile)
	}
	return tok, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
