// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the adsabs CLI, a command-line
// front end for the ADS bibliographic services: search, record
// inspection, libraries, citation export, and rate-limit accounting.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/adsabs/biblib"
	"github.com/pdiddy/adsabs/export"
	"github.com/pdiddy/adsabs/pkg/types"
	"github.com/pdiddy/adsabs/query"
	"github.com/pdiddy/adsabs/reftable"
	"github.com/pdiddy/adsabs/search"
	"github.com/pdiddy/adsabs/transport"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the adsabs CLI.
var rootCmd = &cobra.Command{
	Use:   "adsabs",
	Short: "Query the ADS bibliographic services",
	Long: `adsabs searches the astrophysics literature, inspects individual records,
manages document libraries, and exports citations.

Authentication uses an API token resolved from ADS_API_TOKEN or ADS_DEV_KEY,
then ~/.ads/token or ~/.ads/dev_key, then the token configuration key.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./adsabs.yaml or ~/.config/adsabs/config.yaml)")
	rootCmd.PersistentFlags().String("token", "", "API token (overrides discovery)")
	rootCmd.PersistentFlags().String("base-url", "", "API base URL")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log requests to stderr")

	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("adsabs")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "adsabs"))
		}
	}

	viper.SetEnvPrefix("ADS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// app bundles the service clients a subcommand may need. Reference tables
// are best effort: a failed open degrades journal and institution lookup
// but leaves everything else working.
type app struct {
	transport *transport.Client
	tables    *reftable.Tables
	search    *search.Client
	biblib    *biblib.Client
	export    *export.Client
	log       zerolog.Logger
}

func newApp(cmd *cobra.Command) *app {
	log := zerolog.Nop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	cfg := types.ClientConfig{
		BaseURL: viper.GetString("base_url"),
		Token:   viper.GetString("token"),
	}
	t := transport.New(cfg, log)

	var resolver query.Resolver
	tables, err := reftable.Open(types.RefTableConfig{Dir: viper.GetString("reftable_dir")})
	if err != nil {
		log.Warn().Err(err).Msg("reference tables unavailable")
	} else {
		resolver = tables
	}

	return &app{
		transport: t,
		tables:    tables,
		search:    search.NewClient(t, resolver, log),
		biblib:    biblib.NewClient(t, log),
		export:    export.NewClient(t, log),
		log:       log,
	}
}

func (a *app) Close() {
	if a.tables != nil {
		a.tables.Close()
	}
	a.transport.Close()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of adsabs",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("adsabs %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
