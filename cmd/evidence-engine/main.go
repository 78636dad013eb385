// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the evidence-engine CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/evidence-engine/internal/config"
	"github.com/pdiddy/evidence-engine/internal/resolve"
	"github.com/pdiddy/evidence-engine/internal/search"
	"github.com/pdiddy/evidence-engine/internal/secrets"
	"github.com/pdiddy/evidence-engine/internal/validate"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets
	// cfg is the effective configuration assembled before each command.
	cfg types.Config
	// logger writes structured logs to stderr.
	logger = zerolog.New(os.Stderr)
)

// rootCmd is the base command for the evidence-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "evidence-engine",
	Short: "Find and validate public web evidence about business entities",
	Long: `evidence-engine searches the web for a business entity's official site, news,
social profiles, legal records, and marketplace storefronts, and scores every
candidate link against the entity's known facts.

Searches fail over across providers (Serper, Brave, SerpApi) in priority order.
Each candidate is scored by additive evidence rules; only links that clear the
acceptance threshold are reported, and discarded candidates are kept for audit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogger(cmd); err != nil {
			return err
		}

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug().Strs("keys", s.Names()).Msg("loaded secrets")
		}

		cfg, err = config.Load(viper.GetViper(), loadedSecrets)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./evidence-engine.yaml or ~/.config/evidence-engine/evidence-engine.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Bool("log-json", false, "write logs as JSON instead of console text")
	pf.Duration("timeout", types.DefaultTimeout, "per-provider attempt timeout")
	pf.Int("max-results", types.DefaultMaxResults, "result-count hint sent to providers")
	pf.StringSlice("providers", nil, "provider priority order (default serper,brave,serpapi)")

	viper.BindPFlag("search.timeout", pf.Lookup("timeout"))
	viper.BindPFlag("search.max_results", pf.Lookup("max-results"))
	viper.BindPFlag("search.providers", pf.Lookup("providers"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("evidence-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "evidence-engine"))
		}
	}

	viper.SetEnvPrefix("EVIDENCE_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogger(cmd *cobra.Command) error {
	levelName, _ := cmd.Flags().GetString("log-level")
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", levelName, err)
	}
	asJSON, _ := cmd.Flags().GetBool("log-json")
	if asJSON {
		logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).With().Timestamp().Logger()
	}
	return nil
}

// newValidator compiles the configured scoring rules.
func newValidator() (*validate.Validator, error) {
	return validate.New(cfg.Scoring)
}

// newResolver wires the provider chain, orchestrator, and validator.
func newResolver() (*resolve.Resolver, *validate.Validator, error) {
	client := &http.Client{}
	providers, err := search.NewProviders(cfg.Search, client)
	if err != nil {
		return nil, nil, err
	}
	keyed := config.Providers(cfg)
	for _, name := range cfg.Search.Providers {
		if !keyed[name] {
			logger.Warn().Str("provider", string(name)).Msg("no API key configured; searches will fail over past it")
		}
	}

	orch := search.NewOrchestrator(providers,
		search.WithTimeout(cfg.Search.Timeout),
		search.WithLogger(logger.With().Str("component", "search").Logger()),
	)
	v, err := newValidator()
	if err != nil {
		return nil, nil, err
	}
	r := resolve.New(orch, v, cfg.Resolver,
		resolve.WithMaxResults(cfg.Search.MaxResults),
		resolve.WithLogger(logger.With().Str("component", "resolve").Logger()),
	)
	return r, v, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
