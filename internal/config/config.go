// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles the engine configuration. Sources apply in
// order: built-in defaults, the YAML config file, viper flags and
// EVIDENCE_ENGINE_* variables, provider credential variables, and finally
// the .secrets/ directory for any credential still missing.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-engine/internal/evidence"
	"github.com/pdiddy/evidence-engine/internal/validate"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Secret file names read from the secrets directory.
const (
	SecretSerper  = "serper-api-key"
	SecretBrave   = "brave-api-key"
	SecretSerpAPI = "serpapi-api-key"
)

// Credentials are the provider API keys taken from the environment.
type Credentials struct {
	Serper  string `env:"SERPER_API_KEY"`
	Brave   string `env:"BRAVE_API_KEY"`
	SerpAPI string `env:"SERPAPI_API_KEY"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load builds the configuration from v and secrets and validates it.
func Load(v *viper.Viper, secrets map[string]string) (types.Config, error) {
	cfg := types.DefaultConfig()

	if path := v.ConfigFileUsed(); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	applyViper(v, &cfg)

	var creds Credentials
	if err := ParseEnv(&creds); err != nil {
		return cfg, err
	}
	ApplyCredentials(&cfg, creds, secrets)

	return cfg, Validate(cfg)
}

// LoadFile decodes the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg *types.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// applyViper copies the keys bound to flags or environment variables.
func applyViper(v *viper.Viper, cfg *types.Config) {
	if v.IsSet("search.timeout") {
		if d := v.GetDuration("search.timeout"); d > 0 {
			cfg.Search.Timeout = d
		}
	}
	if v.IsSet("search.max_results") {
		if n := v.GetInt("search.max_results"); n > 0 {
			cfg.Search.MaxResults = n
		}
	}
	if v.IsSet("search.providers") {
		if names := splitList(v.GetStringSlice("search.providers")); len(names) > 0 {
			cfg.Search.Providers = cfg.Search.Providers[:0:0]
			for _, n := range names {
				cfg.Search.Providers = append(cfg.Search.Providers, types.ProviderName(strings.ToLower(n)))
			}
		}
	}
	if v.IsSet("resolver.limit") {
		if n := v.GetInt("resolver.limit"); n > 0 {
			cfg.Resolver.Limit = n
		}
	}
	if v.IsSet("audit.db_path") {
		cfg.Audit.DBPath = v.GetString("audit.db_path")
	}
	if v.IsSet("server.addr") {
		if addr := v.GetString("server.addr"); addr != "" {
			cfg.Server.Addr = addr
		}
	}
}

// splitList accepts both repeated values and comma-separated strings.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ApplyCredentials sets provider API keys. An environment credential
// replaces the configured key; a secret file fills a key that is still
// empty.
func ApplyCredentials(cfg *types.Config, creds Credentials, secrets map[string]string) {
	s := &cfg.Search
	s.Serper.APIKey = pick(creds.Serper, s.Serper.APIKey, secrets[SecretSerper])
	s.Brave.APIKey = pick(creds.Brave, s.Brave.APIKey, secrets[SecretBrave])
	s.SerpAPI.APIKey = pick(creds.SerpAPI, s.SerpAPI.APIKey, secrets[SecretSerpAPI])
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Validate reports every invalid setting in cfg.
func Validate(cfg types.Config) error {
	var errs []error

	if len(cfg.Search.Providers) == 0 {
		errs = append(errs, errors.New("no search providers configured"))
	}
	for _, p := range cfg.Search.Providers {
		switch p {
		case types.ProviderSerper, types.ProviderBrave, types.ProviderSerpAPI:
		default:
			errs = append(errs, fmt.Errorf("unknown search provider %q", p))
		}
	}
	if cfg.Search.Timeout <= 0 {
		errs = append(errs, errors.New("search.timeout must be positive"))
	}

	sc := cfg.Scoring
	if !(sc.HighThreshold > sc.MediumThreshold && sc.MediumThreshold > sc.LowThreshold) {
		errs = append(errs, fmt.Errorf("scoring thresholds must satisfy high > medium > low, got %d/%d/%d",
			sc.HighThreshold, sc.MediumThreshold, sc.LowThreshold))
	}
	if sc.MinTokenOverlap <= 0 || sc.MinTokenOverlap > 1 {
		errs = append(errs, fmt.Errorf("scoring.min_token_overlap must be in (0, 1], got %g", sc.MinTokenOverlap))
	}
	if _, err := validate.New(sc); err != nil {
		errs = append(errs, err)
	}

	for _, p := range cfg.Resolver.SocialPlatforms {
		if evidence.SiteDomain(p) == "" {
			errs = append(errs, fmt.Errorf("unknown social platform %q", p))
		}
	}
	if cfg.Resolver.LegalRegistryDomain == "" {
		errs = append(errs, errors.New("resolver.legal_registry_domain is required"))
	}

	return errors.Join(errs...)
}

// Providers reports which configured providers have credentials.
func Providers(cfg types.Config) map[types.ProviderName]bool {
	out := make(map[types.ProviderName]bool, len(cfg.Search.Providers))
	for _, p := range cfg.Search.Providers {
		out[p] = cfg.Search.Provider(p).APIKey != ""
	}
	return out
}
