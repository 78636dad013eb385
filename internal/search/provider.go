// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search obtains web search evidence from upstream providers. Each
// provider is a strategy behind the Provider interface; the Orchestrator
// tries them in priority order and returns the first non-empty result set.
package search

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Provider is one upstream search API. Attempt issues exactly one request
// and returns normalized results or an error that Classify understands.
type Provider interface {
	Name() types.ProviderName
	Attempt(ctx context.Context, query string, maxResults int) ([]types.ProviderResult, error)
}

// adapter holds the state every provider instance owns.
type adapter struct {
	cfg       types.ProviderConfig
	client    *http.Client
	userAgent string
	budget    *Budget
}

func newAdapter(cfg types.ProviderConfig, client *http.Client, userAgent string) adapter {
	if client == nil {
		client = &http.Client{}
	}
	if userAgent == "" {
		userAgent = types.DefaultUserAgent
	}
	return adapter{
		cfg:       cfg,
		client:    client,
		userAgent: userAgent,
		budget:    NewBudget(cfg.QuotaPerWindow, cfg.QuotaWindow),
	}
}

// precheck fails fast on missing credentials or an exhausted local budget.
func (a *adapter) precheck(name types.ProviderName) error {
	if a.cfg.APIKey == "" {
		return &ProviderError{Provider: name, Kind: KindAuthInvalid, Err: ErrMissingCredentials}
	}
	if !a.budget.Take() {
		return &ProviderError{Provider: name, Kind: KindQuotaExceeded, Err: fmt.Errorf("local budget exhausted")}
	}
	return nil
}

func (a *adapter) baseURL(fallback string) string {
	if a.cfg.BaseURL != "" {
		return a.cfg.BaseURL
	}
	return fallback
}

// NewProvider builds the adapter for name from cfg. The client is shared
// read-only across adapters; timeouts come from the caller's context.
func NewProvider(name types.ProviderName, cfg types.SearchConfig, client *http.Client) (Provider, error) {
	pc := cfg.Provider(name)
	switch name {
	case types.ProviderSerper:
		return NewSerper(pc, client, cfg.UserAgent), nil
	case types.ProviderBrave:
		return NewBrave(pc, client, cfg.UserAgent), nil
	case types.ProviderSerpAPI:
		return NewSerpAPI(pc, client, cfg.UserAgent), nil
	}
	return nil, fmt.Errorf("unknown search provider %q", name)
}

// NewProviders builds adapters in the configured priority order.
func NewProviders(cfg types.SearchConfig, client *http.Client) ([]Provider, error) {
	order := cfg.Providers
	if len(order) == 0 {
		order = types.DefaultProviderOrder
	}
	providers := make([]Provider, 0, len(order))
	seen := make(map[types.ProviderName]bool, len(order))
	for _, name := range order {
		if seen[name] {
			continue
		}
		seen[name] = true
		p, err := NewProvider(name, cfg, client)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}
