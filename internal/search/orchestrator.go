// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Orchestrator tries providers in a fixed priority order and returns the
// first non-empty result set. Providers are never raced: each attempt runs
// to completion or to its own timeout before the next one starts, and no
// provider is attempted twice for one search.
type Orchestrator struct {
	providers []Provider
	timeout   time.Duration
	log       zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout sets the per-attempt ceiling (default 10s).
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger used for attempt events.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// NewOrchestrator returns an orchestrator over providers in priority order.
func NewOrchestrator(providers []Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		providers: append([]Provider(nil), providers...),
		timeout:   types.DefaultTimeout,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Providers returns the provider names in priority order.
func (o *Orchestrator) Providers() []types.ProviderName {
	names := make([]types.ProviderName, len(o.providers))
	for i, p := range o.providers {
		names[i] = p.Name()
	}
	return names
}

// Search runs query through the provider chain. It never returns an error:
// when every provider fails or comes back empty the response has provider
// "none", no results, and all-zero stats.
func (o *Orchestrator) Search(ctx context.Context, query string, maxResults int) types.OrchestrationResponse {
	stats := o.zeroStats()

	for i, p := range o.providers {
		results, err := o.attempt(ctx, p, query, maxResults)
		if err != nil || len(results) == 0 {
			continue
		}
		stats[p.Name()] = len(results)
		return types.OrchestrationResponse{
			Results:      results,
			Provider:     p.Name(),
			FallbackUsed: i > 0,
			Stats:        stats,
		}
	}

	o.log.Warn().Str("query", query).Int("providers", len(o.providers)).Msg("all search providers failed")
	return types.OrchestrationResponse{
		Results:      []types.ProviderResult{},
		Provider:     types.ProviderNone,
		FallbackUsed: true,
		Stats:        stats,
	}
}

// attempt makes the single bounded call for p and logs its outcome.
func (o *Orchestrator) attempt(ctx context.Context, p Provider, query string, maxResults int) ([]types.ProviderResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	results, err := p.Attempt(callCtx, query, maxResults)
	elapsed := time.Since(start)

	if err != nil {
		kind := Classify(err)
		o.log.Warn().
			Str("provider", string(p.Name())).
			Str("kind", string(kind)).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("search provider failed")
		var pe *ProviderError
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, &ProviderError{Provider: p.Name(), Kind: kind, Err: err}
	}

	o.log.Debug().
		Str("provider", string(p.Name())).
		Int("results", len(results)).
		Dur("elapsed", elapsed).
		Msg("search provider responded")
	return results, nil
}

func (o *Orchestrator) zeroStats() types.ProviderStats {
	stats := make(types.ProviderStats, len(o.providers))
	for _, p := range o.providers {
		stats[p.Name()] = 0
	}
	return stats
}
