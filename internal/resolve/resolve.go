// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve composes query building, failover search, link
// validation, and handle extraction into one resolver per use case. Each
// resolver is synchronous and stateless; independent invocations may run
// concurrently.
package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/evidence-engine/internal/evidence"
	"github.com/pdiddy/evidence-engine/internal/query"
	"github.com/pdiddy/evidence-engine/internal/validate"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Searcher runs one logical search. The search orchestrator implements it.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) types.OrchestrationResponse
}

// LinkValidator scores one candidate against entity facts. The base
// validator and its specializations implement it.
type LinkValidator interface {
	Validate(candidate types.ProviderResult, facts types.EntityFacts) types.ValidationResult
}

// Resolver runs the domain resolvers.
type Resolver struct {
	search     Searcher
	validator  *validate.Validator
	cfg        types.ResolverConfig
	maxResults int
	log        zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for discarded-candidate and summary events.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithMaxResults sets the result-count hint passed to providers.
func WithMaxResults(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxResults = n
		}
	}
}

// New returns a Resolver searching with s and scoring with v.
func New(s Searcher, v *validate.Validator, cfg types.ResolverConfig, opts ...Option) *Resolver {
	r := &Resolver{
		search:     s,
		validator:  v,
		cfg:        cfg,
		maxResults: types.DefaultMaxResults,
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.cfg.Limit <= 0 {
		r.cfg.Limit = types.DefaultLimit
	}
	return r
}

// pipeline describes one resolver run.
type pipeline struct {
	useCase   types.UseCase
	platform  types.Platform
	name      string
	query     string
	validator LinkValidator
	limit     int

	// screen returns a non-empty reason to discard a candidate before
	// validation.
	screen func(types.ProviderResult) string
	// handle extracts evidence from accepted candidates.
	handle func(url string) *types.ExtractedHandle
	// requireHandle rejects accepted candidates without a handle.
	requireHandle bool
}

// Website finds the entity's official site. The result holds at most one
// link.
func (r *Resolver) Website(ctx context.Context, facts types.EntityFacts) types.Resolution {
	name := facts.DisplayName()
	return r.run(ctx, facts, pipeline{
		useCase:   types.UseCaseWebsite,
		name:      name,
		query:     query.Website(name, facts.RegistryID),
		validator: r.validator,
		limit:     1,
	})
}

// News finds coverage about the entity. Candidates must mention enough
// name tokens (or the registry ID) and no noise terms.
func (r *Resolver) News(ctx context.Context, facts types.EntityFacts, limit int) types.Resolution {
	name := facts.DisplayName()
	return r.run(ctx, facts, pipeline{
		useCase:   types.UseCaseNews,
		name:      name,
		query:     query.News(name),
		validator: r.validator,
		limit:     r.limit(limit),
		screen:    r.newsScreen(facts),
	})
}

// Social finds the entity's profiles on one platform. Only profile URLs
// survive; posts and other content pages are rejected.
func (r *Resolver) Social(ctx context.Context, facts types.EntityFacts, platform types.Platform, limit int) types.Resolution {
	name := facts.DisplayName()
	p := pipeline{
		useCase:   types.UseCaseSocial,
		platform:  platform,
		name:      name,
		validator: r.validator,
		limit:     r.limit(limit),
		handle: func(url string) *types.ExtractedHandle {
			return evidence.ExtractHandle(url, platform)
		},
		requireHandle: true,
	}
	if name != "" {
		q, err := query.Build(types.UseCaseSocial, query.Params{Name: name, Platform: platform})
		if err != nil {
			r.log.Warn().Err(err).Msg("social resolver")
			return emptyResolution(p)
		}
		p.query = q
	}
	return r.run(ctx, facts, p)
}

// Legal finds the entity's record on the legal registry. The result holds
// at most one link.
func (r *Resolver) Legal(ctx context.Context, facts types.EntityFacts) types.Resolution {
	name := facts.LegalName
	if name == "" {
		name = facts.TradeName
	}
	return r.run(ctx, facts, pipeline{
		useCase:   types.UseCaseLegal,
		name:      name,
		query:     query.Legal(name, facts.RegistryID, r.cfg.LegalRegistryDomain),
		validator: r.validator.Legal(),
		limit:     1,
	})
}

// Marketplace finds the entity's seller pages on the configured
// marketplaces. Handles are attached when the URL is a seller page.
func (r *Resolver) Marketplace(ctx context.Context, facts types.EntityFacts, limit int) types.Resolution {
	name := facts.DisplayName()
	return r.run(ctx, facts, pipeline{
		useCase:   types.UseCaseMarketplace,
		name:      name,
		query:     query.Marketplace(name, r.cfg.Marketplaces),
		validator: r.validator.Marketplace(),
		limit:     r.limit(limit),
		handle:    evidence.Extract,
	})
}

// Request selects what Resolve runs.
type Request struct {
	Facts types.EntityFacts `json:"facts" yaml:"facts"`
	// Platform narrows the social resolver to one platform. When empty
	// every configured platform is searched.
	Platform types.Platform `json:"platform,omitempty" yaml:"platform,omitempty"`
	Limit    int            `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Resolve runs the resolver for useCase. The social use case yields one
// resolution per platform; the others yield exactly one.
func (r *Resolver) Resolve(ctx context.Context, useCase types.UseCase, req Request) ([]types.Resolution, error) {
	switch useCase {
	case types.UseCaseWebsite:
		return []types.Resolution{r.Website(ctx, req.Facts)}, nil
	case types.UseCaseNews:
		return []types.Resolution{r.News(ctx, req.Facts, req.Limit)}, nil
	case types.UseCaseSocial:
		platforms := r.cfg.SocialPlatforms
		if req.Platform != "" {
			if evidence.SiteDomain(req.Platform) == "" {
				return nil, fmt.Errorf("unknown platform %q", req.Platform)
			}
			platforms = []types.Platform{req.Platform}
		}
		out := make([]types.Resolution, 0, len(platforms))
		for _, p := range platforms {
			out = append(out, r.Social(ctx, req.Facts, p, req.Limit))
		}
		return out, nil
	case types.UseCaseLegal:
		return []types.Resolution{r.Legal(ctx, req.Facts)}, nil
	case types.UseCaseMarketplace:
		return []types.Resolution{r.Marketplace(ctx, req.Facts, req.Limit)}, nil
	default:
		return nil, fmt.Errorf("unknown use case %q", useCase)
	}
}

// All runs every resolver, and the social resolver once per configured
// platform, concurrently. Results come back in a fixed order: website,
// news, social platforms in configured order, legal, marketplace.
func (r *Resolver) All(ctx context.Context, facts types.EntityFacts, limit int) ([]types.Resolution, error) {
	var jobs []func(context.Context) types.Resolution
	jobs = append(jobs,
		func(ctx context.Context) types.Resolution { return r.Website(ctx, facts) },
		func(ctx context.Context) types.Resolution { return r.News(ctx, facts, limit) },
	)
	for _, p := range r.cfg.SocialPlatforms {
		p := p
		jobs = append(jobs, func(ctx context.Context) types.Resolution { return r.Social(ctx, facts, p, limit) })
	}
	jobs = append(jobs,
		func(ctx context.Context) types.Resolution { return r.Legal(ctx, facts) },
		func(ctx context.Context) types.Resolution { return r.Marketplace(ctx, facts, limit) },
	)

	out := make([]types.Resolution, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = job(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) limit(n int) int {
	if n > 0 {
		return n
	}
	return r.cfg.Limit
}

func emptyResolution(p pipeline) types.Resolution {
	return types.Resolution{
		UseCase:  p.useCase,
		Platform: p.platform,
		Query:    p.query,
		Provider: types.ProviderNone,
		Stats:    types.ProviderStats{},
		Links:    []types.ResolvedLink{},
	}
}

func (r *Resolver) run(ctx context.Context, facts types.EntityFacts, p pipeline) types.Resolution {
	log := r.log.With().Str("use_case", string(p.useCase)).Logger()
	if p.platform != "" {
		log = log.With().Str("platform", string(p.platform)).Logger()
	}
	if strings.TrimSpace(p.name) == "" {
		log.Debug().Msg("no entity name; skipping search")
		p.query = ""
		return emptyResolution(p)
	}

	res := emptyResolution(p)
	resp := r.search.Search(ctx, p.query, r.maxResults)
	res.Provider = resp.Provider
	res.FallbackUsed = resp.FallbackUsed
	if resp.Stats != nil {
		res.Stats = resp.Stats
	}

	for _, c := range resp.Results {
		if p.screen != nil {
			if reason := p.screen(c); reason != "" {
				res.Rejected = append(res.Rejected, screened(c, reason))
				log.Debug().Str("url", c.URL).Str("reason", reason).Msg("candidate screened out")
				continue
			}
		}

		link := types.ResolvedLink{Candidate: c, Validation: p.validator.Validate(c, facts)}
		if !link.Validation.Linked {
			res.Rejected = append(res.Rejected, link)
			log.Debug().Str("url", c.URL).Int("score", link.Validation.Score).
				Str("confidence", string(link.Validation.Confidence)).Msg("candidate discarded")
			continue
		}

		if p.handle != nil {
			link.Handle = p.handle(c.URL)
			if link.Handle == nil && p.requireHandle {
				link.Validation = notProfile(link.Validation)
				res.Rejected = append(res.Rejected, link)
				log.Debug().Str("url", c.URL).Msg("accepted candidate is not a profile URL")
				continue
			}
		}
		res.Links = append(res.Links, link)
	}

	rank(res.Links)
	if p.limit > 0 && len(res.Links) > p.limit {
		res.Links = res.Links[:p.limit]
	}

	log.Info().
		Str("provider", string(res.Provider)).
		Bool("fallback_used", res.FallbackUsed).
		Int("candidates", len(resp.Results)).
		Int("linked", len(res.Links)).
		Msg("resolved")
	return res
}

// rank orders links by score, then by published date with the newest
// first and undated links last. The sort is stable so provider order
// breaks remaining ties.
func rank(links []types.ResolvedLink) {
	sort.SliceStable(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.Validation.Score != b.Validation.Score {
			return a.Validation.Score > b.Validation.Score
		}
		da, db := a.Candidate.PublishedDate, b.Candidate.PublishedDate
		switch {
		case da != nil && db != nil:
			return da.After(*db)
		default:
			return da != nil && db == nil
		}
	})
}

func screened(c types.ProviderResult, reason string) types.ResolvedLink {
	return types.ResolvedLink{
		Candidate: c,
		Validation: types.ValidationResult{
			Confidence: types.ConfidenceNone,
			Reasons:    []string{reason},
		},
	}
}

func notProfile(v types.ValidationResult) types.ValidationResult {
	v.Linked = false
	v.Reasons = append(append([]string(nil), v.Reasons...), "URL is not a profile page")
	return v
}
