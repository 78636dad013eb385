// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const braveAPIBase = "https://api.search.brave.com/res/v1/web/search"

// braveMaxCount is the largest count Brave accepts.
const braveMaxCount = 20

// Brave queries the Brave Search web API. The key travels in the
// X-Subscription-Token header.
type Brave struct {
	adapter
}

// NewBrave returns a Brave adapter owning cfg.
func NewBrave(cfg types.ProviderConfig, client *http.Client, userAgent string) *Brave {
	return &Brave{adapter: newAdapter(cfg, client, userAgent)}
}

// Name returns the provider identifier.
func (p *Brave) Name() types.ProviderName { return types.ProviderBrave }

// Attempt runs one Brave search.
func (p *Brave) Attempt(ctx context.Context, query string, maxResults int) ([]types.ProviderResult, error) {
	if err := p.precheck(p.Name()); err != nil {
		return nil, err
	}
	count := clamp(maxResults, types.DefaultMaxResults, braveMaxCount)

	u, err := url.Parse(p.baseURL(braveAPIBase))
	if err != nil {
		return nil, fmt.Errorf("parsing Brave base URL: %w", err)
	}
	params := u.Query()
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	if p.cfg.Country != "" {
		params.Set("country", p.cfg.Country)
	}
	if p.cfg.Language != "" {
		params.Set("search_lang", braveLang(p.cfg.Language))
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("X-Subscription-Token", p.cfg.APIKey)

	data, err := httputil.Do(ctx, p.client, req)
	if err != nil {
		return nil, fmt.Errorf("Brave API request: %w", err)
	}

	var br braveResponse
	if err := json.Unmarshal(data, &br); err != nil {
		return nil, fmt.Errorf("parsing Brave response: %w", err)
	}

	results := make([]types.ProviderResult, 0, len(br.Web.Results))
	for _, w := range br.Web.Results {
		date := w.PageAge
		if date == "" {
			date = w.Age
		}
		if r, ok := newResult(types.ProviderBrave, w.URL, w.Title, w.Description, date); ok {
			results = append(results, r)
		}
	}
	return capResults(results, count), nil
}

// braveLang converts a locale such as "pt-br" to Brave's language code.
func braveLang(lang string) string {
	if len(lang) > 2 && lang[2] == '-' {
		return lang[:2]
	}
	return lang
}

// Brave API JSON structures.
type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age"`
	PageAge     string `json:"page_age"`
}
