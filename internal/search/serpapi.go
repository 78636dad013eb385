// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const serpAPIBase = "https://serpapi.com/search.json"

const serpAPIMaxNum = 100

// SerpAPI queries SerpApi's Google engine. The key travels in the api_key
// query parameter.
type SerpAPI struct {
	adapter
}

// NewSerpAPI returns a SerpApi adapter owning cfg.
func NewSerpAPI(cfg types.ProviderConfig, client *http.Client, userAgent string) *SerpAPI {
	return &SerpAPI{adapter: newAdapter(cfg, client, userAgent)}
}

// Name returns the provider identifier.
func (p *SerpAPI) Name() types.ProviderName { return types.ProviderSerpAPI }

// Attempt runs one SerpApi search.
func (p *SerpAPI) Attempt(ctx context.Context, query string, maxResults int) ([]types.ProviderResult, error) {
	if err := p.precheck(p.Name()); err != nil {
		return nil, err
	}
	num := clamp(maxResults, types.DefaultMaxResults, serpAPIMaxNum)

	u, err := url.Parse(p.baseURL(serpAPIBase))
	if err != nil {
		return nil, fmt.Errorf("parsing SerpApi base URL: %w", err)
	}
	params := u.Query()
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	params.Set("api_key", p.cfg.APIKey)
	if p.cfg.Country != "" {
		params.Set("gl", p.cfg.Country)
	}
	if p.cfg.Language != "" {
		params.Set("hl", p.cfg.Language)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)

	data, err := httputil.Do(ctx, p.client, req)
	if err != nil {
		return nil, fmt.Errorf("SerpApi request: %w", err)
	}

	var sr serpAPIResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, fmt.Errorf("parsing SerpApi response: %w", err)
	}
	if sr.Error != "" && len(sr.OrganicResults) == 0 {
		return nil, serpAPIError(sr.Error)
	}

	results := make([]types.ProviderResult, 0, len(sr.OrganicResults))
	for _, o := range sr.OrganicResults {
		if r, ok := newResult(types.ProviderSerpAPI, o.Link, o.Title, o.Snippet, o.Date); ok {
			results = append(results, r)
		}
	}
	return capResults(results, num), nil
}

// serpAPIError classifies the error message SerpApi can return in a 2xx
// body. "Google hasn't returned any results" is an empty result set.
func serpAPIError(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "hasn't returned any results"):
		return nil
	case strings.Contains(lower, "api key"):
		return &ProviderError{Provider: types.ProviderSerpAPI, Kind: KindAuthInvalid, Err: errors.New(msg)}
	case strings.Contains(lower, "run out of searches"):
		return &ProviderError{Provider: types.ProviderSerpAPI, Kind: KindQuotaExceeded, Err: errors.New(msg)}
	}
	return &ProviderError{Provider: types.ProviderSerpAPI, Kind: KindTransientHTTP, Err: errors.New(msg)}
}

// SerpApi JSON structures.
type serpAPIResponse struct {
	Error          string          `json:"error"`
	OrganicResults []serpAPIResult `json:"organic_results"`
}

type serpAPIResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Date     string `json:"date"`
}
