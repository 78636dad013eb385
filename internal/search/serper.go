// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const serperAPIBase = "https://google.serper.dev/search"

// serperMaxNum is the largest page Serper accepts.
const serperMaxNum = 100

// Serper queries the Serper Google SERP API. The key travels in the
// X-API-KEY header.
type Serper struct {
	adapter
}

// NewSerper returns a Serper adapter owning cfg.
func NewSerper(cfg types.ProviderConfig, client *http.Client, userAgent string) *Serper {
	return &Serper{adapter: newAdapter(cfg, client, userAgent)}
}

// Name returns the provider identifier.
func (p *Serper) Name() types.ProviderName { return types.ProviderSerper }

// Attempt runs one Serper search.
func (p *Serper) Attempt(ctx context.Context, query string, maxResults int) ([]types.ProviderResult, error) {
	if err := p.precheck(p.Name()); err != nil {
		return nil, err
	}
	num := clamp(maxResults, types.DefaultMaxResults, serperMaxNum)

	payload := serperRequest{Q: query, Num: num, GL: p.cfg.Country, HL: p.cfg.Language}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding Serper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL(serperAPIBase), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("X-API-KEY", p.cfg.APIKey)

	data, err := httputil.Do(ctx, p.client, req)
	if err != nil {
		return nil, fmt.Errorf("Serper API request: %w", err)
	}

	var sr serperResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, fmt.Errorf("parsing Serper response: %w", err)
	}

	results := make([]types.ProviderResult, 0, len(sr.Organic))
	for _, o := range sr.Organic {
		if r, ok := newResult(types.ProviderSerper, o.Link, o.Title, o.Snippet, o.Date); ok {
			results = append(results, r)
		}
	}
	return capResults(results, num), nil
}

// clamp returns n bounded to [1, max], substituting def for n <= 0.
func clamp(n, def, max int) int {
	if n <= 0 {
		n = def
	}
	if n > max {
		n = max
	}
	return n
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	GL  string `json:"gl,omitempty"`
	HL  string `json:"hl,omitempty"`
}

// Serper API JSON structures.
type serperResponse struct {
	Organic []serperOrganic `json:"organic"`
}

type serperOrganic struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Date     string `json:"date"`
	Position int    `json:"position"`
}

