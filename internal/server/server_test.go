// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/evidence-engine/internal/resolve"
	"github.com/pdiddy/evidence-engine/internal/validate"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// --- fakes ---

type staticSearcher struct {
	results []types.ProviderResult
}

func (f staticSearcher) Search(context.Context, string, int) types.OrchestrationResponse {
	if len(f.results) == 0 {
		return types.OrchestrationResponse{Results: []types.ProviderResult{}, Provider: types.ProviderNone, FallbackUsed: true, Stats: types.ProviderStats{}}
	}
	return types.OrchestrationResponse{
		Results:  f.results,
		Provider: types.ProviderSerper,
		Stats:    types.ProviderStats{types.ProviderSerper: len(f.results)},
	}
}

type fakeRecorder struct {
	mu    sync.Mutex
	runs  []string
	count int
	err   error
}

func (f *fakeRecorder) Record(_ context.Context, runID string, _ types.EntityFacts, res ...types.Resolution) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, runID)
	f.count += len(res)
	return len(res), f.err
}

func newTestServer(t *testing.T, results []types.ProviderResult, opts ...Option) *httptest.Server {
	t.Helper()
	v := validate.Default()
	r := resolve.New(staticSearcher{results: results}, v, types.DefaultResolverConfig())
	ts := httptest.NewServer(New(r, v, opts...).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

var sobre = types.ProviderResult{
	URL:     "https://acme.com.br/sobre",
	Title:   "Sobre – Acme",
	Snippet: "Acme Tecnologia atua desde 2005",
}

// --- tests ---

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestValidateProfiles(t *testing.T) {
	ts := newTestServer(t, nil)
	tests := []struct {
		name      string
		body      string
		wantScore int
		linked    bool
	}{
		{
			name:      "generic",
			body:      `{"candidate":{"url":"https://acme.com.br/sobre","title":"Sobre – Acme","snippet":"Acme Tecnologia atua desde 2005"},"facts":{"legal_name":"Acme Tecnologia Ltda","domain":"acme.com.br"}}`,
			wantScore: 70,
			linked:    true,
		},
		{
			name:      "legal forced rejection",
			body:      `{"profile":"legal","candidate":{"url":"https://acme.com.br/sobre","title":"Sobre","snippet":"institucional"},"facts":{"legal_name":"Acme Tecnologia Ltda","domain":"acme.com.br"}}`,
			wantScore: 0,
			linked:    false,
		},
		{
			name:      "marketplace floor",
			body:      `{"profile":"marketplace","candidate":{"url":"https://www.mercadolivre.com.br/loja/acme","title":"Loja oficial Acme Tecnologia"},"facts":{"legal_name":"Acme Tecnologia Ltda"}}`,
			wantScore: 40,
			linked:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, "/v1/validate", tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var got types.ValidationResult
			decodeBody(t, resp, &got)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.linked, got.Linked)
			assert.NotEmpty(t, got.Reasons)
		})
	}
}

func TestValidateBadRequests(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts, "/v1/validate", `{"candidate":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts, "/v1/validate", `{"profile":"fuzzy"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Contains(t, body["error"], "unknown validation profile")
}

func TestExtract(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts, "/v1/extract", `{"url":"https://www.instagram.com/acme/"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var h *types.ExtractedHandle
	decodeBody(t, resp, &h)
	require.NotNil(t, h)
	assert.Equal(t, types.ExtractedHandle{Platform: types.PlatformInstagram, Identifier: "acme"}, *h)

	resp = post(t, ts, "/v1/extract", `{"url":"https://www.instagram.com/p/C4xYz/","platform":"instagram"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	h = &types.ExtractedHandle{}
	decodeBody(t, resp, &h)
	assert.Nil(t, h, "post permalinks carry no handle")

	resp = post(t, ts, "/v1/extract", `{"url":"https://x.com/acme","platform":"myspace"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResolveOne(t *testing.T) {
	rec := &fakeRecorder{}
	ts := newTestServer(t, []types.ProviderResult{sobre}, WithAudit(rec))

	resp := post(t, ts, "/v1/resolve/website", `{"facts":{"legal_name":"Acme Tecnologia Ltda","domain":"acme.com.br"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got resolveResponse
	decodeBody(t, resp, &got)
	require.Len(t, got.Resolutions, 1)
	res := got.Resolutions[0]
	assert.Equal(t, types.UseCaseWebsite, res.UseCase)
	assert.Equal(t, types.ProviderSerper, res.Provider)
	require.Len(t, res.Links, 1)
	assert.Equal(t, 70, res.Links[0].Validation.Score)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, got.RunID, rec.runs[0])
}

func TestResolveUnknownUseCase(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := post(t, ts, "/v1/resolve/shopping", `{"facts":{}}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResolveMalformedBody(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := post(t, ts, "/v1/resolve/news", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResolveUnknownPlatform(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := post(t, ts, "/v1/resolve/social", `{"facts":{"legal_name":"Acme"},"platform":"myspace"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResolveAll(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	ts := newTestServer(t, nil, WithAudit(rec))

	resp := post(t, ts, "/v1/resolve", `{"facts":{"legal_name":"Acme Tecnologia Ltda"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "audit failures do not fail the request")

	var got resolveResponse
	decodeBody(t, resp, &got)
	want := 4 + len(types.DefaultResolverConfig().SocialPlatforms)
	require.Len(t, got.Resolutions, want)
	for _, res := range got.Resolutions {
		assert.Equal(t, types.ProviderNone, res.Provider)
		assert.NotNil(t, res.Links)
	}
	assert.Equal(t, want, rec.count)
}

func TestRecovererReturns500(t *testing.T) {
	s := New(nil, validate.Default())
	r := s.Routes()
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
