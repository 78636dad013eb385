// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// --- mock provider ---

type mockProvider struct {
	name    types.ProviderName
	results []types.ProviderResult
	err     error
	block   bool
	calls   int32
}

func (m *mockProvider) Name() types.ProviderName { return m.name }

func (m *mockProvider) Attempt(ctx context.Context, _ string, _ int) ([]types.ProviderResult, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.results, m.err
}

func hits(provider types.ProviderName, n int) []types.ProviderResult {
	out := make([]types.ProviderResult, n)
	for i := range out {
		out[i] = types.ProviderResult{
			URL:            fmt.Sprintf("https://example.com/%d", i),
			Title:          fmt.Sprintf("Result %d", i),
			SourceProvider: provider,
		}
	}
	return out
}

func statusErr(code int) error {
	return fmt.Errorf("request: %w", &httputil.StatusError{StatusCode: code})
}

func TestSearchPrimarySuccess(t *testing.T) {
	a := &mockProvider{name: types.ProviderSerper, results: hits(types.ProviderSerper, 3)}
	b := &mockProvider{name: types.ProviderBrave, results: hits(types.ProviderBrave, 2)}

	resp := NewOrchestrator([]Provider{a, b}).Search(context.Background(), "acme", 10)

	assert.Equal(t, types.ProviderSerper, resp.Provider)
	assert.False(t, resp.FallbackUsed)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, 3, resp.Stats[types.ProviderSerper])
	assert.Equal(t, 0, resp.Stats[types.ProviderBrave])
	assert.Equal(t, int32(0), atomic.LoadInt32(&b.calls), "secondary must not be called")
}

func TestSearchFallsBackOnQuota(t *testing.T) {
	a := &mockProvider{name: types.ProviderSerper, err: statusErr(429)}
	b := &mockProvider{name: types.ProviderBrave, results: hits(types.ProviderBrave, 2)}
	c := &mockProvider{name: types.ProviderSerpAPI, results: hits(types.ProviderSerpAPI, 5)}

	resp := NewOrchestrator([]Provider{a, b, c}).Search(context.Background(), "acme", 10)

	assert.Equal(t, types.ProviderBrave, resp.Provider)
	assert.True(t, resp.FallbackUsed)
	assert.Equal(t, 2, resp.Stats[types.ProviderBrave])
	assert.Equal(t, 0, resp.Stats[types.ProviderSerper])
	assert.Equal(t, 0, resp.Stats[types.ProviderSerpAPI])
	assert.Equal(t, int32(1), atomic.LoadInt32(&a.calls), "failed provider is not retried")
	assert.Equal(t, int32(0), atomic.LoadInt32(&c.calls))
}

func TestSearchSkipsEmptyResults(t *testing.T) {
	a := &mockProvider{name: types.ProviderSerper}
	b := &mockProvider{name: types.ProviderBrave, results: []types.ProviderResult{}}
	c := &mockProvider{name: types.ProviderSerpAPI, results: hits(types.ProviderSerpAPI, 1)}

	resp := NewOrchestrator([]Provider{a, b, c}).Search(context.Background(), "acme", 10)

	assert.Equal(t, types.ProviderSerpAPI, resp.Provider)
	assert.True(t, resp.FallbackUsed)
	assert.Equal(t, 1, resp.Stats.Total())
}

func TestSearchTotalFailure(t *testing.T) {
	providers := []Provider{
		&mockProvider{name: types.ProviderSerper, err: statusErr(401)},
		&mockProvider{name: types.ProviderBrave, err: statusErr(503)},
		&mockProvider{name: types.ProviderSerpAPI, err: errors.New("connection refused")},
	}

	resp := NewOrchestrator(providers).Search(context.Background(), "acme", 10)

	want := types.OrchestrationResponse{
		Results:      []types.ProviderResult{},
		Provider:     types.ProviderNone,
		FallbackUsed: true,
		Stats: types.ProviderStats{
			types.ProviderSerper:  0,
			types.ProviderBrave:   0,
			types.ProviderSerpAPI: 0,
		},
	}
	assert.Equal(t, want, resp)
	assert.NotNil(t, resp.Results)
	assert.False(t, resp.Found())
}

func TestSearchTimeoutMovesOn(t *testing.T) {
	slow := &mockProvider{name: types.ProviderSerper, block: true}
	fast := &mockProvider{name: types.ProviderBrave, results: hits(types.ProviderBrave, 1)}

	start := time.Now()
	resp := NewOrchestrator([]Provider{slow, fast}, WithTimeout(30*time.Millisecond)).
		Search(context.Background(), "acme", 10)

	assert.Equal(t, types.ProviderBrave, resp.Provider)
	assert.True(t, resp.FallbackUsed)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond, "slow provider runs to its own timeout")
}

func TestSearchAllTimeout(t *testing.T) {
	providers := []Provider{
		&mockProvider{name: types.ProviderSerper, block: true},
		&mockProvider{name: types.ProviderBrave, block: true},
		&mockProvider{name: types.ProviderSerpAPI, block: true},
	}

	resp := NewOrchestrator(providers, WithTimeout(10*time.Millisecond)).Search(context.Background(), "acme", 10)

	assert.Equal(t, types.ProviderNone, resp.Provider)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.Stats.Total())
}

func TestSearchMisconfiguredProviderBehavesAsFailing(t *testing.T) {
	unkeyed := NewSerper(types.ProviderConfig{}, nil, "")
	b := &mockProvider{name: types.ProviderBrave, results: hits(types.ProviderBrave, 2)}

	resp := NewOrchestrator([]Provider{unkeyed, b}).Search(context.Background(), "acme", 10)

	assert.Equal(t, types.ProviderBrave, resp.Provider)
	assert.True(t, resp.FallbackUsed)
}

func TestSearchNoProviders(t *testing.T) {
	resp := NewOrchestrator(nil).Search(context.Background(), "acme", 10)
	assert.Equal(t, types.ProviderNone, resp.Provider)
	assert.True(t, resp.FallbackUsed)
	assert.Empty(t, resp.Stats)
}

func TestOrchestratorProvidersOrder(t *testing.T) {
	o := NewOrchestrator([]Provider{
		&mockProvider{name: types.ProviderBrave},
		&mockProvider{name: types.ProviderSerper},
	})
	assert.Equal(t, []types.ProviderName{types.ProviderBrave, types.ProviderSerper}, o.Providers())
}

func TestNewProvidersOrderAndDedup(t *testing.T) {
	cfg := types.DefaultSearchConfig()
	cfg.Providers = []types.ProviderName{types.ProviderSerpAPI, types.ProviderSerper, types.ProviderSerpAPI}

	providers, err := NewProviders(cfg, nil)
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, types.ProviderSerpAPI, providers[0].Name())
	assert.Equal(t, types.ProviderSerper, providers[1].Name())
}

func TestNewProvidersUnknown(t *testing.T) {
	cfg := types.DefaultSearchConfig()
	cfg.Providers = []types.ProviderName{"bing"}

	_, err := NewProviders(cfg, nil)
	assert.ErrorContains(t, err, "unknown search provider")
}
