// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-engine/internal/validate"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// --- fake searcher ---

type fakeSearcher struct {
	mu      sync.Mutex
	results []types.ProviderResult
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, q string, _ int) types.OrchestrationResponse {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	if len(f.results) == 0 {
		return types.OrchestrationResponse{
			Results:      []types.ProviderResult{},
			Provider:     types.ProviderNone,
			FallbackUsed: true,
			Stats:        types.ProviderStats{types.ProviderSerper: 0, types.ProviderBrave: 0},
		}
	}
	return types.OrchestrationResponse{
		Results:  f.results,
		Provider: types.ProviderSerper,
		Stats:    types.ProviderStats{types.ProviderSerper: len(f.results), types.ProviderBrave: 0},
	}
}

func (f *fakeSearcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func newResolver(s Searcher) *Resolver {
	return New(s, validate.Default(), types.DefaultResolverConfig())
}

func date(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

var acme = types.EntityFacts{
	LegalName: "Acme Tecnologia Ltda",
	Domain:    "acme.com.br",
}

// --- website ---

func TestWebsiteBestSingleLink(t *testing.T) {
	s := &fakeSearcher{results: []types.ProviderResult{
		{URL: "https://loja.acme.com.br/", Title: "Página inicial"},
		{URL: "https://www.mercadolivre.com.br/produto/123", Title: "Acme produto X"},
		{URL: "https://acme.com.br/sobre", Title: "Sobre – Acme", Snippet: "Acme Tecnologia atua desde 2005"},
	}}

	res := newResolver(s).Website(context.Background(), acme)

	assert.Equal(t, types.UseCaseWebsite, res.UseCase)
	assert.Equal(t, types.ProviderSerper, res.Provider)
	assert.Contains(t, res.Query, `"Acme Tecnologia Ltda"`)
	require.Len(t, res.Links, 1)
	assert.Equal(t, "https://acme.com.br/sobre", res.Links[0].Candidate.URL)
	assert.Equal(t, 70, res.Links[0].Validation.Score)
	assert.Equal(t, types.ConfidenceHigh, res.Links[0].Validation.Confidence)

	require.Len(t, res.Rejected, 1)
	assert.Equal(t, -90, res.Rejected[0].Validation.Score)
	assert.Equal(t, "https://acme.com.br/sobre", res.Best().Candidate.URL)
}

func TestWebsiteUsesTradeName(t *testing.T) {
	s := &fakeSearcher{}
	facts := acme
	facts.TradeName = "AcmeTec"
	newResolver(s).Website(context.Background(), facts)
	require.Len(t, s.queries, 1)
	assert.True(t, strings.HasPrefix(s.queries[0], `"AcmeTec"`))
}

func TestEmptyNameSkipsSearch(t *testing.T) {
	s := &fakeSearcher{results: []types.ProviderResult{{URL: "https://acme.com.br/"}}}
	r := newResolver(s)
	facts := types.EntityFacts{Domain: "acme.com.br"}

	for _, res := range []types.Resolution{
		r.Website(context.Background(), facts),
		r.News(context.Background(), facts, 0),
		r.Social(context.Background(), facts, types.PlatformLinkedIn, 0),
		r.Legal(context.Background(), facts),
		r.Marketplace(context.Background(), facts, 0),
	} {
		assert.Equal(t, types.ProviderNone, res.Provider, res.UseCase)
		assert.Empty(t, res.Links)
		assert.NotNil(t, res.Links)
		assert.Empty(t, res.Query)
	}
	assert.Zero(t, s.calls())
}

func TestTotalFailureYieldsEmptyResolution(t *testing.T) {
	res := newResolver(&fakeSearcher{}).Website(context.Background(), acme)
	assert.Equal(t, types.ProviderNone, res.Provider)
	assert.True(t, res.FallbackUsed)
	assert.Empty(t, res.Links)
	assert.Nil(t, res.Best())
	assert.Zero(t, res.Stats.Total())
}

// --- news ---

func TestNewsFiltersAndRanks(t *testing.T) {
	s := &fakeSearcher{results: []types.ProviderResult{
		{
			URL: "https://news.example.com/acme-expansao", Title: "Acme Tecnologia anuncia expansão",
			Snippet: "A empresa Acme Tecnologia investe R$ 10 milhões", PublishedDate: date("2024-05-01"),
		},
		{
			URL: "https://news.example.com/vagas", Title: "Vagas na Acme Tecnologia",
			Snippet: "empresa contrata",
		},
		{
			URL: "https://news.example.com/lanca", Title: "Acme lança produto",
			Snippet: "empresa Acme",
		},
		{
			URL: "https://news.example.com/acme-inaugura", Title: "Acme Tecnologia inaugura fábrica",
			Snippet: "A empresa Acme Tecnologia abre unidade", PublishedDate: date("2024-07-01"),
		},
		{
			URL: "https://news.example.com/cnpj", Title: "Empresa 12.345.678/0001-90 recebe investimento",
		},
	}}
	facts := types.EntityFacts{
		LegalName:  "Acme Tecnologia Ltda",
		TradeName:  "Acme",
		RegistryID: "12345678000190",
	}

	res := newResolver(s).News(context.Background(), facts, 0)

	require.Len(t, res.Links, 3)
	assert.Equal(t, "https://news.example.com/acme-inaugura", res.Links[0].Candidate.URL, "newest first on equal score")
	assert.Equal(t, "https://news.example.com/acme-expansao", res.Links[1].Candidate.URL)
	assert.Equal(t, "https://news.example.com/cnpj", res.Links[2].Candidate.URL, "registry ID bypasses the token filter")
	for _, l := range res.Links {
		assert.Equal(t, 40, l.Validation.Score)
	}

	require.Len(t, res.Rejected, 2)
	assert.Contains(t, res.Rejected[0].Validation.Reasons[0], "noise term")
	assert.Contains(t, res.Rejected[1].Validation.Reasons[0], "1 of 2")
	assert.False(t, res.Rejected[1].Validation.Linked)
}

func TestNewsLimit(t *testing.T) {
	s := &fakeSearcher{results: []types.ProviderResult{
		{URL: "https://a.example.com/1", Title: "Acme Tecnologia na empresa", PublishedDate: date("2024-01-01")},
		{URL: "https://a.example.com/2", Title: "Acme Tecnologia na empresa", PublishedDate: date("2024-02-01")},
	}}
	facts := types.EntityFacts{LegalName: "Acme Tecnologia Ltda", TradeName: "Acme"}

	res := newResolver(s).News(context.Background(), facts, 1)
	require.Len(t, res.Links, 1)
	assert.Equal(t, "https://a.example.com/2", res.Links[0].Candidate.URL)
}

func TestNewsSingleTokenName(t *testing.T) {
	s := &fakeSearcher{results: []types.ProviderResult{
		{URL: "https://a.example.com/1", Title: "Globex anuncia", Snippet: "empresa Globex"},
	}}
	facts := types.EntityFacts{LegalName: "Globex Ltda", Domain: "a.example.com"}

	res := newResolver(s).News(context.Background(), facts, 0)
	require.Len(t, res.Links, 1, "one significant token suffices when the name has only one")
}

// --- social ---

func TestSocialRequiresProfileURL(t *testing.T) {
	s := &fakeSearcher{results: []types.ProviderResult{
		{
			URL: "https://www.linkedin.com/posts/acme_lancamento-activity-7123", Title: "Acme Tecnologia on LinkedIn",
			Snippet: "A empresa Acme Tecnologia lança novo produto",
		},
		{
			URL: "https://www.linkedin.com/company/acme", Title: "Acme Tecnologia | LinkedIn",
			Snippet: "Acme Tecnologia. Empresa de software.",
		},
		{URL: "https://www.linkedin.com/company/outra", Title: "Outra Ltda", Snippet: "Outra empresa"},
	}}

	res := newResolver(s).Social(context.Background(), acme, types.PlatformLinkedIn, 0)

	assert.Equal(t, `"Acme Tecnologia Ltda" site:linkedin.com`, res.Query)
	assert.Equal(t, types.PlatformLinkedIn, res.Platform)
	require.Len(t, res.Links, 1)
	assert.Equal(t, 45, res.Links[0].Validation.Score)
	require.NotNil(t, res.Links[0].Handle)
	assert.Equal(t, "acme", res.Links[0].Handle.Identifier)

	require.Len(t, res.Rejected, 2)
	post := res.Rejected[0]
	assert.False(t, post.Validation.Linked)
	assert.Contains(t, post.Validation.Reasons, "URL is not a profile page")
	assert.Nil(t, post.Handle)
}

// --- legal ---

func TestLegalRequiresRegistryOrLegalName(t *testing.T) {
	s := &fakeSearcher{results: []types.ProviderResult{
		{URL: "https://www.jusbrasil.com.br/noticias/x", Title: "Acme Tec notícia", Snippet: "empresa Acme contato"},
		{
			URL: "https://www.jusbrasil.com.br/processos/nome/acme", Title: "Processos de Acme Tecnologia Ltda",
			Snippet: "CNPJ 12.345.678/0001-90",
		},
	}}
	facts := acme
	facts.RegistryID = "12345678000190"

	res := newResolver(s).Legal(context.Background(), facts)

	assert.Equal(t, `"Acme Tecnologia Ltda" ("12345678000190" OR "12.345.678/0001-90") site:jusbrasil.com.br`, res.Query)
	require.Len(t, res.Links, 1)
	assert.Equal(t, 50, res.Links[0].Validation.Score)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, 0, res.Rejected[0].Validation.Score)
}

// --- marketplace ---

func TestMarketplaceFloorAndHandles(t *testing.T) {
	s := &fakeSearcher{results: []types.ProviderResult{
		{URL: "https://www.mercadolivre.com.br/loja/acme", Title: "Loja oficial Acme Tecnologia", Snippet: "Produtos Acme"},
		{URL: "https://produto.mercadolivre.com.br/MLB-1-fone", Title: "Fone de ouvido", Snippet: "frete grátis"},
		{URL: "https://shopee.com.br/Fone-Acme-i.1.2", Title: "Fone Acme"},
	}}

	res := newResolver(s).Marketplace(context.Background(), acme, 0)

	assert.Equal(t,
		`"Acme Tecnologia Ltda" (site:mercadolivre.com.br OR site:shopee.com.br OR site:amazon.com.br OR site:magazineluiza.com.br)`,
		res.Query)
	require.Len(t, res.Links, 2)
	assert.Equal(t, 40, res.Links[0].Validation.Score)
	assert.Equal(t, types.ConfidenceMedium, res.Links[0].Validation.Confidence)
	require.NotNil(t, res.Links[0].Handle)
	assert.Equal(t, types.PlatformMercadoLivre, res.Links[0].Handle.Platform)
	assert.Equal(t, "acme", res.Links[0].Handle.Identifier)
	assert.Nil(t, res.Links[1].Handle, "product pages carry no handle")

	require.Len(t, res.Rejected, 1)
	assert.Equal(t, -100, res.Rejected[0].Validation.Score)
}

// --- dispatch ---

func TestResolveDispatch(t *testing.T) {
	r := newResolver(&fakeSearcher{})
	ctx := context.Background()

	out, err := r.Resolve(ctx, types.UseCaseSocial, Request{Facts: acme})
	require.NoError(t, err)
	assert.Len(t, out, len(types.DefaultResolverConfig().SocialPlatforms))

	out, err = r.Resolve(ctx, types.UseCaseSocial, Request{Facts: acme, Platform: types.PlatformTikTok})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, types.PlatformTikTok, out[0].Platform)

	for _, uc := range []types.UseCase{types.UseCaseWebsite, types.UseCaseNews, types.UseCaseLegal, types.UseCaseMarketplace} {
		out, err = r.Resolve(ctx, uc, Request{Facts: acme})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, uc, out[0].UseCase)
	}

	_, err = r.Resolve(ctx, "shopping", Request{Facts: acme})
	assert.ErrorContains(t, err, "unknown use case")

	_, err = r.Resolve(ctx, types.UseCaseSocial, Request{Facts: acme, Platform: "myspace"})
	assert.ErrorContains(t, err, "unknown platform")
}

func TestAllFixedOrder(t *testing.T) {
	s := &fakeSearcher{}
	cfg := types.DefaultResolverConfig()
	r := New(s, validate.Default(), cfg)

	out, err := r.All(context.Background(), acme, 0)
	require.NoError(t, err)

	want := []types.UseCase{types.UseCaseWebsite, types.UseCaseNews}
	for range cfg.SocialPlatforms {
		want = append(want, types.UseCaseSocial)
	}
	want = append(want, types.UseCaseLegal, types.UseCaseMarketplace)

	require.Len(t, out, len(want))
	for i, res := range out {
		assert.Equal(t, want[i], res.UseCase, "position %d", i)
	}
	for i, p := range cfg.SocialPlatforms {
		assert.Equal(t, p, out[2+i].Platform)
	}
	assert.Equal(t, len(want), s.calls())
}

func TestAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newResolver(&fakeSearcher{}).All(ctx, acme, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

// --- ranking and formatting ---

func TestRank(t *testing.T) {
	link := func(url string, score int, d *time.Time) types.ResolvedLink {
		return types.ResolvedLink{
			Candidate:  types.ProviderResult{URL: url, PublishedDate: d},
			Validation: types.ValidationResult{Score: score},
		}
	}
	links := []types.ResolvedLink{
		link("undated", 40, nil),
		link("old", 40, date("2020-01-01")),
		link("top", 90, nil),
		link("new", 40, date("2024-01-01")),
	}
	rank(links)

	var got []string
	for _, l := range links {
		got = append(got, l.Candidate.URL)
	}
	assert.Equal(t, []string{"top", "new", "old", "undated"}, got)
}

func TestFormatters(t *testing.T) {
	s := &fakeSearcher{results: []types.ProviderResult{
		{URL: "https://acme.com.br/sobre", Title: "Sobre – Acme", Snippet: "Acme Tecnologia atua desde 2005"},
	}}
	res := newResolver(s).Website(context.Background(), acme)
	empty := newResolver(&fakeSearcher{}).Legal(context.Background(), acme)

	var table bytes.Buffer
	FormatTable([]types.Resolution{res, empty}, &table)
	assert.Contains(t, table.String(), "website  provider=serper")
	assert.Contains(t, table.String(), "https://acme.com.br/sobre")
	assert.Contains(t, table.String(), "legal  provider=none (fallback)")
	assert.Contains(t, table.String(), "No linked results (0 rejected).")

	var js bytes.Buffer
	require.NoError(t, FormatJSON([]types.Resolution{res}, &js))
	var decoded []types.Resolution
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, 70, decoded[0].Links[0].Validation.Score)

	var y bytes.Buffer
	require.NoError(t, FormatYAML(res, &y))
	var fromYAML types.Resolution
	require.NoError(t, yaml.Unmarshal(y.Bytes(), &fromYAML))
	assert.Equal(t, res.Query, fromYAML.Query)

	var v bytes.Buffer
	FormatValidation(res.Links[0].Validation, &v)
	assert.Contains(t, v.String(), "linked=true score=70 confidence=high")
	assert.Contains(t, v.String(), "  - official domain match: acme.com.br (+50)")
}
