// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

const (
	DefaultTimeout    = 10 * time.Second
	DefaultUserAgent  = "evidence-engine/0.1"
	DefaultMaxResults = 10
	DefaultLimit      = 5
)

// DefaultProviderOrder is the priority order used when none is configured.
var DefaultProviderOrder = []ProviderName{ProviderSerper, ProviderBrave, ProviderSerpAPI}

// DefaultSearchConfig returns the orchestrator defaults.
func DefaultSearchConfig() SearchConfig {
	locale := ProviderConfig{Country: "br", Language: "pt-br"}
	return SearchConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
		},
		Providers:  append([]ProviderName(nil), DefaultProviderOrder...),
		MaxResults: DefaultMaxResults,
		Serper:     locale,
		Brave:      locale,
		SerpAPI:    locale,
	}
}

// DefaultScoringConfig returns the validator weights and lists.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		DomainMatch:   50,
		RegistryMatch: 40,

		NameWithContext:     20,
		NameOnly:            10,
		PartnerCooccurrence: 20,
		SocialSlug:          25,
		MinTokenOverlap:     0.5,

		MarketplacePenalty:    -100,
		DocumentPenalty:       -50,
		DisambiguationPenalty: -50,

		HighThreshold:   60,
		MediumThreshold: 40,
		LowThreshold:    20,

		MarketplaceFloor: 40,

		ContextKeywords: []string{
			"sobre", "quem somos", "empresa", "contato", "institucional",
			"about", "company", "contact", "institutional",
		},
		MarketplaceHosts: []string{
			"mercadolivre.com.br", "mercadolibre.com", "amazon.com.br", "amazon.com",
			"shopee.com.br", "magazineluiza.com.br", "americanas.com.br",
			"casasbahia.com.br", "submarino.com.br", "aliexpress.com", "olx.com.br",
			"ebay.com",
		},
		DocumentHosts: []string{
			"in.gov.br", "diariooficial", "imprensaoficial", "scribd.com", "issuu.com",
		},
		DocumentExtensions: []string{".pdf", ".doc", ".docx", ".xls", ".xlsx"},
		SocialHosts: []string{
			"linkedin.com", "instagram.com", "facebook.com", "x.com", "twitter.com",
			"youtube.com", "tiktok.com",
		},
		DisambiguationPatterns: []string{
			`\bhomonim[oa]s?\b`,
			`\bnao confundir\b`,
			`\bsem (qualquer )?relacao com\b`,
			`\bnot affiliated with\b`,
			`\bunrelated to\b`,
			`\bnot to be confused\b`,
		},
	}
}

// DefaultResolverConfig returns the resolver defaults.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Limit: DefaultLimit,
		SocialPlatforms: []Platform{
			PlatformLinkedIn, PlatformInstagram, PlatformFacebook,
			PlatformX, PlatformYouTube, PlatformTikTok,
		},
		Marketplaces: []string{
			"mercadolivre.com.br", "shopee.com.br", "amazon.com.br", "magazineluiza.com.br",
		},
		LegalRegistryDomain: "jusbrasil.com.br",
		NewsNoiseTerms: []string{
			"vaga", "vagas", "emprego", "concurso", "obituario", "horoscopo",
			"classificados", "hiring", "job opening",
		},
		NewsMinTokenMatches: 2,
	}
}

// DefaultConfig returns a complete configuration with every default set.
func DefaultConfig() Config {
	return Config{
		Search:   DefaultSearchConfig(),
		Scoring:  DefaultScoringConfig(),
		Resolver: DefaultResolverConfig(),
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}
