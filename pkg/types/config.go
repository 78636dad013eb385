package types

import "time"

// HTTPConfig holds shared HTTP settings used by the provider adapters.
type HTTPConfig struct {
	// Timeout is the per-attempt ceiling for one provider call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "evidence-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderConfig holds the settings owned by one adapter instance.
type ProviderConfig struct {
	// BaseURL overrides the provider endpoint. Empty means the public API.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey authenticates against the provider.
	APIKey string `json:"-" yaml:"api_key,omitempty"`

	// Country and Language are passed through as locale hints when the
	// provider supports them.
	Country  string `json:"country,omitempty" yaml:"country,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// QuotaPerWindow caps calls made through this adapter per QuotaWindow.
	// Zero disables the local budget.
	QuotaPerWindow int           `json:"quota_per_window,omitempty" yaml:"quota_per_window,omitempty"`
	QuotaWindow    time.Duration `json:"quota_window,omitempty" yaml:"quota_window,omitempty"`
}

// SearchConfig holds settings for the failover orchestrator.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Providers is the priority order. The first entry is the primary.
	Providers []ProviderName `json:"providers" yaml:"providers"`

	// MaxResults is the result-count hint sent to providers (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	Serper  ProviderConfig `json:"serper" yaml:"serper"`
	Brave   ProviderConfig `json:"brave" yaml:"brave"`
	SerpAPI ProviderConfig `json:"serpapi" yaml:"serpapi"`
}

// Provider returns the adapter settings for name.
func (c SearchConfig) Provider(name ProviderName) ProviderConfig {
	switch name {
	case ProviderSerper:
		return c.Serper
	case ProviderBrave:
		return c.Brave
	case ProviderSerpAPI:
		return c.SerpAPI
	}
	return ProviderConfig{}
}

// ScoringConfig holds every point delta, threshold, and list used by the
// link validator. The values were carried over as given and have not been
// tuned against labelled data.
type ScoringConfig struct {
	// Tier A.
	DomainMatch   int `json:"domain_match" yaml:"domain_match"`
	RegistryMatch int `json:"registry_match" yaml:"registry_match"`

	// Tier B.
	NameWithContext     int     `json:"name_with_context" yaml:"name_with_context"`
	NameOnly            int     `json:"name_only" yaml:"name_only"`
	PartnerCooccurrence int     `json:"partner_cooccurrence" yaml:"partner_cooccurrence"`
	SocialSlug          int     `json:"social_slug" yaml:"social_slug"`
	MinTokenOverlap     float64 `json:"min_token_overlap" yaml:"min_token_overlap"`

	// Tier C.
	MarketplacePenalty    int `json:"marketplace_penalty" yaml:"marketplace_penalty"`
	DocumentPenalty       int `json:"document_penalty" yaml:"document_penalty"`
	DisambiguationPenalty int `json:"disambiguation_penalty" yaml:"disambiguation_penalty"`

	// Verdict thresholds, inclusive lower bounds.
	HighThreshold   int `json:"high_threshold" yaml:"high_threshold"`
	MediumThreshold int `json:"medium_threshold" yaml:"medium_threshold"`
	LowThreshold    int `json:"low_threshold" yaml:"low_threshold"`

	// MarketplaceFloor is the score the marketplace validator raises weak
	// listings to when they name the entity.
	MarketplaceFloor int `json:"marketplace_floor" yaml:"marketplace_floor"`

	ContextKeywords        []string `json:"context_keywords" yaml:"context_keywords"`
	MarketplaceHosts       []string `json:"marketplace_hosts" yaml:"marketplace_hosts"`
	DocumentHosts          []string `json:"document_hosts" yaml:"document_hosts"`
	DocumentExtensions     []string `json:"document_extensions" yaml:"document_extensions"`
	SocialHosts            []string `json:"social_hosts" yaml:"social_hosts"`
	DisambiguationPatterns []string `json:"disambiguation_patterns" yaml:"disambiguation_patterns"`
}

// ResolverConfig holds settings for the domain resolvers.
type ResolverConfig struct {
	// Limit is the number of links returned by list resolvers (default 5).
	Limit int `json:"limit" yaml:"limit"`

	// SocialPlatforms are the platforms queried by "resolve all".
	SocialPlatforms []Platform `json:"social_platforms" yaml:"social_platforms"`

	// Marketplaces are the domains OR-ed into the marketplace query.
	Marketplaces []string `json:"marketplaces" yaml:"marketplaces"`

	// LegalRegistryDomain is the site searched for litigation records.
	LegalRegistryDomain string `json:"legal_registry_domain" yaml:"legal_registry_domain"`

	// NewsNoiseTerms exclude news hits that mention any of them.
	NewsNoiseTerms []string `json:"news_noise_terms" yaml:"news_noise_terms"`

	// NewsMinTokenMatches is the entity-name token matches a news hit needs
	// when it does not carry the registry ID (default 2).
	NewsMinTokenMatches int `json:"news_min_token_matches" yaml:"news_min_token_matches"`
}

// AuditConfig holds settings for the optional audit log.
type AuditConfig struct {
	// DBPath is the SQLite file. Empty disables auditing.
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout bounds reading a request; resolve calls may take up to
	// three provider timeouts to answer.
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// Config groups every section of the evidence engine configuration.
type Config struct {
	Search   SearchConfig   `json:"search" yaml:"search"`
	Scoring  ScoringConfig  `json:"scoring" yaml:"scoring"`
	Resolver ResolverConfig `json:"resolver" yaml:"resolver"`
	Audit    AuditConfig    `json:"audit" yaml:"audit"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}
