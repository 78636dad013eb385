// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records that flow through the evidence engine:
// provider hits, orchestration responses, entity facts supplied by callers,
// validation verdicts, and resolver output.
package types

import "time"

// ProviderName identifies an upstream search provider.
type ProviderName string

const (
	ProviderSerper  ProviderName = "serper"
	ProviderBrave   ProviderName = "brave"
	ProviderSerpAPI ProviderName = "serpapi"

	// ProviderNone marks a response in which no provider produced results.
	ProviderNone ProviderName = "none"
)

// ProviderResult is one normalized hit from one provider adapter. Values
// are never mutated after an adapter returns them.
type ProviderResult struct {
	// URL is the result link as returned by the provider.
	URL string `json:"url" yaml:"url"`

	// Title is the result title with markup removed.
	Title string `json:"title" yaml:"title"`

	// Snippet is the result description with markup removed.
	Snippet string `json:"snippet" yaml:"snippet"`

	// PublishedDate is the publication date when the provider reports one
	// in a parseable form.
	PublishedDate *time.Time `json:"published_date,omitempty" yaml:"published_date,omitempty"`

	// SourceProvider is the adapter that produced the hit.
	SourceProvider ProviderName `json:"source_provider" yaml:"source_provider"`
}

// ProviderStats holds the result count per configured provider.
type ProviderStats map[ProviderName]int

// Total returns the sum of all counts.
func (s ProviderStats) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// OrchestrationResponse is the outcome of one failover search. Provider is
// ProviderNone exactly when Results is empty and every count in Stats is zero.
type OrchestrationResponse struct {
	Results      []ProviderResult `json:"results" yaml:"results"`
	Provider     ProviderName     `json:"provider" yaml:"provider"`
	FallbackUsed bool             `json:"fallback_used" yaml:"fallback_used"`
	Stats        ProviderStats    `json:"stats" yaml:"stats"`
}

// Found reports whether any provider returned results.
func (r OrchestrationResponse) Found() bool {
	return r.Provider != ProviderNone && len(r.Results) > 0
}

// EntityFacts are the known facts about a business entity, supplied by the
// caller. The engine never mutates them.
type EntityFacts struct {
	// RegistryID is the jurisdiction business identifier in any punctuation.
	RegistryID string `json:"registry_id,omitempty" yaml:"registry_id,omitempty"`

	LegalName    string   `json:"legal_name,omitempty" yaml:"legal_name,omitempty"`
	TradeName    string   `json:"trade_name,omitempty" yaml:"trade_name,omitempty"`
	PartnerNames []string `json:"partner_names,omitempty" yaml:"partner_names,omitempty"`

	// Domain is the official website host, with or without scheme.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// DisplayName returns the trade name when set, otherwise the legal name.
func (f EntityFacts) DisplayName() string {
	if f.TradeName != "" {
		return f.TradeName
	}
	return f.LegalName
}

// Confidence is the tier derived from a validation score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// ValidationResult is the verdict for one candidate against one set of
// entity facts.
type ValidationResult struct {
	Linked     bool       `json:"linked" yaml:"linked"`
	Score      int        `json:"score" yaml:"score"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
	Reasons    []string   `json:"reasons" yaml:"reasons"`
	Warnings   []string   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Platform names a site whose URLs carry a profile handle.
type Platform string

const (
	PlatformLinkedIn      Platform = "linkedin"
	PlatformInstagram     Platform = "instagram"
	PlatformFacebook      Platform = "facebook"
	PlatformX             Platform = "x"
	PlatformYouTube       Platform = "youtube"
	PlatformTikTok        Platform = "tiktok"
	PlatformMercadoLivre  Platform = "mercadolivre"
	PlatformShopee        Platform = "shopee"
	PlatformAmazon        Platform = "amazon"
	PlatformMagazineLuiza Platform = "magazineluiza"
)

// ExtractedHandle is the profile identifier pulled from a URL.
type ExtractedHandle struct {
	Platform   Platform `json:"platform" yaml:"platform"`
	Identifier string   `json:"identifier" yaml:"identifier"`
}

// UseCase selects a resolver.
type UseCase string

const (
	UseCaseWebsite     UseCase = "website"
	UseCaseNews        UseCase = "news"
	UseCaseSocial      UseCase = "social"
	UseCaseLegal       UseCase = "legal"
	UseCaseMarketplace UseCase = "marketplace"
)

// UseCases lists every use case in resolution order.
var UseCases = []UseCase{UseCaseWebsite, UseCaseNews, UseCaseSocial, UseCaseLegal, UseCaseMarketplace}

// ParseUseCase returns the use case named by s.
func ParseUseCase(s string) (UseCase, bool) {
	for _, uc := range UseCases {
		if string(uc) == s {
			return uc, true
		}
	}
	return "", false
}

// ResolvedLink is a scored candidate with any extracted handle.
type ResolvedLink struct {
	Candidate  ProviderResult   `json:"candidate" yaml:"candidate"`
	Validation ValidationResult `json:"validation" yaml:"validation"`
	Handle     *ExtractedHandle `json:"handle,omitempty" yaml:"handle,omitempty"`
}

// Resolution is the output of one resolver invocation. Rejected keeps the
// discarded candidates and their verdicts for audit.
type Resolution struct {
	UseCase      UseCase        `json:"use_case" yaml:"use_case"`
	Platform     Platform       `json:"platform,omitempty" yaml:"platform,omitempty"`
	Query        string         `json:"query" yaml:"query"`
	Provider     ProviderName   `json:"provider" yaml:"provider"`
	FallbackUsed bool           `json:"fallback_used" yaml:"fallback_used"`
	Stats        ProviderStats  `json:"stats" yaml:"stats"`
	Links        []ResolvedLink `json:"links" yaml:"links"`
	Rejected     []ResolvedLink `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

// Best returns the highest scored link, or nil when none survived.
func (r Resolution) Best() *ResolvedLink {
	if len(r.Links) == 0 {
		return nil
	}
	return &r.Links[0]
}
