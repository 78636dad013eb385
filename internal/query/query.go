// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query builds the search strings sent to providers. Builders are
// pure: the same inputs always produce the same query, and nothing
// downstream inspects the query's structure.
package query

import (
	"fmt"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/evidence"
	"github.com/pdiddy/evidence-engine/internal/validate"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Disambiguation terms per use case, Portuguese first.
var (
	websiteTerms = []string{"site oficial", "sobre", "quem somos", "empresa", "contato", "official site", "about", "company", "contact"}
	newsTerms    = []string{"anuncia", "lança", "expansão", "investimento", "inaugura", "aquisição", "announces", "launches", "expansion", "investment"}
)

// Params carries the inputs a builder may need. Unused fields are ignored.
type Params struct {
	Name         string
	RegistryID   string
	Platform     types.Platform
	LegalDomain  string
	Marketplaces []string
}

// Build dispatches to the builder for useCase.
func Build(useCase types.UseCase, p Params) (string, error) {
	switch useCase {
	case types.UseCaseWebsite:
		return Website(p.Name, p.RegistryID), nil
	case types.UseCaseNews:
		return News(p.Name), nil
	case types.UseCaseSocial:
		domain := evidence.SiteDomain(p.Platform)
		if domain == "" {
			return "", fmt.Errorf("unknown platform %q", p.Platform)
		}
		return Social(p.Name, domain), nil
	case types.UseCaseLegal:
		return Legal(p.Name, p.RegistryID, p.LegalDomain), nil
	case types.UseCaseMarketplace:
		return Marketplace(p.Name, p.Marketplaces), nil
	default:
		return "", fmt.Errorf("unknown use case %q", useCase)
	}
}

// Website finds an entity's own site. A registry ID, when given, is
// offered as an alternative anchor to the site terms.
func Website(name, registryID string) string {
	terms := orGroup(websiteTerms)
	if anchor := registryAnchor(registryID); anchor != "" {
		terms = "(" + terms + " OR " + anchor + ")"
	}
	return join(quote(name), terms)
}

// News finds announcements, expansions, and investment coverage.
func News(name string) string {
	return join(quote(name), orGroup(newsTerms))
}

// Social restricts the search to one platform's domain.
func Social(name, platformDomain string) string {
	return join(quote(name), site(platformDomain))
}

// Legal restricts the search to the legal-record registry domain and
// anchors it by registry ID when one is known.
func Legal(name, registryID, legalDomain string) string {
	return join(quote(name), registryAnchor(registryID), site(legalDomain))
}

// Marketplace restricts the search to any of the configured marketplaces.
func Marketplace(name string, marketplaces []string) string {
	var sites []string
	for _, m := range marketplaces {
		if s := site(m); s != "" {
			sites = append(sites, s)
		}
	}
	var restriction string
	switch len(sites) {
	case 0:
	case 1:
		restriction = sites[0]
	default:
		restriction = "(" + strings.Join(sites, " OR ") + ")"
	}
	return join(quote(name), restriction)
}

func quote(s string) string {
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, `"`, "")), " ")
	if s == "" {
		return ""
	}
	return `"` + s + `"`
}

func site(domain string) string {
	d := validate.NormalizeDomain(domain)
	if d == "" {
		return ""
	}
	return "site:" + d
}

// orGroup renders terms as ("a b" OR c ...); multi-word terms are quoted.
func orGroup(terms []string) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.Contains(t, " ") {
			t = `"` + t + `"`
		}
		parts = append(parts, t)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// registryAnchor matches the ID in either bare or punctuated form.
func registryAnchor(registryID string) string {
	digits := validate.Digits(registryID)
	if digits == "" {
		return ""
	}
	formatted := validate.FormatRegistryID(digits)
	if formatted == digits {
		return `"` + digits + `"`
	}
	return fmt.Sprintf(`("%s" OR "%s")`, digits, formatted)
}

func join(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
