// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import "github.com/pdiddy/evidence-engine/pkg/types"

// MarketplaceValidator scores B2B/B2C marketplace listings. Listings carry
// weaker identity signals than an official site, so a weak listing that
// still names the entity is raised to the marketplace floor.
type MarketplaceValidator struct {
	base *Validator
}

// Marketplace returns the marketplace specialization of v.
func (v *Validator) Marketplace() *MarketplaceValidator { return &MarketplaceValidator{base: v} }

// Validate scores candidate as a marketplace listing.
func (m *MarketplaceValidator) Validate(candidate types.ProviderResult, facts types.EntityFacts) types.ValidationResult {
	e := m.base.evaluate(candidate, facts)
	res := m.base.verdict(e)

	floor := m.base.cfg.MarketplaceFloor
	if res.Score >= floor || !(e.legalLiteral || e.tradeLiteral || e.domainFragment) {
		return res
	}

	res.Score = floor
	res.Linked = true
	res.Confidence = types.ConfidenceMedium
	res.Reasons = append(res.Reasons, "marketplace listing names the entity; score raised to floor")
	res.Warnings = []string{reviewWarning}
	return res
}
