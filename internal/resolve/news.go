// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"fmt"
	"strings"

	"github.com/pdiddy/evidence-engine/internal/validate"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// newsScreen keeps candidates that mention enough entity-name tokens, or
// the registry ID, and none of the configured noise terms.
func (r *Resolver) newsScreen(facts types.EntityFacts) func(types.ProviderResult) string {
	tokens := nameTokens(facts.LegalName, facts.TradeName)
	required := r.cfg.NewsMinTokenMatches
	if required <= 0 {
		required = 2
	}
	if len(tokens.Tokens) < required {
		required = len(tokens.Tokens)
	}

	var noise []string
	for _, term := range r.cfg.NewsNoiseTerms {
		if f := validate.Fold(term); f != "" {
			noise = append(noise, f)
		}
	}
	digits := validate.Digits(facts.RegistryID)

	return func(c types.ProviderResult) string {
		raw := strings.Join([]string{c.Title, c.Snippet, c.URL}, " ")
		text := validate.NewText(raw)
		for _, n := range noise {
			if text.HasPhrase(n) {
				return fmt.Sprintf("noise term %q", n)
			}
		}
		if digits != "" && (strings.Contains(raw, digits) || strings.Contains(raw, validate.FormatRegistryID(digits))) {
			return ""
		}
		if required == 0 {
			return "entity has no significant name tokens"
		}
		if m := text.Matches(tokens); m < required {
			return fmt.Sprintf("mentions %d of %d required name tokens", m, required)
		}
		return ""
	}
}

// nameTokens merges the significant tokens of several names.
func nameTokens(names ...string) validate.Name {
	var merged validate.Name
	seen := make(map[string]bool)
	for _, n := range names {
		for _, tok := range validate.NewName(n).Tokens {
			if !seen[tok] {
				seen[tok] = true
				merged.Tokens = append(merged.Tokens, tok)
			}
		}
	}
	return merged
}
