// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import "github.com/pdiddy/evidence-engine/pkg/types"

// LegalValidator scores litigation and registry records. A record that
// carries neither the registry ID nor the literal legal name is rejected
// outright, however similar the rest of its text looks.
type LegalValidator struct {
	base *Validator
}

// Legal returns the legal-record specialization of v.
func (v *Validator) Legal() *LegalValidator { return &LegalValidator{base: v} }

// Validate scores candidate as a legal record.
func (l *LegalValidator) Validate(candidate types.ProviderResult, facts types.EntityFacts) types.ValidationResult {
	e := l.base.evaluate(candidate, facts)
	if !e.registryMatch && !e.legalLiteral {
		return types.ValidationResult{
			Linked:     false,
			Score:      0,
			Confidence: types.ConfidenceNone,
			Reasons:    []string{"legal record names neither the registry ID nor the legal name"},
		}
	}
	return l.base.verdict(e)
}
