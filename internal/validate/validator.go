// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate decides whether a search result refers to a known
// business entity. Scoring is additive across independent rules grouped in
// three tiers: strong identity signals (official domain, registry ID),
// corroborating context (names, partners, social slugs), and exclusions
// (generic marketplaces, public documents, known name collisions). The
// verdict is a pure function of the candidate and the entity facts.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

const reviewWarning = "score in review band; manual review recommended"

// Validator scores candidates against entity facts. It holds no mutable
// state and is safe for concurrent use.
type Validator struct {
	cfg            types.ScoringConfig
	contextPhrases []string
	disambiguation []*regexp.Regexp
}

// New compiles cfg into a Validator.
func New(cfg types.ScoringConfig) (*Validator, error) {
	v := &Validator{cfg: cfg}
	for _, kw := range cfg.ContextKeywords {
		if f := Fold(kw); f != "" {
			v.contextPhrases = append(v.contextPhrases, f)
		}
	}
	for _, p := range cfg.DisambiguationPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling disambiguation pattern %q: %w", p, err)
		}
		v.disambiguation = append(v.disambiguation, re)
	}
	return v, nil
}

// Default returns a Validator using the default scoring configuration.
func Default() *Validator {
	v, err := New(types.DefaultScoringConfig())
	if err != nil {
		panic(err)
	}
	return v
}

// Config returns the scoring configuration in use.
func (v *Validator) Config() types.ScoringConfig { return v.cfg }

// evaluation is the intermediate state of one scoring pass. The
// specializations inspect its signals before or after the verdict.
type evaluation struct {
	text   Text
	url    parsedURL
	domain string

	domainMatch   bool
	registryMatch bool
	legalOverlap  bool
	tradeOverlap  bool

	// Literal phrase presence, used by the specializations.
	legalLiteral   bool
	tradeLiteral   bool
	domainFragment bool

	score   int
	reasons []string
}

func (e *evaluation) add(delta int, format string, args ...any) {
	e.score += delta
	e.reasons = append(e.reasons, fmt.Sprintf(format, args...)+fmt.Sprintf(" (%+d)", delta))
}

// tierA reports whether a strong identity signal fired.
func (e *evaluation) tierA() bool { return e.domainMatch || e.registryMatch }

// Validate scores candidate against facts.
func (v *Validator) Validate(candidate types.ProviderResult, facts types.EntityFacts) types.ValidationResult {
	return v.verdict(v.evaluate(candidate, facts))
}

func (v *Validator) evaluate(c types.ProviderResult, f types.EntityFacts) *evaluation {
	raw := strings.Join([]string{c.Title, c.Snippet, c.URL}, " ")
	e := &evaluation{
		text:   NewText(raw),
		url:    parseCandidateURL(c.URL),
		domain: NormalizeDomain(f.Domain),
	}
	legal := NewName(f.LegalName)
	trade := NewName(f.TradeName)

	// Tier A.
	if HostMatches(e.url.host, e.domain) {
		e.domainMatch = true
		e.add(v.cfg.DomainMatch, "official domain match: %s", e.domain)
	}
	if digits := Digits(f.RegistryID); digits != "" {
		if strings.Contains(raw, digits) || strings.Contains(raw, FormatRegistryID(digits)) {
			e.registryMatch = true
			e.add(v.cfg.RegistryMatch, "registry ID present: %s", FormatRegistryID(digits))
		}
	}

	// Tier B.
	e.legalLiteral = e.text.HasPhrase(legal.Phrase)
	e.tradeLiteral = e.text.HasPhrase(trade.Phrase)
	hasContext := v.hasContext(e.text)

	if e.text.Overlaps(legal, v.cfg.MinTokenOverlap) {
		e.legalOverlap = true
		v.addName(e, "legal name", hasContext)
	}
	if !trade.Empty() && trade.Phrase != legal.Phrase && e.text.Overlaps(trade, v.cfg.MinTokenOverlap) {
		e.tradeOverlap = true
		v.addName(e, "trade name", hasContext)
	}
	if e.legalOverlap || e.tradeOverlap {
		for _, p := range f.PartnerNames {
			pn := NewName(p)
			if !pn.Empty() && e.text.HasPhrase(pn.Phrase) {
				e.add(v.cfg.PartnerCooccurrence, "partner %q co-occurs with entity name", p)
				break
			}
		}
	}

	slug := RegisteredName(e.domain)
	if len(slug) >= 3 {
		e.domainFragment = e.text.HasToken(slug) || strings.Contains(strings.ToLower(c.URL), slug)
		if hostInList(e.url.host, v.cfg.SocialHosts) && pathHasSlug(e.url.path, slug) {
			e.add(v.cfg.SocialSlug, "social profile path carries domain slug %q", slug)
		}
	}

	// Tier C.
	if hostInList(e.url.host, v.cfg.MarketplaceHosts) && !e.tierA() {
		e.add(v.cfg.MarketplacePenalty, "generic marketplace host %s without official evidence", e.url.host)
	}
	if v.isDocument(e.url) && !e.registryMatch && !e.legalOverlap {
		e.add(v.cfg.DocumentPenalty, "generic public document without registry ID or legal name")
	}
	if !e.domainMatch {
		folded := e.text.Folded()
		for _, re := range v.disambiguation {
			if re.MatchString(folded) {
				e.add(v.cfg.DisambiguationPenalty, "matches name-collision pattern %q", re.String())
				break
			}
		}
	}
	return e
}

func (v *Validator) addName(e *evaluation, label string, hasContext bool) {
	if hasContext {
		e.add(v.cfg.NameWithContext, "%s overlap with corporate context", label)
		return
	}
	e.add(v.cfg.NameOnly, "%s overlap", label)
}

func (v *Validator) hasContext(t Text) bool {
	for _, p := range v.contextPhrases {
		if t.HasPhrase(p) {
			return true
		}
	}
	return false
}

func (v *Validator) isDocument(u parsedURL) bool {
	for _, ext := range v.cfg.DocumentExtensions {
		if ext != "" && strings.HasSuffix(u.path, strings.ToLower(ext)) {
			return true
		}
	}
	return hostInList(u.host, v.cfg.DocumentHosts)
}

// pathHasSlug matches slug against the path with and without hyphens, so
// "acme-tech.com" matches /company/acmetech and /company/acme-tech.
func pathHasSlug(path, slug string) bool {
	if strings.Contains(path, slug) {
		return true
	}
	compact := strings.ReplaceAll(slug, "-", "")
	return compact != slug && strings.Contains(strings.ReplaceAll(path, "-", ""), compact)
}

// verdict maps the total score to a linkage decision. Without a domain or
// registry signal the confidence never exceeds medium.
func (v *Validator) verdict(e *evaluation) types.ValidationResult {
	res := types.ValidationResult{Score: e.score, Reasons: e.reasons}
	if len(res.Reasons) == 0 {
		res.Reasons = []string{"no identity signals matched"}
	}

	switch {
	case e.score >= v.cfg.HighThreshold:
		res.Linked = true
		res.Confidence = types.ConfidenceHigh
		if !e.tierA() {
			res.Confidence = types.ConfidenceMedium
			res.Reasons = append(res.Reasons, "confidence capped at medium: no domain or registry ID evidence")
			res.Warnings = append(res.Warnings, reviewWarning)
		}
	case e.score >= v.cfg.MediumThreshold:
		res.Linked = true
		res.Confidence = types.ConfidenceMedium
		res.Warnings = append(res.Warnings, reviewWarning)
	case e.score >= v.cfg.LowThreshold:
		res.Confidence = types.ConfidenceLow
	default:
		res.Confidence = types.ConfidenceNone
	}
	return res
}
