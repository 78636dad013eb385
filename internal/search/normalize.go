// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// cleanText strips HTML markup (Brave wraps matched terms in <strong>) and
// collapses whitespace.
func cleanText(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// newResult builds a normalized result. It returns false for hits without
// a URL.
func newResult(provider types.ProviderName, link, title, snippet, date string) (types.ProviderResult, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return types.ProviderResult{}, false
	}
	r := types.ProviderResult{
		URL:            link,
		Title:          cleanText(title),
		Snippet:        cleanText(snippet),
		SourceProvider: provider,
	}
	if t, ok := parseDate(date); ok {
		r.PublishedDate = &t
	}
	return r, true
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"02/01/2006",
}

// parseDate accepts the absolute date shapes providers return. Relative
// shapes ("3 days ago") are ignored.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func capResults(results []types.ProviderResult, max int) []types.ProviderResult {
	if max > 0 && len(results) > max {
		return results[:max]
	}
	return results
}
