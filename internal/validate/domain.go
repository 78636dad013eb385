// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// NormalizeDomain reduces a host, bare domain, or URL to a lowercase host
// without "www.", port, or path.
func NormalizeDomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSuffix(u.Hostname(), "."), "www.")
}

// HostMatches reports whether host is domain or one of its subdomains.
func HostMatches(host, domain string) bool {
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// hostInList matches host against entries that are either domains
// ("amazon.com.br", matched with subdomains) or bare fragments without a
// dot ("diariooficial", matched anywhere in the host).
func hostInList(host string, list []string) bool {
	for _, entry := range list {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, ".") {
			if strings.Contains(host, entry) {
				return true
			}
			continue
		}
		if HostMatches(host, entry) {
			return true
		}
	}
	return false
}

// RegisteredName returns the label a domain was registered under, without
// its public suffix: "loja.acme-tech.com.br" yields "acme-tech".
func RegisteredName(domain string) string {
	domain = NormalizeDomain(domain)
	if domain == "" {
		return ""
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		etld1 = domain
	}
	suffix, _ := publicsuffix.PublicSuffix(etld1)
	name := strings.TrimSuffix(etld1, "."+suffix)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// parsedURL holds the pieces of a candidate URL the rules inspect.
type parsedURL struct {
	host string
	path string
}

func parseCandidateURL(raw string) parsedURL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return parsedURL{}
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return parsedURL{}
	}
	return parsedURL{
		host: strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."),
		path: strings.ToLower(u.EscapedPath()),
	}
}
