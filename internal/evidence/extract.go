// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence pulls profile handles out of validated URLs. Only the
// URL shape is consulted: a profile or seller page yields a handle, while a
// post, product, group, or search page yields nil.
package evidence

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// shape is one accepted profile path for a platform. The first capture
// group is the identifier.
type shape struct {
	re *regexp.Regexp
	// keepCase preserves the identifier's case instead of lowercasing it.
	keepCase bool
}

type platformRules struct {
	hosts    []string
	shapes   []shape
	reserved map[string]bool
	// query extracts the identifier from query parameters on paths that
	// carry it there (facebook profile.php, amazon seller pages).
	query func(u *url.URL) string
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var rules = map[types.Platform]platformRules{
	types.PlatformLinkedIn: {
		hosts: []string{"linkedin.com"},
		shapes: []shape{
			{re: regexp.MustCompile(`^/(?:company|school|showcase)/([^/]+)/?(?:about/?|life/?|people/?|jobs/?)?$`)},
			{re: regexp.MustCompile(`^/in/([^/]+)/?$`)},
		},
	},
	types.PlatformInstagram: {
		hosts:    []string{"instagram.com"},
		shapes:   []shape{{re: regexp.MustCompile(`^/([A-Za-z0-9._]{1,30})/?$`)}},
		reserved: set("p", "reel", "reels", "explore", "stories", "tv", "accounts", "direct", "about", "legal"),
	},
	types.PlatformFacebook: {
		hosts: []string{"facebook.com", "fb.com"},
		shapes: []shape{
			{re: regexp.MustCompile(`^/pages/[^/]+/(\d+)/?$`)},
			{re: regexp.MustCompile(`^/([A-Za-z0-9.\-]{3,})/?(?:about/?)?$`)},
		},
		reserved: set("groups", "events", "watch", "marketplace", "photo.php", "story.php",
			"permalink.php", "sharer", "sharer.php", "share", "login", "hashtag", "reel", "gaming", "profile.php"),
		query: func(u *url.URL) string {
			if strings.TrimSuffix(u.Path, "/") == "/profile.php" {
				return u.Query().Get("id")
			}
			return ""
		},
	},
	types.PlatformX: {
		hosts:  []string{"x.com", "twitter.com"},
		shapes: []shape{{re: regexp.MustCompile(`^/([A-Za-z0-9_]{1,15})/?$`)}},
		reserved: set("home", "search", "explore", "i", "intent", "share", "hashtag",
			"notifications", "messages", "settings", "login", "tos", "privacy"),
	},
	types.PlatformYouTube: {
		hosts: []string{"youtube.com"},
		shapes: []shape{
			{re: regexp.MustCompile(`^/@([A-Za-z0-9._\-]+)/?(?:videos/?|about/?|featured/?)?$`)},
			{re: regexp.MustCompile(`^/(?:c|user)/([^/]+)/?(?:videos/?|about/?|featured/?)?$`)},
			{re: regexp.MustCompile(`^/channel/(UC[A-Za-z0-9_\-]{22})/?$`), keepCase: true},
		},
	},
	types.PlatformTikTok: {
		hosts:  []string{"tiktok.com"},
		shapes: []shape{{re: regexp.MustCompile(`^/@([A-Za-z0-9._]+)/?$`)}},
	},
	types.PlatformMercadoLivre: {
		hosts: []string{"mercadolivre.com.br"},
		shapes: []shape{
			{re: regexp.MustCompile(`^/(?:loja|pagina)/([a-z0-9\-]+)/?$`)},
		},
	},
	types.PlatformShopee: {
		hosts:    []string{"shopee.com.br"},
		shapes:   []shape{{re: regexp.MustCompile(`^/([A-Za-z0-9._]{3,})/?$`)}},
		reserved: set("search", "mall", "product", "cart", "buyer", "user", "daily_discover", "flash_sale"),
	},
	types.PlatformAmazon: {
		hosts:  []string{"amazon.com.br", "amazon.com"},
		shapes: []shape{{re: regexp.MustCompile(`^/stores/([^/]+)/page/[A-Za-z0-9\-]+/?$`)}},
		query: func(u *url.URL) string {
			if strings.Contains(u.Path, "/dp/") || strings.Contains(u.Path, "/gp/product/") {
				return ""
			}
			q := u.Query()
			if id := q.Get("seller"); id != "" {
				return id
			}
			return q.Get("me")
		},
	},
	types.PlatformMagazineLuiza: {
		hosts:  []string{"magazineluiza.com.br"},
		shapes: []shape{{re: regexp.MustCompile(`^/lojista/([a-z0-9\-]+)/?$`)}},
	},
}

// mercadoLivreProfileHost serves seller profiles as perfil.<domain>/<NICK>.
const mercadoLivreProfileHost = "perfil.mercadolivre.com.br"

var (
	mercadoLivreNick = regexp.MustCompile(`^/([A-Za-z0-9._+\-]+)/?$`)
	shopeeProduct    = regexp.MustCompile(`-i\.\d+\.\d+`)
)

// ExtractHandle returns the profile handle in rawURL for platform, or nil
// when the URL is not a profile on that platform.
func ExtractHandle(rawURL string, platform types.Platform) *types.ExtractedHandle {
	r, ok := rules[platform]
	if !ok {
		return nil
	}
	u, host := parse(rawURL)
	if u == nil || !hostIn(host, r.hosts) {
		return nil
	}

	if platform == types.PlatformMercadoLivre && host == mercadoLivreProfileHost {
		if m := mercadoLivreNick.FindStringSubmatch(u.Path); m != nil {
			return handle(platform, strings.ToUpper(m[1]))
		}
		return nil
	}
	// Other Mercado Livre subdomains serve listings and search pages.
	if platform == types.PlatformMercadoLivre && host != "mercadolivre.com.br" {
		return nil
	}
	if platform == types.PlatformShopee && shopeeProduct.MatchString(u.Path) {
		return nil
	}

	if r.query != nil {
		if id := r.query(u); id != "" {
			return handle(platform, id)
		}
	}

	for _, s := range r.shapes {
		m := s.re.FindStringSubmatch(u.Path)
		if m == nil {
			continue
		}
		id, err := url.PathUnescape(m[1])
		if err != nil || id == "" || r.reserved[strings.ToLower(id)] {
			return nil
		}
		if !s.keepCase {
			id = strings.ToLower(id)
		}
		return handle(platform, id)
	}
	return nil
}

// Extract detects the platform from rawURL and extracts its handle.
func Extract(rawURL string) *types.ExtractedHandle {
	p, ok := DetectPlatform(rawURL)
	if !ok {
		return nil
	}
	return ExtractHandle(rawURL, p)
}

// DetectPlatform returns the platform whose hosts serve rawURL.
func DetectPlatform(rawURL string) (types.Platform, bool) {
	_, host := parse(rawURL)
	if host == "" {
		return "", false
	}
	for _, p := range Platforms() {
		if hostIn(host, rules[p].hosts) {
			return p, true
		}
	}
	return "", false
}

// Platforms lists every supported platform in a fixed order.
func Platforms() []types.Platform {
	return []types.Platform{
		types.PlatformLinkedIn, types.PlatformInstagram, types.PlatformFacebook,
		types.PlatformX, types.PlatformYouTube, types.PlatformTikTok,
		types.PlatformMercadoLivre, types.PlatformShopee, types.PlatformAmazon,
		types.PlatformMagazineLuiza,
	}
}

// SiteDomain returns the primary domain used to restrict searches to
// platform.
func SiteDomain(platform types.Platform) string {
	r, ok := rules[platform]
	if !ok || len(r.hosts) == 0 {
		return ""
	}
	return r.hosts[0]
}

func handle(p types.Platform, id string) *types.ExtractedHandle {
	return &types.ExtractedHandle{Platform: p, Identifier: id}
}

func parse(rawURL string) (*url.URL, string) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ""
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, ""
	}
	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "m.", "mobile.", "br.", "pt-br."} {
		host = strings.TrimPrefix(host, prefix)
	}
	return u, host
}

func hostIn(host string, hosts []string) bool {
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
