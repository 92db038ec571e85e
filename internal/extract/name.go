// Package extract derives product fields (name, images, price) from
// marketplace URLs and pages. Extraction never fails hard: every path
// degrades to a usable value.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/curatorhq/curator/internal/curator"
	"github.com/curatorhq/curator/internal/marketplace"
)

// UnknownName is returned when the URL cannot be parsed at all.
const UnknownName = "unknown product"

var (
	etsyListingPattern = regexp.MustCompile(`/listing/\d+/([^?/]+)`)
	ebayItemPattern    = regexp.MustCompile(`/itm/([^?/]+)`)
	sallaProductPattern = regexp.MustCompile(`/product/([^?/]+)`)
	zidProductPattern   = regexp.MustCompile(`/products/([^?/]+)`)
)

// Name derives a product name from the URL alone; it performs no network
// I/O. Known marketplaces get a path-shape match, everything else falls back
// to the last meaningful path segment, then to a domain placeholder.
func Name(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return UnknownName
	}

	var slug string
	switch marketplace.Detect(rawURL) {
	case curator.MarketplaceEtsy:
		slug = firstGroup(etsyListingPattern, rawURL)
	case curator.MarketplaceEbay:
		slug = firstGroup(ebayItemPattern, rawURL)
	case curator.MarketplaceSalla:
		slug = firstGroup(sallaProductPattern, rawURL)
		if slug == "" {
			slug = lastPathSegment(u)
		}
	case curator.MarketplaceZid:
		slug = firstGroup(zidProductPattern, rawURL)
		if slug == "" {
			slug = lastPathSegment(u)
		}
	}
	if name := deslug(slug); name != "" {
		return name
	}

	if last := lastPathSegment(u); len(last) > 3 {
		if name := deslug(last); name != "" {
			return name
		}
	}

	host, err := curator.Hostname(rawURL)
	if err != nil {
		return UnknownName
	}
	return "Product from " + host
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func lastPathSegment(u *url.URL) string {
	parts := strings.Split(u.Path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

// deslug percent-decodes a path slug and turns separators into spaces.
func deslug(slug string) string {
	if slug == "" {
		return ""
	}
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}
	slug = strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return strings.Join(strings.Fields(slug), " ")
}
