package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/curatorhq/curator/internal/curator"
)

var ebayThumbPattern = regexp.MustCompile(`s-l\d+`)

// imagesFromDocument probes the marketplace's selector list in priority
// order and returns up to MaxImages unique image URLs. An empty result means
// nothing matched; the caller decides how to degrade.
func imagesFromDocument(doc *goquery.Document, m curator.Marketplace) []string {
	rule, ok := imageRules[m]
	if !ok {
		rule = genericImageRule
	}

	images := make([]string, 0, curator.MaxImages)
	seen := make(map[string]bool)

	add := func(src string) {
		if src == "" || seen[src] || len(images) >= curator.MaxImages {
			return
		}
		seen[src] = true
		images = append(images, src)
	}

	if rule.ogFirst {
		if content, exists := doc.Find(`meta[property="og:image"]`).Attr("content"); exists {
			add(content)
		}
	}

	for _, selector := range rule.selectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			for _, src := range candidateSources(sel) {
				if rule.accept == nil || rule.accept(src) {
					if rule.rewrite != nil {
						src = rule.rewrite(src)
					}
					add(src)
				}
			}
		})
		if len(images) >= curator.MaxImages {
			break
		}
	}

	return images
}

// candidateSources collects image URL candidates from an element, preferring
// lazy-load attributes over src. Amazon's data-a-dynamic-image attribute is
// a JSON object keyed by URL.
func candidateSources(sel *goquery.Selection) []string {
	var out []string
	if src, ok := sel.Attr("data-src"); ok && src != "" {
		out = append(out, src)
	}
	if src, ok := sel.Attr("src"); ok && src != "" {
		out = append(out, src)
	}
	if dynamic, ok := sel.Attr("data-a-dynamic-image"); ok && strings.HasPrefix(dynamic, "{") {
		out = append(out, dynamicImageURLs(dynamic)...)
	}
	return out
}

func dynamicImageURLs(raw string) []string {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil
	}
	urls := make([]string, 0, len(parsed))
	for u := range parsed {
		urls = append(urls, u)
	}
	return urls
}
