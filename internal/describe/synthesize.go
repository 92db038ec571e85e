// Package describe generates templated marketing copy for a product URL.
package describe

import (
	"strings"

	"github.com/curatorhq/curator/internal/curator"
	"github.com/curatorhq/curator/internal/marketplace"
)

// Product types recognized from URL keywords.
const (
	TypeClothing    = "clothing & fashion"
	TypeElectronics = "electronics & tech"
	TypeHome        = "home & decor"
	TypeBeauty      = "beauty & care"
	TypeJewelry     = "jewelry & accessories"
	TypeBooks       = "books & education"
	TypeSports      = "sports & fitness"
	TypeToys        = "toys & kids"
	TypeMisc        = "miscellaneous"
)

// Product tiers recognized from URL keywords.
const (
	TierLuxury   = "luxury"
	TierBudget   = "budget"
	TierHandmade = "handmade"
	TierVintage  = "vintage"
	TierModern   = "modern"
	TierGeneral  = "general"
)

type keywordRule struct {
	keywords []string
	label    string
}

// Rule order matters: the first keyword hit decides the label.
var typeRules = []keywordRule{
	{[]string{"clothing", "fashion", "shirt", "dress"}, TypeClothing},
	{[]string{"electronics", "phone", "laptop", "tech"}, TypeElectronics},
	{[]string{"home", "furniture", "decor", "kitchen"}, TypeHome},
	{[]string{"beauty", "cosmetic", "skincare", "makeup"}, TypeBeauty},
	{[]string{"jewelry", "watch", "accessory"}, TypeJewelry},
	{[]string{"book", "education", "learning"}, TypeBooks},
	{[]string{"sport", "fitness", "gym"}, TypeSports},
	{[]string{"toy", "game", "kids", "children"}, TypeToys},
}

var tierRules = []keywordRule{
	{[]string{"luxury", "premium", "exclusive"}, TierLuxury},
	{[]string{"budget", "cheap", "affordable"}, TierBudget},
	{[]string{"handmade", "craft", "artisan"}, TierHandmade},
	{[]string{"vintage", "antique", "retro"}, TierVintage},
	{[]string{"new", "latest", "modern"}, TierModern},
}

var baseSentences = map[curator.Marketplace][]string{
	curator.MarketplaceEtsy: {
		"A one-of-a-kind handmade piece, crafted with care from high-quality materials.",
		"Exclusive, elegant design that suits every taste and occasion.",
		"Perfect as a special gift or an artistic touch for home decor.",
		"Traditional handcraft with a modern, inventive twist.",
	},
	curator.MarketplaceEbay: {
		"Competitively priced with quality guaranteed by a trusted seller.",
		"Excellent condition, backed by seller warranty and a flexible return policy.",
		"Safe, fast shipping with step-by-step tracking.",
		"A great opportunity to pick up a distinctive item at exceptional value.",
	},
	curator.MarketplaceSalla: {
		"An exclusive product from a specialized, accredited Salla store.",
		"High quality with store warranty and outstanding after-sales service.",
		"Fast delivery across Saudi Arabia within 24-48 hours.",
		"Dedicated Arabic-language support available around the clock.",
		"Tailored to the Saudi and Gulf market with deep local insight.",
		"Competitive pricing with cash-on-delivery and easy installments.",
	},
	curator.MarketplaceZid: {
		"A high-quality product from the region's leading Zid commerce platform.",
		"Trusted, officially licensed store with a Saudi commercial registration.",
		"Secure, fast shipping with order tracking and full insurance.",
		"Quality guarantee with returns and exchanges within 14 days.",
		"Professional customer service available all week long.",
		"Designed for customers across the Arab region with local standards in mind.",
	},
}

var genericSentences = []string{
	"A high-quality product available online from a trusted source.",
	"Excellent specifications at a fair price with guaranteed quality.",
	"Suitable for personal or commercial use, whatever your needs.",
	"Assured quality and reliable service with support on hand.",
}

var typeNotes = map[string]string{
	TypeClothing:    "A fashion item that calls for clear sizing and photos from multiple angles",
	TypeElectronics: "A tech product that needs precise specifications and a clear warranty",
	TypeHome:        "A household item where quality, design, and practicality sell",
	TypeBeauty:      "A beauty product that should list ingredients and usage instructions",
	TypeJewelry:     "A premium item that demands high-quality photos and material details",
	TypeBooks:       "An educational product where the content and its value carry the listing",
	TypeSports:      "A sports product that needs performance and durability information",
	TypeToys:        "A children's product that must meet strict safety and quality standards",
}

const typeNoteDefault = "A varied product that needs a thorough, detailed description"

var marketAnalysisBlock = []string{
	"Market analysis:",
	"- Growing demand for this product category in the Saudi market",
	"- A fit for local taste and culture with broad marketing potential",
	"- A strong opportunity for online stores and resellers",
	"- Healthy margins achievable with the right marketing strategy",
	"- Appeals to several distinct customer segments",
}

var marketingTipsBlock = []string{
	"Marketing tips:",
	"- Use high-quality photos that show off product detail",
	"- Write a detailed description focused on benefits and features",
	"- Price against a study of market competitors",
	"- Target the right search keywords",
	"- Offer attractive launch discounts to new customers",
}

// ProductType classifies a URL into one of eight product types by keyword
// containment against the lowercased URL.
func ProductType(rawURL string) string {
	return matchKeywords(rawURL, typeRules, TypeMisc)
}

// ProductTier classifies a URL into one of five pricing/style tiers.
func ProductTier(rawURL string) string {
	return matchKeywords(rawURL, tierRules, TierGeneral)
}

func matchKeywords(rawURL string, rules []keywordRule, fallback string) string {
	lower := strings.ToLower(rawURL)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.label
			}
		}
	}
	return fallback
}

// Synthesize composes the full multi-section description for a product URL.
// It is a pure function of the URL string, performs no I/O, and always
// returns non-empty text. Section order is part of the contract: base
// sentences, analysis block, market analysis, marketing tips, separated by
// blank lines.
func Synthesize(rawURL string) string {
	m := marketplace.Detect(rawURL)

	base, ok := baseSentences[m]
	if !ok {
		base = genericSentences
	}

	sections := []string{
		strings.Join(base, " "),
		analysisBlock(rawURL),
		strings.Join(marketAnalysisBlock, "\n"),
		strings.Join(marketingTipsBlock, "\n"),
	}
	return strings.Join(sections, "\n\n")
}

func analysisBlock(rawURL string) string {
	productType := ProductType(rawURL)
	productTier := ProductTier(rawURL)

	host, err := curator.Hostname(rawURL)
	if err != nil {
		host = "unknown"
	}

	note, ok := typeNotes[productType]
	if !ok {
		note = typeNoteDefault
	}

	lines := []string{
		"Product analysis:",
		"- Type: " + productType,
		"- Tier: " + productTier,
		"- Marketplace: " + host,
		"- " + note,
	}
	return strings.Join(lines, "\n")
}
