package extract

import (
	"strings"

	"github.com/curatorhq/curator/internal/curator"
)

// imageRule describes how product images are probed for one marketplace:
// an ordered selector list, an acceptance filter over candidate URLs, and
// an optional rewrite (e.g. eBay thumbnails to full resolution).
type imageRule struct {
	selectors []string
	// ogFirst probes the Open Graph image meta tag before any selector.
	ogFirst bool
	accept  func(src string) bool
	rewrite func(src string) string
}

func containsAny(src string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(src, sub) {
			return true
		}
	}
	return false
}

func isHTTP(src string) bool {
	return strings.HasPrefix(src, "http")
}

var imageRules = map[curator.Marketplace]imageRule{
	curator.MarketplaceEtsy: {
		selectors: []string{
			`img[data-src*="il_794xN"]`,
			`img[src*="il_794xN"]`,
			`.carousel-image img`,
			`.listing-page-image img`,
			`img[alt*="listing"]`,
		},
		accept: func(src string) bool { return strings.Contains(src, "etsystatic.com") },
	},
	curator.MarketplaceAmazon: {
		selectors: []string{
			`#landingImage`,
			`#imgBlkFront`,
			`.a-dynamic-image`,
			`img[data-src*="images/I/"]`,
			`img[src*="images/I/"]`,
			`.image.item img`,
			`#altImages img`,
		},
		accept: func(src string) bool { return strings.Contains(src, "images/I/") },
	},
	curator.MarketplaceEbay: {
		selectors: []string{
			`#icImg`,
			`#mainImgHldr img`,
			`.ux-image-carousel-item img`,
			`.ux-image-filmstrip-carousel-item img`,
			`img[src*="ebayimg.com"]`,
			`.img img`,
			`#PicturePanel img`,
		},
		accept:  func(src string) bool { return strings.Contains(src, "ebayimg.com") },
		rewrite: ebayHighRes,
	},
	curator.MarketplaceShopify: {
		selectors: []string{
			`.product__media img`,
			`.product-single__photo img`,
			`.product-photo-container img`,
			`img[src*="cdn.shopify.com"]`,
			`.product-image-main img`,
			`.featured-image img`,
		},
		accept: func(src string) bool { return strings.Contains(src, "shopify.com") },
	},
	curator.MarketplaceAliExpress: {
		selectors: []string{
			`.images-view-item img`,
			`.product-image img`,
			`img[src*="alicdn.com"]`,
			`.image-view img`,
			`.main-image img`,
		},
		accept: func(src string) bool { return strings.Contains(src, "alicdn.com") },
	},
	curator.MarketplaceNoon: {
		ogFirst: true,
		selectors: []string{
			`.swiper-slide img`,
			`.product-image img`,
			`img[src*="noon.com"]`,
			`img[src*="nooncdn.com"]`,
			`.image-gallery img`,
			`.product-gallery img`,
			`img[alt*="product"]`,
			`img[class*="product"]`,
		},
		accept: func(src string) bool {
			return containsAny(src, "noon.com", "nooncdn.com") || isHTTP(src)
		},
	},
	curator.MarketplaceSalla: {
		selectors: []string{
			`.product-gallery img`,
			`.product-images img`,
			`.gallery-item img`,
			`.product-image img`,
			`[data-src*="salla"]`,
			`img[src*="salla"]`,
			`.swiper-slide img`,
			`.product-slider img`,
		},
		accept: func(src string) bool { return strings.Contains(src, "salla") || isHTTP(src) },
	},
	curator.MarketplaceZid: {
		selectors: []string{
			`.product-gallery img`,
			`.product-images img`,
			`.gallery-item img`,
			`.product-image img`,
			`[data-src*="zid"]`,
			`img[src*="zid"]`,
			`.swiper-slide img`,
			`.product-slider img`,
			`.product-photos img`,
		},
		accept: func(src string) bool { return strings.Contains(src, "zid") || isHTTP(src) },
	},
}

// genericImageRule is the fallback for unknown marketplaces: og:image first,
// then anything that smells like a product photo.
var genericImageRule = imageRule{
	ogFirst: true,
	selectors: []string{
		`.product-image img`,
		`.product-photo img`,
		`.main-image img`,
		`.featured-image img`,
		`img[alt*="product"]`,
		`img[alt*="Product"]`,
		`img[class*="product"]`,
		`img[id*="product"]`,
	},
	accept: isHTTP,
}

// priceSelectors lists, per marketplace, the selectors probed in order until
// one yields a positive numeric value. Every list is followed by the generic
// fallback list when it comes up empty.
var priceSelectors = map[curator.Marketplace][]string{
	curator.MarketplaceEtsy: {
		`.currency-value`,
		`.notranslate`,
		`[data-test-id="price"]`,
	},
	curator.MarketplaceEbay: {
		`.notranslate`,
		`.u-flL.condText`,
		`.ux-textspans.notranslate`,
		`[data-testid="x-price-primary"] .notranslate`,
		`.display-price .notranslate`,
	},
	curator.MarketplaceAmazon: {
		`.a-price-whole`,
		`.a-offscreen`,
		`#priceblock_dealprice`,
		`#priceblock_ourprice`,
		`.a-price-range .a-offscreen`,
	},
	curator.MarketplaceSalla: {
		`.product-price`,
		`.price`,
		`.s-product-card-price`,
		`[data-price]`,
		`.product-details .price`,
		`.product-info .price`,
	},
	curator.MarketplaceZid: {
		`.product-price`,
		`.price`,
		`.product-details .price`,
		`[data-price]`,
		`.product-info .price`,
		`.price-current`,
	},
	curator.MarketplaceNoon: {
		`.priceNow`,
		`.price`,
		`.product-price`,
		`[data-qa="pdp-price"]`,
		`.productPrice`,
		`.price-current`,
	},
}

// genericPriceSelectors end every probe: any element whose class or id
// mentions a price-ish word.
var genericPriceSelectors = []string{
	`.price`,
	`.product-price`,
	`.cost`,
	`.amount`,
	`[class*="price"]`,
	`[id*="price"]`,
	`.currency`,
	`.money`,
	`.value`,
}

// ebayHighRes upgrades eBay thumbnail URLs (s-l64, s-l300, ...) to the
// 1600px rendition.
func ebayHighRes(src string) string {
	return ebayThumbPattern.ReplaceAllString(src, "s-l1600")
}
