// Package marketplace maps URLs to marketplace identifiers and currencies.
package marketplace

import (
	"strings"

	"github.com/curatorhq/curator/internal/curator"
)

// Detect sniffs the marketplace behind a URL. Malformed URLs classify as
// generic; callers never see an error.
func Detect(rawURL string) curator.Marketplace {
	host, err := curator.Hostname(rawURL)
	if err != nil {
		return curator.MarketplaceGeneric
	}
	switch {
	case strings.Contains(host, "etsy.com"):
		return curator.MarketplaceEtsy
	case strings.Contains(host, "ebay."):
		return curator.MarketplaceEbay
	case strings.Contains(host, "amazon."):
		return curator.MarketplaceAmazon
	case strings.Contains(host, "salla.sa"), strings.Contains(host, ".salla.me"):
		return curator.MarketplaceSalla
	case strings.Contains(host, "zid.sa"), strings.Contains(host, ".zid.store"):
		return curator.MarketplaceZid
	case strings.Contains(host, "noon.com"), strings.Contains(host, "noon.sa"), strings.Contains(host, "noon.ae"):
		return curator.MarketplaceNoon
	case strings.Contains(host, "aliexpress."):
		return curator.MarketplaceAliExpress
	case strings.Contains(host, "myshopify.com"), strings.Contains(host, "shopify."):
		return curator.MarketplaceShopify
	}
	return curator.MarketplaceGeneric
}

// currencyRule maps host substrings to a currency. Rules are evaluated in
// order and the first match wins; the sequence below is a business rule, not
// an implementation artifact. Saudi domains outrank every later match.
type currencyRule struct {
	substrings []string
	currency   curator.Currency
}

var currencyRules = []currencyRule{
	{[]string{".sa", "salla.", "zid."}, curator.CurrencySAR},
	{[]string{"noon.com"}, curator.CurrencySAR},
	{[]string{".ae"}, curator.CurrencyAED},
	{[]string{".kw"}, curator.CurrencyKWD},
	{[]string{".qa"}, curator.CurrencyQAR},
	{[]string{".bh"}, curator.CurrencyBHD},
	{[]string{".om"}, curator.CurrencyOMR},
	{[]string{".jo"}, curator.CurrencyJOD},
	{[]string{".eg"}, curator.CurrencyEGP},
	{[]string{".uk"}, curator.CurrencyGBP},
	{[]string{".eu", ".de", ".fr", ".it", ".es"}, curator.CurrencyEUR},
	{[]string{"amazon.", "ebay.", "etsy.", ".com", ".us"}, curator.CurrencyUSD},
}

// InferCurrency derives a currency code from the URL's host. It is a pure
// function: the same URL always yields the same code. Malformed URLs and
// unmatched hosts yield the default.
func InferCurrency(rawURL string) curator.Currency {
	host, err := curator.Hostname(rawURL)
	if err != nil {
		return curator.DefaultCurrency
	}
	for _, rule := range currencyRules {
		for _, sub := range rule.substrings {
			if strings.Contains(host, sub) {
				return rule.currency
			}
		}
	}
	return curator.DefaultCurrency
}
