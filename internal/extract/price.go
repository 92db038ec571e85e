package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/curatorhq/curator/internal/curator"
)

var priceTokenPattern = regexp.MustCompile(`[\d,]+\.?\d*`)

// ParsePrice extracts the first numeric token from free-form price text and
// returns it as a non-negative number. Anything that does not parse to a
// positive value yields 0, the "unknown" sentinel.
func ParsePrice(text string) float64 {
	token := priceTokenPattern.FindString(text)
	if token == "" {
		return 0
	}
	token = strings.ReplaceAll(token, ",", "")
	price, err := strconv.ParseFloat(token, 64)
	if err != nil || price <= 0 {
		return 0
	}
	return price
}

// priceFromDocument walks the marketplace's selector list, then the generic
// fallback list, returning the first positive price found. A non-parsing or
// non-positive match means "try the next candidate", never an error.
func priceFromDocument(doc *goquery.Document, m curator.Marketplace) float64 {
	selectors := append(append([]string{}, priceSelectors[m]...), genericPriceSelectors...)

	for _, selector := range selectors {
		var price float64
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			price = ParsePrice(strings.TrimSpace(sel.Text()))
			return price == 0
		})
		if price > 0 {
			return price
		}
	}
	return 0
}
