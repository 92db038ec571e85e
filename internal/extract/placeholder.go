package extract

import (
	"fmt"
	"hash/fnv"

	"github.com/curatorhq/curator/internal/curator"
)

// placeholderBase is the stock-photo service used for degraded image sets.
const placeholderBase = "https://source.unsplash.com/400x300"

// placeholderCategories seed the stock-photo query per marketplace.
var placeholderCategories = map[curator.Marketplace]string{
	curator.MarketplaceEtsy:  "handmade,craft,art",
	curator.MarketplaceEbay:  "vintage,collectible,antique",
	curator.MarketplaceSalla: "fashion,accessories,lifestyle",
	curator.MarketplaceZid:   "business,commerce,retail",
}

const placeholderCategoryDefault = "product,item,goods"

// PlaceholderImages builds the degraded five-image set for a marketplace.
// The seed keeps consecutive URLs distinct while staying deterministic for a
// given input.
func PlaceholderImages(m curator.Marketplace, seed int) []string {
	category, ok := placeholderCategories[m]
	if !ok {
		category = placeholderCategoryDefault
	}
	images := make([]string, 0, curator.MaxImages)
	for i := range curator.MaxImages {
		images = append(images, fmt.Sprintf("%s/?%s&sig=%d", placeholderBase, category, seed+i))
	}
	return images
}

// placeholderSeed derives a stable pseudo-random seed from the URL so the
// same product always degrades to the same placeholder set.
func placeholderSeed(rawURL string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(rawURL))
	return int(h.Sum32() % 1000)
}
