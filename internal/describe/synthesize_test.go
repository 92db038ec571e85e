package describe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProductType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://shop.example.com/summer-dress-floral", TypeClothing},
		{"https://shop.example.com/gaming-laptop-stand", TypeElectronics},
		{"https://shop.example.com/kitchen-organizer", TypeHome},
		{"https://shop.example.com/skincare-set", TypeBeauty},
		{"https://shop.example.com/silver-watch-band", TypeJewelry},
		{"https://shop.example.com/notebook-for-learning", TypeBooks},
		{"https://shop.example.com/gym-towel", TypeSports},
		{"https://shop.example.com/wooden-toy-train", TypeToys},
		{"https://shop.example.com/mystery-item", TypeMisc},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, ProductType(tc.url), "url %q", tc.url)
	}
}

func TestProductTier(t *testing.T) {
	t.Parallel()

	require.Equal(t, TierLuxury, ProductTier("https://x.com/premium-pen"))
	require.Equal(t, TierBudget, ProductTier("https://x.com/cheap-pen"))
	require.Equal(t, TierHandmade, ProductTier("https://x.com/artisan-pen"))
	require.Equal(t, TierVintage, ProductTier("https://x.com/retro-pen"))
	require.Equal(t, TierModern, ProductTier("https://x.com/latest-pen"))
	require.Equal(t, TierGeneral, ProductTier("https://x.com/pen"))
}

func TestSynthesizeSectionOrder(t *testing.T) {
	t.Parallel()

	text := Synthesize("https://www.etsy.com/listing/123/handmade-wood-box")
	require.NotEmpty(t, text)

	sections := strings.Split(text, "\n\n")
	require.Len(t, sections, 4)

	require.NotContains(t, sections[0], "\n", "base sentences form one paragraph")
	require.True(t, strings.HasPrefix(sections[1], "Product analysis:"))
	require.True(t, strings.HasPrefix(sections[2], "Market analysis:"))
	require.True(t, strings.HasPrefix(sections[3], "Marketing tips:"))

	require.Contains(t, sections[1], "- Type: "+TypeMisc)
	require.Contains(t, sections[1], "- Tier: "+TierHandmade)
	require.Contains(t, sections[1], "- Marketplace: etsy.com")
}

func TestSynthesizeUnknownMarketplaceFallsBack(t *testing.T) {
	t.Parallel()

	text := Synthesize("https://shop.example.org/some-item")
	require.Contains(t, text, genericSentences[0])
}

func TestSynthesizeNeverEmpty(t *testing.T) {
	t.Parallel()

	for _, url := range []string{"", "::::", "https://", "https://x.y/z"} {
		require.NotEmpty(t, Synthesize(url))
	}
}
