package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameMarketplacePatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "etsy listing slug",
			url:  "https://www.etsy.com/listing/123456789/handmade-wood-box",
			want: "handmade wood box",
		},
		{
			name: "etsy slug ignores query",
			url:  "https://www.etsy.com/listing/555/ceramic-vase?ref=search",
			want: "ceramic vase",
		},
		{
			name: "ebay item slug",
			url:  "https://www.ebay.com/itm/vintage-pocket-watch",
			want: "vintage pocket watch",
		},
		{
			name: "salla product slug",
			url:  "https://example.salla.sa/product/blue-mug",
			want: "blue mug",
		},
		{
			name: "salla falls back to last segment",
			url:  "https://example.salla.sa/blue_ceramic_mug",
			want: "blue ceramic mug",
		},
		{
			name: "zid products slug",
			url:  "https://store.zid.sa/products/leather-bag",
			want: "leather bag",
		},
		{
			name: "percent-decoded slug",
			url:  "https://www.etsy.com/listing/9/hand%20carved-spoon",
			want: "hand carved spoon",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Name(tc.url))
		})
	}
}

func TestNameFallbacks(t *testing.T) {
	t.Parallel()

	// Last path segment longer than three characters.
	require.Equal(t, "garden gnome", Name("https://shop.example.org/category/garden-gnome"))

	// Short last segment degrades to the domain placeholder.
	require.Equal(t, "Product from shop.example.org", Name("https://shop.example.org/ab"))

	// No path at all.
	require.Equal(t, "Product from shop.example.org", Name("https://www.shop.example.org/"))
}

func TestNameNeverEmpty(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", ":::not-a-url", "https://", "relative/path"} {
		require.Equal(t, UnknownName, Name(raw), "url %q", raw)
	}
}
