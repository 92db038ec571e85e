package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curatorhq/curator/internal/curator"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"plain", "49.99", 49.99},
		{"currency prefix", "$ 1,299.50", 1299.50},
		{"currency suffix", "250 SAR", 250},
		{"thousands separators", "12,345", 12345},
		{"embedded in prose", "Now only 19.95 while stocks last", 19.95},
		{"no digits", "Contact us for price", 0},
		{"zero", "0.00", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ParsePrice(tt.text))
		})
	}
}

func TestPriceFromDocumentMarketplaceSelectorWins(t *testing.T) {
	t.Parallel()

	d := doc(t, `<html><body>
		<span class="a-price-whole">89</span>
		<span class="price">999</span>
	</body></html>`)

	require.Equal(t, float64(89), priceFromDocument(d, curator.MarketplaceAmazon))
}

func TestPriceFromDocumentSkipsUnparsableMatches(t *testing.T) {
	t.Parallel()

	d := doc(t, `<html><body>
		<span class="price">See description</span>
		<span class="price">149.00 SAR</span>
	</body></html>`)

	require.Equal(t, float64(149), priceFromDocument(d, curator.MarketplaceSalla))
}

func TestPriceFromDocumentGenericFallback(t *testing.T) {
	t.Parallel()

	d := doc(t, `<html><body>
		<div id="product-price-box">75.50</div>
	</body></html>`)

	require.Equal(t, 75.50, priceFromDocument(d, curator.MarketplaceEtsy))
}

func TestPriceFromDocumentNothingFound(t *testing.T) {
	t.Parallel()

	d := doc(t, `<html><body><p>a page without prices</p></body></html>`)
	require.Zero(t, priceFromDocument(d, curator.MarketplaceGeneric))
}
