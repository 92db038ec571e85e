package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curatorhq/curator/internal/headless"
)

type fakeFetcher struct {
	body  []byte
	err   error
	calls int
}

func (f *fakeFetcher) FetchPage(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	return f.body, f.err
}

func TestExtractorImagesFromPage(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: []byte(`<html><body>
		<img src="https://i.etsystatic.com/il_794xN.main.jpg">
	</body></html>`)}
	ex := NewExtractor(fetcher, Options{})

	images, degraded := ex.Images(context.Background(), "https://www.etsy.com/listing/123/wood-box")
	require.False(t, degraded)
	require.Equal(t, []string{"https://i.etsystatic.com/il_794xN.main.jpg"}, images)
}

func TestExtractorImagesDegradeOnFetchError(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: errors.New("proxy unavailable")}
	ex := NewExtractor(fetcher, Options{})

	const url = "https://www.etsy.com/listing/123/wood-box"
	images, degraded := ex.Images(context.Background(), url)
	require.True(t, degraded)
	require.Len(t, images, 5)
	require.Contains(t, images[0], "source.unsplash.com")
	require.Contains(t, images[0], "handmade,craft,art")

	// deterministic: same URL degrades to the same set
	again, _ := ex.Images(context.Background(), url)
	require.Equal(t, images, again)
}

func TestExtractorImagesDegradeWhenNothingMatches(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: []byte(`<html><body><p>a big wall of text without any pictures to speak of, long enough to not look like an SPA shell at all</p></body></html>`)}
	ex := NewExtractor(fetcher, Options{})

	images, degraded := ex.Images(context.Background(), "https://www.etsy.com/listing/123/wood-box")
	require.True(t, degraded)
	require.Len(t, images, 5)
}

func TestExtractorPriceFromPage(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: []byte(`<html><body>
		<span class="currency-value">$ 1,299.50</span>
	</body></html>`)}
	ex := NewExtractor(fetcher, Options{})

	price, degraded := ex.Price(context.Background(), "https://www.etsy.com/listing/123/wood-box")
	require.False(t, degraded)
	require.Equal(t, 1299.50, price)
}

func TestExtractorPriceDegradesToZero(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: []byte(`<html><body>
		<span class="price">Contact us</span>
	</body></html>`)}
	ex := NewExtractor(fetcher, Options{})

	price, degraded := ex.Price(context.Background(), "https://shop.example.com/item")
	require.True(t, degraded)
	require.Zero(t, price)
}

func TestExtractorPromotesSPAShellToRenderer(t *testing.T) {
	t.Parallel()

	static := &fakeFetcher{body: []byte(`<html><body><div id="root"></div></body></html>`)}
	rendered := &fakeFetcher{body: []byte(`<html><body>
		<span class="price">59.00</span>
	</body></html>`)}
	ex := NewExtractor(static, Options{
		Renderer: rendered,
		Detector: headless.NewDetector(0),
	})

	price, degraded := ex.Price(context.Background(), "https://shop.example.com/item")
	require.False(t, degraded)
	require.Equal(t, float64(59), price)
	require.Equal(t, 1, rendered.calls)
}

func TestExtractorRendererFailureFallsBackToStaticBody(t *testing.T) {
	t.Parallel()

	static := &fakeFetcher{body: []byte(`<html><body><div id="root"></div>
		<span class="price">25.00</span>
	</body></html>`)}
	broken := &fakeFetcher{err: errors.New("chrome crashed")}
	ex := NewExtractor(static, Options{Renderer: broken})

	price, degraded := ex.Price(context.Background(), "https://shop.example.com/item")
	require.False(t, degraded)
	require.Equal(t, float64(25), price)
}
