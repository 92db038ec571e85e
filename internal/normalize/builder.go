// Package normalize assembles complete product drafts from bare URLs.
package normalize

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/curatorhq/curator/internal/curator"
	"github.com/curatorhq/curator/internal/describe"
	"github.com/curatorhq/curator/internal/extract"
	"github.com/curatorhq/curator/internal/marketplace"
)

const defaultBuildTimeout = 30 * time.Second

// Degradation reports which fields of a draft fell back to placeholder
// values instead of scraped content.
type Degradation struct {
	Images bool `json:"images"`
	Price  bool `json:"price"`
}

// Builder turns a product URL into a normalized draft. Name, description,
// and currency derive from the URL alone; images and price are scraped
// concurrently and degrade independently.
type Builder struct {
	extractor *extract.Extractor
	logger    *zap.Logger
	timeout   time.Duration
}

// NewBuilder constructs a Builder. A non-positive timeout picks the default.
func NewBuilder(extractor *extract.Extractor, logger *zap.Logger, timeout time.Duration) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultBuildTimeout
	}
	return &Builder{extractor: extractor, logger: logger, timeout: timeout}
}

// BuildDraft normalizes the URL and fills in every draft field. It errors
// only on an unusable URL; extraction trouble degrades the affected fields
// instead.
func (b *Builder) BuildDraft(ctx context.Context, rawURL string) (curator.Draft, Degradation, error) {
	normalized, err := curator.NormalizeURL(rawURL)
	if err != nil {
		return curator.Draft{}, Degradation{}, fmt.Errorf("normalize url: %w", err)
	}

	name := extract.Name(normalized)
	draft := curator.Draft{
		Name:        name,
		Description: describe.Synthesize(normalized),
		Currency:    marketplace.InferCurrency(normalized),
		URL:         normalized,
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var (
		wg  sync.WaitGroup
		deg Degradation
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		draft.Images, deg.Images = b.extractor.Images(ctx, normalized)
	}()
	go func() {
		defer wg.Done()
		draft.Price, deg.Price = b.extractor.Price(ctx, normalized)
	}()
	wg.Wait()

	b.logger.Debug("draft built",
		zap.String("url", normalized),
		zap.String("name", draft.Name),
		zap.Bool("images_degraded", deg.Images),
		zap.Bool("price_degraded", deg.Price),
	)
	return draft, deg, nil
}
