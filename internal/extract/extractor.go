package extract

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/curatorhq/curator/internal/clock"
	"github.com/curatorhq/curator/internal/curator"
	"github.com/curatorhq/curator/internal/headless"
	"github.com/curatorhq/curator/internal/marketplace"
	"github.com/curatorhq/curator/internal/metrics"
	"github.com/curatorhq/curator/internal/progress"
)

// Options carries the optional collaborators of an Extractor. Zero values
// are fine: no renderer means no headless promotion, a nil hub discards
// progress events.
type Options struct {
	// Renderer is the second-chance fetcher used when the static body looks
	// like an unrendered SPA shell.
	Renderer curator.PageFetcher
	// Detector decides when Renderer is worth invoking. Ignored when
	// Renderer is nil.
	Detector *headless.Detector
	Logger   *zap.Logger
	Hub      *progress.Hub
	// Clock stamps progress events; defaults to the system clock.
	Clock curator.Clock
}

// Extractor pulls images and prices out of live product pages. Both probes
// degrade instead of failing: images fall back to a deterministic
// placeholder set, prices to the zero sentinel.
type Extractor struct {
	fetcher  curator.PageFetcher
	renderer curator.PageFetcher
	detector *headless.Detector
	logger   *zap.Logger
	hub      *progress.Hub
	clock    curator.Clock
}

// NewExtractor builds an Extractor over the given page fetcher.
func NewExtractor(fetcher curator.PageFetcher, opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	detector := opts.Detector
	if opts.Renderer != nil && detector == nil {
		detector = headless.NewDetector(0)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Extractor{
		fetcher:  fetcher,
		renderer: opts.Renderer,
		detector: detector,
		logger:   logger,
		hub:      opts.Hub,
		clock:    clk,
	}
}

// Images fetches the product page and probes the marketplace selector list.
// The boolean reports degradation: true means the returned set is the
// placeholder fallback, not scraped content.
func (e *Extractor) Images(ctx context.Context, rawURL string) ([]string, bool) {
	m := marketplace.Detect(rawURL)

	doc, dur, err := e.document(ctx, rawURL, progress.FieldImages, m)
	if err == nil {
		if images := imagesFromDocument(doc, m); len(images) > 0 {
			e.emit(progress.Event{
				Stage:       progress.StageFetchDone,
				Field:       progress.FieldImages,
				Marketplace: string(m),
				URL:         rawURL,
				Dur:         dur,
			})
			return images, false
		}
		err = errors.New("no image selectors matched")
	}

	e.degrade(progress.FieldImages, m, rawURL, err)
	return PlaceholderImages(m, placeholderSeed(rawURL)), true
}

// Price fetches the product page and returns the first positive price the
// selector lists surface. The boolean reports degradation; a degraded price
// is always 0.
func (e *Extractor) Price(ctx context.Context, rawURL string) (float64, bool) {
	m := marketplace.Detect(rawURL)

	doc, dur, err := e.document(ctx, rawURL, progress.FieldPrice, m)
	if err == nil {
		if price := priceFromDocument(doc, m); price > 0 {
			e.emit(progress.Event{
				Stage:       progress.StageFetchDone,
				Field:       progress.FieldPrice,
				Marketplace: string(m),
				URL:         rawURL,
				Dur:         dur,
			})
			return price, false
		}
		err = errors.New("no price selectors matched")
	}

	e.degrade(progress.FieldPrice, m, rawURL, err)
	return 0, true
}

// document fetches and parses the page, promoting SPA shells to the
// headless renderer when one is configured. A renderer failure falls back to
// the static body rather than erroring.
func (e *Extractor) document(ctx context.Context, rawURL, field string, m curator.Marketplace) (*goquery.Document, time.Duration, error) {
	e.emit(progress.Event{
		Stage:       progress.StageFetchStart,
		Field:       field,
		Marketplace: string(m),
		URL:         rawURL,
	})

	start := e.clock.Now()
	body, err := e.fetcher.FetchPage(ctx, rawURL)
	dur := e.clock.Now().Sub(start)
	if err != nil {
		return nil, dur, err
	}

	if e.renderer != nil && e.detector.ShouldPromote(body) {
		metrics.IncHeadlessPromotion()
		e.logger.Debug("promoting fetch to headless renderer",
			zap.String("url", rawURL), zap.String("field", field))
		rendered, rerr := e.renderer.FetchPage(ctx, rawURL)
		if rerr != nil {
			e.logger.Warn("headless render failed, using static body",
				zap.String("url", rawURL), zap.Error(rerr))
		} else {
			body = rendered
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, dur, err
	}
	return doc, dur, nil
}

func (e *Extractor) degrade(field string, m curator.Marketplace, rawURL string, err error) {
	note := ""
	if err != nil {
		note = err.Error()
	}
	e.logger.Info("extraction degraded",
		zap.String("field", field),
		zap.String("marketplace", string(m)),
		zap.String("url", rawURL),
		zap.Error(err),
	)
	e.emit(progress.Event{
		Stage:       progress.StageDegraded,
		Field:       field,
		Marketplace: string(m),
		URL:         rawURL,
		Note:        note,
	})
}

func (e *Extractor) emit(evt progress.Event) {
	evt.TS = e.clock.Now()
	e.hub.Emit(evt)
}
