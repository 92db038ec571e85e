// Package proxy fetches product pages through a CORS read-through proxy
// using gocolly.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/curatorhq/curator/internal/metrics"
)

// Config controls the proxy client.
type Config struct {
	// BaseURL is the proxy endpoint; the target URL is passed in the `url`
	// query parameter.
	BaseURL   string
	UserAgent string
	// Timeout bounds each proxy round trip. The proxy itself can hang on a
	// slow origin, so this is always enforced.
	Timeout time.Duration
}

// DefaultBaseURL is the public AllOrigins endpoint.
const DefaultBaseURL = "https://api.allorigins.win/get"

const defaultTimeout = 15 * time.Second

// envelope is the proxy's JSON response shape. The page markup rides in
// Contents; Status mirrors what the origin returned.
type envelope struct {
	Contents string `json:"contents"`
	Status   struct {
		HTTPCode int    `json:"http_code"`
		URL      string `json:"url"`
	} `json:"status"`
}

// Client implements curator.PageFetcher against an AllOrigins-style proxy.
type Client struct {
	cfg           Config
	logger        *zap.Logger
	baseCollector *colly.Collector
}

// NewClient builds a proxy client. Zero-value config fields pick defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &Client{
		cfg:           cfg,
		logger:        logger,
		baseCollector: c,
	}
}

// FetchPage retrieves the target URL through the proxy and returns the raw
// page markup from the proxy envelope.
func (c *Client) FetchPage(ctx context.Context, target string) ([]byte, error) {
	collector := c.baseCollector.Clone()
	if c.cfg.UserAgent != "" {
		collector.UserAgent = c.cfg.UserAgent
	}
	collector.SetRequestTimeout(c.cfg.Timeout)

	var (
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	start := time.Now()
	contents, err := c.run(ctx, collector, c.proxyURL(target), &body, &fetchErr)
	dur := time.Since(start)
	if err != nil {
		metrics.ObserveProxyRequest(metrics.OutcomeDegraded, dur)
		c.logger.Debug("proxy fetch failed",
			zap.String("target", target), zap.Error(err))
		return nil, err
	}
	metrics.ObserveProxyRequest(metrics.OutcomeOK, dur)
	return contents, nil
}

func (c *Client) run(ctx context.Context, collector *colly.Collector, proxyURL string, body *[]byte, fetchErr *error) ([]byte, error) {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(proxyURL)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("proxy fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("proxy visit failed: %w", err)
		}
		if *fetchErr != nil {
			return nil, fmt.Errorf("proxy response failed: %w", *fetchErr)
		}
	}

	var env envelope
	if err := json.Unmarshal(*body, &env); err != nil {
		return nil, fmt.Errorf("decode proxy envelope: %w", err)
	}
	if env.Contents == "" {
		return nil, fmt.Errorf("proxy returned empty contents for origin status %d", env.Status.HTTPCode)
	}
	return []byte(env.Contents), nil
}

// proxyURL appends the encoded target to the proxy base.
func (c *Client) proxyURL(target string) string {
	return c.cfg.BaseURL + "?url=" + url.QueryEscape(target)
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
