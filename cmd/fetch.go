package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/curatorhq/curator/internal/clock"
	"github.com/curatorhq/curator/internal/config"
	"github.com/curatorhq/curator/internal/curator"
	"github.com/curatorhq/curator/internal/extract"
	"github.com/curatorhq/curator/internal/headless"
	"github.com/curatorhq/curator/internal/logging"
	"github.com/curatorhq/curator/internal/normalize"
	"github.com/curatorhq/curator/internal/progress"
	"github.com/curatorhq/curator/internal/proxy"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <url>",
		Short: "Build a product draft from a listing URL and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), args[0])
		},
	}
}

type fetchOutput struct {
	Draft          curator.Draft `json:"draft"`
	ImagesDegraded bool          `json:"images_degraded"`
	PriceDegraded  bool          `json:"price_degraded"`
}

func runFetch(parent context.Context, rawURL string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := progress.NewHub(logger.Named("progress"), progress.NewLogSink(logger.Named("extract")))
	defer hub.Close(context.Background()) //nolint:errcheck // exiting anyway

	fetcher := proxy.NewClient(proxy.Config{
		BaseURL:   cfg.Proxy.BaseURL,
		UserAgent: cfg.Proxy.UserAgent,
		Timeout:   cfg.ProxyTimeout(),
	}, logger.Named("proxy"))

	opts := extract.Options{Logger: logger.Named("extract"), Hub: hub, Clock: clock.New()}
	if cfg.Headless.Enabled {
		renderer, err := headless.NewRenderer(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Proxy.UserAgent,
			NavigationTimeout: cfg.NavTimeout(),
		})
		if err != nil {
			logger.Warn("headless renderer init failed", zap.Error(err))
		} else {
			opts.Renderer = renderer
			opts.Detector = headless.NewDetector(cfg.Headless.BodyThreshold)
			defer renderer.Close()
		}
	}

	builder := normalize.NewBuilder(
		extract.NewExtractor(fetcher, opts),
		logger.Named("normalize"),
		cfg.BuildTimeout())

	draft, deg, err := builder.BuildDraft(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("build draft: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(fetchOutput{
		Draft:          draft,
		ImagesDegraded: deg.Images,
		PriceDegraded:  deg.Price,
	})
}
