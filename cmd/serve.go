package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/curatorhq/curator/internal/api"
	"github.com/curatorhq/curator/internal/archive"
	"github.com/curatorhq/curator/internal/clock"
	"github.com/curatorhq/curator/internal/config"
	"github.com/curatorhq/curator/internal/curator"
	"github.com/curatorhq/curator/internal/extract"
	"github.com/curatorhq/curator/internal/headless"
	"github.com/curatorhq/curator/internal/id"
	"github.com/curatorhq/curator/internal/logging"
	"github.com/curatorhq/curator/internal/metrics"
	"github.com/curatorhq/curator/internal/normalize"
	"github.com/curatorhq/curator/internal/persistence"
	"github.com/curatorhq/curator/internal/progress"
	"github.com/curatorhq/curator/internal/proxy"
	"github.com/curatorhq/curator/internal/storage/local"
	"github.com/curatorhq/curator/internal/storage/memory"
	"github.com/curatorhq/curator/internal/storage/postgres"
	"github.com/curatorhq/curator/internal/workflow"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the curation HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	zap.ReplaceGlobals(logger)

	metrics.Init()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := progress.NewHub(logger.Named("progress"),
		progress.NewLogSink(logger.Named("extract")),
		progress.NewMetricsSink())

	fetcher := proxy.NewClient(proxy.Config{
		BaseURL:   cfg.Proxy.BaseURL,
		UserAgent: cfg.Proxy.UserAgent,
		Timeout:   cfg.ProxyTimeout(),
	}, logger.Named("proxy"))

	opts := extract.Options{Logger: logger.Named("extract"), Hub: hub, Clock: clock.New()}
	var renderer *headless.Renderer
	if cfg.Headless.Enabled {
		renderer, err = headless.NewRenderer(headless.Config{
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

	idGen := id.NewGenerator()
	products, seasons, remote, closeStores, err := buildStores(ctx, cfg, idGen, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	flow := workflow.New(products, seasons, logger.Named("workflow"))
	if err := flow.Init(ctx); err != nil {
		return fmt.Errorf("init workflow: %w", err)
	}

	var archiver api.ImageArchiver
	if remote != nil {
		// the backend downloads and stores the images itself
		archiver = remote
	} else {
		blobs, err := local.New(local.Config{BaseDir: cfg.Archive.BaseDir})
		if err != nil {
			return fmt.Errorf("init archive storage: %w", err)
		}
		archiver = archive.NewArchiver(blobs, idGen, nil, logger.Named("archive"))
	}

	apiServer := api.NewServer(flow, builder, archiver, cfg, logger.Named("api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if err := hub.Close(shutdownCtx); err != nil {
		logger.Warn("progress hub close error", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}

// buildStores picks the persistence backend from config. The remote client
// is non-nil only when a backend session is open; the returned close
// function is always safe to call.
func buildStores(
	ctx context.Context,
	cfg config.Config,
	idGen curator.IDGenerator,
	logger *zap.Logger,
) (curator.ProductStore, curator.SeasonStore, *persistence.Client, func(), error) {
	switch cfg.Persistence.Mode {
	case config.PersistencePostgres:
		dbCfg := postgres.Config{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		}
		products, err := postgres.NewProductStore(ctx, dbCfg, idGen)
		if err != nil {
			return nil, nil, nil, func() {}, fmt.Errorf("init product store: %w", err)
		}
		seasons, err := postgres.NewSeasonStore(ctx, dbCfg)
		if err != nil {
			products.Close()
			return nil, nil, nil, func() {}, fmt.Errorf("init season store: %w", err)
		}
		return products, seasons, nil, func() {
			products.Close()
			seasons.Close()
		}, nil

	case config.PersistenceRemote:
		client, err := persistence.NewClient(persistence.Config{
			BaseURL: cfg.Persistence.BaseURL,
			Timeout: cfg.PersistenceTimeout(),
		}, logger.Named("persistence"))
		if err != nil {
			return nil, nil, nil, func() {}, fmt.Errorf("init persistence client: %w", err)
		}

		if cfg.Persistence.Username != "" {
			user, err := client.Login(ctx, cfg.Persistence.Username, cfg.Persistence.Password)
			if err != nil {
				return nil, nil, nil, func() {}, fmt.Errorf("backend login: %w", err)
			}
			logger.Info("backend session opened", zap.String("username", user.Username))
			closeSession := func() {
				if err := client.Logout(context.Background()); err != nil {
					logger.Warn("backend logout failed", zap.Error(err))
				}
			}
			return client, client, client, closeSession, nil
		}

		// no credentials configured; an anonymous session means guest mode
		user, err := client.CurrentUser(ctx)
		if err != nil {
			return nil, nil, nil, func() {}, fmt.Errorf("probe backend session: %w", err)
		}
		if user == nil {
			logger.Info("no backend session, falling back to in-memory stores (guest mode)")
			return memory.NewProductStore(idGen), memory.NewSeasonStore(), nil, func() {}, nil
		}
		logger.Info("reusing backend session", zap.String("username", user.Username))
		return client, client, client, func() {}, nil

	default:
		logger.Info("using in-memory stores (guest mode)")
		return memory.NewProductStore(idGen), memory.NewSeasonStore(), nil, func() {}, nil
	}
}
