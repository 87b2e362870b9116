package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smallhorseman/SEM37/analyzer"
	"github.com/smallhorseman/SEM37/auth"
	"github.com/smallhorseman/SEM37/config"
	"github.com/smallhorseman/SEM37/logging"
	"github.com/smallhorseman/SEM37/middleware"
	"github.com/smallhorseman/SEM37/server"
	"github.com/smallhorseman/SEM37/shell"
	"github.com/smallhorseman/SEM37/stats"
	"github.com/smallhorseman/SEM37/tool"
	"github.com/smallhorseman/SEM37/view"
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = 24 * time.Hour
	maxRateClients  = 10000
)

var (
	configPath string
	addr       string
	devMode    bool
)

var rootCmd = &cobra.Command{
	Use:           "sem37",
	Short:         "Serve the Studio 37 SEO toolkit",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if addr != "" {
			cfg.Server.Addr = addr
		}
		if cmd.Flags().Changed("dev") {
			cfg.DevMode = devMode
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config and PORT)")
	rootCmd.Flags().BoolVar(&devMode, "dev", false, "Report per-tool counters on /api/statistics")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(cfg.Server.GinMode)

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics := analyzer.NewMetrics()
	backend := analyzer.New(cfg.Backend.BaseURL, cfg.Backend.Timeout,
		analyzer.WithMetrics(metrics), analyzer.WithLogger(logger))

	var (
		store      auth.TokenStore
		authClient *analyzer.Client
	)
	if cfg.Auth.Enabled {
		store, err = auth.OpenStore(cfg.Auth)
		if err != nil {
			return fmt.Errorf("open token store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close token store", zap.Error(err))
			}
		}()
		authClient = analyzer.New(cfg.Auth.BaseURL, cfg.Auth.Timeout,
			analyzer.WithMetrics(metrics), analyzer.WithLogger(logger))
	}

	storage, err := stats.NewStorage(cfg.Stats.DataDir, logger)
	if err != nil {
		return fmt.Errorf("open statistics: %w", err)
	}
	defer func() {
		if err := storage.Shutdown(); err != nil {
			logger.Error("failed to save statistics", zap.Error(err))
		}
	}()
	storage.Cleanup(cfg.Stats.RetainMonths)

	registry := shell.NewRegistry(cfg.Server.MaxWorkspaces, cfg.Server.WorkspaceTTL, shell.NewFactory(shell.Deps{
		Backend:     backend,
		AuthClient:  authClient,
		Store:       store,
		AuthEnabled: cfg.Auth.Enabled,
		Options: tool.Options{
			Timeout:  cfg.Backend.Timeout,
			Observer: tool.Observers{storage, metrics.Tools()},
		},
		Logger: logger,
	}), logger)
	defer registry.Close()

	metrics.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sem37_workspaces",
		Help: "Number of live browser workspaces.",
	}, func() float64 { return float64(registry.Len()) }))

	theme, err := view.ParseTheme(cfg.UI.Theme)
	if err != nil {
		return err
	}
	renderer, err := view.NewRenderer(theme)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	limiter, err := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, maxRateClients)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Workspaces:    registry,
		Renderer:      renderer,
		Stats:         storage,
		Limiter:       limiter,
		Gatherer:      metrics.Registry,
		Logger:        logger,
		AuthEnabled:   cfg.Auth.Enabled,
		DevMode:       cfg.DevMode,
		SecureCookies: cfg.Server.SecureCookies,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Addr),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.Bool("auth", cfg.Auth.Enabled),
			zap.String("theme", renderer.Theme().Name))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				storage.Cleanup(cfg.Stats.RetainMonths)
			}
		}
	})
	return g.Wait()
}
