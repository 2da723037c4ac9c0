package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/cinemax-auth/internal/api/http"
	"github.com/spec-kit/cinemax-auth/internal/api/http/handlers"
	"github.com/spec-kit/cinemax-auth/internal/auth"
	"github.com/spec-kit/cinemax-auth/internal/events"
	"github.com/spec-kit/cinemax-auth/internal/observability"
	"github.com/spec-kit/cinemax-auth/internal/persistence"
	"github.com/spec-kit/cinemax-auth/internal/service"
	"github.com/spec-kit/cinemax-auth/internal/worker"
)

const (
	bodyLimit       = 10 * 1024 * 1024
	shutdownTimeout = 10 * time.Second
)

var seedOnStart bool

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().BoolVar(&seedOnStart, "seed", false, "insert demo accounts into empty stores before serving")
}

func runServer(parent context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.App.IsProduction() && cfg.Auth.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET not set; tokens are signed with the built-in development secret")
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres, logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}

	st, err := openStores(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to open stores", zap.Error(err))
		return err
	}
	defer st.Close()

	if seedOnStart {
		if _, err := service.NewSeedService(st.customers, st.staff, cfg.Auth.BcryptCost, logger).Seed(ctx); err != nil {
			logger.Error("failed to seed demo accounts", zap.Error(err))
			return err
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, redis.Client, cfg.Redis))

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		CustomerRepo: st.customers,
		StaffRepo:    st.staff,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})

	exposeErrors := !cfg.App.IsProduction()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          httptransport.ErrorHandler(logger, exposeErrors),
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:       logger,
		Metrics:      metrics,
		Timeout:      cfg.App.RequestTimeout(),
		CORS:         cfg.CORS,
		ExposeErrors: exposeErrors,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, st.postgres, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Diagnostics:    handlers.NewDiagnosticsHandler(st.diagnostics, logger),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(ctx.Err()))
	case err := <-listenErr:
		if err != nil {
			logger.Error("fiber listen", zap.Error(err))
			return err
		}
		return nil
	}

	return app.ShutdownWithTimeout(shutdownTimeout)
}
