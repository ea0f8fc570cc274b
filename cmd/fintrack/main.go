package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	sessionCache := cache.NewLRUCache[string](cfg.SessionCacheSize, cfg.SessionCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(sessionCache)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	authSvc := services.NewAuthService(repo, logger, cfg.SessionTTL, sessionCache)
	ledgerSvc := services.NewLedgerService(repo, logger)
	goalSvc := services.NewGoalService(repo, logger)
	dashboardSvc := services.NewDashboardService(repo, repo, logger)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SessionTTL:         cfg.SessionTTL,
	}, authSvc, ledgerSvc, goalSvc, dashboardSvc, logger)
	srv.Handler = log.Middleware(logger)(srv.Handler)

	scheduler := cron.New()
	schedLogger := logger.WithComponent(log.ComponentScheduler)
	if _, err := scheduler.AddFunc(cfg.SessionCleanupSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := authSvc.PurgeExpiredSessions(ctx); err != nil {
			schedLogger.ErrorContext(ctx, "Session purge failed", log.FieldError, err)
		}
	}); err != nil {
		logger.Error("Invalid session cleanup spec",
			log.FieldError, err, "spec", cfg.SessionCleanupSpec)
		os.Exit(1)
	}
	scheduler.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)

		cronCtx := scheduler.Stop()
		select {
		case <-cronCtx.Done():
		case <-time.After(10 * time.Second):
			logger.Warn("Scheduler jobs still running at shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
