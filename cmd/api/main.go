package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/alert"
	"github.com/corebank/corebank/internal/config"
	"github.com/corebank/corebank/internal/infra"
	"github.com/corebank/corebank/internal/ledger"
	"github.com/corebank/corebank/internal/logging"
	"github.com/corebank/corebank/internal/metrics"
	"github.com/corebank/corebank/internal/notification"
	"github.com/corebank/corebank/internal/report"
	"github.com/corebank/corebank/internal/routes"
	"github.com/corebank/corebank/internal/server"
	"github.com/corebank/corebank/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	ctx := context.Background()

	var db *pgxpool.Pool
	var backend storage.Store
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pg := storage.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("ensure schema", "error", err)
			os.Exit(1)
		}
		backend = pg
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		backend = storage.NewMemory()
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	} else {
		logger.Warn("REDIS_URL not set, idempotency and rate limiting disabled")
	}

	var notifier notification.Notifier
	if cfg.EmailEnabled {
		notifier = notification.NewSMTPNotifier(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.SMTPFrom,
			Password: cfg.SMTPPassword,
		})
	} else {
		notifier = notification.NewLoggerNotifier(logger)
	}

	m := metrics.New()
	accounts := account.New(ctx, backend, logger)
	m.SetActiveAccounts(len(accounts.List()))

	evaluator := alert.Evaluator{Low: cfg.LowThreshold, Critical: cfg.CriticalThreshold}
	engine := ledger.NewEngine(cfg.MinimumBalance, accounts, backend, evaluator, notifier, m, logger)
	monitor := alert.NewMonitor(accounts, evaluator, notifier, cfg.MonitorInterval, logger)

	if err := monitor.Start(); err != nil {
		logger.Error("start balance monitor", "error", err)
		os.Exit(1)
	}
	defer monitor.Stop()

	reports := report.NewService(accounts, engine)

	srv, err := server.New(routes.Deps{
		Cfg:      cfg,
		DB:       db,
		Cache:    cache,
		Logger:   logger,
		Accounts: accounts,
		Engine:   engine,
		Monitor:  monitor,
		Reports:  reports,
		Metrics:  m,
		Notifier: notifier,
	})
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
