// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sermon-subscription-billing/internal/config"
	"sermon-subscription-billing/internal/infra/adapters/provider"
	pg "sermon-subscription-billing/internal/infra/db/postgres"
	httpapi "sermon-subscription-billing/internal/infra/http"
	"sermon-subscription-billing/internal/infra/logging"
	"sermon-subscription-billing/internal/infra/metrics"
	red "sermon-subscription-billing/internal/infra/redis"
	"sermon-subscription-billing/internal/infra/sched"
	"sermon-subscription-billing/internal/infra/web"
	"sermon-subscription-billing/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no redaction)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	dedup := red.NewDuplicateMarker(redisClient, cfg.Redis.DedupTTL)

	// ---- Repositories ----
	eventRepo := pg.NewWebhookEventRepo(pool)
	accountRepo := pg.NewAccountRepo(pool)
	planRepo := pg.NewPlanRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Providers ----
	registry := provider.NewRegistry(
		provider.NewHotmartNormalizer(),
		provider.NewKirvanoNormalizer(),
	)

	// ---- Use cases ----
	accountUC := usecase.NewAccountUseCase(accountRepo, txManager, logger)
	engine := usecase.NewReconcileUseCase(eventRepo, subRepo, planRepo, accountUC, registry, txManager, dedup, cfg.Database.OpTimeout, logger)
	eventUC := usecase.NewEventUseCase(eventRepo, logger)
	statsUC := usecase.NewStatsUseCase(accountRepo, subRepo, eventRepo, logger)

	// ---- Webhook listener ----
	webhookSrv := httpapi.NewServer(engine, rateLimiter, cfg, logger)
	go func() {
		if err := webhookSrv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("webhook server stopped")
		}
	}()

	// ---- Ops server ----
	opsSrv := web.NewServer(eventUC, statsUC, cfg.Ops.APIKey, cfg.Ops.Port, logger)
	go func() {
		if err := opsSrv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("ops server stopped")
		}
	}()

	// ---- Retry worker ----
	worker := sched.NewRetryWorker(engine, eventRepo, cfg.Retry.Interval, cfg.Retry.StaleAfter, logger)
	go worker.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	_ = webhookSrv.Shutdown(context.Background())
	_ = opsSrv.Shutdown(context.Background())
}
