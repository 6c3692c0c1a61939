// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scouting-backend/internal/config"
	"scouting-backend/internal/domain/ports/adapter"
	"scouting-backend/internal/infra/adapters/gateway"
	"scouting-backend/internal/infra/adapters/notify"
	pg "scouting-backend/internal/infra/db/postgres"
	"scouting-backend/internal/infra/logging"
	"scouting-backend/internal/infra/metrics"
	red "scouting-backend/internal/infra/redis"
	"scouting-backend/internal/infra/sched"
	"scouting-backend/internal/infra/web"
	"scouting-backend/internal/infra/worker"
	"scouting-backend/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	txm := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	invoiceRepo := pg.NewInvoiceRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	auditRepo := pg.NewAuditLogRepo(pool)
	teamRepo := pg.NewTeamRepo(pool)
	playerRepo := pg.NewPlayerRepo(pool)
	matchRepo := pg.NewMatchRepo(pool)
	statsRepo := pg.NewPlayerStatsRepo(pool)

	// ---- Notification delivery ----
	var notifier adapter.NotificationSender = notify.NoopSender{}
	if cfg.Notification.Enabled {
		notifier = notify.NewSMTPSender(cfg.Notification, logger)
	}
	taskPool := worker.NewPool(cfg.Notification.Workers, logger)
	taskPool.Start(ctx)
	defer taskPool.Stop()

	// ---- Payment gateways ----
	var cinetpay, paydunya adapter.PaymentGateway
	if cfg.Payment.CinetPay.SecretKey != "" {
		cinetpay = gateway.NewCinetPayGateway(cfg.Payment.CinetPay.SecretKey)
	}
	if cfg.Payment.PayDunya.SecretKey != "" {
		pd := gateway.NewPayDunyaGateway(cfg.Payment.PayDunya.SecretKey, cfg.Payment.PayDunya.MasterKey)
		if cfg.Payment.PayDunya.BaseURL != "" {
			pd.SetBaseURL(cfg.Payment.PayDunya.BaseURL)
		}
		paydunya = pd
	}

	// ---- Use cases ----
	subUC := usecase.NewSubscriptionUseCase(subRepo, logger)
	webhookUC := usecase.NewWebhookUseCase(paymentRepo, invoiceRepo, userRepo, auditRepo, subUC, txm, taskPool, notifier, logger)
	paymentUC := usecase.NewPaymentUseCase(paymentRepo, invoiceRepo, auditRepo, cfg.HTTP.BackendURL, cfg.HTTP.FrontendURL, logger)
	entUC := usecase.NewEntitlementUseCase(userRepo, subUC, logger)
	auditUC := usecase.NewAuditUseCase(auditRepo, logger)
	catalogUC := usecase.NewCatalogUseCase(teamRepo, playerRepo, matchRepo, statsRepo, logger)
	reconcileUC := usecase.NewReconcileUseCase(paymentRepo, invoiceRepo, userRepo, auditRepo, subUC, txm, logger)

	// ---- Background workers ----
	expiry := sched.NewExpiryWorker(cfg.Scheduler.ExpiryInterval, subUC, logger)
	go func() { _ = expiry.Run(ctx) }()
	reconciler := sched.NewPaymentReconciler(cfg.Scheduler.ReconcileInterval, cfg.Scheduler.ReconcileBatch, reconcileUC, logger)
	go func() { _ = reconciler.Run(ctx) }()

	// ---- HTTP ----
	authMgr := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	srv := web.NewServer(cfg, authMgr, rateLimiter,
		webhookUC, paymentUC, subUC, entUC, auditUC, catalogUC,
		cinetpay, paydunya, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	cancel()
}
