package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderflow-backend/config"
	"orderflow-backend/internal/delivery/http/middleware"
	v1 "orderflow-backend/internal/delivery/http/v1"
	"orderflow-backend/internal/infrastructure/cache"
	"orderflow-backend/internal/infrastructure/notify"
	"orderflow-backend/internal/jobs"
	pgrepo "orderflow-backend/internal/repository/postgres"
	"orderflow-backend/internal/usecase"
	"orderflow-backend/pkg/logger"
	"orderflow-backend/pkg/metrics"
	"orderflow-backend/pkg/storage"
	"orderflow-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

const serviceName = "orderflow-api"

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	ctx := context.Background()

	// Initialize Database with pgx
	pgxPool, err := pgrepo.NewPgxPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgxPool.Close()
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize Repositories
	orderRepo := pgrepo.NewOrderRepository(pgxPool)
	productRepo := pgrepo.NewProductRepository(pgxPool)
	shippingRepo := pgrepo.NewShippingRepository(pgxPool)
	statsRepo := pgrepo.NewStatsRepository(pgxPool)
	notificationRepo := pgrepo.NewNotificationRepository(pgxPool)
	txManager := pgrepo.NewTransactionManager(pgxPool)

	// Initialize Cache (In-Memory)
	// Default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	// Notifications: inbox store, log, and the optional webhook behind a queue
	sinks := []notify.Sink{notify.NewStoreSink(notificationRepo), notify.NewLogSink()}
	var webhookQueue *notify.AsyncSink
	if hook := notify.NewWebhookSink(cfg.NotifyWebhookURL, cfg.NotifyWebhookSecret, cfg.NotifyWebhookTimeout); hook != nil {
		webhookQueue = notify.NewAsyncSink(hook, cfg.NotifyWebhookQueueSize, m)
		sinks = append(sinks, webhookQueue)
	}
	notifier := notify.NewFanout(m, sinks...)

	// --- Storage Module (R2) ---
	var reports usecase.ReportStorage
	r2Opts := storage.R2Options{
		AccountID:     cfg.R2AccountID,
		AccessKey:     cfg.R2AccessKeyID,
		SecretKey:     cfg.R2AccessKeySecret,
		BucketName:    cfg.R2BucketName,
		PublicURL:     cfg.R2PublicURL,
		KeyPrefix:     "reports/finance",
		UploadTimeout: cfg.R2UploadTimeout,
	}
	if r2Opts.Enabled() {
		r2Storage, err := storage.NewR2Storage(ctx, r2Opts)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
		}
		reports = r2Storage
	} else {
		log.Warn().Msg("R2 storage not configured, finance export disabled")
	}

	// --- Modules Initialization ---
	shippingUC := usecase.NewShippingUsecase(shippingRepo, txManager, memCache, cfg.CacheCheckoutTTL, m)
	orderUC := usecase.NewOrderUsecase(orderRepo, productRepo, shippingUC, txManager, notifier, m, cfg.MaxOrderItemQuantity).
		WithStatsCache(memCache)
	workflowUC := usecase.NewWorkflowUsecase(orderRepo, productRepo, txManager, notifier, m, cfg.ReturnWindow).
		WithStatsCache(memCache)
	refundUC := usecase.NewRefundUsecase(orderRepo, productRepo, txManager, notifier, m).
		WithStatsCache(memCache)
	statsUC := usecase.NewStatsUsecase(statsRepo, memCache, cfg.CacheStatsTTL, reports)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo)

	if err := shippingUC.EnsureSettings(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap shipping settings")
	}

	// Background jobs
	jobManager := jobs.NewJobManager(
		jobs.NewRefundReminderJob(orderRepo, notifier, m, cfg.RefundReminderSchedule, cfg.RefundReminderAge),
	)
	if err := jobManager.StartAll(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start background jobs")
	}

	// Set up Router
	mux := http.NewServeMux()
	v1.RegisterRoutes(mux, v1.Handlers{
		Shipping:      v1.NewShippingHandler(shippingUC),
		AdminShipping: v1.NewAdminShippingHandler(shippingUC),
		Orders:        v1.NewOrderHandler(orderUC, workflowUC),
		AdminOrders:   v1.NewAdminOrderHandler(orderUC, workflowUC, refundUC),
		AdminStats:    v1.NewAdminStatsHandler(statsUC),
		Notifications: v1.NewNotificationHandler(notificationUC),
		Config:        v1.NewConfigHandler(memCache),
	})

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pgxPool.Ping(pingCtx); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": "unreachable"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "connected"})
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers
	mux.Handle("GET /metrics", m.Handler())

	// Initialize Rate Limiter with lifecycle management
	// cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		ctx,
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
	).WithMetrics(m)

	// Metrics sees the matched pattern, so it wraps the mux directly
	handler := m.Middleware(mux)
	handler = middleware.NewCORSMiddleware(cfg.AllowedOrigin)(handler)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart(serviceName, "v1", cfg.Port)

	// Wait for interrupt signal via channel
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	jobManager.StopAll()
	rateLimiter.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if webhookQueue != nil {
		if err := webhookQueue.Close(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Webhook queue not drained before shutdown")
		}
	}

	logger.ServiceStop(serviceName)
}
