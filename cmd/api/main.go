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

	"github.com/govind/worker-portal-back/internal/config"
	"github.com/govind/worker-portal-back/internal/events"
	httpserver "github.com/govind/worker-portal-back/internal/http"
	"github.com/govind/worker-portal-back/internal/http/handlers"
	"github.com/govind/worker-portal-back/internal/notify"
	"github.com/govind/worker-portal-back/internal/otp"
	"github.com/govind/worker-portal-back/internal/queue"
	"github.com/govind/worker-portal-back/internal/repository"
	"github.com/govind/worker-portal-back/internal/service"
	"github.com/govind/worker-portal-back/internal/worker"
)

func main() {
	logger := log.New(os.Stdout, "[portal] ", log.LstdFlags|log.LUTC|log.Lmicroseconds)
	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		logger.Printf("failed loading .env files: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, storeCloser := setupStore(ctx, cfg, logger)
	defer storeCloser()

	producer, consumer, queueCloser := setupQueue(ctx, cfg, logger)
	defer queueCloser()

	hub := events.NewHub()
	smsGateway := notify.NewLogSMSGateway(logger)
	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
		From:     cfg.EmailFrom,
	}, logger)

	codes := otp.NewStore(otp.Config{
		TTL:        time.Duration(cfg.OTPTTLSeconds) * time.Second,
		MaxEntries: cfg.OTPMaxPending,
	})

	jobsService := service.NewJobsService(store, logger)
	workersService := service.NewWorkersService(store, producer, logger)
	complaintsService := service.NewComplaintsService(store, logger)
	verificationService := service.NewVerificationService(workersService, codes, smsGateway, logger)

	api := handlers.NewAPI(handlers.Dependencies{
		Jobs:         jobsService,
		Workers:      workersService,
		Complaints:   complaintsService,
		Verification: verificationService,
		Hub:          hub,
	})

	handler := httpserver.NewRouter(httpserver.RouterDependencies{
		API:            api,
		Logger:         logger,
		AuthToken:      cfg.AuthToken,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	if cfg.NotifierEnabled {
		notifier := worker.NewNotifier(consumer, store, smsGateway, mailer, hub, logger)
		go notifier.Start(ctx)
		logger.Printf("notifier enabled and started")
	} else {
		logger.Printf("notifier disabled by configuration")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      0, // SSE connections stay open indefinitely.
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Printf("api listening on :%s", cfg.Port)
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	}
}

func setupStore(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (repository.Store, func()) {
	if cfg.DatabaseURL != "" {
		pgStore, err := repository.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err == nil {
			logger.Printf("postgres store initialized")
			return pgStore, func() { pgStore.Close() }
		}
		logger.Printf("failed to initialize postgres store, fallback to file: %v", err)
	}

	fileStore, err := repository.NewFileStore(cfg.DataDir, logger)
	if err != nil {
		logger.Printf("failed to initialize file store, fallback to memory: %v", err)
		return repository.NewMemoryStore(), func() {}
	}
	logger.Printf("file store initialized dir=%s", cfg.DataDir)
	return fileStore, func() {}
}

func setupQueue(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (queue.Producer, queue.Consumer, func()) {
	var (
		baseProducer queue.Producer
		consumer     queue.Consumer
		baseCloser   = func() {}
	)

	if cfg.RedisAddr == "" {
		logger.Printf("REDIS_ADDR not configured, using local queue fallback")
		local := queue.NewLocalQueue(512, 3, logger)
		baseProducer = local
		consumer = local
	} else {
		streams, err := queue.NewStreamsQueue(ctx, queue.StreamsConfig{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			Stream:      cfg.RedisStream,
			DLQStream:   cfg.RedisDLQ,
			Group:       cfg.RedisGroup,
			Consumer:    cfg.RedisConsumer,
			MaxAttempts: 3,
		})
		if err != nil {
			logger.Printf("failed to initialize redis streams queue, fallback to local: %v", err)
			local := queue.NewLocalQueue(512, 3, logger)
			baseProducer = local
			consumer = local
		} else {
			logger.Printf("redis streams queue initialized")
			baseProducer = streams
			consumer = streams
			baseCloser = func() {
				_ = streams.Close()
			}
		}
	}

	producer := baseProducer
	batchingCloser := func() {}
	if cfg.QueueBatchingEnabled {
		batching := queue.NewBatchingProducer(ctx, baseProducer, queue.BatchingConfig{
			MaxBatchSize:       cfg.QueueBatchSize,
			FlushInterval:      time.Duration(cfg.QueueBatchFlushMS) * time.Millisecond,
			FlushTimeout:       time.Duration(cfg.QueueBatchFlushTimeoutMS) * time.Millisecond,
			QueueCapacity:      cfg.QueueBatchQueueCapacity,
			MaxInFlightBatches: cfg.QueueBatchMaxInFlight,
		})
		producer = batching
		batchingCloser = batching.Close
		logger.Printf(
			"queue batching enabled size=%d flush_ms=%d queue_capacity=%d max_in_flight=%d",
			cfg.QueueBatchSize,
			cfg.QueueBatchFlushMS,
			cfg.QueueBatchQueueCapacity,
			cfg.QueueBatchMaxInFlight,
		)
	}

	return producer, consumer, func() {
		batchingCloser()
		baseCloser()
	}
}
