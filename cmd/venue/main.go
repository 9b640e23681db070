package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"venue/internal/app/commands"
	"venue/internal/app/dto"
	inquiriesapp "venue/internal/app/handlers/inquiries"
	menuapp "venue/internal/app/handlers/menu"
	quotesapp "venue/internal/app/handlers/quotes"
	"venue/internal/app/middleware"
	appoutbox "venue/internal/app/outbox"
	"venue/internal/app/queries"
	"venue/internal/app/uow"
	"venue/internal/infra/broker/kafka"
	"venue/internal/infra/catalog"
	"venue/internal/infra/config"
	mongoinfra "venue/internal/infra/db/mongo"
	ginserver "venue/internal/infra/http/gin"
	"venue/internal/infra/obs"
	outboxinfra "venue/internal/infra/outbox"
	"venue/internal/infra/ratelimit"
	"venue/internal/infra/storage/memory"
)

const (
	serviceName = "venue"
	eventSource = "app://venue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("cannot read .env file", "error", err)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		fallback := config.Defaults()
		fallback.Env = getenv("APP_ENV", fallback.Env)
		fallback.HTTPAddr = getenv("HTTP_ADDR", fallback.HTTPAddr)
		cfg = fallback
	}
	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	if cfgErr != nil {
		logger.Warn("using fallback configuration", "error", cfgErr)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger, Metrics: app.metrics}, app.health, app.handlers)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		stop()
		wg.Wait()
		app.close(logger)
		os.Exit(1)
	}
	wg.Wait()
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	health   obs.HealthHandlers
	metrics  *obs.Metrics
	worker   *outboxinfra.Worker
	closers  []func(context.Context) error
	once     *sync.Once
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	app := application{
		health: obs.HealthHandlers{Checks: map[string]obs.ReadyCheck{}, Timeout: 2 * time.Second},
		once:   &sync.Once{},
	}
	fail := func(err error) (application, error) {
		app.close(logger)
		return application{}, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = obs.NewMetrics(registry)

	src, err := catalogSource(cfg)
	if err != nil {
		return fail(err)
	}
	cat, err := catalog.Load(ctx, src, logger)
	if err != nil {
		return fail(err)
	}

	var (
		units   uow.UoWFactory
		idStore middleware.IdempotencyStore
		box     appoutbox.Source
	)
	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongoinfra.New(ctx, cfg.MongoURI, cfg.MongoDB, logger)
		if err != nil {
			return fail(err)
		}
		app.closers = append(app.closers, client.Close)
		app.health.Checks["mongo"] = client.Ping
		if idStore, err = mongoinfra.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL); err != nil {
			return fail(err)
		}
		store, err := outboxinfra.NewStore(ctx, client.DB)
		if err != nil {
			return fail(err)
		}
		box = store
		units = mongoinfra.Factory{
			DB:            client.DB,
			InquiriesRepo: mongoinfra.NewInquiryRepository(client.DB),
			OutboxStore:   store,
		}
	default:
		mbox := memory.NewOutbox()
		box = mbox
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		units = memory.Factory{Inquiries: memory.NewInquiryRepository(), Outbox: mbox}
	}

	var producer outboxinfra.Producer = outboxinfra.LogProducer{Logger: logger}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(ctx, cfg.KafkaBrokers, kafka.NewConfig(serviceName), logger)
		if err != nil {
			return fail(err)
		}
		app.closers = append(app.closers, func(context.Context) error { return p.Close() })
		producer = p
	}
	app.worker = &outboxinfra.Worker{
		Source:      box,
		Producer:    producer,
		Metrics:     app.metrics,
		Logger:      logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		EventSource: eventSource,
		Backoff:     cfg.RetryBackoff,
	}

	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	if cfg.RedisAddr != "" && cfg.InquiryRateLimit > 0 {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
		app.health.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		rl, err := ratelimit.NewRedisLimiter(rdb, serviceName+":ratelimit:", cfg.InquiryRateLimit, cfg.InquiryRateWindow)
		if err != nil {
			return fail(err)
		}
		limiter = rl
	} else {
		logger.Info("inquiry rate limiting disabled")
	}

	pricing := memory.NewPricingEngine(cat.Pricing)
	validator := middleware.NewStructValidator()

	queryBus := queries.NewInMemoryBus()
	queries.Register[quotesapp.CalculateQuoteQuery, dto.QuoteView](queryBus, &quotesapp.CalculateQuoteHandler{
		Pricing: pricing,
		Metrics: app.metrics,
		Logger:  logger,
	})
	queries.Register[quotesapp.PricingCatalogQuery, dto.PricingCatalogView](queryBus, &quotesapp.PricingCatalogHandler{Pricing: pricing})
	queries.Register[quotesapp.StayBoundsQuery, dto.StayBoundsView](queryBus, &quotesapp.StayBoundsHandler{Pricing: pricing})
	queries.Register[menuapp.ListMenuQuery, dto.MenuView](queryBus, &menuapp.ListMenuHandler{Menu: memory.NewMenuCatalog(cat.Menu)})

	commandBus := commands.NewInMemoryBus()
	commands.Register[inquiriesapp.SubmitInquiryCommand, *dto.SubmitInquiryView](commandBus, &inquiriesapp.SubmitInquiryHandler{
		UoWFactory: units,
		Encoder:    appoutbox.JSONEventEncoder{},
	})

	queryBusWithMiddleware := middleware.ChainQueries(queryBus, middleware.QueryValidation(validator))
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(validator),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(units, nil),
	)

	locale := dto.ParseLocale(cfg.DefaultLocale, dto.LocaleRO)
	inquiryHTTP := ginserver.InquiryHandler{
		Commands:      commandBusWithMiddleware,
		DefaultLocale: locale,
		Metrics:       app.metrics,
		Logger:        logger,
	}
	app.handlers = ginserver.Handlers{
		Quotes:         ginserver.QuoteHandler{Queries: queryBusWithMiddleware, DefaultLocale: locale, Logger: logger},
		Menu:           ginserver.MenuHandler{Queries: queryBusWithMiddleware, DefaultLocale: locale, Logger: logger},
		Inquiries:      inquiryHTTP,
		InquiryLimiter: ratelimit.Middleware(limiter, "inquiries", logger, inquiryHTTP.RateLimited),
		Metrics:        app.metrics.Handler(),
	}
	return app, nil
}

func catalogSource(cfg config.Config) (catalog.Source, error) {
	switch cfg.CatalogSource {
	case config.CatalogFile:
		return catalog.FileSource{Path: cfg.CatalogPath}, nil
	case config.CatalogS3:
		src, err := catalog.NewS3Source(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.CatalogObjectKey)
		if err != nil {
			return nil, fmt.Errorf("catalog: s3 source: %w", err)
		}
		return src, nil
	default:
		return catalog.EmbeddedSource{}, nil
	}
}

// close releases connections in reverse order of acquisition. Safe to call twice.
func (a application) close(logger *slog.Logger) {
	if a.once == nil {
		return
	}
	a.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for i := len(a.closers) - 1; i >= 0; i-- {
			if err := a.closers[i](ctx); err != nil {
				logger.Warn("close failed", "error", err)
			}
		}
	})
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
