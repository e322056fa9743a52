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
	assistantapp "github.com/troves/backend/internal/application/assistant"
	cartapp "github.com/troves/backend/internal/application/cart"
	catalogapp "github.com/troves/backend/internal/application/catalog"
	contactapp "github.com/troves/backend/internal/application/contact"
	orderapp "github.com/troves/backend/internal/application/order"
	"github.com/troves/backend/internal/infrastructure/ai"
	"github.com/troves/backend/internal/infrastructure/auth"
	"github.com/troves/backend/internal/infrastructure/config"
	"github.com/troves/backend/internal/infrastructure/event"
	"github.com/troves/backend/internal/infrastructure/idempotency"
	"github.com/troves/backend/internal/infrastructure/logger"
	"github.com/troves/backend/internal/infrastructure/persistence"
	"github.com/troves/backend/internal/infrastructure/printing"
	"github.com/troves/backend/internal/infrastructure/ratelimit"
	"github.com/troves/backend/internal/infrastructure/scheduler"
	"github.com/troves/backend/internal/infrastructure/storage"
	"github.com/troves/backend/internal/infrastructure/telemetry"
	"github.com/troves/backend/internal/interfaces/http/handler"
	"github.com/troves/backend/internal/interfaces/http/middleware"
	"github.com/troves/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// imageStore is what the assistant and the catalog both need from object storage
type imageStore interface {
	catalogapp.ObjectStorage
	assistantapp.ImageStore
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, zap.NewNop())
	if err != nil {
		return err
	}
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, logProvider.ZapCore(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Troves & Coves backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		return err
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		return err
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = profiler.Stop()
		for _, shutdown := range []func(context.Context) error{
			tracerProvider.Shutdown, meterProvider.Shutdown, logProvider.Shutdown,
		} {
			if err := shutdown(flushCtx); err != nil {
				log.Warn("Telemetry shutdown failed", zap.Error(err))
			}
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.Open(ctx, &cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		return fmt.Errorf("register db tracing: %w", err)
	}
	log.Info("Database connected successfully")

	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(catalogapp.NewLowStockHandler(log))
	eventBus.Subscribe(orderapp.NewNotificationHandler(log))
	eventBus.Subscribe(contactapp.NewReceivedHandler(log))
	if err := eventBus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer func() { _ = eventBus.Stop(context.Background()) }()

	objects, err := newImageStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	var pdf printing.HTMLConverter
	if cfg.Receipt.PDFEnabled {
		chrome := printing.NewChromePDF(cfg.Receipt.RemoteURL, cfg.Receipt.Timeout, log)
		defer chrome.Close()
		pdf = chrome
	}
	receipts, err := printing.NewReceiptRenderer(cfg.Receipt, pdf, log)
	if err != nil {
		return fmt.Errorf("init receipt renderer: %w", err)
	}

	productService := catalogapp.NewProductService(productRepo, objects, eventBus, log)
	cartService := cartapp.NewService(cartRepo, productRepo, log)
	orderService := orderapp.NewService(persistence.NewGormUnitOfWork(db.DB), orderRepo, receipts, eventBus, log)
	contactService := contactapp.NewService(contactRepo, eventBus, log)

	meter := meterProvider.Meter("github.com/troves/backend")
	assistantOpts := []assistantapp.Option{assistantapp.WithMeter(meter)}
	if images := ai.NewPollinationsImageProvider(cfg.Assistant.Image, log); images != nil {
		assistantOpts = append(assistantOpts, assistantapp.WithImageGeneration(images, objects))
	}
	orchestrator := assistantapp.NewOrchestrator(assistantapp.Config{
		MaxTokens:       cfg.Assistant.MaxTokens,
		Temperature:     cfg.Assistant.Temperature,
		Recommendations: cfg.Assistant.Recommendations,
		ImageWidth:      cfg.Assistant.Image.Width,
		ImageHeight:     cfg.Assistant.Image.Height,
		ImageURLExpiry:  cfg.Storage.PresignExpiration,
	}, ai.NewTextProviders(cfg.Assistant, log), productRepo, log, assistantOpts...)

	counters, idemKeys, closeStores, err := newSharedStores(cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	var globalLimiter, assistantLimiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		globalLimiter = ratelimit.NewLimiter(counters, "rl:ip", cfg.RateLimit.RequestsPerMinute, time.Minute,
			ratelimit.WithLogger(log))
		assistantLimiter = ratelimit.NewLimiter(counters, "rl:assistant", cfg.RateLimit.AssistantDaily, ratelimit.Day,
			ratelimit.WithLogger(log))
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.IsProduction()
	sessionCfg := middleware.DefaultSessionConfig()
	if cfg.HTTP.SessionCookie != "" {
		sessionCfg.CookieName = cfg.HTTP.SessionCookie
	}
	sessionCfg.Secure = cfg.HTTP.SecureCookies

	var engineMeter metric.Meter
	if cfg.Telemetry.Enabled {
		engineMeter = meter
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Logger:   log,
		JWT:      jwtService,
		CORS:     corsCfg,
		Security: securityCfg,
		Session:  sessionCfg,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
			SkipPaths:   []string{"/health"},
		},
		Profiling: middleware.ProfilingConfig{
			Enabled:   profiler.IsEnabled(),
			SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
		},
		Meter:            engineMeter,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		GlobalLimiter:    globalLimiter,
		AssistantLimiter: assistantLimiter,
		Idempotency:      idemKeys,
		IdempotencyTTL:   cfg.HTTP.IdempotencyTTL,
	}, router.Handlers{
		Health:    handler.NewHealthHandler(db, telemetry.ServiceVersion),
		Auth:      handler.NewAuthHandler(jwtService, cfg.Admin.PasswordHash),
		Catalog:   handler.NewCatalogHandler(productService),
		Cart:      handler.NewCartHandler(cartService),
		Order:     handler.NewOrderHandler(orderService),
		Contact:   handler.NewContactHandler(contactService),
		Assistant: handler.NewAssistantHandler(orchestrator),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	jobs := scheduler.New(scheduler.ConfigFrom(cfg.Scheduler), []scheduler.Job{
		scheduler.CartSweepJob(cartService, cfg.Scheduler.CartTTL),
		scheduler.ContactArchiveJob(contactService, cfg.Scheduler.ContactArchiveAge),
	}, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	if cfg.Scheduler.Enabled {
		jobs.Start(gctx)
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if cfg.Scheduler.Enabled {
			err = errors.Join(err, jobs.Stop(shutdownCtx))
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

// newImageStore returns S3 storage when configured, otherwise an in-process
// store that serves nothing but keeps image generation usable in development.
func newImageStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (imageStore, error) {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, using in-memory store")
		return storage.NewMemoryObjectStorage("http://localhost:" + cfg.App.Port + "/objects"), nil
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	log.Info("Object storage ready", zap.String("bucket", s3.Bucket()))
	return s3, nil
}

// newSharedStores keeps rate limit counters and idempotency keys in Redis
// when enabled and in process memory otherwise.
func newSharedStores(cfg *config.Config, log *zap.Logger) (ratelimit.CounterStore, idempotency.Store, func(), error) {
	if !cfg.Redis.Enabled {
		mem := ratelimit.NewMemoryCounterStore(time.Minute)
		keys := idempotency.NewMemoryStore(5 * time.Minute)
		return mem, keys, func() {
			_ = mem.Close()
			_ = keys.Close()
		}, nil
	}
	client, err := ratelimit.NewRedisClient(ratelimit.RedisConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info("Rate limit counters and idempotency keys in Redis", zap.String("addr", cfg.Redis.Addr()))
	return ratelimit.NewRedisCounterStore(client), idempotency.NewRedisStore(client, "troves:idem:"),
		func() { _ = client.Close() }, nil
}
