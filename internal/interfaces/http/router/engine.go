package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/troves/backend/internal/infrastructure/auth"
	"github.com/troves/backend/internal/infrastructure/idempotency"
	"github.com/troves/backend/internal/infrastructure/logger"
	"github.com/troves/backend/internal/infrastructure/ratelimit"
	"github.com/troves/backend/internal/interfaces/http/handler"
	"github.com/troves/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const healthPath = "/health"

// Handlers groups the HTTP handlers mounted by NewEngine
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Catalog   *handler.CatalogHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Contact   *handler.ContactHandler
	Assistant *handler.AssistantHandler
}

// EngineConfig carries the middleware settings of the engine. Nil limiters
// disable rate limiting, a nil Idempotency store disables checkout replay
// protection and a nil Meter disables request metrics.
type EngineConfig struct {
	Logger           *zap.Logger
	JWT              *auth.JWTService
	CORS             middleware.CORSConfig
	Security         middleware.SecurityConfig
	Session          middleware.SessionConfig
	Tracing          middleware.TracingConfig
	Profiling        middleware.ProfilingConfig
	Meter            metric.Meter
	MaxBodySize      int64
	TrustedProxies   []string
	GlobalLimiter    *ratelimit.Limiter
	AssistantLimiter *ratelimit.Limiter
	Idempotency      idempotency.Store
	IdempotencyTTL   time.Duration
}

// NewEngine builds the gin engine with the global middleware chain, the
// health check and the /api/v1 routes.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, fmt.Errorf("setup validator: %w", err)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	engine.Use(
		logger.Recovery(cfg.Logger),
		middleware.RequestID(),
		logger.GinMiddleware(cfg.Logger),
		middleware.Tracing(cfg.Tracing),
		middleware.Session(cfg.Session),
		middleware.SpanEnricher(),
		middleware.SecureWithConfig(cfg.Security),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize),
		middleware.HTTPMetrics(cfg.Meter, cfg.Meter != nil),
		middleware.Profiling(cfg.Profiling),
		middleware.RateLimitWithConfig(middleware.RateLimitConfig{
			Limiter:   cfg.GlobalLimiter,
			SkipPaths: []string{healthPath},
		}),
	)

	engine.GET(healthPath, h.Health.Check)

	NewRouter(engine).Register(
		adminRoutes(h),
		catalogRoutes(cfg, h),
		cartRoutes(h),
		orderRoutes(cfg, h),
		contactRoutes(cfg, h),
		assistantRoutes(cfg, h),
	).Setup()

	return engine, nil
}

func adminRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("admin", "/admin").
		POST("/login", h.Auth.Login)
}

func catalogRoutes(cfg EngineConfig, h Handlers) *DomainGroup {
	admin := middleware.AdminAuth(cfg.JWT, cfg.Logger)
	optional := middleware.OptionalAdmin(cfg.JWT)

	g := NewDomainGroup("catalog", "/catalog")
	products := g.Group("products", "/products")
	products.
		GET("", optional, h.Catalog.List).
		GET("/featured", h.Catalog.Featured).
		GET("/slug/:slug", optional, h.Catalog.GetBySlug).
		GET("/:id", optional, h.Catalog.GetByID).
		POST("", admin, h.Catalog.Create).
		PUT("/:id", admin, h.Catalog.Update).
		DELETE("/:id", admin, h.Catalog.Delete).
		POST("/:id/stock", admin, h.Catalog.AdjustStock).
		POST("/:id/activate", admin, h.Catalog.Activate).
		POST("/:id/deactivate", admin, h.Catalog.Deactivate).
		POST("/:id/image-upload-url", admin, h.Catalog.RequestImageUpload)
	return g
}

func cartRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("cart", "/cart").
		GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.AddItem).
		PUT("/items/:product_id", h.Cart.UpdateQuantity).
		DELETE("/items/:product_id", h.Cart.RemoveItem)
}

func orderRoutes(cfg EngineConfig, h Handlers) *DomainGroup {
	admin := middleware.AdminAuth(cfg.JWT, cfg.Logger)
	optional := middleware.OptionalAdmin(cfg.JWT)
	once := middleware.Idempotency(middleware.IdempotencyConfig{
		Store:  cfg.Idempotency,
		TTL:    cfg.IdempotencyTTL,
		Logger: cfg.Logger,
	})

	return NewDomainGroup("order", "/orders").
		POST("", once, h.Order.Place).
		GET("", admin, h.Order.List).
		GET("/:id", optional, h.Order.Get).
		GET("/:id/receipt", optional, h.Order.Receipt).
		POST("/:id/confirm", admin, h.Order.Confirm).
		POST("/:id/ship", admin, h.Order.Ship).
		POST("/:id/deliver", admin, h.Order.Deliver).
		POST("/:id/cancel", admin, h.Order.Cancel)
}

func contactRoutes(cfg EngineConfig, h Handlers) *DomainGroup {
	admin := middleware.AdminAuth(cfg.JWT, cfg.Logger)

	return NewDomainGroup("contact", "/contact").
		POST("", h.Contact.Submit).
		GET("", admin, h.Contact.List).
		POST("/:id/read", admin, h.Contact.MarkRead).
		POST("/:id/archive", admin, h.Contact.Archive)
}

func assistantRoutes(cfg EngineConfig, h Handlers) *DomainGroup {
	admin := middleware.AdminAuth(cfg.JWT, cfg.Logger)

	g := NewDomainGroup("assistant", "/assistant")
	g.GET("/providers", admin, h.Assistant.Providers)

	quota := g.Group("quota", "").Use(middleware.RateLimitWithConfig(middleware.RateLimitConfig{
		Limiter: cfg.AssistantLimiter,
		Message: "Daily assistant limit reached. Please come back tomorrow.",
	}))
	quota.
		POST("/chat", h.Assistant.Chat).
		POST("/describe", h.Assistant.Describe).
		POST("/match", h.Assistant.Match).
		GET("/moon", h.Assistant.Moon).
		POST("/images", h.Assistant.GenerateImage)
	return g
}
