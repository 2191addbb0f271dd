// Package server contains the HTTP handlers for the customer-service API
// and the public cancellation pages.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/Yahya-Naji/iron-knowledge/internal/cache"
	"github.com/Yahya-Naji/iron-knowledge/internal/config"
	"github.com/Yahya-Naji/iron-knowledge/internal/database"
	"github.com/Yahya-Naji/iron-knowledge/internal/mailer"
	"github.com/Yahya-Naji/iron-knowledge/internal/middleware"
	"github.com/Yahya-Naji/iron-knowledge/internal/repository"
	"github.com/Yahya-Naji/iron-knowledge/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	customerRepo   repository.CustomerRepository
	requestRepo    repository.BoxRequestRepository
	boxService     *service.BoxRequestService
	mailer         *mailer.Mailer
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("ironknowledge-api"),
		customerRepo:   repository.NewCustomerRepository(db),
		requestRepo:    repository.NewBoxRequestRepository(db),
		boxService:     service.NewBoxRequestService(db),
		mailer:         mailer.New(cfg),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate request ID and staff ID into ctx
	app.Use(middleware.ContextMiddleware())

	// OpenTelemetry spans per request
	app.Use(middleware.TracingMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware, app))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS before middlewares that can short-circuit, so browser clients
	// still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health check
	api.Get("/health", s.HealthCheck)

	// Customer read path
	api.Get("/customer/:accountNumber", s.GetCustomer)
	api.Get("/inventory/:accountNumber", s.GetInventory)

	// Box request issuance, throttled per IP on top of the global limiter
	api.Post("/request-boxes", middleware.RateLimit(s.redis, 10, time.Minute, "request-boxes"), s.RequestBoxes)

	// Staff auth
	auth := api.Group("/auth")
	auth.Post("/login", middleware.RateLimit(s.redis, 5, 10*time.Minute, "login"), s.Login)

	// Email dispatch, staff only
	email := api.Group("", middleware.AuthRequired)
	email.Post("/send-email", s.SendEmail)
	email.Post("/send-box-confirmation", s.SendBoxConfirmation)
	email.Post("/send-box-notification", s.SendBoxNotification)

	// Staff ledger views
	admin := api.Group("/admin", middleware.AuthRequired, s.AdminRequired())
	admin.Get("/box-requests", s.ListBoxRequests)
	admin.Get("/customers", s.ListCustomers)

	// Public cancellation flow; security rests on token unguessability
	app.Get("/cancel/:token", s.CancelRequestForm)
	app.Post("/cancel/:token/confirm", middleware.RateLimit(s.redis, 5, time.Minute, "cancel"), s.ConfirmCancellation)
	app.Get("/cancel/:token/keep", s.KeepRequest)
}

// HealthCheck handles GET /api/health
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Iron Knowledge API is running",
	})
}

// Shutdown releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}
