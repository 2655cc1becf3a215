// Package server contains the HTTP handlers and routing for the API.
package server

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/token"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config   *config.Config
	db       *gorm.DB
	redis    *redis.Client
	tokens   *token.Issuer
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	users    *service.UserService
	posts    *service.PostService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient()), nil
}

// NewServerWithDeps wires a server from pre-built dependencies. Tests use
// this to supply an in-memory database and a fake Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	return &Server{
		config:   cfg,
		db:       db,
		redis:    redisClient,
		tokens:   token.NewIssuer(cfg.JWTSecret, "inkwell-api", cfg.AccessTTL(), cfg.RefreshTTL()),
		userRepo: userRepo,
		postRepo: postRepo,
		users:    service.NewUserService(userRepo),
		posts:    service.NewPostService(postRepo, userRepo),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())
	app.Use(middleware.Tracing())
	app.Use(middleware.ContextMiddleware())

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware
	app.Use(middleware.StructuredLogger())

	// Prometheus HTTP metrics
	prom := fiberprometheus.New("inkwell")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	api.Get("/health", s.HealthLive)
	api.Get("/health/ready", s.HealthReady)

	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Inkwell Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", middleware.RateLimit(s.redis, 10, 5*time.Minute, "refresh"), s.Refresh)
	auth.Post("/logout", s.Logout)
	auth.Post("/verify", middleware.AuthRequired(s.tokens), s.VerifyMe)
	auth.Get("/me", middleware.AuthRequired(s.tokens), s.Me)

	authRequired := middleware.AuthRequired(s.tokens)

	// Post routes carry optional auth so anonymous reads work while owners
	// and moderators get widened visibility. Privileged routes stack the
	// required-auth middleware on top. Specific routes come before the
	// generic /:id ones.
	posts := api.Group("/posts", middleware.OptionalAuth(s.tokens))
	posts.Get("/", s.GetPosts)
	posts.Get("/search", middleware.RateLimit(s.redis, 10, time.Minute, "search"), s.SearchPosts)
	posts.Get("/trending", s.GetTrendingPosts)
	posts.Get("/tag/:tag", s.GetPostsByTag)
	posts.Get("/slug/:slug", s.GetPostBySlug)
	posts.Get("/stats", authRequired, s.GetPostStatistics)
	posts.Get("/status/:status", authRequired, s.GetPostsByStatus)
	posts.Post("/", authRequired, middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/publish", authRequired, s.PublishPost)
	posts.Post("/:id/archive", authRequired, s.ArchivePost)
	posts.Put("/:id", authRequired, s.UpdatePost)
	posts.Delete("/:id", authRequired, s.DeletePost)
	posts.Get("/:id", s.GetPost)

	// User routes
	users := api.Group("/users", authRequired)
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Post("/me/password", s.ChangeMyPassword)
	users.Get("/", s.GetAllUsers)
	users.Get("/search", s.SearchUsers)
	users.Get("/stats", s.GetUserStatistics)
	users.Get("/role/:role", s.GetUsersByRole)
	// Specific /:id/:resource routes before the generic /:id route
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id/post-stats", s.GetUserPostStats)
	users.Post("/:id/deactivate", s.DeactivateUser)
	users.Post("/:id/verify", s.VerifyUser)
	users.Put("/:id", s.UpdateUser)
	users.Delete("/:id", s.DeleteUser)
	users.Get("/:id", s.GetUserProfile)
}

// HealthLive reports process liveness.
func (s *Server) HealthLive(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// HealthReady reports readiness of the database and Redis. A missing Redis
// degrades features but does not fail readiness.
func (s *Server) HealthReady(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "ready",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// App builds a configured Fiber application.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "inkwell",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Shutdown closes the server's external connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.ErrorContext(ctx, "redis close failed", "error", err)
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
