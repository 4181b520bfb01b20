// Package server contains the HTTP and WebSocket handlers of the forum API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "agora/docs" // swagger docs
	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	app         *fiber.App
	shutdownCtx context.Context
	shutdownFn  context.CancelFunc

	sessions *middleware.Sessions
	limiter  *middleware.RateLimiter
	notifier *notifications.Notifier
	hub      *notifications.Hub

	userRepo      repository.UserRepository
	posts         *service.PostService
	comments      *service.CommentService
	reactions     *service.ReactionService
	notifications *service.NotificationService
	users         *service.UserService
	admin         *service.AdminService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil: caching, revocation and live push are then off.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}

	store := cache.New(redisClient)
	userRepo := repository.NewUserRepository(db, store)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db, store)

	notifier := notifications.NewNotifier(redisClient)
	notificationService := service.NewNotificationService(repository.NewNotificationRepository(db), notifier, store)
	postService := service.NewPostService(postRepo, categoryRepo, reactionRepo)

	s := &Server{
		config:        cfg,
		db:            db,
		redis:         redisClient,
		sessions:      middleware.NewSessions(cfg, redisClient),
		limiter:       middleware.NewRateLimiter(redisClient, cfg.Env),
		notifier:      notifier,
		userRepo:      userRepo,
		posts:         postService,
		comments:      service.NewCommentService(commentRepo, postRepo, reactionRepo, notificationService),
		reactions:     service.NewReactionService(reactionRepo, notificationService),
		notifications: notificationService,
		users:         service.NewUserService(userRepo, postService),
		admin:         service.NewAdminService(userRepo, repository.NewAdminLogRepository(db), store),
	}
	if redisClient != nil {
		s.hub = notifications.NewHub()
	}
	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.MetricsMiddleware(app, "agora-api"))
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())
	app.Use(middleware.TracingMiddleware())

	// CORS runs before anything that can short-circuit so error responses
	// still carry the headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.limiter.Enabled()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/register", s.limiter.Handler("register", 3, 10*time.Minute, middleware.FailOpen), s.Register)
	auth.Post("/login", s.limiter.Handler("login", 10, 5*time.Minute, middleware.FailOpen), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)
	auth.Delete("/account", s.AuthRequired(), s.DeleteAccount)

	api.Get("/categories", s.ListCategories)

	// Browsing is public; a session only adds the viewer's own reactions.
	api.Get("/posts", s.OptionalAuth(), s.ListPosts)
	api.Get("/posts/:id/comments", s.OptionalAuth(), s.ListComments)
	api.Get("/posts/:id", s.OptionalAuth(), s.GetPost)
	api.Get("/users/:username", s.GetPublicProfile)

	protected := api.Group("", s.AuthRequired())
	protected.Post("/posts", s.limiter.Handler("create_post", 5, time.Minute, middleware.FailOpen), s.CreatePost)
	protected.Post("/posts/:id/comments", s.limiter.Handler("create_comment", 10, time.Minute, middleware.FailOpen), s.CreateComment)
	protected.Put("/posts/:id", s.UpdatePost)
	protected.Delete("/posts/:id", s.DeletePost)
	protected.Put("/comments/:id", s.UpdateComment)
	protected.Delete("/comments/:id", s.DeleteComment)
	protected.Post("/reactions", s.limiter.Handler("reaction", 60, time.Minute, middleware.FailOpen), s.SubmitReaction)

	protected.Get("/notifications", s.ListNotifications)
	protected.Get("/notifications/unread-count", s.UnreadCount)
	protected.Put("/notifications/read", s.MarkNotificationsRead)

	protected.Put("/user/theme", s.UpdateTheme)
	protected.Put("/users/profile", s.UpdateProfile)
	protected.Get("/stats", s.AdminRequired(), s.Stats)

	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/users", s.AdminListUsers)
	admin.Put("/users/:id/role", s.ChangeUserRole)
	admin.Get("/logs", s.AdminLogs)
	admin.Put("/posts/:id/pin", s.PinPost)

	protected.Get("/ws", s.NotificationsSocket())
}

// App builds the fiber application with the error handler, middleware and
// routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Agora Forum API",
		ProxyHeader:  s.config.ProxyHeader,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler catches errors returned by middleware and unknown routes.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	return respondError(c, err)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database and Redis answer. Redis is
// optional: without a client it reports "disabled" and stays ready,
// but a configured Redis that stops answering fails the check.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires the notification hub to Redis and serves HTTP until Shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.App()

	if s.hub != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("notification hub wiring failed", slog.String("error", err.Error()))
		}
	}

	addr := ":" + s.config.Port
	middleware.Logger.Info("server starting", slog.String("addr", addr), slog.String("env", s.config.Env))
	if err := s.app.Listen(addr); err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down notification hub", slog.String("error", err.Error()))
		}
	}

	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
