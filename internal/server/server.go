// Package server contains the HTTP surface of the Inkwell API.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/mail"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/storage"
	"inkwell/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	tokens      *token.Service
	mailer      mail.Mailer
	uploader    storage.Uploader

	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	uploader, err := storage.NewDiskUploader(cfg.UploadDir, "")
	if err != nil {
		return nil, fmt.Errorf("upload storage init failed: %w", err)
	}

	return &Server{
		config:      cfg,
		db:          db,
		redis:       cache.GetClient(),
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		tokens:      token.New(cfg.JWTSecret, token.SessionTTL),
		mailer:      mail.NewSMTPMailer(cfg),
		uploader:    uploader,
	}, nil
}

// Lazy service accessors so tests can construct a Server from stub
// repositories without wiring every collaborator up front.

func (s *Server) userSvc() *service.UserService {
	if s.userService == nil {
		s.userService = service.NewUserService(s.userRepo, s.mailer, s.uploader, s.config.AppURL)
	}
	return s.userService
}

func (s *Server) postSvc() *service.PostService {
	if s.postService == nil {
		s.postService = service.NewPostService(s.postRepo)
	}
	return s.postService
}

func (s *Server) commentSvc() *service.CommentService {
	if s.commentService == nil {
		s.commentService = service.NewCommentService(s.commentRepo, s.postRepo)
	}
	return s.commentService
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Propagate request/user IDs into the request context for logging
	app.Use(middleware.ContextMiddleware())

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware
	app.Use(middleware.StructuredLogger())

	// Prometheus HTTP metrics
	prom := middleware.InitMetrics("inkwell")
	prom.RegisterAt(app, "/metrics")
	app.Use(middleware.MetricsMiddleware(prom))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	// Credentials must be allowed: the session rides in a cookie.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)

	// Locally stored avatar uploads
	app.Static("/uploads", s.config.UploadDir)

	user := app.Group("/user")
	user.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	user.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	user.Get("/logout", s.AuthRequired(), s.Logout)
	user.Get("/details", s.AuthRequired(), s.GetUserDetails)
	user.Put("/update/me", s.AuthRequired(), s.UpdateProfile)
	user.Put("/update/password", s.AuthRequired(), s.UpdatePassword)
	user.Post("/forgot/password", middleware.RateLimit(s.redis, 3, 15*time.Minute, "forgot_password"), s.ForgotPassword)
	user.Put("/reset/password/:token", middleware.RateLimit(s.redis, 10, 15*time.Minute, "reset_password"), s.ResetPassword)

	post := app.Group("/post")
	post.Post("/create", s.AuthRequired(), middleware.RateLimit(s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	post.Get("/get/all", s.GetPosts)
	post.Get("/get/:id", s.GetPost)
	post.Put("/update/:id", s.AuthRequired(), s.UpdatePost)
	post.Delete("/delete/:id", s.AuthRequired(), s.DeletePost)
	post.Put("/like/:id", middleware.RateLimit(s.redis, 30, time.Minute, "like_post"), s.LikePost)

	comment := app.Group("/comment")
	comment.Post("/add/:id", middleware.RateLimit(s.redis, 10, time.Minute, "add_comment"), s.AddComment)
	comment.Get("/get/all/:id", s.GetComments)
	comment.Delete("/delete/:id", s.AuthRequired(), s.DeleteComment)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
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
		"success": status == fiber.StatusOK,
		"message": "Inkwell API",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown releases server-held resources: the database pool and the Redis
// client.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.WarnContext(ctx, "redis close failed", "error", err)
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AuthRequired returns the authentication middleware. The session token is
// read from the "token" cookie first; an Authorization Bearer header is the
// fallback for non-browser clients.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(sessionCookieName)

		if tokenString == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					tokenString = parts[1]
				}
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("User not authenticated!"))
		}

		userID, err := s.tokens.Verify(tokenString)
		if err != nil {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}

		c.Locals("userID", userID)
		c.Locals("user", user)
		c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, userID))

		return c.Next()
	}
}
