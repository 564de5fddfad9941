package main

import (
	"analysis-service/internal/handler"
	"analysis-service/internal/middleware"
	"analysis-service/internal/model"
	"analysis-service/internal/payment"
	"analysis-service/pkg/config"
	"analysis-service/pkg/database"
	"analysis-service/pkg/jwtutil"
	"analysis-service/pkg/logger"
	"analysis-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: "analysis-service",
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting analysis service...", cfg.LogConfig()...)

	// Initialize database
	if _, err := database.InitDB(&cfg.DB); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.User{},
		&model.AnalysisRequest{},
		&model.PhotoUpload{},
		&model.BodyScoringTable{},
		&model.AnalysisResult{},
		&model.EmotionalPattern{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Static narrative lookup and the analyst account
	if err := model.SeedEmotionalPatterns(database.GetDB()); err != nil {
		log.Fatal("Failed to seed emotional patterns", zap.Error(err))
	}
	if err := model.EnsureAdmin(database.GetDB(), cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal("Failed to bootstrap the analyst account", zap.Error(err))
	}

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Hosted checkout provider, constructed once for the process lifetime
	provider := payment.NewStripeProvider(&cfg.Payment)
	handler.Init(cfg, provider)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)
	e.POST("/webhooks/payment", handler.PaymentWebhook)

	// Session endpoints
	e.POST("/api/register", handler.Register)
	e.POST("/api/login", handler.Login)
	e.POST("/api/logout", handler.Logout)
	e.GET("/api/me", handler.Me, middleware.AuthMiddleware)

	// Debug endpoints
	debug := e.Group("/api/debug")
	debug.GET("/ping", handler.Ping)
	debug.GET("/cookies", handler.Cookies)
	debug.GET("/session", handler.SessionInfo, middleware.AuthMiddleware)
	debug.GET("/auth-test", handler.AuthTest, middleware.AuthMiddleware)
	debug.POST("/refresh-session", handler.RefreshSession, middleware.AuthMiddleware)

	// User profile
	users := e.Group("/api/users", middleware.AuthMiddleware)
	users.GET("/profile", handler.GetProfile)
	users.PATCH("/profile", handler.UpdateProfile)
	users.POST("/change-password", handler.ChangePassword)

	// Analysis requests
	requests := e.Group("/api/analysis-requests", middleware.AuthMiddleware)
	requests.POST("", handler.CreateAnalysisRequest)
	requests.GET("", handler.ListAnalysisRequests)
	requests.GET("/:id", handler.GetAnalysisRequest)
	requests.GET("/:id/result", handler.GetAnalysisResult)
	requests.POST("/:id/checkout", handler.CreateCheckout)

	// Analyst routes
	admin := e.Group("/api/admin", middleware.AdminMiddleware)
	admin.GET("/analysis-requests", handler.AdminListAnalysisRequests)
	admin.POST("/analysis-requests/:id/claim", handler.ClaimAnalysisRequest)
	admin.PUT("/analysis-requests/:id/scoring", handler.SubmitScoring)
	admin.POST("/analysis-requests/:id/cancel", handler.CancelAnalysisRequest)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
