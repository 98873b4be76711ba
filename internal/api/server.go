package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"botgate/internal/auth"
	"botgate/internal/botclient"
	"botgate/internal/config"
	"botgate/internal/logger"
	"botgate/internal/middleware"
	"botgate/internal/monitoring"
)

// Server is the gateway HTTP server.
type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
	handlers   *Handlers
	log        *logger.Logger

	backend    Backend
	jwtManager *auth.JWTManager
	metrics    *monitoring.Metrics
}

// Handlers contains all API handlers
type Handlers struct {
	Bot       *BotHandler
	Training  *TrainingHandler
	Dashboard *DashboardHandler
	Auth      *AuthHandler
}

// NewServer creates a new gateway server wired to the configured trading
// bot backend.
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logger.New(cfg.Logging)
	logger.SetDefault(log)

	router := gin.New()

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Duration)
	metrics := monitoring.NewMetrics()
	backend := botclient.New(cfg.Backend, log)

	server := &Server{
		config:     cfg,
		router:     router,
		log:        log,
		backend:    backend,
		jwtManager: jwtManager,
		metrics:    metrics,
	}

	server.handlers = &Handlers{
		Bot:       NewBotHandler(backend, metrics, log),
		Training:  NewTrainingHandler(backend, metrics, log),
		Dashboard: NewDashboardHandler(backend, metrics, log),
		Auth:      NewAuthHandler(jwtManager, cfg.Auth),
	}

	server.setupRoutes()

	return server, nil
}

// setupRoutes configures all API routes. Operations are split into a
// public-read tier and an authenticated-write tier; a denied write never
// reaches the backend client.
func (s *Server) setupRoutes() {
	s.router.Use(gin.Logger())
	s.router.Use(middleware.ErrorHandler())
	s.router.Use(middleware.RequestID())
	s.router.Use(corsMiddleware(s.config.CORS))
	s.router.Use(rateLimitMiddleware(s.config.RateLimit))
	s.router.Use(s.metrics.MetricsMiddleware())

	if s.config.Monitoring.PrometheusEnabled {
		s.router.GET(s.config.Monitoring.PrometheusPath, gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", s.handlers.Auth.Login)
		}

		// Bot lifecycle: reads are public, writes require a token.
		bot := v1.Group("/bot")
		{
			bot.GET("/status", s.handlers.Bot.Status)
			bot.GET("/logs", s.handlers.Bot.Logs)
			bot.GET("/health", s.handlers.Bot.Health)
			bot.GET("/evaluate/:symbol", s.handlers.Bot.Evaluate)

			write := bot.Group("")
			write.Use(s.jwtManager.AuthMiddleware())
			{
				write.POST("/start", s.handlers.Bot.Start)
				write.POST("/stop", s.handlers.Bot.Stop)
				write.POST("/switch-mode", s.handlers.Bot.SwitchMode)
				write.POST("/configure", s.handlers.Bot.Configure)
				write.POST("/retrain/:symbol", s.handlers.Bot.Retrain)
			}
		}

		// Advanced training workflow, same split.
		training := v1.Group("/training")
		{
			training.GET("/search-stocks", s.handlers.Training.SearchStocks)
			training.GET("/stock-info/:symbol", s.handlers.Training.StockInfo)
			training.GET("/status", s.handlers.Training.Status)
			training.GET("/models", s.handlers.Training.Models)
			training.GET("/saved-models", s.handlers.Training.SavedModels)

			write := training.Group("")
			write.Use(s.jwtManager.AuthMiddleware())
			{
				write.POST("/import-data", s.handlers.Training.ImportData)
				write.POST("/train-model", s.handlers.Training.TrainModel)
				write.POST("/simulation", s.handlers.Training.Simulation)
				write.POST("/save-model", s.handlers.Training.SaveModel)
			}
		}

		// Page-data projections for the dashboard views.
		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("", s.handlers.Dashboard.Dashboard)
			dashboard.GET("/configuration", s.handlers.Dashboard.Configuration)
			dashboard.GET("/analytics", s.handlers.Dashboard.Analytics)
		}
	}

	// Gateway liveness, independent of the backend.
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": s.config.App.Name,
			"version": s.config.App.Version,
			"time":    time.Now().UTC(),
		})
	})
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	s.log.Info("Starting gateway on %s:%d (backend %s)", s.config.Server.Host, s.config.Server.Port, s.config.Backend.BaseURL)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down gateway...")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	s.log.Info("Gateway stopped gracefully")
	return nil
}

// corsMiddleware adds CORS headers
func corsMiddleware(corsConfig config.CORSConfig) gin.HandlerFunc {
	allowOrigin := "*"
	if len(corsConfig.AllowedOrigins) == 1 {
		allowOrigin = corsConfig.AllowedOrigins[0]
	}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Request-ID, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// rateLimitMiddleware applies a token-bucket limit across all callers.
func rateLimitMiddleware(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{
				Success: false,
				Error:   "Rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
