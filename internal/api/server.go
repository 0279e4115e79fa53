package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nexconsult/registry-api/internal/api/handlers"
	"github.com/nexconsult/registry-api/internal/api/middleware"
	"github.com/nexconsult/registry-api/internal/config"
	"github.com/nexconsult/registry-api/internal/services"
)

// Server represents the HTTP server
type Server struct {
	Router   *gin.Engine
	config   *config.Config
	logger   *logrus.Logger
	services *services.Container
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, logger *logrus.Logger, services *services.Container) *Server {
	server := &Server{
		config:   cfg,
		logger:   logger,
		services: services,
	}

	server.setupRouter()
	return server
}

// setupRouter configures the router with all routes and middleware
func (s *Server) setupRouter() {
	if s.config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	s.Router = gin.New()

	// Global middleware
	s.Router.Use(middleware.RequestID())
	s.Router.Use(middleware.Logger(s.logger))
	s.Router.Use(middleware.Recovery(s.logger))
	s.Router.Use(middleware.CORS(s.config.Security.CORS))
	s.Router.Use(middleware.Security())

	rateLimiter := middleware.NewRateLimiter(s.config.Security.RateLimit)
	s.Router.Use(rateLimiter.Middleware())

	// Health endpoints stay unauthenticated for probes
	healthHandler := handlers.NewHealthHandler(s.services, s.logger)
	s.Router.GET("/health", healthHandler.GetHealth)
	s.Router.GET("/health/ready", healthHandler.GetReadiness)
	s.Router.GET("/health/live", healthHandler.GetLiveness)

	// API v1 routes, token guarded
	v1 := s.Router.Group("/api/v1")
	v1.Use(middleware.BearerAuth(s.config.Security.APIToken))
	{
		searchHandler := handlers.NewSearchHandler(s.services.PortalService, s.logger)
		v1.POST("/search/companies", searchHandler.SearchCompanies)

		checkoutHandler := handlers.NewCheckoutHandler(s.services.PortalService, s.logger)
		v1.POST("/checkout", checkoutHandler.Checkout)

		corporationHandler := handlers.NewCorporationHandler(s.services.DirectoryService, s.logger)
		v1.GET("/corporations/:id", corporationHandler.Get)

		directoryHandler := handlers.NewDirectoryHandler(s.services.DirectoryService, s.services.RelayService, s.logger)
		v1.GET("/directory/:keyword", directoryHandler.List)
		v1.POST("/requests", directoryHandler.SubmitCopyRequest)
		v1.POST("/requests/by-name", directoryHandler.SubmitCopyRequestByName)
	}

	// 404 handler
	s.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Not Found",
			"message":   "The requested resource was not found",
			"timestamp": time.Now(),
			"path":      c.Request.URL.Path,
		})
	})

	// 405 handler
	s.Router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":     "Method Not Allowed",
			"message":   "The requested method is not allowed for this resource",
			"timestamp": time.Now(),
			"path":      c.Request.URL.Path,
			"method":    c.Request.Method,
		})
	})
}
