package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/config"
	"github.com/gravadigital/navidad-api/internal/handlers"
	"github.com/gravadigital/navidad-api/internal/logger"
	"github.com/gravadigital/navidad-api/internal/middleware/authn"
	"github.com/gravadigital/navidad-api/internal/middleware/events"
	"github.com/gravadigital/navidad-api/internal/response"
	"github.com/gravadigital/navidad-api/internal/services"
)

// Dependencies are the services the HTTP layer routes to
type Dependencies struct {
	Auth   *auth.Service
	Voting *services.VotingService
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	deps       Dependencies
	router     *gin.Engine
}

// New creates a new server instance
func New(cfg *config.Config, deps Dependencies) *Server {
	s := &Server{
		config: cfg,
		deps:   deps,
	}
	s.router = s.setupRouter()

	// request contexts end on shutdown so open vote streams return
	base, cancel := context.WithCancel(context.Background())
	s.httpServer = &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     s.router,
		BaseContext: func(net.Listener) context.Context { return base },

		// WriteTimeout stays off: the vote stream is long-lived
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.httpServer.RegisterOnShutdown(cancel)
	return s
}

// Router exposes the configured engine, mainly for httptest
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	return s.httpServer.Shutdown(ctx)
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(events.CreateEvent())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.SplitList(s.config.CORS.AllowOrigins)
	corsConfig.AllowMethods = config.SplitList(s.config.CORS.AllowMethods)
	corsConfig.AllowHeaders = config.SplitList(s.config.CORS.AllowHeaders)
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Navidad API is running",
			"status":  "healthy",
		})
	})

	s.setupAPIRoutes(router)

	return router
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(router *gin.Engine) {
	authHandler := handlers.NewAuthHandler(s.deps.Auth, s.deps.Voting)
	voteHandler := handlers.NewVoteHandler(s.deps.Voting)
	adminHandler := handlers.NewAdminHandler(s.deps.Voting)

	api := router.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/roster", authHandler.Roster)
		api.GET("/options", voteHandler.Options)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
		}

		voter := api.Group("", authn.RequireVoter(s.deps.Auth))
		{
			voter.GET("/me/status", voteHandler.Status)
			voter.POST("/votes", voteHandler.CastVote)
			voter.GET("/votes/stream", voteHandler.Stream)
			voter.GET("/results", voteHandler.Results)
		}

		api.POST("/admin/login", authHandler.AdminLogin)

		admin := api.Group("/admin", authn.RequireAdmin(s.deps.Auth))
		{
			admin.GET("/votes", adminHandler.ListVotes)
			admin.DELETE("/votes", adminHandler.ResetVotes)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := s.deps.Voting.Health(ctx); err != nil {
		logger.HTTP().Error("health check failed", "error", err)
		response.ServiceUnavailableError(c, "storage unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
