package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sanadhub/ijazahserver/internal/api/handlers"
	"github.com/sanadhub/ijazahserver/internal/api/middleware"
	"github.com/sanadhub/ijazahserver/internal/config"
	"github.com/sanadhub/ijazahserver/internal/db/repository"
	"github.com/sanadhub/ijazahserver/internal/issue"
	"github.com/sanadhub/ijazahserver/internal/pattern"
	"github.com/sanadhub/ijazahserver/internal/verify"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	config *config.Config
}

// NewServer creates a new API server
func NewServer(
	cfg *config.Config,
	issuer *issue.Service,
	verifier *verify.Service,
	certRepo *repository.CertificateRepository,
	attemptRepo *repository.AttemptRepository,
	profileRepo *repository.ProfileRepository,
) *Server {
	// Set Gin mode
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	defaultPattern := pattern.Config{
		Family:       cfg.Pattern.Family,
		PrimaryColor: cfg.Pattern.PrimaryColor,
		Opacity:      cfg.Pattern.Opacity,
	}

	// Create handlers
	certHandler := handlers.NewCertHandler(issuer, certRepo)
	verifyHandler := handlers.NewVerifyHandler(verifier, cfg.Server.PublicBaseURL)
	patternHandler := handlers.NewPatternHandler(certRepo, defaultPattern)
	adminHandler := handlers.NewAdminHandler(attemptRepo, profileRepo)

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Public verification endpoints
		public := v1.Group("/")
		if cfg.RateLimit.Enabled {
			limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute)
			public.Use(middleware.RateLimit(limiter))
		}
		{
			public.GET("/verify", verifyHandler.VerifyCertificate)
			public.GET("/verify/qr/:number", verifyHandler.VerificationQR)
			public.GET("/certificates/:number/pattern", patternHandler.CertificatePattern)
		}

		// Operator endpoints (require admin token)
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuth(cfg.Admin.Token))
		{
			admin.POST("/certificates", certHandler.IssueCertificate)
			admin.GET("/certificates/:number", certHandler.GetCertificate)
			admin.GET("/attempts", adminHandler.ListAttempts)
			admin.POST("/profiles", adminHandler.CreateProfile)
			admin.GET("/patterns/preview", patternHandler.PreviewPattern)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return &Server{
		router: router,
		config: cfg,
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	return s.router.Run(s.config.Server.ListenAddr)
}

// Router returns the underlying Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}
