// Package server wires the Selgo web frontend: page routes, the sign-in
// flow, the JSON API and the /uploads proxy, all behind the route guard.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/selgo-dev/selgo-web/internal/auth"
	"github.com/selgo-dev/selgo-web/internal/cache"
	"github.com/selgo-dev/selgo-web/internal/catalog"
	"github.com/selgo-dev/selgo-web/internal/config"
	"github.com/selgo-dev/selgo-web/internal/database"
	"github.com/selgo-dev/selgo-web/internal/guard"
	"github.com/selgo-dev/selgo-web/internal/pages"
	"github.com/selgo-dev/selgo-web/internal/session"
	"github.com/selgo-dev/selgo-web/internal/users"
	"github.com/selgo-dev/selgo-web/internal/workers"
)

// Server represents the HTTP server
type Server struct {
	router      *gin.Engine
	db          *gorm.DB
	config      *config.Config
	logger      zerolog.Logger
	validator   *validator.Validate
	users       *users.Service
	catalog     *catalog.Repository
	guard       *guard.Guard
	cookie      session.CookieOptions
	enqueuer    workers.Enqueuer // nil when Redis is not configured
	asynqClient *asynq.Client
	redisCache  *cache.RedisCache
	version     string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := database.Open(cfg.Database.URL, zlog)
	if err != nil {
		return nil, err
	}

	routes, err := guard.NewRoutes(cfg.Site.ProtectedRoutes...)
	if err != nil {
		return nil, err
	}

	validate, err := newValidator()
	if err != nil {
		return nil, err
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret, err = users.EnsureJWTSecret(context.Background(), db)
		if err != nil {
			return nil, err
		}
		zlog.Info().Msg("JWT_SECRET not set - using the generated secret stored in the database")
	}

	s := &Server{
		db:        db,
		config:    cfg,
		logger:    zlog,
		validator: validate,
		catalog:   catalog.NewRepository(db, zlog),
		cookie: session.CookieOptions{
			MaxAge: cfg.Auth.TokenTTL,
			Secure: cfg.Auth.SecureCookie,
		},
		version: version,
	}

	var profiles users.ProfileCache
	if cfg.Redis.Enabled() {
		s.redisCache = cache.NewRedisCache(cfg.Redis.Address, "selgo:")
		profiles = s.redisCache
		s.asynqClient = asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Address})
		s.enqueuer = s.asynqClient
	} else {
		zlog.Info().Msg("No Redis configured - profile cache and background jobs disabled")
	}

	s.users = users.NewService(db, auth.NewIssuer(secret, cfg.Auth.TokenTTL), profiles, cfg.Redis.ProfileTTL, zlog)
	s.guard = guard.New(routes, s.users, guard.Options{
		FetchTimeout: cfg.Auth.FetchTimeout,
		Cookie:       s.cookie,
	}, zlog)

	if err := s.setupRouter(); err != nil {
		return nil, err
	}
	return s, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() error {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	tmpl, err := pages.Templates()
	if err != nil {
		return err
	}
	s.router.SetHTMLTemplate(tmpl)

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.HTTP.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/health", s.healthCheck)

	uploads, err := s.uploadsProxy()
	if err != nil {
		return err
	}
	s.router.Any("/uploads/*path", uploads)

	// Everything below runs behind the guard
	site := s.router.Group("/")
	site.Use(s.guard.Middleware())
	{
		site.GET("/", s.home)

		site.GET("/routes/auth/signin", s.signInForm)
		site.POST("/routes/auth/signin", s.signIn)
		site.GET("/routes/auth/signup", s.signUpForm)
		site.POST("/routes/auth/signup", s.signUp)
		site.POST("/routes/auth/logout", s.logout)

		site.GET("/routes/profile", s.profile)
		site.POST("/routes/profile", s.updateProfile)
		site.GET("/routes/favorites", s.favorites)
		site.GET("/routes/favorites/:id", s.favoriteRedirect)
		site.POST("/routes/favorites/:id", s.toggleFavorite)
		site.GET("/routes/my-ads", s.myListings)
		site.GET("/routes/post-ad", s.postAdForm)
		site.POST("/routes/post-ad", s.postAd)

		site.GET("/routes/:vertical", s.verticalIndex)
		site.GET("/routes/:vertical/:id", s.listingDetail)

		api := site.Group("/api")
		{
			api.GET("/auth/me", s.getCurrentUser)
			api.GET("/listings", s.listListings)
			api.GET("/listings/:id", s.getListing)
		}
	}

	s.router.NoRoute(s.guard.Middleware(), s.notFound)
	return nil
}

// uploadsProxy forwards /uploads/* to the boat service unchanged
func (s *Server) uploadsProxy() (gin.HandlerFunc, error) {
	target, err := url.Parse(s.config.HTTP.UploadsBackend)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid UPLOADS_BACKEND %q", s.config.HTTP.UploadsBackend)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Uploads backend unavailable")
		w.WriteHeader(http.StatusBadGateway)
	}

	return func(c *gin.Context) {
		proxy.ServeHTTP(c.Writer, c.Request)
	}, nil
}

// @Router /health [get]
func (s *Server) healthCheck(c *gin.Context) {
	status := "online"
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"service":   "selgo-web",
		"version":   s.version,
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// GetDB returns the database connection
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Catalog returns the listing repository
func (s *Server) Catalog() *catalog.Repository {
	return s.catalog
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM
func (s *Server) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.config.HTTP.Address,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-sigChan:
	}
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.Close()
	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

// Close releases the database, Redis and Asynq connections
func (s *Server) Close() {
	if s.asynqClient != nil {
		if err := s.asynqClient.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing Asynq client")
		}
	}
	if s.redisCache != nil {
		if err := s.redisCache.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing Redis cache")
		}
	}
	if err := database.Close(s.db); err != nil {
		s.logger.Error().Err(err).Msg("Error closing database")
	}
}
