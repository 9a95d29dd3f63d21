// Package api serves the businesses and reviews REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/bizreview/internal/cache"
	"github.com/AI2HU/bizreview/internal/db"
	"github.com/AI2HU/bizreview/internal/health"
	"github.com/AI2HU/bizreview/internal/logger"
	"github.com/AI2HU/bizreview/internal/models"
	"github.com/AI2HU/bizreview/internal/services"
)

const shutdownTimeout = 10 * time.Second

// Options tune the server around the handlers
type Options struct {
	// Scheme and host of the absolute links in responses. An empty host uses
	// the Host header of each request.
	PublicScheme string
	PublicHost   string

	// MaxInFlight bounds the requests served at once; excess requests wait
	MaxInFlight int

	// RequestTimeout bounds each request; 0 disables it
	RequestTimeout time.Duration

	// RateLimit is a token bucket in requests per second; 0 disables it
	RateLimit float64
	RateBurst int

	CacheTTL time.Duration
}

// Server represents the API server
type Server struct {
	router          *gin.Engine
	businessService *services.BusinessService
	reviewService   *services.ReviewService
	monitor         *health.Monitor
	options         Options
}

// NewServer creates a new API server. The cache and monitor may be nil.
func NewServer(store db.Store, c cache.Cache, monitor *health.Monitor, options Options) *Server {
	if options.PublicScheme == "" {
		options.PublicScheme = "https"
	}

	if !logger.IsDebugEnabled() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.Writer(logger.DEBUG)
	gin.DefaultErrorWriter = logger.Writer(logger.ERROR)

	s := &Server{
		router:          gin.New(),
		businessService: services.NewBusinessService(store, c, options.CacheTTL),
		reviewService:   services.NewReviewService(store),
		monitor:         monitor,
		options:         options,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestID())
	s.router.Use(accessLog())

	s.router.NoRoute(func(c *gin.Context) {
		s.errorResponse(c, http.StatusNotFound, msgNotFound)
	})

	// Health stays reachable when the API is saturated
	s.router.GET("/healthz", s.healthCheck)

	r := s.router.Group("/")
	r.Use(rateLimit(s.options.RateLimit, s.options.RateBurst))
	r.Use(inFlightLimit(s.options.MaxInFlight))
	r.Use(requestTimeout(s.options.RequestTimeout))

	r.GET("", s.index)

	// Business endpoints
	r.POST("/businesses", s.createBusiness)
	r.GET("/businesses", s.listBusinesses)
	r.GET("/businesses/:id", s.getBusiness)
	r.PUT("/businesses/:id", s.updateBusiness)
	r.DELETE("/businesses/:id", s.deleteBusiness)
	r.GET("/owners/:owner_id/businesses", s.listOwnerBusinesses)

	// Review endpoints
	r.POST("/reviews", s.createReview)
	r.GET("/reviews/:id", s.getReview)
	r.PUT("/reviews/:id", s.updateReview)
	r.DELETE("/reviews/:id", s.deleteReview)
	r.GET("/users/:user_id/reviews", s.listUserReviews)
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// httpServer builds the http.Server. Without a request timeout no read or
// write deadline is set.
func (s *Server) httpServer(address string) *http.Server {
	srv := &http.Server{
		Addr:    address,
		Handler: s.router,
	}
	if t := s.options.RequestTimeout; t > 0 {
		srv.ReadTimeout = t
		// leave room to write the timeout response
		srv.WriteTimeout = t + 5*time.Second
	}
	return srv
}

// Run serves on address until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, address string) error {
	srv := s.httpServer(address)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// index handles GET /
func (s *Server) index(c *gin.Context) {
	c.String(http.StatusOK, "Please access either the /businesses or /reviews endpoint.")
}

// healthCheck handles GET /healthz
func (s *Server) healthCheck(c *gin.Context) {
	status, checks := health.StatusOK, map[string]string{}
	if s.monitor != nil {
		status, checks = s.monitor.Status()
	}

	code := http.StatusOK
	if status != health.StatusOK {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, models.HealthResponse{Status: status, Checks: checks})
}
