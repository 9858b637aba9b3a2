package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jon4hz/cinetro/internal/api/handler"
	"github.com/jon4hz/cinetro/internal/catalog"
	"github.com/jon4hz/cinetro/internal/config"
	"github.com/jon4hz/cinetro/internal/contact"
	"github.com/jon4hz/cinetro/internal/database"
)

// RequestIDHeader carries the id of a request in both directions.
const RequestIDHeader = "X-Request-ID"

type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	handler   *handler.Handler
}

// New creates the HTTP server. db may be wrapped by the catalog cache;
// notifier delivers the contact form emails.
func New(cfg *config.Config, db database.DB, notifier contact.Notifier) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		ginEngine: gin.New(),
		handler:   handler.New(catalog.New(db), contact.New(db, notifier), db, cfg),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.ginEngine.Use(requestLogger(), gin.Recovery())
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if s.cfg.CORS.AllowsAllOrigins() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.cfg.CORS.AllowedOrigins
	}
	s.ginEngine.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	h := s.handler

	s.ginEngine.GET("/health", h.Health)
	if s.cfg.Media != nil {
		s.ginEngine.Static(s.cfg.Media.URL, s.cfg.Media.Root)
	}

	api := s.ginEngine.Group("/api")

	content := func(path string, handlers handler.ContentHandlers) *gin.RouterGroup {
		group := api.Group(path)
		group.GET("/", handlers.List)
		group.GET("/featured/", handlers.Featured)
		group.GET("/:id/", handlers.Detail)
		return group
	}

	content("/movies", h.Movies())
	tv := content("/tvshows", h.TVShows())
	tv.GET("/trending/", h.TrendingTVShows)
	content("/bongomovies", h.BongoMovies())
	content("/livestreams", h.LiveStreams())

	api.GET("/seasons/:id/", h.Season)
	api.GET("/genres/", h.Genres)
	api.GET("/search/", h.Search)
	api.POST("/contact/", h.Contact)
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves HTTP on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", "listen", s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// requestLogger tags every request with an id and logs it once it is done.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("Request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("Request", fields...)
		default:
			log.Info("Request", fields...)
		}
	}
}
