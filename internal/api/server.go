// Package api serves the media-generator demo application: a small REST
// surface over Google Cloud Storage and an ffmpeg composition pipeline.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/mediagen/gkectl/internal/media"
)

const serviceVersion = "2.0.0"

// CombineFunc renders a clip timeline into a single video file.
type CombineFunc func(ctx context.Context, clips []media.Clip, audioPath, workDir string) (*media.Result, error)

// Server wires the HTTP surface, object store and media pipeline
// together.
type Server struct {
	cfg    Config
	store  ObjectStore
	log    *logrus.Logger
	engine *gin.Engine

	// combine defaults to media.Combine; tests inject a stub.
	combine CombineFunc

	registry          *prometheus.Registry
	requestsTotal     *prometheus.CounterVec
	processingSeconds prometheus.Histogram
}

// NewServer builds a Server with routes and metrics registered.
func NewServer(cfg Config, store ObjectStore, log *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:      cfg,
		store:    store,
		log:      log,
		combine:  media.Combine,
		registry: prometheus.NewRegistry(),
	}

	s.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_api_requests_total",
		Help: "HTTP requests handled, by path and status code.",
	}, []string{"path", "code"})
	s.processingSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "media_api_processing_seconds",
		Help:    "Wall-clock time spent rendering compositions.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
	s.registry.MustRegister(
		s.requestsTotal,
		s.processingSeconds,
		collectors.NewGoCollector(),
	)

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.observe())

	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/api/media", s.handleMedia)
	s.engine.POST("/api/process_media", s.handleProcessMedia)
	s.engine.POST("/api/signed_url", s.handleSignedURL)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	return s
}

// Handler returns the full middleware stack, CORS outermost.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.engine)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("port", s.cfg.Port).Info("media API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// observe logs each request and feeds the request counter.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		s.requestsTotal.WithLabelValues(path, fmt.Sprintf("%d", status)).Inc()
		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     path,
			"status":   status,
			"duration": time.Since(start).String(),
		}).Info("request handled")
	}
}
