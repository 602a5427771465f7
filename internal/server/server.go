package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omegabonobo/greedy-room-scheduler/internal/engines/assigner"
	"github.com/omegabonobo/greedy-room-scheduler/internal/engines/common"
	"github.com/omegabonobo/greedy-room-scheduler/internal/logging"
	"github.com/omegabonobo/greedy-room-scheduler/internal/metrics"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// AssignerFactory creates the assigner of one run.
type AssignerFactory func(strategy assigner.Strategy, spec *config.OptimizerSpec) (assigner.Assigner, error)

// Server exposes scheduling over HTTP.
type Server struct {
	global      *common.GlobalConfig
	metrics     *metrics.Metrics
	results     *common.ResultCache
	newAssigner AssignerFactory
}

// New creates a server reading its live configuration from global.
func New(global *common.GlobalConfig, m *metrics.Metrics, results *common.ResultCache) (*Server, error) {
	if global == nil {
		return nil, fmt.Errorf("global config cannot be nil")
	}
	if results == nil {
		results = common.NewResultCache(common.DefaultResultCacheSize)
	}
	return &Server{
		global:      global,
		metrics:     m,
		results:     results,
		newAssigner: assigner.NewAssigner,
	}, nil
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := r.Group("/v1")
	v1.POST("/schedule", s.Schedule)
	v1.GET("/schedule/:runId", s.GetSchedule)
	v1.GET("/rooms", s.Rooms)
	return r
}

// observe logs and measures every request and passes a request-scoped logger down.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logger := logging.Log().WithValues("method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(), logger))

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		duration := time.Since(start)
		s.metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), duration)
		logger.V(logging.DEBUG).Info("Handled request", "status", c.Writer.Status(), "duration", duration.String())
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger := logging.FromContext(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
