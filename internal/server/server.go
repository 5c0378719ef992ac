// Package server exposes the symdiff tools over HTTP.
//
// Routes:
//   - POST /tool   execute a tool call
//   - POST /derive derivative forms of one expression
//   - GET  /schema tool schema for agent registration
//   - GET  /health liveness check
//   - GET  /metrics Prometheus metrics
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/config"
	"github.com/njchilds90/symdiff/internal/logging"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Server wraps the gin router and the shared derivative pipeline.
type Server struct {
	router  *gin.Engine
	deriver *symdiff.Deriver
	toolbox *symdiff.Toolbox
	logger  *logging.Logger
	config  *config.Config
	metrics *Metrics
	started time.Time
}

// New builds a server from cfg. A nil logger disables logging.
func New(cfg *config.Config, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	deriver := symdiff.NewDeriver(
		symdiff.WithLogger(logger.Named("deriver")),
		symdiff.WithMaxPasses(cfg.Engine.MaxPasses),
		symdiff.WithSecondDerivative(cfg.Engine.SecondDerivative),
	)
	s := &Server{
		deriver: deriver,
		toolbox: symdiff.NewToolbox(deriver, symdiff.SampleOptions{Workers: cfg.Engine.SampleWorkers}),
		logger:  logger,
		config:  cfg,
		metrics: NewMetrics(),
		started: time.Now(),
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(accessLog(logger.Logger))
	router.Use(metricsMiddleware(s.metrics))
	router.Use(corsMiddleware())
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(rateLimit(RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.POST("/tool", s.handleTool)
	router.POST("/derive", s.handleDerive)
	router.GET("/schema", s.handleSchema)
	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.router = router
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	_ = s.logger.Sync()
	return nil
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleTool(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req symdiff.ToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Tool == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing tool"})
		return
	}

	resp := s.toolbox.Handle(c.Request.Context(), req)
	s.metrics.RecordToolCall(req.Tool, resp.Error != "")
	c.JSON(http.StatusOK, resp)
}

// DeriveRequest is the body of POST /derive.
type DeriveRequest struct {
	Expr     string `json:"expr" binding:"required"`
	Variable string `json:"variable"`
}

// DeriveResponse is the body returned by POST /derive.
type DeriveResponse struct {
	Input    string         `json:"input"`
	Variable string         `json:"variable"`
	OK       bool           `json:"ok"`
	Kind     string         `json:"kind"`
	Message  string         `json:"message"`
	First    *symdiff.Forms `json:"first,omitempty"`
	Second   *symdiff.Forms `json:"second,omitempty"`
}

func (s *Server) handleDerive(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req DeriveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Variable == "" {
		req.Variable = s.config.Engine.Variable
	}

	res := s.deriver.ComputeDerivative(req.Expr, req.Variable)
	s.metrics.RecordDerivation(res.Kind().String())

	status := http.StatusOK
	if !res.OK() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, DeriveResponse{
		Input:    res.Input,
		Variable: res.Variable,
		OK:       res.OK(),
		Kind:     res.Kind().String(),
		Message:  res.Message(),
		First:    res.First,
		Second:   res.Second,
	})
}

func (s *Server) handleSchema(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", []byte(symdiff.MCPToolSpec()))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}
