// Package httpserver exposes a read-only HTTP API over a running engine:
// health, metric definitions, history snapshots, and resolved bar ranges.
// It is a query surface only; sampling stays entirely tick-driven.
package httpserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tinytelemetry/perfhud/internal/model"
	"github.com/tinytelemetry/perfhud/internal/sampler"
	"github.com/tinytelemetry/perfhud/internal/scale"
)

// MetricsAPI is the narrow engine contract the HTTP API requires.
type MetricsAPI interface {
	model.DefinitionReader
	model.HistoryReader
	Resolve(id string, cfg scale.Config) (scale.Range, error)
	Diagnostics() []sampler.ProviderDiagnostics
	Ticks() int64
}

// Server provides the HTTP API for querying perfhud metrics.
type Server struct {
	addr   string
	api    MetricsAPI
	scales map[string]scale.Config

	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server. scales maps metric ids to
// their configured bar scale; ids without an entry have no range
// endpoint.
func NewServer(addr string, api MetricsAPI, scales map[string]scale.Config) *Server {
	if addr == "" {
		addr = "127.0.0.1:3141"
	}
	if scales == nil {
		scales = make(map[string]scale.Config)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   addr,
		api:    api,
		scales: scales,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	s.routes(r)

	s.server = &http.Server{
		Handler:           r,
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/api/health", s.handleHealth)
	r.GET("/api/metrics", s.handleMetrics)
	r.GET("/api/metrics/:id/history", s.handleHistory)
	r.GET("/api/metrics/:id/range", s.handleRange)
	r.GET("/api/diagnostics", s.handleDiagnostics)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  time.Since(s.startTime).String(),
		"ticks":   s.api.Ticks(),
		"metrics": len(s.api.Definitions()),
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	defs := s.api.Definitions()
	out := make([]gin.H, 0, len(defs))
	for _, def := range defs {
		out = append(out, gin.H{
			"id":        def.ID,
			"label":     def.DisplayLabel(),
			"unit":      def.Unit,
			"precision": def.Precision,
			"color":     def.Color.Hex(),
			"samples":   s.api.Count(def.ID),
		})
	}
	c.JSON(http.StatusOK, gin.H{"metrics": out})
}

func (s *Server) handleHistory(c *gin.Context) {
	id := c.Param("id")
	if !s.knownMetric(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown metric id"})
		return
	}

	var values []float64
	if nStr := c.Query("n"); nStr != "" {
		n, err := strconv.Atoi(nStr)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
			return
		}
		values = s.api.RecentWindow(id, n)
	} else {
		values = s.api.Snapshot(id)
	}
	if values == nil {
		values = []float64{}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     id,
		"count":  s.api.Count(id),
		"values": values,
	})
}

func (s *Server) handleRange(c *gin.Context) {
	id := c.Param("id")
	cfg, ok := s.scales[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scale configured for metric"})
		return
	}

	rng, err := s.api.Resolve(id, cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":  id,
		"min": rng.Min,
		"max": rng.Max,
	})
}

func (s *Server) handleDiagnostics(c *gin.Context) {
	diags := s.api.Diagnostics()
	out := make([]gin.H, 0, len(diags))
	for _, d := range diags {
		entry := gin.H{
			"metric_id": d.MetricID,
			"overruns":  d.Overruns,
		}
		if !d.LastSample.IsZero() {
			entry["last_sample"] = d.LastSample.UTC().Format(time.RFC3339Nano)
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"providers": out})
}

// knownMetric reports whether id exists in either registry: a definition
// without history and history without a definition are both queryable.
func (s *Server) knownMetric(id string) bool {
	if _, ok := s.api.Definition(id); ok {
		return true
	}
	return s.api.Count(id) > 0
}
