// Package api exposes analyses over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Psymen/fundsimulation-sub000/internal/observability"
	"github.com/Psymen/fundsimulation-sub000/internal/orchestrator"
	"github.com/Psymen/fundsimulation-sub000/internal/reporting"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
	"github.com/Psymen/fundsimulation-sub000/internal/verification"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

// Server is the HTTP API server.
type Server struct {
	router  *gin.Engine
	orch    *orchestrator.Orchestrator
	runs    storage.RunStore
	grids   storage.GridAnalysisStore
	bands   storage.TimelineBandStore
	reports *reporting.Generator
	verify  verification.Verifier
	logger  zerolog.Logger
}

// Options configures a Server.
type Options struct {
	Orchestrator *orchestrator.Orchestrator

	RunStore  storage.RunStore
	GridStore storage.GridAnalysisStore
	BandStore storage.TimelineBandStore // optional

	// CORSOrigins lists allowed browser origins. Empty allows none.
	CORSOrigins []string

	// VerifyWorkers bounds replay parallelism. Zero means GOMAXPROCS.
	VerifyWorkers int

	ReleaseMode bool
	Logger      zerolog.Logger
}

// NewServer creates a new API server with all routes registered.
func NewServer(opts Options) *Server {
	if opts.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:  router,
		orch:    opts.Orchestrator,
		runs:    opts.RunStore,
		grids:   opts.GridStore,
		bands:   opts.BandStore,
		reports: reporting.NewGenerator(opts.RunStore, opts.GridStore, opts.BandStore),
		verify: verification.NewReplayVerifier(verification.ReplayVerifierOptions{
			RunStore: opts.RunStore,
			Workers:  opts.VerifyWorkers,
		}),
		logger: opts.Logger,
	}
	router.Use(s.requestLogger())

	if len(opts.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		if slices.Contains(opts.CORSOrigins, "*") {
			corsConfig.AllowAllOrigins = true
		} else {
			corsConfig.AllowOrigins = opts.CORSOrigins
		}
		corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
		corsConfig.ExposeHeaders = []string{"Content-Length"}
		router.Use(cors.New(corsConfig))
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(observability.Handler()))

	v1 := s.router.Group("/api/v1")

	runs := v1.Group("/runs")
	runs.POST("", s.handleCreateRun)
	runs.GET("", s.handleListRuns)
	runs.GET("/:id", s.handleGetRun)
	runs.DELETE("/:id", s.handleDeleteRun)
	runs.GET("/:id/timeline", s.handleGetTimeline)
	runs.GET("/:id/report", s.handleRunReport)
	runs.POST("/:id/verify", s.handleVerifyRun)

	grids := v1.Group("/grid-analyses")
	grids.POST("", s.handleCreateGrid)
	grids.GET("", s.handleListGrids)
	grids.GET("/stream", s.handleGridStream)
	grids.GET("/:id", s.handleGetGrid)
	grids.DELETE("/:id", s.handleDeleteGrid)
	grids.GET("/:id/report", s.handleGridReport)

	feeRoutes := v1.Group("/fees")
	feeRoutes.POST("/net-returns", s.handleNetReturns)
	feeRoutes.POST("/drag-table", s.handleDragTable)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// requestLogger logs each request and counts it by route and status.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		observability.RecordHTTPRequest(route, strconv.Itoa(status))

		event := s.logger.Debug()
		if status >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
