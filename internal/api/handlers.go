package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/reporting"
)

// defaultListLimit applies when a list request has no limit.
const defaultListLimit = 50

// runRequest starts a single-portfolio analysis. A nil Parameters uses defaults.
type runRequest struct {
	Parameters *domain.PortfolioParameters `json:"parameters"`
	Seed       *uint64                     `json:"seed,omitempty"`
}

// runResponse omits per-realization results, which GET returns on request.
type runResponse struct {
	ID          string                     `json:"id"`
	Timestamp   time.Time                  `json:"timestamp"`
	Fingerprint string                     `json:"fingerprint"`
	Seed        uint64                     `json:"seed"`
	Parameters  domain.PortfolioParameters `json:"parameters"`
	Summary     domain.SummaryStatistics   `json:"summary"`
	Bands       []domain.YearlyMetricsBand `json:"bands,omitempty"`
	Errors      []string                   `json:"errors,omitempty"`
}

// listItem is one row of a list response.
type listItem struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Fingerprint string    `json:"fingerprint"`
	Seed        uint64    `json:"seed"`
	MedianMOIC  float64   `json:"medianMOIC,omitempty"`
	Scenarios   int       `json:"scenarios,omitempty"`
}

func (s *Server) handleCreateRun(c *gin.Context) {
	var req runRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	params := domain.DefaultPortfolioParameters()
	if req.Parameters != nil {
		params = *req.Parameters
	}
	seed := s.orch.DefaultSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	out, err := s.orch.RunSeeded(c.Request.Context(), params, seed)
	if err != nil {
		s.respondError(c, err)
		return
	}

	rec := out.Record
	c.JSON(http.StatusCreated, runResponse{
		ID:          rec.ID,
		Timestamp:   rec.Timestamp,
		Fingerprint: rec.Fingerprint,
		Seed:        rec.Seed,
		Parameters:  rec.Parameters,
		Summary:     rec.Summary,
		Bands:       out.Bands,
		Errors:      out.Errors,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	records, err := s.runs.List(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}

	items := make([]listItem, 0, len(records))
	for _, r := range records {
		items = append(items, listItem{
			ID:          r.ID,
			Timestamp:   r.Timestamp,
			Fingerprint: r.Fingerprint,
			Seed:        r.Seed,
			MedianMOIC:  r.Summary.MedianMOIC,
		})
	}
	c.JSON(http.StatusOK, gin.H{"runs": items})
}

func (s *Server) handleGetRun(c *gin.Context) {
	rec, err := s.runs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if c.Query("results") != "true" {
		rec.Results = nil
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDeleteRun(c *gin.Context) {
	if err := s.runs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetTimeline(c *gin.Context) {
	if s.bands == nil {
		errorResponse(c, http.StatusNotFound, "timeline storage is not configured")
		return
	}
	bands, err := s.bands.GetByRunID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runId": c.Param("id"), "bands": bands})
}

func (s *Server) handleRunReport(c *gin.Context) {
	report, err := s.reports.RunReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(reporting.RenderRunMarkdown(report)))
}

// handleVerifyRun replays a stored run and reports any divergence.
func (s *Server) handleVerifyRun(c *gin.Context) {
	result, err := s.verify.VerifyRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !result.Match {
		s.logger.Warn().
			Str("run_id", result.RunID).
			Int("divergences", len(result.Divergences)).
			Msg("run did not reproduce")
	}
	c.JSON(http.StatusOK, result)
}

// gridRequest starts a grid analysis. A nil Parameters uses defaults.
type gridRequest struct {
	Parameters *domain.GridAnalysisParameters `json:"parameters"`
	Seed       *uint64                        `json:"seed,omitempty"`
}

func (r gridRequest) resolve(defaultSeed uint64) (domain.GridAnalysisParameters, uint64) {
	params := domain.DefaultGridAnalysisParameters()
	if r.Parameters != nil {
		params = *r.Parameters
	}
	seed := defaultSeed
	if r.Seed != nil {
		seed = *r.Seed
	}
	return params, seed
}

func (s *Server) handleCreateGrid(c *gin.Context) {
	var req gridRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	params, seed := req.resolve(s.orch.DefaultSeed())

	rec, err := s.orch.RunGridSeeded(c.Request.Context(), params, seed, nil)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, withoutResults(rec))
}

func (s *Server) handleListGrids(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	records, err := s.grids.List(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}

	items := make([]listItem, 0, len(records))
	for _, g := range records {
		items = append(items, listItem{
			ID:          g.ID,
			Timestamp:   g.Timestamp,
			Fingerprint: g.Fingerprint,
			Seed:        g.Seed,
			Scenarios:   len(g.Scenarios),
		})
	}
	c.JSON(http.StatusOK, gin.H{"gridAnalyses": items})
}

func (s *Server) handleGetGrid(c *gin.Context) {
	rec, err := s.grids.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if c.Query("results") != "true" {
		rec = withoutResults(rec)
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDeleteGrid(c *gin.Context) {
	if err := s.grids.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGridReport(c *gin.Context) {
	report, err := s.reports.GridReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(reporting.RenderGridMarkdown(report)))
}

// withoutResults returns a copy of rec with per-cell realizations dropped.
func withoutResults(rec *domain.GridAnalysisRecord) *domain.GridAnalysisRecord {
	out := *rec
	out.Scenarios = make([]domain.GridScenario, len(rec.Scenarios))
	for i, sc := range rec.Scenarios {
		sc.Results = nil
		out.Scenarios[i] = sc
	}
	return &out
}

// bindOptionalJSON binds a JSON body, treating an empty body as a zero request.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// parseLimit reads ?limit=, writing a 400 on bad input.
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		errorResponse(c, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
		return 0, false
	}
	return limit, true
}
