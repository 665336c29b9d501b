// Package api exposes the binning and search services over HTTP.
package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"stablebin/adapters/report"
	"stablebin/app"
	"stablebin/domain/core"
	"stablebin/ports"
)

// Handler wires the services into gin routes.
type Handler struct {
	binning *app.BinningService
	search  *app.SearchService
	ledger  ports.TrialLedgerPort
}

// NewHandler creates the API handler.
func NewHandler(binning *app.BinningService, search *app.SearchService, ledger ports.TrialLedgerPort) *Handler {
	return &Handler{binning: binning, search: search, ledger: ledger}
}

// Register mounts the routes on a router group.
func (h *Handler) Register(r *gin.Engine) {
	v1 := r.Group("/v1")
	v1.POST("/fit", h.HandleFit)
	v1.POST("/search", h.HandleSearch)
	v1.GET("/runs/:id/trials", h.HandleListTrials)
	v1.POST("/report", h.HandleReport)
}

// HandleFit runs a single fit and returns the bin set, metrics, WoE table and
// composite score.
func (h *Handler) HandleFit(c *gin.Context) {
	var req app.FitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.binning.Fit(c.Request.Context(), req)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, core.ErrInvalidConfig) || errors.Is(err, core.ErrInvalidPartition) {
			status = http.StatusBadRequest
		}
		// The caller is told the specific constraint that failed; no silently
		// degraded result.
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleSearch runs a hyperparameter search and returns the trial history and
// the refit best result.
func (h *Handler) HandleSearch(c *gin.Context) {
	var req app.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.search.Run(c.Request.Context(), req)
	if err != nil {
		log.Printf("[API] search failed: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleListTrials returns a run's append-only trial history.
func (h *Handler) HandleListTrials(c *gin.Context) {
	runID, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trials, err := h.ledger.ListTrialsByRun(c.Request.Context(), runID)
	if err != nil {
		log.Printf("[API] failed to list trials: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve trials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "trials": trials, "count": len(trials)})
}

// HandleReport runs a fit and returns the rendered HTML report.
func (h *Handler) HandleReport(c *gin.Context) {
	var req app.FitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.binning.Fit(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	md := report.BuildFitReport(result)
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.RenderHTML(md))
}
