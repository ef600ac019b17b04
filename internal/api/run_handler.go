package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fafnerzhang/codetrekking/internal/repository"

	"github.com/gin-gonic/gin"
)

// RunHandler exposes the planning-run audit records.
type RunHandler struct {
	runRepo repository.RunRepository
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runRepo repository.RunRepository) *RunHandler {
	return &RunHandler{runRepo: runRepo}
}

// ListRuns handles GET /runs.
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	runs, err := h.runRepo.List(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list planning runs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun handles GET /runs/:id.
func (h *RunHandler) GetRun(c *gin.Context) {
	runID := c.Param("id")

	run, err := h.runRepo.GetByID(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Planning run not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load planning run")
		return
	}
	c.JSON(http.StatusOK, run)
}
