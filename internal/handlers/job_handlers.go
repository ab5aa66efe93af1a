package handlers

import (
	"context"
	"net/http"

	"marketmedia/internal/common"
	"marketmedia/internal/services"

	"github.com/labstack/echo/v4"
)

// JobRunner is the part of the background scheduler exposed to operators.
type JobRunner interface {
	GetJobStatus() map[string]any
	RunDriftAudit(ctx context.Context) error
	LastDriftReport() *services.DriftReport
}

type JobHandlers struct {
	runner JobRunner
}

func NewJobHandlers(runner JobRunner) *JobHandlers {
	return &JobHandlers{runner: runner}
}

// JobStatus godoc
// @Summary      Scheduled maintenance jobs
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/admin/jobs [get]
func (h *JobHandlers) JobStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.runner.GetJobStatus())
}

// LastDriftReport godoc
// @Summary      Result of the most recent storage drift audit
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  services.DriftReport
// @Failure      404  {object}  common.ErrorResponse
// @Router       /api/admin/jobs/drift-audit [get]
func (h *JobHandlers) LastDriftReport(c echo.Context) error {
	report := h.runner.LastDriftReport()
	if report == nil {
		return c.JSON(http.StatusNotFound, common.CreateErrorResponse("NOT_FOUND", "No drift audit has run yet", nil))
	}
	return c.JSON(http.StatusOK, report)
}

// RunDriftAudit godoc
// @Summary      Run the storage drift audit now
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  services.DriftReport
// @Failure      500  {object}  common.ErrorResponse
// @Router       /api/admin/jobs/drift-audit [post]
func (h *JobHandlers) RunDriftAudit(c echo.Context) error {
	if err := h.runner.RunDriftAudit(c.Request().Context()); err != nil {
		return common.SendServerError(c, "Drift audit failed")
	}
	return c.JSON(http.StatusOK, h.runner.LastDriftReport())
}
