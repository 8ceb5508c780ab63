package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studyflow-api/internal/dto"
	"github.com/noah-isme/studyflow-api/internal/middleware"
	"github.com/noah-isme/studyflow-api/internal/service"
	appErrors "github.com/noah-isme/studyflow-api/pkg/errors"
	"github.com/noah-isme/studyflow-api/pkg/response"
)

type planManager interface {
	Generate(ctx context.Context, userID string, req dto.GeneratePlanRequest) (*dto.PlanResponse, error)
	Current(ctx context.Context, userID string) (*dto.PlanResponse, bool, error)
}

type planExporter interface {
	ExportCurrent(ctx context.Context, userID string, format service.ExportFormat) (*service.ExportPayload, error)
}

// PlanHandler exposes schedule generation and retrieval endpoints.
type PlanHandler struct {
	plans    planManager
	exporter planExporter
}

// NewPlanHandler constructs the handler.
func NewPlanHandler(plans *service.PlanService, exporter *service.ExportService) *PlanHandler {
	return &PlanHandler{plans: plans, exporter: exporter}
}

// Generate godoc
// @Summary Generate a study plan
// @Description Builds a fresh schedule from open tasks, events, preferences and completion history. The previous active plan is superseded.
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body dto.GeneratePlanRequest false "Generation options"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /plans/generate [post]
func (h *PlanHandler) Generate(c *gin.Context) {
	var req dto.GeneratePlanRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
			return
		}
	}

	plan, err := h.plans.Generate(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, plan)
}

// Current godoc
// @Summary Get the active study plan
// @Description Returns the active plan, served from cache when available
// @Tags Plans
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plans/current [get]
func (h *PlanHandler) Current(c *gin.Context) {
	plan, cached, err := h.plans.Current(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, plan, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export the active study plan
// @Description Downloads the active plan as CSV or PDF
// @Tags Plans
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format (csv or pdf), defaults to csv"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plans/current/export [get]
func (h *PlanHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.exporter.ExportCurrent(c.Request.Context(), currentUserID(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payload.Filename))
	c.Data(http.StatusOK, payload.ContentType, payload.Data)
}
