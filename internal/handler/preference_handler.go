package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studyflow-api/internal/dto"
	"github.com/noah-isme/studyflow-api/internal/service"
	appErrors "github.com/noah-isme/studyflow-api/pkg/errors"
	"github.com/noah-isme/studyflow-api/pkg/response"
)

type preferenceManager interface {
	Get(ctx context.Context, userID string) (*dto.PreferenceResponse, error)
	Update(ctx context.Context, userID string, req dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error)
}

// PreferenceHandler exposes study preference endpoints.
type PreferenceHandler struct {
	service preferenceManager
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(svc *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: svc}
}

// Get godoc
// @Summary Get study preferences
// @Description Returns the current user's preferences, falling back to defaults
// @Tags Preferences
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /preferences [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	prefs, err := h.service.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs, nil)
}

// Update godoc
// @Summary Update study preferences
// @Tags Preferences
// @Accept json
// @Produce json
// @Param payload body dto.UpdatePreferenceRequest true "Preference payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /preferences [put]
func (h *PreferenceHandler) Update(c *gin.Context) {
	var req dto.UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preference payload"))
		return
	}

	prefs, err := h.service.Update(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, prefs, nil)
}
