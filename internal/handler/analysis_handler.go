package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qc-checklist/internal/middleware"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
	"github.com/noah-isme/qc-checklist/pkg/response"
)

type analysisService interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResponse, error)
}

// AnalysisHandler answers natural-language questions about defect data.
type AnalysisHandler struct {
	service analysisService
}

// NewAnalysisHandler constructs the handler.
func NewAnalysisHandler(svc analysisService) *AnalysisHandler {
	return &AnalysisHandler{service: svc}
}

// Analyze godoc
// @Summary Analyze defect data
// @Tags Analysis
// @Accept json
// @Produce json
// @Param payload body models.AnalysisRequest true "Question"
// @Success 200 {object} models.AnalysisResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 503 {object} response.ErrorBody
// @Router /analyze [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid analysis payload"))
		return
	}
	res, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, middleware.ExtractMeta(c))
}
