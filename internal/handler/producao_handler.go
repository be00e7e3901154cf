package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	"github.com/noah-isme/qc-checklist/internal/service"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
	"github.com/noah-isme/qc-checklist/pkg/response"
)

type producaoService interface {
	Create(ctx context.Context, req dto.CreateProducaoRequest, meta service.AuditMeta) (*models.ProducaoRegistro, error)
	List(ctx context.Context) ([]models.ProducaoRegistro, error)
	Delete(ctx context.Context, id string, meta service.AuditMeta) error
}

// ProducaoHandler exposes production volume records.
type ProducaoHandler struct {
	service producaoService
}

// NewProducaoHandler constructs the handler.
func NewProducaoHandler(svc producaoService) *ProducaoHandler {
	return &ProducaoHandler{service: svc}
}

// List godoc
// @Summary List production records
// @Tags Producao
// @Produce json
// @Success 200 {array} models.ProducaoRegistro
// @Router /producao/ [get]
func (h *ProducaoHandler) List(c *gin.Context) {
	records, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Create godoc
// @Summary Register production volume
// @Description One record per date. Monthly records are stored on the first day of the month.
// @Tags Producao
// @Accept json
// @Produce json
// @Param payload body dto.CreateProducaoRequest true "Record"
// @Success 201 {object} models.ProducaoRegistro
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /producao/ [post]
func (h *ProducaoHandler) Create(c *gin.Context) {
	var req dto.CreateProducaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid production payload"))
		return
	}
	reg, err := h.service.Create(c.Request.Context(), req, auditMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reg)
}

// Delete godoc
// @Summary Delete production record
// @Tags Producao
// @Param id path string true "Record ID"
// @Success 204
// @Failure 404 {object} response.ErrorBody
// @Router /producao/{id} [delete]
func (h *ProducaoHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), auditMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
