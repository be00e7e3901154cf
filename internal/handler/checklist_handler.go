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

type checklistService interface {
	Create(ctx context.Context, req dto.CreateChecklistRequest, meta service.AuditMeta) (*models.Checklist, error)
	List(ctx context.Context, query dto.ListChecklistsQuery) (*models.ChecklistPage, error)
	Get(ctx context.Context, id string) (*models.Checklist, error)
	Update(ctx context.Context, id string, req dto.UpdateChecklistRequest, meta service.AuditMeta) (*models.Checklist, error)
}

type checklistExporter interface {
	Checklists(ctx context.Context, query dto.ExportChecklistsQuery) (*service.ExportResult, error)
}

// ChecklistHandler exposes checklist document endpoints.
type ChecklistHandler struct {
	service  checklistService
	exporter checklistExporter
}

// NewChecklistHandler constructs the handler.
func NewChecklistHandler(svc checklistService, exporter checklistExporter) *ChecklistHandler {
	return &ChecklistHandler{service: svc, exporter: exporter}
}

// Create godoc
// @Summary Create checklist
// @Description Registers a checklist document. Routed documents start PENDENTE without failures.
// @Tags Checklists
// @Accept json
// @Produce json
// @Param payload body dto.CreateChecklistRequest true "Checklist payload"
// @Success 201 {object} models.Checklist
// @Failure 400 {object} response.ErrorBody
// @Router /checklists/ [post]
func (h *ChecklistHandler) Create(c *gin.Context) {
	var req dto.CreateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid checklist payload"))
		return
	}
	doc, err := h.service.Create(c.Request.Context(), req, auditMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// List godoc
// @Summary List checklists
// @Tags Checklists
// @Produce json
// @Param status query string false "PENDENTE or COMPLETO"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Product, author or document id"
// @Success 200 {object} models.ChecklistPage
// @Router /checklists/ [get]
func (h *ChecklistHandler) List(c *gin.Context) {
	var query dto.ListChecklistsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	page, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// Export godoc
// @Summary Export checklist history
// @Tags Checklists
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "PENDENTE or COMPLETO"
// @Success 200 {file} file
// @Router /checklists/export [get]
func (h *ChecklistHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrUnavailable)
		return
	}
	var query dto.ExportChecklistsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	res, err := h.exporter.Checklists(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	c.Data(http.StatusOK, res.ContentType, res.Payload)
}

// Get godoc
// @Summary Get checklist
// @Tags Checklists
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} models.Checklist
// @Failure 404 {object} response.ErrorBody
// @Router /checklists/{id} [get]
func (h *ChecklistHandler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

// Update godoc
// @Summary Update checklist
// @Description Assistance edit. Completing a PENDENTE document stamps the assistance author and completion time.
// @Tags Checklists
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.UpdateChecklistRequest true "Fields to change"
// @Success 200 {object} models.Checklist
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /checklists/{id} [patch]
func (h *ChecklistHandler) Update(c *gin.Context) {
	var req dto.UpdateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid checklist update"))
		return
	}
	doc, err := h.service.Update(c.Request.Context(), c.Param("id"), req, auditMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}
