package dto

import "github.com/noah-isme/qc-checklist/internal/models"

// CreateChecklistRequest is the body of POST /checklists/.
type CreateChecklistRequest struct {
	Produto            string             `json:"produto" validate:"required"`
	Quantidade         int                `json:"quantidade" validate:"gt=0"`
	VaiParaAssistencia bool               `json:"vai_para_assistencia"`
	Responsavel        string             `json:"responsavel,omitempty"`
	Falhas             models.FailureList `json:"falhas"`
	ObservacaoProducao *string            `json:"observacao_producao,omitempty"`
}

// UpdateChecklistRequest is the body of PATCH /checklists/{id}. Absent fields
// are left untouched.
type UpdateChecklistRequest struct {
	Quantidade             *int                    `json:"quantidade,omitempty" validate:"omitempty,gt=0"`
	Status                 *models.ChecklistStatus `json:"status,omitempty" validate:"omitempty,oneof=PENDENTE COMPLETO"`
	ObservacaoAssistencia  *string                 `json:"observacao_assistencia,omitempty"`
	ObservacaoProducao     *string                 `json:"observacao_producao,omitempty"`
	ResponsavelAssistencia *string                 `json:"responsavel_assistencia,omitempty"`
	FalhasJSON             *string                 `json:"falhas_json,omitempty"`
}

// ListChecklistsQuery holds the query string of GET /checklists/.
type ListChecklistsQuery struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

// ExportChecklistsQuery holds the query string of GET /checklists/export.
type ExportChecklistsQuery struct {
	Format string `form:"format"`
	Status string `form:"status"`
	Search string `form:"search"`
}
