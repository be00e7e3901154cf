package dto

import "github.com/noah-isme/qc-checklist/internal/models"

// CreateProducaoRequest is the body of POST /producao/.
type CreateProducaoRequest struct {
	DataRegistro     string              `json:"data_registro" validate:"required"`
	TipoRegistro     models.RegistroTipo `json:"tipo_registro" validate:"required,oneof=M D"`
	QuantidadeMensal int                 `json:"quantidade_mensal" validate:"gte=0"`
	QuantidadeDiaria int                 `json:"quantidade_diaria" validate:"gte=0"`
	ObservacaoMensal *string             `json:"observacao_mensal,omitempty"`
	ObservacaoDiaria *string             `json:"observacao_diaria,omitempty"`
	Responsavel      string              `json:"responsavel,omitempty"`
}
