package models

import (
	"strings"
	"time"
)

// ChecklistStatus captures the workflow state of a checklist document.
type ChecklistStatus string

const (
	ChecklistStatusPendente ChecklistStatus = "PENDENTE"
	ChecklistStatusCompleto ChecklistStatus = "COMPLETO"
)

// Valid reports whether the status is a known state.
func (s ChecklistStatus) Valid() bool {
	return s == ChecklistStatusPendente || s == ChecklistStatusCompleto
}

// Checklist is one unit of defect tracking for a produced board.
type Checklist struct {
	DocumentoID            string          `db:"documento_id" json:"documento_id"`
	Produto                string          `db:"produto" json:"produto"`
	Quantidade             int             `db:"quantidade" json:"quantidade"`
	Status                 ChecklistStatus `db:"status" json:"status"`
	Responsavel            string          `db:"responsavel" json:"responsavel"`
	DataCriacao            time.Time       `db:"data_criacao" json:"data_criacao"`
	ResponsavelAssistencia *string         `db:"responsavel_assistencia" json:"responsavel_assistencia"`
	DataFinalizacao        *time.Time      `db:"data_finalizacao" json:"data_finalizacao"`
	Falhas                 FailureList     `db:"falhas_json" json:"falhas"`
	ObservacaoProducao     *string         `db:"observacao_producao" json:"observacao_producao"`
	ObservacaoAssistencia  *string         `db:"observacao_assistencia" json:"observacao_assistencia"`

	// Documents written before failure lists existed carry a single failure
	// in flat columns and a general remark in observacao. Normalize folds the
	// flat failure into Falhas; observacao is kept until an update copies it
	// into observacao_producao.
	Observacao        *string `db:"observacao" json:"observacao,omitempty"`
	LegacyFalha       *string `db:"falha" json:"falha,omitempty"`
	LegacySetor       *string `db:"setor" json:"setor,omitempty"`
	LegacyLocalizacao *string `db:"localizacao_componente" json:"localizacao_componente,omitempty"`
	LegacyLadoPlaca   *string `db:"lado_placa" json:"lado_placa,omitempty"`
	FalhasJSON        *string `db:"-" json:"falhas_json,omitempty"`
}

// Normalize projects legacy representations into the canonical Falhas list
// and clears them. A serialized falhas_json takes precedence over the flat
// single-failure fields.
func (c *Checklist) Normalize() error {
	if c == nil {
		return nil
	}
	if len(c.Falhas) == 0 && c.FalhasJSON != nil {
		list, err := DecodeFailures(*c.FalhasJSON)
		if err != nil {
			return err
		}
		c.Falhas = list
	}
	if len(c.Falhas) == 0 && (nonBlank(c.LegacyFalha) || nonBlank(c.LegacySetor)) {
		rec := FailureRecord{
			LocalizacaoComponente: optionalString(c.LegacyLocalizacao),
		}
		if c.LegacyFalha != nil {
			rec.Falha = strings.TrimSpace(*c.LegacyFalha)
		}
		if c.LegacySetor != nil {
			rec.Setor = strings.TrimSpace(*c.LegacySetor)
		}
		if side := optionalString(c.LegacyLadoPlaca); side != nil {
			b := BoardSide(strings.ToLower(*side))
			rec.LadoPlaca = &b
		}
		c.Falhas = FailureList{rec}
	}
	if c.Falhas == nil {
		c.Falhas = FailureList{}
	}
	c.LegacyFalha = nil
	c.LegacySetor = nil
	c.LegacyLocalizacao = nil
	c.LegacyLadoPlaca = nil
	c.FalhasJSON = nil
	return nil
}

// ProductionRemark returns the production remark, falling back to the
// legacy general observation.
func (c *Checklist) ProductionRemark() string {
	if c == nil {
		return ""
	}
	if nonBlank(c.ObservacaoProducao) {
		return *c.ObservacaoProducao
	}
	if nonBlank(c.Observacao) {
		return *c.Observacao
	}
	return ""
}

// NeedsRemarkCopyForward reports whether a legacy observacao must be copied
// into observacao_producao on the next update.
func (c *Checklist) NeedsRemarkCopyForward() bool {
	return c != nil && nonBlank(c.Observacao) && !nonBlank(c.ObservacaoProducao)
}

// ChecklistFilter constrains listing queries.
type ChecklistFilter struct {
	Status *ChecklistStatus
	Search string
	Since  *time.Time
	Page   int
	Limit  int
}

// ChecklistPage is the list contract of GET /checklists/.
type ChecklistPage struct {
	Items      []Checklist `json:"items"`
	TotalCount int         `json:"total_count"`
}

func nonBlank(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}
