package models

import (
	"fmt"
	"strings"
	"time"
)

// RegistroTipo distinguishes monthly from daily production records.
type RegistroTipo string

const (
	RegistroMensal RegistroTipo = "M"
	RegistroDiario RegistroTipo = "D"
)

// DateLayout is the wire format of data_registro.
const DateLayout = "2006-01-02"

// MonthLayout is the input format of a monthly record.
const MonthLayout = "2006-01"

// ProducaoRegistro stores monthly or daily throughput counters. At most one
// record exists per data_registro.
type ProducaoRegistro struct {
	ID               string       `db:"id" json:"id"`
	DataRegistro     string       `db:"data_registro" json:"data_registro"`
	TipoRegistro     RegistroTipo `db:"tipo_registro" json:"tipo_registro"`
	QuantidadeMensal int          `db:"quantidade_mensal" json:"quantidade_mensal"`
	QuantidadeDiaria int          `db:"quantidade_diaria" json:"quantidade_diaria"`
	ObservacaoMensal *string      `db:"observacao_mensal" json:"observacao_mensal"`
	ObservacaoDiaria *string      `db:"observacao_diaria" json:"observacao_diaria"`
	Responsavel      string       `db:"responsavel" json:"responsavel"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
}

// NormalizeRegistroDate validates data_registro for the given type and
// returns it as YYYY-MM-DD. Monthly records accept YYYY-MM or a full date and
// always land on the first day of the month.
func NormalizeRegistroDate(tipo RegistroTipo, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch tipo {
	case RegistroMensal:
		if t, err := time.Parse(MonthLayout, raw); err == nil {
			return t.Format(DateLayout), nil
		}
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return "", fmt.Errorf("invalid month %q, expected YYYY-MM", raw)
		}
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Format(DateLayout), nil
	case RegistroDiario:
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
		}
		return t.Format(DateLayout), nil
	default:
		return "", fmt.Errorf("invalid tipo_registro %q", tipo)
	}
}
