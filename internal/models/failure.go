package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

// BoardSide identifies which face of the board a defect was found on.
type BoardSide string

const (
	BoardSideTop BoardSide = "top"
	BoardSideBot BoardSide = "bot"
)

// FailureRecord is one defect found on a board.
type FailureRecord struct {
	Falha                 string     `json:"falha"`
	Setor                 string     `json:"setor"`
	LocalizacaoComponente *string    `json:"localizacao_componente"`
	LadoPlaca             *BoardSide `json:"lado_placa"`
	Observacao            *string    `json:"observacao"`
}

// UnmarshalJSON also accepts the per-failure remark under the older
// observacao_producao key.
func (f *FailureRecord) UnmarshalJSON(data []byte) error {
	type plain FailureRecord
	var aux struct {
		plain
		ObservacaoProducao *string `json:"observacao_producao"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = FailureRecord(aux.plain)
	if f.Observacao == nil && aux.ObservacaoProducao != nil {
		f.Observacao = aux.ObservacaoProducao
	}
	return nil
}

// Validate checks the required fields and the board side domain.
func (f FailureRecord) Validate() error {
	if strings.TrimSpace(f.Falha) == "" || strings.TrimSpace(f.Setor) == "" {
		return appErrors.Validation("falha and setor are required for every failure")
	}
	if f.LadoPlaca != nil && *f.LadoPlaca != BoardSideTop && *f.LadoPlaca != BoardSideBot {
		return appErrors.Validation(fmt.Sprintf("lado_placa must be %q or %q", BoardSideTop, BoardSideBot))
	}
	return nil
}

// Normalize returns a trimmed copy where blank optional fields become nil.
func (f FailureRecord) Normalize() FailureRecord {
	out := FailureRecord{
		Falha:                 strings.TrimSpace(f.Falha),
		Setor:                 strings.TrimSpace(f.Setor),
		LocalizacaoComponente: optionalString(f.LocalizacaoComponente),
		Observacao:            optionalString(f.Observacao),
	}
	if f.LadoPlaca != nil {
		side := BoardSide(strings.ToLower(strings.TrimSpace(string(*f.LadoPlaca))))
		if side != "" {
			out.LadoPlaca = &side
		}
	}
	return out
}

// FailureList is the ordered failure list of a checklist document.
type FailureList []FailureRecord

// Validate checks every record, reporting the first offending position.
func (l FailureList) Validate() error {
	for i, rec := range l {
		if err := rec.Validate(); err != nil {
			return appErrors.Validation(fmt.Sprintf("failure #%d: %s", i+1, appErrors.FromError(err).Message))
		}
	}
	return nil
}

// Clone returns a deep copy of the list.
func (l FailureList) Clone() FailureList {
	if l == nil {
		return FailureList{}
	}
	out := make(FailureList, len(l))
	for i, rec := range l {
		out[i] = FailureRecord{
			Falha:                 rec.Falha,
			Setor:                 rec.Setor,
			LocalizacaoComponente: copyPtr(rec.LocalizacaoComponente),
			LadoPlaca:             copyPtr(rec.LadoPlaca),
			Observacao:            copyPtr(rec.Observacao),
		}
	}
	return out
}

func copyPtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// EncodeFailures serializes a validated list. An empty list encodes as "[]".
func EncodeFailures(list FailureList) (string, error) {
	if err := list.Validate(); err != nil {
		return "", err
	}
	if list == nil {
		list = FailureList{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode failures: %w", err)
	}
	return string(raw), nil
}

// DecodeFailures parses and validates a serialized list. Blank input and
// "null" decode to an empty list.
func DecodeFailures(raw string) (FailureList, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return FailureList{}, nil
	}
	var list FailureList
	if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "falhas_json is not a valid failure list")
	}
	if list == nil {
		list = FailureList{}
	}
	if err := list.Validate(); err != nil {
		return nil, err
	}
	return list, nil
}

// Value implements driver.Valuer.
func (l FailureList) Value() (driver.Value, error) {
	return EncodeFailures(l)
}

// Scan implements sql.Scanner.
func (l *FailureList) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		raw = ""
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("scan failures: unsupported type %T", src)
	}
	list, err := DecodeFailures(raw)
	if err != nil {
		return err
	}
	*l = list
	return nil
}

func optionalString(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// OptionalString converts a possibly blank value into a nullable one.
func OptionalString(v string) *string {
	return optionalString(&v)
}
