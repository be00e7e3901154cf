package client

import (
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

var errNoFailures = appErrors.Validation("at least one failure required")

// FailureDraft is the record being filled in. Quantidade and ObservacaoGeral
// are shared by the whole document and survive Add.
type FailureDraft struct {
	Falha                 string
	Setor                 string
	LocalizacaoComponente string
	LadoPlaca             string
	Observacao            string

	Quantidade      int
	ObservacaoGeral string
}

// Record converts the defect fields of the draft into a normalized record.
func (d FailureDraft) Record() models.FailureRecord {
	rec := models.FailureRecord{
		Falha:                 d.Falha,
		Setor:                 d.Setor,
		LocalizacaoComponente: models.OptionalString(d.LocalizacaoComponente),
		Observacao:            models.OptionalString(d.Observacao),
	}
	if side := models.OptionalString(d.LadoPlaca); side != nil {
		b := models.BoardSide(*side)
		rec.LadoPlaca = &b
	}
	return rec.Normalize()
}

// Valid reports whether the draft alone satisfies the required fields.
func (d FailureDraft) Valid() bool {
	return d.Record().Validate() == nil
}

func (d *FailureDraft) clearDefect() {
	d.Falha = ""
	d.Setor = ""
	d.LocalizacaoComponente = ""
	d.LadoPlaca = ""
	d.Observacao = ""
}

// Aggregator builds the ordered failure list of one editing session. It is
// owned by that session and is not safe for concurrent use.
type Aggregator struct {
	items models.FailureList
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{items: models.FailureList{}}
}

// Add validates the draft, appends a normalized copy and clears the draft's
// defect fields. On error nothing changes.
func (a *Aggregator) Add(draft *FailureDraft) error {
	if draft == nil {
		return appErrors.Validation("falha and setor are required for every failure")
	}
	rec := draft.Record()
	if err := rec.Validate(); err != nil {
		return err
	}
	a.items = append(a.items, rec)
	draft.clearDefect()
	return nil
}

// Remove drops the record at index; out of range is a no-op.
func (a *Aggregator) Remove(index int) {
	if index < 0 || index >= len(a.items) {
		return
	}
	a.items = append(a.items[:index], a.items[index+1:]...)
}

// ResolveForSubmit returns the list when it has entries, discarding the
// draft. An empty list falls back to the draft as a single record when the
// draft is valid on its own.
func (a *Aggregator) ResolveForSubmit(draft FailureDraft) (models.FailureList, error) {
	if len(a.items) > 0 {
		return a.items.Clone(), nil
	}
	rec := draft.Record()
	if rec.Validate() != nil {
		return nil, errNoFailures
	}
	return models.FailureList{rec}, nil
}

// Seed replaces the list, used when an editor opens an existing document.
func (a *Aggregator) Seed(list models.FailureList) {
	a.items = list.Clone()
}

// Items returns a copy of the list.
func (a *Aggregator) Items() models.FailureList {
	return a.items.Clone()
}

// Len is the number of listed failures.
func (a *Aggregator) Len() int {
	return len(a.items)
}

// ProductLocked reports whether produto may no longer change: once a failure
// is listed it belongs to that product.
func (a *Aggregator) ProductLocked() bool {
	return len(a.items) > 0
}

// RoutingLocked reports whether the route-to-assistance toggle is disabled.
// A routed document carries no failures, so listing one locks the choice.
func (a *Aggregator) RoutingLocked() bool {
	return len(a.items) > 0
}
