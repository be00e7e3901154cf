package client

import (
	"context"
	"errors"
	"strings"

	"github.com/noah-isme/qc-checklist/internal/access"
	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

type volumeGateway interface {
	CreateProducao(ctx context.Context, req dto.CreateProducaoRequest) (*models.ProducaoRegistro, error)
	ListProducao(ctx context.Context) ([]models.ProducaoRegistro, error)
	DeleteProducao(ctx context.Context, id string) error
}

var (
	errAdminOnly     = appErrors.Clone(appErrors.ErrForbidden, "only admins can manage production records")
	errNegativeTotal = appErrors.Validation("quantity cannot be negative")
	errDuplicateDate = appErrors.Clone(appErrors.ErrConflict, "a record already exists for this date")
)

// VolumeRegister records monthly and daily production totals.
type VolumeRegister struct {
	gw       volumeGateway
	sessions sessionSource
}

// NewVolumeRegister builds the production volume client.
func NewVolumeRegister(gw volumeGateway, sessions sessionSource) *VolumeRegister {
	return &VolumeRegister{gw: gw, sessions: sessions}
}

// RegisterMonthly stores the total for a month given as YYYY-MM. The record
// lands on the first day of the month.
func (v *VolumeRegister) RegisterMonthly(ctx context.Context, month string, total int, note string) (*models.ProducaoRegistro, error) {
	return v.register(ctx, models.RegistroMensal, month, total, note)
}

// RegisterDaily stores the total for a YYYY-MM-DD date.
func (v *VolumeRegister) RegisterDaily(ctx context.Context, date string, total int, note string) (*models.ProducaoRegistro, error) {
	return v.register(ctx, models.RegistroDiario, date, total, note)
}

func (v *VolumeRegister) register(ctx context.Context, tipo models.RegistroTipo, raw string, total int, note string) (*models.ProducaoRegistro, error) {
	session, err := v.requireAdmin()
	if err != nil {
		return nil, err
	}
	if total < 0 {
		return nil, errNegativeTotal
	}
	date, err := models.NormalizeRegistroDate(tipo, raw)
	if err != nil {
		return nil, appErrors.Validation(err.Error())
	}

	req := dto.CreateProducaoRequest{
		DataRegistro: date,
		TipoRegistro: tipo,
		Responsavel:  session.Username,
	}
	if tipo == models.RegistroMensal {
		req.QuantidadeMensal = total
		req.ObservacaoMensal = models.OptionalString(note)
	} else {
		req.QuantidadeDiaria = total
		req.ObservacaoDiaria = models.OptionalString(note)
	}

	rec, err := v.gw.CreateProducao(ctx, req)
	if errors.Is(err, appErrors.ErrConflict) {
		return nil, errDuplicateDate
	}
	return rec, err
}

// DeleteRegistro removes a record. Admin only.
func (v *VolumeRegister) DeleteRegistro(ctx context.Context, id string) error {
	if _, err := v.requireAdmin(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return appErrors.Validation("id is required")
	}
	return v.gw.DeleteProducao(ctx, id)
}

// List returns every record, newest date first.
func (v *VolumeRegister) List(ctx context.Context) ([]models.ProducaoRegistro, error) {
	if v.sessions.Current() == nil {
		return nil, errLoginRequired
	}
	return v.gw.ListProducao(ctx)
}

func (v *VolumeRegister) requireAdmin() (*models.Session, error) {
	session := v.sessions.Current()
	if session == nil {
		return nil, errLoginRequired
	}
	if !access.CanAccess(session, access.AdminOnly) {
		return nil, errAdminOnly
	}
	return session, nil
}
