package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

type fakeVolume struct {
	byDate  map[string]models.ProducaoRegistro
	deleted []string
}

func (f *fakeVolume) CreateProducao(_ context.Context, req dto.CreateProducaoRequest) (*models.ProducaoRegistro, error) {
	if f.byDate == nil {
		f.byDate = map[string]models.ProducaoRegistro{}
	}
	if _, ok := f.byDate[req.DataRegistro]; ok {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Já existe um registro para esta data")
	}
	rec := models.ProducaoRegistro{
		ID:               "reg-" + req.DataRegistro,
		DataRegistro:     req.DataRegistro,
		TipoRegistro:     req.TipoRegistro,
		QuantidadeMensal: req.QuantidadeMensal,
		QuantidadeDiaria: req.QuantidadeDiaria,
		ObservacaoMensal: req.ObservacaoMensal,
		Responsavel:      req.Responsavel,
	}
	f.byDate[req.DataRegistro] = rec
	return &rec, nil
}

func (f *fakeVolume) ListProducao(context.Context) ([]models.ProducaoRegistro, error) {
	out := []models.ProducaoRegistro{}
	for _, r := range f.byDate {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeVolume) DeleteProducao(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestRegisterMonthlyDuplicateIsConflict(t *testing.T) {
	gw := &fakeVolume{}
	v := NewVolumeRegister(gw, sessionAs(models.RoleAdmin))

	rec, err := v.RegisterMonthly(context.Background(), "2024-05", 1000, "maio")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", rec.DataRegistro)
	assert.Equal(t, 1000, rec.QuantidadeMensal)
	assert.Equal(t, "user-admin", rec.Responsavel)
	assert.Equal(t, "maio", *rec.ObservacaoMensal)

	_, err = v.RegisterMonthly(context.Background(), "2024-05", 1000, "")
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, "a record already exists for this date", err.Error())
}

func TestRegisterDaily(t *testing.T) {
	gw := &fakeVolume{}
	v := NewVolumeRegister(gw, sessionAs(models.RoleAdmin))

	rec, err := v.RegisterDaily(context.Background(), "2024-05-14", 0, "")
	require.NoError(t, err)
	assert.Equal(t, models.RegistroDiario, rec.TipoRegistro)
	assert.Zero(t, rec.QuantidadeMensal)
}

func TestRegisterValidation(t *testing.T) {
	gw := &fakeVolume{}
	v := NewVolumeRegister(gw, sessionAs(models.RoleAdmin))

	_, err := v.RegisterDaily(context.Background(), "2024-05-14", -1, "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = v.RegisterDaily(context.Background(), "14/05/2024", 10, "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = v.RegisterMonthly(context.Background(), "maio", 10, "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, gw.byDate)
}

func TestVolumeRoleGates(t *testing.T) {
	gw := &fakeVolume{}
	v := NewVolumeRegister(gw, sessionAs(models.RoleProducao))

	_, err := v.RegisterMonthly(context.Background(), "2024-05", 10, "")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.ErrorIs(t, v.DeleteRegistro(context.Background(), "reg-1"), appErrors.ErrForbidden)
	assert.Empty(t, gw.deleted)

	_, err = v.List(context.Background())
	assert.NoError(t, err)

	anon := NewVolumeRegister(gw, &staticSession{})
	_, err = anon.List(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	admin := NewVolumeRegister(gw, sessionAs(models.RoleAdmin))
	require.NoError(t, admin.DeleteRegistro(context.Background(), "reg-1"))
	assert.Equal(t, []string{"reg-1"}, gw.deleted)
}
