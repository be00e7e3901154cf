package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecklistNormalizeProjectsLegacyFields(t *testing.T) {
	doc := Checklist{
		Produto:           "Placa X",
		LegacyFalha:       OptionalString("Solda fria"),
		LegacySetor:       OptionalString("SMT"),
		LegacyLocalizacao: OptionalString("U3"),
		LegacyLadoPlaca:   OptionalString("TOP"),
	}

	require.NoError(t, doc.Normalize())
	require.Len(t, doc.Falhas, 1)
	assert.Equal(t, "Solda fria", doc.Falhas[0].Falha)
	assert.Equal(t, "SMT", doc.Falhas[0].Setor)
	assert.Equal(t, "U3", *doc.Falhas[0].LocalizacaoComponente)
	assert.Equal(t, BoardSideTop, *doc.Falhas[0].LadoPlaca)
	assert.Nil(t, doc.LegacyFalha)
	assert.Nil(t, doc.LegacySetor)
}

func TestChecklistNormalizePrefersSerializedList(t *testing.T) {
	raw := `[{"falha":"Curto","setor":"PTH"},{"falha":"Trinca","setor":"SMT"}]`
	doc := Checklist{FalhasJSON: &raw, LegacyFalha: OptionalString("Velha"), LegacySetor: OptionalString("X")}

	require.NoError(t, doc.Normalize())
	require.Len(t, doc.Falhas, 2)
	assert.Equal(t, "Curto", doc.Falhas[0].Falha)
	assert.Equal(t, "Trinca", doc.Falhas[1].Falha)
	assert.Nil(t, doc.FalhasJSON)
}

func TestChecklistNormalizeEmpty(t *testing.T) {
	doc := Checklist{}
	require.NoError(t, doc.Normalize())
	assert.NotNil(t, doc.Falhas)
	assert.Len(t, doc.Falhas, 0)
}

func TestChecklistRemarkCopyForward(t *testing.T) {
	doc := &Checklist{Observacao: OptionalString("antiga")}
	assert.True(t, doc.NeedsRemarkCopyForward())
	assert.Equal(t, "antiga", doc.ProductionRemark())

	doc.ObservacaoProducao = OptionalString("nova")
	assert.False(t, doc.NeedsRemarkCopyForward())
	assert.Equal(t, "nova", doc.ProductionRemark())
}

func TestNormalizeRegistroDate(t *testing.T) {
	got, err := NormalizeRegistroDate(RegistroMensal, "2024-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", got)

	got, err = NormalizeRegistroDate(RegistroMensal, "2024-05-17")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", got)

	got, err = NormalizeRegistroDate(RegistroDiario, "2024-05-17")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-17", got)

	_, err = NormalizeRegistroDate(RegistroDiario, "17/05/2024")
	assert.Error(t, err)
	_, err = NormalizeRegistroDate("X", "2024-05-17")
	assert.Error(t, err)
}
