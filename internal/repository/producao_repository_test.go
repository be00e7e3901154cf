package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qc-checklist/internal/models"
)

var producaoCols = []string{"id", "data_registro", "tipo_registro", "quantidade_mensal", "quantidade_diaria", "observacao_mensal", "observacao_diaria", "responsavel", "created_at"}

func TestProducaoExistsByDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProducaoRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM producao_registros WHERE data_registro = $1)")).
		WithArgs("2024-05-01").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByDate(context.Background(), "2024-05-01")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProducaoCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProducaoRepository(db)

	mock.ExpectExec("INSERT INTO producao_registros").WillReturnError(&pq.Error{Code: "23505", Constraint: "producao_registros_data_registro_key"})

	err := repo.Create(context.Background(), &models.ProducaoRegistro{DataRegistro: "2024-05-01", TipoRegistro: models.RegistroMensal, QuantidadeMensal: 1000, Responsavel: "admin", CreatedAt: time.Now()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestProducaoList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProducaoRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM producao_registros ORDER BY data_registro DESC")).
		WillReturnRows(sqlmock.NewRows(producaoCols).
			AddRow("p1", "2024-05-01", "M", 1000, 0, "meta", nil, "admin", now).
			AddRow("p2", "2024-04-12", "D", 0, 40, nil, nil, "admin", now))

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.RegistroMensal, records[0].TipoRegistro)
	assert.Equal(t, "meta", *records[0].ObservacaoMensal)
	assert.Equal(t, 40, records[1].QuantidadeDiaria)
}

func TestProducaoDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProducaoRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM producao_registros WHERE id = $1")).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM producao_registros WHERE id = $1")).WithArgs("p9").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), "p1"))
	assert.Equal(t, sql.ErrNoRows, repo.Delete(context.Background(), "p9"))
}
