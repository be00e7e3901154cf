package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/qc-checklist/internal/models"
)

const producaoColumns = `id, to_char(data_registro, 'YYYY-MM-DD') AS data_registro, tipo_registro, quantidade_mensal, quantidade_diaria, observacao_mensal, observacao_diaria, responsavel, created_at`

// ProducaoRepository persists production volume records.
type ProducaoRepository struct {
	db *sqlx.DB
}

// NewProducaoRepository creates a new instance of ProducaoRepository.
func NewProducaoRepository(db *sqlx.DB) *ProducaoRepository {
	return &ProducaoRepository{db: db}
}

// ExistsByDate reports whether a record already uses dataRegistro.
func (r *ProducaoRepository) ExistsByDate(ctx context.Context, dataRegistro string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM producao_registros WHERE data_registro = $1)`, dataRegistro); err != nil {
		return false, fmt.Errorf("check producao date: %w", err)
	}
	return exists, nil
}

// Create inserts a record. A second record for the same date yields
// ErrDuplicate.
func (r *ProducaoRepository) Create(ctx context.Context, reg *models.ProducaoRegistro) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	const query = `INSERT INTO producao_registros (id, data_registro, tipo_registro, quantidade_mensal, quantidade_diaria, observacao_mensal, observacao_diaria, responsavel, created_at)
VALUES (:id, :data_registro, :tipo_registro, :quantidade_mensal, :quantidade_diaria, :observacao_mensal, :observacao_diaria, :responsavel, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create producao: %w", ErrDuplicate)
		}
		return fmt.Errorf("create producao: %w", err)
	}
	return nil
}

// List returns every record, most recent date first.
func (r *ProducaoRepository) List(ctx context.Context) ([]models.ProducaoRegistro, error) {
	query := `SELECT ` + producaoColumns + ` FROM producao_registros ORDER BY data_registro DESC`
	records := []models.ProducaoRegistro{}
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list producao: %w", err)
	}
	return records, nil
}

// ListBetween returns records whose date falls in [from, to], oldest first.
// Dates are YYYY-MM-DD.
func (r *ProducaoRepository) ListBetween(ctx context.Context, from, to string) ([]models.ProducaoRegistro, error) {
	query := `SELECT ` + producaoColumns + ` FROM producao_registros WHERE data_registro BETWEEN $1 AND $2 ORDER BY data_registro ASC`
	records := []models.ProducaoRegistro{}
	if err := r.db.SelectContext(ctx, &records, query, from, to); err != nil {
		return nil, fmt.Errorf("list producao between: %w", err)
	}
	return records, nil
}

// Delete removes a record. sql.ErrNoRows is returned when nothing was deleted.
func (r *ProducaoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM producao_registros WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete producao: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
