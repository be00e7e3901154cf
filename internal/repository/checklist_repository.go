package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/qc-checklist/internal/models"
)

const checklistColumns = `documento_id, produto, quantidade, status, responsavel, data_criacao, responsavel_assistencia, data_finalizacao, falhas_json, observacao_producao, observacao_assistencia, observacao, falha, setor, localizacao_componente, lado_placa`

const (
	defaultChecklistLimit = 20
	maxChecklistLimit     = 200
)

// ChecklistRepository persists checklist documents.
type ChecklistRepository struct {
	db *sqlx.DB
}

// NewChecklistRepository creates a new instance of ChecklistRepository.
func NewChecklistRepository(db *sqlx.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// Create inserts a document. Legacy columns are never written.
func (r *ChecklistRepository) Create(ctx context.Context, doc *models.Checklist) error {
	const query = `INSERT INTO checklists (documento_id, produto, quantidade, status, responsavel, data_criacao, responsavel_assistencia, data_finalizacao, falhas_json, observacao_producao, observacao_assistencia)
VALUES (:documento_id, :produto, :quantidade, :status, :responsavel, :data_criacao, :responsavel_assistencia, :data_finalizacao, :falhas_json, :observacao_producao, :observacao_assistencia)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create checklist: %w", err)
	}
	return nil
}

// FindByID returns a document with legacy fields projected into Falhas.
func (r *ChecklistRepository) FindByID(ctx context.Context, id string) (*models.Checklist, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklists WHERE documento_id = $1 LIMIT 1`
	var doc models.Checklist
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find checklist: %w", err)
	}
	if err := doc.Normalize(); err != nil {
		return nil, fmt.Errorf("normalize checklist %s: %w", id, err)
	}
	return &doc, nil
}

// List returns one page of documents, newest first, and the total match count.
func (r *ChecklistRepository) List(ctx context.Context, filter models.ChecklistFilter) ([]models.Checklist, int, error) {
	baseQuery := `FROM checklists WHERE 1=1`
	var args []interface{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		baseQuery += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		n := len(args)
		baseQuery += fmt.Sprintf(" AND (LOWER(produto) LIKE $%d OR LOWER(responsavel) LIKE $%d OR documento_id::text LIKE $%d)", n, n, n)
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		baseQuery += fmt.Sprintf(" AND data_criacao >= $%d", len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultChecklistLimit
	}
	if limit > maxChecklistLimit {
		limit = maxChecklistLimit
	}
	offset := (page - 1) * limit

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY data_criacao DESC LIMIT %d OFFSET %d", checklistColumns, baseQuery, limit, offset)
	docs := []models.Checklist{}
	if err := r.db.SelectContext(ctx, &docs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list checklists: %w", err)
	}
	for i := range docs {
		if err := docs[i].Normalize(); err != nil {
			return nil, 0, fmt.Errorf("normalize checklist %s: %w", docs[i].DocumentoID, err)
		}
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count checklists: %w", err)
	}
	return docs, total, nil
}

// ListCreatedSince returns every document created at or after since, newest
// first. Used by aggregations that need the failure lists.
func (r *ChecklistRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Checklist, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklists WHERE data_criacao >= $1 ORDER BY data_criacao DESC`
	docs := []models.Checklist{}
	if err := r.db.SelectContext(ctx, &docs, query, since); err != nil {
		return nil, fmt.Errorf("list checklists since: %w", err)
	}
	for i := range docs {
		if err := docs[i].Normalize(); err != nil {
			return nil, fmt.Errorf("normalize checklist %s: %w", docs[i].DocumentoID, err)
		}
	}
	return docs, nil
}

// CountByStatus returns how many documents are in status.
func (r *ChecklistRepository) CountByStatus(ctx context.Context, status models.ChecklistStatus) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM checklists WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("count checklists by status: %w", err)
	}
	return total, nil
}

// Update stores the mutable fields of a document and clears the legacy
// single-failure columns, which Falhas now represents.
func (r *ChecklistRepository) Update(ctx context.Context, doc *models.Checklist) error {
	const query = `UPDATE checklists SET quantidade = :quantidade, status = :status, responsavel_assistencia = :responsavel_assistencia, data_finalizacao = :data_finalizacao, falhas_json = :falhas_json, observacao_producao = :observacao_producao, observacao_assistencia = :observacao_assistencia, falha = NULL, setor = NULL, localizacao_componente = NULL, lado_placa = NULL WHERE documento_id = :documento_id`
	res, err := r.db.NamedExecContext(ctx, query, doc)
	if err != nil {
		return fmt.Errorf("update checklist: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
