package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	"github.com/noah-isme/qc-checklist/internal/repository"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

type producaoRepository interface {
	ExistsByDate(ctx context.Context, dataRegistro string) (bool, error)
	Create(ctx context.Context, reg *models.ProducaoRegistro) error
	List(ctx context.Context) ([]models.ProducaoRegistro, error)
	Delete(ctx context.Context, id string) error
}

var (
	errRegistroExists = appErrors.Clone(appErrors.ErrConflict, "a record already exists for this date")
	errRegistroAbsent = appErrors.Clone(appErrors.ErrNotFound, "production record not found")
)

// ProducaoService manages production volume records.
type ProducaoService struct {
	repo      producaoRepository
	audit     auditRecorder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewProducaoService constructs a ProducaoService.
func NewProducaoService(repo producaoRepository, audit auditRecorder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProducaoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProducaoService{repo: repo, audit: audit, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// Create registers a monthly or daily total. Only the fields of the chosen
// type are stored; the other type's quantity is zero and its note is null.
func (s *ProducaoService) Create(ctx context.Context, req dto.CreateProducaoRequest, meta AuditMeta) (*models.ProducaoRegistro, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "tipo_registro must be M or D and quantities cannot be negative")
	}
	date, err := models.NormalizeRegistroDate(req.TipoRegistro, req.DataRegistro)
	if err != nil {
		return nil, appErrors.Validation(err.Error())
	}

	exists, err := s.repo.ExistsByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check production date")
	}
	if exists {
		return nil, errRegistroExists
	}

	reg := &models.ProducaoRegistro{
		ID:           uuid.NewString(),
		DataRegistro: date,
		TipoRegistro: req.TipoRegistro,
		Responsavel:  strings.TrimSpace(req.Responsavel),
		CreatedAt:    s.now().UTC(),
	}
	if reg.Responsavel == "" {
		reg.Responsavel = meta.Actor
	}
	switch req.TipoRegistro {
	case models.RegistroMensal:
		reg.QuantidadeMensal = req.QuantidadeMensal
		reg.ObservacaoMensal = normalizeOptional(req.ObservacaoMensal)
	case models.RegistroDiario:
		reg.QuantidadeDiaria = req.QuantidadeDiaria
		reg.ObservacaoDiaria = normalizeOptional(req.ObservacaoDiaria)
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errRegistroExists
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create production record")
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	return reg, nil
}

// List returns every record, most recent first.
func (s *ProducaoService) List(ctx context.Context) ([]models.ProducaoRegistro, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list production records")
	}
	if records == nil {
		records = []models.ProducaoRegistro{}
	}
	return records, nil
}

// Delete removes a record permanently.
func (s *ProducaoService) Delete(ctx context.Context, id string, meta AuditMeta) error {
	if _, err := uuid.Parse(id); err != nil {
		return errRegistroAbsent
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errRegistroAbsent
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete production record")
	}
	s.cache.Invalidate(ctx, dashboardCachePattern)
	if s.audit != nil {
		s.audit.Record(ctx, meta, models.AuditActionProducaoDelete, "producao_registros", id, nil)
	}
	return nil
}
